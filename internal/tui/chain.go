package tui

import (
	"fmt"
	"strings"

	"daiw-cli/internal/model"
	"daiw-cli/internal/mutate"

	tea "github.com/charmbracelet/bubbletea"
)

var addNodeKeys = map[string]model.NodeType{
	"c": model.NodeContext,
	"g": model.NodeGenre,
	"a": model.NodeInstrument,
	"e": model.NodeEffect,
	"L": model.NodeLyrics,
}

// refreshChain rebuilds the list from the session and keeps the cursor on the
// focused node.
func (m *appModel) refreshChain() {
	m.chain.SetItems(nodeItems(m.session.Nodes, m.session.SelectedID))
	m.syncChainCursor()
}

func (m *appModel) syncChainCursor() {
	if i := m.session.NodeIndex(m.session.SelectedID); i >= 0 {
		m.chain.Select(i)
	}
}

// cursorNode is the node under the chain cursor, focused or not.
func (m appModel) cursorNode() (model.Node, bool) {
	it, ok := m.chain.SelectedItem().(nodeItem)
	if !ok {
		return model.Node{}, false
	}
	if n, ok := m.session.FindNode(it.node.ID); ok {
		return *n, true
	}
	return model.Node{}, false
}

func (m *appModel) selectCursorNode() {
	n, ok := m.cursorNode()
	if !ok {
		return
	}
	if res := mutate.SelectNode(m.session, n.ID); res.Changed {
		m.fieldIdx = 0
		m.refreshChain()
	}
}

func (m *appModel) addNode(typ model.NodeType) {
	res := mutate.AddNode(m.session, typ)
	if res.Node == nil {
		return
	}
	id, name := res.Node.ID, res.Node.Name
	mutate.SelectNode(m.session, id)
	m.fieldIdx = 0
	m.refreshChain()
	m.showMinibuffer(fmt.Sprintf("Added %s node %q", typ, name))
}

func (m *appModel) updateChain(msg tea.KeyMsg) (appModel, tea.Cmd) {
	k := msg.String()
	if typ, ok := addNodeKeys[k]; ok {
		m.addNode(typ)
		return *m, nil
	}

	switch k {
	case "x", "delete":
		n, ok := m.cursorNode()
		if !ok {
			m.showMinibuffer("Nothing to delete")
			return *m, nil
		}
		m.pendingDeleteID = n.ID
		m.confirmFocus = confirmFocusConfirm
		m.modal = modalConfirmDelete
		return *m, nil
	case "r":
		m.selectCursorNode()
		cmd := m.openRename()
		return *m, cmd
	case "enter":
		m.selectCursorNode()
		if _, ok := m.selectedNode(); ok {
			m.focus = paneInspector
		}
		return *m, nil
	case "esc":
		if res := mutate.SelectNode(m.session, ""); res.Changed {
			m.refreshChain()
			m.showMinibuffer("Focus cleared")
		}
		return *m, nil
	}

	var cmd tea.Cmd
	before := m.chain.Index()
	m.chain, cmd = m.chain.Update(msg)
	if m.chain.Index() != before {
		m.selectCursorNode()
	}
	return *m, cmd
}

func (m *appModel) updateConfirmDelete(msg tea.KeyMsg) (appModel, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		m.confirmFocus = m.confirmFocus.toggle()
		return *m, nil
	case "esc", "n", "q":
		m.closeModal()
		return *m, nil
	case "y":
		m.confirmFocus = confirmFocusConfirm
	case "enter":
	default:
		return *m, nil
	}

	if m.confirmFocus == confirmFocusConfirm {
		res := mutate.RemoveNode(m.session, m.pendingDeleteID)
		if res.Found {
			m.showMinibuffer(fmt.Sprintf("Deleted %q", res.Removed.Name))
		}
		m.refreshChain()
	}
	m.closeModal()
	return *m, nil
}

func (m *appModel) openRename() tea.Cmd {
	n, ok := m.selectedNode()
	if !ok {
		m.showMinibuffer("Focus a node to rename it")
		return nil
	}
	m.editNodeID = n.ID
	m.editField = "name"
	m.editLine.SetValue(n.Name)
	m.editLine.CursorEnd()
	m.modal = modalRename
	return m.editLine.Focus()
}

func (m *appModel) commitRename() {
	name := strings.TrimSpace(m.editLine.Value())
	if name == "" {
		m.showMinibuffer("A node needs a name")
		return
	}
	res := mutate.RenameNode(m.session, m.editNodeID, name)
	switch {
	case !res.Found:
		m.showMinibuffer("That node no longer exists")
	case res.Changed:
		m.showMinibuffer(fmt.Sprintf("Renamed to %q", name))
	}
	m.refreshChain()
	m.closeModal()
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.pendingDeleteID = ""
	m.editNodeID = ""
	m.editField = ""
	m.editLine.Blur()
	m.editArea.Blur()
}
