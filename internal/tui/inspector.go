package tui

import (
	"context"
	"fmt"
	"strings"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"
	"daiw-cli/internal/mutate"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type nodeLyricsMsg struct {
	nodeID string
	res    assistant.NodeLyricsResult
	ok     bool
}

func (m appModel) currentField() (model.Node, string, bool) {
	n, ok := m.selectedNode()
	if !ok {
		return model.Node{}, "", false
	}
	fields := inspectorFields(n)
	i := m.fieldIdx
	if i < 0 || i >= len(fields) {
		i = 0
	}
	return n, fields[i], true
}

func (m *appModel) updateInspector(msg tea.KeyMsg) (appModel, tea.Cmd) {
	n, ok := m.selectedNode()
	if !ok {
		if msg.String() == "esc" {
			m.focus = paneChain
		}
		return *m, nil
	}
	fields := inspectorFields(n)

	switch msg.String() {
	case "up", "k", "ctrl+p":
		if m.fieldIdx > 0 {
			m.fieldIdx--
		}
	case "down", "j", "ctrl+n":
		if m.fieldIdx < len(fields)-1 {
			m.fieldIdx++
		}
	case "enter":
		cmd := m.openFieldEditor()
		return *m, cmd
	case "r":
		cmd := m.openRename()
		return *m, cmd
	case "ctrl+l":
		cmd := m.generateLyrics(n)
		return *m, cmd
	case "y":
		_, field, _ := m.currentField()
		text := n.Name
		if field != "name" {
			text = model.FieldText(n.Payload(), field)
		}
		m.copyText(text, field)
	case "esc":
		m.focus = paneChain
	}
	return *m, nil
}

func (m *appModel) openFieldEditor() tea.Cmd {
	n, field, ok := m.currentField()
	if !ok {
		return nil
	}
	if field == "name" {
		return m.openRename()
	}
	m.editNodeID = n.ID
	m.editField = field
	m.modal = modalEditField
	value := model.FieldText(n.Payload(), field)

	m.editMultiline = field == "lyrics" || field == "prompt"
	if m.editMultiline {
		m.editArea.SetValue(value)
		return m.editArea.Focus()
	}
	m.editLine.SetValue(value)
	m.editLine.CursorEnd()
	return m.editLine.Focus()
}

func (m *appModel) commitFieldEdit() {
	value := m.editLine.Value()
	if m.editMultiline {
		value = m.editArea.Value()
	}
	patch, err := model.ParsePatchField(m.editField, value)
	if err != nil {
		m.showMinibuffer(err.Error())
		m.closeModal()
		return
	}
	res := mutate.UpdateNodeFields(m.session, m.editNodeID, patch)
	if !res.Found {
		m.showMinibuffer("That node no longer exists")
	} else {
		m.showMinibuffer(fmt.Sprintf("Updated %s", m.editField))
	}
	m.refreshChain()
	m.closeModal()
}

// generateLyrics reads a snapshot now and applies the result when it lands,
// so edits made in between are not lost.
func (m *appModel) generateLyrics(n model.Node) tea.Cmd {
	if n.Type != model.NodeLyrics {
		m.showMinibuffer("Lyrics can only be generated on a lyrics node")
		return nil
	}
	if m.lyricsBusy[n.ID] {
		m.showMinibuffer("Already writing lyrics for this node")
		return nil
	}
	m.lyricsBusy[n.ID] = true
	m.showMinibuffer("Writing lyrics…")

	snap := m.session.Snapshot()
	router := m.router
	id := n.ID
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		res, ok := router.GenerateNodeLyrics(context.Background(), snap, id)
		return nodeLyricsMsg{nodeID: id, res: res, ok: ok}
	})
}

func (m *appModel) applyNodeLyrics(msg nodeLyricsMsg) {
	delete(m.lyricsBusy, msg.nodeID)
	if !msg.ok {
		return
	}
	if !msg.res.Written {
		m.showMinibuffer(msg.res.Text)
		return
	}
	res := assistant.ApplyNodeLyrics(m.session, msg.nodeID, msg.res)
	if !res.Found {
		m.showMinibuffer("The lyrics node was removed before the lyrics arrived")
		return
	}
	m.showMinibuffer(fmt.Sprintf("Lyrics written to %q", res.Node.Name))
	m.logger.Debug("lyrics applied", zapNode(msg.nodeID))
}

func (m appModel) viewInspector(width, height int) string {
	n, ok := m.selectedNode()
	if !ok {
		return styleMuted().Render("No node focused.\nPick one in the chain.")
	}

	head := lipgloss.NewStyle().Foreground(nodeColor(n.Type)).Bold(true).Render("["+n.Type.Label()+"]") +
		" " + lipgloss.NewStyle().Bold(true).Render(n.Name)
	lines := []string{head, styleMuted().Render(fmt.Sprintf("Step %d", n.Step)), ""}

	label := lipgloss.NewStyle().Foreground(colorChromeFg)
	current := lipgloss.NewStyle().Foreground(colorSelectedFg).Background(colorSelectedBg).Bold(true)
	for i, field := range inspectorFields(n) {
		name := label.Render(field)
		if i == m.fieldIdx && m.focus == paneInspector {
			name = current.Render(field)
		}
		lines = append(lines, name)

		value := n.Name
		if field != "name" {
			value = model.FieldText(n.Payload(), field)
		}
		lines = append(lines, fieldPreview(value, field, width)...)
		lines = append(lines, "")
	}

	switch {
	case n.Type == model.NodeLyrics && m.lyricsBusy[n.ID]:
		lines = append(lines, m.spin.View()+" writing lyrics…")
	case n.Type == model.NodeLyrics:
		lines = append(lines, styleMuted().Render("ctrl+l: generate lyrics"))
	case n.Type == model.NodeOutput:
		lines = append(lines, label.Render("assembled context"))
		ctx := assistant.BuildContext(m.session.Nodes, m.session.SelectedID, m.session.Meta)
		lines = append(lines, lipgloss.NewStyle().Width(width).Render(ctx))
	}
	return normalizePane(strings.Join(lines, "\n"), width, height)
}

// fieldPreview shows lyrics and prompts on a few wrapped lines and everything
// else on one.
func fieldPreview(value, field string, width int) []string {
	if strings.TrimSpace(value) == "" {
		return []string{styleMuted().Render("  (empty)")}
	}
	maxLines := 1
	if field == "lyrics" || field == "prompt" {
		maxLines = 8
	}
	wrapped := lipgloss.NewStyle().Width(width - 2).Render(value)
	out := []string{}
	for i, ln := range strings.Split(wrapped, "\n") {
		if i == maxLines {
			out = append(out, "  …")
			break
		}
		out = append(out, "  "+xansi.Truncate(ln, width-2, "…"))
	}
	return out
}
