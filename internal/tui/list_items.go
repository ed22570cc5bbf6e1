package tui

import (
	"fmt"
	"io"
	"strings"

	"daiw-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

type nodeItem struct {
	node    model.Node
	focused bool
}

func (i nodeItem) FilterValue() string { return i.node.Name }

func (i nodeItem) Title() string {
	return fmt.Sprintf("%2d. [%s] %s", i.node.Step, i.node.Type.Label(), i.node.Name)
}

func nodeItems(nodes []model.Node, selectedID string) []list.Item {
	items := make([]list.Item, 0, len(nodes))
	for _, n := range nodes {
		items = append(items, nodeItem{node: n, focused: n.ID == selectedID})
	}
	return items
}

func newList(items []list.Item) list.Model {
	l := list.New(items, newNodeDelegate(), 0, 0)
	// Pane titles and the footer are drawn by the app; keep list chrome minimal.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	// g/G are node-adding keys here; go-to-start/end stay on home/end and </>.
	l.KeyMap.GoToStart.SetKeys("home", "<")
	l.KeyMap.GoToEnd.SetKeys("end", ">")
	// Emacs-style aliases.
	cursorUpKeys := append([]string{}, l.KeyMap.CursorUp.Keys()...)
	cursorUpKeys = append(cursorUpKeys, "ctrl+p")
	l.KeyMap.CursorUp.SetKeys(cursorUpKeys...)

	cursorDownKeys := append([]string{}, l.KeyMap.CursorDown.Keys()...)
	cursorDownKeys = append(cursorDownKeys, "ctrl+n")
	l.KeyMap.CursorDown.SetKeys(cursorDownKeys...)
	return l
}

type nodeDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newNodeDelegate() nodeDelegate {
	return nodeDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d nodeDelegate) Height() int  { return 1 }
func (d nodeDelegate) Spacing() int { return 0 }
func (d nodeDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d nodeDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	contentW := m.Width()
	if contentW < 4 {
		return
	}
	it, ok := item.(nodeItem)
	if !ok {
		fmt.Fprint(w, xansi.Cut(fmt.Sprint(item), 0, contentW))
		return
	}

	marker := "  "
	if it.focused {
		marker = "● "
	}
	tag := lipgloss.NewStyle().Foreground(nodeColor(it.node.Type)).Bold(true).Render("[" + it.node.Type.Label() + "]")
	line := fmt.Sprintf("%s%2d. %s %s", marker, it.node.Step, tag, it.node.Name)

	lineW := xansi.StringWidth(line)
	if lineW < contentW {
		line += strings.Repeat(" ", contentW-lineW)
	} else if lineW > contentW {
		line = xansi.Cut(line, 0, contentW)
	}

	style := d.normal
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(line))
}
