package tui

import (
	"fmt"
	"strings"

	"daiw-cli/internal/docs"
	"daiw-cli/internal/model"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

func zapNode(id string) zap.Field { return zap.String("node", id) }

func (m appModel) Init() tea.Cmd {
	return nil
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case assistantReplyMsg:
		m.applyReply(msg)
		return m, nil

	case nodeLyricsMsg:
		m.applyNodeLyrics(msg)
		return m, nil

	case voiceTranscriptMsg:
		cmd := m.applyTranscript(msg)
		return m, cmd

	case spinner.TickMsg:
		// Let the spinner stop once nothing is in flight.
		if !m.tracker.Busy() && len(m.lyricsBusy) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.tracker.Busy() {
			m.refreshChat()
		}
		return m, cmd

	case tea.KeyMsg:
		return m.updateKey(msg)
	}
	return m, nil
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.modal {
	case modalConfirmDelete:
		return m.updateConfirmDelete(msg)
	case modalHelp:
		switch msg.String() {
		case "?", "esc", "q", "enter":
			m.modal = modalNone
		}
		return m, nil
	case modalRename:
		switch msg.String() {
		case "esc":
			m.closeModal()
			return m, nil
		case "enter":
			m.commitRename()
			return m, nil
		}
		var cmd tea.Cmd
		m.editLine, cmd = m.editLine.Update(msg)
		return m, cmd
	case modalEditField:
		switch msg.String() {
		case "esc":
			m.closeModal()
			return m, nil
		case "ctrl+s":
			m.commitFieldEdit()
			return m, nil
		case "enter":
			if !m.editMultiline {
				m.commitFieldEdit()
				return m, nil
			}
		}
		var cmd tea.Cmd
		if m.editMultiline {
			m.editArea, cmd = m.editArea.Update(msg)
		} else {
			m.editLine, cmd = m.editLine.Update(msg)
		}
		return m, cmd
	}

	// Typing in the assistant owns every key but the send/cancel pair.
	if m.focus == paneAssistant && m.typing {
		return m.updateAssistant(msg)
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "?":
		m.modal = modalHelp
		return m, nil
	case "tab":
		m.focus = m.focus.next()
		return m, nil
	case "shift+tab":
		m.focus = (m.focus + 2) % 3
		return m, nil
	}

	switch m.focus {
	case paneInspector:
		return m.updateInspector(msg)
	case paneAssistant:
		return m.updateAssistant(msg)
	default:
		return m.updateChain(msg)
	}
}

func (m *appModel) resize() {
	chainW, _, chatW := paneWidths(m.width)
	bodyH := m.bodyHeight()
	m.chain.SetSize(innerWidth(chainW), contentHeight(bodyH))
	m.chat.Width = innerWidth(chatW)
	m.chat.Height = contentHeight(bodyH) - 2
	m.input.Width = innerWidth(chatW) - 4
	mw := modalBodyWidth(modalWidth(m.width))
	m.editLine.Width = mw
	m.editArea.SetWidth(mw)
	m.editArea.SetHeight(10)
	m.refreshChat()
}

func (m appModel) bodyHeight() int {
	// Header and footer take one line each.
	h := m.height - 2
	if h < 4 {
		h = 4
	}
	return h
}

func innerWidth(w int) int {
	if w < 4 {
		return 0
	}
	return w - 4
}

func innerHeight(h int) int {
	if h < 3 {
		return 0
	}
	return h - 2
}

// contentHeight leaves room for the pane title.
func contentHeight(h int) int {
	if h < 4 {
		return 0
	}
	return h - 3
}

func (m appModel) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	if m.modal != modalNone {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.viewModal())
	}

	chainW, inspW, chatW := paneWidths(m.width)
	bodyH := m.bodyHeight()

	chain := m.framePane("Chain", m.chain.View(), chainW, bodyH, m.focus == paneChain)
	body := chain
	if inspW > 0 {
		insp := m.framePane("Inspector", m.viewInspector(innerWidth(inspW), contentHeight(bodyH)), inspW, bodyH, m.focus == paneInspector)
		chat := m.framePane("Assistant", m.viewAssistant(innerWidth(chatW), contentHeight(bodyH)), chatW, bodyH, m.focus == paneAssistant)
		body = lipgloss.JoinHorizontal(lipgloss.Top, chain, insp, chat)
	}

	return strings.Join([]string{m.viewHeader(), body, m.viewFooter()}, "\n")
}

func (m appModel) framePane(title, content string, width, height int, focused bool) string {
	border := colorBorder
	head := lipgloss.NewStyle().Bold(true).Foreground(colorChromeFg)
	if focused {
		border = colorBorderFocus
		head = head.Foreground(colorAccent)
	}
	inner := head.Render(title) + "\n" + normalizePane(content, innerWidth(width), contentHeight(height))
	return lipgloss.NewStyle().
		Width(width-2).
		Height(height-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Render(normalizePane(inner, innerWidth(width), innerHeight(height)))
}

func (m appModel) viewHeader() string {
	meta := m.session.Meta
	left := lipgloss.NewStyle().Bold(true).Foreground(colorAccentFg).Background(colorAccent).Padding(0, 1).Render("DAiW") +
		" " + fmt.Sprintf("%s · %d BPM · %s · %s", meta.Name, meta.BPM, meta.Key, meta.Genre)
	status := m.tracker.State().String()
	if m.listening {
		status = "listening"
	}
	right := styleMuted().Render(fmt.Sprintf("cover %s · assistant %s", m.imageSize, status))
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return normalizePane(left+strings.Repeat(" ", gap)+right, m.width, 1)
}

func (m appModel) viewFooter() string {
	if strings.TrimSpace(m.minibufferText) != "" {
		return normalizePane(m.minibufferText, m.width, 1)
	}
	var hints string
	switch {
	case m.focus == paneAssistant && m.typing:
		hints = "enter: send   esc: stop typing"
	case m.focus == paneAssistant:
		hints = "enter: type   i: cover size   m: voice   y: copy reply   s: save cover   tab: focus   ?: help   q: quit"
	case m.focus == paneInspector:
		hints = "↑/↓: field   enter: edit   ctrl+l: lyrics   y: copy   tab: focus   ?: help   q: quit"
	default:
		hints = "c g a e L: add   x: delete   r: rename   enter: edit   tab: focus   ?: help   q: quit"
	}
	return normalizePane(styleMuted().Render(hints), m.width, 1)
}

func (m appModel) viewModal() string {
	w := modalWidth(m.width)
	switch m.modal {
	case modalConfirmDelete:
		name := m.pendingDeleteID
		if n, ok := m.session.FindNode(m.pendingDeleteID); ok {
			name = n.Name
		}
		body := fmt.Sprintf("Delete %q from the chain?", name)
		return renderConfirmModal(w, "Delete node", body, "Delete", "Cancel", m.confirmFocus)
	case modalRename:
		help := styleMuted().Render("enter: save   esc: cancel")
		return renderModalBox(w, "Rename node", renderInputLine(modalBodyWidth(w), m.editLine.View())+"\n\n"+help)
	case modalEditField:
		if m.editMultiline {
			help := styleMuted().Render("ctrl+s: save   esc: cancel")
			return renderModalBox(w, "Edit "+m.editField, m.editArea.View()+"\n\n"+help)
		}
		hint := "enter: save   esc: cancel"
		if model.IsListField(m.editField) {
			hint = "comma-separated   " + hint
		}
		return renderModalBox(w, "Edit "+m.editField, renderInputLine(modalBodyWidth(w), m.editLine.View())+"\n\n"+styleMuted().Render(hint))
	case modalHelp:
		body, _ := docs.Get("keys")
		content := renderMarkdown(body, modalBodyWidth(w))
		if maxH := m.height - 6; maxH > 0 {
			content = normalizePane(content, modalBodyWidth(w), maxH)
		}
		return renderModalBox(w, "Help", content)
	}
	return ""
}
