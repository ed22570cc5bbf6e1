package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// SimulatedTranscript is what voice input "hears"; no microphone is read.
const SimulatedTranscript = "Add a cinematic swell leading into the drop with a cyberpunk atmosphere."

var voiceDelay = 2 * time.Second

type assistantReplyMsg struct {
	reply assistant.Reply
}

type voiceTranscriptMsg struct {
	text string
}

func (m *appModel) updateAssistant(msg tea.KeyMsg) (appModel, tea.Cmd) {
	if m.typing {
		switch msg.String() {
		case "enter":
			cmd := m.sendMessage()
			return *m, cmd
		case "esc":
			m.typing = false
			m.input.Blur()
			return *m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return *m, cmd
	}

	switch msg.String() {
	case "enter", "/":
		m.typing = true
		cmd := m.input.Focus()
		return *m, cmd
	case "i":
		m.imageSize = m.imageSize.Next()
		m.showMinibuffer(fmt.Sprintf("Cover art size: %s", m.imageSize))
	case "m":
		cmd := m.startListening()
		return *m, cmd
	case "y":
		reply, ok := m.session.LastReply()
		if !ok {
			m.showMinibuffer("No reply to copy yet")
			return *m, nil
		}
		m.copyText(reply.Text, "reply")
	case "s":
		m.saveLastImage()
	case "esc":
		m.focus = paneChain
	default:
		var cmd tea.Cmd
		m.chat, cmd = m.chat.Update(msg)
		return *m, cmd
	}
	return *m, nil
}

// sendMessage hands the request to the router off the update loop. One request
// at a time: a send while one is in flight is refused.
func (m *appModel) sendMessage() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return nil
	}
	if m.tracker.Busy() {
		m.showMinibuffer("The assistant is still answering; send again when it replies")
		return nil
	}

	m.session.AppendMessage(model.RoleUser, text, nil)
	m.input.SetValue("")
	m.tracker.Begin()
	m.minibufferText = ""
	m.refreshChat()

	req := assistant.Request{Text: text, Snapshot: m.session.Snapshot(), ImageSize: m.imageSize}
	router := m.router
	m.logger.Debug("assistant request", zap.String("route", string(assistant.Classify(text))))
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		return assistantReplyMsg{reply: router.Route(context.Background(), req)}
	})
}

func (m *appModel) applyReply(msg assistantReplyMsg) {
	assistant.AppendReply(m.session, msg.reply)
	m.tracker.Finish(msg.reply.Failed)
	m.refreshChat()
}

func (m *appModel) startListening() tea.Cmd {
	if m.listening {
		m.showMinibuffer("Already listening")
		return nil
	}
	m.listening = true
	m.showMinibuffer("Listening…")
	return tea.Tick(voiceDelay, func(time.Time) tea.Msg {
		return voiceTranscriptMsg{text: SimulatedTranscript}
	})
}

func (m *appModel) applyTranscript(msg voiceTranscriptMsg) tea.Cmd {
	m.listening = false
	m.input.SetValue(msg.text)
	m.input.CursorEnd()
	m.focus = paneAssistant
	m.typing = true
	m.showMinibuffer("Transcribed; press enter to send")
	return m.input.Focus()
}

func (m *appModel) copyText(text, what string) {
	if strings.TrimSpace(text) == "" {
		m.showMinibuffer(fmt.Sprintf("Nothing to copy in %s", what))
		return
	}
	if err := copyToClipboard(text); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.showMinibuffer("Clipboard unavailable: " + err.Error())
		return
	}
	m.showMinibuffer(fmt.Sprintf("Copied %s", what))
}

// saveLastImage writes the newest image attachment next to the working directory.
func (m *appModel) saveLastImage() {
	for i := len(m.session.Chat) - 1; i >= 0; i-- {
		msg := m.session.Chat[i]
		for _, att := range msg.Attachments {
			if att.Kind != model.AttachmentImage || len(att.Bytes) == 0 {
				continue
			}
			name := fmt.Sprintf("daiw-cover-%s%s", shortID(msg.ID), att.FileExt())
			if err := os.WriteFile(name, att.Bytes, 0o644); err != nil {
				m.showMinibuffer("Could not save image: " + err.Error())
				return
			}
			m.showMinibuffer("Saved " + name)
			return
		}
	}
	m.showMinibuffer("No cover art to save yet")
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// refreshChat re-renders the log into the viewport and scrolls to the end.
func (m *appModel) refreshChat() {
	w := m.chat.Width
	if w <= 0 {
		return
	}
	m.chat.SetContent(m.renderChat(w))
	m.chat.GotoBottom()
}

func (m appModel) renderChat(width int) string {
	you := lipgloss.NewStyle().Foreground(colorUserFg).Bold(true)
	daiw := lipgloss.NewStyle().Foreground(colorModelFg).Bold(true)
	body := lipgloss.NewStyle().Width(width)

	blocks := []string{}
	for _, msg := range m.session.Chat {
		stamp := styleMuted().Render(msg.Timestamp.Local().Format("15:04"))
		var b strings.Builder
		if msg.Role == model.RoleUser {
			b.WriteString(you.Render("You") + " " + stamp + "\n")
			b.WriteString(body.Render(msg.Text))
		} else {
			b.WriteString(daiw.Render("DAiW") + " " + stamp + "\n")
			b.WriteString(renderMarkdown(msg.Text, width))
		}
		for _, att := range msg.Attachments {
			b.WriteString("\n" + styleMuted().Render(attachmentLine(att)))
		}
		blocks = append(blocks, b.String())
	}
	if m.tracker.Busy() {
		blocks = append(blocks, m.spin.View()+" "+styleMuted().Render("thinking…"))
	}
	return strings.Join(blocks, "\n\n")
}

func attachmentLine(att model.Attachment) string {
	if att.Kind == model.AttachmentImage {
		kb := (len(att.Bytes) + 1023) / 1024
		return fmt.Sprintf("[cover art %s, %d KB; s to save]", att.MIMEType, kb)
	}
	return fmt.Sprintf("[%s attachment]", att.Kind)
}

func (m appModel) viewAssistant(width, height int) string {
	inputView := m.input.View()
	if !m.typing && m.input.Value() == "" {
		inputView = styleMuted().Render("enter: type a message")
	}
	input := renderInputLine(width, inputView)
	chat := normalizePane(m.chat.View(), width, height-2)
	return chat + "\n\n" + input
}
