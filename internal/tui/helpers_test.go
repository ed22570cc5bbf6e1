package tui

import (
	"context"
	"errors"
	"sync"
	"testing"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"
	"daiw-cli/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

type stubGenerator struct {
	assistant.UnavailableGenerator

	mu      sync.Mutex
	prompts []string
	lyrics  string
	textErr error
}

func (g *stubGenerator) GenerateText(_ context.Context, prompt, _ string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	if g.textErr != nil {
		return "", g.textErr
	}
	return "Try a **sidechained** pad under the arp.", nil
}

func (g *stubGenerator) GenerateLyrics(context.Context, string, string, string) (string, error) {
	if g.lyrics == "" {
		return "", errors.New("quota exceeded")
	}
	return g.lyrics, nil
}

func newTestModel(t *testing.T, gen assistant.Generator) appModel {
	t.Helper()
	s := store.Seed(model.DefaultProjectMeta())
	m := newAppModel(Options{
		Session:   s,
		Router:    assistant.NewRouter(gen, nil),
		ImageSize: model.ImageSize1K,
	})
	mm, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return mm.(appModel)
}

func press(t *testing.T, m appModel, keys ...string) (appModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var mm tea.Model
		mm, cmd = m.Update(keyMsg(k))
		m = mm.(appModel)
	}
	return m, cmd
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+l":
		return tea.KeyMsg{Type: tea.KeyCtrlL}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// drain runs cmd and any batched cmds, dropping spinner ticks.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		out := []tea.Msg{}
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	if _, ok := msg.(spinner.TickMsg); ok {
		return nil
	}
	return []tea.Msg{msg}
}

func deliver(t *testing.T, m appModel, msgs []tea.Msg) appModel {
	t.Helper()
	for _, msg := range msgs {
		mm, _ := m.Update(msg)
		m = mm.(appModel)
	}
	return m
}

func nodeNames(s *store.Session) []string {
	out := []string{}
	for _, n := range s.Nodes {
		out = append(out, n.Name)
	}
	return out
}
