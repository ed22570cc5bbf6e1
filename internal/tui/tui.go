// Package tui is the interactive workstation: the node chain, an inspector for
// the focused node and the assistant chat, side by side.
package tui

import (
	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"
	"daiw-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type Options struct {
	Session   *store.Session
	Router    *assistant.Router
	ImageSize model.ImageSize
	// Theme is light, dark or auto; DAIW_TUI_THEME wins over it.
	Theme  string
	Logger *zap.Logger
}

func Run(opts Options) error {
	applyColorProfilePreference()
	applyThemePreference(opts.Theme)
	m := newAppModel(opts)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
