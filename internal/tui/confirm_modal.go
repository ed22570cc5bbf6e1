package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

func (f confirmModalFocus) toggle() confirmModalFocus {
	if f == confirmFocusConfirm {
		return confirmFocusCancel
	}
	return confirmFocusConfirm
}

func modalWidth(screenW int) int {
	w := screenW * 60 / 100
	if w < 36 {
		w = 36
	}
	if w > 80 {
		w = 80
	}
	if screenW > 0 && w > screenW-2 {
		w = screenW - 2
	}
	return w
}

func modalBodyWidth(width int) int {
	// Border (2) + horizontal padding (2).
	w := width - 4
	if w < 10 {
		w = 10
	}
	return w
}

func renderModalBox(width int, title, content string) string {
	header := lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg).Render(title)
	return lipgloss.NewStyle().
		Width(width-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorBorderFocus).
		Render(header + "\n\n" + content)
}

func renderConfirmModal(width int, title, body, confirmLabel, cancelLabel string, focus confirmModalFocus) string {
	// No nested borders: some terminals leave background artifacts.
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	} else {
		cancel = btnActive.Render(cancelLabel)
	}

	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, " ", cancel)
	help := styleMuted().Width(modalBodyWidth(width)).Render("tab: focus   enter: select   y/n   esc: cancel")

	content := strings.Join([]string{body, "", controls, "", help}, "\n")
	return renderModalBox(width, title, content)
}
