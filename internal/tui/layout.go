package tui

import (
	"os"
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

var getenv = os.Getenv

// normalizePane forces s to exactly width columns (ANSI-aware) and height lines,
// so lipgloss.JoinHorizontal lines panes up.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}

	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}

	for i, ln := range lines {
		// Bound the width computation on pathological lines.
		if width > 0 && len(ln) > 8192 {
			ln = truncateCols(ln, width)
		}
		w := xansi.StringWidth(ln)
		if w > width {
			ln = truncateCols(ln, width)
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

func truncateCols(s string, width int) string {
	switch {
	case width <= 0:
		return ""
	case width == 1:
		return xansi.Cut(s, 0, 1)
	default:
		return xansi.Cut(s, 0, width-1) + "…"
	}
}

// paneWidths splits the screen: chain 30%, inspector 32%, assistant the rest.
func paneWidths(total int) (chain, inspector, chat int) {
	if total < 30 {
		return total, 0, 0
	}
	chain = total * 30 / 100
	inspector = total * 32 / 100
	chat = total - chain - inspector
	return chain, inspector, chat
}
