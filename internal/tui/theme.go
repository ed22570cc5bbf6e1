package tui

import (
	"context"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"time"

	"daiw-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The workstation must stay readable on light and dark terminals: colors are
// adaptive and "faint" is only used on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted       = ac("240", "243")
	colorChromeFg    = ac("240", "245")
	colorSelectedBg  = ac("#e9e9e9", "#262626")
	colorSelectedFg  = ac("235", "255")
	colorBorder      = ac("250", "240")
	colorBorderFocus = ac("27", "62")
	colorSurfaceFg   = ac("235", "252")
	colorControlBg   = ac("252", "235")
	colorInputBg     = ac("254", "234")
	colorAccent      = ac("27", "62")
	colorAccentFg    = ac("255", "235")
	colorUserFg      = ac("25", "111")
	colorModelFg     = ac("90", "183")
)

// nodeColor tints the type tag of each node in the chain.
func nodeColor(t model.NodeType) lipgloss.AdaptiveColor {
	switch t {
	case model.NodeContext:
		return ac("91", "141")
	case model.NodeGenre:
		return ac("162", "205")
	case model.NodeInstrument:
		return ac("26", "75")
	case model.NodeEffect:
		return ac("130", "214")
	case model.NodeLyrics:
		return ac("28", "78")
	default:
		return ac("240", "250")
	}
}

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honours CLICOLOR, which is right for piped CLI output
// but can switch colors off inside a TUI. Here only NO_COLOR is honoured.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Terminals like macOS Terminal.app under-report when probed; trust TERM/COLORTERM.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// themePreference resolves light/dark from, in order: DAIW_TUI_THEME, the
// configured theme, DAIW_TUI_DARKBG and COLORFGBG. ok is false when nothing
// decided it.
func themePreference(configured string) (dark bool, ok bool) {
	for _, v := range []string{os.Getenv("DAIW_TUI_THEME"), configured} {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "light":
			return false, true
		case "dark":
			return true, true
		}
	}

	if v := strings.TrimSpace(os.Getenv("DAIW_TUI_DARKBG")); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b, true
		}
	}

	// COLORFGBG is "fg;bg" (sometimes more segments); the last one is the background.
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}

func applyThemePreference(configured string) {
	if dark, ok := themePreference(configured); ok {
		lipgloss.SetHasDarkBackground(dark)
		return
	}
	// Terminal.app rarely sets COLORFGBG; fall back to the OS appearance.
	if runtime.GOOS == "darwin" {
		if dark, ok := macOSHasDarkAppearance(); ok {
			lipgloss.SetHasDarkBackground(dark)
		}
	}
}

func macOSHasDarkAppearance() (dark bool, ok bool) {
	// Prints "Dark" in dark mode; exits 1 in light mode (key missing).
	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()

	out, err := exec.CommandContext(ctx, "defaults", "read", "-g", "AppleInterfaceStyle").CombinedOutput()
	if ctx.Err() != nil {
		return false, false
	}
	if err == nil {
		return strings.Contains(strings.ToLower(string(out)), "dark"), true
	}
	if ee, ok := err.(*exec.ExitError); ok && ee.ExitCode() == 1 {
		return false, true
	}
	return false, false
}
