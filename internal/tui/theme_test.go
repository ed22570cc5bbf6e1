package tui

import (
	"strings"
	"testing"

	xansi "github.com/charmbracelet/x/ansi"
)

func TestThemePreference(t *testing.T) {
	cases := []struct {
		name       string
		env        map[string]string
		configured string
		dark, ok   bool
	}{
		{name: "env wins", env: map[string]string{"DAIW_TUI_THEME": "light"}, configured: "dark", dark: false, ok: true},
		{name: "config", configured: "dark", dark: true, ok: true},
		{name: "darkbg", env: map[string]string{"DAIW_TUI_DARKBG": "true"}, configured: "auto", dark: true, ok: true},
		{name: "colorfgbg light", env: map[string]string{"COLORFGBG": "0;15"}, dark: false, ok: true},
		{name: "colorfgbg dark", env: map[string]string{"COLORFGBG": "15;default;0"}, dark: true, ok: true},
		{name: "unknown", ok: false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, k := range []string{"DAIW_TUI_THEME", "DAIW_TUI_DARKBG", "COLORFGBG"} {
				t.Setenv(k, tc.env[k])
			}
			dark, ok := themePreference(tc.configured)
			if dark != tc.dark || ok != tc.ok {
				t.Fatalf("got dark=%v ok=%v, want dark=%v ok=%v", dark, ok, tc.dark, tc.ok)
			}
		})
	}
}

func TestNormalizePane(t *testing.T) {
	out := normalizePane("short\na much longer line that overflows", 10, 3)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	for i, ln := range lines {
		if w := xansi.StringWidth(ln); w != 10 {
			t.Fatalf("line %d: expected width 10, got %d", i, w)
		}
	}
	if !strings.HasSuffix(lines[1], "…") {
		t.Fatalf("expected truncation marker, got %q", lines[1])
	}
}

func TestPaneWidths(t *testing.T) {
	a, b, c := paneWidths(100)
	if a+b+c != 100 || a != 30 || b != 32 {
		t.Fatalf("unexpected split: %d %d %d", a, b, c)
	}
	if a, b, c := paneWidths(20); a != 20 || b != 0 || c != 0 {
		t.Fatalf("expected chain only on narrow screens, got %d %d %d", a, b, c)
	}
}
