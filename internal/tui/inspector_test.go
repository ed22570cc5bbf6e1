package tui

import (
	"reflect"
	"strings"
	"testing"

	"daiw-cli/internal/model"
)

func TestInspector_EditListField(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "down", "enter")
	if m.focus != paneInspector {
		t.Fatalf("expected inspector focus, got %v", m.focus)
	}

	m, _ = press(t, m, "down", "enter")
	if m.modal != modalEditField || m.editField != "genres" || m.editMultiline {
		t.Fatalf("expected single-line genres editor, got modal=%v field=%q", m.modal, m.editField)
	}
	if got := m.editLine.Value(); got != "Synthwave, Cyberpunk" {
		t.Fatalf("expected current genres prefilled, got %q", got)
	}

	m.editLine.SetValue("House, , Techno ")
	m, _ = press(t, m, "enter")

	data := m.session.Nodes[1].Payload().(model.GenreData)
	if !reflect.DeepEqual(data.Genres, []string{"House", "Techno"}) {
		t.Fatalf("unexpected genres: %#v", data.Genres)
	}
}

func TestInspector_PromptUsesMultilineEditor(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "enter", "down", "enter")
	if !m.editMultiline {
		t.Fatalf("expected multi-line editor for prompt")
	}
	m.editArea.SetValue("Rainy rooftop\nsirens far away")
	m, _ = press(t, m, "ctrl+s")

	if got := m.session.Nodes[0].Payload().(model.ContextData).Prompt; got != "Rainy rooftop\nsirens far away" {
		t.Fatalf("unexpected prompt: %q", got)
	}
}

func TestInspector_GenerateLyricsPatchesNode(t *testing.T) {
	gen := &stubGenerator{lyrics: "[Chorus]\nWe run through the neon"}
	m := newTestModel(t, gen)
	m, _ = press(t, m, "L", "tab")
	id := m.session.SelectedID

	m, cmd := press(t, m, "ctrl+l")
	if !m.lyricsBusy[id] {
		t.Fatalf("expected lyrics marked in flight")
	}
	_, again := press(t, m, "ctrl+l")
	if again != nil {
		t.Fatalf("expected a second generation to be refused")
	}

	m = deliver(t, m, drain(cmd))
	n, _ := m.session.FindNode(id)
	data := n.Payload().(model.LyricsData)
	if data.Lyrics != "[Chorus]\nWe run through the neon" {
		t.Fatalf("unexpected lyrics: %q", data.Lyrics)
	}
	if len(m.lyricsBusy) != 0 {
		t.Fatalf("expected nothing in flight")
	}
}

func TestInspector_GenerateLyricsFailureLeavesNode(t *testing.T) {
	m := newTestModel(t, &stubGenerator{})
	m, _ = press(t, m, "L", "tab")
	id := m.session.SelectedID

	m, cmd := press(t, m, "ctrl+l")
	m = deliver(t, m, drain(cmd))

	n, _ := m.session.FindNode(id)
	if got := n.Payload().(model.LyricsData).Lyrics; got != "" {
		t.Fatalf("expected lyrics untouched, got %q", got)
	}
	if !strings.Contains(m.minibufferText, "lyrics") {
		t.Fatalf("expected a fallback hint, got %q", m.minibufferText)
	}
}

func TestInspector_LyricsForRemovedNodeAreDropped(t *testing.T) {
	m := newTestModel(t, &stubGenerator{lyrics: "la la"})
	m, _ = press(t, m, "L", "tab")

	m, cmd := press(t, m, "ctrl+l")
	m, _ = press(t, m, "tab", "tab", "x", "enter")
	if len(m.session.Nodes) != 5 {
		t.Fatalf("expected lyrics node deleted, got %v", nodeNames(m.session))
	}

	m = deliver(t, m, drain(cmd))
	if len(m.session.Nodes) != 5 {
		t.Fatalf("expected no node to reappear")
	}
	if !strings.Contains(m.minibufferText, "removed") {
		t.Fatalf("unexpected hint: %q", m.minibufferText)
	}
}

func TestInspector_GenerateLyricsOnlyOnLyricsNodes(t *testing.T) {
	m := newTestModel(t, &stubGenerator{lyrics: "x"})
	m, _ = press(t, m, "enter")
	m, cmd := press(t, m, "ctrl+l")
	if cmd != nil {
		t.Fatalf("expected no generation for a context node")
	}
}
