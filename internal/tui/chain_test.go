package tui

import (
	"strings"
	"testing"

	"daiw-cli/internal/model"
)

func TestChain_AddLyrics_InsertsBeforeOutputAndFocuses(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "L")

	nodes := m.session.Nodes
	if len(nodes) != 6 {
		t.Fatalf("expected 6 nodes, got %d", len(nodes))
	}
	added := nodes[4]
	if added.Type != model.NodeLyrics || added.Name != "Lyrics & Vocal" || added.Step != 5 {
		t.Fatalf("unexpected node: %+v", added)
	}
	if nodes[5].Type != model.NodeOutput || nodes[5].Step != 6 {
		t.Fatalf("expected output to stay last, got %+v", nodes[5])
	}
	if m.session.SelectedID != added.ID {
		t.Fatalf("expected the new node to be focused")
	}
	if m.chain.Index() != 4 {
		t.Fatalf("expected cursor on the new node, got %d", m.chain.Index())
	}
}

func TestChain_CursorMoveSelectsNode(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "down")

	n, ok := m.selectedNode()
	if !ok || n.Name != "Genre Mixer" {
		t.Fatalf("expected Genre Mixer focused, got %+v (ok=%v)", n, ok)
	}

	m, _ = press(t, m, "esc")
	if m.session.SelectedID != "" {
		t.Fatalf("expected esc to clear the focus")
	}
}

func TestChain_DeleteAsksFirst(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "down", "x")
	if m.modal != modalConfirmDelete {
		t.Fatalf("expected confirm modal, got %v", m.modal)
	}

	m, _ = press(t, m, "esc")
	if m.modal != modalNone || len(m.session.Nodes) != 5 {
		t.Fatalf("expected cancel to keep the chain, got %v", nodeNames(m.session))
	}

	m, _ = press(t, m, "x", "enter")
	if got := strings.Join(nodeNames(m.session), ","); got != "Base Context,Instruments,FX Chain,Final Prompt" {
		t.Fatalf("unexpected chain after delete: %s", got)
	}
	if m.session.SelectedID != "" {
		t.Fatalf("expected focus cleared with the deleted node")
	}
	for i, n := range m.session.Nodes {
		if n.Step != i+1 {
			t.Fatalf("expected contiguous steps, got %d at %d", n.Step, i)
		}
	}
}

func TestChain_Rename(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "r")
	if m.modal != modalRename {
		t.Fatalf("expected rename modal, got %v", m.modal)
	}
	m.editLine.SetValue("  Opening Scene ")
	m, _ = press(t, m, "enter")

	if m.modal != modalNone {
		t.Fatalf("expected modal closed")
	}
	if m.session.Nodes[0].Name != "Opening Scene" {
		t.Fatalf("expected rename, got %q", m.session.Nodes[0].Name)
	}
}

func TestChain_RenameRefusesEmptyName(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = press(t, m, "r")
	m.editLine.SetValue("   ")
	m, _ = press(t, m, "enter")

	if m.modal != modalRename {
		t.Fatalf("expected the modal to stay open")
	}
	if m.session.Nodes[0].Name != "Base Context" {
		t.Fatalf("expected name unchanged, got %q", m.session.Nodes[0].Name)
	}
}
