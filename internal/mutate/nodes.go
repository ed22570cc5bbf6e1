package mutate

import (
	"strings"

	"daiw-cli/internal/model"
	"daiw-cli/internal/store"
)

type AddNodeResult struct {
	Node *model.Node
	// Created is false only when an output node was requested and the chain already has one.
	Created bool
}

// AddNode inserts a new node of type typ immediately before the output node (or at
// the end when there is none) and renumbers the chain. The output node stays last.
// It never fails.
func AddNode(s *store.Session, typ model.NodeType) AddNodeResult {
	if s == nil {
		return AddNodeResult{}
	}
	outIdx := s.OutputIndex()
	if typ == model.NodeOutput && outIdx >= 0 {
		return AddNodeResult{Node: &s.Nodes[outIdx], Created: false}
	}

	n := model.Node{
		ID:   s.NewNodeID(),
		Type: typ,
		Name: defaultNodeName(typ),
		Data: model.DefaultData(typ),
	}

	at := len(s.Nodes)
	if outIdx >= 0 {
		at = outIdx
	}
	s.Nodes = append(s.Nodes, model.Node{})
	copy(s.Nodes[at+1:], s.Nodes[at:])
	s.Nodes[at] = n
	s.Renumber()

	return AddNodeResult{Node: &s.Nodes[at], Created: true}
}

func defaultNodeName(typ model.NodeType) string {
	switch typ {
	case model.NodeLyrics:
		return "Lyrics & Vocal"
	case model.NodeOutput:
		return "Final Prompt"
	default:
		return "New Layer"
	}
}

type RemoveNodeResult struct {
	Removed          model.Node
	Found            bool
	ClearedSelection bool
}

// RemoveNode deletes the node with id and renumbers. Unknown ids are a no-op and
// leave the selection alone.
func RemoveNode(s *store.Session, id string) RemoveNodeResult {
	if s == nil {
		return RemoveNodeResult{}
	}
	i := s.NodeIndex(id)
	if i < 0 {
		return RemoveNodeResult{}
	}
	removed := s.Nodes[i]
	s.Nodes = append(s.Nodes[:i], s.Nodes[i+1:]...)
	s.Renumber()

	res := RemoveNodeResult{Removed: removed, Found: true}
	if s.SelectedID == removed.ID {
		s.SelectedID = ""
		res.ClearedSelection = true
	}
	return res
}

type UpdateNodeResult struct {
	Node    *model.Node
	Found   bool
	Applied []string
}

// UpdateNodeFields merges patch into the node's data; fields not in the patch keep
// their values. Unknown ids are a no-op.
func UpdateNodeFields(s *store.Session, id string, patch model.NodePatch) UpdateNodeResult {
	if s == nil {
		return UpdateNodeResult{}
	}
	n, ok := s.FindNode(id)
	if !ok {
		return UpdateNodeResult{}
	}
	data, applied := model.Apply(n.Payload(), patch)
	n.Data = data
	return UpdateNodeResult{Node: n, Found: true, Applied: applied}
}

type RenameNodeResult struct {
	Node    *model.Node
	Found   bool
	Changed bool
}

func RenameNode(s *store.Session, id, name string) RenameNodeResult {
	if s == nil {
		return RenameNodeResult{}
	}
	n, ok := s.FindNode(id)
	if !ok {
		return RenameNodeResult{}
	}
	if n.Name == name {
		return RenameNodeResult{Node: n, Found: true}
	}
	n.Name = name
	return RenameNodeResult{Node: n, Found: true, Changed: true}
}

type SelectNodeResult struct {
	Node    *model.Node
	Changed bool
}

// SelectNode focuses the node with id; an empty id clears the focus. Selecting an
// id that is not in the chain leaves the current focus unchanged.
func SelectNode(s *store.Session, id string) SelectNodeResult {
	if s == nil {
		return SelectNodeResult{}
	}
	id = strings.TrimSpace(id)
	if id == "" {
		changed := s.SelectedID != ""
		s.SelectedID = ""
		return SelectNodeResult{Changed: changed}
	}
	n, ok := s.FindNode(id)
	if !ok {
		return SelectNodeResult{}
	}
	changed := s.SelectedID != id
	s.SelectedID = id
	return SelectNodeResult{Node: n, Changed: changed}
}
