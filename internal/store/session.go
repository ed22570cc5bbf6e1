package store

import (
	"strconv"
	"strings"
	"time"

	"daiw-cli/internal/model"

	"github.com/google/uuid"
)

// Session is the single owner of a workstation's transient state: the node chain,
// the focused node, the chat log and the project metadata. Nothing is persisted.
type Session struct {
	Meta model.ProjectMeta
	// Nodes is kept in chain order; Step mirrors the 1-based position.
	Nodes []model.Node
	// SelectedID is a lookup key into Nodes, resolved on every use.
	SelectedID string
	// Chat is append-only; order is the order appends landed.
	Chat []model.ChatMessage

	issued map[string]bool
	seq    int
	now    func() time.Time
}

func NewSession(meta model.ProjectMeta) *Session {
	return &Session{
		Meta:   meta,
		Nodes:  []model.Node{},
		issued: map[string]bool{},
		now:    time.Now,
	}
}

// Snapshot is a detached copy of the state a generation call reads.
type Snapshot struct {
	Meta       model.ProjectMeta
	Nodes      []model.Node
	SelectedID string
}

func (s *Session) Snapshot() Snapshot {
	nodes := make([]model.Node, len(s.Nodes))
	for i, n := range s.Nodes {
		nodes[i] = n.Clone()
	}
	return Snapshot{Meta: s.Meta, Nodes: nodes, SelectedID: s.SelectedID}
}

func (s *Session) FindNode(id string) (*model.Node, bool) {
	i := s.NodeIndex(id)
	if i < 0 {
		return nil, false
	}
	return &s.Nodes[i], true
}

func (s *Session) NodeIndex(id string) int {
	id = strings.TrimSpace(id)
	if id == "" {
		return -1
	}
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// OutputIndex returns the index of the output node, or -1.
func (s *Session) OutputIndex() int {
	for i := range s.Nodes {
		if s.Nodes[i].Type == model.NodeOutput {
			return i
		}
	}
	return -1
}

// Selected resolves the focused node. A selection pointing at a node that no
// longer exists resolves to nothing.
func (s *Session) Selected() (*model.Node, bool) {
	if s.SelectedID == "" {
		return nil, false
	}
	return s.FindNode(s.SelectedID)
}

// Renumber rewrites every Step to its 1-based position.
func (s *Session) Renumber() {
	for i := range s.Nodes {
		s.Nodes[i].Step = i + 1
	}
}

// ResolveNodeRef accepts either a node id or a 1-based step number.
func (s *Session) ResolveNodeRef(ref string) (*model.Node, bool) {
	ref = strings.TrimSpace(ref)
	if n, ok := s.FindNode(ref); ok {
		return n, true
	}
	step, err := strconv.Atoi(ref)
	if err != nil || step < 1 || step > len(s.Nodes) {
		return nil, false
	}
	return &s.Nodes[step-1], true
}

// AppendMessage appends an immutable message to the chat log and returns it.
func (s *Session) AppendMessage(role model.Role, text string, atts []model.Attachment) model.ChatMessage {
	now := time.Now
	if s.now != nil {
		now = s.now
	}
	msg := model.ChatMessage{
		ID:          uuid.NewString(),
		Role:        role,
		Text:        text,
		Attachments: append([]model.Attachment(nil), atts...),
		Timestamp:   now().UTC(),
	}
	s.Chat = append(s.Chat, msg)
	return msg
}

// LastReply returns the most recent model message.
func (s *Session) LastReply() (model.ChatMessage, bool) {
	for i := len(s.Chat) - 1; i >= 0; i-- {
		if s.Chat[i].Role == model.RoleModel {
			return s.Chat[i], true
		}
	}
	return model.ChatMessage{}, false
}
