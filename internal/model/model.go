package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type NodeType string

const (
	NodeContext    NodeType = "context"
	NodeGenre      NodeType = "genre"
	NodeInstrument NodeType = "instrument"
	NodeEffect     NodeType = "effect"
	NodeLyrics     NodeType = "lyrics"
	NodeOutput     NodeType = "output"
)

// NodeTypes lists every node type in palette order.
var NodeTypes = []NodeType{NodeContext, NodeGenre, NodeInstrument, NodeEffect, NodeLyrics, NodeOutput}

func ParseNodeType(s string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range NodeTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid node type: %q", s)
}

// Label is the upper-case tag used in summaries ("[LYRICS]").
func (t NodeType) Label() string { return strings.ToUpper(string(t)) }

type Node struct {
	ID   string   `json:"id"`
	Type NodeType `json:"type"`
	Name string   `json:"name"`
	Step int      `json:"step"`
	Data NodeData `json:"data"`
}

// Payload returns n.Data, or the type's default variant when Data is missing
// or belongs to another type.
func (n Node) Payload() NodeData {
	if n.Data != nil && n.Data.NodeType() == n.Type {
		return n.Data
	}
	return DefaultData(n.Type)
}

// Clone returns a copy that shares no slices with n.
func (n Node) Clone() Node {
	out := n
	out.Data = n.Payload().clone()
	return out
}

func (n Node) MarshalJSON() ([]byte, error) {
	type alias Node
	a := alias(n)
	a.Data = n.Payload()
	return json.Marshal(a)
}

func (n *Node) UnmarshalJSON(b []byte) error {
	var raw struct {
		ID   string          `json:"id"`
		Type NodeType        `json:"type"`
		Name string          `json:"name"`
		Step int             `json:"step"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	n.ID, n.Type, n.Name, n.Step = raw.ID, raw.Type, raw.Name, raw.Step
	n.Data = DefaultData(raw.Type)
	if len(raw.Data) == 0 || string(raw.Data) == "null" {
		return nil
	}
	d, err := decodeData(raw.Type, raw.Data)
	if err != nil {
		return err
	}
	n.Data = d
	return nil
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentAudio AttachmentKind = "audio"
)

type Attachment struct {
	Kind    AttachmentKind `json:"kind"`
	Locator string         `json:"locator"`
	// Bytes is the decoded payload when the locator is a data: URI.
	Bytes    []byte `json:"-"`
	MIMEType string `json:"mimeType,omitempty"`
}

// FileExt is the file extension for an image attachment; unknown types are png.
func (a Attachment) FileExt() string {
	switch strings.ToLower(a.MIMEType) {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

type ChatMessage struct {
	ID          string       `json:"id"`
	Role        Role         `json:"role"`
	Text        string       `json:"text"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

type ProjectMeta struct {
	Name  string `json:"name" yaml:"name"`
	BPM   int    `json:"bpm" yaml:"bpm" validate:"gt=0"`
	Key   string `json:"key" yaml:"key"`
	Genre string `json:"genre" yaml:"genre"`
}

func DefaultProjectMeta() ProjectMeta {
	return ProjectMeta{
		Name:  "Neon Horizons",
		BPM:   128,
		Key:   "C Minor",
		Genre: "Electronic",
	}
}

type ImageSize string

const (
	ImageSize1K ImageSize = "1K"
	ImageSize2K ImageSize = "2K"
	ImageSize4K ImageSize = "4K"
)

var ImageSizes = []ImageSize{ImageSize1K, ImageSize2K, ImageSize4K}

func ParseImageSize(s string) (ImageSize, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "1K":
		return ImageSize1K, nil
	case "2K":
		return ImageSize2K, nil
	case "4K":
		return ImageSize4K, nil
	default:
		return "", fmt.Errorf("invalid image size: %q (want 1K, 2K or 4K)", s)
	}
}

// Next cycles 1K -> 2K -> 4K -> 1K.
func (s ImageSize) Next() ImageSize {
	for i, v := range ImageSizes {
		if v == s {
			return ImageSizes[(i+1)%len(ImageSizes)]
		}
	}
	return ImageSize1K
}
