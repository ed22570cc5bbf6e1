package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// NodeData is the type-specific payload of a Node. Each NodeType has exactly one
// variant; the set is closed.
type NodeData interface {
	NodeType() NodeType
	apply(p NodePatch) (NodeData, []string)
	clone() NodeData
}

type ContextData struct {
	Prompt string `json:"prompt"`
}

type GenreData struct {
	Genres []string `json:"genres"`
}

type InstrumentData struct {
	Instruments []string `json:"instruments"`
}

type EffectData struct {
	Effects []string `json:"effects"`
}

type LyricsData struct {
	Topic  string `json:"topic"`
	Mood   string `json:"mood"`
	Lyrics string `json:"lyrics"`
}

type OutputData struct{}

func (ContextData) NodeType() NodeType    { return NodeContext }
func (GenreData) NodeType() NodeType      { return NodeGenre }
func (InstrumentData) NodeType() NodeType { return NodeInstrument }
func (EffectData) NodeType() NodeType     { return NodeEffect }
func (LyricsData) NodeType() NodeType     { return NodeLyrics }
func (OutputData) NodeType() NodeType     { return NodeOutput }

// DefaultData returns the payload a freshly added node of type t starts with.
func DefaultData(t NodeType) NodeData {
	switch t {
	case NodeContext:
		return ContextData{}
	case NodeGenre:
		return GenreData{Genres: []string{}}
	case NodeInstrument:
		return InstrumentData{Instruments: []string{}}
	case NodeEffect:
		return EffectData{Effects: []string{}}
	case NodeLyrics:
		return LyricsData{}
	default:
		return OutputData{}
	}
}

func decodeData(t NodeType, raw json.RawMessage) (NodeData, error) {
	var (
		d   NodeData
		err error
	)
	switch t {
	case NodeContext:
		var v ContextData
		err = json.Unmarshal(raw, &v)
		d = v
	case NodeGenre:
		var v GenreData
		err = json.Unmarshal(raw, &v)
		d = v.clone()
	case NodeInstrument:
		var v InstrumentData
		err = json.Unmarshal(raw, &v)
		d = v.clone()
	case NodeEffect:
		var v EffectData
		err = json.Unmarshal(raw, &v)
		d = v.clone()
	case NodeLyrics:
		var v LyricsData
		err = json.Unmarshal(raw, &v)
		d = v
	default:
		d = OutputData{}
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s data: %w", t, err)
	}
	return d, nil
}

func cloneStrings(xs []string) []string { return append([]string{}, xs...) }

func (d ContextData) clone() NodeData { return d }
func (d LyricsData) clone() NodeData  { return d }
func (d OutputData) clone() NodeData  { return d }

func (d GenreData) clone() NodeData {
	return GenreData{Genres: cloneStrings(d.Genres)}
}

func (d InstrumentData) clone() NodeData {
	return InstrumentData{Instruments: cloneStrings(d.Instruments)}
}

func (d EffectData) clone() NodeData {
	return EffectData{Effects: cloneStrings(d.Effects)}
}

// NodePatch is a partial update. Nil fields are left untouched; fields that the
// target variant does not own are ignored.
type NodePatch struct {
	Prompt      *string   `json:"prompt,omitempty"`
	Genres      *[]string `json:"genres,omitempty"`
	Instruments *[]string `json:"instruments,omitempty"`
	Effects     *[]string `json:"effects,omitempty"`
	Topic       *string   `json:"topic,omitempty"`
	Mood        *string   `json:"mood,omitempty"`
	Lyrics      *string   `json:"lyrics,omitempty"`
}

func (p NodePatch) IsEmpty() bool {
	return p.Prompt == nil && p.Genres == nil && p.Instruments == nil && p.Effects == nil &&
		p.Topic == nil && p.Mood == nil && p.Lyrics == nil
}

// Merge returns p with every field set in q copied over.
func (p NodePatch) Merge(q NodePatch) NodePatch {
	if q.Prompt != nil {
		p.Prompt = q.Prompt
	}
	if q.Genres != nil {
		p.Genres = q.Genres
	}
	if q.Instruments != nil {
		p.Instruments = q.Instruments
	}
	if q.Effects != nil {
		p.Effects = q.Effects
	}
	if q.Topic != nil {
		p.Topic = q.Topic
	}
	if q.Mood != nil {
		p.Mood = q.Mood
	}
	if q.Lyrics != nil {
		p.Lyrics = q.Lyrics
	}
	return p
}

// Apply merges p into d and reports which fields were written.
func Apply(d NodeData, p NodePatch) (NodeData, []string) {
	if d == nil {
		return d, nil
	}
	return d.apply(p)
}

func (d ContextData) apply(p NodePatch) (NodeData, []string) {
	if p.Prompt == nil {
		return d, nil
	}
	d.Prompt = *p.Prompt
	return d, []string{"prompt"}
}

func (d GenreData) apply(p NodePatch) (NodeData, []string) {
	if p.Genres == nil {
		return d, nil
	}
	return GenreData{Genres: cloneStrings(*p.Genres)}, []string{"genres"}
}

func (d InstrumentData) apply(p NodePatch) (NodeData, []string) {
	if p.Instruments == nil {
		return d, nil
	}
	return InstrumentData{Instruments: cloneStrings(*p.Instruments)}, []string{"instruments"}
}

func (d EffectData) apply(p NodePatch) (NodeData, []string) {
	if p.Effects == nil {
		return d, nil
	}
	return EffectData{Effects: cloneStrings(*p.Effects)}, []string{"effects"}
}

func (d LyricsData) apply(p NodePatch) (NodeData, []string) {
	var applied []string
	if p.Topic != nil {
		d.Topic = *p.Topic
		applied = append(applied, "topic")
	}
	if p.Mood != nil {
		d.Mood = *p.Mood
		applied = append(applied, "mood")
	}
	if p.Lyrics != nil {
		d.Lyrics = *p.Lyrics
		applied = append(applied, "lyrics")
	}
	return d, applied
}

func (d OutputData) apply(NodePatch) (NodeData, []string) { return d, nil }

// FieldNames lists the editable fields of a node type, in display order.
func FieldNames(t NodeType) []string {
	switch t {
	case NodeContext:
		return []string{"prompt"}
	case NodeGenre:
		return []string{"genres"}
	case NodeInstrument:
		return []string{"instruments"}
	case NodeEffect:
		return []string{"effects"}
	case NodeLyrics:
		return []string{"topic", "mood", "lyrics"}
	default:
		return nil
	}
}

// IsListField reports whether key holds an ordered sequence of strings.
func IsListField(key string) bool {
	switch key {
	case "genres", "instruments", "effects":
		return true
	}
	return false
}

// FieldText renders one field for editing; list fields are comma-joined.
func FieldText(d NodeData, key string) string {
	switch v := d.(type) {
	case ContextData:
		if key == "prompt" {
			return v.Prompt
		}
	case GenreData:
		if key == "genres" {
			return strings.Join(v.Genres, ", ")
		}
	case InstrumentData:
		if key == "instruments" {
			return strings.Join(v.Instruments, ", ")
		}
	case EffectData:
		if key == "effects" {
			return strings.Join(v.Effects, ", ")
		}
	case LyricsData:
		switch key {
		case "topic":
			return v.Topic
		case "mood":
			return v.Mood
		case "lyrics":
			return v.Lyrics
		}
	}
	return ""
}

// ParsePatchField builds a single-field patch from a key=value pair as typed on
// the command line or in the inspector. List values split on commas.
func ParsePatchField(key, value string) (NodePatch, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	var p NodePatch
	switch key {
	case "prompt":
		p.Prompt = &value
	case "genres", "genre":
		xs := SplitList(value)
		p.Genres = &xs
	case "instruments", "instrument":
		xs := SplitList(value)
		p.Instruments = &xs
	case "effects", "effect":
		xs := SplitList(value)
		p.Effects = &xs
	case "topic":
		p.Topic = &value
	case "mood":
		p.Mood = &value
	case "lyrics":
		p.Lyrics = &value
	default:
		return NodePatch{}, fmt.Errorf("unknown node field: %q", key)
	}
	return p, nil
}

// SplitList splits a comma-separated list, trimming blanks.
func SplitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
