package assistant

import (
	"encoding/json"
	"fmt"
	"strings"

	"daiw-cli/internal/model"
)

// Persona is appended to every grounding context.
const Persona = "You are the DAiW Creative Assistant, an expert music producer and songwriter working inside a " +
	"music-production workstation. Use the project and node chain above as context. Give concise, actionable " +
	"ideas for arrangement, sound design, lyrics and visuals that fit this chain, and refer to nodes by name."

const (
	focusMarker     = " (FOCUSED)"
	lyricsPreview   = 100
	previewEllipsis = "..."
)

// BuildContext renders the project and chain as the grounding text handed to
// text-generation calls.
func BuildContext(nodes []model.Node, selectedID string, meta model.ProjectMeta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Project: %s | BPM: %d | Key: %s\n", meta.Name, meta.BPM, meta.Key)
	b.WriteString("Node chain:\n")
	for _, n := range nodes {
		b.WriteString(summaryLine(n, selectedID))
		b.WriteByte('\n')
		b.WriteString("  ")
		b.WriteString(detailLine(n))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(Persona)
	return b.String()
}

func summaryLine(n model.Node, selectedID string) string {
	line := "[" + n.Type.Label() + "] " + n.Name
	if selectedID != "" && n.ID == selectedID {
		line += focusMarker
	}
	return line
}

func detailLine(n model.Node) string {
	switch d := n.Payload().(type) {
	case model.LyricsData:
		if d.Lyrics != "" {
			return fmt.Sprintf("Topic: %s | Mood: %s | Lyrics: %s", d.Topic, d.Mood, previewLyrics(d.Lyrics))
		}
	case model.ContextData:
		if d.Prompt != "" {
			return `Prompt: "` + d.Prompt + `"`
		}
	case model.GenreData:
		if len(d.Genres) > 0 {
			return "Genres: " + strings.Join(d.Genres, ", ")
		}
	case model.InstrumentData:
		if len(d.Instruments) > 0 {
			return "Instruments: " + strings.Join(d.Instruments, ", ")
		}
	case model.EffectData:
		if len(d.Effects) > 0 {
			return "Effects: " + strings.Join(d.Effects, ", ")
		}
	}
	return "Data: " + dumpData(n.Clone().Data)
}

// previewLyrics keeps the first 100 characters with newlines flattened to spaces.
func previewLyrics(s string) string {
	r := []rune(s)
	if len(r) > lyricsPreview {
		r = r[:lyricsPreview]
	}
	out := strings.ReplaceAll(string(r), "\n", " ")
	return out + previewEllipsis
}

func dumpData(d model.NodeData) string {
	b, err := json.Marshal(d)
	if err != nil {
		return "{}"
	}
	return string(b)
}
