package assistant

import (
	"context"
	"strings"

	"daiw-cli/internal/model"
	"daiw-cli/internal/mutate"
	"daiw-cli/internal/store"
)

const (
	shortMessageRunes = 30

	defaultTopic    = "Love and Loss"
	defaultMood     = "Melancholic"
	defaultGenre    = "Pop"
	chatDefaultMood = "Creative"
)

type LyricParams struct {
	Topic string `json:"topic"`
	Genre string `json:"genre"`
	Mood  string `json:"mood"`
}

// ResolveLyricParams picks topic, genre and mood for a chat lyrics request.
// The lyric node is the focused node when it is a lyrics node, else the first
// lyrics node in the chain. A short message borrows that node's topic; any
// other message is the topic itself.
func ResolveLyricParams(text string, snap store.Snapshot) LyricParams {
	p := LyricParams{Topic: text, Genre: firstGenre(snap.Nodes), Mood: chatDefaultMood}
	if p.Genre == "" {
		p.Genre = defaultGenre
	}
	d, ok := lyricNode(snap)
	if !ok {
		return p
	}
	if shortMessage(text) && strings.TrimSpace(d.Topic) != "" {
		p.Topic = d.Topic
	}
	if strings.TrimSpace(d.Mood) != "" {
		p.Mood = d.Mood
	}
	return p
}

func lyricNode(snap store.Snapshot) (model.LyricsData, bool) {
	if snap.SelectedID != "" {
		for _, n := range snap.Nodes {
			if n.ID == snap.SelectedID && n.Type == model.NodeLyrics {
				return n.Payload().(model.LyricsData), true
			}
		}
	}
	for _, n := range snap.Nodes {
		if n.Type == model.NodeLyrics {
			return n.Payload().(model.LyricsData), true
		}
	}
	return model.LyricsData{}, false
}

func firstGenre(nodes []model.Node) string {
	for _, n := range nodes {
		if n.Type != model.NodeGenre {
			continue
		}
		g := n.Payload().(model.GenreData)
		if len(g.Genres) > 0 {
			return g.Genres[0]
		}
		return ""
	}
	return ""
}

// NodeLyricParams resolves the parameters the inspector uses when generating
// lyrics for a lyrics node: the node's own topic and mood, and the chain genre,
// then the project genre, then "Pop".
func NodeLyricParams(snap store.Snapshot, nodeID string) (LyricParams, bool) {
	for _, n := range snap.Nodes {
		if n.ID != nodeID || n.Type != model.NodeLyrics {
			continue
		}
		d := n.Payload().(model.LyricsData)
		p := LyricParams{Topic: d.Topic, Mood: d.Mood, Genre: firstGenre(snap.Nodes)}
		if strings.TrimSpace(p.Topic) == "" {
			p.Topic = defaultTopic
		}
		if strings.TrimSpace(p.Mood) == "" {
			p.Mood = defaultMood
		}
		if p.Genre == "" {
			p.Genre = snap.Meta.Genre
		}
		if strings.TrimSpace(p.Genre) == "" {
			p.Genre = defaultGenre
		}
		return p, true
	}
	return LyricParams{}, false
}

type NodeLyricsResult struct {
	Params LyricParams
	Text   string
	// Written is true when the lyrics were stored on the node.
	Written bool
}

// GenerateNodeLyrics generates lyrics for the lyrics node nodeID in snap. The
// caller applies the result with ApplyNodeLyrics on the session owner.
func (r *Router) GenerateNodeLyrics(ctx context.Context, snap store.Snapshot, nodeID string) (NodeLyricsResult, bool) {
	p, ok := NodeLyricParams(snap, nodeID)
	if !ok {
		return NodeLyricsResult{}, false
	}
	text, ok := r.Lyrics(ctx, p)
	return NodeLyricsResult{Params: p, Text: text, Written: ok}, true
}

// ApplyNodeLyrics writes a successful result onto the node. Failed results and
// nodes removed in the meantime leave the session untouched.
func ApplyNodeLyrics(s *store.Session, nodeID string, res NodeLyricsResult) mutate.UpdateNodeResult {
	if !res.Written {
		return mutate.UpdateNodeResult{}
	}
	text := res.Text
	return mutate.UpdateNodeFields(s, nodeID, model.NodePatch{Lyrics: &text})
}
