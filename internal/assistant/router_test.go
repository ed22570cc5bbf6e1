package assistant

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"daiw-cli/internal/model"
	"daiw-cli/internal/mutate"
	"daiw-cli/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestClassify_PriorityOrder(t *testing.T) {
	cases := []struct {
		text string
		want RouteKind
	}{
		{"Write lyrics and generate cover art", RouteImage},
		{"GENERATE IMAGE of a city", RouteImage},
		{"please review my lyric sheet", RouteLyrics},
		{"Write a song about rain", RouteLyrics},
		{"Analyze the arrangement", RouteAnalysis},
		{"can you review this?", RouteAnalysis},
		{"make it darker", RouteSuggestion},
		{"", RouteSuggestion},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.text), "text %q", tc.text)
	}
}

func TestRoute_ImageBeatsLyrics(t *testing.T) {
	gen := &fakeGenerator{image: &Image{Data: []byte{0x89, 'P', 'N', 'G'}, MIMEType: "image/png"}}
	r := NewRouter(gen, nil)

	reply := r.Route(context.Background(), Request{
		Text:      "Write lyrics and generate cover art",
		Snapshot:  store.Seed(model.DefaultProjectMeta()).Snapshot(),
		ImageSize: model.ImageSize2K,
	})

	assert.Equal(t, RouteImage, reply.Route)
	assert.Equal(t, ReplyImage, reply.Kind)
	assert.False(t, reply.Failed)
	assert.Equal(t, "Here is a 2K cover art concept based on your request.", reply.Text)
	require.Len(t, reply.Attachments, 1)
	assert.Equal(t, model.AttachmentImage, reply.Attachments[0].Kind)
	assert.True(t, strings.HasPrefix(reply.Attachments[0].Locator, "data:image/png;base64,"))
	assert.Empty(t, gen.lyricsCalls)
	assert.Equal(t, []model.ImageSize{model.ImageSize2K}, gen.imageCalls)
}

func TestRoute_ImageFailureFallsBackToText(t *testing.T) {
	for name, gen := range map[string]*fakeGenerator{
		"no image": {},
		"error":    {err: errors.New("quota")},
		"empty":    {image: &Image{}},
	} {
		t.Run(name, func(t *testing.T) {
			reply := NewRouter(gen, nil).Route(context.Background(), Request{Text: "cover art please"})
			assert.Equal(t, ReplyText, reply.Kind)
			assert.Equal(t, FallbackImage, reply.Text)
			assert.True(t, reply.Failed)
			assert.Empty(t, reply.Attachments)
			// Unset size defaults to 1K.
			assert.Equal(t, []model.ImageSize{model.ImageSize1K}, gen.imageCalls)
		})
	}
}

func lyricsSession(t *testing.T, topic, mood string) *store.Session {
	t.Helper()
	s := store.Seed(model.DefaultProjectMeta())
	n := mutate.AddNode(s, model.NodeLyrics).Node
	mutate.UpdateNodeFields(s, n.ID, model.NodePatch{Topic: &topic, Mood: &mood})
	mutate.SelectNode(s, n.ID)
	return s
}

func TestRoute_LyricsTopicResolution(t *testing.T) {
	s := lyricsSession(t, "Stars", "")

	gen := &fakeGenerator{lyrics: "[Verse 1]\n..."}
	r := NewRouter(gen, nil)

	reply := r.Route(context.Background(), Request{Text: "write lyrics", Snapshot: s.Snapshot()})
	assert.Equal(t, RouteLyrics, reply.Route)
	assert.Equal(t, "[Verse 1]\n...", reply.Text)

	long := "A forty-two character message about the void"
	r.Route(context.Background(), Request{Text: long + " lyric", Snapshot: s.Snapshot()})

	require.Len(t, gen.lyricsCalls, 2)
	assert.Equal(t, lyricsCall{"Stars", "Synthwave", "Creative"}, gen.lyricsCalls[0])
	assert.Equal(t, long+" lyric", gen.lyricsCalls[1].topic)
}

func TestResolveLyricParams(t *testing.T) {
	t.Run("first lyrics node when focus is elsewhere", func(t *testing.T) {
		s := lyricsSession(t, "Rain", "Moody")
		mutate.SelectNode(s, s.Nodes[0].ID)
		p := ResolveLyricParams("lyric", s.Snapshot())
		assert.Equal(t, LyricParams{Topic: "Rain", Genre: "Synthwave", Mood: "Moody"}, p)
	})
	t.Run("no lyrics node and no genre", func(t *testing.T) {
		p := ResolveLyricParams("lyric", store.NewSession(model.DefaultProjectMeta()).Snapshot())
		assert.Equal(t, LyricParams{Topic: "lyric", Genre: "Pop", Mood: "Creative"}, p)
	})
	t.Run("empty first genre node", func(t *testing.T) {
		snap := store.Snapshot{Nodes: []model.Node{
			{ID: "g1", Type: model.NodeGenre, Data: model.GenreData{}},
			{ID: "g2", Type: model.NodeGenre, Data: model.GenreData{Genres: []string{"Jazz"}}},
		}}
		assert.Equal(t, "Pop", ResolveLyricParams("lyric", snap).Genre)
	})
	t.Run("short message with empty node topic", func(t *testing.T) {
		s := lyricsSession(t, "", "")
		assert.Equal(t, "lyric", ResolveLyricParams("lyric", s.Snapshot()).Topic)
	})
}

func TestRoute_AnalysisAndSuggestionCarryGrounding(t *testing.T) {
	s := store.Seed(model.DefaultProjectMeta())
	gen := &fakeGenerator{analysis: "Solid.", text: "Add a riser."}
	r := NewRouter(gen, nil)

	a := r.Route(context.Background(), Request{Text: "Analyze my mix", Snapshot: s.Snapshot()})
	b := r.Route(context.Background(), Request{Text: "what next?", Snapshot: s.Snapshot()})

	assert.Equal(t, Reply{Kind: ReplyText, Route: RouteAnalysis, Text: "Solid."}, a)
	assert.Equal(t, Reply{Kind: ReplyText, Route: RouteSuggestion, Text: "Add a riser."}, b)
	assert.Equal(t, []string{"Analyze my mix"}, gen.analysisCalls)
	assert.Equal(t, []string{"what next?"}, gen.textCalls)
	want := BuildContext(s.Nodes, s.SelectedID, s.Meta)
	assert.Equal(t, []string{want, want}, gen.groundings)
}

func TestRoute_Fallbacks(t *testing.T) {
	failing := &fakeGenerator{err: errors.New("boom")}
	empty := &fakeGenerator{}
	cases := []struct {
		text       string
		gen        *fakeGenerator
		want       string
		wantFailed bool
	}{
		{"hello", failing, FallbackSuggestionError, true},
		{"hello", empty, FallbackSuggestionEmpty, true},
		{"review", failing, FallbackAnalysisError, true},
		{"review", empty, FallbackAnalysisEmpty, true},
		{"lyric", failing, FallbackLyricsError, true},
		{"lyric", empty, FallbackLyricsEmpty, true},
	}
	for _, tc := range cases {
		reply := NewRouter(tc.gen, nil).Route(context.Background(), Request{Text: tc.text})
		assert.Equal(t, tc.want, reply.Text, "text %q", tc.text)
		assert.Equal(t, tc.wantFailed, reply.Failed, "text %q", tc.text)
		assert.Equal(t, ReplyText, reply.Kind)
	}
}

func TestRoute_EmptyResultsFailOnEveryRoute(t *testing.T) {
	r := NewRouter(&fakeGenerator{}, nil)
	for _, text := range []string{"hello", "review", "lyric"} {
		var tr Tracker
		tr.Begin()
		reply := r.Route(context.Background(), Request{Text: text})
		tr.Finish(reply.Failed)
		assert.Equal(t, StateFailed, tr.State(), "text %q", text)
	}
}

type panicGenerator struct{ UnavailableGenerator }

func (panicGenerator) GenerateText(context.Context, string, string) (string, error) {
	panic("unexpected")
}

func TestRoute_PanicBecomesApology(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRouter(panicGenerator{}, zap.New(core))

	reply := r.Route(context.Background(), Request{Text: "hi"})

	assert.Equal(t, FallbackSuggestionError, reply.Text)
	assert.True(t, reply.Failed)
	assert.Equal(t, 1, logs.FilterMessage("assistant route panicked").Len())
}

func TestRoute_UnavailableGeneratorLogsAndDegrades(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewRouter(nil, zap.New(core))

	reply := r.Route(context.Background(), Request{Text: "analyze"})

	assert.Equal(t, FallbackAnalysisError, reply.Text)
	entries := logs.FilterMessage("generation failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "analysis", entries[0].ContextMap()["call"])
}

func TestRoute_ConcurrentRepliesAllLand(t *testing.T) {
	s := store.Seed(model.DefaultProjectMeta())
	r := NewRouter(&fakeGenerator{text: "idea"}, nil)
	snap := s.Snapshot()

	replies := make(chan Reply)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			replies <- r.Route(context.Background(), Request{Text: "more", Snapshot: snap})
		}()
	}
	go func() {
		wg.Wait()
		close(replies)
	}()

	var tr Tracker
	tr.Begin()
	tr.Begin()
	for reply := range replies {
		AppendReply(s, reply)
		tr.Finish(reply.Failed)
	}

	assert.Len(t, s.Chat, 3)
	assert.Equal(t, StateSucceeded, tr.State())
	assert.False(t, tr.Busy())
}

func TestTranscribe(t *testing.T) {
	gen := &fakeGenerator{transcript: "  add a swell \n"}
	text, ok := NewRouter(gen, nil).Transcribe(context.Background(), []byte("RIFF"), "")
	assert.True(t, ok)
	assert.Equal(t, "add a swell", text)
	assert.Equal(t, []string{"audio/wav"}, gen.audioMIMEs)

	text, ok = NewRouter(UnavailableGenerator{}, nil).Transcribe(context.Background(), nil, "audio/webm")
	assert.False(t, ok)
	assert.Equal(t, FallbackTranscribeError, text)
}
