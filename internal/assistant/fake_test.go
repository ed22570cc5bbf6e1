package assistant

import (
	"context"
	"sync"

	"daiw-cli/internal/model"
)

type lyricsCall struct{ topic, genre, mood string }

// fakeGenerator records calls and answers with canned values.
type fakeGenerator struct {
	mu sync.Mutex

	text, analysis, lyrics, transcript string
	image                              *Image
	err                                error

	textCalls     []string
	groundings    []string
	analysisCalls []string
	lyricsCalls   []lyricsCall
	imageCalls    []model.ImageSize
	audioMIMEs    []string
}

func (f *fakeGenerator) GenerateText(_ context.Context, prompt, grounding string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textCalls = append(f.textCalls, prompt)
	f.groundings = append(f.groundings, grounding)
	return f.text, f.err
}

func (f *fakeGenerator) GenerateAnalysis(_ context.Context, prompt, grounding string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analysisCalls = append(f.analysisCalls, prompt)
	f.groundings = append(f.groundings, grounding)
	return f.analysis, f.err
}

func (f *fakeGenerator) GenerateLyrics(_ context.Context, topic, genre, mood string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lyricsCalls = append(f.lyricsCalls, lyricsCall{topic, genre, mood})
	return f.lyrics, f.err
}

func (f *fakeGenerator) GenerateCoverArt(_ context.Context, _ string, size model.ImageSize) (*Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageCalls = append(f.imageCalls, size)
	return f.image, f.err
}

func (f *fakeGenerator) TranscribeAudio(_ context.Context, _ []byte, mimeType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audioMIMEs = append(f.audioMIMEs, mimeType)
	return f.transcript, f.err
}
