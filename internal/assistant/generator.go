// Package assistant turns the node chain into grounding text for generation
// calls, decides which call a chat message triggers, and converts every
// collaborator failure into a reply the chat panel can show.
package assistant

import (
	"context"
	"errors"

	"daiw-cli/internal/model"
)

// Generator is the generative-AI collaborator. Every method may fail; callers in
// this package never let those errors escape.
type Generator interface {
	// GenerateText returns a free-form suggestion for prompt. grounding may be empty.
	GenerateText(ctx context.Context, prompt, grounding string) (string, error)
	// GenerateAnalysis reviews prompt against grounding, optionally looking at a JPEG image.
	GenerateAnalysis(ctx context.Context, prompt, grounding string, image []byte) (string, error)
	GenerateLyrics(ctx context.Context, topic, genre, mood string) (string, error)
	// GenerateCoverArt returns nil (and no error) when the model produced no image.
	GenerateCoverArt(ctx context.Context, prompt string, size model.ImageSize) (*Image, error)
	TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error)
}

type Image struct {
	Data     []byte
	MIMEType string
}

// Replies shown when a collaborator call fails or comes back empty.
const (
	FallbackSuggestionError = "Error generating suggestion."
	FallbackSuggestionEmpty = "No suggestion generated."
	FallbackAnalysisError   = "Error analyzing content."
	FallbackAnalysisEmpty   = "Analysis complete."
	FallbackLyricsError     = "Error generating lyrics. Please try again."
	FallbackLyricsEmpty     = "Could not generate lyrics."
	FallbackTranscribeError = "Error transcribing audio."
	FallbackImage           = "I couldn't generate the image at this time."
)

// ErrUnavailable is returned by the generator used when no API key is configured.
var ErrUnavailable = errors.New("generative AI service not configured")

// UnavailableGenerator fails every call with Err (ErrUnavailable when nil).
type UnavailableGenerator struct {
	Err error
}

func (g UnavailableGenerator) err() error {
	if g.Err != nil {
		return g.Err
	}
	return ErrUnavailable
}

func (g UnavailableGenerator) GenerateText(context.Context, string, string) (string, error) {
	return "", g.err()
}

func (g UnavailableGenerator) GenerateAnalysis(context.Context, string, string, []byte) (string, error) {
	return "", g.err()
}

func (g UnavailableGenerator) GenerateLyrics(context.Context, string, string, string) (string, error) {
	return "", g.err()
}

func (g UnavailableGenerator) GenerateCoverArt(context.Context, string, model.ImageSize) (*Image, error) {
	return nil, g.err()
}

func (g UnavailableGenerator) TranscribeAudio(context.Context, []byte, string) (string, error) {
	return "", g.err()
}
