// Package gemini implements the assistant's generative collaborator on top of
// the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultTextModel       = "gemini-3-pro-preview"
	DefaultTranscribeModel = "gemini-3-flash-preview"
	DefaultImageModel      = "gemini-2.5-flash-image"
	DefaultImageModelHD    = "gemini-3-pro-image-preview"

	suggestionThinking = 1024
	analysisThinking   = 2048
	lyricsThinking     = 2048
	lyricsTemperature  = 1.2

	transcribeInstruction = "Transcribe this audio exactly."
)

// ErrNoAPIKey is returned by New when Options.APIKey is empty.
var ErrNoAPIKey = errors.New("gemini: API key is required")

type Options struct {
	APIKey  string
	BaseURL string
	// Timeout bounds each HTTP request. Zero leaves the SDK default.
	Timeout time.Duration

	TextModel       string
	TranscribeModel string
	// ImageModel serves 1K covers; ImageModelHD serves 2K and 4K.
	ImageModel   string
	ImageModelHD string

	// BreakerFailures consecutive failures open the breaker for BreakerCooldown.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

func (o Options) withDefaults() Options {
	if o.TextModel == "" {
		o.TextModel = DefaultTextModel
	}
	if o.TranscribeModel == "" {
		o.TranscribeModel = DefaultTranscribeModel
	}
	if o.ImageModel == "" {
		o.ImageModel = DefaultImageModel
	}
	if o.ImageModelHD == "" {
		o.ImageModelHD = DefaultImageModelHD
	}
	if o.BreakerFailures == 0 {
		o.BreakerFailures = 3
	}
	if o.BreakerCooldown <= 0 {
		o.BreakerCooldown = 30 * time.Second
	}
	return o
}

// contentGenerator is the slice of *genai.Models the client uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client answers assistant calls with Gemini models. It is safe for concurrent use.
type Client struct {
	models contentGenerator
	opts   Options
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

var _ assistant.Generator = (*Client)(nil)

func New(ctx context.Context, opts Options, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNoAPIKey
	}
	cfg := &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPOptions.Timeout = genai.Ptr(opts.Timeout)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return newWithModels(client.Models, opts, logger), nil
}

func newWithModels(models contentGenerator, opts Options, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	c := &Client{models: models, opts: opts, logger: logger}
	c.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gemini",
		MaxRequests: 1,
		Timeout:     opts.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about service health.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return c
}

func (c *Client) generate(ctx context.Context, call, modelName string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	start := time.Now()
	out, err := c.cb.Execute(func() (any, error) {
		return c.models.GenerateContent(ctx, modelName, contents, cfg)
	})
	if err != nil {
		c.logger.Debug("gemini call failed",
			zap.String("call", call),
			zap.String("model", modelName),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("gemini %s: %w", call, err)
	}
	c.logger.Debug("gemini call",
		zap.String("call", call),
		zap.String("model", modelName),
		zap.Duration("elapsed", time.Since(start)))
	resp, _ := out.(*genai.GenerateContentResponse)
	if resp == nil {
		return nil, fmt.Errorf("gemini %s: empty response", call)
	}
	return resp, nil
}

func thinking(budget int32) *genai.ThinkingConfig {
	return &genai.ThinkingConfig{ThinkingBudget: genai.Ptr(budget)}
}

// ComposePrompt joins grounding context and the user's request.
func ComposePrompt(prompt, grounding string) string {
	if strings.TrimSpace(grounding) == "" {
		return prompt
	}
	return grounding + "\n\nUser request: " + prompt
}

func (c *Client) GenerateText(ctx context.Context, prompt, grounding string) (string, error) {
	resp, err := c.generate(ctx, "suggestion", c.opts.TextModel,
		genai.Text(ComposePrompt(prompt, grounding)),
		&genai.GenerateContentConfig{ThinkingConfig: thinking(suggestionThinking)})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *Client) GenerateAnalysis(ctx context.Context, prompt, grounding string, image []byte) (string, error) {
	parts := []*genai.Part{}
	if len(image) > 0 {
		parts = append(parts, genai.NewPartFromBytes(image, "image/jpeg"))
	}
	parts = append(parts, genai.NewPartFromText(ComposePrompt(prompt, grounding)))
	resp, err := c.generate(ctx, "analysis", c.opts.TextModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)},
		&genai.GenerateContentConfig{ThinkingConfig: thinking(analysisThinking)})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// LyricsPrompt is the instruction sent for lyric generation.
func LyricsPrompt(topic, genre, mood string) string {
	return fmt.Sprintf("Write song lyrics.\nTopic: %s\nGenre: %s\nMood: %s\n"+
		"Structure the response with Verse 1, Chorus, Verse 2, Chorus, Bridge, Outro. "+
		"Include chords in brackets if appropriate for the genre.", topic, genre, mood)
}

func (c *Client) GenerateLyrics(ctx context.Context, topic, genre, mood string) (string, error) {
	resp, err := c.generate(ctx, "lyrics", c.opts.TextModel,
		genai.Text(LyricsPrompt(topic, genre, mood)),
		&genai.GenerateContentConfig{
			Temperature:    genai.Ptr[float32](lyricsTemperature),
			ThinkingConfig: thinking(lyricsThinking),
		})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// ImageModelFor picks the image model serving size.
func (c *Client) ImageModelFor(size model.ImageSize) string {
	if size == model.ImageSize1K || size == "" {
		return c.opts.ImageModel
	}
	return c.opts.ImageModelHD
}

func (c *Client) GenerateCoverArt(ctx context.Context, prompt string, size model.ImageSize) (*assistant.Image, error) {
	if size == "" {
		size = model.ImageSize1K
	}
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: "1:1"},
	}
	// The 1K model has a fixed output size.
	if size != model.ImageSize1K {
		cfg.ImageConfig.ImageSize = string(size)
	}
	resp, err := c.generate(ctx, "cover art", c.ImageModelFor(size), genai.Text(prompt), cfg)
	if err != nil {
		return nil, err
	}
	return firstInlineImage(resp), nil
}

// firstInlineImage returns the first inline-data part of the first candidate.
func firstInlineImage(resp *genai.GenerateContentResponse) *assistant.Image {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, p := range resp.Candidates[0].Content.Parts {
		if p == nil || p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		mime := p.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return &assistant.Image{Data: p.InlineData.Data, MIMEType: mime}
	}
	return nil
}

func (c *Client) TranscribeAudio(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("gemini transcription: no audio")
	}
	parts := []*genai.Part{
		genai.NewPartFromBytes(audio, mimeType),
		genai.NewPartFromText(transcribeInstruction),
	}
	resp, err := c.generate(ctx, "transcription", c.opts.TranscribeModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
