package assistant

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"daiw-cli/internal/model"
	"daiw-cli/internal/store"

	"go.uber.org/zap"
)

type RouteKind string

const (
	RouteImage      RouteKind = "image"
	RouteLyrics     RouteKind = "lyrics"
	RouteAnalysis   RouteKind = "analysis"
	RouteSuggestion RouteKind = "suggestion"
)

type ReplyKind string

const (
	ReplyText  ReplyKind = "text"
	ReplyImage ReplyKind = "image"
)

// Request is everything one chat message needs. Snapshot is read-only and
// detached from the live session.
type Request struct {
	Text      string
	Snapshot  store.Snapshot
	ImageSize model.ImageSize
}

// Reply is the model message produced for a request. Failed marks replies that
// carry a fallback text instead of generated content.
type Reply struct {
	Kind        ReplyKind          `json:"kind"`
	Route       RouteKind          `json:"route"`
	Text        string             `json:"text"`
	Attachments []model.Attachment `json:"attachments,omitempty"`
	Failed      bool               `json:"failed"`
}

type rule struct {
	route    RouteKind
	keywords []string
	handle   func(r *Router, ctx context.Context, req Request) Reply
}

// rules are tried in order; the first keyword hit wins. The last rule has no
// keywords and always matches.
var rules = []rule{
	{route: RouteImage, keywords: []string{"cover art", "generate image"}, handle: (*Router).routeImage},
	{route: RouteLyrics, keywords: []string{"lyric", "write a song"}, handle: (*Router).routeLyrics},
	{route: RouteAnalysis, keywords: []string{"analyze", "review"}, handle: (*Router).routeAnalysis},
	{route: RouteSuggestion, handle: (*Router).routeSuggestion},
}

type Router struct {
	gen    Generator
	logger *zap.Logger
}

func NewRouter(gen Generator, logger *zap.Logger) *Router {
	if gen == nil {
		gen = UnavailableGenerator{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{gen: gen, logger: logger}
}

func containsAny(text string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func matchRule(text string) rule {
	lower := strings.ToLower(text)
	for _, r := range rules {
		if len(r.keywords) == 0 || containsAny(lower, r.keywords) {
			return r
		}
	}
	return rules[len(rules)-1]
}

// Classify reports which route a message takes without calling the generator.
func Classify(text string) RouteKind {
	return matchRule(text).route
}

// Route answers one chat message. It never returns an error: collaborator
// failures and empty results become fallback replies with Failed set.
func (r *Router) Route(ctx context.Context, req Request) (reply Reply) {
	ru := matchRule(req.Text)
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("assistant route panicked", zap.String("route", string(ru.route)), zap.Any("panic", p))
			reply = Reply{Kind: ReplyText, Route: ru.route, Text: panicFallback(ru.route), Failed: true}
		}
	}()
	reply = ru.handle(r, ctx, req)
	reply.Route = ru.route
	return reply
}

func panicFallback(route RouteKind) string {
	switch route {
	case RouteImage:
		return FallbackImage
	case RouteLyrics:
		return FallbackLyricsError
	case RouteAnalysis:
		return FallbackAnalysisError
	default:
		return FallbackSuggestionError
	}
}

func (r *Router) routeImage(ctx context.Context, req Request) Reply {
	return r.CoverArt(ctx, req.Text, req.ImageSize)
}

// CoverArt generates a cover for prompt. An unknown size means 1K.
func (r *Router) CoverArt(ctx context.Context, prompt string, size model.ImageSize) Reply {
	if _, err := model.ParseImageSize(string(size)); err != nil {
		size = model.ImageSize1K
	}
	img, err := r.gen.GenerateCoverArt(ctx, prompt, size)
	if err != nil || img == nil || len(img.Data) == 0 {
		r.logFailure("cover art", err)
		return Reply{Kind: ReplyText, Route: RouteImage, Text: FallbackImage, Failed: true}
	}
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return Reply{
		Kind:  ReplyImage,
		Route: RouteImage,
		Text:  ImageReplyText(size),
		Attachments: []model.Attachment{{
			Kind:     model.AttachmentImage,
			Locator:  DataURI(mime, img.Data),
			Bytes:    img.Data,
			MIMEType: mime,
		}},
	}
}

// ImageReplyText is the message shown next to a generated cover.
func ImageReplyText(size model.ImageSize) string {
	return fmt.Sprintf("Here is a %s cover art concept based on your request.", size)
}

// DataURI encodes data as an inline base64 locator.
func DataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func (r *Router) routeLyrics(ctx context.Context, req Request) Reply {
	p := ResolveLyricParams(req.Text, req.Snapshot)
	text, ok := r.Lyrics(ctx, p)
	return Reply{Kind: ReplyText, Text: text, Failed: !ok}
}

func (r *Router) routeAnalysis(ctx context.Context, req Request) Reply {
	grounding := BuildContext(req.Snapshot.Nodes, req.Snapshot.SelectedID, req.Snapshot.Meta)
	out, err := r.gen.GenerateAnalysis(ctx, req.Text, grounding, nil)
	switch {
	case err != nil:
		r.logFailure("analysis", err)
		return Reply{Kind: ReplyText, Text: FallbackAnalysisError, Failed: true}
	case strings.TrimSpace(out) == "":
		return Reply{Kind: ReplyText, Text: FallbackAnalysisEmpty, Failed: true}
	}
	return Reply{Kind: ReplyText, Text: out}
}

func (r *Router) routeSuggestion(ctx context.Context, req Request) Reply {
	grounding := BuildContext(req.Snapshot.Nodes, req.Snapshot.SelectedID, req.Snapshot.Meta)
	out, err := r.gen.GenerateText(ctx, req.Text, grounding)
	switch {
	case err != nil:
		r.logFailure("suggestion", err)
		return Reply{Kind: ReplyText, Text: FallbackSuggestionError, Failed: true}
	case strings.TrimSpace(out) == "":
		return Reply{Kind: ReplyText, Text: FallbackSuggestionEmpty, Failed: true}
	}
	return Reply{Kind: ReplyText, Text: out}
}

// Lyrics generates lyrics for p. ok is false when the text is a fallback.
func (r *Router) Lyrics(ctx context.Context, p LyricParams) (text string, ok bool) {
	out, err := r.gen.GenerateLyrics(ctx, p.Topic, p.Genre, p.Mood)
	switch {
	case err != nil:
		r.logFailure("lyrics", err)
		return FallbackLyricsError, false
	case strings.TrimSpace(out) == "":
		return FallbackLyricsEmpty, false
	}
	return out, true
}

// Transcribe returns the transcript of audio, or FallbackTranscribeError.
func (r *Router) Transcribe(ctx context.Context, audio []byte, mimeType string) (string, bool) {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "audio/wav"
	}
	out, err := r.gen.TranscribeAudio(ctx, audio, mimeType)
	if err != nil {
		r.logFailure("transcription", err)
		return FallbackTranscribeError, false
	}
	return strings.TrimSpace(out), true
}

func (r *Router) logFailure(call string, err error) {
	if err == nil {
		r.logger.Warn("generation returned no content", zap.String("call", call))
		return
	}
	r.logger.Warn("generation failed", zap.String("call", call), zap.Error(err))
}

// shortMessage reports whether text is too short to serve as a lyric topic.
func shortMessage(text string) bool {
	return utf8.RuneCountInString(text) < shortMessageRunes
}

// AppendReply records reply in the session chat.
func AppendReply(s *store.Session, reply Reply) model.ChatMessage {
	return s.AppendMessage(model.RoleModel, reply.Text, reply.Attachments)
}
