package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"

	"github.com/spf13/cobra"
)

func newContextCmd(app *App) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the grounding context the assistant sends with text requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			text := assistant.BuildContext(s.Nodes, s.SelectedID, s.Meta)
			if raw {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"context": text}})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain text (no JSON envelope)")
	return cmd
}

func newRouteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "route <message>",
		Short: "Show which assistant route a message takes (no generation)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"message": text,
				"route":   assistant.Classify(text),
			}})
		},
	}
}

func parseSizeFlag(app *App, raw string) (model.ImageSize, error) {
	if strings.TrimSpace(raw) == "" {
		return app.cfg.ImageSize(), nil
	}
	return model.ParseImageSize(raw)
}

// replyPayload is the CLI view of a reply; attachment bytes stay out of the output.
func replyPayload(r assistant.Reply, saved string) map[string]any {
	atts := make([]map[string]any, 0, len(r.Attachments))
	for _, a := range r.Attachments {
		atts = append(atts, map[string]any{
			"kind":     a.Kind,
			"mimeType": a.MIMEType,
			"bytes":    len(a.Bytes),
		})
	}
	out := map[string]any{
		"route":       r.Route,
		"kind":        r.Kind,
		"text":        r.Text,
		"failed":      r.Failed,
		"attachments": atts,
	}
	if saved != "" {
		out["savedTo"] = saved
	}
	return out
}

func saveImage(r assistant.Reply, path string) (string, error) {
	if path == "" || len(r.Attachments) == 0 {
		return "", nil
	}
	if err := os.WriteFile(path, r.Attachments[0].Bytes, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}
	return path, nil
}

func newAskCmd(app *App) *cobra.Command {
	var (
		size string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "ask <message>",
		Short: "Send a message to the creative assistant",
		Long: strings.TrimSpace(`
The message is routed by keyword, first match wins:
  "cover art" / "generate image"  -> cover art
  "lyric" / "write a song"        -> lyrics
  "analyze" / "review"            -> arrangement analysis
  anything else                   -> creative suggestion
`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageSize, err := parseSizeFlag(app, size)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			router, err := newRouter(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			text := strings.Join(args, " ")
			s.AppendMessage(model.RoleUser, text, nil)
			reply := router.Route(cmd.Context(), assistant.Request{
				Text:      text,
				Snapshot:  s.Snapshot(),
				ImageSize: imageSize,
			})
			assistant.AppendReply(s, reply)

			saved, err := saveImage(reply, out)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": replyPayload(reply, saved)})
		},
	}
	cmd.Flags().StringVar(&size, "image-size", "", "Cover size for image requests (1K|2K|4K; default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write a generated image to this file")
	return cmd
}

func newLyricsCmd(app *App) *cobra.Command {
	var (
		nodeRef string
		topic   string
		genre   string
		mood    string
	)
	cmd := &cobra.Command{
		Use:   "lyrics",
		Short: "Generate song lyrics",
		Long: strings.TrimSpace(`
With --node, lyrics are generated for that lyrics node from its topic and mood
and written back onto it. Otherwise topic, genre and mood come from the flags,
falling back to the chain.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			router, err := newRouter(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}

			if nodeRef != "" {
				n, err := resolveNode(s, nodeRef)
				if err != nil {
					return writeErr(cmd, err)
				}
				if n.Type != model.NodeLyrics {
					return writeErr(cmd, fmt.Errorf("node %s is a %s node, not lyrics", n.ID, n.Type))
				}
				id := n.ID
				res, _ := router.GenerateNodeLyrics(cmd.Context(), s.Snapshot(), id)
				upd := assistant.ApplyNodeLyrics(s, id, res)
				node, _ := s.FindNode(id)
				return writeOut(cmd, app, map[string]any{"data": map[string]any{
					"params":  res.Params,
					"text":    res.Text,
					"failed":  !res.Written,
					"written": upd.Found,
					"node":    node,
				}})
			}

			p := assistant.ResolveLyricParams(topic, s.Snapshot())
			if strings.TrimSpace(p.Topic) == "" {
				p.Topic = "Love and Loss"
			}
			if genre != "" {
				p.Genre = genre
			}
			if mood != "" {
				p.Mood = mood
			}
			text, ok := router.Lyrics(cmd.Context(), p)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"params": p,
				"text":   text,
				"failed": !ok,
			}})
		},
	}
	cmd.Flags().StringVar(&nodeRef, "node", "", "Lyrics node (id or step) to generate for and update")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic")
	cmd.Flags().StringVar(&genre, "genre", "", "Genre (default: first genre in the chain, else Pop)")
	cmd.Flags().StringVar(&mood, "mood", "", "Mood (default: the lyrics node's mood, else Creative)")
	return cmd
}

func newCoverArtCmd(app *App) *cobra.Command {
	var (
		size string
		out  string
	)
	cmd := &cobra.Command{
		Use:   "cover-art <prompt>",
		Short: "Generate a square cover art image",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			imageSize, err := parseSizeFlag(app, size)
			if err != nil {
				return writeErr(cmd, err)
			}
			router, err := newRouter(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			reply := router.CoverArt(cmd.Context(), strings.Join(args, " "), imageSize)
			saved, err := saveImage(reply, out)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": replyPayload(reply, saved)})
		},
	}
	cmd.Flags().StringVar(&size, "size", "", "Image size (1K|2K|4K; default from config)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the image to this file")
	return cmd
}

func newTranscribeCmd(app *App) *cobra.Command {
	var mimeType string
	cmd := &cobra.Command{
		Use:   "transcribe <audio-file>",
		Short: "Transcribe a voice note into assistant input",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			audio, err := os.ReadFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if mimeType == "" {
				mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(args[0])))
			}
			router, err := newRouter(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			text, ok := router.Transcribe(cmd.Context(), audio, mimeType)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"text":   text,
				"failed": !ok,
				"route":  assistant.Classify(text),
			}})
		},
	}
	cmd.Flags().StringVar(&mimeType, "mime", "", "Audio MIME type (default: from the file extension, else audio/wav)")
	return cmd
}
