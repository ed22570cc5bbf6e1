package cli

import (
	"fmt"
	"strings"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/model"
	"daiw-cli/internal/publish"

	"github.com/spf13/cobra"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		to          string
		asks        []string
		withChat    bool
		withContext bool
		overwrite   bool
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the project sheet as markdown",
		Long: strings.TrimSpace(`
Renders the chain (and optionally the assistant context and conversation) as
markdown. Without --to the markdown is printed. Each --ask message is sent to
the assistant first, in order, so the sheet can carry generated replies and
cover art.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if len(asks) > 0 {
				router, err := newRouter(cmd.Context(), app)
				if err != nil {
					return writeErr(cmd, err)
				}
				for _, text := range asks {
					s.AppendMessage(model.RoleUser, text, nil)
					reply := router.Route(cmd.Context(), assistant.Request{
						Text:      text,
						Snapshot:  s.Snapshot(),
						ImageSize: app.cfg.ImageSize(),
					})
					assistant.AppendReply(s, reply)
				}
				withChat = true
			}

			if strings.TrimSpace(to) == "" {
				md := publish.RenderSessionMarkdown(s.Snapshot(), s.Chat, publish.RenderOptions{
					IncludeChat:    withChat,
					IncludeContext: withContext,
				})
				_, err := fmt.Fprint(cmd.OutOrStdout(), md)
				return err
			}

			res, err := publish.WriteSession(s, to, publish.WriteOptions{
				IncludeChat:    withChat,
				IncludeContext: withContext,
				Overwrite:      overwrite,
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "Write <slug>.md and images/ into this directory")
	cmd.Flags().StringArrayVar(&asks, "ask", nil, "Send a message to the assistant before exporting (repeatable)")
	cmd.Flags().BoolVar(&withChat, "chat", false, "Include the conversation")
	cmd.Flags().BoolVar(&withContext, "context", false, "Include the assembled assistant context")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	return cmd
}
