package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"daiw-cli/internal/assistant"
	"daiw-cli/internal/config"
	"daiw-cli/internal/format"
	"daiw-cli/internal/gemini"
	"daiw-cli/internal/logging"
	"daiw-cli/internal/model"
	"daiw-cli/internal/mutate"
	"daiw-cli/internal/store"
	"daiw-cli/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	ConfigPath string
	PrettyJSON bool
	Format     string
	Verbose    bool

	// Add and Select shape the seeded session one-shot commands run against.
	Add    []string
	Select string

	cfg    *config.Config
	logger *zap.Logger

	newGenerator func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (assistant.Generator, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(&App{newGenerator: defaultGenerator})
}

func newRootCmd(app *App) *cobra.Command {
	if app.newGenerator == nil {
		app.newGenerator = defaultGenerator
	}

	cmd := &cobra.Command{
		Use:          "daiw",
		Short:        "DAiW workstation: node chain + creative assistant (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive workstation
  daiw

  # Inspect the starter chain
  daiw nodes list --pretty

  # Ask the assistant, grounded on the chain with a lyrics node focused
  daiw --add lyrics --select 5 ask "write lyrics about the night drive"

  # Direct node lookup by step (shortcut for: daiw nodes show 2)
  daiw 2
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(app.ConfigPath)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg

		mode := logging.ModeCLI
		if cmd == cmd.Root() {
			mode = logging.ModeTUI
		}
		logger, err := logging.New(cfg.Logging, mode, app.Verbose)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.logger = logger
		return nil
	}

	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if app.logger != nil {
			_ = app.logger.Sync()
		}
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("DAIW_CONFIG", ""), "Path to config.yaml (default: ~/.daiw/config.yaml)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("DAIW_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging")
	cmd.PersistentFlags().StringArrayVar(&app.Add, "add", nil, "Add a node of TYPE to the starter chain before running (repeatable)")
	cmd.PersistentFlags().StringVar(&app.Select, "select", "", "Focus a node (id or 1-based step) before running")

	cmd.AddCommand(newNodesCmd(app))
	cmd.AddCommand(newContextCmd(app))
	cmd.AddCommand(newRouteCmd(app))
	cmd.AddCommand(newAskCmd(app))
	cmd.AddCommand(newLyricsCmd(app))
	cmd.AddCommand(newCoverArtCmd(app))
	cmd.AddCommand(newTranscribeCmd(app))
	cmd.AddCommand(newConfigCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := loadSession(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	router, err := newRouter(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(tui.Options{
		Session:   s,
		Router:    router,
		ImageSize: app.cfg.ImageSize(),
		Theme:     app.cfg.UI.Theme,
		Logger:    app.logger.Named("tui"),
	})
}

// loadSession seeds the starter project and applies --add and --select.
func loadSession(app *App) (*store.Session, error) {
	s := store.Seed(app.cfg.Project)
	for _, raw := range app.Add {
		typ, err := model.ParseNodeType(raw)
		if err != nil {
			return nil, err
		}
		mutate.AddNode(s, typ)
	}
	if strings.TrimSpace(app.Select) != "" {
		n, err := resolveNode(s, app.Select)
		if err != nil {
			return nil, err
		}
		mutate.SelectNode(s, n.ID)
	}
	return s, nil
}

func resolveNode(s *store.Session, ref string) (*model.Node, error) {
	n, ok := s.ResolveNodeRef(ref)
	if !ok {
		return nil, mutate.NotFoundError{Kind: "node", ID: ref}
	}
	return n, nil
}

func newRouter(ctx context.Context, app *App) (*assistant.Router, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	gen, err := app.newGenerator(ctx, app.cfg, app.logger)
	if err != nil {
		return nil, err
	}
	return assistant.NewRouter(gen, app.logger.Named("router")), nil
}

func defaultGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (assistant.Generator, error) {
	if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
		logger.Warn("no Gemini API key configured (set GEMINI_API_KEY); assistant replies will be fallbacks")
		return assistant.UnavailableGenerator{}, nil
	}
	return gemini.New(ctx, geminiOptions(cfg), logger.Named("gemini"))
}

func geminiOptions(cfg *config.Config) gemini.Options {
	g := cfg.Gemini
	return gemini.Options{
		APIKey:          g.APIKey,
		BaseURL:         g.BaseURL,
		Timeout:         g.Timeout,
		TextModel:       g.TextModel,
		TranscribeModel: g.TranscribeModel,
		ImageModel:      g.ImageModel,
		ImageModelHD:    g.ImageModelHD,
		BreakerFailures: g.BreakerFailures,
		BreakerCooldown: g.BreakerCooldown,
	}
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
