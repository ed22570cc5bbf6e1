package cli

import (
	"errors"
	"os"

	"daiw-cli/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration (API key redacted)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg := *app.cfg
			hasKey := cfg.Gemini.APIKey != ""
			cfg.Gemini.APIKey = ""
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"path":      path,
				"hasApiKey": hasKey,
				"config":    cfg,
			}})
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := os.Stat(path); err == nil && !force {
				return writeErr(cmd, errors.New("config already exists: "+path+" (use --force to overwrite)"))
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": path}})
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}

func configPath(app *App) (string, error) {
	if app.ConfigPath != "" {
		return app.ConfigPath, nil
	}
	return config.Path()
}
