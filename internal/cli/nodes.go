package cli

import (
	"fmt"
	"strings"

	"daiw-cli/internal/model"
	"daiw-cli/internal/mutate"
	"daiw-cli/internal/store"

	"github.com/spf13/cobra"
)

func newNodesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Inspect and edit the node chain",
	}
	cmd.AddCommand(newNodesListCmd(app))
	cmd.AddCommand(newNodesShowCmd(app))
	cmd.AddCommand(newNodesAddCmd(app))
	cmd.AddCommand(newNodesRemoveCmd(app))
	cmd.AddCommand(newNodesRenameCmd(app))
	cmd.AddCommand(newNodesSetCmd(app))
	return cmd
}

func chainPayload(s *store.Session) map[string]any {
	return map[string]any{
		"project":    s.Meta,
		"nodes":      s.Nodes,
		"selectedId": s.SelectedID,
	}
}

func newNodesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the chain in order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": chainPayload(s)})
		},
	}
}

func newNodesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <node-id|step>",
		Short: "Show one node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := resolveNode(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"node":    n,
				"focused": n.ID == s.SelectedID,
				"fields":  model.FieldNames(n.Type),
			}})
		},
	}
}

func newNodesAddCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <type>",
		Short: "Add a node (context|genre|instrument|effect|lyrics|output)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ, err := model.ParseNodeType(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res := mutate.AddNode(s, typ)
			out := chainPayload(s)
			out["node"] = res.Node
			out["created"] = res.Created
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newNodesRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <node-id|step>",
		Short: "Remove a node and renumber the chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := resolveNode(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res := mutate.RemoveNode(s, n.ID)
			out := chainPayload(s)
			out["removed"] = res.Removed
			out["clearedSelection"] = res.ClearedSelection
			return writeOut(cmd, app, map[string]any{"data": out})
		},
	}
}

func newNodesRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <node-id|step> <name>",
		Short: "Rename a node",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[1])
			if name == "" {
				return writeErr(cmd, fmt.Errorf("name is empty"))
			}
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := resolveNode(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res := mutate.RenameNode(s, n.ID, name)
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"node":    res.Node,
				"changed": res.Changed,
			}})
		},
	}
}

func newNodesSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <node-id|step> <field=value>...",
		Short: "Merge field values into a node's data (lists are comma-separated)",
		Example: strings.TrimSpace(`
  daiw nodes set 2 genres="Synthwave, Darkwave"
  daiw --add lyrics nodes set 5 topic=Stars mood=Hopeful
`),
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.NodePatch
			for _, kv := range args[1:] {
				k, v, ok := strings.Cut(kv, "=")
				if !ok {
					return writeErr(cmd, fmt.Errorf("expected field=value, got %q", kv))
				}
				p, err := model.ParsePatchField(k, v)
				if err != nil {
					return writeErr(cmd, err)
				}
				patch = patch.Merge(p)
			}
			s, err := loadSession(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := resolveNode(s, args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			res := mutate.UpdateNodeFields(s, n.ID, patch)
			applied := res.Applied
			if applied == nil {
				applied = []string{}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{
				"node":    res.Node,
				"applied": applied,
			}})
		},
	}
}
