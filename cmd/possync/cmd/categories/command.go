// Package categories implements the categories command.
package categories

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/5sensprod/possync/internal/cmd/application"
	"github.com/5sensprod/possync/internal/cmd/cmdutil"
	"github.com/5sensprod/possync/internal/cmd/output"
	"github.com/5sensprod/possync/pkg/hierarchy"
)

// NewCommand creates the categories command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var local string
	var tree bool

	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"hierarchy"},
		GroupID: "core",
		Short:   "Recompute category levels and report broken parent links",
		Long: `Categories rebuilds the level of every category from its parent chain
(roots are level 0). Circular chains and parents that do not exist are
reported as warnings; affected categories keep a best-effort level.

With --tree the hierarchy is printed instead and nothing is written.`,
		Example: `  possync categories --execute
  possync categories --tree`,
		Args: cobra.NoArgs,
	}

	cmd.Flags().StringVar(&local, "local", "", "Category store (config: categories_path)")
	cmd.Flags().BoolVar(&tree, "tree", false, "Print the category tree")
	runFlags := cmdutil.AddRunFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg := app.Paths().SyncConfig()
		cfg.CategoriesPath = cmdutil.Or(local, cfg.CategoriesPath)
		if err := cmdutil.Require("local", cfg.CategoriesPath); err != nil {
			return err
		}

		engine, err := app.Engine(cfg, runFlags.Options()...)
		if err != nil {
			return err
		}

		if tree {
			res, err := engine.Tree(cmd.Context())
			if err != nil {
				return err
			}
			return printTree(cmd, app, res)
		}

		res, err := engine.Hierarchy(cmd.Context())
		if err != nil {
			return err
		}
		return cmdutil.PrintResult(cmd, app, res)
	}

	return cmd
}

// TreeNode is the machine-readable shape of the category tree.
type TreeNode struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Level    int         `json:"level"`
	Children []*TreeNode `json:"children,omitempty"`
}

func toTreeNodes(nodes []*hierarchy.Node) []*TreeNode {
	out := make([]*TreeNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &TreeNode{
			ID:       n.Category.ID,
			Name:     n.Category.Name,
			Level:    n.Category.Level,
			Children: toTreeNodes(n.Children),
		})
	}
	return out
}

func printTree(cmd *cobra.Command, app application.Application, res *hierarchy.Result) error {
	nodes := res.Tree()
	status := cmdutil.Alerts(cmd)
	for _, w := range res.Warnings {
		status.Warning("%s", w.Error())
	}

	format, err := output.ParseFormat(app.OutputFormat())
	if err != nil {
		return err
	}
	if f := output.DetectFormat(string(format)); f != output.FormatTable {
		return output.NewFormatter(f).Format(cmd.OutOrStdout(), toTreeNodes(nodes))
	}

	var b strings.Builder
	hierarchy.Walk(nodes, func(n *hierarchy.Node, depth int) {
		fmt.Fprintf(&b, "%s%s (%s) level %d\n", strings.Repeat("  ", depth), n.Category.Name, n.Category.ID, n.Category.Level)
	})
	_, err = fmt.Fprint(cmd.OutOrStdout(), b.String())
	return err
}
