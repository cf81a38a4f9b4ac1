package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forkdep/pkg/cargo"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		manifestPath string
		output       string
		detailed     bool
	)

	cmd := &cobra.Command{
		Use:   "graph [crate]",
		Short: "Render the locked dependency graph",
		Long: `Render the workspace's locked dependency graph as Graphviz DOT or SVG.

Without arguments the full graph is printed as DOT on stdout. Naming a
crate restricts the graph to that crate and every dependency chain leading
to it from a workspace member. With --output the graph is written to a
file; a .svg extension renders through Graphviz, anything else gets DOT.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ws, err := c.openWorkspace(manifestPath)
			if err != nil {
				return err
			}
			lock, err := c.loadLock(ctx, ws)
			if err != nil {
				return err
			}

			opts := cargo.GraphOptions{Detailed: detailed}
			if len(args) == 1 {
				opts.Focus = args[0]
			}

			dot, err := cargo.ToDOT(ws, lock, opts)
			if err != nil {
				return err
			}

			if output == "" {
				fmt.Print(dot)
				return nil
			}

			data := []byte(dot)
			if strings.HasSuffix(output, ".svg") {
				spinner := newSpinnerWithContext(ctx, "Rendering graph...")
				spinner.Start()
				data, err = cargo.RenderSVG(ctx, dot)
				if err != nil {
					spinner.StopWithError("Render failed")
					return err
				}
				spinner.Stop()
			}

			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
			printSuccess("Rendered dependency graph")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest-path", "", "path to the root Cargo.toml (default: discovered from cwd)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.svg renders via Graphviz, otherwise DOT)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include versions and sources in node labels")
	return cmd
}
