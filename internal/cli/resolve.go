package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/forkdep/pkg/cargo"
)

// resolveCommand creates the resolve command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		manifestPath string
		noCache      bool
	)

	cmd := &cobra.Command{
		Use:   "resolve <crate>",
		Short: "Print the upstream repository URL of a dependency",
		Long: `Resolve a direct dependency of the workspace to its upstream repository.

The dependency is looked up in the locked dependency graph and its manifest
metadata is fetched from crates.io (or taken from the git source URL). Only
direct dependencies of workspace members can be resolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}

			ws, err := c.openWorkspace(manifestPath)
			if err != nil {
				return err
			}
			lock, err := c.loadLock(ctx, ws)
			if err != nil {
				return err
			}

			spinner := newSpinnerWithContext(ctx, "Resolving "+args[0]+"...")
			spinner.Start()

			src := &cargo.RegistryMetadata{Crates: c.newCratesClient(ctx, cfg, noCache)}
			res, err := cargo.ResolveRepository(ctx, ws, lock, src, args[0])
			if err != nil {
				spinner.StopWithError("Resolution failed")
				return err
			}
			spinner.Stop()

			printSuccess("Resolved %s", StyleHighlight.Render(res.Package.Name))
			printKeyValue("Version", res.Package.Version)
			printKeyValue("Workspace", memberSummary(ws))
			printKeyValue("Repository", StyleLink.Render(res.Repository))
			printNewline()
			printNextStep("Fork and patch it", appName+" fork "+res.Package.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest-path", "", "path to the root Cargo.toml (default: discovered from cwd)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass the crates.io response cache")
	return cmd
}
