package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/forkdep/pkg/cargo"
	"github.com/matzehuels/forkdep/pkg/errors"
)

// patchCommand creates the patch command for manual overrides.
func (c *CLI) patchCommand() *cobra.Command {
	var (
		manifestPath string
		pathOverride string
		gitOverride  string
	)

	cmd := &cobra.Command{
		Use:   "patch <crate>",
		Short: "Rewrite the manifest patch table without forking",
		Long: `Add or update a [patch] entry for a dependency you already have a copy of.

Exactly one of --path or --git must be given. The patch key is derived from
the dependency's source in the lock graph, so alternate registries and git
dependencies end up under the right [patch.<source>] table. Everything else
in the manifest, including comments and formatting, is preserved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			crate := args[0]

			if (pathOverride == "") == (gitOverride == "") {
				return errors.New(errors.ErrCodeInvalidInput, "exactly one of --path or --git is required")
			}
			override := cargo.Override{Kind: cargo.OverridePath, Location: pathOverride}
			if gitOverride != "" {
				override = cargo.Override{Kind: cargo.OverrideGit, Location: gitOverride}
			}

			ws, err := c.openWorkspace(manifestPath)
			if err != nil {
				return err
			}
			lock, err := c.loadLock(ctx, ws)
			if err != nil {
				return err
			}

			pkg, ok := cargo.FindDirectDep(ws, lock, crate)
			if !ok {
				return errors.New(errors.ErrCodeDependencyNotFound,
					"no workspace member depends directly on %s", crate)
			}

			doc, err := cargo.LoadManifest(ws.RootManifest)
			if err != nil {
				return err
			}
			key := cargo.PatchTableKey(pkg)
			if err := cargo.ApplyPatch(doc, key, crate, override); err != nil {
				return err
			}
			if err := cargo.WriteManifest(doc, ws.RootManifest); err != nil {
				return err
			}

			printSuccess("Patched %s", StyleHighlight.Render(crate))
			printKeyValue("Table", "patch."+key)
			printKeyValue(string(override.Kind), override.Location)
			return nil
		},
	}

	cmd.Flags().StringVar(&manifestPath, "manifest-path", "", "path to the root Cargo.toml (default: discovered from cwd)")
	cmd.Flags().StringVar(&pathOverride, "path", "", "local directory to patch the dependency to")
	cmd.Flags().StringVar(&gitOverride, "git", "", "git URL to patch the dependency to")
	return cmd
}
