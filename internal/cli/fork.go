package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forkdep/pkg/cargo"
	"github.com/matzehuels/forkdep/pkg/config"
	"github.com/matzehuels/forkdep/pkg/errors"
	"github.com/matzehuels/forkdep/pkg/fork"
	"github.com/matzehuels/forkdep/pkg/git"
)

// forkOptions collects the fork command's flags.
type forkOptions struct {
	manifestPath string
	organization string
	dir          string
	forkURL      string
	noFork       bool
	useGit       bool
	noCache      bool
	yes          bool
}

// forkCommand creates the fork command.
func (c *CLI) forkCommand() *cobra.Command {
	var opts forkOptions

	cmd := &cobra.Command{
		Use:   "fork <crate>",
		Short: "Fork a dependency and patch the workspace to use it",
		Long: `Fork a direct dependency of the workspace and wire it in locally.

The dependency is resolved to its upstream repository through the locked
dependency graph, forked into your GitHub account (or organization), cloned
into the patch directory, and registered in the root manifest's [patch]
table so cargo builds against your copy.

Use --no-fork to clone the upstream directly, --fork-url to reuse an
existing fork, or --git to reference the fork by URL without cloning.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runFork(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.manifestPath, "manifest-path", "", "path to the root Cargo.toml (default: discovered from cwd)")
	cmd.Flags().StringVar(&opts.organization, "org", "", "GitHub organization to receive the fork")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory for local clones, relative to the workspace root (default from config)")
	cmd.Flags().StringVar(&opts.forkURL, "fork-url", "", "use this existing fork instead of creating one")
	cmd.Flags().BoolVar(&opts.noFork, "no-fork", false, "clone the upstream repository without forking")
	cmd.Flags().BoolVar(&opts.useGit, "git", false, "patch with a git override instead of cloning locally")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass the crates.io response cache")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *CLI) runFork(cmd *cobra.Command, crate string, opts forkOptions) error {
	ctx := cmd.Context()
	prog := newProgress(loggerFromContext(ctx))

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if opts.organization == "" {
		opts.organization = cfg.Fork.Organization
	}
	if opts.dir == "" {
		opts.dir = cfg.Fork.Dir
	}

	ws, err := c.openWorkspace(opts.manifestPath)
	if err != nil {
		return err
	}
	lock, err := c.loadLock(ctx, ws)
	if err != nil {
		return err
	}

	// Resolve the dependency to its upstream repository.
	spinner := newSpinnerWithContext(ctx, "Resolving "+crate+"...")
	spinner.Start()

	src := &cargo.RegistryMetadata{Crates: c.newCratesClient(ctx, cfg, opts.noCache)}
	res, err := cargo.ResolveRepository(ctx, ws, lock, src, crate)
	if err != nil {
		spinner.StopWithError("Resolution failed")
		return err
	}
	spinner.Stop()

	printSuccess("Resolved %s %s", StyleHighlight.Render(res.Package.Name), StyleDim.Render(res.Package.Version))
	printKeyValue("Upstream", StyleLink.Render(res.Repository))

	resolver, err := c.pickResolver(ctx, cfg, opts)
	if err != nil {
		return err
	}

	if !opts.yes {
		ok, err := promptConfirm(fmt.Sprintf("Patch %s to a local copy of %s?",
			StyleHighlight.Render(crate), res.Repository))
		if err != nil {
			return err
		}
		if !ok {
			printInfo("Aborted")
			return nil
		}
	}

	// Fork (or pass through) the upstream repository.
	spinner = newSpinnerWithContext(ctx, "Preparing repository...")
	spinner.Start()
	repo, err := resolver.Resolve(ctx, res.Repository)
	if err != nil {
		spinner.StopWithError("Fork failed")
		return err
	}
	spinner.Stop()

	if repo.Forked {
		printSuccess("Forked to %s", StyleHighlight.Render(repo.Name))
	}

	override := cargo.Override{Kind: cargo.OverrideGit, Location: repo.URL}
	if !opts.useGit {
		location, err := c.cloneDependency(ctx, ws, crate, repo.URL, opts.dir)
		if err != nil {
			return err
		}
		override = cargo.Override{Kind: cargo.OverridePath, Location: location}
	}

	// Rewrite the root manifest's patch table.
	doc, err := cargo.LoadManifest(ws.RootManifest)
	if err != nil {
		return err
	}
	key := cargo.PatchTableKey(res.Package)
	if err := cargo.ApplyPatch(doc, key, res.Package.Name, override); err != nil {
		return err
	}
	if err := cargo.WriteManifest(doc, ws.RootManifest); err != nil {
		return err
	}

	printSuccess("Patched %s", StyleHighlight.Render(crate))
	printKeyValue("Manifest", ws.RootManifest)
	printKeyValue(string(override.Kind), override.Location)
	printNewline()
	printNextStep("Rebuild against your copy", "cargo build")

	prog.done(fmt.Sprintf("Forked and patched %s", crate))
	return nil
}

// pickResolver chooses how the upstream repository becomes the repository
// to clone: a static URL, the upstream itself, or a fresh GitHub fork.
// Without a stored session, the user is offered a chance to supply an
// existing fork URL interactively.
func (c *CLI) pickResolver(ctx context.Context, cfg *config.Config, opts forkOptions) (fork.Resolver, error) {
	switch {
	case opts.forkURL != "":
		return fork.Static{URL: opts.forkURL}, nil
	case opts.noFork:
		return fork.Upstream{}, nil
	}

	sess, err := loadGitHubSession(ctx)
	if err != nil {
		printWarning("Not logged in to GitHub")
		printDetail("Run '%s auth login' to enable forking, or pass --no-fork", appName)

		url, perr := promptInput("Existing fork URL to use instead (esc to abort):", "https://github.com/you/repo")
		if perr != nil {
			return nil, perr
		}
		if url == "" {
			return nil, err
		}
		return fork.Static{URL: url}, nil
	}

	return &fork.GitHub{
		Forker:       c.newGitHubClient(ctx, cfg, sess.AccessToken),
		Organization: opts.organization,
	}, nil
}

// cloneDependency clones repoURL into the workspace's patch directory and
// returns the override path relative to the workspace root. Inside a git
// repository the clone is added as a submodule so collaborators pick it up
// with a plain submodule update.
func (c *CLI) cloneDependency(ctx context.Context, ws *cargo.Workspace, crate, repoURL, dir string) (string, error) {
	if !git.IsInstalled() {
		return "", errors.New(errors.ErrCodeCloneFailed, "git is not installed")
	}

	rel := filepath.Join(dir, crate)
	dest := filepath.Join(ws.Root(), rel)

	if _, err := os.Stat(dest); err == nil {
		printInfo("Reusing existing checkout at %s", rel)
		return filepath.ToSlash(rel), nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", err
	}

	spinner := newSpinnerWithContext(ctx, "Cloning "+repoURL+"...")
	spinner.Start()

	var err error
	if git.IsRepo(ws.Root()) {
		err = git.SubmoduleAdd(ctx, ws.Root(), repoURL, filepath.ToSlash(rel))
	} else {
		err = git.Clone(ctx, repoURL, dest)
	}
	if err != nil {
		spinner.StopWithError("Clone failed")
		return "", errors.Wrap(errors.ErrCodeCloneFailed, err, "clone %s", repoURL)
	}
	spinner.StopWithSuccess("Cloned into " + rel)

	// Detection reads the fresh checkout, so failures are cosmetic only.
	if branch, err := git.DefaultBranch(ctx, dest); err == nil {
		printKeyValue("Branch", branch)
	}

	return filepath.ToSlash(rel), nil
}
