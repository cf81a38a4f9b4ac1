package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/forkdep/pkg/buildinfo"
	"github.com/matzehuels/forkdep/pkg/cache"
	"github.com/matzehuels/forkdep/pkg/config"
	"github.com/matzehuels/forkdep/pkg/integrations/crates"
	"github.com/matzehuels/forkdep/pkg/integrations/github"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "forkdep"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location when set via
	// the --config flag.
	ConfigPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Forkdep forks Cargo dependencies and patches them into your workspace",
		Long:         `Forkdep resolves a dependency of your Cargo workspace to its upstream repository, forks it on GitHub, clones the fork next to your code, and rewrites the manifest's [patch] table to use the local checkout.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "path to config file (default ~/.config/forkdep/config.yaml)")

	// Attach the logger to the command context so helpers deep in the call
	// chain can log without threading *CLI through.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		return nil
	}

	// Register all subcommands
	root.AddCommand(c.forkCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.patchCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.authCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig loads the config file named by --config, or the default one.
// A missing file yields the built-in defaults.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.ConfigPath != "" {
		return config.Load(c.ConfigPath)
	}
	return config.LoadDefault()
}

// =============================================================================
// Client Factories
// =============================================================================

// newCache creates the cache backend selected by the config. Backend
// failures degrade to the null cache rather than failing the command.
func (c *CLI) newCache(ctx context.Context, cfg *config.Config, noCache bool) cache.Cache {
	if noCache || cfg.Cache.Backend == "null" {
		return cache.NewNullCache()
	}

	if cfg.Cache.Backend == "redis" {
		backend, err := cache.NewRedisCache(ctx, cfg.Cache.RedisAddr, appName)
		if err != nil {
			c.Logger.Warn("redis cache unavailable, continuing without cache", "err", err)
			return cache.NewNullCache()
		}
		return backend
	}

	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	backend, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, continuing without cache", "err", err)
		return cache.NewNullCache()
	}
	return backend
}

// newCratesClient creates a crates.io client backed by the configured cache.
func (c *CLI) newCratesClient(ctx context.Context, cfg *config.Config, noCache bool) *crates.Client {
	return crates.NewClient(c.newCache(ctx, cfg, noCache), cfg.Cache.TTL())
}

// newGitHubClient creates a GitHub client with the given token. Repo
// lookups are cached; mutations never are.
func (c *CLI) newGitHubClient(ctx context.Context, cfg *config.Config, token string) *github.Client {
	return github.NewClient(token, c.newCache(ctx, cfg, false), cfg.Cache.TTL())
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/forkdep/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
