package cli

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/forkdep/pkg/config"
)

func testCLI() *CLI {
	return New(io.Discard, log.ErrorLevel)
}

func TestRootCommand(t *testing.T) {
	root := testCLI().RootCommand()

	want := []string{"fork", "resolve", "patch", "graph", "auth", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %s not registered", name)
		}
	}
}

func TestCacheDirXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	got, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	if got != filepath.Join(dir, appName) {
		t.Errorf("cacheDir() = %s, want %s", got, filepath.Join(dir, appName))
	}
}

func TestNewCacheBackends(t *testing.T) {
	c := testCLI()
	ctx := context.Background()

	t.Run("no-cache flag", func(t *testing.T) {
		cfg := &config.Config{}
		backend := c.newCache(ctx, cfg, true)
		if backend == nil {
			t.Fatal("newCache returned nil")
		}
	})

	t.Run("null backend", func(t *testing.T) {
		cfg := &config.Config{}
		cfg.Cache.Backend = "null"
		if backend := c.newCache(ctx, cfg, false); backend == nil {
			t.Fatal("newCache returned nil")
		}
	})

	t.Run("file backend", func(t *testing.T) {
		t.Setenv("XDG_CACHE_HOME", t.TempDir())
		cfg := &config.Config{}
		cfg.Cache.Backend = "file"

		backend := c.newCache(ctx, cfg, false)
		if err := backend.Set(ctx, "k", []byte("v"), 0); err != nil {
			t.Fatalf("file cache Set: %v", err)
		}
		data, ok, err := backend.Get(ctx, "k")
		if err != nil || !ok || string(data) != "v" {
			t.Errorf("file cache Get = %q, %v, %v", data, ok, err)
		}
	})
}

func TestLoadConfigExplicitPath(t *testing.T) {
	dir := t.TempDir()
	c := testCLI()
	c.ConfigPath = filepath.Join(dir, "config.yaml")

	// A missing explicit file still yields defaults.
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Fork.Dir != config.DefaultPatchDir {
		t.Errorf("Fork.Dir = %q, want default", cfg.Fork.Dir)
	}
}
