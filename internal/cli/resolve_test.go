package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const testManifest = `[package]
name = "app"
version = "0.1.0"

[dependencies]
libfoo = "1.2"
`

const testLock = `
[[package]]
name = "app"
version = "0.1.0"
dependencies = ["libfoo"]

[[package]]
name = "libfoo"
version = "1.2.0"
source = "registry+https://github.com/rust-lang/crates.io-index"
`

func testWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cargo.toml"), []byte(testManifest), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "Cargo.lock"), []byte(testLock), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestResolveCommandUnknownDependency(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := testWorkspace(t)
	manifest := filepath.Join(dir, "Cargo.toml")

	root := testCLI().RootCommand()
	root.SetArgs([]string{"resolve", "nonexistent", "--manifest-path", manifest})
	root.SetErr(io.Discard)
	root.SetOut(io.Discard)

	err := root.ExecuteContext(context.Background())
	if err == nil {
		t.Fatal("expected resolution failure")
	}
	if !strings.Contains(err.Error(), "nonexistent") {
		t.Errorf("error should name the dependency: %v", err)
	}

	// The manifest on disk is untouched by a failed run.
	data, readErr := os.ReadFile(manifest)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if string(data) != testManifest {
		t.Errorf("manifest changed on failed resolve:\n%s", data)
	}
}

func TestOpenWorkspaceExplicitPath(t *testing.T) {
	dir := testWorkspace(t)

	ws, err := testCLI().openWorkspace(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		t.Fatalf("openWorkspace: %v", err)
	}
	if len(ws.Members) != 1 || ws.Members[0].Name != "app" {
		t.Errorf("unexpected members %+v", ws.Members)
	}
	if got := memberSummary(ws); got != "app" {
		t.Errorf("memberSummary = %q", got)
	}
}
