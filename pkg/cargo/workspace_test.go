package cargo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/forkdep/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestFindRootManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"app\"\n")

	nested := filepath.Join(dir, "src", "deep")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRootManifest(nested)
	if err != nil {
		t.Fatalf("FindRootManifest: %v", err)
	}
	if got != filepath.Join(dir, "Cargo.toml") {
		t.Errorf("got %s, want manifest at workspace root", got)
	}
}

func TestFindRootManifestNotFound(t *testing.T) {
	_, err := FindRootManifest(t.TempDir())
	if !errors.Is(err, errors.ErrCodeManifestNotFound) {
		t.Errorf("expected MANIFEST_NOT_FOUND, got %v", err)
	}
}

func TestLoadWorkspaceSinglePackage(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	writeFile(t, manifest, `
[package]
name = "app"
version = "0.1.0"

[dependencies]
serde = "1"
`)

	ws, err := LoadWorkspace(manifest)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if len(ws.Members) != 1 {
		t.Fatalf("expected 1 member, got %d", len(ws.Members))
	}
	if ws.Members[0].Name != "app" || ws.Members[0].Version != "0.1.0" {
		t.Errorf("unexpected member %+v", ws.Members[0])
	}
	if ws.Root() != dir {
		t.Errorf("Root() = %s, want %s", ws.Root(), dir)
	}
	if ws.LockfilePath() != filepath.Join(dir, "Cargo.lock") {
		t.Errorf("unexpected lockfile path %s", ws.LockfilePath())
	}
}

func TestLoadWorkspaceVirtual(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	writeFile(t, manifest, `
[workspace]
members = ["crates/*", "tools/cli"]
exclude = ["crates/skipme"]
`)
	writeFile(t, filepath.Join(dir, "crates", "beta", "Cargo.toml"), "[package]\nname = \"beta\"\nversion = \"0.2.0\"\n")
	writeFile(t, filepath.Join(dir, "crates", "alpha", "Cargo.toml"), "[package]\nname = \"alpha\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(dir, "crates", "skipme", "Cargo.toml"), "[package]\nname = \"skipme\"\nversion = \"0.0.1\"\n")
	writeFile(t, filepath.Join(dir, "tools", "cli", "Cargo.toml"), "[package]\nname = \"cli\"\nversion = \"1.0.0\"\n")

	ws, err := LoadWorkspace(manifest)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}

	var names []string
	for _, m := range ws.Members {
		names = append(names, m.Name)
	}
	want := []string{"alpha", "beta", "cli"}
	if len(names) != len(want) {
		t.Fatalf("members = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("member[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestLoadWorkspaceRootPackageFirst(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	writeFile(t, manifest, `
[package]
name = "root"
version = "0.1.0"

[workspace]
members = [".", "member"]
`)
	writeFile(t, filepath.Join(dir, "member", "Cargo.toml"), "[package]\nname = \"member\"\nversion = \"0.1.0\"\n")

	ws, err := LoadWorkspace(manifest)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if len(ws.Members) != 2 {
		t.Fatalf("expected 2 members, got %d: %+v", len(ws.Members), ws.Members)
	}
	if ws.Members[0].Name != "root" {
		t.Errorf("root package should come first, got %s", ws.Members[0].Name)
	}
}

func TestLoadWorkspaceInheritedVersion(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "Cargo.toml")
	writeFile(t, manifest, `
[package]
name = "app"
version = { workspace = true }
`)

	ws, err := LoadWorkspace(manifest)
	if err != nil {
		t.Fatalf("LoadWorkspace: %v", err)
	}
	if ws.Members[0].Version != "" {
		t.Errorf("inherited version should be empty, got %q", ws.Members[0].Version)
	}
}

func TestLoadWorkspaceErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing manifest", func(t *testing.T) {
		_, err := LoadWorkspace(filepath.Join(dir, "nope", "Cargo.toml"))
		if !errors.Is(err, errors.ErrCodeManifestNotFound) {
			t.Errorf("expected MANIFEST_NOT_FOUND, got %v", err)
		}
	})

	t.Run("neither package nor workspace", func(t *testing.T) {
		manifest := filepath.Join(dir, "empty", "Cargo.toml")
		writeFile(t, manifest, "[profile.release]\nlto = true\n")
		_, err := LoadWorkspace(manifest)
		if !errors.Is(err, errors.ErrCodeInvalidManifest) {
			t.Errorf("expected INVALID_MANIFEST, got %v", err)
		}
	})

	t.Run("unparseable", func(t *testing.T) {
		manifest := filepath.Join(dir, "broken", "Cargo.toml")
		writeFile(t, manifest, "[package\nname =")
		_, err := LoadWorkspace(manifest)
		if !errors.Is(err, errors.ErrCodeInvalidManifest) {
			t.Errorf("expected INVALID_MANIFEST, got %v", err)
		}
	})
}
