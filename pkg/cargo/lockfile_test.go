package cargo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/forkdep/pkg/errors"
)

const sampleLock = `
version = 3

[[package]]
name = "app"
version = "0.1.0"
dependencies = [
 "serde",
 "libgit2-sys 0.14.2 (registry+https://github.com/rust-lang/crates.io-index)",
]

[[package]]
name = "serde"
version = "1.0.200"
source = "registry+https://github.com/rust-lang/crates.io-index"
dependencies = [
 "serde_derive",
]

[[package]]
name = "serde_derive"
version = "1.0.200"
source = "registry+https://github.com/rust-lang/crates.io-index"

[[package]]
name = "libgit2-sys"
version = "0.14.2"
source = "registry+https://github.com/rust-lang/crates.io-index"

[[package]]
name = "helper"
version = "0.3.0"
source = "git+https://github.com/example/helper?branch=main#abc123"
`

func parseSample(t *testing.T) *Lockfile {
	t.Helper()
	lock, err := ParseLockfile([]byte(sampleLock))
	if err != nil {
		t.Fatalf("ParseLockfile: %v", err)
	}
	return lock
}

func TestParseLockfile(t *testing.T) {
	lock := parseSample(t)
	if lock.Version != 3 {
		t.Errorf("version = %d, want 3", lock.Version)
	}
	if len(lock.Packages) != 5 {
		t.Fatalf("expected 5 packages, got %d", len(lock.Packages))
	}
}

func TestParseLockfileMalformed(t *testing.T) {
	_, err := ParseLockfile([]byte("[[package\nname ="))
	if !errors.Is(err, errors.ErrCodeLockResolution) {
		t.Errorf("expected LOCK_RESOLUTION_FAILED, got %v", err)
	}
}

func TestPackageID(t *testing.T) {
	tests := []struct {
		name string
		pkg  Package
		want string
	}{
		{
			name: "member without source",
			pkg:  Package{Name: "app", Version: "0.1.0"},
			want: "app 0.1.0",
		},
		{
			name: "registry package",
			pkg:  Package{Name: "serde", Version: "1.0.200", Source: CratesIOIndex},
			want: "serde 1.0.200 (" + CratesIOIndex + ")",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pkg.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPackageGitURL(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"plain", "git+https://github.com/example/helper", "https://github.com/example/helper"},
		{"branch query", "git+https://github.com/example/helper?branch=main", "https://github.com/example/helper"},
		{"rev fragment", "git+https://github.com/example/helper#abc123", "https://github.com/example/helper"},
		{"query and fragment", "git+https://github.com/example/helper?branch=main#abc123", "https://github.com/example/helper"},
		{"not git", CratesIOIndex, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Package{Source: tt.source}
			if got := p.GitURL(); got != tt.want {
				t.Errorf("GitURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMemberPackage(t *testing.T) {
	lock := parseSample(t)

	if _, ok := lock.MemberPackage(Member{Name: "app", Version: "0.1.0"}); !ok {
		t.Error("member with matching version not found")
	}
	if _, ok := lock.MemberPackage(Member{Name: "app"}); !ok {
		t.Error("member without declared version not found")
	}
	if _, ok := lock.MemberPackage(Member{Name: "app", Version: "9.9.9"}); ok {
		t.Error("version mismatch should not match")
	}
	// serde has a source; it is not a member even though the name exists.
	if _, ok := lock.MemberPackage(Member{Name: "serde"}); ok {
		t.Error("registry package must not match a member")
	}
}

func TestDirectDeps(t *testing.T) {
	lock := parseSample(t)
	app, ok := lock.MemberPackage(Member{Name: "app"})
	if !ok {
		t.Fatal("app not found")
	}

	deps := lock.DirectDeps(app)
	if len(deps) != 2 {
		t.Fatalf("expected 2 direct deps, got %d", len(deps))
	}
	if deps[0].Name != "serde" || deps[1].Name != "libgit2-sys" {
		t.Errorf("deps out of lock order: %s, %s", deps[0].Name, deps[1].Name)
	}
	// serde's transitive dep never appears as a direct dep of app.
	for _, d := range deps {
		if d.Name == "serde_derive" {
			t.Error("transitive dependency leaked into direct deps")
		}
	}
}

func TestDirectDepsAmbiguousBareName(t *testing.T) {
	lock, err := ParseLockfile([]byte(`
[[package]]
name = "app"
version = "0.1.0"
dependencies = ["dup"]

[[package]]
name = "dup"
version = "1.0.0"
source = "registry+https://github.com/rust-lang/crates.io-index"

[[package]]
name = "dup"
version = "2.0.0"
source = "registry+https://github.com/rust-lang/crates.io-index"
`))
	if err != nil {
		t.Fatal(err)
	}
	deps := lock.DirectDeps(&lock.Packages[0])
	if len(deps) != 0 {
		t.Errorf("ambiguous bare name should not resolve, got %v", deps)
	}
}

func TestSplitDepSpec(t *testing.T) {
	tests := []struct {
		spec                  string
		name, version, source string
	}{
		{"serde", "serde", "", ""},
		{"serde 1.0.200", "serde", "1.0.200", ""},
		{"serde 1.0.200 (" + CratesIOIndex + ")", "serde", "1.0.200", CratesIOIndex},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, version, source := splitDepSpec(tt.spec)
			if name != tt.name || version != tt.version || source != tt.source {
				t.Errorf("got (%q, %q, %q), want (%q, %q, %q)",
					name, version, source, tt.name, tt.version, tt.source)
			}
		})
	}
}

func TestLoadLockfileExisting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"app\"\nversion = \"0.1.0\"\n")
	writeFile(t, filepath.Join(dir, "Cargo.lock"), sampleLock)

	ws, err := LoadWorkspace(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}

	lock, generated, err := LoadLockfile(context.Background(), ws)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if generated {
		t.Error("existing lock file must not be reported as generated")
	}
	if len(lock.Packages) != 5 {
		t.Errorf("expected 5 packages, got %d", len(lock.Packages))
	}
}

func TestLoadLockfileMissingWithoutCargo(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Cargo.toml"), "[package]\nname = \"app\"\nversion = \"0.1.0\"\n")

	ws, err := LoadWorkspace(filepath.Join(dir, "Cargo.toml"))
	if err != nil {
		t.Fatal(err)
	}

	// Hide cargo so generation cannot run.
	t.Setenv("PATH", dir)

	_, _, err = LoadLockfile(context.Background(), ws)
	if !errors.Is(err, errors.ErrCodeLockResolution) {
		t.Errorf("expected LOCK_RESOLUTION_FAILED, got %v", err)
	}
	if _, statErr := os.Stat(ws.LockfilePath()); !os.IsNotExist(statErr) {
		t.Error("failed generation must not leave a lock file behind")
	}
}
