package cargo

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/forkdep/pkg/errors"
)

// CratesIOIndex is the lock-file source string for crates.io registry packages.
const CratesIOIndex = "registry+https://github.com/rust-lang/crates.io-index"

// Lockfile is the resolved dependency graph recorded in Cargo.lock.
// It is immutable after loading.
type Lockfile struct {
	Version  int       `toml:"version"`
	Packages []Package `toml:"package"`
}

// Package is one resolved node of the lock graph, uniquely identified by
// (name, version, source). Workspace members have an empty Source.
type Package struct {
	Name         string   `toml:"name"`
	Version      string   `toml:"version"`
	Source       string   `toml:"source"`
	Dependencies []string `toml:"dependencies"`
}

// ID returns the package's unique identifier string.
func (p *Package) ID() string {
	if p.Source == "" {
		return p.Name + " " + p.Version
	}
	return fmt.Sprintf("%s %s (%s)", p.Name, p.Version, p.Source)
}

// IsRegistry reports whether the package comes from a registry source.
func (p *Package) IsRegistry() bool {
	return strings.HasPrefix(p.Source, "registry+")
}

// IsGit reports whether the package comes from a git source.
func (p *Package) IsGit() bool {
	return strings.HasPrefix(p.Source, "git+")
}

// GitURL returns the repository URL of a git-source package, with the
// source prefix, query (?branch=...), and fragment (#rev) stripped.
// Returns empty string for non-git sources.
func (p *Package) GitURL() string {
	if !p.IsGit() {
		return ""
	}
	url := strings.TrimPrefix(p.Source, "git+")
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return url
}

// ParseLockfile parses Cargo.lock content.
func ParseLockfile(data []byte) (*Lockfile, error) {
	var lock Lockfile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrap(errors.ErrCodeLockResolution, err, "parse lock file")
	}
	return &lock, nil
}

// LoadLockfile loads the workspace's Cargo.lock. If the file does not exist,
// it runs `cargo generate-lockfile` to produce one and loads the fresh file.
// The returned boolean reports whether a lock file was generated, so callers
// can surface the side effect to the user.
func LoadLockfile(ctx context.Context, ws *Workspace) (*Lockfile, bool, error) {
	path := ws.LockfilePath()
	generated := false

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := generateLockfile(ctx, ws.RootManifest); err != nil {
			return nil, false, err
		}
		generated = true
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, false, errors.Wrap(errors.ErrCodeLockResolution, err,
				"lock file missing after generation: %s", path)
		}
	} else if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeLockResolution, err, "read lock file %s", path)
	}

	lock, err := ParseLockfile(data)
	if err != nil {
		return nil, generated, err
	}
	return lock, generated, nil
}

// generateLockfile shells out to cargo to run a full resolution pass.
func generateLockfile(ctx context.Context, manifestPath string) error {
	if _, err := exec.LookPath("cargo"); err != nil {
		return errors.New(errors.ErrCodeLockResolution,
			"no Cargo.lock found and cargo is not installed to generate one")
	}

	cmd := exec.CommandContext(ctx, "cargo", "generate-lockfile", "--manifest-path", manifestPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrap(errors.ErrCodeLockResolution, err,
			"cargo generate-lockfile failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}

// MemberPackage finds the lock node for a workspace member.
// Members are matched by name (and version when the manifest declares one);
// their lock entries carry no source.
func (l *Lockfile) MemberPackage(m Member) (*Package, bool) {
	for i := range l.Packages {
		p := &l.Packages[i]
		if p.Name != m.Name || p.Source != "" {
			continue
		}
		if m.Version != "" && p.Version != m.Version {
			continue
		}
		return p, true
	}
	return nil, false
}

// DirectDeps resolves a package's direct dependency identifiers to their
// lock nodes, in lock-file declaration order. Unresolvable entries are
// skipped; the lock invariant says they should not occur.
func (l *Lockfile) DirectDeps(p *Package) []*Package {
	deps := make([]*Package, 0, len(p.Dependencies))
	for _, spec := range p.Dependencies {
		if dep, ok := l.resolveDep(spec); ok {
			deps = append(deps, dep)
		}
	}
	return deps
}

// resolveDep resolves a dependency identifier as written in a lock entry:
// "name", "name version", or "name version (source)". A bare name is only
// unambiguous when a single version of that name exists in the graph;
// Cargo writes the longer forms otherwise.
func (l *Lockfile) resolveDep(spec string) (*Package, bool) {
	name, version, source := splitDepSpec(spec)

	var found *Package
	for i := range l.Packages {
		p := &l.Packages[i]
		if p.Name != name {
			continue
		}
		if version != "" && p.Version != version {
			continue
		}
		if source != "" && p.Source != source {
			continue
		}
		if found != nil {
			return nil, false // ambiguous bare name; malformed lock file
		}
		found = p
	}
	return found, found != nil
}

func splitDepSpec(spec string) (name, version, source string) {
	if i := strings.Index(spec, " ("); i >= 0 && strings.HasSuffix(spec, ")") {
		source = spec[i+2 : len(spec)-1]
		spec = spec[:i]
	}
	parts := strings.SplitN(spec, " ", 2)
	name = parts[0]
	if len(parts) == 2 {
		version = parts[1]
	}
	return name, version, source
}
