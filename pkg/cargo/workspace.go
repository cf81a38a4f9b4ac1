package cargo

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/forkdep/pkg/errors"
)

// ManifestName is the file name of a Cargo manifest.
const ManifestName = "Cargo.toml"

// Workspace is the set of packages built together from one root manifest.
type Workspace struct {
	// RootManifest is the absolute path to the root Cargo.toml.
	RootManifest string
	// Members are the workspace's member packages, root package first,
	// then [workspace].members entries in declaration order.
	Members []Member
}

// Member is a single workspace member package.
type Member struct {
	Name         string
	Version      string
	ManifestPath string
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return filepath.Dir(w.RootManifest)
}

// LockfilePath returns the path of the workspace's Cargo.lock.
func (w *Workspace) LockfilePath() string {
	return filepath.Join(w.Root(), "Cargo.lock")
}

// FindRootManifest walks up from dir looking for a Cargo.toml, mirroring
// cargo's own root-manifest discovery. Returns the absolute path of the
// first manifest found.
func FindRootManifest(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}

	for current := abs; ; {
		candidate := filepath.Join(current, ManifestName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(current)
		if parent == current {
			return "", errors.New(errors.ErrCodeManifestNotFound,
				"could not find %s in %s or any parent directory", ManifestName, abs)
		}
		current = parent
	}
}

// manifestFile is the subset of Cargo.toml forkdep reads.
type manifestFile struct {
	Package *struct {
		Name    string `toml:"name"`
		Version any    `toml:"version"` // plain string or { workspace = true }
	} `toml:"package"`
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

func (m *manifestFile) version() string {
	if m.Package == nil {
		return ""
	}
	if s, ok := m.Package.Version.(string); ok {
		return s
	}
	return "" // inherited from the workspace; matched by name only
}

// LoadWorkspace reads the manifest at manifestPath and enumerates the
// workspace members. A plain package manifest yields a single-member
// workspace; a virtual manifest yields only the [workspace].members entries.
func LoadWorkspace(manifestPath string) (*Workspace, error) {
	abs, err := filepath.Abs(manifestPath)
	if err != nil {
		return nil, err
	}

	root, err := readManifest(abs)
	if err != nil {
		return nil, err
	}

	ws := &Workspace{RootManifest: abs}

	if root.Package != nil {
		ws.Members = append(ws.Members, Member{
			Name:         root.Package.Name,
			Version:      root.version(),
			ManifestPath: abs,
		})
	}

	if root.Workspace != nil {
		members, err := expandMembers(filepath.Dir(abs), root.Workspace.Members, root.Workspace.Exclude)
		if err != nil {
			return nil, err
		}
		for _, path := range members {
			if path == abs {
				continue // root package already added
			}
			mf, err := readManifest(path)
			if err != nil {
				return nil, err
			}
			if mf.Package == nil {
				continue
			}
			ws.Members = append(ws.Members, Member{
				Name:         mf.Package.Name,
				Version:      mf.version(),
				ManifestPath: path,
			})
		}
	}

	if len(ws.Members) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidManifest,
			"%s declares neither a package nor workspace members", abs)
	}
	return ws, nil
}

func readManifest(path string) (*manifestFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.ErrCodeManifestNotFound, "manifest not found: %s", path)
		}
		return nil, err
	}

	var mf manifestFile
	if err := toml.Unmarshal(data, &mf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest %s", path)
	}
	return &mf, nil
}

// expandMembers resolves [workspace].members glob patterns to manifest paths.
// Entries within a glob are sorted for deterministic member order; literal
// entries keep their declaration order.
func expandMembers(rootDir string, patterns, exclude []string) ([]string, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		excluded[filepath.Join(rootDir, e)] = true
	}

	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(filepath.Join(rootDir, pattern))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "bad members pattern %q", pattern)
		}
		sort.Strings(matches)
		for _, dir := range matches {
			if excluded[dir] {
				continue
			}
			manifest := filepath.Join(dir, ManifestName)
			if info, err := os.Stat(manifest); err == nil && !info.IsDir() {
				paths = append(paths, manifest)
			}
		}
	}
	return paths, nil
}
