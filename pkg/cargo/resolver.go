package cargo

import (
	"context"

	"github.com/matzehuels/forkdep/pkg/errors"
	"github.com/matzehuels/forkdep/pkg/integrations"
	"github.com/matzehuels/forkdep/pkg/integrations/crates"
)

// Metadata is the manifest metadata of a single materialized package.
type Metadata struct {
	// Repository is the declared repository URL. May be empty.
	Repository string
}

// MetadataSource materializes the metadata of one locked package. It is the
// seam between the graph walk and the network: production code uses
// [RegistryMetadata], tests substitute a fake. Implementations fetch only
// the requested package, never the whole graph.
type MetadataSource interface {
	Fetch(ctx context.Context, pkg *Package) (*Metadata, error)
}

// RegistryMetadata materializes package metadata from the package's source:
// crates.io API for registry packages, the source URL itself for git
// packages. The client is injected explicitly so tests can substitute one
// and no process-wide state is involved.
type RegistryMetadata struct {
	Crates *crates.Client
}

// Fetch implements [MetadataSource].
func (s *RegistryMetadata) Fetch(ctx context.Context, pkg *Package) (*Metadata, error) {
	switch {
	case pkg.IsGit():
		// A git dependency's source already names the repository.
		return &Metadata{Repository: integrations.NormalizeRepoURL(pkg.GitURL())}, nil
	case pkg.IsRegistry():
		info, err := s.Crates.FetchCrate(ctx, pkg.Name, false)
		if err != nil {
			return nil, err
		}
		return &Metadata{Repository: integrations.NormalizeRepoURL(info.Repository)}, nil
	default:
		// Path dependencies and workspace members have no upstream repository.
		return &Metadata{}, nil
	}
}

// FindDirectDep returns the first direct dependency named name reachable
// from the workspace members, visiting members in declaration order and
// edges in lock-file order.
func FindDirectDep(ws *Workspace, lock *Lockfile, name string) (*Package, bool) {
	for _, member := range ws.Members {
		node, ok := lock.MemberPackage(member)
		if !ok {
			continue
		}
		for _, dep := range lock.DirectDeps(node) {
			if dep.Name == name {
				return dep, true
			}
		}
	}
	return nil, false
}

// Resolution is the result of a successful repository lookup.
type Resolution struct {
	// Package is the matched lock node.
	Package *Package
	// Repository is its declared repository URL.
	Repository string
}

// ResolveRepository finds the upstream repository URL for the named
// dependency.
//
// The walk visits workspace members in declaration order and, within each
// member, its direct lock edges in lock-file order. Every edge whose target
// name equals dependency is materialized through src; the first non-empty
// repository URL wins and the walk stops.
//
// First-match-wins is order-dependent: when several members (or several
// coexisting versions) pin packages of the same name declaring different
// repository URLs, whichever the walk reaches first is returned and the
// conflict is not reconciled or reported.
//
// Only direct edges are considered. A name that appears solely as a
// transitive dependency resolves to a DEPENDENCY_NOT_FOUND error, as does a
// name whose matches all lack repository metadata.
func ResolveRepository(ctx context.Context, ws *Workspace, lock *Lockfile, src MetadataSource, dependency string) (*Resolution, error) {
	if err := errors.ValidateCrateName(dependency); err != nil {
		return nil, err
	}

	matched := false
	for _, member := range ws.Members {
		node, ok := lock.MemberPackage(member)
		if !ok {
			continue
		}
		for _, dep := range lock.DirectDeps(node) {
			if dep.Name != dependency {
				continue
			}
			matched = true

			meta, err := src.Fetch(ctx, dep)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeNetwork, err,
					"materialize package %s", dep.ID())
			}
			if meta.Repository != "" {
				return &Resolution{Package: dep, Repository: meta.Repository}, nil
			}
		}
	}

	if matched {
		return nil, errors.New(errors.ErrCodeDependencyNotFound,
			"dependency %s declares no repository in its manifest", dependency)
	}
	return nil, errors.New(errors.ErrCodeDependencyNotFound,
		"no workspace member depends directly on %s", dependency)
}
