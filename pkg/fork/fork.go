// Package fork decides which repository a patched dependency is cloned
// from. A [Resolver] maps the dependency's upstream repository URL to the
// URL actually used, either by forking upstream on GitHub or by passing
// the upstream through unchanged.
package fork

import (
	"context"

	"github.com/matzehuels/forkdep/pkg/errors"
	"github.com/matzehuels/forkdep/pkg/integrations/github"
)

// Result is the repository chosen for a dependency.
type Result struct {
	// URL is the clone URL to use.
	URL string
	// Name is the repository's full name when known, e.g. "me/libfoo".
	Name string
	// Forked reports whether a fork was created.
	Forked bool
}

// Resolver maps an upstream repository URL to the repository to clone.
type Resolver interface {
	Resolve(ctx context.Context, upstream string) (*Result, error)
}

// Forker creates repository forks. [github.Client] implements it.
type Forker interface {
	CreateFork(ctx context.Context, owner, repo, organization string) (*github.Repo, error)
}

// GitHub forks the upstream repository via the GitHub API.
type GitHub struct {
	Forker Forker
	// Organization receives the fork when non-empty; otherwise the fork
	// lands in the authenticated user's account.
	Organization string
}

// Resolve forks the upstream repository and returns the fork.
// Non-GitHub upstreams cannot be forked and yield an UNSUPPORTED error.
func (g *GitHub) Resolve(ctx context.Context, upstream string) (*Result, error) {
	owner, repo, err := github.ParseRepoURL(upstream)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err,
			"only github.com repositories can be forked: %s", upstream)
	}

	forked, err := g.Forker.CreateFork(ctx, owner, repo, g.Organization)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeForkFailed, err, "fork %s/%s", owner, repo)
	}

	url := forked.CloneURL
	if url == "" {
		url = forked.HTMLURL
	}
	return &Result{URL: url, Name: forked.FullName, Forked: true}, nil
}

// Upstream passes the upstream repository through without forking.
type Upstream struct{}

func (Upstream) Resolve(_ context.Context, upstream string) (*Result, error) {
	return &Result{URL: upstream}, nil
}

// Static always resolves to a fixed repository URL, regardless of upstream.
// It backs the --fork-url flag where the user supplies an existing fork.
type Static struct {
	URL string
}

func (s Static) Resolve(context.Context, string) (*Result, error) {
	if s.URL == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "fork URL cannot be empty")
	}
	return &Result{URL: s.URL}, nil
}
