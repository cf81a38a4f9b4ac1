package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/forkdep/pkg/cache"
	"github.com/matzehuels/forkdep/pkg/integrations"
)

// Client provides access to the GitHub REST API.
// It handles HTTP requests with caching, automatic retries, and optional
// authentication.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client with optional authentication.
// Pass an empty string for token to use unauthenticated requests (lower rate
// limits, and fork creation will fail).
func NewClient(token string, backend cache.Cache, cacheTTL time.Duration) *Client {
	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(backend, "github:", cacheTTL, headers),
		baseURL: "https://api.github.com",
	}
}

// FetchUser retrieves the authenticated user.
// The result is never cached since it depends on the token.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, c.baseURL+"/user", &user); err != nil {
		if errors.Is(err, integrations.ErrUnauthorized) {
			return nil, fmt.Errorf("%w: token rejected by GitHub", err)
		}
		return nil, err
	}
	return &user, nil
}

// FetchRepo retrieves repository details for owner/repo.
func (c *Client) FetchRepo(ctx context.Context, owner, repo string, refresh bool) (*Repo, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	key := owner + "/" + repo
	var r Repo
	err := c.Cached(ctx, key, refresh, &r, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
		if err := c.Get(ctx, url, &r); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateFork forks owner/repo into the authenticated user's account.
// If organization is non-empty, the fork is created in that organization
// instead. GitHub creates forks asynchronously; the returned Repo describes
// the fork, but its contents may not be complete for a few seconds.
func (c *Client) CreateFork(ctx context.Context, owner, repo, organization string) (*Repo, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var payload any
	if organization != "" {
		payload = map[string]string{"organization": organization}
	}

	var fork Repo
	url := fmt.Sprintf("%s/repos/%s/%s/forks", c.baseURL, owner, repo)
	if err := c.Post(ctx, url, payload, &fork); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
		}
		return nil, err
	}
	return &fork, nil
}
