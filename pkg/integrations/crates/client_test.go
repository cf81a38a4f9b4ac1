package crates

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/forkdep/pkg/cache"
	"github.com/matzehuels/forkdep/pkg/integrations"
)

// testClient creates a client pointed at a test server.
func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c := NewClient(cache.NewNullCache(), time.Hour)
	c.baseURL = baseURL
	return c
}

func TestNewClient(t *testing.T) {
	c := NewClient(cache.NewNullCache(), time.Hour)
	if c.Client == nil {
		t.Error("expected client to be initialized")
	}
}

func TestClient_FetchCrate(t *testing.T) {
	crateResp := crateResponse{}
	crateResp.Crate.Name = "libfoo"
	crateResp.Crate.MaxVersion = "1.2.0"
	crateResp.Crate.Description = "A foo library"
	crateResp.Crate.License = "MIT"
	crateResp.Crate.Repository = "https://github.com/acme/libfoo"
	crateResp.Crate.Downloads = 42000

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/crates/libfoo":
			json.NewEncoder(w).Encode(crateResp)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	info, err := c.FetchCrate(context.Background(), "libfoo", true)
	if err != nil {
		t.Fatalf("FetchCrate failed: %v", err)
	}

	if info.Name != "libfoo" {
		t.Errorf("expected name libfoo, got %s", info.Name)
	}
	if info.Version != "1.2.0" {
		t.Errorf("expected version 1.2.0, got %s", info.Version)
	}
	if info.Repository != "https://github.com/acme/libfoo" {
		t.Errorf("unexpected repository: %s", info.Repository)
	}
}

func TestClient_FetchCrate_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := testClient(t, server.URL)

	_, err := c.FetchCrate(context.Background(), "nonexistent", true)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_FetchCrate_UsesCache(t *testing.T) {
	hits := 0
	crateResp := crateResponse{}
	crateResp.Crate.Name = "libfoo"
	crateResp.Crate.MaxVersion = "1.2.0"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(crateResp)
	}))
	defer server.Close()

	backend, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	c := NewClient(backend, time.Hour)
	c.baseURL = server.URL

	ctx := context.Background()
	if _, err := c.FetchCrate(ctx, "libfoo", false); err != nil {
		t.Fatalf("FetchCrate failed: %v", err)
	}
	if _, err := c.FetchCrate(ctx, "libfoo", false); err != nil {
		t.Fatalf("FetchCrate failed: %v", err)
	}

	if hits != 1 {
		t.Errorf("server hits = %d, want 1 (second fetch should be cached)", hits)
	}
}
