package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/forkdep/pkg/cache"
)

func TestClient_Get(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "forkdep-test" {
			t.Errorf("User-Agent = %q, want forkdep-test", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"name": "libfoo"})
	}))
	defer server.Close()

	c := NewClient(cache.NewNullCache(), "test:", time.Hour, map[string]string{"User-Agent": "forkdep-test"})

	var result map[string]string
	if err := c.Get(context.Background(), server.URL, &result); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if result["name"] != "libfoo" {
		t.Errorf("result = %v, want name=libfoo", result)
	}
}

func TestClient_Get_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(cache.NewNullCache(), "test:", time.Hour, nil)

	var result map[string]string
	err := c.Get(context.Background(), server.URL, &result)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestClient_Post(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		w.WriteHeader(http.StatusAccepted)
		json.NewEncoder(w).Encode(map[string]string{"echo": body["name"]})
	}))
	defer server.Close()

	c := NewClient(cache.NewNullCache(), "test:", time.Hour, nil)

	var result map[string]string
	err := c.Post(context.Background(), server.URL, map[string]string{"name": "libfoo"}, &result)
	if err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	if result["echo"] != "libfoo" {
		t.Errorf("result = %v, want echo=libfoo", result)
	}
}

func TestClient_Cached(t *testing.T) {
	fetches := 0
	c := NewClient(cache.NewNullCache(), "test:", time.Hour, nil)

	fileCache, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	c.cache = fileCache

	ctx := context.Background()
	var v string
	fetch := func() error {
		fetches++
		v = "fetched"
		return nil
	}

	if err := c.Cached(ctx, "key", false, &v, fetch); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetches != 1 {
		t.Fatalf("fetches = %d, want 1", fetches)
	}

	// Second call should hit the cache.
	var v2 string
	if err := c.Cached(ctx, "key", false, &v2, func() error {
		fetches++
		return nil
	}); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetches != 1 {
		t.Errorf("fetches = %d after cached call, want 1", fetches)
	}
	if v2 != "fetched" {
		t.Errorf("v2 = %q, want %q", v2, "fetched")
	}

	// refresh=true bypasses the cache.
	if err := c.Cached(ctx, "key", true, &v2, func() error {
		fetches++
		return nil
	}); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetches != 2 {
		t.Errorf("fetches = %d after refresh, want 2", fetches)
	}
}

func TestNormalizeRepoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://github.com/acme/libfoo", "https://github.com/acme/libfoo"},
		{"https://github.com/acme/libfoo.git", "https://github.com/acme/libfoo"},
		{"git@github.com:acme/libfoo.git", "https://github.com/acme/libfoo"},
		{"git://github.com/acme/libfoo", "https://github.com/acme/libfoo"},
		{"git+https://github.com/acme/libfoo", "https://github.com/acme/libfoo"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeRepoURL(tt.in); got != tt.want {
			t.Errorf("NormalizeRepoURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
