package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStateStore keeps OAuth state tokens in memory. Suitable for the CLI's
// short-lived localhost callback server, where the token never needs to
// outlive the process.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

// NewMemoryStateStore creates an in-memory state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time)}
}

// Generate creates a new state token valid for ttl.
func (s *MemoryStateStore) Generate(ctx context.Context, ttl time.Duration) (string, error) {
	state, err := GenerateID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[state] = time.Now().Add(ttl)
	return state, nil
}

// Validate checks a state token and removes it (single-use).
func (s *MemoryStateStore) Validate(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return time.Now().Before(expiry), nil
}

var _ StateStore = (*MemoryStateStore)(nil)
