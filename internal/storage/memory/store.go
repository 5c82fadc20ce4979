package memory

import (
	"context"
	"sync"

	"github.com/yndnr/fitplan-go/internal/core/domain"
)

// Store holds one token in memory.
type Store struct {
	mu    sync.RWMutex
	token domain.Token
}

// New creates an empty Store.
func New() *Store {
	return &Store{}
}

// Read returns the held token.
func (s *Store) Read(_ context.Context) (domain.Token, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, !s.token.IsZero(), nil
}

// Write replaces the held token.
func (s *Store) Write(_ context.Context, token domain.Token) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

// Clear drops the held token.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
