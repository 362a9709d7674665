package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/layer-3/venmo/ports"
)

// MemoryStore is an in-memory implementation of the Store interface
type MemoryStore struct {
	consumed map[string]time.Time
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.Store {
	return &MemoryStore{
		consumed: make(map[string]time.Time),
	}
}

// ConsumeState marks a return state as used until expiry elapses
func (s *MemoryStore) ConsumeState(ctx context.Context, stateID string, expiry time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, until := range s.consumed {
		if now.After(until) {
			delete(s.consumed, id)
		}
	}
	if _, exists := s.consumed[stateID]; exists {
		return fmt.Errorf("%w: %s", ports.ErrStateConsumed, stateID)
	}
	s.consumed[stateID] = now.Add(expiry)

	return nil
}

// IsStateConsumed checks if a return state was already used
func (s *MemoryStore) IsStateConsumed(ctx context.Context, stateID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	until, exists := s.consumed[stateID]
	if !exists {
		return false, nil
	}

	return !time.Now().After(until), nil
}
