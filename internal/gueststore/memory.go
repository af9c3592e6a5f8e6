package gueststore

import (
	"context"
	"sync"

	"cartsync/internal/domain"
)

// MemoryStore holds guest snapshots in process memory. Useful for tests
// and single-instance deployments that can afford to lose guest carts.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string][]domain.CartLine
}

func NewMemory() *MemoryStore {
	return &MemoryStore{slots: make(map[string][]domain.CartLine)}
}

func (s *MemoryStore) Read(_ context.Context, guestID string) []domain.CartLine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.slots[guestID]
	if !ok {
		return nil
	}
	out := make([]domain.CartLine, len(stored))
	copy(out, stored)
	return out
}

func (s *MemoryStore) Write(_ context.Context, guestID string, lines []domain.CartLine) error {
	snapshot := make([]domain.CartLine, len(lines))
	copy(snapshot, lines)
	s.mu.Lock()
	s.slots[guestID] = snapshot
	s.mu.Unlock()
	return nil
}
