package tokenstore

import (
	"context"
	"sync"

	"physical-ai-textbook/internal/domain/ports/repository"
)

var _ repository.TokenStore = (*MemoryStore)(nil)

// MemoryStore lives only as long as the process.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryStore(initial string) *MemoryStore {
	return &MemoryStore{token: initial}
}

func (s *MemoryStore) Get(ctx context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != "", nil
}

func (s *MemoryStore) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return nil
}
