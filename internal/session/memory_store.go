package session

import (
	"context"
	"sync"
)

// MemoryStore keeps entries in a map guarded by a mutex. Suitable for tests
// and single-process deployments; every operation is atomic per user.
type MemoryStore struct {
	mu     sync.Mutex
	tokens map[int64]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tokens: make(map[int64]string)}
}

func (s *MemoryStore) Put(_ context.Context, userID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[userID] = token
	return nil
}

func (s *MemoryStore) Get(_ context.Context, userID int64) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[userID]
	return token, ok, nil
}

func (s *MemoryStore) IsCurrent(_ context.Context, userID int64, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tokens[userID]
	return ok && current == token, nil
}

func (s *MemoryStore) Replace(_ context.Context, userID int64, presented, next string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.tokens[userID]
	if !ok || current != presented {
		return false, nil
	}
	s.tokens[userID] = next
	return true, nil
}

func (s *MemoryStore) Clear(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
