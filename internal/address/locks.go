package address

import (
	"context"
	"sync"

	"digipin/internal/domain"
)

// LockStore persists lock flags per owner so a list refresh does not reset
// them. Only locked aliases are recorded.
type LockStore interface {
	Load(ctx context.Context, owner string) (map[domain.Alias]bool, error)
	Save(ctx context.Context, owner string, alias domain.Alias, locked bool) error
	Forget(ctx context.Context, owner string, alias domain.Alias) error
}

// MemoryLockStore keeps locks for the life of the process.
type MemoryLockStore struct {
	mu    sync.RWMutex
	locks map[string]map[domain.Alias]bool
}

func NewMemoryLockStore() *MemoryLockStore {
	return &MemoryLockStore{locks: make(map[string]map[domain.Alias]bool)}
}

func (s *MemoryLockStore) Load(_ context.Context, owner string) (map[domain.Alias]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Alias]bool, len(s.locks[owner]))
	for alias, locked := range s.locks[owner] {
		out[alias] = locked
	}
	return out, nil
}

func (s *MemoryLockStore) Save(_ context.Context, owner string, alias domain.Alias, locked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !locked {
		delete(s.locks[owner], alias)
		return nil
	}
	if s.locks[owner] == nil {
		s.locks[owner] = make(map[domain.Alias]bool)
	}
	s.locks[owner][alias] = true
	return nil
}

func (s *MemoryLockStore) Forget(ctx context.Context, owner string, alias domain.Alias) error {
	return s.Save(ctx, owner, alias, false)
}
