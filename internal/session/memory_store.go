package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// MemoryStore keeps records in process. Used for single-instance deployments
// and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(ctx context.Context, browserID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	entry, ok := s.entries[browserID]
	s.mu.RUnlock()

	if !ok {
		return Record{}, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, browserID)
		s.mu.Unlock()
		return Record{}, nil
	}
	return entry.rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, browserID string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := memoryEntry{rec: rec}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[browserID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context, browserID string) error {
	s.mu.Lock()
	delete(s.entries, browserID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
