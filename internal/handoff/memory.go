package handoff

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store used in tests and when Redis is not
// configured. Handoffs then do not survive a restart, which degrades to the
// "no selection carried over" path rather than breaking checkout.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

type memoryEntry struct {
	rec     Record
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl == 0 {
		ttl = 30 * time.Minute
	}
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key(sessionID, rec.ScreeningID)] = memoryEntry{
		rec:     rec,
		expires: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string, screeningID int64) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key(sessionID, screeningID)]
	if !ok || time.Now().After(entry.expires) {
		delete(s.entries, key(sessionID, screeningID))
		return nil, ErrNoHandoff
	}
	if len(entry.rec.Seats) == 0 {
		return nil, ErrNoHandoff
	}

	rec := entry.rec
	rec.Seats = append([]string(nil), entry.rec.Seats...)
	return &rec, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string, screeningID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key(sessionID, screeningID))
	return nil
}

var _ Store = (*MemoryStore)(nil)
var _ Store = (*RedisStore)(nil)
