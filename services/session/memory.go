package sessionsvc

import (
	"context"
	"sync"
	"time"
)

var nowFunc = time.Now // mockable

type memoryEntry struct {
	data    Data
	expires time.Time
}

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
}

var _ Store = (*memoryStore)(nil)

// NewMemoryStore keeps sessions in process memory. Expired entries are dropped lazily.
func NewMemoryStore(ttl time.Duration) *memoryStore {
	return &memoryStore{sessions: make(map[string]memoryEntry), ttl: ttl}
}

func (s *memoryStore) Create(_ context.Context, userID string) (string, error) {
	sid, err := newSID()
	if err != nil {
		return "", err
	}
	now := nowFunc().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sid] = memoryEntry{
		data:    Data{UserID: userID, CreatedAt: now},
		expires: now.Add(s.ttl),
	}
	return sid, nil
}

func (s *memoryStore) Get(_ context.Context, sid string) (Data, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sid]
	s.mu.RUnlock()

	if !ok {
		return Data{}, ErrNotFound
	}
	if !nowFunc().UTC().Before(entry.expires) {
		s.mu.Lock()
		delete(s.sessions, sid)
		s.mu.Unlock()
		return Data{}, ErrNotFound
	}
	return entry.data, nil
}

func (s *memoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sid)
	return nil
}
