package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type memoryEntry struct {
	payload []byte
	expires time.Time
}

// MemoryBackend keeps sessions in process. Entries are stored encoded so
// callers never share mutable state with the map.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]memoryEntry), now: time.Now}
}

var _ Backend = (*MemoryBackend)(nil)

func (b *MemoryBackend) Ping(context.Context) error { return nil }

func (b *MemoryBackend) Load(_ context.Context, id string) (*Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.load(id)
}

func (b *MemoryBackend) Store(_ context.Context, s *Session, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store(s, ttl)
}

func (b *MemoryBackend) Update(_ context.Context, id string, ttl time.Duration, fn func(*Session) (bool, error)) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := b.load(id)
	if err != nil {
		return false, err
	}
	changed, err := fn(s)
	if err != nil || !changed {
		return false, err
	}
	return true, b.store(s, ttl)
}

func (b *MemoryBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.entries, id)
	return nil
}

func (b *MemoryBackend) Close() error { return nil }

func (b *MemoryBackend) load(id string) (*Session, error) {
	e, ok := b.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !e.expires.IsZero() && !b.now().Before(e.expires) {
		delete(b.entries, id)
		return nil, ErrNotFound
	}
	var s Session
	if err := json.Unmarshal(e.payload, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (b *MemoryBackend) store(s *Session, ttl time.Duration) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	e := memoryEntry{payload: payload}
	if ttl > 0 {
		e.expires = b.now().Add(ttl)
	}
	b.entries[s.ID] = e
	return nil
}
