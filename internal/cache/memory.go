package cache

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
)

// Memory is the in-process stand-in used when Redis is not configured.
type Memory struct {
	mu         sync.Mutex
	ttl        time.Duration
	now        func() time.Time
	tours      []domain.Tour
	toursAt    time.Time
	categories []domain.Category
	catsAt     time.Time
	locks      map[string]time.Time
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, locks: make(map[string]time.Time)}
}

func (m *Memory) fresh(at time.Time) bool {
	return !at.IsZero() && m.now().Sub(at) < m.ttl
}

func (m *Memory) GetTours(context.Context) ([]domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fresh(m.toursAt) {
		return nil, nil
	}
	return slices.Clone(m.tours), nil
}

func (m *Memory) SetTours(_ context.Context, tours []domain.Tour) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tours, m.toursAt = slices.Clone(tours), m.now()
	return nil
}

func (m *Memory) GetCategories(context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fresh(m.catsAt) {
		return nil, nil
	}
	return slices.Clone(m.categories), nil
}

func (m *Memory) SetCategories(_ context.Context, cats []domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories, m.catsAt = slices.Clone(cats), m.now()
	return nil
}

func (m *Memory) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tours, m.toursAt = nil, time.Time{}
	m.categories, m.catsAt = nil, time.Time{}
	return nil
}

func (m *Memory) AcquireSubmitLock(_ context.Context, sessionID string, tourID int64, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := submitLockKey(sessionID, tourID)
	if until, ok := m.locks[key]; ok && m.now().Before(until) {
		return false, nil
	}
	m.locks[key] = m.now().Add(ttl)
	return true, nil
}

func (m *Memory) ReleaseSubmitLock(_ context.Context, sessionID string, tourID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, submitLockKey(sessionID, tourID))
	return nil
}
