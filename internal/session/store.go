package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Store is the process-wide session store. It must be initialized with
// Init before use and released with Close.
type Store struct {
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  zerolog.Logger

	ready atomic.Bool

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

type Option func(*Store)

func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		ttl:     24 * time.Hour,
		now:     time.Now,
		logger:  zerolog.Nop(),
		subs:    make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Init(ctx context.Context) error {
	if err := s.backend.Ping(ctx); err != nil {
		return fmt.Errorf("session backend unavailable: %w", err)
	}
	s.ready.Store(true)
	return nil
}

func (s *Store) Close() error {
	if !s.ready.Swap(false) {
		return nil
	}
	return s.backend.Close()
}

// Subscribe registers fn for every session event. Handlers run
// synchronously on the goroutine that caused the event.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish(kind EventKind, id string) {
	ev := Event{Kind: kind, SessionID: id, At: s.now()}
	s.mu.RLock()
	handlers := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		handlers = append(handlers, fn)
	}
	s.mu.RUnlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

func (s *Store) Create(ctx context.Context) (*Session, error) {
	if !s.ready.Load() {
		return nil, ErrNotInitialized
	}
	now := s.now()
	sess := &Session{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	if err := s.backend.Store(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	if !s.ready.Load() {
		return nil, ErrNotInitialized
	}
	if id == "" {
		return nil, ErrNotFound
	}
	return s.backend.Load(ctx, id)
}

func (s *Store) Save(ctx context.Context, sess *Session) error {
	if !s.ready.Load() {
		return ErrNotInitialized
	}
	sess.UpdatedAt = s.now()
	return s.backend.Store(ctx, sess, s.ttl)
}

func (s *Store) update(ctx context.Context, id string, fn func(*Session) (bool, error)) (bool, error) {
	if !s.ready.Load() {
		return false, ErrNotInitialized
	}
	return s.backend.Update(ctx, id, s.ttl, func(sess *Session) (bool, error) {
		changed, err := fn(sess)
		if changed {
			sess.UpdatedAt = s.now()
		}
		return changed, err
	})
}

// SignIn stores the backend token together with the user's profile.
func (s *Store) SignIn(ctx context.Context, id, token string, user domain.User) error {
	profile, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if _, err := s.update(ctx, id, func(sess *Session) (bool, error) {
		sess.Token = token
		sess.Profile = profile
		return true, nil
	}); err != nil {
		return err
	}
	s.logger.Info().Str("session", id).Str("user", user.Username).Msg("signed in")
	s.publish(EventSignedIn, id)
	return nil
}

// Rotate moves the session to a fresh id, keeping its contents, and
// deletes the old id. Callers rotate before storing credentials so an id
// handed out to an anonymous visitor never becomes a signed-in session.
func (s *Store) Rotate(ctx context.Context, id string) (*Session, error) {
	if !s.ready.Load() {
		return nil, ErrNotInitialized
	}
	old, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *old
	next.ID = uuid.NewString()
	next.CreatedAt = s.now()
	next.UpdatedAt = next.CreatedAt
	if err := s.backend.Store(ctx, &next, s.ttl); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if err := s.backend.Delete(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("session", id).Msg("delete rotated session")
	}
	return &next, nil
}

func (s *Store) SignOut(ctx context.Context, id string) error {
	changed, err := s.update(ctx, id, func(sess *Session) (bool, error) {
		if !sess.Authenticated() && len(sess.Profile) == 0 {
			return false, nil
		}
		sess.clearAuth()
		return true, nil
	})
	if err != nil {
		return err
	}
	if changed {
		s.publish(EventSignedOut, id)
	}
	return nil
}

// Expire drops the credentials after the backend rejected them. Only the
// caller that actually cleared them gets true and triggers EventExpired;
// concurrent callers for the same session get false.
func (s *Store) Expire(ctx context.Context, id string) (bool, error) {
	changed, err := s.update(ctx, id, func(sess *Session) (bool, error) {
		if !sess.Authenticated() {
			return false, nil
		}
		sess.clearAuth()
		sess.Flash = append(sess.Flash, Flash{Kind: FlashWarning, Message: "Your session has expired. Please sign in again."})
		return true, nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		s.logger.Info().Str("session", id).Msg("session expired")
		s.publish(EventExpired, id)
	}
	return changed, nil
}

func (s *Store) AddFlash(ctx context.Context, id string, kind FlashKind, message string) error {
	_, err := s.update(ctx, id, func(sess *Session) (bool, error) {
		sess.Flash = append(sess.Flash, Flash{Kind: kind, Message: message})
		return true, nil
	})
	return err
}

// PopFlashes returns and clears pending flash messages.
func (s *Store) PopFlashes(ctx context.Context, id string) ([]Flash, error) {
	var out []Flash
	_, err := s.update(ctx, id, func(sess *Session) (bool, error) {
		out = sess.Flash
		if len(out) == 0 {
			return false, nil
		}
		sess.Flash = nil
		return true, nil
	})
	return out, err
}

type ctxKey struct{}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func IDFrom(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
