package session

import (
	"context"
	"time"
)

// Backend persists sessions. Update must apply fn atomically with respect
// to other Update calls on the same id; fn reports whether it changed the
// session, and unchanged sessions are not written back.
type Backend interface {
	Ping(ctx context.Context) error
	Load(ctx context.Context, id string) (*Session, error)
	Store(ctx context.Context, s *Session, ttl time.Duration) error
	Update(ctx context.Context, id string, ttl time.Duration, fn func(*Session) (bool, error)) (bool, error)
	Delete(ctx context.Context, id string) error
	Close() error
}
