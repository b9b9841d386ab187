package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/redis/go-redis/v9"
)

const maxTxAttempts = 5

var ErrConflict = errors.New("session update conflict")

// RedisBackend stores each session as a JSON value under session:<id>
// with a sliding TTL.
type RedisBackend struct {
	client *redis.Client
}

func NewRedisBackend(cfg config.RedisConfig) *RedisBackend {
	return NewRedisBackendWithClient(redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}))
}

func NewRedisBackendWithClient(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

var _ Backend = (*RedisBackend)(nil)

func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func (b *RedisBackend) Load(ctx context.Context, id string) (*Session, error) {
	data, err := b.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(data)
}

func (b *RedisBackend) Store(ctx context.Context, s *Session, ttl time.Duration) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return b.client.Set(ctx, sessionKey(s.ID), payload, ttl).Err()
}

// Update runs fn inside a WATCH/MULTI transaction so that two concurrent
// updates of one session cannot both observe the old value.
func (b *RedisBackend) Update(ctx context.Context, id string, ttl time.Duration, fn func(*Session) (bool, error)) (bool, error) {
	key := sessionKey(id)
	var changed bool

	txf := func(tx *redis.Tx) error {
		changed = false
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}
		s, err := decode(data)
		if err != nil {
			return err
		}
		ok, err := fn(s)
		if err != nil || !ok {
			return err
		}
		payload, err := json.Marshal(s)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		if err == nil {
			changed = true
		}
		return err
	}

	for range maxTxAttempts {
		err := b.client.Watch(ctx, txf, key)
		if err == nil {
			return changed, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, err
	}
	return false, ErrConflict
}

func (b *RedisBackend) Delete(ctx context.Context, id string) error {
	return b.client.Del(ctx, sessionKey(id)).Err()
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func decode(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func sessionKey(id string) string {
	return "session:" + id
}
