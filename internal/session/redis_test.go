package session

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Domenick1991/tourbooking/config"
	"github.com/Domenick1991/tourbooking/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "session:abc", sessionKey("abc"))
}

func TestRedisBackend_InitFailsWhenUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	s := NewStore(NewRedisBackendWithClient(client))
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	assert.Error(t, s.Init(ctx))
}

// Runs against a real server when TOUR_TEST_REDIS_ADDR is set.
func TestRedisBackend_ExpireExactlyOnce(t *testing.T) {
	addr := os.Getenv("TOUR_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TOUR_TEST_REDIS_ADDR not set")
	}
	s := NewStore(NewRedisBackend(config.RedisConfig{Addr: addr}), WithTTL(time.Minute))
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))
	defer s.Close()

	sess, err := s.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, s.SignIn(ctx, sess.ID, "tok", domain.User{ID: 1, Username: "admin", Role: domain.RoleAdmin}))

	var winners atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Expire(ctx, sess.ID)
			if err == nil && ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}
