package locks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ideascope/ideascope-backend/internal/logger"
)

// Locker serializes analyze-and-persist per corpus scope (a room for ideas,
// one global key for papers) so two submissions cannot both pass the
// exact-hash check against the same snapshot.
type Locker interface {
	Acquire(ctx context.Context, key string) (func(), error)
}

// ---- In-process locker ----

type localLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocalLocker() Locker {
	return &localLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *localLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock, nil
}

// ---- Redis locker ----

// redisLocker takes a lease with SET NX so the rejection path stays
// race-free across replicas. The lease value is checked on release so an
// expired lease cannot delete a successor's lock.
type redisLocker struct {
	client *redis.Client
	log    *logger.Logger
	ttl    time.Duration
	retry  time.Duration
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
end
return 0
`)

func NewRedisLocker(client *redis.Client, log *logger.Logger) Locker {
	return &redisLocker{
		client: client,
		log:    log.With("service", "RedisLocker"),
		ttl:    30 * time.Second,
		retry:  50 * time.Millisecond,
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:" + key
	token := uuid.New().String()
	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{lockKey}, token).Err(); err != nil && err != redis.Nil {
			l.log.Warn("Failed to release lock", "key", key, "error", err)
		}
	}
	return release, nil
}
