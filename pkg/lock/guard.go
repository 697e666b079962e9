// Package lock provides the per-user busy guard that serializes event handling.
package lock

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard admits at most one in-flight event per key.
type Guard interface {
	// TryAcquire returns a release func when key was free, or ok=false when it is busy.
	TryAcquire(ctx context.Context, key string) (release func(), ok bool)
}

// LocalGuard serializes within one process.
type LocalGuard struct {
	mu   sync.Mutex
	busy map[string]bool
}

func NewLocalGuard() *LocalGuard {
	return &LocalGuard{busy: make(map[string]bool)}
}

func (g *LocalGuard) TryAcquire(ctx context.Context, key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.busy[key] {
		return nil, false
	}
	g.busy[key] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.busy, key)
			g.mu.Unlock()
		})
	}, true
}

// RedisGuard shares the busy flag between instances with SET NX and a TTL,
// so a crashed holder cannot keep a user locked out for longer than ttl.
type RedisGuard struct {
	client *redis.Client
	local  *LocalGuard
	prefix string
	ttl    time.Duration
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &RedisGuard{client: client, local: NewLocalGuard(), prefix: "itinvent:busy:", ttl: ttl}
}

// TryAcquire falls back to the in-process guard when redis is unreachable.
func (g *RedisGuard) TryAcquire(ctx context.Context, key string) (func(), bool) {
	releaseLocal, ok := g.local.TryAcquire(ctx, key)
	if !ok {
		return nil, false
	}

	redisKey := g.prefix + key
	acquired, err := g.client.SetNX(ctx, redisKey, "1", g.ttl).Result()
	if err != nil {
		return releaseLocal, true
	}
	if !acquired {
		releaseLocal()
		return nil, false
	}

	return func() {
		g.client.Del(context.Background(), redisKey)
		releaseLocal()
	}, true
}
