package importer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aplose/erp-migrate/pkg/common/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "erp-migrate:import-lock:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// RedisLocker holds one lock key per tenant so that replicas of the service
// never run two imports for the same tenant at once.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisLocker(client *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl}
}

func (l *RedisLocker) Acquire(ctx context.Context, tenantID string) (func(), error) {
	key := lockKeyPrefix + tenantID
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			logger.Log.WithError(err).WithField("tenant_id", tenantID).Warn("failed to release import lock")
		}
	}, nil
}

// LocalLocker is the in-process fallback used when Redis is unavailable.
type LocalLocker struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{active: make(map[string]struct{})}
}

func (l *LocalLocker) Acquire(_ context.Context, tenantID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.active[tenantID]; busy {
		return nil, ErrRunInProgress
	}
	l.active[tenantID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.active, tenantID)
			l.mu.Unlock()
		})
	}, nil
}
