// Package lease implements a TTL-based exclusive lease on top of redis.
// Draft edit locks and checkout guards are both leases: a lease acquired
// here expires on its own, so a crashed client cannot hold one forever.
package lease

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only when it is still held by the caller.
var releaseScript = redis.NewScript(`
local key = KEYS[1]
local holder = ARGV[1]

if redis.call('GET', key) == holder then
	redis.call('DEL', key)
	return 1
end

return 0
`)

// Manager grants and releases keyed exclusive leases.
type Manager interface {
	// Acquire grants the lease to holder, or refreshes it when holder
	// already owns it. Returns false when another holder owns the lease.
	Acquire(ctx context.Context, key, holder string) (bool, error)
	// Holder returns the current lease holder, or "" when unlocked.
	Holder(ctx context.Context, key string) (string, error)
	// Release removes the lease if held by holder. Releasing an expired or
	// foreign lease is not an error; it reports false.
	Release(ctx context.Context, key, holder string) (bool, error)
}

type RedisManager struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisManager(client *redis.Client, prefix string, ttl time.Duration) *RedisManager {
	return &RedisManager{client: client, prefix: prefix, ttl: ttl}
}

func (m *RedisManager) Acquire(ctx context.Context, key, holder string) (bool, error) {
	key = m.prefix + key

	ok, err := m.client.SetNX(ctx, key, holder, m.ttl).Result()
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	current, err := m.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			// Lease expired between SetNX and Get; retry once.
			return m.client.SetNX(ctx, key, holder, m.ttl).Result()
		}
		return false, err
	}

	if current == holder {
		// Refresh our own lease.
		if err := m.client.Expire(ctx, key, m.ttl).Err(); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

func (m *RedisManager) Holder(ctx context.Context, key string) (string, error) {
	holder, err := m.client.Get(ctx, m.prefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", err
	}
	return holder, nil
}

func (m *RedisManager) Release(ctx context.Context, key, holder string) (bool, error) {
	result, err := releaseScript.Run(ctx, m.client, []string{m.prefix + key}, holder).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
