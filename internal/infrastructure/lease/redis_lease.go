// Package lease provides per-channel sync lease implementations.
package lease

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/ecommanager/backend/internal/domain/channel"
)

// releaseScript deletes the lease key only when the stored token still
// belongs to this holder, so an expired lease re-acquired by another run is
// never released from under it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLeaseManager implements channel.LeaseManager on Redis. SETNX with a
// TTL gives mutual exclusion across processes; the TTL bounds how long a
// crashed run can block a channel.
type RedisLeaseManager struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisLeaseManager creates a lease manager sharing an existing client
func NewRedisLeaseManager(client *redis.Client) *RedisLeaseManager {
	return &RedisLeaseManager{
		client:    client,
		keyPrefix: "sync:lease:",
	}
}

// Acquire takes the lease for one channel. Returns channel.ErrLeaseHeld when
// another run currently owns it.
func (m *RedisLeaseManager) Acquire(ctx context.Context, channelID uuid.UUID, ttl time.Duration) (channel.Lease, error) {
	key := m.keyPrefix + channelID.String()
	token := uuid.NewString()

	ok, err := m.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire sync lease: %w", err)
	}
	if !ok {
		return nil, channel.ErrLeaseHeld
	}
	return &redisLease{client: m.client, key: key, token: token}, nil
}

type redisLease struct {
	client *redis.Client
	key    string
	token  string
}

// Release releases the lease if this holder still owns it
func (l *redisLease) Release(ctx context.Context) error {
	if err := l.client.Eval(ctx, releaseScript, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("failed to release sync lease: %w", err)
	}
	return nil
}

// Ensure RedisLeaseManager implements channel.LeaseManager
var _ channel.LeaseManager = (*RedisLeaseManager)(nil)
