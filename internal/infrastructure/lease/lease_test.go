package lease

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommanager/backend/internal/domain/channel"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLeaseManager_AcquireAndRelease(t *testing.T) {
	_, client := setupRedis(t)
	manager := NewRedisLeaseManager(client)
	ctx := context.Background()

	channelID := uuid.New()

	lease, err := manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)

	// second acquire on the same channel is refused
	_, err = manager.Acquire(ctx, channelID, time.Minute)
	assert.ErrorIs(t, err, channel.ErrLeaseHeld)

	// a different channel is independent
	_, err = manager.Acquire(ctx, uuid.New(), time.Minute)
	require.NoError(t, err)

	require.NoError(t, lease.Release(ctx))

	// released lease can be re-acquired
	_, err = manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)
}

func TestRedisLeaseManager_TTLExpiry(t *testing.T) {
	mr, client := setupRedis(t)
	manager := NewRedisLeaseManager(client)
	ctx := context.Background()

	channelID := uuid.New()

	_, err := manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	// crashed holder's lease expires and the channel frees up
	_, err = manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)
}

func TestRedisLeaseManager_StaleReleaseKeepsNewHolder(t *testing.T) {
	mr, client := setupRedis(t)
	manager := NewRedisLeaseManager(client)
	ctx := context.Background()

	channelID := uuid.New()

	stale, err := manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)

	// the expired holder releasing late must not evict the new holder
	require.NoError(t, stale.Release(ctx))

	_, err = manager.Acquire(ctx, channelID, time.Minute)
	assert.ErrorIs(t, err, channel.ErrLeaseHeld)
}

func TestInMemoryLeaseManager(t *testing.T) {
	manager := NewInMemoryLeaseManager()
	ctx := context.Background()

	channelID := uuid.New()

	lease, err := manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)

	_, err = manager.Acquire(ctx, channelID, time.Minute)
	assert.ErrorIs(t, err, channel.ErrLeaseHeld)

	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx)) // safe on every exit path

	_, err = manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)
}

func TestInMemoryLeaseManager_Expiry(t *testing.T) {
	manager := NewInMemoryLeaseManager()
	ctx := context.Background()

	channelID := uuid.New()

	_, err := manager.Acquire(ctx, channelID, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = manager.Acquire(ctx, channelID, time.Minute)
	require.NoError(t, err)
}
