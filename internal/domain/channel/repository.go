package channel

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository persists sales channels
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesChannel, error)
	FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]SalesChannel, error)
	FindAutoSyncEnabled(ctx context.Context) ([]SalesChannel, error)
	Save(ctx context.Context, ch *SalesChannel) error
}

// ErrLeaseHeld indicates another sync run currently holds the channel lease
var ErrLeaseHeld = errors.New("channel: sync lease already held")

// Lease is a held per-channel sync lease
type Lease interface {
	// Release releases the lease. It is safe to call on every exit path.
	Release(ctx context.Context) error
}

// LeaseManager serializes sync runs per channel. Acquire returns
// ErrLeaseHeld when another run owns the channel; different channels may be
// leased concurrently.
type LeaseManager interface {
	Acquire(ctx context.Context, channelID uuid.UUID, ttl time.Duration) (Lease, error)
}
