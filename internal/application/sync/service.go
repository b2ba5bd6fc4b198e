// Package sync implements the channel synchronization engine: pulling
// orders, products and inventory from connected storefronts and pushing
// local orders back out. Runs are strictly sequential per channel; a
// per-channel lease keeps concurrent triggers out.
package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Safety caps
// ---------------------------------------------------------------------------

// Caps are the engine's hard safety ceilings. Channel policies may tighten
// them, never widen them.
type Caps struct {
	// OrderPageSize is the page size requested from storefront providers
	OrderPageSize int
	// MaxItemsPerRun bounds the total items one sync run may process
	MaxItemsPerRun int
	// InventoryBatchSize is the provider's inventory-level query batch limit
	InventoryBatchSize int
	// LeaseTTL bounds how long a per-channel sync lease may be held
	LeaseTTL time.Duration
}

// DefaultCaps returns the engine's default safety caps
func DefaultCaps() Caps {
	return Caps{
		OrderPageSize:      250,
		MaxItemsPerRun:     10000,
		InventoryBatchSize: 50,
		LeaseTTL:           30 * time.Minute,
	}
}

// normalized fills zero fields with the defaults
func (c Caps) normalized() Caps {
	defaults := DefaultCaps()
	if c.OrderPageSize <= 0 {
		c.OrderPageSize = defaults.OrderPageSize
	}
	if c.MaxItemsPerRun <= 0 {
		c.MaxItemsPerRun = defaults.MaxItemsPerRun
	}
	if c.InventoryBatchSize <= 0 {
		c.InventoryBatchSize = defaults.InventoryBatchSize
	}
	if c.LeaseTTL <= 0 {
		c.LeaseTTL = defaults.LeaseTTL
	}
	return c
}

// runLimit combines a nullable policy limit with the hard cap. The policy
// can only tighten the ceiling.
func (c Caps) runLimit(policyLimit *int) int {
	limit := c.MaxItemsPerRun
	if policyLimit != nil && *policyLimit > 0 && *policyLimit < limit {
		limit = *policyLimit
	}
	return limit
}

// ---------------------------------------------------------------------------
// Storefront registry
// ---------------------------------------------------------------------------

// StorefrontRegistry resolves storefront clients by provider code
type StorefrontRegistry struct {
	clients map[channel.ProviderCode]channel.Storefront
}

// NewStorefrontRegistry creates a registry from the given clients
func NewStorefrontRegistry(clients ...channel.Storefront) *StorefrontRegistry {
	r := &StorefrontRegistry{clients: make(map[channel.ProviderCode]channel.Storefront)}
	for _, c := range clients {
		r.clients[c.Provider()] = c
	}
	return r
}

// For returns the client for a provider code
func (r *StorefrontRegistry) For(code channel.ProviderCode) (channel.Storefront, error) {
	client, ok := r.clients[code]
	if !ok {
		return nil, channel.ErrProviderNotSupported
	}
	return client, nil
}

// ---------------------------------------------------------------------------
// Run prologue
// ---------------------------------------------------------------------------

// syncRun bundles what every sync method needs after the shared prologue
type syncRun struct {
	channel    *channel.SalesChannel
	storefront channel.Storefront
	lease      channel.Lease
}

// beginRun performs the fail-fast guards shared by every sync method: load
// the channel, verify it can sync, resolve the provider client and take the
// per-channel lease. No external call happens before the guards pass.
func beginRun(ctx context.Context, store Store, storefronts *StorefrontRegistry, leases channel.LeaseManager, caps Caps, channelID uuid.UUID) (*syncRun, error) {
	ch, err := store.Channels().FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if err := ch.CanSync(); err != nil {
		return nil, err
	}
	storefront, err := storefronts.For(ch.ProviderCode)
	if err != nil {
		return nil, err
	}
	lease, err := leases.Acquire(ctx, channelID, caps.LeaseTTL)
	if err != nil {
		if err == channel.ErrLeaseHeld {
			return nil, channel.ErrSyncAlreadyRunning
		}
		return nil, err
	}
	return &syncRun{channel: ch, storefront: storefront, lease: lease}, nil
}

// finishRun writes the run outcome back to the channel and releases the
// lease. Called on every exit path once the lease is held, including after
// cancellation, so the outcome write and release survive a dead ctx.
func finishRun(ctx context.Context, store Store, run *syncRun, result *channel.SyncResult, logger *zap.Logger) {
	ctx = context.WithoutCancel(ctx)
	run.channel.RecordSyncOutcome(time.Now(), result.Outcome())
	if err := store.Channels().Save(ctx, run.channel); err != nil {
		logger.Warn("failed to record sync outcome",
			zap.String("channel_id", run.channel.ID.String()),
			zap.Error(err))
	}
	if err := run.lease.Release(ctx); err != nil {
		logger.Warn("failed to release sync lease",
			zap.String("channel_id", run.channel.ID.String()),
			zap.Error(err))
	}
}
