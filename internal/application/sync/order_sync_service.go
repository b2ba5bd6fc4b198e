package sync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/order"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// OrderSyncService imports externally modified orders from a channel's
// storefront into the local order book.
type OrderSyncService struct {
	store       Store
	storefronts *StorefrontRegistry
	leases      channel.LeaseManager
	caps        Caps
	logger      *zap.Logger
}

// NewOrderSyncService creates a new OrderSyncService
func NewOrderSyncService(store Store, storefronts *StorefrontRegistry, leases channel.LeaseManager, caps Caps, logger *zap.Logger) *OrderSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderSyncService{
		store:       store,
		storefronts: storefronts,
		leases:      leases,
		caps:        caps.normalized(),
		logger:      logger,
	}
}

// SyncOrders pulls orders modified inside the window and upserts them by the
// (channel, external order ID) composite key. A nil from falls back to the
// channel's lookback policy; nil means all-time. One failing order never
// aborts the run, and each processed page commits on its own.
func (s *OrderSyncService) SyncOrders(ctx context.Context, channelID uuid.UUID, from, to *time.Time) *channel.SyncResult {
	result := channel.NewSyncResult(channelID)

	run, err := beginRun(ctx, s.store, s.storefronts, s.leases, s.caps, channelID)
	if err != nil {
		return result.Fail(err)
	}
	defer finishRun(ctx, s.store, run, result, s.logger)

	if from == nil {
		from = run.channel.Policy.OrderSyncFrom(time.Now())
	}
	limit := s.caps.runLimit(run.channel.Policy.OrderSyncLimit)

	req := channel.PageRequest{
		PageSize:      s.caps.OrderPageSize,
		UpdatedAfter:  from,
		UpdatedBefore: to,
	}

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			result.AddError("run", err)
			break
		}

		orders, page, err := run.storefront.ListOrders(ctx, run.channel.Connection(), req)
		if err != nil {
			if processed == 0 {
				result.Fail(err)
				return result
			}
			result.AddError("page", err)
			break
		}

		if err := s.processOrderPage(ctx, run.channel, orders, &processed, limit, result); err != nil {
			result.AddError("page", err)
			break
		}

		if processed >= limit {
			s.logger.Info("order sync stopped at run limit",
				zap.String("channel_id", channelID.String()),
				zap.Int("limit", limit))
			break
		}
		if !page.HasMore {
			break
		}
		req.PageToken = page.NextPageToken
	}

	s.logger.Info("order sync finished",
		zap.String("channel_id", channelID.String()),
		zap.Int("imported", result.OrdersImported),
		zap.Int("updated", result.OrdersUpdated),
		zap.Int("skipped", result.OrdersSkipped),
		zap.Int("failed", result.OrdersFailed))
	return result.Finalize()
}

// processOrderPage upserts one page of orders inside one unit of work. The
// commit boundary is the page: a later page failing never rolls this one
// back. Item errors are isolated; only a Begin/Commit failure is returned.
func (s *OrderSyncService) processOrderPage(ctx context.Context, ch *channel.SalesChannel, orders []channel.ExternalOrder, processed *int, limit int, result *channel.SyncResult) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	importedBefore := result.OrdersImported
	updatedBefore := result.OrdersUpdated

	for _, ext := range orders {
		if *processed >= limit {
			break
		}
		*processed++

		kind, err := s.upsertOrder(ctx, uow, ch, ext)
		if err != nil {
			result.OrdersFailed++
			result.AddError(orderRef(ext), err)
			continue
		}
		switch kind {
		case upsertImported:
			result.OrdersImported++
		case upsertUpdated:
			result.OrdersUpdated++
		default:
			result.OrdersSkipped++
		}
	}

	if err := uow.Commit(); err != nil {
		_ = uow.Rollback()
		// the rollback voided this page's writes; its successes are losses
		result.OrdersFailed += (result.OrdersImported - importedBefore) + (result.OrdersUpdated - updatedBefore)
		result.OrdersImported = importedBefore
		result.OrdersUpdated = updatedBefore
		return err
	}
	return nil
}

// upsertKind records what happened to one order during upsert
type upsertKind int

const (
	upsertImported upsertKind = iota
	upsertUpdated
	upsertSkipped
)

func (s *OrderSyncService) upsertOrder(ctx context.Context, uow UnitOfWork, ch *channel.SalesChannel, ext channel.ExternalOrder) (upsertKind, error) {
	if ext.ExternalID == "" {
		return upsertSkipped, order.ErrMissingExternalID
	}

	existing, err := uow.Orders().FindByChannelAndExternalID(ctx, ch.TenantID, ch.ID, ext.ExternalID)
	switch {
	case err == nil:
		// re-import updates status fields only, the rest is preserved.
		// An existing key always counts as updated, changed or not.
		if existing.ApplyExternalUpdate(ext) {
			if err := uow.Orders().Save(ctx, existing); err != nil {
				return upsertSkipped, err
			}
		}
		return upsertUpdated, nil
	case errors.Is(err, shared.ErrNotFound):
		created, err := order.NewFromExternal(ch.TenantID, ch.ID, ext)
		if err != nil {
			return upsertSkipped, err
		}
		if err := uow.Orders().Save(ctx, created); err != nil {
			return upsertSkipped, err
		}
		return upsertImported, nil
	default:
		return upsertSkipped, fmt.Errorf("order lookup failed: %w", err)
	}
}

func orderRef(ext channel.ExternalOrder) string {
	if ext.OrderNumber != "" {
		return "order " + ext.OrderNumber
	}
	return "order " + ext.ExternalID
}
