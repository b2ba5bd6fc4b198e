package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/inventory"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// ErrNoActiveLocation indicates the provider exposes no active fulfillment
// location to sync inventory against
var ErrNoActiveLocation = errors.New("sync: channel has no active fulfillment location")

// InventorySyncService reconciles local on-hand quantities against the
// provider's primary fulfillment location. Writes are diff-only: equal
// quantities are counted skipped, and every change appends a StockMovement.
type InventorySyncService struct {
	store       Store
	storefronts *StorefrontRegistry
	leases      channel.LeaseManager
	caps        Caps
	logger      *zap.Logger
}

// NewInventorySyncService creates a new InventorySyncService
func NewInventorySyncService(store Store, storefronts *StorefrontRegistry, leases channel.LeaseManager, caps Caps, logger *zap.Logger) *InventorySyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventorySyncService{
		store:       store,
		storefronts: storefronts,
		leases:      leases,
		caps:        caps.normalized(),
		logger:      logger,
	}
}

// SyncInventory pulls inventory levels for every channel-linked SKU at the
// primary location and adjusts local items to the observed quantities. SKUs
// unknown locally are skipped, never zeroed.
func (s *InventorySyncService) SyncInventory(ctx context.Context, channelID uuid.UUID) *channel.SyncResult {
	result := channel.NewSyncResult(channelID)

	run, err := beginRun(ctx, s.store, s.storefronts, s.leases, s.caps, channelID)
	if err != nil {
		return result.Fail(err)
	}
	defer finishRun(ctx, s.store, run, result, s.logger)

	location, err := s.primaryLocation(ctx, run)
	if err != nil {
		return result.Fail(err)
	}

	skuByInventoryID, inventoryIDs, err := s.mapInventoryIDs(ctx, run)
	if err != nil {
		return result.Fail(err)
	}

	limit := s.caps.runLimit(run.channel.Policy.InventorySyncLimit)
	if len(inventoryIDs) > limit {
		inventoryIDs = inventoryIDs[:limit]
	}

	for start := 0; start < len(inventoryIDs); start += s.caps.InventoryBatchSize {
		if err := ctx.Err(); err != nil {
			result.AddError("run", err)
			break
		}
		end := start + s.caps.InventoryBatchSize
		if end > len(inventoryIDs) {
			end = len(inventoryIDs)
		}
		batch := inventoryIDs[start:end]

		levels, err := run.storefront.ListInventoryLevels(ctx, run.channel.Connection(), location.ExternalID, batch)
		if err != nil {
			result.InventoryFailed += len(batch)
			result.AddError(fmt.Sprintf("inventory batch %d-%d", start, end), err)
			continue
		}

		// applyLevels owns the counters for its batch, including losses
		// from a failed commit
		if err := s.applyLevels(ctx, run.channel, location, levels, skuByInventoryID, result); err != nil {
			result.AddError(fmt.Sprintf("inventory batch %d-%d", start, end), err)
		}
	}

	s.logger.Info("inventory sync finished",
		zap.String("channel_id", channelID.String()),
		zap.Int("updated", result.InventoryUpdated),
		zap.Int("skipped", result.InventorySkipped),
		zap.Int("failed", result.InventoryFailed))
	return result.Finalize()
}

// primaryLocation resolves the provider's first active fulfillment location
func (s *InventorySyncService) primaryLocation(ctx context.Context, run *syncRun) (*channel.ExternalLocation, error) {
	locations, err := run.storefront.ListLocations(ctx, run.channel.Connection())
	if err != nil {
		return nil, err
	}
	for i := range locations {
		if locations[i].Active {
			return &locations[i], nil
		}
	}
	return nil, ErrNoActiveLocation
}

// mapInventoryIDs walks the channel catalog and builds the provider
// inventory-item-ID to SKU mapping the level queries key on
func (s *InventorySyncService) mapInventoryIDs(ctx context.Context, run *syncRun) (map[string]string, []string, error) {
	skuByInventoryID := make(map[string]string)
	var inventoryIDs []string

	req := channel.PageRequest{PageSize: s.caps.OrderPageSize}
	for {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		products, page, err := run.storefront.ListProducts(ctx, run.channel.Connection(), req)
		if err != nil {
			return nil, nil, err
		}
		for _, product := range products {
			if isVariantBearing(product) {
				for _, v := range product.Variants {
					if v.ExternalInventoryID == "" {
						continue
					}
					skuByInventoryID[v.ExternalInventoryID] = variantSKU(v)
					inventoryIDs = append(inventoryIDs, v.ExternalInventoryID)
				}
				continue
			}
			if len(product.Variants) == 1 && product.Variants[0].ExternalInventoryID != "" {
				skuByInventoryID[product.Variants[0].ExternalInventoryID] = simpleSKU(product)
				inventoryIDs = append(inventoryIDs, product.Variants[0].ExternalInventoryID)
			}
		}
		if !page.HasMore || len(inventoryIDs) >= s.caps.MaxItemsPerRun {
			break
		}
		req.PageToken = page.NextPageToken
	}
	return skuByInventoryID, inventoryIDs, nil
}

// applyLevels adjusts local items to one batch of observed levels inside one
// unit of work
func (s *InventorySyncService) applyLevels(ctx context.Context, ch *channel.SalesChannel, location *channel.ExternalLocation, levels []channel.ExternalInventoryLevel, skuByInventoryID map[string]string, result *channel.SyncResult) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		result.InventoryFailed += len(levels)
		return err
	}
	updatedBefore := result.InventoryUpdated

	ref := inventory.MovementRef{
		Reason:    inventory.ReasonChannelSync,
		ChannelID: &ch.ID,
		SyncRunID: result.RunID,
	}

	for _, level := range levels {
		sku, ok := skuByInventoryID[level.ExternalInventoryID]
		if !ok {
			result.InventorySkipped++
			continue
		}

		item, err := uow.Items().FindBySKU(ctx, ch.TenantID, sku)
		if errors.Is(err, shared.ErrNotFound) {
			// never zero or create from a level observation
			result.InventorySkipped++
			continue
		}
		if err != nil {
			result.InventoryFailed++
			result.AddError("sku "+sku, err)
			continue
		}

		quantity := decimal.NewFromInt(int64(level.Available))
		if quantity.IsNegative() {
			quantity = decimal.Zero
		}
		movement, err := item.AdjustTo(quantity, ref)
		if err != nil {
			result.InventoryFailed++
			result.AddError("sku "+sku, err)
			continue
		}
		if movement == nil {
			result.InventorySkipped++
			continue
		}

		item.SetLocation(location.ExternalID, location.Name)
		if err := uow.Items().Save(ctx, item); err != nil {
			result.InventoryFailed++
			result.AddError("sku "+sku, err)
			continue
		}
		if err := uow.Movements().Append(ctx, movement); err != nil {
			result.InventoryFailed++
			result.AddError("sku "+sku, err)
			continue
		}
		result.InventoryUpdated++
	}

	if err := uow.Commit(); err != nil {
		_ = uow.Rollback()
		// the rollback voided this batch's adjustments
		result.InventoryFailed += result.InventoryUpdated - updatedBefore
		result.InventoryUpdated = updatedBefore
		return err
	}
	return nil
}
