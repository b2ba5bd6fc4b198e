package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/catalog"
	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/inventory"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// ProductSyncService imports the storefront catalog: simple products,
// variant-bearing products and their initial inventory seed.
type ProductSyncService struct {
	store       Store
	storefronts *StorefrontRegistry
	leases      channel.LeaseManager
	caps        Caps
	logger      *zap.Logger
}

// NewProductSyncService creates a new ProductSyncService
func NewProductSyncService(store Store, storefronts *StorefrontRegistry, leases channel.LeaseManager, caps Caps, logger *zap.Logger) *ProductSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductSyncService{
		store:       store,
		storefronts: storefronts,
		leases:      leases,
		caps:        caps.normalized(),
		logger:      logger,
	}
}

// SyncProducts pulls the channel catalog page by page. Products are matched
// by SKU including soft-deleted rows, so a product that reappears upstream
// is restored in place rather than duplicated. Conflicted products are never
// silently overwritten.
func (s *ProductSyncService) SyncProducts(ctx context.Context, channelID uuid.UUID) *channel.SyncResult {
	result := channel.NewSyncResult(channelID)

	run, err := beginRun(ctx, s.store, s.storefronts, s.leases, s.caps, channelID)
	if err != nil {
		return result.Fail(err)
	}
	defer finishRun(ctx, s.store, run, result, s.logger)

	limit := s.caps.runLimit(run.channel.Policy.ProductSyncLimit)
	req := channel.PageRequest{PageSize: s.caps.OrderPageSize}

	processed := 0
	for {
		if err := ctx.Err(); err != nil {
			result.AddError("run", err)
			break
		}

		products, page, err := run.storefront.ListProducts(ctx, run.channel.Connection(), req)
		if err != nil {
			if processed == 0 {
				result.Fail(err)
				return result
			}
			result.AddError("page", err)
			break
		}

		if err := s.processProductPage(ctx, run.channel, products, &processed, limit, result); err != nil {
			result.AddError("page", err)
			break
		}

		if processed >= limit || !page.HasMore {
			break
		}
		req.PageToken = page.NextPageToken
	}

	s.logger.Info("product sync finished",
		zap.String("channel_id", channelID.String()),
		zap.Int("imported", result.ProductsImported),
		zap.Int("updated", result.ProductsUpdated),
		zap.Int("skipped", result.ProductsSkipped),
		zap.Int("failed", result.ProductsFailed))
	return result.Finalize()
}

// processProductPage upserts one page of products inside one unit of work
func (s *ProductSyncService) processProductPage(ctx context.Context, ch *channel.SalesChannel, products []channel.ExternalProduct, processed *int, limit int, result *channel.SyncResult) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	importedBefore := result.ProductsImported
	updatedBefore := result.ProductsUpdated

	// preload the whole page's SKUs in two queries, soft-deleted included
	productSKUs, variantSKUs := collectSKUs(products)
	existingProducts, err := uow.Products().FindBySKUs(ctx, ch.TenantID, productSKUs, true)
	if err != nil {
		_ = uow.Rollback()
		return err
	}
	existingVariants, err := uow.Variants().FindBySKUs(ctx, ch.TenantID, variantSKUs, true)
	if err != nil {
		_ = uow.Rollback()
		return err
	}
	productsBySKU := make(map[string]*catalog.Product, len(existingProducts))
	for i := range existingProducts {
		productsBySKU[existingProducts[i].SKU] = &existingProducts[i]
	}
	variantsBySKU := make(map[string]*catalog.ProductVariant, len(existingVariants))
	for i := range existingVariants {
		variantsBySKU[existingVariants[i].SKU] = &existingVariants[i]
	}

	for _, ext := range products {
		if *processed >= limit {
			break
		}
		*processed++

		kind, err := s.upsertProduct(ctx, uow, ch, ext, productsBySKU, variantsBySKU, result.RunID)
		if err != nil {
			result.ProductsFailed++
			result.AddError(productRef(ext), err)
			continue
		}
		switch kind {
		case upsertImported:
			result.ProductsImported++
		case upsertUpdated:
			result.ProductsUpdated++
		default:
			result.ProductsSkipped++
		}
	}

	if err := uow.Commit(); err != nil {
		_ = uow.Rollback()
		// the rollback voided this page's writes; its successes are losses
		result.ProductsFailed += (result.ProductsImported - importedBefore) + (result.ProductsUpdated - updatedBefore)
		result.ProductsImported = importedBefore
		result.ProductsUpdated = updatedBefore
		return err
	}
	return nil
}

// isVariantBearing reports whether the external product needs explicit
// variant rows. A single-variant product collapses into a simple product
// whose SKU is the variant's.
func isVariantBearing(ext channel.ExternalProduct) bool {
	return len(ext.Variants) > 1
}

// simpleSKU derives the SKU of a simple product
func simpleSKU(ext channel.ExternalProduct) string {
	if len(ext.Variants) == 1 {
		if v := ext.Variants[0]; v.SKU != "" {
			return v.SKU
		}
		return catalog.SynthesizeVariantSKU(ext.Variants[0].ExternalID)
	}
	return catalog.SynthesizeParentSKU(ext.ExternalID)
}

// variantSKU derives the SKU of one variant
func variantSKU(v channel.ExternalVariant) string {
	if v.SKU != "" {
		return v.SKU
	}
	return catalog.SynthesizeVariantSKU(v.ExternalID)
}

func collectSKUs(products []channel.ExternalProduct) (productSKUs, variantSKUs []string) {
	for _, ext := range products {
		if isVariantBearing(ext) {
			productSKUs = append(productSKUs, catalog.SynthesizeParentSKU(ext.ExternalID))
			for _, v := range ext.Variants {
				variantSKUs = append(variantSKUs, variantSKU(v))
			}
		} else {
			productSKUs = append(productSKUs, simpleSKU(ext))
		}
	}
	return productSKUs, variantSKUs
}

func (s *ProductSyncService) upsertProduct(ctx context.Context, uow UnitOfWork, ch *channel.SalesChannel, ext channel.ExternalProduct, productsBySKU map[string]*catalog.Product, variantsBySKU map[string]*catalog.ProductVariant, runID uuid.UUID) (upsertKind, error) {
	if ext.ExternalID == "" {
		return upsertSkipped, fmt.Errorf("product has no external ID")
	}

	if isVariantBearing(ext) {
		return s.upsertVariantBearing(ctx, uow, ch, ext, productsBySKU, variantsBySKU, runID)
	}
	return s.upsertSimple(ctx, uow, ch, ext, productsBySKU, runID)
}

func (s *ProductSyncService) upsertSimple(ctx context.Context, uow UnitOfWork, ch *channel.SalesChannel, ext channel.ExternalProduct, productsBySKU map[string]*catalog.Product, runID uuid.UUID) (upsertKind, error) {
	sku := simpleSKU(ext)
	price := decimal.Zero
	quantity := 0
	if len(ext.Variants) == 1 {
		price = ext.Variants[0].Price
		quantity = ext.Variants[0].InventoryQuantity
	}

	existing := productsBySKU[sku]
	if existing == nil {
		product, err := catalog.NewProduct(ch.TenantID, sku, ext.Title, price)
		if err != nil {
			return upsertSkipped, err
		}
		product.Description = catalog.TruncateText(ext.Description, catalog.MaxDescriptionLength)
		product.ChannelID = &ch.ID
		product.ExternalProductID = ext.ExternalID
		product.MarkSynced()
		if err := uow.Products().Save(ctx, product); err != nil {
			return upsertSkipped, err
		}
		if err := s.seedInventory(ctx, uow, ch, sku, quantity, runID); err != nil {
			return upsertSkipped, err
		}
		productsBySKU[sku] = product
		return upsertImported, nil
	}

	if existing.HasConflict() {
		return upsertSkipped, nil
	}

	if existing.ExternalProductID == "" && !existing.Price.Equal(price) {
		// locally created product with the same SKU and a diverging price:
		// flag it for a human instead of clobbering the local value
		existing.MarkConflict()
		if err := uow.Products().Save(ctx, existing); err != nil {
			return upsertSkipped, err
		}
		return upsertSkipped, nil
	}

	if existing.IsDeleted() {
		existing.Restore()
	}
	existing.Name = catalog.TruncateText(ext.Title, catalog.MaxNameLength)
	existing.Description = catalog.TruncateText(ext.Description, catalog.MaxDescriptionLength)
	existing.Price = price
	existing.ChannelID = &ch.ID
	existing.ExternalProductID = ext.ExternalID
	existing.MarkSynced()
	if err := uow.Products().Save(ctx, existing); err != nil {
		return upsertSkipped, err
	}
	return upsertUpdated, nil
}

func (s *ProductSyncService) upsertVariantBearing(ctx context.Context, uow UnitOfWork, ch *channel.SalesChannel, ext channel.ExternalProduct, productsBySKU map[string]*catalog.Product, variantsBySKU map[string]*catalog.ProductVariant, runID uuid.UUID) (upsertKind, error) {
	parentSKU := catalog.SynthesizeParentSKU(ext.ExternalID)

	parent := productsBySKU[parentSKU]
	kind := upsertUpdated
	if parent == nil {
		var err error
		parent, err = catalog.NewProduct(ch.TenantID, parentSKU, ext.Title, decimal.Zero)
		if err != nil {
			return upsertSkipped, err
		}
		kind = upsertImported
	} else if parent.HasConflict() {
		return upsertSkipped, nil
	} else if parent.IsDeleted() {
		parent.Restore()
	}

	parent.Name = catalog.TruncateText(ext.Title, catalog.MaxNameLength)
	parent.Description = catalog.TruncateText(ext.Description, catalog.MaxDescriptionLength)
	parent.HasVariants = true
	parent.ChannelID = &ch.ID
	parent.ExternalProductID = ext.ExternalID
	parent.MarkSynced()
	if err := uow.Products().Save(ctx, parent); err != nil {
		return upsertSkipped, err
	}
	productsBySKU[parentSKU] = parent

	for _, extVariant := range ext.Variants {
		if err := s.upsertVariant(ctx, uow, ch, parent, extVariant, variantsBySKU, runID); err != nil {
			return upsertSkipped, fmt.Errorf("variant %s: %w", variantSKU(extVariant), err)
		}
	}
	return kind, nil
}

func (s *ProductSyncService) upsertVariant(ctx context.Context, uow UnitOfWork, ch *channel.SalesChannel, parent *catalog.Product, ext channel.ExternalVariant, variantsBySKU map[string]*catalog.ProductVariant, runID uuid.UUID) error {
	sku := variantSKU(ext)

	existing := variantsBySKU[sku]
	if existing == nil {
		variant, err := catalog.NewProductVariant(ch.TenantID, parent.ID, sku, ext.Title, ext.Price)
		if err != nil {
			return err
		}
		applyVariantOptions(variant, ext)
		variant.ExternalVariantID = ext.ExternalID
		if err := uow.Variants().Save(ctx, variant); err != nil {
			return err
		}
		if err := s.seedInventory(ctx, uow, ch, sku, ext.InventoryQuantity, runID); err != nil {
			return err
		}
		variantsBySKU[sku] = variant
		return nil
	}

	if existing.IsDeleted() {
		existing.Restore()
	}
	existing.Title = catalog.TruncateText(ext.Title, catalog.MaxNameLength)
	existing.Price = ext.Price
	existing.ExternalVariantID = ext.ExternalID
	applyVariantOptions(existing, ext)
	return uow.Variants().Save(ctx, existing)
}

func applyVariantOptions(v *catalog.ProductVariant, ext channel.ExternalVariant) {
	v.Option1Name = catalog.TruncateText(ext.Option1Name, catalog.MaxOptionLength)
	v.Option1Value = catalog.TruncateText(ext.Option1Value, catalog.MaxOptionLength)
	v.Option2Name = catalog.TruncateText(ext.Option2Name, catalog.MaxOptionLength)
	v.Option2Value = catalog.TruncateText(ext.Option2Value, catalog.MaxOptionLength)
}

// seedInventory creates the inventory item for a newly imported SKU. The
// initial quantity is recorded as an IMPORT_SEED movement so the audit trail
// starts at the very first observation.
func (s *ProductSyncService) seedInventory(ctx context.Context, uow UnitOfWork, ch *channel.SalesChannel, sku string, quantity int, runID uuid.UUID) error {
	if _, err := uow.Items().FindBySKU(ctx, ch.TenantID, sku); err == nil {
		return nil // existing item is owned by inventory sync, leave it alone
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	qty := decimal.NewFromInt(int64(quantity))
	if qty.IsNegative() {
		qty = decimal.Zero
	}
	item, err := inventory.NewInventoryItem(ch.TenantID, sku, qty)
	if err != nil {
		return err
	}
	if err := uow.Items().Save(ctx, item); err != nil {
		return err
	}
	if qty.IsZero() {
		return nil
	}
	movement := inventory.NewStockMovement(item, decimal.Zero, qty, inventory.MovementRef{
		Reason:    inventory.ReasonImportSeed,
		ChannelID: &ch.ID,
		SyncRunID: runID,
	})
	return uow.Movements().Append(ctx, movement)
}

// ResolveConflict settles a flagged price divergence. keepLocal retains the
// local price; otherwise channelPrice replaces it. Sync itself never clears
// a conflict.
func (s *ProductSyncService) ResolveConflict(ctx context.Context, productID uuid.UUID, keepLocal bool, channelPrice decimal.Decimal) error {
	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	product, err := uow.Products().FindByID(ctx, productID)
	if err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := product.ResolveConflict(keepLocal, channelPrice); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.Products().Save(ctx, product); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func productRef(ext channel.ExternalProduct) string {
	if ext.Title != "" {
		return "product " + ext.Title
	}
	return "product " + ext.ExternalID
}
