package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecommanager/backend/internal/domain/inventory"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// GormInventoryItemRepository implements inventory.ItemRepository using GORM
type GormInventoryItemRepository struct {
	db *gorm.DB
}

// NewGormInventoryItemRepository creates a new GormInventoryItemRepository
func NewGormInventoryItemRepository(db *gorm.DB) *GormInventoryItemRepository {
	return &GormInventoryItemRepository{db: db}
}

// FindBySKU finds an inventory item by SKU within a tenant
func (r *GormInventoryItemRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*inventory.InventoryItem, error) {
	var item inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// FindBySKUs finds inventory items by SKU within a tenant
func (r *GormInventoryItemRepository) FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string) ([]inventory.InventoryItem, error) {
	if len(skus) == 0 {
		return []inventory.InventoryItem{}, nil
	}
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku IN ?", tenantID, skus).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// FindAllForTenant finds all inventory items for a tenant
func (r *GormInventoryItemRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]inventory.InventoryItem, error) {
	var items []inventory.InventoryItem
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("sku").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save persists an inventory item
func (r *GormInventoryItemRepository) Save(ctx context.Context, item *inventory.InventoryItem) error {
	if item == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// Ensure GormInventoryItemRepository implements inventory.ItemRepository
var _ inventory.ItemRepository = (*GormInventoryItemRepository)(nil)

// ---------------------------------------------------------------------------
// Stock Movements
// ---------------------------------------------------------------------------

// GormMovementRepository implements inventory.MovementRepository using GORM.
// The movement trail is append-only; this repository exposes no update or
// delete path.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append inserts a stock movement
func (r *GormMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	if movement == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindBySKU returns the most recent movements for a SKU, newest first
func (r *GormMovementRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string, limit int) ([]inventory.StockMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sku = ?", tenantID, sku).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// FindBySyncRun returns all movements written by one sync run
func (r *GormMovementRepository) FindBySyncRun(ctx context.Context, tenantID, syncRunID uuid.UUID) ([]inventory.StockMovement, error) {
	var movements []inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND sync_run_id = ?", tenantID, syncRunID).
		Order("created_at").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

// Ensure GormMovementRepository implements inventory.MovementRepository
var _ inventory.MovementRepository = (*GormMovementRepository)(nil)
