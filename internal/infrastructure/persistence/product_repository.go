package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecommanager/backend/internal/domain/catalog"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// GormProductRepository implements catalog.ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID, with variants preloaded
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKUs loads products by SKU. The sync engine sets includeDeleted so a
// reappearing product restores instead of colliding on its SKU.
func (r *GormProductRepository) FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string, includeDeleted bool) ([]catalog.Product, error) {
	if len(skus) == 0 {
		return []catalog.Product{}, nil
	}
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}
	var products []catalog.Product
	if err := query.
		Preload("Variants").
		Where("tenant_id = ? AND sku IN ?", tenantID, skus).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindByChannel finds all products linked to a channel
func (r *GormProductRepository) FindByChannel(ctx context.Context, tenantID, channelID uuid.UUID) ([]catalog.Product, error) {
	var products []catalog.Product
	if err := r.db.WithContext(ctx).
		Preload("Variants").
		Where("tenant_id = ? AND channel_id = ?", tenantID, channelID).
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Save persists a product and its variants. Unscoped so restoring a
// soft-deleted row clears deleted_at instead of inserting a duplicate.
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	if product == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Unscoped().Save(product).Error
}

// Ensure GormProductRepository implements catalog.ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)

// ---------------------------------------------------------------------------
// Variants
// ---------------------------------------------------------------------------

// GormVariantRepository implements catalog.VariantRepository using GORM
type GormVariantRepository struct {
	db *gorm.DB
}

// NewGormVariantRepository creates a new GormVariantRepository
func NewGormVariantRepository(db *gorm.DB) *GormVariantRepository {
	return &GormVariantRepository{db: db}
}

// FindBySKUs loads variants by SKU, including soft-deleted rows when asked
func (r *GormVariantRepository) FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string, includeDeleted bool) ([]catalog.ProductVariant, error) {
	if len(skus) == 0 {
		return []catalog.ProductVariant{}, nil
	}
	query := r.db.WithContext(ctx)
	if includeDeleted {
		query = query.Unscoped()
	}
	var variants []catalog.ProductVariant
	if err := query.
		Where("tenant_id = ? AND sku IN ?", tenantID, skus).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// FindByProduct finds all variants of a product
func (r *GormVariantRepository) FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductVariant, error) {
	var variants []catalog.ProductVariant
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ?", tenantID, productID).
		Find(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

// Save persists a variant
func (r *GormVariantRepository) Save(ctx context.Context, variant *catalog.ProductVariant) error {
	if variant == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Unscoped().Save(variant).Error
}

// Ensure GormVariantRepository implements catalog.VariantRepository
var _ catalog.VariantRepository = (*GormVariantRepository)(nil)
