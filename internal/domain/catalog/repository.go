package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository persists products. Lookups used by the sync engine
// include soft-deleted rows so a reappearing product is restored instead of
// colliding on its SKU.
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// FindBySKUs loads products by SKU, including soft-deleted rows when
	// includeDeleted is set
	FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string, includeDeleted bool) ([]Product, error)
	FindByChannel(ctx context.Context, tenantID, channelID uuid.UUID) ([]Product, error)
	Save(ctx context.Context, product *Product) error
}

// VariantRepository persists product variants
type VariantRepository interface {
	FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string, includeDeleted bool) ([]ProductVariant, error)
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID) ([]ProductVariant, error)
	Save(ctx context.Context, variant *ProductVariant) error
}
