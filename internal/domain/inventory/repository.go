package inventory

import (
	"context"

	"github.com/google/uuid"
)

// ItemRepository persists inventory items
type ItemRepository interface {
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*InventoryItem, error)
	FindBySKUs(ctx context.Context, tenantID uuid.UUID, skus []string) ([]InventoryItem, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID) ([]InventoryItem, error)
	Save(ctx context.Context, item *InventoryItem) error
}

// MovementRepository appends stock movements. The trail is append-only:
// there is deliberately no update or delete.
type MovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string, limit int) ([]StockMovement, error)
	FindBySyncRun(ctx context.Context, tenantID, syncRunID uuid.UUID) ([]StockMovement, error)
}
