package inventory

import (
	"errors"
	"time"

	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound    = errors.New("inventory: inventory item not found")
	ErrMissingSKU      = errors.New("inventory: SKU is required")
	ErrNegativeOnHand  = errors.New("inventory: on-hand quantity cannot be negative")
)

// InventoryItem tracks on-hand and reserved quantity for exactly one SKU
// (simple product or variant). Quantity never changes without an
// accompanying StockMovement.
type InventoryItem struct {
	shared.TenantAggregateRoot
	SKU              string          `gorm:"type:varchar(64);not null;uniqueIndex:idx_inventory_tenant_sku,priority:2"`
	OnHandQuantity   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	// LocationID is the external fulfillment location the quantity was last
	// synced against
	LocationID   string `gorm:"type:varchar(64)"`
	LocationName string `gorm:"type:varchar(120)"`
}

// TableName returns the table name for GORM
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NewInventoryItem seeds inventory for a SKU
func NewInventoryItem(tenantID uuid.UUID, sku string, onHand decimal.Decimal) (*InventoryItem, error) {
	if sku == "" {
		return nil, ErrMissingSKU
	}
	if onHand.IsNegative() {
		return nil, ErrNegativeOnHand
	}
	return &InventoryItem{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		OnHandQuantity:      onHand,
		ReservedQuantity:    decimal.Zero,
	}, nil
}

// AvailableQuantity returns on-hand minus reserved
func (i *InventoryItem) AvailableQuantity() decimal.Decimal {
	return i.OnHandQuantity.Sub(i.ReservedQuantity)
}

// AdjustTo sets the on-hand quantity to the externally observed value and
// returns the movement recording the change. Returns nil when the quantity
// is already equal: callers count that as skipped, not updated.
func (i *InventoryItem) AdjustTo(newQuantity decimal.Decimal, ref MovementRef) (*StockMovement, error) {
	if newQuantity.IsNegative() {
		return nil, ErrNegativeOnHand
	}
	if i.OnHandQuantity.Equal(newQuantity) {
		return nil, nil
	}
	before := i.OnHandQuantity
	i.OnHandQuantity = newQuantity
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
	return NewStockMovement(i, before, newQuantity, ref), nil
}

// SetLocation updates the external location metadata
func (i *InventoryItem) SetLocation(id, name string) {
	i.LocationID = id
	i.LocationName = name
}
