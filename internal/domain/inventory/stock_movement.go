package inventory

import (
	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MovementReason classifies why a quantity changed
type MovementReason string

const (
	// ReasonChannelSync records an inventory sync against a sales channel
	ReasonChannelSync MovementReason = "CHANNEL_SYNC"
	// ReasonImportSeed records the initial quantity seeded at product import
	ReasonImportSeed MovementReason = "IMPORT_SEED"
	// ReasonManualAdjustment records a manual correction
	ReasonManualAdjustment MovementReason = "MANUAL_ADJUSTMENT"
)

// String returns the string representation of MovementReason
func (r MovementReason) String() string {
	return string(r)
}

// MovementRef ties a movement back to the channel and sync run that
// triggered it
type MovementRef struct {
	Reason    MovementReason
	ChannelID *uuid.UUID
	SyncRunID uuid.UUID
}

// StockMovement is one immutable entry in the append-only audit trail.
// Every quantity change writes exactly one movement; rows are never updated
// or deleted.
type StockMovement struct {
	shared.TenantEntity
	InventoryItemID uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU             string          `gorm:"type:varchar(64);not null;index"`
	QuantityBefore  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	QuantityAfter   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Delta           decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Reason          MovementReason  `gorm:"type:varchar(32);not null"`
	ChannelID       *uuid.UUID      `gorm:"type:uuid;index"`
	SyncRunID       uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockMovement) TableName() string {
	return "stock_movements"
}

// NewStockMovement records one quantity change on an inventory item
func NewStockMovement(item *InventoryItem, before, after decimal.Decimal, ref MovementRef) *StockMovement {
	return &StockMovement{
		TenantEntity:    shared.NewTenantEntity(item.TenantID),
		InventoryItemID: item.ID,
		SKU:             item.SKU,
		QuantityBefore:  before,
		QuantityAfter:   after,
		Delta:           after.Sub(before),
		Reason:          ref.Reason,
		ChannelID:       ref.ChannelID,
		SyncRunID:       ref.SyncRunID,
	}
}
