package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecommanager/backend/internal/domain/order"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID finds a sales order by its ID, with items preloaded
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.SalesOrder, error) {
	var o order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindByChannelAndExternalID looks an order up by the composite upsert key
func (r *GormOrderRepository) FindByChannelAndExternalID(ctx context.Context, tenantID, channelID uuid.UUID, externalOrderID string) (*order.SalesOrder, error) {
	var o order.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("tenant_id = ? AND channel_id = ? AND external_order_id = ?", tenantID, channelID, externalOrderID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Save persists a sales order and its items
func (r *GormOrderRepository) Save(ctx context.Context, o *order.SalesOrder) error {
	if o == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Save(o).Error
}

// Ensure GormOrderRepository implements order.Repository
var _ order.Repository = (*GormOrderRepository)(nil)
