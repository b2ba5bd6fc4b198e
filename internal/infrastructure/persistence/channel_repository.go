package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// GormChannelRepository implements channel.Repository using GORM
type GormChannelRepository struct {
	db *gorm.DB
}

// NewGormChannelRepository creates a new GormChannelRepository
func NewGormChannelRepository(db *gorm.DB) *GormChannelRepository {
	return &GormChannelRepository{db: db}
}

// FindByID finds a sales channel by its ID
func (r *GormChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	var ch channel.SalesChannel
	if err := r.db.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, channel.ErrChannelNotFound
		}
		return nil, err
	}
	return &ch, nil
}

// FindByTenant finds all sales channels for a tenant
func (r *GormChannelRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]channel.SalesChannel, error) {
	var channels []channel.SalesChannel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at").
		Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// FindAutoSyncEnabled finds connected channels with any auto-sync flag set
func (r *GormChannelRepository) FindAutoSyncEnabled(ctx context.Context) ([]channel.SalesChannel, error) {
	var channels []channel.SalesChannel
	if err := r.db.WithContext(ctx).
		Where("status = ?", channel.ConnectionConnected).
		Where("policy_auto_sync_orders OR policy_auto_sync_products OR policy_auto_sync_inventory").
		Find(&channels).Error; err != nil {
		return nil, err
	}
	return channels, nil
}

// Save persists a sales channel
func (r *GormChannelRepository) Save(ctx context.Context, ch *channel.SalesChannel) error {
	if ch == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Save(ch).Error
}

// Ensure GormChannelRepository implements channel.Repository
var _ channel.Repository = (*GormChannelRepository)(nil)
