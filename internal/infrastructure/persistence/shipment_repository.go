package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/ecommanager/backend/internal/domain/shipping"
)

// GormShipmentRepository implements shipping.ShipmentRepository using GORM
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewGormShipmentRepository creates a new GormShipmentRepository
func NewGormShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// FindByID finds a shipment by its ID
func (r *GormShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	var s shipping.Shipment
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipping.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByAWB finds a shipment by its AWB, the join key used by the webhook
// and polling paths
func (r *GormShipmentRepository) FindByAWB(ctx context.Context, awb string) (*shipping.Shipment, error) {
	var s shipping.Shipment
	if err := r.db.WithContext(ctx).Where("awb = ?", awb).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipping.ErrShipmentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindByOrder finds all shipments created for an order
func (r *GormShipmentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]shipping.Shipment, error) {
	var shipments []shipping.Shipment
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND order_id = ?", tenantID, orderID).
		Order("created_at").
		Find(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

// Save persists a shipment
func (r *GormShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	if shipment == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Save(shipment).Error
}

// Ensure GormShipmentRepository implements shipping.ShipmentRepository
var _ shipping.ShipmentRepository = (*GormShipmentRepository)(nil)

// ---------------------------------------------------------------------------
// Courier Accounts
// ---------------------------------------------------------------------------

// GormCourierAccountRepository implements shipping.AccountRepository using GORM
type GormCourierAccountRepository struct {
	db *gorm.DB
}

// NewGormCourierAccountRepository creates a new GormCourierAccountRepository
func NewGormCourierAccountRepository(db *gorm.DB) *GormCourierAccountRepository {
	return &GormCourierAccountRepository{db: db}
}

// FindByTenantAndCourier finds a tenant's account for one carrier
func (r *GormCourierAccountRepository) FindByTenantAndCourier(ctx context.Context, tenantID uuid.UUID, code shipping.CourierCode) (*shipping.CourierAccount, error) {
	var account shipping.CourierAccount
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND courier_code = ?", tenantID, code).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shipping.ErrCourierNotConfigured
		}
		return nil, err
	}
	return &account, nil
}

// FindEnabledForTenant finds all enabled courier accounts for a tenant
func (r *GormCourierAccountRepository) FindEnabledForTenant(ctx context.Context, tenantID uuid.UUID) ([]shipping.CourierAccount, error) {
	var accounts []shipping.CourierAccount
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND enabled", tenantID).
		Order("courier_code").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Save persists a courier account
func (r *GormCourierAccountRepository) Save(ctx context.Context, account *shipping.CourierAccount) error {
	if account == nil {
		return shared.ErrInvalidInput
	}
	return r.db.WithContext(ctx).Save(account).Error
}

// Ensure GormCourierAccountRepository implements shipping.AccountRepository
var _ shipping.AccountRepository = (*GormCourierAccountRepository)(nil)
