package shipping

import (
	"context"

	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CourierAccount stores a tenant's credentials for one carrier. Key material
// is opaque here; the matching adapter converts it into its typed config and
// validates it immediately after load.
type CourierAccount struct {
	shared.TenantAggregateRoot
	CourierCode CourierCode       `gorm:"type:varchar(32);not null;uniqueIndex:idx_courier_account_tenant_code,priority:2"`
	Key         string            `gorm:"type:varchar(255);not null"`
	Secret      string            `gorm:"type:varchar(255)"`
	Settings    map[string]string `gorm:"serializer:json"`
	AccessToken string            `gorm:"type:varchar(1024)"`
	Enabled     bool              `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (CourierAccount) TableName() string {
	return "courier_accounts"
}

// NewCourierAccount creates a courier account for a tenant
func NewCourierAccount(tenantID uuid.UUID, code CourierCode, key, secret string, settings map[string]string) (*CourierAccount, error) {
	if !code.IsValid() {
		return nil, ErrCourierNotRegistered
	}
	if key == "" {
		return nil, ErrMissingCredentials
	}
	return &CourierAccount{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CourierCode:         code,
		Key:                 key,
		Secret:              secret,
		Settings:            settings,
		Enabled:             true,
	}, nil
}

// Credentials returns the opaque credential bundle for adapter calls
func (a *CourierAccount) Credentials() Credentials {
	return Credentials{
		Key:         a.Key,
		Secret:      a.Secret,
		Settings:    a.Settings,
		AccessToken: a.AccessToken,
	}
}

// CacheToken stores a short-lived token obtained by the adapter
func (a *CourierAccount) CacheToken(token string) {
	a.AccessToken = token
}

// ---------------------------------------------------------------------------
// Repositories
// ---------------------------------------------------------------------------

// AccountRepository persists courier accounts
type AccountRepository interface {
	FindByTenantAndCourier(ctx context.Context, tenantID uuid.UUID, code CourierCode) (*CourierAccount, error)
	FindEnabledForTenant(ctx context.Context, tenantID uuid.UUID) ([]CourierAccount, error)
	Save(ctx context.Context, account *CourierAccount) error
}

// ShipmentRepository persists shipments
type ShipmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shipment, error)
	FindByAWB(ctx context.Context, awb string) (*Shipment, error)
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]Shipment, error)
	Save(ctx context.Context, shipment *Shipment) error
}
