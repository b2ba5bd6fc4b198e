package channel

import (
	"errors"
	"time"

	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ---------------------------------------------------------------------------
// Channel Errors
// ---------------------------------------------------------------------------

var (
	ErrChannelNotFound      = errors.New("channel: channel not found")
	ErrChannelNotConnected  = errors.New("channel: channel is not connected")
	ErrChannelNoCredentials = errors.New("channel: channel has no credentials")
	ErrChannelNoStoreURL    = errors.New("channel: store URL is not configured")
	ErrProviderNotSupported = errors.New("channel: provider not supported")
	ErrSyncAlreadyRunning   = errors.New("channel: a sync is already running for this channel")
	ErrConflictUnresolved   = errors.New("channel: sync conflict requires explicit resolution")
)

// ---------------------------------------------------------------------------
// ProviderCode / ConnectionStatus
// ---------------------------------------------------------------------------

// ProviderCode identifies a storefront provider
type ProviderCode string

const (
	// ProviderShopify represents a Shopify storefront
	ProviderShopify ProviderCode = "SHOPIFY"
)

// IsValid returns true if the provider code is valid
func (p ProviderCode) IsValid() bool {
	return p == ProviderShopify
}

// String returns the string representation of ProviderCode
func (p ProviderCode) String() string {
	return string(p)
}

// ConnectionStatus is the channel connection lifecycle state
type ConnectionStatus string

const (
	// ConnectionNone indicates a channel created without credentials
	ConnectionNone ConnectionStatus = "NONE"
	// ConnectionCredentialed indicates stored credentials, not yet verified
	ConnectionCredentialed ConnectionStatus = "CREDENTIALED"
	// ConnectionConnected indicates an established storefront connection
	ConnectionConnected ConnectionStatus = "CONNECTED"
	// ConnectionDisconnected indicates a deliberately severed connection
	ConnectionDisconnected ConnectionStatus = "DISCONNECTED"
)

// ---------------------------------------------------------------------------
// SyncPolicy
// ---------------------------------------------------------------------------

// SyncPolicy controls what and how much a channel synchronizes. Nil lookback
// means unbounded history; nil limits mean unbounded item counts (still
// subject to the engine's hard safety cap).
type SyncPolicy struct {
	AutoSyncOrders     bool `gorm:"not null;default:false"`
	AutoSyncProducts   bool `gorm:"not null;default:false"`
	AutoSyncInventory  bool `gorm:"not null;default:false"`
	OrderLookbackDays  *int
	OrderSyncLimit     *int
	ProductSyncLimit   *int
	InventorySyncLimit *int
}

// OrderSyncFrom derives the sync window start from the lookback setting.
// A nil lookback returns nil: all-time history.
func (p SyncPolicy) OrderSyncFrom(now time.Time) *time.Time {
	if p.OrderLookbackDays == nil {
		return nil
	}
	from := now.AddDate(0, 0, -*p.OrderLookbackDays)
	return &from
}

// ---------------------------------------------------------------------------
// SalesChannel aggregate
// ---------------------------------------------------------------------------

// SalesChannel is an external storefront integration. It owns zero or one
// underlying storefront connection. Lifecycle: created unconnected →
// credentialed → connected → optionally disconnected, which clears tokens
// and webhook registrations without deleting historical orders.
type SalesChannel struct {
	shared.TenantAggregateRoot
	Name         string           `gorm:"type:varchar(120);not null"`
	ProviderCode ProviderCode     `gorm:"type:varchar(32);not null"`
	Status       ConnectionStatus `gorm:"type:varchar(20);not null;default:'NONE'"`
	StoreURL     string           `gorm:"type:varchar(255)"`
	AccessToken  string           `gorm:"type:varchar(1024)"`
	// WebhookIDs are the provider-side webhook registrations owned by this
	// channel, removed again on disconnect
	WebhookIDs      []string   `gorm:"serializer:json"`
	Policy          SyncPolicy `gorm:"embedded;embeddedPrefix:policy_"`
	LastSyncAt      *time.Time
	LastSyncOutcome string     `gorm:"type:varchar(255)"`
}

// TableName returns the table name for GORM
func (SalesChannel) TableName() string {
	return "sales_channels"
}

// NewSalesChannel creates an unconnected channel
func NewSalesChannel(tenantID uuid.UUID, name string, provider ProviderCode) (*SalesChannel, error) {
	if !provider.IsValid() {
		return nil, ErrProviderNotSupported
	}
	if name == "" {
		return nil, shared.ErrInvalidInput
	}
	return &SalesChannel{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                name,
		ProviderCode:        provider,
		Status:              ConnectionNone,
	}, nil
}

// SetCredentials stores the store URL and moves the channel to credentialed
func (c *SalesChannel) SetCredentials(storeURL string) error {
	if storeURL == "" {
		return ErrChannelNoStoreURL
	}
	c.StoreURL = storeURL
	if c.Status == ConnectionNone || c.Status == ConnectionDisconnected {
		c.Status = ConnectionCredentialed
	}
	c.UpdatedAt = time.Now()
	return nil
}

// Connect records a completed OAuth exchange
func (c *SalesChannel) Connect(accessToken string) error {
	if c.StoreURL == "" {
		return ErrChannelNoStoreURL
	}
	if accessToken == "" {
		return ErrChannelNoCredentials
	}
	c.AccessToken = accessToken
	c.Status = ConnectionConnected
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
	return nil
}

// Disconnect severs the storefront connection. Tokens and webhook
// registrations are cleared; historical orders are untouched.
func (c *SalesChannel) Disconnect() {
	c.AccessToken = ""
	c.WebhookIDs = nil
	c.Status = ConnectionDisconnected
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// IsConnected returns true if the channel can make storefront calls
func (c *SalesChannel) IsConnected() bool {
	return c.Status == ConnectionConnected
}

// CanSync verifies the channel is ready for a sync run. It is the fail-fast
// configuration guard: no external call happens when it returns an error.
func (c *SalesChannel) CanSync() error {
	if !c.IsConnected() {
		return ErrChannelNotConnected
	}
	if c.AccessToken == "" {
		return ErrChannelNoCredentials
	}
	if c.StoreURL == "" {
		return ErrChannelNoStoreURL
	}
	return nil
}

// Connection returns the storefront connection parameters for provider calls
func (c *SalesChannel) Connection() Connection {
	return Connection{StoreURL: c.StoreURL, AccessToken: c.AccessToken}
}

// RecordSyncOutcome stores the last-sync timestamp and outcome summary
func (c *SalesChannel) RecordSyncOutcome(at time.Time, outcome string) {
	c.LastSyncAt = &at
	c.LastSyncOutcome = outcome
	c.UpdatedAt = time.Now()
}

// RegisterWebhook remembers a provider-side webhook registration
func (c *SalesChannel) RegisterWebhook(id string) {
	c.WebhookIDs = append(c.WebhookIDs, id)
}
