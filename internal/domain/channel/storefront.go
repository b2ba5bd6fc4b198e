package channel

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Connection carries the parameters a storefront client needs for one call
type Connection struct {
	StoreURL    string
	AccessToken string
}

// PageRequest asks for one page of externally modified records. PageToken is
// an opaque provider cursor; empty means the first page.
type PageRequest struct {
	PageToken    string
	PageSize     int
	UpdatedAfter *time.Time
	UpdatedBefore *time.Time
}

// PageInfo describes whether and how to fetch the next page
type PageInfo struct {
	NextPageToken string
	HasMore       bool
}

// ---------------------------------------------------------------------------
// Normalized external shapes
// ---------------------------------------------------------------------------

// ExternalOrder is a storefront order in provider-neutral form
type ExternalOrder struct {
	ExternalID      string
	OrderNumber     string
	FinancialStatus string
	FulfillmentStatus string
	Currency        string
	TotalAmount     decimal.Decimal
	SubtotalAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
	ShippingAmount  decimal.Decimal
	DiscountAmount  decimal.Decimal
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress ExternalAddress
	BillingAddress  ExternalAddress
	Note            string
	Items           []ExternalOrderItem
	PlacedAt        time.Time
	UpdatedAt       time.Time
	Cancelled       bool
}

// ExternalOrderItem is one line in an external order
type ExternalOrderItem struct {
	ExternalID        string
	ExternalProductID string
	ExternalVariantID string
	SKU               string
	Title             string
	Quantity          int
	UnitPrice         decimal.Decimal
	TotalDiscount     decimal.Decimal
}

// ExternalAddress is a provider-neutral postal address
type ExternalAddress struct {
	Name    string
	Phone   string
	Line1   string
	Line2   string
	City    string
	State   string
	Zip     string
	Country string
}

// ExternalProduct is a storefront product with its variants
type ExternalProduct struct {
	ExternalID  string
	Title       string
	Description string
	Vendor      string
	ProductType string
	Variants    []ExternalVariant
	UpdatedAt   time.Time
}

// ExternalVariant is one purchasable variant of an external product
type ExternalVariant struct {
	ExternalID          string
	ExternalInventoryID string
	SKU                 string
	Title               string
	Option1Name         string
	Option1Value        string
	Option2Name         string
	Option2Value        string
	Price               decimal.Decimal
	InventoryQuantity   int
}

// ExternalLocation is a provider fulfillment location
type ExternalLocation struct {
	ExternalID string
	Name       string
	Active     bool
}

// ExternalInventoryLevel is the on-hand quantity of one inventory item at
// one location
type ExternalInventoryLevel struct {
	ExternalInventoryID string
	LocationID          string
	Available           int
}

// ---------------------------------------------------------------------------
// Push shapes
// ---------------------------------------------------------------------------

// OrderDraft is the provider creation shape for pushing a local order out
type OrderDraft struct {
	OrderNumber     string
	Currency        string
	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	ShippingAddress ExternalAddress
	BillingAddress  ExternalAddress
	Note            string
	Items           []ExternalOrderItem
	ShippingAmount  decimal.Decimal
	TaxAmount       decimal.Decimal
}

// OrderUpdate carries only the fields storefront providers honor after
// creation: contact info, note and addresses. Line items never change.
type OrderUpdate struct {
	CustomerEmail   *string
	CustomerPhone   *string
	Note            *string
	ShippingAddress *ExternalAddress
	BillingAddress  *ExternalAddress
}

// ExternalOrderRef is the provider-assigned identity of a pushed order
type ExternalOrderRef struct {
	ExternalID  string
	OrderNumber string
}

// ---------------------------------------------------------------------------
// Storefront Port Interface
// ---------------------------------------------------------------------------

// Storefront is the port interface one storefront provider client satisfies.
// Implementations live in the infrastructure layer; the sync engine only
// sees this contract.
type Storefront interface {
	// Provider returns the provider code this client handles
	Provider() ProviderCode

	// ListOrders fetches one page of orders modified inside the window
	ListOrders(ctx context.Context, conn Connection, req PageRequest) ([]ExternalOrder, PageInfo, error)

	// ListProducts fetches one page of products
	ListProducts(ctx context.Context, conn Connection, req PageRequest) ([]ExternalProduct, PageInfo, error)

	// ListLocations fetches the provider's fulfillment locations
	ListLocations(ctx context.Context, conn Connection) ([]ExternalLocation, error)

	// ListInventoryLevels fetches levels for the given inventory item IDs at
	// one location. Callers batch IDs to the provider's limit.
	ListInventoryLevels(ctx context.Context, conn Connection, locationID string, inventoryItemIDs []string) ([]ExternalInventoryLevel, error)

	// CreateOrder pushes a local order to the provider
	CreateOrder(ctx context.Context, conn Connection, draft OrderDraft) (*ExternalOrderRef, error)

	// UpdateOrder updates an existing provider order with the subset of
	// fields the provider honors post-creation
	UpdateOrder(ctx context.Context, conn Connection, externalOrderID string, update OrderUpdate) error

	// DeleteWebhook removes a provider-side webhook registration
	DeleteWebhook(ctx context.Context, conn Connection, webhookID string) error
}
