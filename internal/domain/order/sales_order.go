package order

import (
	"errors"
	"time"

	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound     = errors.New("order: order not found")
	ErrMissingExternalID = errors.New("order: external order ID is required")
)

// OrderStatus is the local order lifecycle status
type OrderStatus string

const (
	OrderStatusOpen      OrderStatus = "OPEN"
	OrderStatusFulfilled OrderStatus = "FULFILLED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus is the local payment state
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentPartial  PaymentStatus = "PARTIALLY_PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// Address is a postal address attached to an order
type Address struct {
	Name    string `gorm:"type:varchar(120)"`
	Phone   string `gorm:"type:varchar(32)"`
	Line1   string `gorm:"type:varchar(255)"`
	Line2   string `gorm:"type:varchar(255)"`
	City    string `gorm:"type:varchar(120)"`
	State   string `gorm:"type:varchar(120)"`
	Zip     string `gorm:"type:varchar(20)"`
	Country string `gorm:"type:varchar(64)"`
}

// SalesOrder is an order in the back office. Channel-imported orders carry
// the (ChannelID, ExternalOrderID) composite key the sync engine upserts by.
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber     string        `gorm:"type:varchar(64);not null;index"`
	ChannelID       *uuid.UUID    `gorm:"type:uuid;uniqueIndex:idx_orders_channel_external,priority:1"`
	ExternalOrderID string        `gorm:"type:varchar(64);uniqueIndex:idx_orders_channel_external,priority:2"`
	Status          OrderStatus   `gorm:"type:varchar(20);not null;default:'OPEN'"`
	PaymentStatus   PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'"`
	Currency        string        `gorm:"type:varchar(8);not null;default:'INR'"`
	SubtotalAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	CustomerName    string          `gorm:"type:varchar(120)"`
	CustomerEmail   string          `gorm:"type:varchar(255)"`
	CustomerPhone   string          `gorm:"type:varchar(32)"`
	ShippingAddress Address         `gorm:"embedded;embeddedPrefix:ship_"`
	BillingAddress  Address         `gorm:"embedded;embeddedPrefix:bill_"`
	Note            string          `gorm:"type:varchar(1000)"`
	PlacedAt        time.Time
	// PushedExternalID is set when a locally created order has been pushed
	// out to a storefront
	PushedExternalID string `gorm:"type:varchar(64)"`

	Items []OrderItem `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// OrderItem is one line in a sales order
type OrderItem struct {
	shared.TenantEntity
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU            string          `gorm:"type:varchar(64);index"`
	Title          string          `gorm:"type:varchar(255)"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExternalItemID string          `gorm:"type:varchar(64)"`
}

// TableName returns the table name for GORM
func (OrderItem) TableName() string {
	return "sales_order_items"
}

// NewFromExternal maps a full external order into a new internal order
func NewFromExternal(tenantID, channelID uuid.UUID, ext channel.ExternalOrder) (*SalesOrder, error) {
	if ext.ExternalID == "" {
		return nil, ErrMissingExternalID
	}
	o := &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         ext.OrderNumber,
		ChannelID:           &channelID,
		ExternalOrderID:     ext.ExternalID,
		Status:              mapFulfillmentStatus(ext),
		PaymentStatus:       mapFinancialStatus(ext.FinancialStatus),
		Currency:            ext.Currency,
		SubtotalAmount:      ext.SubtotalAmount,
		TaxAmount:           ext.TaxAmount,
		ShippingAmount:      ext.ShippingAmount,
		DiscountAmount:      ext.DiscountAmount,
		TotalAmount:         ext.TotalAmount,
		CustomerName:        ext.CustomerName,
		CustomerEmail:       ext.CustomerEmail,
		CustomerPhone:       ext.CustomerPhone,
		ShippingAddress:     mapAddress(ext.ShippingAddress),
		BillingAddress:      mapAddress(ext.BillingAddress),
		Note:                ext.Note,
		PlacedAt:            ext.PlacedAt,
	}
	for _, item := range ext.Items {
		o.Items = append(o.Items, OrderItem{
			TenantEntity:   shared.NewTenantEntity(tenantID),
			OrderID:        o.ID,
			SKU:            item.SKU,
			Title:          item.Title,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			DiscountAmount: item.TotalDiscount,
			ExternalItemID: item.ExternalID,
		})
	}
	return o, nil
}

// ApplyExternalUpdate applies only the fields intended to change after
// import: status and payment status. The rest of the record is preserved.
func (o *SalesOrder) ApplyExternalUpdate(ext channel.ExternalOrder) bool {
	changed := false
	if s := mapFulfillmentStatus(ext); s != o.Status {
		o.Status = s
		changed = true
	}
	if p := mapFinancialStatus(ext.FinancialStatus); p != o.PaymentStatus {
		o.PaymentStatus = p
		changed = true
	}
	if changed {
		o.UpdatedAt = time.Now()
		o.IncrementVersion()
	}
	return changed
}

func mapFulfillmentStatus(ext channel.ExternalOrder) OrderStatus {
	if ext.Cancelled {
		return OrderStatusCancelled
	}
	switch ext.FulfillmentStatus {
	case "fulfilled":
		return OrderStatusFulfilled
	default:
		return OrderStatusOpen
	}
}

func mapFinancialStatus(s string) PaymentStatus {
	switch s {
	case "paid":
		return PaymentPaid
	case "partially_paid":
		return PaymentPartial
	case "refunded", "partially_refunded":
		return PaymentRefunded
	default:
		return PaymentPending
	}
}

func mapAddress(a channel.ExternalAddress) Address {
	return Address{
		Name:    a.Name,
		Phone:   a.Phone,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
	}
}
