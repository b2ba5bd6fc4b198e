package shipping

import (
	"time"

	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Party is one side of a shipment (pickup or delivery)
type Party struct {
	Name    string
	Phone   string
	Email   string
	Address string
	City    string
	State   string
	Pincode string
	Country string
}

// ShipmentItem is one line inside a shipment
type ShipmentItem struct {
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// ShipmentRequest is the normalized shipment creation input
type ShipmentRequest struct {
	// OrderReference is the internal order number, used by adapters as the
	// carrier-side idempotency reference where the provider supports one
	OrderReference    string
	Pickup            Party
	Delivery          Party
	WeightGrams       decimal.Decimal
	LengthCM          decimal.Decimal
	WidthCM           decimal.Decimal
	HeightCM          decimal.Decimal
	CollectOnDelivery bool
	CODAmount         decimal.Decimal
	DeclaredValue     decimal.Decimal
	Items             []ShipmentItem
}

// ShipmentResponse is the normalized shipment creation output. The AWB is
// the join key between the internal shipment and carrier-side state.
type ShipmentResponse struct {
	AWB               string
	CourierName       string
	CourierShipmentID string
	TrackingURL       string
}

// PickupRequest schedules a carrier pickup
type PickupRequest struct {
	PickupLocation string
	PickupDate     time.Time
	PackageCount   int
	WeightGrams    decimal.Decimal
}

// PickupResponse is the carrier's pickup confirmation
type PickupResponse struct {
	PickupID      string
	ScheduledDate time.Time
	Confirmed     bool
}

// ---------------------------------------------------------------------------
// Shipment aggregate
// ---------------------------------------------------------------------------

// Shipment is the internal record of a carrier shipment. Carrier-side state
// is joined back onto it by AWB, from both the polling and webhook paths.
type Shipment struct {
	shared.TenantAggregateRoot
	OrderID           *uuid.UUID     `gorm:"type:uuid;index"`
	CourierCode       CourierCode    `gorm:"type:varchar(32);not null;index"`
	AWB               string         `gorm:"type:varchar(64);not null;uniqueIndex"`
	CourierShipmentID string         `gorm:"type:varchar(128)"`
	TrackingURL       string         `gorm:"type:varchar(512)"`
	Status            ShipmentStatus `gorm:"type:varchar(32);not null"`
	CurrentLocation   string         `gorm:"type:varchar(255)"`
	// LabelKey is the object-storage key of the archived label, if fetched
	LabelKey            string `gorm:"type:varchar(255)"`
	NDRAttempts         int    `gorm:"not null;default:0"`
	LastNDRReason       string `gorm:"type:varchar(512)"`
	ExpectedDeliveryAt  *time.Time
	DeliveredAt         *time.Time
	LastStatusChangedAt *time.Time
}

// TableName returns the table name for GORM
func (Shipment) TableName() string {
	return "shipments"
}

// NewShipment creates a shipment record from a carrier response
func NewShipment(tenantID uuid.UUID, orderID *uuid.UUID, code CourierCode, resp ShipmentResponse) (*Shipment, error) {
	if resp.AWB == "" {
		return nil, ErrAWBAssignmentFailed
	}
	return &Shipment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		CourierCode:         code,
		AWB:                 resp.AWB,
		CourierShipmentID:   resp.CourierShipmentID,
		TrackingURL:         resp.TrackingURL,
		Status:              StatusCreated,
	}, nil
}

// ApplyStatus applies a mapped carrier status. A nil status is a no-op:
// unknown carrier codes must never advance the lifecycle.
func (s *Shipment) ApplyStatus(status *ShipmentStatus, location string, at time.Time) bool {
	if status == nil {
		return false
	}
	if *status == s.Status && location == s.CurrentLocation {
		return false
	}
	s.Status = *status
	if location != "" {
		s.CurrentLocation = location
	}
	changed := at
	if changed.IsZero() {
		changed = time.Now()
	}
	s.LastStatusChangedAt = &changed
	if *status == StatusDelivered {
		s.DeliveredAt = &changed
	}
	if status.IsNDR() {
		s.NDRAttempts++
	}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
	return true
}

// RecordNDRReason stores the latest non-delivery reason
func (s *Shipment) RecordNDRReason(reason string) {
	if reason != "" {
		s.LastNDRReason = reason
	}
}

// AttachLabel records the object-storage key of the archived label
func (s *Shipment) AttachLabel(key string) {
	s.LabelKey = key
	s.UpdatedAt = time.Now()
}
