package shipping

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RateRequest describes a rate query between two pincodes
type RateRequest struct {
	// PickupPincode is the origin postal code
	PickupPincode string
	// DeliveryPincode is the destination postal code
	DeliveryPincode string
	// WeightGrams is the billable weight in grams
	WeightGrams decimal.Decimal
	// LengthCM, WidthCM and HeightCM are optional dimensions
	LengthCM decimal.Decimal
	WidthCM  decimal.Decimal
	HeightCM decimal.Decimal
	// CollectOnDelivery indicates a COD shipment
	CollectOnDelivery bool
	// DeclaredValue is the order value, used for COD charge calculation
	DeclaredValue decimal.Decimal
}

// CourierRate is one candidate service returned by a rate query. Rates are
// immutable results and are never persisted by the sync core.
type CourierRate struct {
	CourierCode CourierCode
	// ServiceCode identifies the carrier service. Locally computed fallback
	// estimates carry a "-ESTIMATE" suffix so callers can tell them apart.
	ServiceCode   string
	ServiceName   string
	FreightCharge decimal.Decimal
	CODCharge     decimal.Decimal
	TotalCharge   decimal.Decimal
	// EstimatedDays is the expected delivery time in days, zero if unknown
	EstimatedDays int
	IsExpress     bool
	IsSurface     bool
}

// IsEstimate returns true if the rate was computed locally rather than
// quoted by the carrier
func (r CourierRate) IsEstimate() bool {
	const suffix = "-ESTIMATE"
	return len(r.ServiceCode) >= len(suffix) && r.ServiceCode[len(r.ServiceCode)-len(suffix):] == suffix
}

// SortRatesByTotal sorts rates ascending by total charge in place
func SortRatesByTotal(rates []CourierRate) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].TotalCharge.LessThan(rates[j].TotalCharge)
	})
}
