package courier

import (
	"github.com/shopspring/decimal"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// Local rate estimation used when a carrier cannot quote. Estimates carry the
// "-ESTIMATE" service code suffix so callers can tell them from live quotes.

// weightGramsPerKilo converts gram weights into carrier-facing kilograms
var weightGramsPerKilo = decimal.NewFromInt(1000)

var (
	estimateBaseCharge    = decimal.NewFromInt(40)
	estimatePerHalfKilo   = decimal.NewFromInt(35)
	estimateExpressFactor = decimal.NewFromFloat(1.6)
	estimateCODFlat       = decimal.NewFromInt(30)
	estimateCODPercent    = decimal.NewFromFloat(0.015)
)

// estimateRates computes surface and express estimates for a rate request.
// The model is a base charge plus a per-500g slab charge, with COD priced as
// the greater of a flat fee and a percentage of the declared value.
func estimateRates(code shipping.CourierCode, req shipping.RateRequest) []shipping.CourierRate {
	halfKilos := req.WeightGrams.Div(decimal.NewFromInt(500)).Ceil()
	if halfKilos.LessThan(decimal.NewFromInt(1)) {
		halfKilos = decimal.NewFromInt(1)
	}

	surface := estimateBaseCharge.Add(estimatePerHalfKilo.Mul(halfKilos))
	express := surface.Mul(estimateExpressFactor).Round(2)

	var cod decimal.Decimal
	if req.CollectOnDelivery {
		cod = estimateCODFlat
		if pct := req.DeclaredValue.Mul(estimateCODPercent).Round(2); pct.GreaterThan(cod) {
			cod = pct
		}
	}

	rates := []shipping.CourierRate{
		{
			CourierCode:   code,
			ServiceCode:   "SURFACE-ESTIMATE",
			ServiceName:   "Surface (estimated)",
			FreightCharge: surface,
			CODCharge:     cod,
			TotalCharge:   surface.Add(cod),
			EstimatedDays: 5,
			IsSurface:     true,
		},
		{
			CourierCode:   code,
			ServiceCode:   "EXPRESS-ESTIMATE",
			ServiceName:   "Express (estimated)",
			FreightCharge: express,
			CODCharge:     cod,
			TotalCharge:   express.Add(cod),
			EstimatedDays: 2,
			IsExpress:     true,
		},
	}
	shipping.SortRatesByTotal(rates)
	return rates
}
