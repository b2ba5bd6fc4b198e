package courier

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

func TestEstimateRates(t *testing.T) {
	t.Run("prepaid weights round up to half-kilo slabs", func(t *testing.T) {
		// 750g = 2 slabs: 40 + 2*35 = 110 surface
		rates := estimateRates(shipping.CourierDelhivery, shipping.RateRequest{
			WeightGrams: decimal.NewFromInt(750),
		})
		require.Len(t, rates, 2)
		assert.True(t, rates[0].IsSurface)
		assert.True(t, rates[0].TotalCharge.Equal(decimal.NewFromInt(110)))
		assert.True(t, rates[1].IsExpress)
		assert.True(t, rates[1].TotalCharge.GreaterThan(rates[0].TotalCharge))
	})

	t.Run("zero weight charges one slab", func(t *testing.T) {
		rates := estimateRates(shipping.CourierBluedart, shipping.RateRequest{})
		require.Len(t, rates, 2)
		assert.True(t, rates[0].TotalCharge.Equal(decimal.NewFromInt(75)))
	})

	t.Run("COD charges the larger of flat fee and percentage", func(t *testing.T) {
		flat := estimateRates(shipping.CourierXpressbees, shipping.RateRequest{
			WeightGrams:       decimal.NewFromInt(500),
			CollectOnDelivery: true,
			DeclaredValue:     decimal.NewFromInt(500),
		})
		// 1.5% of 500 = 7.50, below the flat 30
		assert.True(t, flat[0].CODCharge.Equal(decimal.NewFromInt(30)))

		pct := estimateRates(shipping.CourierXpressbees, shipping.RateRequest{
			WeightGrams:       decimal.NewFromInt(500),
			CollectOnDelivery: true,
			DeclaredValue:     decimal.NewFromInt(10000),
		})
		// 1.5% of 10000 = 150
		assert.True(t, pct[0].CODCharge.Equal(decimal.NewFromInt(150)))
	})

	t.Run("every estimate is marked as such", func(t *testing.T) {
		for _, rate := range estimateRates(shipping.CourierDelhivery, shipping.RateRequest{}) {
			assert.True(t, rate.IsEstimate(), rate.ServiceCode)
		}
	})
}
