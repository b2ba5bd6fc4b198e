package courier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

func delhiveryCreds() shipping.Credentials {
	return shipping.Credentials{
		Key:      "test-token",
		Settings: map[string]string{"pickup_location": "Main Warehouse"},
	}
}

func newTestDelhivery(t *testing.T, handler http.HandlerFunc) (*DelhiveryAdapter, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	adapter, err := NewDelhiveryAdapter(&DelhiveryConfig{BaseURL: server.URL, TimeoutSeconds: 5})
	require.NoError(t, err)
	return adapter, server
}

func TestDelhiveryConfig_Validate(t *testing.T) {
	cfg := &DelhiveryConfig{}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, DelhiveryProductionURL, cfg.BaseURL)
	assert.Equal(t, 30, cfg.TimeoutSeconds)
}

func TestDelhiveryCredentialsFrom(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		dc, err := delhiveryCredentialsFrom(delhiveryCreds())
		require.NoError(t, err)
		assert.Equal(t, "test-token", dc.APIToken)
		assert.Equal(t, "Main Warehouse", dc.PickupLocation)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := delhiveryCredentialsFrom(shipping.Credentials{})
		assert.ErrorIs(t, err, ErrDelhiveryMissingToken)
	})
}

func TestDelhiveryAdapter_ValidateCredentials(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Token test-token", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(DelhiveryPincodeResponse{})
		})
		result := adapter.ValidateCredentials(context.Background(), delhiveryCreds())
		assert.True(t, result.Succeeded())
	})

	t.Run("rejected token", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		result := adapter.ValidateCredentials(context.Background(), delhiveryCreds())
		assert.True(t, result.Failed())
		assert.Contains(t, result.Message, "rejected")
	})

	t.Run("missing token fails without a request", func(t *testing.T) {
		adapter, err := NewDelhiveryAdapter(NewDelhiveryConfig())
		require.NoError(t, err)
		result := adapter.ValidateCredentials(context.Background(), shipping.Credentials{})
		assert.True(t, result.Failed())
	})
}

func TestDelhiveryAdapter_CreateShipment(t *testing.T) {
	req := shipping.ShipmentRequest{
		OrderReference: "ORD-1001",
		Pickup:         shipping.Party{Name: "Store", Pincode: "110001"},
		Delivery:       shipping.Party{Name: "Customer", Address: "42 Lane", Pincode: "560001", Phone: "9999999999"},
		WeightGrams:    decimal.NewFromInt(500),
		DeclaredValue:  decimal.NewFromInt(1200),
	}

	t.Run("waybill assigned", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/cmu/create.json", r.URL.Path)
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "json", r.PostFormValue("format"))

			var payload DelhiveryCreatePayload
			require.NoError(t, json.Unmarshal([]byte(r.PostFormValue("data")), &payload))
			require.Len(t, payload.Shipments, 1)
			assert.Equal(t, "ORD-1001", payload.Shipments[0].OrderID)
			assert.Equal(t, "Main Warehouse", payload.PickupLoc.Name)

			json.NewEncoder(w).Encode(map[string]any{
				"success": true,
				"packages": []map[string]any{
					{"waybill": "DHL123456", "refnum": "ORD-1001", "status": "Success"},
				},
			})
		})

		resp, result := adapter.CreateShipment(context.Background(), delhiveryCreds(), req)
		require.True(t, result.Succeeded())
		require.NotNil(t, resp)
		assert.Equal(t, "DHL123456", resp.AWB)
		assert.Contains(t, resp.TrackingURL, "DHL123456")
	})

	t.Run("manifest rejected", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"success": false, "rmk": "pin not serviceable"})
		})
		resp, result := adapter.CreateShipment(context.Background(), delhiveryCreds(), req)
		assert.Nil(t, resp)
		assert.True(t, result.Failed())
		assert.Contains(t, result.Message, "pin not serviceable")
	})

	t.Run("no waybill in package", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"success":  true,
				"packages": []map[string]any{{"waybill": "", "remarks": []string{"address incomplete"}}},
			})
		})
		resp, result := adapter.CreateShipment(context.Background(), delhiveryCreds(), req)
		assert.Nil(t, resp)
		assert.True(t, result.Failed())
	})
}

func TestDelhiveryAdapter_GetTracking(t *testing.T) {
	t.Run("delivered shipment with scans", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "DHL123456", r.URL.Query().Get("waybill"))
			json.NewEncoder(w).Encode(map[string]any{
				"ShipmentData": []map[string]any{{
					"Shipment": map[string]any{
						"AWB": "DHL123456",
						"Status": map[string]any{
							"Status": "Delivered", "StatusType": "DL",
							"ScannedLocation": "Bangalore Hub",
						},
						"DeliveryDate": "2026-08-20T14:05:00",
						"Scans": []map[string]any{
							{"ScanDetail": map[string]any{"Status": "Manifested", "StatusDateTime": "2026-08-17T09:00:00"}},
							{"ScanDetail": map[string]any{"Status": "In Transit", "ScannedLocation": "Delhi Hub", "StatusDateTime": "2026-08-18T11:00:00"}},
							{"ScanDetail": map[string]any{"Status": "Delivered", "StatusType": "DL", "ScannedLocation": "Bangalore Hub", "StatusDateTime": "2026-08-20T14:05:00"}},
						},
					},
				}},
			})
		})

		track, result := adapter.GetTracking(context.Background(), delhiveryCreds(), "DHL123456")
		require.True(t, result.Succeeded())
		require.NotNil(t, track)
		require.NotNil(t, track.Status)
		assert.Equal(t, shipping.StatusDelivered, *track.Status)
		assert.Equal(t, "Bangalore Hub", track.CurrentLocation)
		assert.NotNil(t, track.DeliveredAt)
		require.Len(t, track.Events, 3)
		assert.Equal(t, shipping.StatusManifested, *track.Events[0].Status)
		assert.Equal(t, shipping.StatusInTransit, *track.Events[1].Status)
	})

	t.Run("NDR reason captured from failed attempt", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"ShipmentData": []map[string]any{{
					"Shipment": map[string]any{
						"AWB":    "DHL777",
						"Status": map[string]any{"Status": "Pending", "StatusType": "UD"},
						"Scans": []map[string]any{
							{"ScanDetail": map[string]any{"Status": "Pending", "StatusType": "UD", "Instructions": "Consignee unavailable"}},
						},
					},
				}},
			})
		})

		track, result := adapter.GetTracking(context.Background(), delhiveryCreds(), "DHL777")
		require.True(t, result.Succeeded())
		require.NotNil(t, track.Status)
		assert.Equal(t, shipping.StatusDeliveryFailed, *track.Status)
		assert.Equal(t, "Consignee unavailable", track.NDRReason)
	})

	t.Run("unknown AWB", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"ShipmentData": []any{}})
		})
		track, result := adapter.GetTracking(context.Background(), delhiveryCreds(), "NOPE")
		assert.Nil(t, track)
		assert.Equal(t, shipping.ResultEmpty, result.Status)
	})
}

func TestDelhiveryAdapter_GetRates(t *testing.T) {
	req := shipping.RateRequest{
		PickupPincode:   "110001",
		DeliveryPincode: "560001",
		WeightGrams:     decimal.NewFromInt(750),
	}

	t.Run("live quote", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode([]map[string]any{
				{"total_amount": 92.5, "charge_COD": 0.0, "zone": "C"},
			})
		})
		rates, result := adapter.GetRates(context.Background(), delhiveryCreds(), req)
		require.True(t, result.Succeeded())
		require.Len(t, rates, 1)
		assert.False(t, rates[0].IsEstimate())
		assert.True(t, rates[0].TotalCharge.Equal(decimal.NewFromFloat(92.5)))
	})

	t.Run("falls back to estimate when API errors", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		rates, result := adapter.GetRates(context.Background(), delhiveryCreds(), req)
		assert.Equal(t, shipping.ResultEmpty, result.Status)
		require.NotEmpty(t, rates)
		for _, rate := range rates {
			assert.True(t, rate.IsEstimate())
		}
	})
}

func TestDelhiveryAdapter_CancelShipment(t *testing.T) {
	t.Run("cancelled", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/p/edit", r.URL.Path)
			json.NewEncoder(w).Encode(map[string]any{"status": true})
		})
		result := adapter.CancelShipment(context.Background(), delhiveryCreds(), "DHL123456")
		assert.True(t, result.Succeeded())
	})

	t.Run("rejected after dispatch", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"status": false, "remarks": "shipment already dispatched"})
		})
		result := adapter.CancelShipment(context.Background(), delhiveryCreds(), "DHL123456")
		assert.True(t, result.Failed())
		assert.Contains(t, result.Message, "dispatched")
	})
}

func TestDelhiveryAdapter_GetLabel(t *testing.T) {
	t.Run("label bytes returned", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "DHL123456", r.URL.Query().Get("wbns"))
			w.Write([]byte("%PDF-1.4 label"))
		})
		label, result := adapter.GetLabel(context.Background(), delhiveryCreds(), "DHL123456")
		require.True(t, result.Succeeded())
		assert.Contains(t, string(label), "%PDF")
	})

	t.Run("not generated yet", func(t *testing.T) {
		adapter, _ := newTestDelhivery(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		label, result := adapter.GetLabel(context.Background(), delhiveryCreds(), "DHL123456")
		assert.Nil(t, label)
		assert.Equal(t, shipping.ResultEmpty, result.Status)
	})
}

func TestMapDelhiveryStatus(t *testing.T) {
	tests := []struct {
		status     string
		statusType string
		want       *shipping.ShipmentStatus
	}{
		{"Manifested", "UD", shipping.StatusPtr(shipping.StatusManifested)},
		{"In Transit", "UD", shipping.StatusPtr(shipping.StatusInTransit)},
		{"Dispatched", "UD", shipping.StatusPtr(shipping.StatusOutForDelivery)},
		{"Delivered", "DL", shipping.StatusPtr(shipping.StatusDelivered)},
		{"Delivered", "RT", shipping.StatusPtr(shipping.StatusRTODelivered)},
		{"Pending", "UD", shipping.StatusPtr(shipping.StatusDeliveryFailed)},
		{"Pending", "", nil},
		{"RTO", "UD", shipping.StatusPtr(shipping.StatusRTOInitiated)},
		{"RTO", "DL", shipping.StatusPtr(shipping.StatusRTODelivered)},
		{"Lost", "", shipping.StatusPtr(shipping.StatusLost)},
		{"Canceled", "", shipping.StatusPtr(shipping.StatusCancelled)},
		// Unknown carrier statuses never advance the lifecycle
		{"Payment Collected", "", nil},
		{"", "", nil},
		{"SOMETHING NEW", "XX", nil},
	}

	for _, tt := range tests {
		t.Run(tt.status+"/"+tt.statusType, func(t *testing.T) {
			got := mapDelhiveryStatus(tt.status, tt.statusType)
			if tt.want == nil {
				assert.Nil(t, got)
			} else {
				require.NotNil(t, got)
				assert.Equal(t, *tt.want, *got)
			}
		})
	}
}
