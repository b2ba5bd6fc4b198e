package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appshipping "github.com/ecommanager/backend/internal/application/shipping"
	"github.com/ecommanager/backend/internal/domain/shipping"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type fakeShipmentRepo struct {
	byAWB map[string]*shipping.Shipment
	saved int
}

func (r *fakeShipmentRepo) FindByID(_ context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	for _, s := range r.byAWB {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, shipping.ErrShipmentNotFound
}

func (r *fakeShipmentRepo) FindByAWB(_ context.Context, awb string) (*shipping.Shipment, error) {
	if s, ok := r.byAWB[awb]; ok {
		return s, nil
	}
	return nil, shipping.ErrShipmentNotFound
}

func (r *fakeShipmentRepo) FindByOrder(_ context.Context, tenantID, orderID uuid.UUID) ([]shipping.Shipment, error) {
	return nil, nil
}

func (r *fakeShipmentRepo) Save(_ context.Context, s *shipping.Shipment) error {
	r.byAWB[s.AWB] = s
	r.saved++
	return nil
}

// fakeNormalizer treats the payload as a pre-normalized JSON WebhookResult
type fakeNormalizer struct{ code shipping.CourierCode }

func (n *fakeNormalizer) Courier() shipping.CourierCode { return n.code }

func (n *fakeNormalizer) HandleWebhook(raw []byte) shipping.WebhookResult {
	var result shipping.WebhookResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return shipping.WebhookResult{OK: false}
	}
	return result
}

type fakeRegistry struct{ normalizers map[shipping.CourierCode]shipping.WebhookNormalizer }

func (r *fakeRegistry) Provider(code shipping.CourierCode) (shipping.CourierProvider, error) {
	return nil, shipping.ErrCourierNotRegistered
}

func (r *fakeRegistry) Normalizer(code shipping.CourierCode) (shipping.WebhookNormalizer, error) {
	if n, ok := r.normalizers[code]; ok {
		return n, nil
	}
	return nil, shipping.ErrCourierNotRegistered
}

func (r *fakeRegistry) Providers() []shipping.CourierProvider { return nil }

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newWebhookRouter(t *testing.T, repo *fakeShipmentRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := &fakeRegistry{normalizers: map[shipping.CourierCode]shipping.WebhookNormalizer{
		shipping.CourierDelhivery: &fakeNormalizer{code: shipping.CourierDelhivery},
	}}
	svc := appshipping.NewWebhookService(repo, registry, zap.NewNop())

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewWebhookHandler(svc).RegisterRoutes(api)
	return engine
}

func seedShipment(t *testing.T, repo *fakeShipmentRepo, awb string) *shipping.Shipment {
	t.Helper()
	s, err := shipping.NewShipment(uuid.New(), nil, shipping.CourierDelhivery, shipping.ShipmentResponse{AWB: awb})
	require.NoError(t, err)
	repo.byAWB[awb] = s
	return s
}

func postWebhook(engine *gin.Engine, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestCourierWebhook_AppliesStatus(t *testing.T) {
	repo := &fakeShipmentRepo{byAWB: make(map[string]*shipping.Shipment)}
	engine := newWebhookRouter(t, repo)
	seedShipment(t, repo, "AWB123")

	delivered := shipping.StatusDelivered
	payload, _ := json.Marshal(shipping.WebhookResult{OK: true, AWB: "AWB123", NewStatus: &delivered})

	w := postWebhook(engine, "/api/v1/webhooks/courier/DELHIVERY", payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, shipping.StatusDelivered, repo.byAWB["AWB123"].Status)
	assert.Equal(t, 1, repo.saved)
	assert.Contains(t, w.Body.String(), `"status":"DELIVERED"`)
}

func TestCourierWebhook_MalformedPayloadAcknowledged(t *testing.T) {
	repo := &fakeShipmentRepo{byAWB: make(map[string]*shipping.Shipment)}
	engine := newWebhookRouter(t, repo)

	w := postWebhook(engine, "/api/v1/webhooks/courier/DELHIVERY", []byte("not json"))

	// carriers retry on non-2xx; unparseable payloads are acknowledged
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored":true`)
}

func TestCourierWebhook_UnknownAWBAcknowledged(t *testing.T) {
	repo := &fakeShipmentRepo{byAWB: make(map[string]*shipping.Shipment)}
	engine := newWebhookRouter(t, repo)

	delivered := shipping.StatusDelivered
	payload, _ := json.Marshal(shipping.WebhookResult{OK: true, AWB: "GHOST", NewStatus: &delivered})

	w := postWebhook(engine, "/api/v1/webhooks/courier/DELHIVERY", payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored":true`)
}

func TestCourierWebhook_UnknownCourierAcknowledged(t *testing.T) {
	repo := &fakeShipmentRepo{byAWB: make(map[string]*shipping.Shipment)}
	engine := newWebhookRouter(t, repo)

	w := postWebhook(engine, "/api/v1/webhooks/courier/UNKNOWN", []byte(`{}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ignored":true`)
}

func TestCourierWebhook_NoStatusChangeReturnsShipment(t *testing.T) {
	repo := &fakeShipmentRepo{byAWB: make(map[string]*shipping.Shipment)}
	engine := newWebhookRouter(t, repo)
	seedShipment(t, repo, "AWB123")

	payload, _ := json.Marshal(shipping.WebhookResult{OK: true, AWB: "AWB123", Message: "scan without status"})

	w := postWebhook(engine, "/api/v1/webhooks/courier/DELHIVERY", payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, repo.saved)
	assert.Contains(t, w.Body.String(), `"status":"CREATED"`)
}
