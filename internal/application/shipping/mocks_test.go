package shipping

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// Mock implementations

type mockAccountRepository struct {
	mock.Mock
}

func (m *mockAccountRepository) FindByTenantAndCourier(ctx context.Context, tenantID uuid.UUID, code shipping.CourierCode) (*shipping.CourierAccount, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.CourierAccount), args.Error(1)
}

func (m *mockAccountRepository) FindEnabledForTenant(ctx context.Context, tenantID uuid.UUID) ([]shipping.CourierAccount, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.CourierAccount), args.Error(1)
}

func (m *mockAccountRepository) Save(ctx context.Context, account *shipping.CourierAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

type mockShipmentRepository struct {
	mock.Mock
}

func (m *mockShipmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*shipping.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *mockShipmentRepository) FindByAWB(ctx context.Context, awb string) (*shipping.Shipment, error) {
	args := m.Called(ctx, awb)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipping.Shipment), args.Error(1)
}

func (m *mockShipmentRepository) FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]shipping.Shipment, error) {
	args := m.Called(ctx, tenantID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.Shipment), args.Error(1)
}

func (m *mockShipmentRepository) Save(ctx context.Context, shipment *shipping.Shipment) error {
	args := m.Called(ctx, shipment)
	return args.Error(0)
}

type mockProvider struct {
	mock.Mock
	code shipping.CourierCode
}

func (m *mockProvider) Code() shipping.CourierCode {
	return m.code
}

func (m *mockProvider) ValidateCredentials(ctx context.Context, creds shipping.Credentials) shipping.Result {
	args := m.Called(ctx, creds)
	return args.Get(0).(shipping.Result)
}

func (m *mockProvider) GetRates(ctx context.Context, creds shipping.Credentials, req shipping.RateRequest) ([]shipping.CourierRate, shipping.Result) {
	args := m.Called(ctx, creds, req)
	var rates []shipping.CourierRate
	if args.Get(0) != nil {
		rates = args.Get(0).([]shipping.CourierRate)
	}
	return rates, args.Get(1).(shipping.Result)
}

func (m *mockProvider) CreateShipment(ctx context.Context, creds shipping.Credentials, req shipping.ShipmentRequest) (*shipping.ShipmentResponse, shipping.Result) {
	args := m.Called(ctx, creds, req)
	var resp *shipping.ShipmentResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*shipping.ShipmentResponse)
	}
	return resp, args.Get(1).(shipping.Result)
}

func (m *mockProvider) GetTracking(ctx context.Context, creds shipping.Credentials, awb string) (*shipping.TrackingResponse, shipping.Result) {
	args := m.Called(ctx, creds, awb)
	var resp *shipping.TrackingResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*shipping.TrackingResponse)
	}
	return resp, args.Get(1).(shipping.Result)
}

func (m *mockProvider) CancelShipment(ctx context.Context, creds shipping.Credentials, awb string) shipping.Result {
	args := m.Called(ctx, creds, awb)
	return args.Get(0).(shipping.Result)
}

func (m *mockProvider) GetLabel(ctx context.Context, creds shipping.Credentials, awb string) ([]byte, shipping.Result) {
	args := m.Called(ctx, creds, awb)
	var data []byte
	if args.Get(0) != nil {
		data = args.Get(0).([]byte)
	}
	return data, args.Get(1).(shipping.Result)
}

func (m *mockProvider) SchedulePickup(ctx context.Context, creds shipping.Credentials, req shipping.PickupRequest) (*shipping.PickupResponse, shipping.Result) {
	args := m.Called(ctx, creds, req)
	var resp *shipping.PickupResponse
	if args.Get(0) != nil {
		resp = args.Get(0).(*shipping.PickupResponse)
	}
	return resp, args.Get(1).(shipping.Result)
}

type mockNormalizer struct {
	mock.Mock
	code shipping.CourierCode
}

func (m *mockNormalizer) Courier() shipping.CourierCode {
	return m.code
}

func (m *mockNormalizer) HandleWebhook(raw []byte) shipping.WebhookResult {
	args := m.Called(raw)
	return args.Get(0).(shipping.WebhookResult)
}

type mockRegistry struct {
	mock.Mock
}

func (m *mockRegistry) Provider(code shipping.CourierCode) (shipping.CourierProvider, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shipping.CourierProvider), args.Error(1)
}

func (m *mockRegistry) Normalizer(code shipping.CourierCode) (shipping.WebhookNormalizer, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(shipping.WebhookNormalizer), args.Error(1)
}

func (m *mockRegistry) Providers() []shipping.CourierProvider {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]shipping.CourierProvider)
}

type mockLabelStore struct {
	mock.Mock
}

func (m *mockLabelStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	args := m.Called(ctx, key, data, contentType)
	return args.Error(0)
}

func (m *mockLabelStore) DownloadURL(ctx context.Context, key string, expiresIn time.Duration) (string, error) {
	args := m.Called(ctx, key, expiresIn)
	return args.String(0), args.Error(1)
}

func (m *mockLabelStore) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
