package shipping

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

func testAccount(tenantID uuid.UUID, code shipping.CourierCode) *shipping.CourierAccount {
	account, _ := shipping.NewCourierAccount(tenantID, code, "key", "secret", nil)
	return account
}

func TestCourierService_GetRates_MergesAndSorts(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()

	accounts.On("FindEnabledForTenant", mock.Anything, tenantID).Return([]shipping.CourierAccount{
		*testAccount(tenantID, shipping.CourierDelhivery),
		*testAccount(tenantID, shipping.CourierBluedart),
	}, nil)

	delhivery := &mockProvider{code: shipping.CourierDelhivery}
	delhivery.On("GetRates", mock.Anything, mock.Anything, mock.Anything).Return([]shipping.CourierRate{
		{CourierCode: shipping.CourierDelhivery, ServiceCode: "SURFACE", TotalCharge: decimal.NewFromInt(90)},
	}, shipping.Ok())

	bluedart := &mockProvider{code: shipping.CourierBluedart}
	bluedart.On("GetRates", mock.Anything, mock.Anything, mock.Anything).Return([]shipping.CourierRate{
		{CourierCode: shipping.CourierBluedart, ServiceCode: "SURFACE-ESTIMATE", TotalCharge: decimal.NewFromInt(75)},
	}, shipping.Empty("estimated locally"))

	registry.On("Provider", shipping.CourierDelhivery).Return(delhivery, nil)
	registry.On("Provider", shipping.CourierBluedart).Return(bluedart, nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	rates, err := svc.GetRates(context.Background(), tenantID, shipping.RateRequest{})

	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, shipping.CourierBluedart, rates[0].CourierCode)
	assert.True(t, rates[0].IsEstimate())
	assert.Equal(t, shipping.CourierDelhivery, rates[1].CourierCode)
}

func TestCourierService_GetRates_FailedCarrierSkipped(t *testing.T) {
	accounts := new(mockAccountRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()

	accounts.On("FindEnabledForTenant", mock.Anything, tenantID).Return([]shipping.CourierAccount{
		*testAccount(tenantID, shipping.CourierDelhivery),
		*testAccount(tenantID, shipping.CourierXpressbees),
	}, nil)

	failing := &mockProvider{code: shipping.CourierDelhivery}
	failing.On("GetRates", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, shipping.Failure("token rejected"))

	working := &mockProvider{code: shipping.CourierXpressbees}
	working.On("GetRates", mock.Anything, mock.Anything, mock.Anything).Return([]shipping.CourierRate{
		{CourierCode: shipping.CourierXpressbees, TotalCharge: decimal.NewFromInt(80)},
	}, shipping.Ok())

	registry.On("Provider", shipping.CourierDelhivery).Return(failing, nil)
	registry.On("Provider", shipping.CourierXpressbees).Return(working, nil)

	svc := NewCourierService(accounts, new(mockShipmentRepository), registry, nil, zap.NewNop())
	rates, err := svc.GetRates(context.Background(), tenantID, shipping.RateRequest{})

	require.NoError(t, err)
	require.Len(t, rates, 1)
	assert.Equal(t, shipping.CourierXpressbees, rates[0].CourierCode)
}

func TestCourierService_GetRates_NoAccounts(t *testing.T) {
	accounts := new(mockAccountRepository)
	accounts.On("FindEnabledForTenant", mock.Anything, mock.Anything).
		Return([]shipping.CourierAccount{}, nil)

	svc := NewCourierService(accounts, new(mockShipmentRepository), new(mockRegistry), nil, zap.NewNop())
	_, err := svc.GetRates(context.Background(), uuid.New(), shipping.RateRequest{})

	assert.ErrorIs(t, err, shipping.ErrCourierNotConfigured)
}

func TestCourierService_CreateShipment(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()
	orderID := uuid.New()

	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything).
		Return(&shipping.ShipmentResponse{AWB: "AWB123", CourierName: "Delhivery"}, shipping.Ok())
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	shipments.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]shipping.Shipment{}, nil)
	shipments.On("Save", mock.Anything, mock.MatchedBy(func(s *shipping.Shipment) bool {
		return s.AWB == "AWB123" && s.Status == shipping.StatusCreated
	})).Return(nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	shipment, err := svc.CreateShipment(context.Background(), tenantID, &orderID, shipping.CourierDelhivery, shipping.ShipmentRequest{OrderReference: "SO-1001"})

	require.NoError(t, err)
	assert.Equal(t, "AWB123", shipment.AWB)
	shipments.AssertExpectations(t)
}

func TestCourierService_CreateShipment_DuplicateForOrder(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()
	orderID := uuid.New()

	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)
	registry.On("Provider", shipping.CourierDelhivery).
		Return(&mockProvider{code: shipping.CourierDelhivery}, nil)
	shipments.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]shipping.Shipment{
		{CourierCode: shipping.CourierDelhivery, AWB: "OLD", Status: shipping.StatusInTransit},
	}, nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	_, err := svc.CreateShipment(context.Background(), tenantID, &orderID, shipping.CourierDelhivery, shipping.ShipmentRequest{})

	assert.ErrorIs(t, err, shipping.ErrDuplicateShipment)
}

func TestCourierService_CreateShipment_CancelledDoesNotBlock(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()
	orderID := uuid.New()

	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("CreateShipment", mock.Anything, mock.Anything, mock.Anything).
		Return(&shipping.ShipmentResponse{AWB: "AWB456"}, shipping.Ok())
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	shipments.On("FindByOrder", mock.Anything, tenantID, orderID).Return([]shipping.Shipment{
		{CourierCode: shipping.CourierDelhivery, AWB: "OLD", Status: shipping.StatusCancelled},
	}, nil)
	shipments.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	shipment, err := svc.CreateShipment(context.Background(), tenantID, &orderID, shipping.CourierDelhivery, shipping.ShipmentRequest{})

	require.NoError(t, err)
	assert.Equal(t, "AWB456", shipment.AWB)
}

func TestCourierService_RefreshTracking_AppliesStatus(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()

	shipment := &shipping.Shipment{
		CourierCode: shipping.CourierDelhivery,
		AWB:         "AWB123",
		Status:      shipping.StatusInTransit,
	}
	shipment.TenantID = tenantID

	shipments.On("FindByAWB", mock.Anything, "AWB123").Return(shipment, nil)
	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("GetTracking", mock.Anything, mock.Anything, "AWB123").Return(&shipping.TrackingResponse{
		AWB:             "AWB123",
		Status:          shipping.StatusPtr(shipping.StatusDelivered),
		CurrentLocation: "Mumbai Hub",
	}, shipping.Ok())
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	shipments.On("Save", mock.Anything, mock.MatchedBy(func(s *shipping.Shipment) bool {
		return s.Status == shipping.StatusDelivered && s.DeliveredAt != nil
	})).Return(nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	updated, tracking, err := svc.RefreshTracking(context.Background(), "AWB123")

	require.NoError(t, err)
	assert.Equal(t, shipping.StatusDelivered, updated.Status)
	assert.Equal(t, "Mumbai Hub", updated.CurrentLocation)
	require.NotNil(t, tracking)
	shipments.AssertExpectations(t)
}

func TestCourierService_RefreshTracking_UnmappedStatusIsNoOp(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()

	shipment := &shipping.Shipment{
		CourierCode: shipping.CourierDelhivery,
		AWB:         "AWB123",
		Status:      shipping.StatusInTransit,
	}
	shipment.TenantID = tenantID

	shipments.On("FindByAWB", mock.Anything, "AWB123").Return(shipment, nil)
	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("GetTracking", mock.Anything, mock.Anything, "AWB123").Return(&shipping.TrackingResponse{
		AWB:    "AWB123",
		Status: nil, // carrier code did not map
	}, shipping.Ok())
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	updated, _, err := svc.RefreshTracking(context.Background(), "AWB123")

	require.NoError(t, err)
	assert.Equal(t, shipping.StatusInTransit, updated.Status)
	shipments.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCourierService_CancelShipment(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	tenantID := uuid.New()

	shipment := &shipping.Shipment{
		CourierCode: shipping.CourierXpressbees,
		AWB:         "XB001",
		Status:      shipping.StatusManifested,
	}
	shipment.TenantID = tenantID

	shipments.On("FindByAWB", mock.Anything, "XB001").Return(shipment, nil)
	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierXpressbees).
		Return(testAccount(tenantID, shipping.CourierXpressbees), nil)

	provider := &mockProvider{code: shipping.CourierXpressbees}
	provider.On("CancelShipment", mock.Anything, mock.Anything, "XB001").Return(shipping.Ok())
	registry.On("Provider", shipping.CourierXpressbees).Return(provider, nil)
	shipments.On("Save", mock.Anything, mock.Anything).Return(nil)

	svc := NewCourierService(accounts, shipments, registry, nil, zap.NewNop())
	updated, err := svc.CancelShipment(context.Background(), "XB001")

	require.NoError(t, err)
	assert.Equal(t, shipping.StatusCancelled, updated.Status)
}

func TestCourierService_ArchiveLabel(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	labels := new(mockLabelStore)
	tenantID := uuid.New()

	shipment := &shipping.Shipment{
		CourierCode: shipping.CourierDelhivery,
		AWB:         "AWB123",
	}
	shipment.TenantID = tenantID

	shipments.On("FindByAWB", mock.Anything, "AWB123").Return(shipment, nil)
	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("GetLabel", mock.Anything, mock.Anything, "AWB123").
		Return([]byte("%PDF-1.4 label"), shipping.Ok())
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	labels.On("Put", mock.Anything, "labels/DELHIVERY/AWB123.pdf", mock.Anything, "application/pdf").Return(nil)
	shipments.On("Save", mock.Anything, mock.MatchedBy(func(s *shipping.Shipment) bool {
		return s.LabelKey == "labels/DELHIVERY/AWB123.pdf"
	})).Return(nil)

	svc := NewCourierService(accounts, shipments, registry, labels, zap.NewNop())
	key, err := svc.ArchiveLabel(context.Background(), "AWB123")

	require.NoError(t, err)
	assert.Equal(t, "labels/DELHIVERY/AWB123.pdf", key)
	labels.AssertExpectations(t)
}

func TestCourierService_ArchiveLabel_AlreadyArchived(t *testing.T) {
	shipments := new(mockShipmentRepository)
	labels := new(mockLabelStore)

	shipment := &shipping.Shipment{
		CourierCode: shipping.CourierDelhivery,
		AWB:         "AWB123",
		LabelKey:    "labels/DELHIVERY/AWB123.pdf",
	}
	shipments.On("FindByAWB", mock.Anything, "AWB123").Return(shipment, nil)

	svc := NewCourierService(new(mockAccountRepository), shipments, new(mockRegistry), labels, zap.NewNop())
	key, err := svc.ArchiveLabel(context.Background(), "AWB123")

	require.NoError(t, err)
	assert.Equal(t, "labels/DELHIVERY/AWB123.pdf", key)
	labels.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCourierService_ArchiveLabel_NotAvailableYet(t *testing.T) {
	accounts := new(mockAccountRepository)
	shipments := new(mockShipmentRepository)
	registry := new(mockRegistry)
	labels := new(mockLabelStore)
	tenantID := uuid.New()

	shipment := &shipping.Shipment{CourierCode: shipping.CourierDelhivery, AWB: "AWB123"}
	shipment.TenantID = tenantID

	shipments.On("FindByAWB", mock.Anything, "AWB123").Return(shipment, nil)
	accounts.On("FindByTenantAndCourier", mock.Anything, tenantID, shipping.CourierDelhivery).
		Return(testAccount(tenantID, shipping.CourierDelhivery), nil)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("GetLabel", mock.Anything, mock.Anything, "AWB123").
		Return(nil, shipping.Empty("label not generated yet"))
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	svc := NewCourierService(accounts, shipments, registry, labels, zap.NewNop())
	_, err := svc.ArchiveLabel(context.Background(), "AWB123")

	assert.ErrorIs(t, err, shipping.ErrLabelNotAvailable)
}

func TestCourierService_LabelURL(t *testing.T) {
	shipments := new(mockShipmentRepository)
	labels := new(mockLabelStore)

	shipment := &shipping.Shipment{AWB: "AWB123", LabelKey: "labels/DELHIVERY/AWB123.pdf"}
	shipments.On("FindByAWB", mock.Anything, "AWB123").Return(shipment, nil)
	labels.On("DownloadURL", mock.Anything, "labels/DELHIVERY/AWB123.pdf", 15*time.Minute).
		Return("https://storage.example.com/signed", nil)

	svc := NewCourierService(new(mockAccountRepository), shipments, new(mockRegistry), labels, zap.NewNop())
	url, err := svc.LabelURL(context.Background(), "AWB123", 15*time.Minute)

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/signed", url)
}

func TestCourierService_ConfigureAccount_RejectedCredentials(t *testing.T) {
	accounts := new(mockAccountRepository)
	registry := new(mockRegistry)

	provider := &mockProvider{code: shipping.CourierDelhivery}
	provider.On("ValidateCredentials", mock.Anything, mock.Anything).
		Return(shipping.Failure("token rejected by carrier"))
	registry.On("Provider", shipping.CourierDelhivery).Return(provider, nil)

	svc := NewCourierService(accounts, new(mockShipmentRepository), registry, nil, zap.NewNop())
	_, err := svc.ConfigureAccount(context.Background(), uuid.New(), shipping.CourierDelhivery, "bad-token", "", nil)

	assert.ErrorIs(t, err, shipping.ErrMissingCredentials)
	accounts.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
