package channel

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appsync "github.com/ecommanager/backend/internal/application/sync"
	"github.com/ecommanager/backend/internal/domain/channel"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockChannelRepository struct {
	mock.Mock
}

func (m *mockChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.SalesChannel), args.Error(1)
}

func (m *mockChannelRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) ([]channel.SalesChannel, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SalesChannel), args.Error(1)
}

func (m *mockChannelRepository) FindAutoSyncEnabled(ctx context.Context) ([]channel.SalesChannel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.SalesChannel), args.Error(1)
}

func (m *mockChannelRepository) Save(ctx context.Context, ch *channel.SalesChannel) error {
	args := m.Called(ctx, ch)
	return args.Error(0)
}

type mockStorefront struct {
	mock.Mock
}

func (m *mockStorefront) Provider() channel.ProviderCode { return channel.ProviderShopify }

func (m *mockStorefront) ListOrders(ctx context.Context, conn channel.Connection, req channel.PageRequest) ([]channel.ExternalOrder, channel.PageInfo, error) {
	args := m.Called(ctx, conn, req)
	return nil, channel.PageInfo{}, args.Error(2)
}

func (m *mockStorefront) ListProducts(ctx context.Context, conn channel.Connection, req channel.PageRequest) ([]channel.ExternalProduct, channel.PageInfo, error) {
	args := m.Called(ctx, conn, req)
	return nil, channel.PageInfo{}, args.Error(2)
}

func (m *mockStorefront) ListLocations(ctx context.Context, conn channel.Connection) ([]channel.ExternalLocation, error) {
	args := m.Called(ctx, conn)
	return nil, args.Error(1)
}

func (m *mockStorefront) ListInventoryLevels(ctx context.Context, conn channel.Connection, locationID string, ids []string) ([]channel.ExternalInventoryLevel, error) {
	args := m.Called(ctx, conn, locationID, ids)
	return nil, args.Error(1)
}

func (m *mockStorefront) CreateOrder(ctx context.Context, conn channel.Connection, draft channel.OrderDraft) (*channel.ExternalOrderRef, error) {
	args := m.Called(ctx, conn, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*channel.ExternalOrderRef), args.Error(1)
}

func (m *mockStorefront) UpdateOrder(ctx context.Context, conn channel.Connection, externalOrderID string, update channel.OrderUpdate) error {
	args := m.Called(ctx, conn, externalOrderID, update)
	return args.Error(0)
}

func (m *mockStorefront) DeleteWebhook(ctx context.Context, conn channel.Connection, webhookID string) error {
	args := m.Called(ctx, conn, webhookID)
	return args.Error(0)
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func newServiceFixture() (*ChannelService, *mockChannelRepository, *mockStorefront) {
	repo := new(mockChannelRepository)
	storefront := new(mockStorefront)
	svc := NewChannelService(repo, appsync.NewStorefrontRegistry(storefront), zap.NewNop())
	return svc, repo, storefront
}

func TestChannelService_CreateChannel(t *testing.T) {
	svc, repo, _ := newServiceFixture()
	repo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

	ch, err := svc.CreateChannel(context.Background(), uuid.New(), "Main Store", channel.ProviderShopify)

	require.NoError(t, err)
	assert.Equal(t, channel.ConnectionNone, ch.Status)
	repo.AssertExpectations(t)
}

func TestChannelService_CreateChannel_UnknownProvider(t *testing.T) {
	svc, repo, _ := newServiceFixture()

	_, err := svc.CreateChannel(context.Background(), uuid.New(), "Main Store", channel.ProviderCode("WOOCOMMERCE"))

	assert.ErrorIs(t, err, channel.ErrProviderNotSupported)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChannelService_Connect(t *testing.T) {
	svc, repo, _ := newServiceFixture()
	ch, err := channel.NewSalesChannel(uuid.New(), "Main Store", channel.ProviderShopify)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, ch.ID).Return(ch, nil).Once()
	repo.On("Save", mock.Anything, ch).Return(nil).Once()

	got, err := svc.Connect(context.Background(), ch.ID, "main.myshopify.com", "shpat_token")

	require.NoError(t, err)
	assert.Equal(t, channel.ConnectionConnected, got.Status)
	assert.Equal(t, "main.myshopify.com", got.StoreURL)
}

func TestChannelService_Connect_MissingToken(t *testing.T) {
	svc, repo, _ := newServiceFixture()
	ch, err := channel.NewSalesChannel(uuid.New(), "Main Store", channel.ProviderShopify)
	require.NoError(t, err)
	repo.On("FindByID", mock.Anything, ch.ID).Return(ch, nil).Once()

	_, err = svc.Connect(context.Background(), ch.ID, "main.myshopify.com", "")

	assert.ErrorIs(t, err, channel.ErrChannelNoCredentials)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestChannelService_Disconnect_RemovesWebhooks(t *testing.T) {
	svc, repo, storefront := newServiceFixture()
	ch, err := channel.NewSalesChannel(uuid.New(), "Main Store", channel.ProviderShopify)
	require.NoError(t, err)
	require.NoError(t, ch.SetCredentials("main.myshopify.com"))
	require.NoError(t, ch.Connect("shpat_token"))
	ch.RegisterWebhook("wh-1")
	ch.RegisterWebhook("wh-2")

	repo.On("FindByID", mock.Anything, ch.ID).Return(ch, nil).Once()
	repo.On("Save", mock.Anything, ch).Return(nil).Once()
	storefront.On("DeleteWebhook", mock.Anything, mock.Anything, "wh-1").Return(nil).Once()
	storefront.On("DeleteWebhook", mock.Anything, mock.Anything, "wh-2").Return(errors.New("404")).Once()

	got, err := svc.Disconnect(context.Background(), ch.ID)

	require.NoError(t, err, "webhook removal failures never block disconnect")
	assert.Equal(t, channel.ConnectionDisconnected, got.Status)
	assert.Empty(t, got.AccessToken)
	assert.Empty(t, got.WebhookIDs)
	storefront.AssertExpectations(t)
}

func TestChannelService_UpdatePolicy(t *testing.T) {
	svc, repo, _ := newServiceFixture()
	ch, err := channel.NewSalesChannel(uuid.New(), "Main Store", channel.ProviderShopify)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, ch.ID).Return(ch, nil).Once()
	repo.On("Save", mock.Anything, ch).Return(nil).Once()

	lookback := 30
	got, err := svc.UpdatePolicy(context.Background(), ch.ID, channel.SyncPolicy{
		AutoSyncOrders:    true,
		OrderLookbackDays: &lookback,
	})

	require.NoError(t, err)
	assert.True(t, got.Policy.AutoSyncOrders)
	require.NotNil(t, got.Policy.OrderLookbackDays)
	assert.Equal(t, 30, *got.Policy.OrderLookbackDays)
}
