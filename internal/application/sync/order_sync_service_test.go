package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/order"
)

func extOrder(id, number string) channel.ExternalOrder {
	return channel.ExternalOrder{
		ExternalID:      id,
		OrderNumber:     number,
		FinancialStatus: "paid",
		Currency:        "INR",
		TotalAmount:     decimal.NewFromInt(999),
		CustomerName:    "Asha Rao",
		PlacedAt:        time.Now().Add(-time.Hour),
		Items: []channel.ExternalOrderItem{
			{ExternalID: id + "-1", SKU: "TSHIRT-M", Title: "T-Shirt M", Quantity: 1, UnitPrice: decimal.NewFromInt(999)},
		},
	}
}

func newOrderSyncFixture(t *testing.T) (*OrderSyncService, *memStore, *mockStorefront, *fakeLeaseManager, uuid.UUID) {
	t.Helper()
	store := newMemStore()
	ch := connectedChannel(uuid.New())
	store.channels[ch.ID] = ch

	storefront := new(mockStorefront)
	leases := newFakeLeaseManager()
	svc := NewOrderSyncService(store, NewStorefrontRegistry(storefront), leases, DefaultCaps(), zap.NewNop())
	return svc, store, storefront, leases, ch.ID
}

func TestOrderSync_ImportsNewOrders(t *testing.T) {
	svc, store, storefront, leases, channelID := newOrderSyncFixture(t)

	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{extOrder("9001", "#1001"), extOrder("9002", "#1002")}, channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)

	assert.Equal(t, channel.SyncCompleted, result.Status)
	assert.Equal(t, 2, result.OrdersImported)
	assert.Len(t, store.orders, 2)
	assert.Equal(t, order.PaymentPaid, store.orders[0].PaymentStatus)
	assert.Equal(t, 1, store.commits)
	assert.Equal(t, 1, leases.releases)
	assert.NotNil(t, store.channels[channelID].LastSyncAt)
}

func TestOrderSync_ReimportIsIdempotent(t *testing.T) {
	svc, store, storefront, _, channelID := newOrderSyncFixture(t)

	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{extOrder("9001", "#1001")}, channel.PageInfo{}, nil)

	first := svc.SyncOrders(context.Background(), channelID, nil, nil)
	second := svc.SyncOrders(context.Background(), channelID, nil, nil)

	assert.Equal(t, 1, first.OrdersImported)
	assert.Equal(t, 0, second.OrdersImported)
	assert.Equal(t, 1, second.OrdersUpdated)
	assert.Equal(t, 0, second.OrdersSkipped)
	assert.Len(t, store.orders, 1)
}

func TestOrderSync_ReimportAppliesStatusOnly(t *testing.T) {
	svc, store, storefront, _, channelID := newOrderSyncFixture(t)

	original := extOrder("9001", "#1001")
	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{original}, channel.PageInfo{}, nil).Once()
	svc.SyncOrders(context.Background(), channelID, nil, nil)

	// upstream fulfills the order and edits the customer name; only the
	// status change lands locally
	changed := original
	changed.FulfillmentStatus = "fulfilled"
	changed.CustomerName = "Someone Else"
	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{changed}, channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)

	assert.Equal(t, 1, result.OrdersUpdated)
	require.Len(t, store.orders, 1)
	assert.Equal(t, order.OrderStatusFulfilled, store.orders[0].Status)
	assert.Equal(t, "Asha Rao", store.orders[0].CustomerName)
}

func TestOrderSync_ItemFailureIsIsolated(t *testing.T) {
	svc, store, storefront, _, channelID := newOrderSyncFixture(t)

	bad := extOrder("", "#1001") // no external ID
	good := extOrder("9002", "#1002")
	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{bad, good}, channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)

	assert.Equal(t, channel.SyncCompletedWithErrors, result.Status)
	assert.Equal(t, 1, result.OrdersImported)
	assert.Equal(t, 1, result.OrdersFailed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "#1001")
	assert.Len(t, store.orders, 1)
}

func TestOrderSync_FailsFastWhenNotConnected(t *testing.T) {
	store := newMemStore()
	tenantID := uuid.New()
	ch, _ := channel.NewSalesChannel(tenantID, "Unconnected", channel.ProviderShopify)
	store.channels[ch.ID] = ch

	storefront := new(mockStorefront)
	svc := NewOrderSyncService(store, NewStorefrontRegistry(storefront), newFakeLeaseManager(), DefaultCaps(), zap.NewNop())

	result := svc.SyncOrders(context.Background(), ch.ID, nil, nil)

	assert.Equal(t, channel.SyncFailed, result.Status)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], channel.ErrChannelNotConnected.Error())
	storefront.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderSync_LeaseHeldFails(t *testing.T) {
	svc, _, storefront, leases, channelID := newOrderSyncFixture(t)

	_, err := leases.Acquire(context.Background(), channelID, time.Minute)
	require.NoError(t, err)

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)

	assert.Equal(t, channel.SyncFailed, result.Status)
	assert.Contains(t, result.Errors[0], channel.ErrSyncAlreadyRunning.Error())
	storefront.AssertNotCalled(t, "ListOrders", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderSync_LeaseReleasedAfterProviderFailure(t *testing.T) {
	svc, _, storefront, leases, channelID := newOrderSyncFixture(t)

	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, channel.PageInfo{}, errors.New("429 rate limited")).Once()

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)
	assert.Equal(t, channel.SyncFailed, result.Status)
	assert.Equal(t, 1, leases.releases)

	// a fresh run can acquire again
	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{}, channel.PageInfo{}, nil).Once()
	result = svc.SyncOrders(context.Background(), channelID, nil, nil)
	assert.Equal(t, channel.SyncCompleted, result.Status)
}

func TestOrderSync_FollowsPaginationCursor(t *testing.T) {
	svc, store, storefront, _, channelID := newOrderSyncFixture(t)

	firstPage := mock.MatchedBy(func(req channel.PageRequest) bool { return req.PageToken == "" })
	secondPage := mock.MatchedBy(func(req channel.PageRequest) bool { return req.PageToken == "cursor-2" })

	storefront.On("ListOrders", mock.Anything, mock.Anything, firstPage).
		Return([]channel.ExternalOrder{extOrder("9001", "#1001")},
			channel.PageInfo{NextPageToken: "cursor-2", HasMore: true}, nil).Once()
	storefront.On("ListOrders", mock.Anything, mock.Anything, secondPage).
		Return([]channel.ExternalOrder{extOrder("9002", "#1002")}, channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)

	assert.Equal(t, 2, result.OrdersImported)
	assert.Equal(t, 2, store.commits) // one commit per page
	storefront.AssertExpectations(t)
}

func TestOrderSync_HardCapStopsPagination(t *testing.T) {
	store := newMemStore()
	ch := connectedChannel(uuid.New())
	store.channels[ch.ID] = ch

	storefront := new(mockStorefront)
	caps := Caps{OrderPageSize: 2, MaxItemsPerRun: 2}
	svc := NewOrderSyncService(store, NewStorefrontRegistry(storefront), newFakeLeaseManager(), caps, zap.NewNop())

	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{extOrder("9001", "#1001"), extOrder("9002", "#1002")},
			channel.PageInfo{NextPageToken: "cursor-2", HasMore: true}, nil).Once()

	result := svc.SyncOrders(context.Background(), ch.ID, nil, nil)

	assert.Equal(t, 2, result.OrdersImported)
	// the second page is never fetched
	storefront.AssertNumberOfCalls(t, "ListOrders", 1)
}

func TestOrderSync_PolicyLimitTightensCap(t *testing.T) {
	store := newMemStore()
	ch := connectedChannel(uuid.New())
	one := 1
	ch.Policy.OrderSyncLimit = &one
	store.channels[ch.ID] = ch

	storefront := new(mockStorefront)
	svc := NewOrderSyncService(store, NewStorefrontRegistry(storefront), newFakeLeaseManager(), DefaultCaps(), zap.NewNop())

	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{extOrder("9001", "#1001"), extOrder("9002", "#1002")},
			channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), ch.ID, nil, nil)

	assert.Equal(t, 1, result.OrdersImported)
	assert.Len(t, store.orders, 1)
}

func TestOrderSync_LookbackWindowFromPolicy(t *testing.T) {
	store := newMemStore()
	ch := connectedChannel(uuid.New())
	days := 7
	ch.Policy.OrderLookbackDays = &days
	store.channels[ch.ID] = ch

	storefront := new(mockStorefront)
	svc := NewOrderSyncService(store, NewStorefrontRegistry(storefront), newFakeLeaseManager(), DefaultCaps(), zap.NewNop())

	windowed := mock.MatchedBy(func(req channel.PageRequest) bool {
		if req.UpdatedAfter == nil {
			return false
		}
		expected := time.Now().AddDate(0, 0, -7)
		return req.UpdatedAfter.Sub(expected).Abs() < time.Minute
	})
	storefront.On("ListOrders", mock.Anything, mock.Anything, windowed).
		Return([]channel.ExternalOrder{}, channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), ch.ID, nil, nil)

	assert.Equal(t, channel.SyncCompleted, result.Status)
	storefront.AssertExpectations(t)
}

func TestOrderSync_ExplicitWindowOverridesPolicy(t *testing.T) {
	svc, _, storefront, _, channelID := newOrderSyncFixture(t)

	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	exact := mock.MatchedBy(func(req channel.PageRequest) bool {
		return req.UpdatedAfter != nil && req.UpdatedAfter.Equal(from) &&
			req.UpdatedBefore != nil && req.UpdatedBefore.Equal(to)
	})
	storefront.On("ListOrders", mock.Anything, mock.Anything, exact).
		Return([]channel.ExternalOrder{}, channel.PageInfo{}, nil).Once()

	svc.SyncOrders(context.Background(), channelID, &from, &to)

	storefront.AssertExpectations(t)
}

func TestOrderSync_CommitFailureDropsPageProgress(t *testing.T) {
	svc, store, storefront, _, channelID := newOrderSyncFixture(t)
	store.commitErr = errors.New("deadlock detected")

	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{extOrder("9001", "#1001"), extOrder("9002", "#1002")},
			channel.PageInfo{}, nil).Once()

	result := svc.SyncOrders(context.Background(), channelID, nil, nil)

	// the rolled-back page must not be reported as persisted progress
	assert.Equal(t, channel.SyncCompletedWithErrors, result.Status)
	assert.Equal(t, 0, result.OrdersImported)
	assert.Equal(t, 0, result.OrdersUpdated)
	assert.Equal(t, 2, result.OrdersFailed)
	assert.Equal(t, 0, store.commits)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "deadlock detected")
}

func TestOrderSync_CancelledOrderImportsCancelled(t *testing.T) {
	svc, store, storefront, _, channelID := newOrderSyncFixture(t)

	cancelled := extOrder("9001", "#1001")
	cancelled.Cancelled = true
	storefront.On("ListOrders", mock.Anything, mock.Anything, mock.Anything).
		Return([]channel.ExternalOrder{cancelled}, channel.PageInfo{}, nil).Once()

	svc.SyncOrders(context.Background(), channelID, nil, nil)

	require.Len(t, store.orders, 1)
	assert.Equal(t, order.OrderStatusCancelled, store.orders[0].Status)
}
