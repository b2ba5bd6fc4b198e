package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/order"
)

var (
	// ErrOrderNotPushable indicates the order has no storefront counterpart
	// to update
	ErrOrderNotPushable = errors.New("sync: order has no external counterpart")
	// ErrProviderRejected wraps a storefront provider failure, as opposed to
	// the configuration failures reported by the channel guards
	ErrProviderRejected = errors.New("sync: provider rejected the push")
)

// OrderPushService pushes local orders out to a channel's storefront.
// Configuration failures (unconnected channel, missing credentials) surface
// as the channel sentinel errors before any provider call; provider
// failures are wrapped in ErrProviderRejected.
type OrderPushService struct {
	store       Store
	storefronts *StorefrontRegistry
	logger      *zap.Logger
}

// NewOrderPushService creates a new OrderPushService
func NewOrderPushService(store Store, storefronts *StorefrontRegistry, logger *zap.Logger) *OrderPushService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPushService{
		store:       store,
		storefronts: storefronts,
		logger:      logger,
	}
}

// PushOrder creates a locally born order on the storefront and records the
// provider-assigned identity. Re-pushing an already pushed order returns the
// recorded identity without another provider call.
func (s *OrderPushService) PushOrder(ctx context.Context, channelID, orderID uuid.UUID) (*channel.ExternalOrderRef, error) {
	ch, storefront, err := s.guard(ctx, channelID)
	if err != nil {
		return nil, err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}
	o, err := uow.Orders().FindByID(ctx, orderID)
	if err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if o.PushedExternalID != "" {
		_ = uow.Rollback()
		return &channel.ExternalOrderRef{ExternalID: o.PushedExternalID, OrderNumber: o.OrderNumber}, nil
	}

	ref, err := storefront.CreateOrder(ctx, ch.Connection(), buildDraft(o))
	if err != nil {
		_ = uow.Rollback()
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	o.PushedExternalID = ref.ExternalID
	if err := uow.Orders().Save(ctx, o); err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		_ = uow.Rollback()
		return nil, err
	}

	s.logger.Info("order pushed to channel",
		zap.String("channel_id", channelID.String()),
		zap.String("order_number", o.OrderNumber),
		zap.String("external_id", ref.ExternalID))
	return ref, nil
}

// PushOrderUpdate sends the locally edited contact fields, note and
// addresses to the storefront. Line items never change after creation;
// providers do not honor that.
func (s *OrderPushService) PushOrderUpdate(ctx context.Context, channelID, orderID uuid.UUID) error {
	ch, storefront, err := s.guard(ctx, channelID)
	if err != nil {
		return err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return err
	}
	o, err := uow.Orders().FindByID(ctx, orderID)
	_ = uow.Rollback() // read-only use of the unit of work
	if err != nil {
		return err
	}

	externalID := o.ExternalOrderID
	if externalID == "" {
		externalID = o.PushedExternalID
	}
	if externalID == "" {
		return ErrOrderNotPushable
	}

	if err := storefront.UpdateOrder(ctx, ch.Connection(), externalID, buildUpdate(o)); err != nil {
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	return nil
}

func (s *OrderPushService) guard(ctx context.Context, channelID uuid.UUID) (*channel.SalesChannel, channel.Storefront, error) {
	ch, err := s.store.Channels().FindByID(ctx, channelID)
	if err != nil {
		return nil, nil, err
	}
	if err := ch.CanSync(); err != nil {
		return nil, nil, err
	}
	storefront, err := s.storefronts.For(ch.ProviderCode)
	if err != nil {
		return nil, nil, err
	}
	return ch, storefront, nil
}

func buildDraft(o *order.SalesOrder) channel.OrderDraft {
	draft := channel.OrderDraft{
		OrderNumber:     o.OrderNumber,
		Currency:        o.Currency,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		ShippingAddress: externalAddress(o.ShippingAddress),
		BillingAddress:  externalAddress(o.BillingAddress),
		Note:            o.Note,
		ShippingAmount:  o.ShippingAmount,
		TaxAmount:       o.TaxAmount,
	}
	for _, item := range o.Items {
		draft.Items = append(draft.Items, channel.ExternalOrderItem{
			SKU:           item.SKU,
			Title:         item.Title,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalDiscount: item.DiscountAmount,
		})
	}
	return draft
}

// buildUpdate maps only the fields storefront providers honor after
// creation
func buildUpdate(o *order.SalesOrder) channel.OrderUpdate {
	shipping := externalAddress(o.ShippingAddress)
	billing := externalAddress(o.BillingAddress)
	return channel.OrderUpdate{
		CustomerEmail:   &o.CustomerEmail,
		CustomerPhone:   &o.CustomerPhone,
		Note:            &o.Note,
		ShippingAddress: &shipping,
		BillingAddress:  &billing,
	}
}

func externalAddress(a order.Address) channel.ExternalAddress {
	return channel.ExternalAddress{
		Name:    a.Name,
		Phone:   a.Phone,
		Line1:   a.Line1,
		Line2:   a.Line2,
		City:    a.City,
		State:   a.State,
		Zip:     a.Zip,
		Country: a.Country,
	}
}
