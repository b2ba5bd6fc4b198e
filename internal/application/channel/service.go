// Package channel manages the sales channel lifecycle: creation,
// credential exchange, disconnection and sync policy updates.
package channel

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appsync "github.com/ecommanager/backend/internal/application/sync"
	"github.com/ecommanager/backend/internal/domain/channel"
)

// ChannelService orchestrates sales channel lifecycle operations
type ChannelService struct {
	channels    channel.Repository
	storefronts *appsync.StorefrontRegistry
	logger      *zap.Logger
}

// NewChannelService creates a new ChannelService
func NewChannelService(channels channel.Repository, storefronts *appsync.StorefrontRegistry, logger *zap.Logger) *ChannelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChannelService{
		channels:    channels,
		storefronts: storefronts,
		logger:      logger,
	}
}

// CreateChannel registers a new unconnected channel for a tenant
func (s *ChannelService) CreateChannel(ctx context.Context, tenantID uuid.UUID, name string, provider channel.ProviderCode) (*channel.SalesChannel, error) {
	if _, err := s.storefronts.For(provider); err != nil {
		return nil, err
	}
	ch, err := channel.NewSalesChannel(tenantID, name, provider)
	if err != nil {
		return nil, err
	}
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// ListChannels returns every channel of a tenant
func (s *ChannelService) ListChannels(ctx context.Context, tenantID uuid.UUID) ([]channel.SalesChannel, error) {
	return s.channels.FindByTenant(ctx, tenantID)
}

// GetChannel returns one channel by ID
func (s *ChannelService) GetChannel(ctx context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	return s.channels.FindByID(ctx, id)
}

// Connect stores the storefront credentials and marks the channel connected
func (s *ChannelService) Connect(ctx context.Context, id uuid.UUID, storeURL, accessToken string) (*channel.SalesChannel, error) {
	ch, err := s.channels.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ch.SetCredentials(storeURL); err != nil {
		return nil, err
	}
	if err := ch.Connect(accessToken); err != nil {
		return nil, err
	}
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	s.logger.Info("channel connected",
		zap.String("channel_id", ch.ID.String()),
		zap.String("store_url", ch.StoreURL))
	return ch, nil
}

// Disconnect severs the storefront connection. Provider-side webhook
// registrations are removed best-effort; a webhook that cannot be removed is
// logged and the disconnect proceeds.
func (s *ChannelService) Disconnect(ctx context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	ch, err := s.channels.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ch.IsConnected() && len(ch.WebhookIDs) > 0 {
		storefront, err := s.storefronts.For(ch.ProviderCode)
		if err == nil {
			conn := ch.Connection()
			for _, webhookID := range ch.WebhookIDs {
				if err := storefront.DeleteWebhook(ctx, conn, webhookID); err != nil {
					s.logger.Warn("failed to remove channel webhook",
						zap.String("channel_id", ch.ID.String()),
						zap.String("webhook_id", webhookID),
						zap.Error(err))
				}
			}
		}
	}

	ch.Disconnect()
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	s.logger.Info("channel disconnected", zap.String("channel_id", ch.ID.String()))
	return ch, nil
}

// UpdatePolicy replaces the channel's sync policy
func (s *ChannelService) UpdatePolicy(ctx context.Context, id uuid.UUID, policy channel.SyncPolicy) (*channel.SalesChannel, error) {
	ch, err := s.channels.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ch.Policy = policy
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}
