package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists sales orders
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SalesOrder, error)
	// FindByChannelAndExternalID looks an order up by the sync engine's
	// composite upsert key
	FindByChannelAndExternalID(ctx context.Context, tenantID, channelID uuid.UUID, externalOrderID string) (*SalesOrder, error)
	Save(ctx context.Context, o *SalesOrder) error
}
