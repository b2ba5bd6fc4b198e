package sync

import (
	"context"

	"github.com/ecommanager/backend/internal/domain/catalog"
	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/inventory"
	"github.com/ecommanager/backend/internal/domain/order"
)

// Store gives the sync engine access to persistence. Channel reads and
// writes run outside any transaction; entity writes run inside per-page
// units of work.
type Store interface {
	// Channels returns the non-transactional channel repository
	Channels() channel.Repository

	// Begin opens a unit of work. The engine commits one per processed
	// page so a failure can never take completed pages down with it.
	Begin(ctx context.Context) (UnitOfWork, error)
}

// UnitOfWork bundles the repositories of one transaction. Exactly one of
// Commit or Rollback terminates it.
type UnitOfWork interface {
	Orders() order.Repository
	Products() catalog.ProductRepository
	Variants() catalog.VariantRepository
	Items() inventory.ItemRepository
	Movements() inventory.MovementRepository

	Commit() error
	Rollback() error
}
