package persistence

import (
	"context"

	"gorm.io/gorm"

	appsync "github.com/ecommanager/backend/internal/application/sync"
	"github.com/ecommanager/backend/internal/domain/catalog"
	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/inventory"
	"github.com/ecommanager/backend/internal/domain/order"
)

// GormSyncStore implements the sync engine's Store port on GORM
type GormSyncStore struct {
	db *gorm.DB
}

// NewGormSyncStore creates a new GormSyncStore
func NewGormSyncStore(db *gorm.DB) *GormSyncStore {
	return &GormSyncStore{db: db}
}

// Channels returns the non-transactional channel repository
func (s *GormSyncStore) Channels() channel.Repository {
	return NewGormChannelRepository(s.db)
}

// Begin opens a transaction-scoped unit of work
func (s *GormSyncStore) Begin(ctx context.Context) (appsync.UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormUnitOfWork{tx: tx}, nil
}

// gormUnitOfWork binds the entity repositories to one transaction
type gormUnitOfWork struct {
	tx *gorm.DB
}

func (u *gormUnitOfWork) Orders() order.Repository {
	return NewGormOrderRepository(u.tx)
}

func (u *gormUnitOfWork) Products() catalog.ProductRepository {
	return NewGormProductRepository(u.tx)
}

func (u *gormUnitOfWork) Variants() catalog.VariantRepository {
	return NewGormVariantRepository(u.tx)
}

func (u *gormUnitOfWork) Items() inventory.ItemRepository {
	return NewGormInventoryItemRepository(u.tx)
}

func (u *gormUnitOfWork) Movements() inventory.MovementRepository {
	return NewGormMovementRepository(u.tx)
}

func (u *gormUnitOfWork) Commit() error {
	return u.tx.Commit().Error
}

func (u *gormUnitOfWork) Rollback() error {
	return u.tx.Rollback().Error
}

// Ensure GormSyncStore implements the Store port
var _ appsync.Store = (*GormSyncStore)(nil)
