package sync

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ecommanager/backend/internal/domain/catalog"
	"github.com/ecommanager/backend/internal/domain/channel"
	"github.com/ecommanager/backend/internal/domain/inventory"
	"github.com/ecommanager/backend/internal/domain/order"
	"github.com/ecommanager/backend/internal/domain/shared"
)

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

// memStore is an in-memory Store. All units of work share the same backing
// maps; commits is the number of completed page transactions.
type memStore struct {
	channels  map[uuid.UUID]*channel.SalesChannel
	orders    []*order.SalesOrder
	products  []*catalog.Product
	variants  []*catalog.ProductVariant
	items     []*inventory.InventoryItem
	movements []*inventory.StockMovement
	commits   int
	beginErr  error
	saveErr   error
	commitErr error
}

func newMemStore() *memStore {
	return &memStore{channels: make(map[uuid.UUID]*channel.SalesChannel)}
}

func (s *memStore) Channels() channel.Repository { return &memChannelRepo{store: s} }

func (s *memStore) Begin(_ context.Context) (UnitOfWork, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return &memUnitOfWork{store: s}, nil
}

type memChannelRepo struct{ store *memStore }

func (r *memChannelRepo) FindByID(_ context.Context, id uuid.UUID) (*channel.SalesChannel, error) {
	ch, ok := r.store.channels[id]
	if !ok {
		return nil, channel.ErrChannelNotFound
	}
	return ch, nil
}

func (r *memChannelRepo) FindByTenant(_ context.Context, tenantID uuid.UUID) ([]channel.SalesChannel, error) {
	var out []channel.SalesChannel
	for _, ch := range r.store.channels {
		if ch.TenantID == tenantID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (r *memChannelRepo) FindAutoSyncEnabled(_ context.Context) ([]channel.SalesChannel, error) {
	var out []channel.SalesChannel
	for _, ch := range r.store.channels {
		p := ch.Policy
		if ch.Status == channel.ConnectionConnected && (p.AutoSyncOrders || p.AutoSyncProducts || p.AutoSyncInventory) {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (r *memChannelRepo) Save(_ context.Context, ch *channel.SalesChannel) error {
	r.store.channels[ch.ID] = ch
	return nil
}

type memUnitOfWork struct{ store *memStore }

func (u *memUnitOfWork) Orders() order.Repository             { return &memOrderRepo{store: u.store} }
func (u *memUnitOfWork) Products() catalog.ProductRepository  { return &memProductRepo{store: u.store} }
func (u *memUnitOfWork) Variants() catalog.VariantRepository  { return &memVariantRepo{store: u.store} }
func (u *memUnitOfWork) Items() inventory.ItemRepository      { return &memItemRepo{store: u.store} }
func (u *memUnitOfWork) Movements() inventory.MovementRepository {
	return &memMovementRepo{store: u.store}
}

// Commit fails once when commitErr is set, so later pages can still succeed
func (u *memUnitOfWork) Commit() error {
	if u.store.commitErr != nil {
		err := u.store.commitErr
		u.store.commitErr = nil
		return err
	}
	u.store.commits++
	return nil
}

func (u *memUnitOfWork) Rollback() error { return nil }

type memOrderRepo struct{ store *memStore }

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.SalesOrder, error) {
	for _, o := range r.store.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (r *memOrderRepo) FindByChannelAndExternalID(_ context.Context, tenantID, channelID uuid.UUID, externalOrderID string) (*order.SalesOrder, error) {
	for _, o := range r.store.orders {
		if o.TenantID == tenantID && o.ChannelID != nil && *o.ChannelID == channelID && o.ExternalOrderID == externalOrderID {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) Save(_ context.Context, o *order.SalesOrder) error {
	if r.store.saveErr != nil {
		return r.store.saveErr
	}
	for i, existing := range r.store.orders {
		if existing.ID == o.ID {
			r.store.orders[i] = o
			return nil
		}
	}
	r.store.orders = append(r.store.orders, o)
	return nil
}

type memProductRepo struct{ store *memStore }

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	for _, p := range r.store.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindBySKUs(_ context.Context, tenantID uuid.UUID, skus []string, includeDeleted bool) ([]catalog.Product, error) {
	wanted := make(map[string]bool, len(skus))
	for _, sku := range skus {
		wanted[sku] = true
	}
	var out []catalog.Product
	for _, p := range r.store.products {
		if p.TenantID != tenantID || !wanted[p.SKU] {
			continue
		}
		if p.IsDeleted() && !includeDeleted {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) FindByChannel(_ context.Context, tenantID, channelID uuid.UUID) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range r.store.products {
		if p.TenantID == tenantID && p.ChannelID != nil && *p.ChannelID == channelID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	if r.store.saveErr != nil {
		return r.store.saveErr
	}
	for i, existing := range r.store.products {
		if existing.ID == p.ID {
			r.store.products[i] = p
			return nil
		}
	}
	r.store.products = append(r.store.products, p)
	return nil
}

type memVariantRepo struct{ store *memStore }

func (r *memVariantRepo) FindBySKUs(_ context.Context, tenantID uuid.UUID, skus []string, includeDeleted bool) ([]catalog.ProductVariant, error) {
	wanted := make(map[string]bool, len(skus))
	for _, sku := range skus {
		wanted[sku] = true
	}
	var out []catalog.ProductVariant
	for _, v := range r.store.variants {
		if v.TenantID != tenantID || !wanted[v.SKU] {
			continue
		}
		if v.IsDeleted() && !includeDeleted {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

func (r *memVariantRepo) FindByProduct(_ context.Context, tenantID, productID uuid.UUID) ([]catalog.ProductVariant, error) {
	var out []catalog.ProductVariant
	for _, v := range r.store.variants {
		if v.TenantID == tenantID && v.ProductID == productID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (r *memVariantRepo) Save(_ context.Context, v *catalog.ProductVariant) error {
	for i, existing := range r.store.variants {
		if existing.ID == v.ID {
			r.store.variants[i] = v
			return nil
		}
	}
	r.store.variants = append(r.store.variants, v)
	return nil
}

type memItemRepo struct{ store *memStore }

func (r *memItemRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string) (*inventory.InventoryItem, error) {
	for _, item := range r.store.items {
		if item.TenantID == tenantID && item.SKU == sku {
			return item, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memItemRepo) FindBySKUs(_ context.Context, tenantID uuid.UUID, skus []string) ([]inventory.InventoryItem, error) {
	wanted := make(map[string]bool, len(skus))
	for _, sku := range skus {
		wanted[sku] = true
	}
	var out []inventory.InventoryItem
	for _, item := range r.store.items {
		if item.TenantID == tenantID && wanted[item.SKU] {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) FindAllForTenant(_ context.Context, tenantID uuid.UUID) ([]inventory.InventoryItem, error) {
	var out []inventory.InventoryItem
	for _, item := range r.store.items {
		if item.TenantID == tenantID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *memItemRepo) Save(_ context.Context, item *inventory.InventoryItem) error {
	for i, existing := range r.store.items {
		if existing.ID == item.ID {
			r.store.items[i] = item
			return nil
		}
	}
	r.store.items = append(r.store.items, item)
	return nil
}

type memMovementRepo struct{ store *memStore }

func (r *memMovementRepo) Append(_ context.Context, m *inventory.StockMovement) error {
	r.store.movements = append(r.store.movements, m)
	return nil
}

func (r *memMovementRepo) FindBySKU(_ context.Context, tenantID uuid.UUID, sku string, limit int) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.TenantID == tenantID && m.SKU == sku {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memMovementRepo) FindBySyncRun(_ context.Context, tenantID, syncRunID uuid.UUID) ([]inventory.StockMovement, error) {
	var out []inventory.StockMovement
	for _, m := range r.store.movements {
		if m.TenantID == tenantID && m.SyncRunID == syncRunID {
			out = append(out, *m)
		}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Lease fake
// ---------------------------------------------------------------------------

type fakeLeaseManager struct {
	held     map[uuid.UUID]bool
	releases int
}

func newFakeLeaseManager() *fakeLeaseManager {
	return &fakeLeaseManager{held: make(map[uuid.UUID]bool)}
}

func (m *fakeLeaseManager) Acquire(_ context.Context, channelID uuid.UUID, _ time.Duration) (channel.Lease, error) {
	if m.held[channelID] {
		return nil, channel.ErrLeaseHeld
	}
	m.held[channelID] = true
	return &fakeLease{manager: m, channelID: channelID}, nil
}

type fakeLease struct {
	manager   *fakeLeaseManager
	channelID uuid.UUID
}

func (l *fakeLease) Release(_ context.Context) error {
	delete(l.manager.held, l.channelID)
	l.manager.releases++
	return nil
}

// ---------------------------------------------------------------------------
// Storefront mock
// ---------------------------------------------------------------------------

type mockStorefront struct {
	mock.Mock
}

func (m *mockStorefront) Provider() channel.ProviderCode {
	return channel.ProviderShopify
}

func (m *mockStorefront) ListOrders(ctx context.Context, conn channel.Connection, req channel.PageRequest) ([]channel.ExternalOrder, channel.PageInfo, error) {
	args := m.Called(ctx, conn, req)
	var orders []channel.ExternalOrder
	if args.Get(0) != nil {
		orders = args.Get(0).([]channel.ExternalOrder)
	}
	return orders, args.Get(1).(channel.PageInfo), args.Error(2)
}

func (m *mockStorefront) ListProducts(ctx context.Context, conn channel.Connection, req channel.PageRequest) ([]channel.ExternalProduct, channel.PageInfo, error) {
	args := m.Called(ctx, conn, req)
	var products []channel.ExternalProduct
	if args.Get(0) != nil {
		products = args.Get(0).([]channel.ExternalProduct)
	}
	return products, args.Get(1).(channel.PageInfo), args.Error(2)
}

func (m *mockStorefront) ListLocations(ctx context.Context, conn channel.Connection) ([]channel.ExternalLocation, error) {
	args := m.Called(ctx, conn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.ExternalLocation), args.Error(1)
}

func (m *mockStorefront) ListInventoryLevels(ctx context.Context, conn channel.Connection, locationID string, inventoryItemIDs []string) ([]channel.ExternalInventoryLevel, error) {
	args := m.Called(ctx, conn, locationID, inventoryItemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]channel.ExternalInventoryLevel), args.Error(1)
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
// Fixtures
// ---------------------------------------------------------------------------

func connectedChannel(tenantID uuid.UUID) *channel.SalesChannel {
	ch, _ := channel.NewSalesChannel(tenantID, "Main Store", channel.ProviderShopify)
	_ = ch.SetCredentials("main.myshopify.com")
	_ = ch.Connect("shpat_token")
	return ch
}
