package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	appsync "github.com/ecommanager/backend/internal/application/sync"
	"github.com/ecommanager/backend/internal/domain/channel"
)

// SyncHandler exposes the manual sync trigger and push endpoints
type SyncHandler struct {
	BaseHandler
	orders    *appsync.OrderSyncService
	products  *appsync.ProductSyncService
	inventory *appsync.InventorySyncService
	push      *appsync.OrderPushService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(orders *appsync.OrderSyncService, products *appsync.ProductSyncService, inventory *appsync.InventorySyncService, push *appsync.OrderPushService) *SyncHandler {
	return &SyncHandler{
		orders:    orders,
		products:  products,
		inventory: inventory,
		push:      push,
	}
}

// RegisterRoutes registers sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/channels/:id")
	{
		channels.POST("/sync/orders", h.SyncOrders)
		channels.POST("/sync/products", h.SyncProducts)
		channels.POST("/sync/inventory", h.SyncInventory)
		channels.POST("/orders/:orderId/push", h.PushOrder)
		channels.POST("/orders/:orderId/push-update", h.PushOrderUpdate)
	}
	rg.POST("/products/:productId/resolve-conflict", h.ResolveConflict)
}

// SyncOrdersRequest optionally narrows the sync window. Omitted bounds fall
// back to the channel's lookback policy.
type SyncOrdersRequest struct {
	From *time.Time `json:"from"`
	To   *time.Time `json:"to"`
}

// SyncResultResponse is a sync run outcome in API responses
type SyncResultResponse struct {
	RunID     string    `json:"run_id"`
	ChannelID string    `json:"channel_id"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`

	OrdersImported int `json:"orders_imported"`
	OrdersUpdated  int `json:"orders_updated"`
	OrdersSkipped  int `json:"orders_skipped"`
	OrdersFailed   int `json:"orders_failed"`

	ProductsImported int `json:"products_imported"`
	ProductsUpdated  int `json:"products_updated"`
	ProductsSkipped  int `json:"products_skipped"`
	ProductsFailed   int `json:"products_failed"`

	InventoryUpdated int `json:"inventory_updated"`
	InventorySkipped int `json:"inventory_skipped"`
	InventoryFailed  int `json:"inventory_failed"`

	Errors []string `json:"errors,omitempty"`
}

func toSyncResultResponse(r *channel.SyncResult) SyncResultResponse {
	return SyncResultResponse{
		RunID:            r.RunID.String(),
		ChannelID:        r.ChannelID.String(),
		Status:           r.Status.String(),
		StartedAt:        r.StartedAt,
		EndedAt:          r.EndedAt,
		OrdersImported:   r.OrdersImported,
		OrdersUpdated:    r.OrdersUpdated,
		OrdersSkipped:    r.OrdersSkipped,
		OrdersFailed:     r.OrdersFailed,
		ProductsImported: r.ProductsImported,
		ProductsUpdated:  r.ProductsUpdated,
		ProductsSkipped:  r.ProductsSkipped,
		ProductsFailed:   r.ProductsFailed,
		InventoryUpdated: r.InventoryUpdated,
		InventorySkipped: r.InventorySkipped,
		InventoryFailed:  r.InventoryFailed,
		Errors:           r.Errors,
	}
}

// respondSyncResult maps run outcomes onto HTTP statuses: a failed run is
// still a completed request, reported with its counters
func (h *SyncHandler) respondSyncResult(c *gin.Context, result *channel.SyncResult) {
	h.Success(c, toSyncResultResponse(result))
}

// SyncOrders triggers an order sync run for the channel
func (h *SyncHandler) SyncOrders(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	var req SyncOrdersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	result := h.orders.SyncOrders(c.Request.Context(), id, req.From, req.To)
	h.respondSyncResult(c, result)
}

// SyncProducts triggers a product sync run for the channel
func (h *SyncHandler) SyncProducts(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	h.respondSyncResult(c, h.products.SyncProducts(c.Request.Context(), id))
}

// SyncInventory triggers an inventory sync run for the channel
func (h *SyncHandler) SyncInventory(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	h.respondSyncResult(c, h.inventory.SyncInventory(c.Request.Context(), id))
}

// PushOrderResponse is the provider-assigned identity of a pushed order
type PushOrderResponse struct {
	ExternalID  string `json:"external_id"`
	OrderNumber string `json:"order_number"`
}

// PushOrder creates a local order on the channel's storefront
func (h *SyncHandler) PushOrder(c *gin.Context) {
	channelID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	orderID, err := parseUUIDParam(c, "orderId")
	if err != nil {
		h.BadRequest(c, "invalid order ID")
		return
	}

	ref, err := h.push.PushOrder(c.Request.Context(), channelID, orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PushOrderResponse{ExternalID: ref.ExternalID, OrderNumber: ref.OrderNumber})
}

// PushOrderUpdate sends locally edited order fields to the storefront
func (h *SyncHandler) PushOrderUpdate(c *gin.Context) {
	channelID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	orderID, err := parseUUIDParam(c, "orderId")
	if err != nil {
		h.BadRequest(c, "invalid order ID")
		return
	}

	if err := h.push.PushOrderUpdate(c.Request.Context(), channelID, orderID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"pushed": true})
}

// ResolveConflictRequest decides a flagged price conflict
type ResolveConflictRequest struct {
	KeepLocal    bool            `json:"keep_local"`
	ChannelPrice decimal.Decimal `json:"channel_price"`
}

// ResolveConflict resolves a product sync conflict explicitly
func (h *SyncHandler) ResolveConflict(c *gin.Context) {
	productID, err := parseUUIDParam(c, "productId")
	if err != nil {
		h.BadRequest(c, "invalid product ID")
		return
	}
	var req ResolveConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.products.ResolveConflict(c.Request.Context(), productID, req.KeepLocal, req.ChannelPrice); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"resolved": true})
}
