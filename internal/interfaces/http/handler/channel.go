package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	appchannel "github.com/ecommanager/backend/internal/application/channel"
	"github.com/ecommanager/backend/internal/domain/channel"
)

// ChannelHandler exposes sales channel lifecycle endpoints
type ChannelHandler struct {
	BaseHandler
	channels *appchannel.ChannelService
}

// NewChannelHandler creates a new ChannelHandler
func NewChannelHandler(channels *appchannel.ChannelService) *ChannelHandler {
	return &ChannelHandler{channels: channels}
}

// RegisterRoutes registers channel routes
func (h *ChannelHandler) RegisterRoutes(rg *gin.RouterGroup) {
	channels := rg.Group("/channels")
	{
		channels.POST("", h.Create)
		channels.GET("", h.List)
		channels.GET("/:id", h.Get)
		channels.POST("/:id/connect", h.Connect)
		channels.POST("/:id/disconnect", h.Disconnect)
		channels.PUT("/:id/policy", h.UpdatePolicy)
	}
}

// CreateChannelRequest is the request body for creating a channel
type CreateChannelRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=120"`
	Provider string `json:"provider" binding:"required"`
}

// ConnectChannelRequest is the request body for connecting a channel
type ConnectChannelRequest struct {
	StoreURL    string `json:"store_url" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
}

// SyncPolicyRequest is the request body for updating a channel's sync policy
type SyncPolicyRequest struct {
	AutoSyncOrders     bool `json:"auto_sync_orders"`
	AutoSyncProducts   bool `json:"auto_sync_products"`
	AutoSyncInventory  bool `json:"auto_sync_inventory"`
	OrderLookbackDays  *int `json:"order_lookback_days" binding:"omitempty,min=1"`
	OrderSyncLimit     *int `json:"order_sync_limit" binding:"omitempty,min=1"`
	ProductSyncLimit   *int `json:"product_sync_limit" binding:"omitempty,min=1"`
	InventorySyncLimit *int `json:"inventory_sync_limit" binding:"omitempty,min=1"`
}

// ChannelResponse is a sales channel in API responses
type ChannelResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Provider        string     `json:"provider"`
	Status          string     `json:"status"`
	StoreURL        string     `json:"store_url,omitempty"`
	LastSyncAt      *time.Time `json:"last_sync_at,omitempty"`
	LastSyncOutcome string     `json:"last_sync_outcome,omitempty"`

	AutoSyncOrders     bool `json:"auto_sync_orders"`
	AutoSyncProducts   bool `json:"auto_sync_products"`
	AutoSyncInventory  bool `json:"auto_sync_inventory"`
	OrderLookbackDays  *int `json:"order_lookback_days,omitempty"`
	OrderSyncLimit     *int `json:"order_sync_limit,omitempty"`
	ProductSyncLimit   *int `json:"product_sync_limit,omitempty"`
	InventorySyncLimit *int `json:"inventory_sync_limit,omitempty"`
}

func toChannelResponse(ch *channel.SalesChannel) ChannelResponse {
	return ChannelResponse{
		ID:                 ch.ID.String(),
		Name:               ch.Name,
		Provider:           ch.ProviderCode.String(),
		Status:             string(ch.Status),
		StoreURL:           ch.StoreURL,
		LastSyncAt:         ch.LastSyncAt,
		LastSyncOutcome:    ch.LastSyncOutcome,
		AutoSyncOrders:     ch.Policy.AutoSyncOrders,
		AutoSyncProducts:   ch.Policy.AutoSyncProducts,
		AutoSyncInventory:  ch.Policy.AutoSyncInventory,
		OrderLookbackDays:  ch.Policy.OrderLookbackDays,
		OrderSyncLimit:     ch.Policy.OrderSyncLimit,
		ProductSyncLimit:   ch.Policy.ProductSyncLimit,
		InventorySyncLimit: ch.Policy.InventorySyncLimit,
	}
}

// Create registers a new channel
func (h *ChannelHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ch, err := h.channels.CreateChannel(c.Request.Context(), tenantID, req.Name, channel.ProviderCode(req.Provider))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toChannelResponse(ch))
}

// List returns all channels of the tenant
func (h *ChannelHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	channels, err := h.channels.ListChannels(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]ChannelResponse, 0, len(channels))
	for i := range channels {
		out = append(out, toChannelResponse(&channels[i]))
	}
	h.Success(c, out)
}

// Get returns one channel
func (h *ChannelHandler) Get(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}

	ch, err := h.channels.GetChannel(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChannelResponse(ch))
}

// Connect stores credentials and connects the channel
func (h *ChannelHandler) Connect(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	var req ConnectChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ch, err := h.channels.Connect(c.Request.Context(), id, req.StoreURL, req.AccessToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChannelResponse(ch))
}

// Disconnect severs the channel's storefront connection
func (h *ChannelHandler) Disconnect(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}

	ch, err := h.channels.Disconnect(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChannelResponse(ch))
}

// UpdatePolicy replaces the channel's sync policy
func (h *ChannelHandler) UpdatePolicy(c *gin.Context) {
	id, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "invalid channel ID")
		return
	}
	var req SyncPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	ch, err := h.channels.UpdatePolicy(c.Request.Context(), id, channel.SyncPolicy{
		AutoSyncOrders:     req.AutoSyncOrders,
		AutoSyncProducts:   req.AutoSyncProducts,
		AutoSyncInventory:  req.AutoSyncInventory,
		OrderLookbackDays:  req.OrderLookbackDays,
		OrderSyncLimit:     req.OrderSyncLimit,
		ProductSyncLimit:   req.ProductSyncLimit,
		InventorySyncLimit: req.InventorySyncLimit,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toChannelResponse(ch))
}
