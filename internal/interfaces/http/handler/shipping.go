package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appshipping "github.com/ecommanager/backend/internal/application/shipping"
	"github.com/ecommanager/backend/internal/domain/shipping"
)

// ShippingHandler exposes courier account, rate, shipment and tracking
// endpoints
type ShippingHandler struct {
	BaseHandler
	couriers *appshipping.CourierService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(couriers *appshipping.CourierService) *ShippingHandler {
	return &ShippingHandler{couriers: couriers}
}

// RegisterRoutes registers shipping routes
func (h *ShippingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	couriers := rg.Group("/couriers")
	{
		couriers.POST("/accounts", h.ConfigureAccount)
		couriers.POST("/rates", h.GetRates)
		couriers.POST("/pickups", h.SchedulePickup)
	}
	shipments := rg.Group("/shipments")
	{
		shipments.POST("", h.CreateShipment)
		shipments.GET("/:awb/tracking", h.RefreshTracking)
		shipments.POST("/:awb/cancel", h.CancelShipment)
		shipments.POST("/:awb/label", h.ArchiveLabel)
		shipments.GET("/:awb/label", h.LabelURL)
	}
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// ConfigureAccountRequest carries carrier credentials. Key and Secret are
// generic slots; each carrier assigns its own meaning.
type ConfigureAccountRequest struct {
	CourierCode string            `json:"courier_code" binding:"required"`
	Key         string            `json:"key" binding:"required"`
	Secret      string            `json:"secret"`
	Settings    map[string]string `json:"settings"`
}

// ConfigureAccount validates and stores carrier credentials
func (h *ShippingHandler) ConfigureAccount(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req ConfigureAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.couriers.ConfigureAccount(c.Request.Context(), tenantID,
		shipping.CourierCode(req.CourierCode), req.Key, req.Secret, req.Settings)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, gin.H{
		"id":           account.ID.String(),
		"courier_code": account.CourierCode.String(),
		"enabled":      account.Enabled,
	})
}

// ---------------------------------------------------------------------------
// Rates
// ---------------------------------------------------------------------------

// RateQueryRequest is a rate shop query across all configured carriers
type RateQueryRequest struct {
	PickupPincode     string          `json:"pickup_pincode" binding:"required"`
	DeliveryPincode   string          `json:"delivery_pincode" binding:"required"`
	WeightGrams       decimal.Decimal `json:"weight_grams" binding:"required"`
	LengthCM          decimal.Decimal `json:"length_cm"`
	WidthCM           decimal.Decimal `json:"width_cm"`
	HeightCM          decimal.Decimal `json:"height_cm"`
	CollectOnDelivery bool            `json:"collect_on_delivery"`
	DeclaredValue     decimal.Decimal `json:"declared_value"`
}

// RateResponse is one candidate courier service
type RateResponse struct {
	CourierCode   string          `json:"courier_code"`
	ServiceCode   string          `json:"service_code"`
	ServiceName   string          `json:"service_name"`
	FreightCharge decimal.Decimal `json:"freight_charge"`
	CODCharge     decimal.Decimal `json:"cod_charge"`
	TotalCharge   decimal.Decimal `json:"total_charge"`
	EstimatedDays int             `json:"estimated_days,omitempty"`
	IsExpress     bool            `json:"is_express"`
	IsEstimate    bool            `json:"is_estimate"`
}

// GetRates rate-shops across every enabled carrier, cheapest first
func (h *ShippingHandler) GetRates(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req RateQueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rates, err := h.couriers.GetRates(c.Request.Context(), tenantID, shipping.RateRequest{
		PickupPincode:     req.PickupPincode,
		DeliveryPincode:   req.DeliveryPincode,
		WeightGrams:       req.WeightGrams,
		LengthCM:          req.LengthCM,
		WidthCM:           req.WidthCM,
		HeightCM:          req.HeightCM,
		CollectOnDelivery: req.CollectOnDelivery,
		DeclaredValue:     req.DeclaredValue,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]RateResponse, 0, len(rates))
	for _, r := range rates {
		out = append(out, RateResponse{
			CourierCode:   r.CourierCode.String(),
			ServiceCode:   r.ServiceCode,
			ServiceName:   r.ServiceName,
			FreightCharge: r.FreightCharge,
			CODCharge:     r.CODCharge,
			TotalCharge:   r.TotalCharge,
			EstimatedDays: r.EstimatedDays,
			IsExpress:     r.IsExpress,
			IsEstimate:    r.IsEstimate(),
		})
	}
	h.Success(c, out)
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// PartyRequest is one side of a shipment
type PartyRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Email   string `json:"email"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state"`
	Pincode string `json:"pincode" binding:"required"`
	Country string `json:"country"`
}

// ShipmentItemRequest is one line in a shipment
type ShipmentItemRequest struct {
	SKU       string          `json:"sku"`
	Name      string          `json:"name" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// CreateShipmentRequest books a shipment with one carrier
type CreateShipmentRequest struct {
	CourierCode       string                `json:"courier_code" binding:"required"`
	OrderID           *string               `json:"order_id"`
	OrderReference    string                `json:"order_reference" binding:"required"`
	Pickup            PartyRequest          `json:"pickup" binding:"required"`
	Delivery          PartyRequest          `json:"delivery" binding:"required"`
	WeightGrams       decimal.Decimal       `json:"weight_grams" binding:"required"`
	LengthCM          decimal.Decimal       `json:"length_cm"`
	WidthCM           decimal.Decimal       `json:"width_cm"`
	HeightCM          decimal.Decimal       `json:"height_cm"`
	CollectOnDelivery bool                  `json:"collect_on_delivery"`
	CODAmount         decimal.Decimal       `json:"cod_amount"`
	DeclaredValue     decimal.Decimal       `json:"declared_value"`
	Items             []ShipmentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ShipmentResponse is a shipment in API responses
type ShipmentResponse struct {
	ID                 string     `json:"id"`
	OrderID            *string    `json:"order_id,omitempty"`
	CourierCode        string     `json:"courier_code"`
	AWB                string     `json:"awb"`
	Status             string     `json:"status"`
	TrackingURL        string     `json:"tracking_url,omitempty"`
	CurrentLocation    string     `json:"current_location,omitempty"`
	NDRAttempts        int        `json:"ndr_attempts"`
	LastNDRReason      string     `json:"last_ndr_reason,omitempty"`
	ExpectedDeliveryAt *time.Time `json:"expected_delivery_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
}

func toShipmentResponse(s *shipping.Shipment) ShipmentResponse {
	resp := ShipmentResponse{
		ID:                 s.ID.String(),
		CourierCode:        s.CourierCode.String(),
		AWB:                s.AWB,
		Status:             s.Status.String(),
		TrackingURL:        s.TrackingURL,
		CurrentLocation:    s.CurrentLocation,
		NDRAttempts:        s.NDRAttempts,
		LastNDRReason:      s.LastNDRReason,
		ExpectedDeliveryAt: s.ExpectedDeliveryAt,
		DeliveredAt:        s.DeliveredAt,
	}
	if s.OrderID != nil {
		id := s.OrderID.String()
		resp.OrderID = &id
	}
	return resp
}

func toParty(p PartyRequest) shipping.Party {
	return shipping.Party{
		Name:    p.Name,
		Phone:   p.Phone,
		Email:   p.Email,
		Address: p.Address,
		City:    p.City,
		State:   p.State,
		Pincode: p.Pincode,
		Country: p.Country,
	}
}

// CreateShipment books a shipment and records the assigned AWB
func (h *ShippingHandler) CreateShipment(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	var orderID *uuid.UUID
	if req.OrderID != nil {
		id, err := uuid.Parse(*req.OrderID)
		if err != nil {
			h.BadRequest(c, "invalid order ID")
			return
		}
		orderID = &id
	}

	items := make([]shipping.ShipmentItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, shipping.ShipmentItem{
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	shipment, err := h.couriers.CreateShipment(c.Request.Context(), tenantID, orderID,
		shipping.CourierCode(req.CourierCode), shipping.ShipmentRequest{
			OrderReference:    req.OrderReference,
			Pickup:            toParty(req.Pickup),
			Delivery:          toParty(req.Delivery),
			WeightGrams:       req.WeightGrams,
			LengthCM:          req.LengthCM,
			WidthCM:           req.WidthCM,
			HeightCM:          req.HeightCM,
			CollectOnDelivery: req.CollectOnDelivery,
			CODAmount:         req.CODAmount,
			DeclaredValue:     req.DeclaredValue,
			Items:             items,
		})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toShipmentResponse(shipment))
}

// TrackingEventResponse is one tracking scan
type TrackingEventResponse struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status,omitempty"`
	Location  string    `json:"location,omitempty"`
	Remarks   string    `json:"remarks,omitempty"`
}

// TrackingResponse is the refreshed tracking state of a shipment
type TrackingResponse struct {
	Shipment ShipmentResponse        `json:"shipment"`
	Events   []TrackingEventResponse `json:"events"`
}

// RefreshTracking polls the carrier and applies the latest status
func (h *ShippingHandler) RefreshTracking(c *gin.Context) {
	awb := c.Param("awb")

	shipment, tracking, err := h.couriers.RefreshTracking(c.Request.Context(), awb)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	events := make([]TrackingEventResponse, 0, len(tracking.Events))
	for _, e := range tracking.Events {
		event := TrackingEventResponse{
			Timestamp: e.Timestamp,
			Location:  e.Location,
			Remarks:   e.Remarks,
		}
		if e.Status != nil {
			event.Status = e.Status.String()
		}
		events = append(events, event)
	}
	h.Success(c, TrackingResponse{Shipment: toShipmentResponse(shipment), Events: events})
}

// CancelShipment cancels a shipment with the carrier
func (h *ShippingHandler) CancelShipment(c *gin.Context) {
	shipment, err := h.couriers.CancelShipment(c.Request.Context(), c.Param("awb"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toShipmentResponse(shipment))
}

// ArchiveLabel fetches the label from the carrier and archives it
func (h *ShippingHandler) ArchiveLabel(c *gin.Context) {
	key, err := h.couriers.ArchiveLabel(c.Request.Context(), c.Param("awb"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"label_key": key})
}

// LabelURL returns a time-limited download URL for an archived label
func (h *ShippingHandler) LabelURL(c *gin.Context) {
	url, err := h.couriers.LabelURL(c.Request.Context(), c.Param("awb"), 15*time.Minute)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url})
}

// ---------------------------------------------------------------------------
// Pickups
// ---------------------------------------------------------------------------

// SchedulePickupRequest books a carrier pickup
type SchedulePickupRequest struct {
	CourierCode    string          `json:"courier_code" binding:"required"`
	PickupLocation string          `json:"pickup_location" binding:"required"`
	PickupDate     time.Time       `json:"pickup_date" binding:"required"`
	PackageCount   int             `json:"package_count" binding:"required,min=1"`
	WeightGrams    decimal.Decimal `json:"weight_grams"`
}

// SchedulePickup schedules a carrier pickup
func (h *ShippingHandler) SchedulePickup(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	var req SchedulePickupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	pickup, err := h.couriers.SchedulePickup(c.Request.Context(), tenantID,
		shipping.CourierCode(req.CourierCode), shipping.PickupRequest{
			PickupLocation: req.PickupLocation,
			PickupDate:     req.PickupDate,
			PackageCount:   req.PackageCount,
			WeightGrams:    req.WeightGrams,
		})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{
		"pickup_id":      pickup.PickupID,
		"scheduled_date": pickup.ScheduledDate,
		"confirmed":      pickup.Confirmed,
	})
}
