package courier

// XpressbeesEnvelope is the common response wrapper
type XpressbeesEnvelope struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// XpressbeesLoginResponse is the token exchange response
type XpressbeesLoginResponse struct {
	Status bool   `json:"status"`
	Data   string `json:"data"`
}

// XpressbeesShipmentRequest is the shipment creation request body
type XpressbeesShipmentRequest struct {
	OrderNumber     string                 `json:"order_number"`
	PaymentType     string                 `json:"payment_type"`
	OrderAmount     string                 `json:"order_amount"`
	CollectableAmount string               `json:"collectable_amount,omitempty"`
	PackageWeight   string                 `json:"package_weight"`
	PackageLength   string                 `json:"package_length"`
	PackageBreadth  string                 `json:"package_breadth"`
	PackageHeight   string                 `json:"package_height"`
	Consignee       XpressbeesAddress      `json:"consignee"`
	Pickup          XpressbeesAddress      `json:"pickup"`
	OrderItems      []XpressbeesOrderItem  `json:"order_items"`
	CourierID       string                 `json:"courier_id,omitempty"`
}

// XpressbeesAddress is one party address
type XpressbeesAddress struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Phone         string `json:"phone"`
	WarehouseName string `json:"warehouse_name,omitempty"`
}

// XpressbeesOrderItem is one line item in a shipment request
type XpressbeesOrderItem struct {
	Name  string `json:"name"`
	SKU   string `json:"sku"`
	Qty   string `json:"qty"`
	Price string `json:"price"`
}

// XpressbeesShipmentResponse is the shipment creation response
type XpressbeesShipmentResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		OrderID     int    `json:"order_id"`
		ShipmentID  int    `json:"shipment_id"`
		AWBNumber   string `json:"awb_number"`
		CourierID   string `json:"courier_id"`
		CourierName string `json:"courier_name"`
		LabelURL    string `json:"label"`
	} `json:"data"`
}

// XpressbeesTrackResponse is the tracking API response
type XpressbeesTrackResponse struct {
	Status bool `json:"status"`
	Data   struct {
		AWBNumber   string           `json:"awb_number"`
		OrderNumber string           `json:"order_number"`
		Status      string           `json:"status"`
		EDD         string           `json:"edd"`
		History     []XpressbeesScan `json:"history"`
	} `json:"data"`
	Message string `json:"message"`
}

// XpressbeesScan is one tracking history entry
type XpressbeesScan struct {
	StatusCode string `json:"status_code"`
	Location   string `json:"location"`
	EventTime  string `json:"event_time"`
	Message    string `json:"message"`
}

// XpressbeesWebhookPayload is the shape Xpressbees posts to status webhooks
type XpressbeesWebhookPayload struct {
	AWBNumber   string `json:"awb_number"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Location    string `json:"location"`
	Remarks     string `json:"remarks"`
	EventTime   string `json:"event_time"`
}
