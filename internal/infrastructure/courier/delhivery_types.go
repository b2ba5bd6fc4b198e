package courier

// DelhiveryPincodeResponse is the response of the pincode serviceability API
type DelhiveryPincodeResponse struct {
	DeliveryCodes []struct {
		PostalCode struct {
			Pin      int    `json:"pin"`
			Prepaid  string `json:"pre_paid"`
			COD      string `json:"cod"`
			District string `json:"district"`
		} `json:"postal_code"`
	} `json:"delivery_codes"`
}

// DelhiveryChargeResponse is the response of the shipping charge API
type DelhiveryChargeResponse []struct {
	TotalAmount   float64 `json:"total_amount"`
	GrossAmount   float64 `json:"gross_amount"`
	CODCharges    float64 `json:"charge_COD"`
	ChargedWeight float64 `json:"charged_weight"`
	Zone          string  `json:"zone"`
}

// DelhiveryCreatePayload is the manifest creation request body
type DelhiveryCreatePayload struct {
	Shipments    []DelhiveryShipment `json:"shipments"`
	PickupLoc    DelhiveryPickupLoc  `json:"pickup_location"`
}

// DelhiveryPickupLoc names a registered pickup warehouse
type DelhiveryPickupLoc struct {
	Name string `json:"name"`
}

// DelhiveryShipment is one shipment inside a manifest creation request
type DelhiveryShipment struct {
	Name          string `json:"name"`
	Address       string `json:"add"`
	Pin           string `json:"pin"`
	City          string `json:"city"`
	State         string `json:"state"`
	Country       string `json:"country"`
	Phone         string `json:"phone"`
	OrderID       string `json:"order"`
	PaymentMode   string `json:"payment_mode"`
	CODAmount     string `json:"cod_amount,omitempty"`
	TotalAmount   string `json:"total_amount,omitempty"`
	SellerName    string `json:"seller_name,omitempty"`
	SellerAddress string `json:"seller_add,omitempty"`
	ProductsDesc  string `json:"products_desc,omitempty"`
	Quantity      string `json:"quantity,omitempty"`
	WeightGrams   string `json:"weight,omitempty"`
	ShipmentLen   string `json:"shipment_length,omitempty"`
	ShipmentWidth string `json:"shipment_width,omitempty"`
	ShipmentHt    string `json:"shipment_height,omitempty"`
}

// DelhiveryCreateResponse is the manifest creation response
type DelhiveryCreateResponse struct {
	Success  bool   `json:"success"`
	RMK      string `json:"rmk"`
	Packages []struct {
		Waybill string `json:"waybill"`
		RefNum  string `json:"refnum"`
		Status  string `json:"status"`
		Remarks any    `json:"remarks"`
	} `json:"packages"`
}

// DelhiveryTrackResponse is the tracking API response
type DelhiveryTrackResponse struct {
	ShipmentData []struct {
		Shipment DelhiveryShipmentTrack `json:"Shipment"`
	} `json:"ShipmentData"`
	Error string `json:"Error"`
}

// DelhiveryShipmentTrack is the per-shipment tracking payload
type DelhiveryShipmentTrack struct {
	AWB            string               `json:"AWB"`
	ReferenceNo    string               `json:"ReferenceNo"`
	Status         DelhiveryScan        `json:"Status"`
	Scans          []DelhiveryScanEntry `json:"Scans"`
	ExpectedDate   string               `json:"ExpectedDeliveryDate"`
	DeliveryDate   string               `json:"DeliveryDate"`
	ReturnedDate   string               `json:"ReturnedDate"`
}

// DelhiveryScanEntry wraps one scan detail record
type DelhiveryScanEntry struct {
	ScanDetail DelhiveryScan `json:"ScanDetail"`
}

// DelhiveryScan is one status scan on a Delhivery shipment
type DelhiveryScan struct {
	Status       string `json:"Status"`
	StatusType   string `json:"StatusType"`
	StatusCode   string `json:"StatusCode"`
	Location     string `json:"ScannedLocation"`
	StateDate    string `json:"StatusDateTime"`
	Instructions string `json:"Instructions"`
}

// DelhiveryEditResponse is the shipment edit/cancel response
type DelhiveryEditResponse struct {
	Status  bool   `json:"status"`
	Remarks string `json:"remarks"`
}

// DelhiveryPickupResponse is the pickup scheduling response
type DelhiveryPickupResponse struct {
	PickupID     int    `json:"pickup_id"`
	PickupDate   string `json:"pickup_date"`
	IncidentID   string `json:"incident_id"`
	ErrorMessage string `json:"error_message"`
}

// DelhiveryWebhookPayload is the shape Delhivery posts to status webhooks
type DelhiveryWebhookPayload struct {
	Shipment struct {
		AWB         string        `json:"AWB"`
		ReferenceNo string        `json:"ReferenceNo"`
		Status      DelhiveryScan `json:"Status"`
	} `json:"Shipment"`
}
