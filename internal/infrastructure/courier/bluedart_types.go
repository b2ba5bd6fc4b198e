package courier

// BluedartTokenResponse is the JWT login response
type BluedartTokenResponse struct {
	JWTToken     string `json:"JWTToken"`
	ErrorMessage string `json:"error-response,omitempty"`
}

// BluedartWaybillRequest is the waybill generation request body
type BluedartWaybillRequest struct {
	Request BluedartWaybillDetails `json:"Request"`
	Profile BluedartProfile        `json:"Profile"`
}

// BluedartProfile carries the account identity on every request
type BluedartProfile struct {
	LoginID    string `json:"LoginID"`
	LicenceKey string `json:"LicenceKey"`
	APIType    string `json:"Api_type"`
}

// BluedartWaybillDetails is the shipment section of a waybill request
type BluedartWaybillDetails struct {
	Consignee BluedartConsignee `json:"Consignee"`
	Shipper   BluedartShipper   `json:"Shipper"`
	Services  BluedartServices  `json:"Services"`
}

// BluedartConsignee is the delivery party
type BluedartConsignee struct {
	ConsigneeName      string   `json:"ConsigneeName"`
	ConsigneeAddress1  string   `json:"ConsigneeAddress1"`
	ConsigneeAddress2  string   `json:"ConsigneeAddress2,omitempty"`
	ConsigneePincode   string   `json:"ConsigneePincode"`
	ConsigneeMobile    string   `json:"ConsigneeMobile"`
	ConsigneeEmailID   string   `json:"ConsigneeEmailID,omitempty"`
}

// BluedartShipper is the pickup party
type BluedartShipper struct {
	CustomerName     string `json:"CustomerName"`
	CustomerAddress1 string `json:"CustomerAddress1"`
	CustomerPincode  string `json:"CustomerPincode"`
	CustomerMobile   string `json:"CustomerMobile"`
	CustomerCode     string `json:"CustomerCode"`
	OriginArea       string `json:"OriginArea"`
}

// BluedartServices is the service section of a waybill request
type BluedartServices struct {
	ProductCode       string                `json:"ProductCode"`
	SubProductCode    string                `json:"SubProductCode,omitempty"`
	PieceCount        int                   `json:"PieceCount"`
	ActualWeight      string                `json:"ActualWeight"`
	CollectableAmount string                `json:"CollectableAmount,omitempty"`
	DeclaredValue     string                `json:"DeclaredValue"`
	CreditReferenceNo string                `json:"CreditReferenceNo"`
	PickupDate        string                `json:"PickupDate,omitempty"`
	Dimensions        []BluedartDimension   `json:"Dimensions,omitempty"`
	Commodity         BluedartCommodity     `json:"Commodity"`
}

// BluedartDimension is one package dimension record
type BluedartDimension struct {
	Length string `json:"Length"`
	Width  string `json:"Breadth"`
	Height string `json:"Height"`
	Count  int    `json:"Count"`
}

// BluedartCommodity describes the shipment contents
type BluedartCommodity struct {
	CommodityDetail1 string `json:"CommodityDetail1"`
}

// BluedartWaybillResponse is the waybill generation response
type BluedartWaybillResponse struct {
	GenerateWayBillResult struct {
		AWBNo         string `json:"AWBNo"`
		TokenNumber   string `json:"TokenNumber"`
		AWBPrintContent []byte `json:"AWBPrintContent"`
		IsError       bool   `json:"IsError"`
		Status        []struct {
			StatusCode        string `json:"StatusCode"`
			StatusInformation string `json:"StatusInformation"`
		} `json:"Status"`
	} `json:"GenerateWayBillResult"`
}

// BluedartTrackResponse is the tracking API response
type BluedartTrackResponse struct {
	ShipmentData struct {
		Shipment []BluedartShipmentTrack `json:"Shipment"`
	} `json:"ShipmentData"`
}

// BluedartShipmentTrack is the per-shipment tracking payload
type BluedartShipmentTrack struct {
	WaybillNo    string         `json:"WaybillNo"`
	RefNo        string         `json:"RefNo"`
	Status       string         `json:"Status"`
	StatusType   string         `json:"StatusType"`
	ExpectedDate string         `json:"ExpectedDeliveryDate"`
	StatusDate   string         `json:"StatusDate"`
	StatusTime   string         `json:"StatusTime"`
	Scans        []BluedartScan `json:"Scans"`
}

// BluedartScan is one scan record on a Blue Dart shipment
type BluedartScan struct {
	ScanCode      string `json:"ScanCode"`
	ScanType      string `json:"ScanType"`
	Scan          string `json:"Scan"`
	ScannedDate   string `json:"ScanDate"`
	ScannedTime   string `json:"ScanTime"`
	ScannedLocation string `json:"ScannedLocation"`
	Comments      string `json:"Comments"`
}

// BluedartCancelResponse is the waybill cancellation response
type BluedartCancelResponse struct {
	CancelWaybillResult struct {
		IsError bool `json:"IsError"`
		Status  []struct {
			StatusCode        string `json:"StatusCode"`
			StatusInformation string `json:"StatusInformation"`
		} `json:"Status"`
	} `json:"CancelWaybillResult"`
}

// BluedartPickupResponse is the pickup registration response
type BluedartPickupResponse struct {
	RegisterPickupResult struct {
		TokenNumber string `json:"TokenNumber"`
		IsError     bool   `json:"IsError"`
		Status      []struct {
			StatusCode        string `json:"StatusCode"`
			StatusInformation string `json:"StatusInformation"`
		} `json:"Status"`
	} `json:"RegisterPickupResult"`
}

// BluedartWebhookPayload is the shape Blue Dart posts to status webhooks
type BluedartWebhookPayload struct {
	WaybillNo string `json:"WaybillNo"`
	RefNo     string `json:"RefNo"`
	ScanCode  string `json:"ScanCode"`
	ScanType  string `json:"ScanType"`
	Scan      string `json:"Scan"`
	Location  string `json:"ScannedLocation"`
	Comments  string `json:"Comments"`
}
