package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// maxResponseSize is the maximum allowed carrier response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// DelhiveryAdapter implements the CourierProvider interface for Delhivery
type DelhiveryAdapter struct {
	config     *DelhiveryConfig
	httpClient *http.Client
}

// NewDelhiveryAdapter creates a new Delhivery adapter with the given configuration
func NewDelhiveryAdapter(config *DelhiveryConfig) (*DelhiveryAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &DelhiveryAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
	}, nil
}

// Code returns the courier code this adapter handles
func (a *DelhiveryAdapter) Code() shipping.CourierCode {
	return shipping.CourierDelhivery
}

// ValidateCredentials checks the API token against the cheapest authenticated
// endpoint, the pincode serviceability lookup
func (a *DelhiveryAdapter) ValidateCredentials(ctx context.Context, creds shipping.Credentials) shipping.Result {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return shipping.Failure(err.Error())
	}

	query := url.Values{"filter_codes": {"110001"}}
	body, status, err := a.doRequest(ctx, dc, http.MethodGet, "/c/api/pin-codes/json/?"+query.Encode(), nil, "")
	if err != nil {
		return shipping.Failuref("delhivery: validation request failed: %v", err)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return shipping.Failure("delhivery: API token rejected")
	}
	if status >= 400 {
		return shipping.Failuref("delhivery: validation returned HTTP %d", status)
	}

	var resp DelhiveryPincodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return shipping.Failuref("delhivery: unexpected validation response: %v", err)
	}
	return shipping.Ok()
}

// GetRates queries the invoice charge API and falls back to a local estimate
// when the provider cannot answer
func (a *DelhiveryAdapter) GetRates(ctx context.Context, creds shipping.Credentials, req shipping.RateRequest) ([]shipping.CourierRate, shipping.Result) {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}

	paymentType := "Pre-paid"
	if req.CollectOnDelivery {
		paymentType = "COD"
	}
	query := url.Values{
		"md":    {"S"},
		"ss":    {"Delivered"},
		"o_pin": {req.PickupPincode},
		"d_pin": {req.DeliveryPincode},
		"cgm":   {req.WeightGrams.StringFixed(0)},
		"pt":    {paymentType},
	}
	if req.CollectOnDelivery {
		query.Set("cod", req.DeclaredValue.StringFixed(2))
	}

	body, status, err := a.doRequest(ctx, dc, http.MethodGet, "/api/kinko/v1/invoice/charges/.json?"+query.Encode(), nil, "")
	if err != nil || status >= 400 {
		// Carrier rate API is flaky; answer with a local estimate instead
		return estimateRates(shipping.CourierDelhivery, req), shipping.Empty("delhivery: rate API unavailable, returning estimate")
	}

	var resp DelhiveryChargeResponse
	if err := json.Unmarshal(body, &resp); err != nil || len(resp) == 0 {
		return estimateRates(shipping.CourierDelhivery, req), shipping.Empty("delhivery: unreadable rate response, returning estimate")
	}

	rates := make([]shipping.CourierRate, 0, len(resp))
	for _, charge := range resp {
		total := decimal.NewFromFloat(charge.TotalAmount)
		cod := decimal.NewFromFloat(charge.CODCharges)
		rates = append(rates, shipping.CourierRate{
			CourierCode:   shipping.CourierDelhivery,
			ServiceCode:   "SURFACE",
			ServiceName:   "Delhivery Surface",
			FreightCharge: total.Sub(cod),
			CODCharge:     cod,
			TotalCharge:   total,
			IsSurface:     true,
		})
	}
	shipping.SortRatesByTotal(rates)
	return rates, shipping.Ok()
}

// CreateShipment manifests a shipment and returns the assigned waybill
func (a *DelhiveryAdapter) CreateShipment(ctx context.Context, creds shipping.Credentials, req shipping.ShipmentRequest) (*shipping.ShipmentResponse, shipping.Result) {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}

	paymentMode := "Prepaid"
	codAmount := ""
	if req.CollectOnDelivery {
		paymentMode = "COD"
		codAmount = req.CODAmount.StringFixed(2)
	}

	descs := make([]string, 0, len(req.Items))
	quantity := 0
	for _, item := range req.Items {
		descs = append(descs, item.Name)
		quantity += item.Quantity
	}

	payload := DelhiveryCreatePayload{
		Shipments: []DelhiveryShipment{{
			Name:          req.Delivery.Name,
			Address:       req.Delivery.Address,
			Pin:           req.Delivery.Pincode,
			City:          req.Delivery.City,
			State:         req.Delivery.State,
			Country:       req.Delivery.Country,
			Phone:         req.Delivery.Phone,
			OrderID:       req.OrderReference,
			PaymentMode:   paymentMode,
			CODAmount:     codAmount,
			TotalAmount:   req.DeclaredValue.StringFixed(2),
			SellerName:    req.Pickup.Name,
			SellerAddress: req.Pickup.Address,
			ProductsDesc:  strings.Join(descs, ", "),
			Quantity:      fmt.Sprintf("%d", quantity),
			WeightGrams:   req.WeightGrams.StringFixed(0),
			ShipmentLen:   req.LengthCM.StringFixed(0),
			ShipmentWidth: req.WidthCM.StringFixed(0),
			ShipmentHt:    req.HeightCM.StringFixed(0),
		}},
		PickupLoc: DelhiveryPickupLoc{Name: dc.PickupLocation},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, shipping.Failuref("delhivery: failed to encode manifest: %v", err)
	}
	form := url.Values{"format": {"json"}, "data": {string(data)}}

	body, status, err := a.doRequest(ctx, dc, http.MethodPost, "/api/cmu/create.json",
		strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, shipping.Failuref("delhivery: manifest request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("delhivery: manifest returned HTTP %d", status)
	}

	var resp DelhiveryCreateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("delhivery: unreadable manifest response: %v", err)
	}
	if len(resp.Packages) == 0 {
		return nil, shipping.Failuref("delhivery: manifest rejected: %s", resp.RMK)
	}

	pkg := resp.Packages[0]
	if pkg.Waybill == "" {
		return nil, shipping.Failuref("delhivery: no waybill assigned: %v", pkg.Remarks)
	}

	return &shipping.ShipmentResponse{
		AWB:               pkg.Waybill,
		CourierName:       "Delhivery",
		CourierShipmentID: pkg.RefNum,
		TrackingURL:       "https://www.delhivery.com/track/package/" + pkg.Waybill,
	}, shipping.Ok()
}

// GetTracking returns the current status and scan history for an AWB
func (a *DelhiveryAdapter) GetTracking(ctx context.Context, creds shipping.Credentials, awb string) (*shipping.TrackingResponse, shipping.Result) {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}

	query := url.Values{"waybill": {awb}}
	body, status, err := a.doRequest(ctx, dc, http.MethodGet, "/api/v1/packages/json/?"+query.Encode(), nil, "")
	if err != nil {
		return nil, shipping.Failuref("delhivery: tracking request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("delhivery: tracking returned HTTP %d", status)
	}

	var resp DelhiveryTrackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("delhivery: unreadable tracking response: %v", err)
	}
	if len(resp.ShipmentData) == 0 {
		if resp.Error != "" {
			return nil, shipping.Failuref("delhivery: %s", resp.Error)
		}
		return nil, shipping.Empty("delhivery: no tracking data for AWB " + awb)
	}

	track := resp.ShipmentData[0].Shipment
	result := &shipping.TrackingResponse{
		AWB:             track.AWB,
		CourierCode:     shipping.CourierDelhivery,
		Status:          mapDelhiveryStatus(track.Status.Status, track.Status.StatusType),
		CurrentLocation: track.Status.Location,
	}
	if t := parseDelhiveryTime(track.ExpectedDate); t != nil {
		result.ExpectedDelivery = t
	}
	if t := parseDelhiveryTime(track.DeliveryDate); t != nil {
		result.DeliveredAt = t
	}

	for _, scan := range track.Scans {
		event := shipping.TrackingEvent{
			Status:   mapDelhiveryStatus(scan.ScanDetail.Status, scan.ScanDetail.StatusType),
			Location: scan.ScanDetail.Location,
			Remarks:  scan.ScanDetail.Instructions,
		}
		if t := parseDelhiveryTime(scan.ScanDetail.StateDate); t != nil {
			event.Timestamp = *t
		}
		result.Events = append(result.Events, event)
		if event.Status != nil && event.Status.IsNDR() {
			result.NDRReason = scan.ScanDetail.Instructions
		}
	}
	return result, shipping.Ok()
}

// CancelShipment cancels the shipment via the package edit API
func (a *DelhiveryAdapter) CancelShipment(ctx context.Context, creds shipping.Credentials, awb string) shipping.Result {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return shipping.Failure(err.Error())
	}

	payload, err := json.Marshal(map[string]any{"waybill": awb, "cancellation": true})
	if err != nil {
		return shipping.Failuref("delhivery: failed to encode cancel request: %v", err)
	}

	body, status, err := a.doRequest(ctx, dc, http.MethodPost, "/api/p/edit",
		strings.NewReader(string(payload)), "application/json")
	if err != nil {
		return shipping.Failuref("delhivery: cancel request failed: %v", err)
	}
	if status >= 400 {
		return shipping.Failuref("delhivery: cancel returned HTTP %d", status)
	}

	var resp DelhiveryEditResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return shipping.Failuref("delhivery: unreadable cancel response: %v", err)
	}
	if !resp.Status {
		return shipping.Failuref("delhivery: cancellation rejected: %s", resp.Remarks)
	}
	return shipping.Ok()
}

// GetLabel downloads the packing slip PDF for an AWB
func (a *DelhiveryAdapter) GetLabel(ctx context.Context, creds shipping.Credentials, awb string) ([]byte, shipping.Result) {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}

	query := url.Values{"wbns": {awb}, "pdf": {"true"}}
	body, status, err := a.doRequest(ctx, dc, http.MethodGet, "/api/p/packing_slip?"+query.Encode(), nil, "")
	if err != nil {
		return nil, shipping.Failuref("delhivery: label request failed: %v", err)
	}
	if status == http.StatusNotFound {
		return nil, shipping.Empty("delhivery: label not yet generated for AWB " + awb)
	}
	if status >= 400 {
		return nil, shipping.Failuref("delhivery: label returned HTTP %d", status)
	}
	if len(body) == 0 {
		return nil, shipping.Empty("delhivery: empty label for AWB " + awb)
	}
	return body, shipping.Ok()
}

// SchedulePickup books a pickup slot at the registered warehouse
func (a *DelhiveryAdapter) SchedulePickup(ctx context.Context, creds shipping.Credentials, req shipping.PickupRequest) (*shipping.PickupResponse, shipping.Result) {
	dc, err := delhiveryCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}

	location := req.PickupLocation
	if location == "" {
		location = dc.PickupLocation
	}
	payload, err := json.Marshal(map[string]any{
		"pickup_location":        location,
		"pickup_date":            req.PickupDate.Format("2006-01-02"),
		"pickup_time":            "11:00:00",
		"expected_package_count": req.PackageCount,
	})
	if err != nil {
		return nil, shipping.Failuref("delhivery: failed to encode pickup request: %v", err)
	}

	body, status, err := a.doRequest(ctx, dc, http.MethodPost, "/fm/request/new/",
		strings.NewReader(string(payload)), "application/json")
	if err != nil {
		return nil, shipping.Failuref("delhivery: pickup request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("delhivery: pickup returned HTTP %d", status)
	}

	var resp DelhiveryPickupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("delhivery: unreadable pickup response: %v", err)
	}
	if resp.ErrorMessage != "" {
		return nil, shipping.Failuref("delhivery: pickup rejected: %s", resp.ErrorMessage)
	}

	result := &shipping.PickupResponse{
		PickupID:  fmt.Sprintf("%d", resp.PickupID),
		Confirmed: resp.PickupID > 0,
	}
	if t := parseDelhiveryTime(resp.PickupDate); t != nil {
		result.ScheduledDate = *t
	}
	return result, shipping.Ok()
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// doRequest performs an authenticated HTTP request against the Delhivery API
func (a *DelhiveryAdapter) doRequest(ctx context.Context, dc delhiveryCredentials, method, path string, body io.Reader, contentType string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("delhivery: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+dc.APIToken)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shipping.ErrCourierRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("delhivery: failed to read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// parseDelhiveryTime parses Delhivery's timestamp formats, returning nil for
// empty or unparseable values
func parseDelhiveryTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Status Mapping
// ---------------------------------------------------------------------------

// mapDelhiveryStatus maps a Delhivery scan status onto the canonical lifecycle.
// Unrecognized statuses map to nil so they never advance a shipment. The same
// table serves the polling and webhook paths.
func mapDelhiveryStatus(status, statusType string) *shipping.ShipmentStatus {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "MANIFESTED":
		return shipping.StatusPtr(shipping.StatusManifested)
	case "PICKED UP", "PICKED":
		return shipping.StatusPtr(shipping.StatusPickedUp)
	case "IN TRANSIT":
		return shipping.StatusPtr(shipping.StatusInTransit)
	case "DISPATCHED":
		// Dispatched from the last-mile facility means out for delivery
		return shipping.StatusPtr(shipping.StatusOutForDelivery)
	case "DELIVERED":
		if strings.EqualFold(statusType, "RT") {
			return shipping.StatusPtr(shipping.StatusRTODelivered)
		}
		return shipping.StatusPtr(shipping.StatusDelivered)
	case "PENDING":
		if strings.EqualFold(statusType, "UD") {
			return shipping.StatusPtr(shipping.StatusDeliveryFailed)
		}
		return nil
	case "RTO", "RETURNED", "IN TRANSIT-RTO":
		if strings.EqualFold(statusType, "DL") {
			return shipping.StatusPtr(shipping.StatusRTODelivered)
		}
		return shipping.StatusPtr(shipping.StatusRTOInitiated)
	case "LOST":
		return shipping.StatusPtr(shipping.StatusLost)
	case "CANCELED", "CANCELLED":
		return shipping.StatusPtr(shipping.StatusCancelled)
	default:
		return nil
	}
}

// Ensure DelhiveryAdapter implements the CourierProvider interface
var _ shipping.CourierProvider = (*DelhiveryAdapter)(nil)
