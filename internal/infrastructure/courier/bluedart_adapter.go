package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// bluedartTokenTTL is how long a JWT token is reused before a fresh login
const bluedartTokenTTL = 50 * time.Minute

// BluedartAdapter implements the CourierProvider interface for Blue Dart
type BluedartAdapter struct {
	config     *BluedartConfig
	httpClient *http.Client

	// tokens caches JWT tokens per licence key
	tokens map[string]cachedToken
	mu     sync.Mutex // Protects tokens map
}

type cachedToken struct {
	token     string
	fetchedAt time.Time
}

// NewBluedartAdapter creates a new Blue Dart adapter with the given configuration
func NewBluedartAdapter(config *BluedartConfig) (*BluedartAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &BluedartAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		tokens: make(map[string]cachedToken),
	}, nil
}

// Code returns the courier code this adapter handles
func (a *BluedartAdapter) Code() shipping.CourierCode {
	return shipping.CourierBluedart
}

// ValidateCredentials performs a JWT login, the cheapest authenticated call
func (a *BluedartAdapter) ValidateCredentials(ctx context.Context, creds shipping.Credentials) shipping.Result {
	bc, err := bluedartCredentialsFrom(creds)
	if err != nil {
		return shipping.Failure(err.Error())
	}
	if _, err := a.login(ctx, bc); err != nil {
		return shipping.Failuref("bluedart: login failed: %v", err)
	}
	return shipping.Ok()
}

// GetRates answers with a local estimate. Blue Dart exposes no public rate
// API; contracted tariffs are applied at invoicing.
func (a *BluedartAdapter) GetRates(ctx context.Context, creds shipping.Credentials, req shipping.RateRequest) ([]shipping.CourierRate, shipping.Result) {
	if _, err := bluedartCredentialsFrom(creds); err != nil {
		return nil, shipping.Failure(err.Error())
	}
	return estimateRates(shipping.CourierBluedart, req), shipping.Empty("bluedart: no rate API, returning estimate")
}

// CreateShipment generates a waybill. The order reference travels as the
// credit reference number so a retried request maps to the same carrier order.
func (a *BluedartAdapter) CreateShipment(ctx context.Context, creds shipping.Credentials, req shipping.ShipmentRequest) (*shipping.ShipmentResponse, shipping.Result) {
	bc, err := bluedartCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, bc)
	if err != nil {
		return nil, shipping.Failuref("bluedart: login failed: %v", err)
	}

	productCode := "D"
	collectable := ""
	if req.CollectOnDelivery {
		productCode = "C"
		collectable = req.CODAmount.StringFixed(2)
	}

	descs := make([]string, 0, len(req.Items))
	for _, item := range req.Items {
		descs = append(descs, item.Name)
	}

	weightKg := req.WeightGrams.Div(weightGramsPerKilo)
	payload := BluedartWaybillRequest{
		Profile: BluedartProfile{
			LoginID:    bc.LoginID,
			LicenceKey: bc.LicenceKey,
			APIType:    "S",
		},
		Request: BluedartWaybillDetails{
			Consignee: BluedartConsignee{
				ConsigneeName:     req.Delivery.Name,
				ConsigneeAddress1: req.Delivery.Address,
				ConsigneePincode:  req.Delivery.Pincode,
				ConsigneeMobile:   req.Delivery.Phone,
				ConsigneeEmailID:  req.Delivery.Email,
			},
			Shipper: BluedartShipper{
				CustomerName:     req.Pickup.Name,
				CustomerAddress1: req.Pickup.Address,
				CustomerPincode:  req.Pickup.Pincode,
				CustomerMobile:   req.Pickup.Phone,
				CustomerCode:     bc.CustomerCode,
				OriginArea:       bc.OriginArea,
			},
			Services: BluedartServices{
				ProductCode:       productCode,
				PieceCount:        1,
				ActualWeight:      weightKg.StringFixed(2),
				CollectableAmount: collectable,
				DeclaredValue:     req.DeclaredValue.StringFixed(2),
				CreditReferenceNo: req.OrderReference,
				Dimensions: []BluedartDimension{{
					Length: req.LengthCM.StringFixed(0),
					Width:  req.WidthCM.StringFixed(0),
					Height: req.HeightCM.StringFixed(0),
					Count:  1,
				}},
				Commodity: BluedartCommodity{CommodityDetail1: strings.Join(descs, ", ")},
			},
		},
	}

	body, status, err := a.doRequest(ctx, token, http.MethodPost, "/in/transportation/waybill/v1/GenerateWayBill", payload)
	if err != nil {
		return nil, shipping.Failuref("bluedart: waybill request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("bluedart: waybill returned HTTP %d", status)
	}

	var resp BluedartWaybillResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("bluedart: unreadable waybill response: %v", err)
	}
	result := resp.GenerateWayBillResult
	if result.IsError || result.AWBNo == "" {
		return nil, shipping.Failuref("bluedart: waybill rejected: %s", bluedartStatusMessage(result.Status))
	}

	return &shipping.ShipmentResponse{
		AWB:               result.AWBNo,
		CourierName:       "Blue Dart",
		CourierShipmentID: result.TokenNumber,
		TrackingURL:       "https://www.bluedart.com/tracking?trackFor=0&trackNo=" + result.AWBNo,
	}, shipping.Ok()
}

// GetTracking returns the current status and scan history for an AWB
func (a *BluedartAdapter) GetTracking(ctx context.Context, creds shipping.Credentials, awb string) (*shipping.TrackingResponse, shipping.Result) {
	bc, err := bluedartCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, bc)
	if err != nil {
		return nil, shipping.Failuref("bluedart: login failed: %v", err)
	}

	query := url.Values{"handler": {"tnt"}, "numbers": {awb}, "scans": {"1"}, "format": {"json"}}
	body, status, err := a.doRequest(ctx, token, http.MethodGet, "/in/transportation/tracking/v1/shipment?"+query.Encode(), nil)
	if err != nil {
		return nil, shipping.Failuref("bluedart: tracking request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("bluedart: tracking returned HTTP %d", status)
	}

	var resp BluedartTrackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("bluedart: unreadable tracking response: %v", err)
	}
	if len(resp.ShipmentData.Shipment) == 0 {
		return nil, shipping.Empty("bluedart: no tracking data for AWB " + awb)
	}

	track := resp.ShipmentData.Shipment[0]
	result := &shipping.TrackingResponse{
		AWB:         track.WaybillNo,
		CourierCode: shipping.CourierBluedart,
		Status:      mapBluedartStatus(track.Status, track.StatusType),
	}
	if t := parseBluedartTime(track.ExpectedDate, ""); t != nil {
		result.ExpectedDelivery = t
	}

	for _, scan := range track.Scans {
		event := shipping.TrackingEvent{
			Status:   mapBluedartStatus(scan.Scan, scan.ScanType),
			Location: scan.ScannedLocation,
			Remarks:  scan.Comments,
		}
		if t := parseBluedartTime(scan.ScannedDate, scan.ScannedTime); t != nil {
			event.Timestamp = *t
		}
		result.Events = append(result.Events, event)
		if event.Status != nil {
			if event.Status.IsNDR() {
				result.NDRReason = scan.Scan
			}
			if *event.Status == shipping.StatusDelivered {
				result.DeliveredAt = &event.Timestamp
			}
		}
		result.CurrentLocation = scan.ScannedLocation
	}
	return result, shipping.Ok()
}

// CancelShipment cancels the waybill identified by the AWB
func (a *BluedartAdapter) CancelShipment(ctx context.Context, creds shipping.Credentials, awb string) shipping.Result {
	bc, err := bluedartCredentialsFrom(creds)
	if err != nil {
		return shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, bc)
	if err != nil {
		return shipping.Failuref("bluedart: login failed: %v", err)
	}

	payload := map[string]any{
		"Request": map[string]string{"AWBNo": awb},
		"Profile": BluedartProfile{LoginID: bc.LoginID, LicenceKey: bc.LicenceKey, APIType: "S"},
	}
	body, status, err := a.doRequest(ctx, token, http.MethodPost, "/in/transportation/waybill/v1/CancelWaybill", payload)
	if err != nil {
		return shipping.Failuref("bluedart: cancel request failed: %v", err)
	}
	if status >= 400 {
		return shipping.Failuref("bluedart: cancel returned HTTP %d", status)
	}

	var resp BluedartCancelResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return shipping.Failuref("bluedart: unreadable cancel response: %v", err)
	}
	if resp.CancelWaybillResult.IsError {
		return shipping.Failuref("bluedart: cancellation rejected: %s", bluedartStatusMessage(resp.CancelWaybillResult.Status))
	}
	return shipping.Ok()
}

// GetLabel is not served by a separate endpoint; Blue Dart returns the label
// inside the waybill generation response, which the shipment flow archives
func (a *BluedartAdapter) GetLabel(ctx context.Context, creds shipping.Credentials, awb string) ([]byte, shipping.Result) {
	if _, err := bluedartCredentialsFrom(creds); err != nil {
		return nil, shipping.Failure(err.Error())
	}
	return nil, shipping.Empty("bluedart: label is only available at waybill generation")
}

// SchedulePickup registers a pickup with the carrier
func (a *BluedartAdapter) SchedulePickup(ctx context.Context, creds shipping.Credentials, req shipping.PickupRequest) (*shipping.PickupResponse, shipping.Result) {
	bc, err := bluedartCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, bc)
	if err != nil {
		return nil, shipping.Failuref("bluedart: login failed: %v", err)
	}

	weightKg := req.WeightGrams.Div(weightGramsPerKilo)
	payload := map[string]any{
		"Request": map[string]any{
			"CustomerCode":    bc.CustomerCode,
			"AreaCode":        bc.OriginArea,
			"ShipmentPickupDate": req.PickupDate.Format("2006-01-02"),
			"NumberofPieces":  req.PackageCount,
			"WeightofShipment": weightKg.StringFixed(2),
		},
		"Profile": BluedartProfile{LoginID: bc.LoginID, LicenceKey: bc.LicenceKey, APIType: "S"},
	}
	body, status, err := a.doRequest(ctx, token, http.MethodPost, "/in/transportation/pickup/v1/RegisterPickup", payload)
	if err != nil {
		return nil, shipping.Failuref("bluedart: pickup request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("bluedart: pickup returned HTTP %d", status)
	}

	var resp BluedartPickupResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("bluedart: unreadable pickup response: %v", err)
	}
	if resp.RegisterPickupResult.IsError {
		return nil, shipping.Failuref("bluedart: pickup rejected: %s", bluedartStatusMessage(resp.RegisterPickupResult.Status))
	}

	return &shipping.PickupResponse{
		PickupID:      resp.RegisterPickupResult.TokenNumber,
		ScheduledDate: req.PickupDate,
		Confirmed:     true,
	}, shipping.Ok()
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// login returns a cached JWT token or performs a fresh login
func (a *BluedartAdapter) login(ctx context.Context, bc bluedartCredentials) (string, error) {
	a.mu.Lock()
	cached, ok := a.tokens[bc.LicenceKey]
	a.mu.Unlock()
	if ok && time.Since(cached.fetchedAt) < bluedartTokenTTL {
		return cached.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.BaseURL+"/in/transportation/token/v1/login", nil)
	if err != nil {
		return "", fmt.Errorf("bluedart: failed to create login request: %w", err)
	}
	req.Header.Set("ClientID", bc.LicenceKey)
	req.Header.Set("LoginID", bc.LoginID)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shipping.ErrCourierRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("bluedart: failed to read login response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("%w: login HTTP %d", shipping.ErrCourierRequestFailed, resp.StatusCode)
	}

	var tokenResp BluedartTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("%w: %v", shipping.ErrCourierInvalidResponse, err)
	}
	if tokenResp.JWTToken == "" {
		return "", fmt.Errorf("%w: %s", shipping.ErrMissingCredentials, tokenResp.ErrorMessage)
	}

	a.mu.Lock()
	a.tokens[bc.LicenceKey] = cachedToken{token: tokenResp.JWTToken, fetchedAt: time.Now()}
	a.mu.Unlock()
	return tokenResp.JWTToken, nil
}

// doRequest performs an authenticated HTTP request against the Blue Dart gateway
func (a *BluedartAdapter) doRequest(ctx context.Context, token, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("bluedart: failed to encode request: %w", err)
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("bluedart: failed to create request: %w", err)
	}
	req.Header.Set("JWTToken", token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", shipping.ErrCourierRequestFailed, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("bluedart: failed to read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// bluedartStatusMessage flattens a status array into one message
func bluedartStatusMessage(statuses []struct {
	StatusCode        string `json:"StatusCode"`
	StatusInformation string `json:"StatusInformation"`
}) string {
	parts := make([]string, 0, len(statuses))
	for _, s := range statuses {
		parts = append(parts, s.StatusInformation)
	}
	return strings.Join(parts, "; ")
}

// parseBluedartTime parses Blue Dart's split date and time fields
func parseBluedartTime(date, clock string) *time.Time {
	if date == "" {
		return nil
	}
	value := date
	layout := "02-Jan-2006"
	if clock != "" {
		value = date + " " + clock
		layout = "02-Jan-2006 15:04"
	}
	if t, err := time.Parse(layout, value); err == nil {
		return &t
	}
	for _, l := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(l, date); err == nil {
			return &t
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Status Mapping
// ---------------------------------------------------------------------------

// mapBluedartStatus maps a Blue Dart scan onto the canonical lifecycle.
// Unrecognized scans map to nil so they never advance a shipment. The same
// table serves the polling and webhook paths.
func mapBluedartStatus(scan, scanType string) *shipping.ShipmentStatus {
	switch strings.ToUpper(strings.TrimSpace(scanType)) {
	case "PU":
		return shipping.StatusPtr(shipping.StatusPickedUp)
	case "IT":
		if strings.Contains(strings.ToUpper(scan), "OUT FOR DELIVERY") {
			return shipping.StatusPtr(shipping.StatusOutForDelivery)
		}
		return shipping.StatusPtr(shipping.StatusInTransit)
	case "OFD":
		return shipping.StatusPtr(shipping.StatusOutForDelivery)
	case "DL":
		return shipping.StatusPtr(shipping.StatusDelivered)
	case "UD", "NDR":
		return shipping.StatusPtr(shipping.StatusDeliveryFailed)
	case "RT":
		return shipping.StatusPtr(shipping.StatusRTOInitiated)
	case "RD":
		return shipping.StatusPtr(shipping.StatusRTODelivered)
	case "LT":
		return shipping.StatusPtr(shipping.StatusLost)
	case "CN":
		return shipping.StatusPtr(shipping.StatusCancelled)
	}

	upper := strings.ToUpper(scan)
	switch {
	case strings.Contains(upper, "OUT FOR DELIVERY"):
		return shipping.StatusPtr(shipping.StatusOutForDelivery)
	case strings.Contains(upper, "DELIVERED"):
		return shipping.StatusPtr(shipping.StatusDelivered)
	case strings.Contains(upper, "PICKED"):
		return shipping.StatusPtr(shipping.StatusPickedUp)
	default:
		return nil
	}
}

// Ensure BluedartAdapter implements the CourierProvider interface
var _ shipping.CourierProvider = (*BluedartAdapter)(nil)
