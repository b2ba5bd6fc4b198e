package courier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// xpressbeesTokenTTL is how long an access token is reused before a fresh login
const xpressbeesTokenTTL = 6 * time.Hour

// XpressbeesAdapter implements the CourierProvider interface for Xpressbees
type XpressbeesAdapter struct {
	config     *XpressbeesConfig
	httpClient *http.Client

	// tokens caches access tokens per account email
	tokens map[string]cachedToken
	mu     sync.Mutex // Protects tokens map
}

// NewXpressbeesAdapter creates a new Xpressbees adapter with the given configuration
func NewXpressbeesAdapter(config *XpressbeesConfig) (*XpressbeesAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &XpressbeesAdapter{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TimeoutSeconds) * time.Second,
		},
		tokens: make(map[string]cachedToken),
	}, nil
}

// Code returns the courier code this adapter handles
func (a *XpressbeesAdapter) Code() shipping.CourierCode {
	return shipping.CourierXpressbees
}

// ValidateCredentials exchanges the email and password for a token. A cached
// token from an earlier call counts as valid.
func (a *XpressbeesAdapter) ValidateCredentials(ctx context.Context, creds shipping.Credentials) shipping.Result {
	xc, err := xpressbeesCredentialsFrom(creds)
	if err != nil {
		return shipping.Failure(err.Error())
	}
	if _, err := a.login(ctx, xc, creds.AccessToken); err != nil {
		return shipping.Failuref("xpressbees: login failed: %v", err)
	}
	return shipping.Ok()
}

// GetRates answers with a local estimate. The Xpressbees serviceability API
// lists couriers without charges, so there is nothing to quote from.
func (a *XpressbeesAdapter) GetRates(ctx context.Context, creds shipping.Credentials, req shipping.RateRequest) ([]shipping.CourierRate, shipping.Result) {
	if _, err := xpressbeesCredentialsFrom(creds); err != nil {
		return nil, shipping.Failure(err.Error())
	}
	return estimateRates(shipping.CourierXpressbees, req), shipping.Empty("xpressbees: no rate API, returning estimate")
}

// CreateShipment creates a shipment and returns the assigned AWB. The order
// number is the carrier-side idempotency reference; a retried request with
// the same number maps onto the existing carrier order.
func (a *XpressbeesAdapter) CreateShipment(ctx context.Context, creds shipping.Credentials, req shipping.ShipmentRequest) (*shipping.ShipmentResponse, shipping.Result) {
	xc, err := xpressbeesCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, xc, creds.AccessToken)
	if err != nil {
		return nil, shipping.Failuref("xpressbees: login failed: %v", err)
	}

	paymentType := "prepaid"
	collectable := ""
	if req.CollectOnDelivery {
		paymentType = "cod"
		collectable = req.CODAmount.StringFixed(2)
	}

	items := make([]XpressbeesOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, XpressbeesOrderItem{
			Name:  item.Name,
			SKU:   item.SKU,
			Qty:   strconv.Itoa(item.Quantity),
			Price: item.UnitPrice.StringFixed(2),
		})
	}

	payload := XpressbeesShipmentRequest{
		OrderNumber:       req.OrderReference,
		PaymentType:       paymentType,
		OrderAmount:       req.DeclaredValue.StringFixed(2),
		CollectableAmount: collectable,
		PackageWeight:     req.WeightGrams.StringFixed(0),
		PackageLength:     req.LengthCM.StringFixed(0),
		PackageBreadth:    req.WidthCM.StringFixed(0),
		PackageHeight:     req.HeightCM.StringFixed(0),
		Consignee: XpressbeesAddress{
			Name:    req.Delivery.Name,
			Address: req.Delivery.Address,
			City:    req.Delivery.City,
			State:   req.Delivery.State,
			Pincode: req.Delivery.Pincode,
			Phone:   req.Delivery.Phone,
		},
		Pickup: XpressbeesAddress{
			Name:          req.Pickup.Name,
			Address:       req.Pickup.Address,
			City:          req.Pickup.City,
			State:         req.Pickup.State,
			Pincode:       req.Pickup.Pincode,
			Phone:         req.Pickup.Phone,
			WarehouseName: xc.Warehouse,
		},
		OrderItems: items,
	}

	body, status, err := a.doRequest(ctx, token, http.MethodPost, "/shipments2", payload)
	if err != nil {
		return nil, shipping.Failuref("xpressbees: shipment request failed: %v", err)
	}
	if status >= 400 {
		return nil, shipping.Failuref("xpressbees: shipment returned HTTP %d", status)
	}

	var resp XpressbeesShipmentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("xpressbees: unreadable shipment response: %v", err)
	}
	if !resp.Status || resp.Data.AWBNumber == "" {
		return nil, shipping.Failuref("xpressbees: shipment rejected: %s", resp.Message)
	}

	return &shipping.ShipmentResponse{
		AWB:               resp.Data.AWBNumber,
		CourierName:       resp.Data.CourierName,
		CourierShipmentID: strconv.Itoa(resp.Data.ShipmentID),
		TrackingURL:       "https://www.xpressbees.com/shipment/tracking?awbNo=" + resp.Data.AWBNumber,
	}, shipping.Ok()
}

// GetTracking returns the current status and scan history for an AWB
func (a *XpressbeesAdapter) GetTracking(ctx context.Context, creds shipping.Credentials, awb string) (*shipping.TrackingResponse, shipping.Result) {
	xc, err := xpressbeesCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, xc, creds.AccessToken)
	if err != nil {
		return nil, shipping.Failuref("xpressbees: login failed: %v", err)
	}

	body, status, err := a.doRequest(ctx, token, http.MethodGet, "/shipments2/track/"+awb, nil)
	if err != nil {
		return nil, shipping.Failuref("xpressbees: tracking request failed: %v", err)
	}
	if status == http.StatusNotFound {
		return nil, shipping.Empty("xpressbees: no tracking data for AWB " + awb)
	}
	if status >= 400 {
		return nil, shipping.Failuref("xpressbees: tracking returned HTTP %d", status)
	}

	var resp XpressbeesTrackResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, shipping.Failuref("xpressbees: unreadable tracking response: %v", err)
	}
	if !resp.Status {
		return nil, shipping.Failuref("xpressbees: tracking failed: %s", resp.Message)
	}

	result := &shipping.TrackingResponse{
		AWB:         resp.Data.AWBNumber,
		CourierCode: shipping.CourierXpressbees,
		Status:      mapXpressbeesStatus(resp.Data.Status),
	}
	if t := parseXpressbeesTime(resp.Data.EDD); t != nil {
		result.ExpectedDelivery = t
	}

	for _, scan := range resp.Data.History {
		event := shipping.TrackingEvent{
			Status:   mapXpressbeesStatus(scan.StatusCode),
			Location: scan.Location,
			Remarks:  scan.Message,
		}
		if t := parseXpressbeesTime(scan.EventTime); t != nil {
			event.Timestamp = *t
		}
		result.Events = append(result.Events, event)
		if event.Status != nil {
			if event.Status.IsNDR() {
				result.NDRReason = scan.Message
			}
			if *event.Status == shipping.StatusDelivered {
				result.DeliveredAt = &event.Timestamp
			}
		}
		result.CurrentLocation = scan.Location
	}
	return result, shipping.Ok()
}

// CancelShipment cancels the shipment identified by the AWB
func (a *XpressbeesAdapter) CancelShipment(ctx context.Context, creds shipping.Credentials, awb string) shipping.Result {
	xc, err := xpressbeesCredentialsFrom(creds)
	if err != nil {
		return shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, xc, creds.AccessToken)
	if err != nil {
		return shipping.Failuref("xpressbees: login failed: %v", err)
	}

	body, status, err := a.doRequest(ctx, token, http.MethodPost, "/shipments2/cancel", map[string]string{"awb": awb})
	if err != nil {
		return shipping.Failuref("xpressbees: cancel request failed: %v", err)
	}
	if status >= 400 {
		return shipping.Failuref("xpressbees: cancel returned HTTP %d", status)
	}

	var resp XpressbeesEnvelope
	if err := json.Unmarshal(body, &resp); err != nil {
		return shipping.Failuref("xpressbees: unreadable cancel response: %v", err)
	}
	if !resp.Status {
		return shipping.Failuref("xpressbees: cancellation rejected: %s", resp.Message)
	}
	return shipping.Ok()
}

// GetLabel downloads the label PDF from the URL returned at creation time.
// The creation response carries the URL; this fetches it fresh by AWB.
func (a *XpressbeesAdapter) GetLabel(ctx context.Context, creds shipping.Credentials, awb string) ([]byte, shipping.Result) {
	xc, err := xpressbeesCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	token, err := a.login(ctx, xc, creds.AccessToken)
	if err != nil {
		return nil, shipping.Failuref("xpressbees: login failed: %v", err)
	}

	body, status, err := a.doRequest(ctx, token, http.MethodGet, "/shipments2/label/"+awb, nil)
	if err != nil {
		return nil, shipping.Failuref("xpressbees: label request failed: %v", err)
	}
	if status == http.StatusNotFound {
		return nil, shipping.Empty("xpressbees: label not yet generated for AWB " + awb)
	}
	if status >= 400 {
		return nil, shipping.Failuref("xpressbees: label returned HTTP %d", status)
	}
	if len(body) == 0 {
		return nil, shipping.Empty("xpressbees: empty label for AWB " + awb)
	}
	return body, shipping.Ok()
}

// SchedulePickup is implicit for Xpressbees; pickups run daily from the
// registered warehouse, so scheduling always confirms locally
func (a *XpressbeesAdapter) SchedulePickup(ctx context.Context, creds shipping.Credentials, req shipping.PickupRequest) (*shipping.PickupResponse, shipping.Result) {
	xc, err := xpressbeesCredentialsFrom(creds)
	if err != nil {
		return nil, shipping.Failure(err.Error())
	}
	return &shipping.PickupResponse{
		PickupID:      "daily-" + xc.Warehouse,
		ScheduledDate: req.PickupDate,
		Confirmed:     true,
	}, shipping.Empty("xpressbees: pickups run on the daily warehouse schedule")
}

// ---------------------------------------------------------------------------
// Internal Helpers
// ---------------------------------------------------------------------------

// login returns a usable access token, preferring in order: the token cached
// on the account record, the adapter's in-process cache, then a fresh login
func (a *XpressbeesAdapter) login(ctx context.Context, xc xpressbeesCredentials, storedToken string) (string, error) {
	if storedToken != "" {
		return storedToken, nil
	}

	a.mu.Lock()
	cached, ok := a.tokens[xc.Email]
	a.mu.Unlock()
	if ok && time.Since(cached.fetchedAt) < xpressbeesTokenTTL {
		return cached.token, nil
	}

	payload := map[string]string{"email": xc.Email, "password": xc.Password}
	body, status, err := a.doRequest(ctx, "", http.MethodPost, "/users/login", payload)
	if err != nil {
		return "", err
	}
	if status >= 400 {
		return "", fmt.Errorf("%w: login HTTP %d", shipping.ErrCourierRequestFailed, status)
	}

	var resp XpressbeesLoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", shipping.ErrCourierInvalidResponse, err)
	}
	if !resp.Status || resp.Data == "" {
		return "", shipping.ErrMissingCredentials
	}

	a.mu.Lock()
	a.tokens[xc.Email] = cachedToken{token: resp.Data, fetchedAt: time.Now()}
	a.mu.Unlock()
	return resp.Data, nil
}

// doRequest performs an HTTP request against the Xpressbees API
func (a *XpressbeesAdapter) doRequest(ctx context.Context, token, method, path string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("xpressbees: failed to encode request: %w", err)
		}
		body = strings.NewReader(string(data))
	}

	req, err := http.NewRequestWithContext(ctx, method, a.config.BaseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("xpressbees: failed to create request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
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
		return nil, resp.StatusCode, fmt.Errorf("xpressbees: failed to read response: %w", err)
	}
	return data, resp.StatusCode, nil
}

// parseXpressbeesTime parses Xpressbees timestamps, returning nil for empty
// or unparseable values
func parseXpressbeesTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Status Mapping
// ---------------------------------------------------------------------------

// mapXpressbeesStatus maps an Xpressbees status code onto the canonical
// lifecycle. Unrecognized codes map to nil so they never advance a shipment.
// The same table serves the polling and webhook paths.
func mapXpressbeesStatus(status string) *shipping.ShipmentStatus {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "booked", "pending pickup":
		return shipping.StatusPtr(shipping.StatusManifested)
	case "picked", "picked up":
		return shipping.StatusPtr(shipping.StatusPickedUp)
	case "intransit", "in transit":
		return shipping.StatusPtr(shipping.StatusInTransit)
	case "ofd", "out for delivery":
		return shipping.StatusPtr(shipping.StatusOutForDelivery)
	case "delivered":
		return shipping.StatusPtr(shipping.StatusDelivered)
	case "undelivered", "ndr":
		return shipping.StatusPtr(shipping.StatusDeliveryFailed)
	case "rto", "rto intransit":
		return shipping.StatusPtr(shipping.StatusRTOInitiated)
	case "rto delivered":
		return shipping.StatusPtr(shipping.StatusRTODelivered)
	case "lost":
		return shipping.StatusPtr(shipping.StatusLost)
	case "cancelled", "canceled":
		return shipping.StatusPtr(shipping.StatusCancelled)
	default:
		return nil
	}
}

// Ensure XpressbeesAdapter implements the CourierProvider interface
var _ shipping.CourierProvider = (*XpressbeesAdapter)(nil)
