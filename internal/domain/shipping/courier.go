package shipping

import (
	"context"
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// Courier Errors
// ---------------------------------------------------------------------------

var (
	ErrCourierNotRegistered   = errors.New("shipping: courier not registered")
	ErrCourierNotConfigured   = errors.New("shipping: courier account not configured")
	ErrMissingCredentials     = errors.New("shipping: missing required credentials")
	ErrShipmentNotFound       = errors.New("shipping: shipment not found")
	ErrDuplicateShipment      = errors.New("shipping: shipment already exists for order")
	ErrAWBAssignmentFailed    = errors.New("shipping: AWB assignment failed")
	ErrLabelNotAvailable      = errors.New("shipping: label not available")
	ErrCourierRequestFailed   = errors.New("shipping: courier request failed")
	ErrCourierInvalidResponse = errors.New("shipping: invalid courier response")
)

// ---------------------------------------------------------------------------
// CourierCode
// ---------------------------------------------------------------------------

// CourierCode identifies a carrier integration
type CourierCode string

const (
	// CourierDelhivery represents the Delhivery carrier
	CourierDelhivery CourierCode = "DELHIVERY"
	// CourierBluedart represents the Blue Dart carrier
	CourierBluedart CourierCode = "BLUEDART"
	// CourierXpressbees represents the Xpressbees carrier
	CourierXpressbees CourierCode = "XPRESSBEES"
)

// IsValid returns true if the courier code is valid
func (c CourierCode) IsValid() bool {
	switch c {
	case CourierDelhivery, CourierBluedart, CourierXpressbees:
		return true
	}
	return false
}

// String returns the string representation of CourierCode
func (c CourierCode) String() string {
	return string(c)
}

// ---------------------------------------------------------------------------
// Credentials
// ---------------------------------------------------------------------------

// Credentials holds provider-specific key material. The two key slots are
// reused differently per carrier (API token for Delhivery, licence key and
// login ID for Blue Dart, email and password for Xpressbees). The engine
// treats the whole struct as opaque; only the matching adapter interprets it,
// converting Settings into its typed config immediately after load.
type Credentials struct {
	Key    string
	Secret string
	// Settings carries carrier-specific options such as "pickup_location"
	// or "customer_code". Kept generic only at the persistence boundary.
	Settings map[string]string
	// AccessToken caches a short-lived token for carriers that exchange
	// credentials for one (e.g. Xpressbees)
	AccessToken string
}

// Setting returns the named setting or an empty string
func (c Credentials) Setting(key string) string {
	if c.Settings == nil {
		return ""
	}
	return c.Settings[key]
}

// ---------------------------------------------------------------------------
// Result
// ---------------------------------------------------------------------------

// ResultStatus is the tri-state outcome of a courier operation
type ResultStatus string

const (
	// ResultSuccess indicates the operation succeeded with a value
	ResultSuccess ResultStatus = "SUCCESS"
	// ResultEmpty indicates the operation succeeded without a value
	ResultEmpty ResultStatus = "EMPTY"
	// ResultFailed indicates the operation failed
	ResultFailed ResultStatus = "FAILED"
)

// Result is the structured outcome every adapter method returns. Adapters
// catch provider errors internally and translate them here; provider errors
// never cross the adapter boundary as panics or raw transport errors.
type Result struct {
	Status  ResultStatus
	Message string
}

// Ok returns a success result
func Ok() Result {
	return Result{Status: ResultSuccess}
}

// Empty returns a success-without-value result
func Empty(message string) Result {
	return Result{Status: ResultEmpty, Message: message}
}

// Failure returns a failure result with a human-readable reason
func Failure(message string) Result {
	return Result{Status: ResultFailed, Message: message}
}

// Failuref returns a formatted failure result
func Failuref(format string, args ...any) Result {
	return Result{Status: ResultFailed, Message: fmt.Sprintf(format, args...)}
}

// Succeeded returns true unless the result is a failure
func (r Result) Succeeded() bool {
	return r.Status != ResultFailed
}

// Failed returns true if the result is a failure
func (r Result) Failed() bool {
	return r.Status == ResultFailed
}

// ---------------------------------------------------------------------------
// CourierProvider Port Interface
// ---------------------------------------------------------------------------

// CourierProvider is the port interface every carrier adapter implements.
// One instance is bound to one CourierCode. Implementations live in the
// infrastructure layer (Ports & Adapters); the rest of the system never
// branches on carrier type.
type CourierProvider interface {
	// Code returns the courier code this adapter handles
	Code() CourierCode

	// ValidateCredentials performs the cheapest possible authenticated call
	// and reports failure with a human-readable reason. It never panics.
	ValidateCredentials(ctx context.Context, creds Credentials) Result

	// GetRates returns candidate services for the request sorted ascending
	// by total charge. Adapters may fall back to a locally computed
	// estimate when the provider cannot answer; fallback rates are
	// distinguishable by their service code.
	GetRates(ctx context.Context, creds Credentials, req RateRequest) ([]CourierRate, Result)

	// CreateShipment creates a shipment and assigns an AWB. Adapters reuse
	// an existing carrier-side order on retry where the provider allows,
	// and only fail once AWB assignment is unattainable.
	CreateShipment(ctx context.Context, creds Credentials, req ShipmentRequest) (*ShipmentResponse, Result)

	// GetTracking returns the current status and event history for an AWB
	GetTracking(ctx context.Context, creds Credentials, awb string) (*TrackingResponse, Result)

	// CancelShipment cancels the shipment identified by the AWB
	CancelShipment(ctx context.Context, creds Credentials, awb string) Result

	// GetLabel returns the shipping label bytes for an AWB
	GetLabel(ctx context.Context, creds Credentials, awb string) ([]byte, Result)

	// SchedulePickup schedules a pickup with the carrier
	SchedulePickup(ctx context.Context, creds Credentials, req PickupRequest) (*PickupResponse, Result)
}

// WebhookNormalizer parses a raw carrier webhook payload into the shared
// event shape. Implementations are stateless and tolerate malformed input
// without panicking. They apply the same status-mapping table as the polling
// path so the two can never disagree.
type WebhookNormalizer interface {
	// Courier returns the courier code the normalizer handles
	Courier() CourierCode

	// HandleWebhook parses the raw payload. OK is false for payloads that
	// could not be understood; NewStatus is nil when the carrier status
	// does not map to a canonical status.
	HandleWebhook(raw []byte) WebhookResult
}

// WebhookResult is the normalized carrier webhook event
type WebhookResult struct {
	OK              bool
	AWB             string
	ExternalOrderID string
	NewStatus       *ShipmentStatus
	Location        string
	Message         string
}

// Registry provides access to registered courier adapters and webhook
// normalizers by courier code.
type Registry interface {
	// Provider returns the adapter for the given code
	Provider(code CourierCode) (CourierProvider, error)

	// Normalizer returns the webhook normalizer for the given code
	Normalizer(code CourierCode) (WebhookNormalizer, error)

	// Providers returns all registered adapters
	Providers() []CourierProvider
}
