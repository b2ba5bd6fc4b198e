package courier

import (
	"encoding/json"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// DelhiveryWebhookNormalizer parses Delhivery status push payloads into the
// shared webhook event shape
type DelhiveryWebhookNormalizer struct{}

// NewDelhiveryWebhookNormalizer creates a Delhivery webhook normalizer
func NewDelhiveryWebhookNormalizer() *DelhiveryWebhookNormalizer {
	return &DelhiveryWebhookNormalizer{}
}

// Courier returns the courier code the normalizer handles
func (n *DelhiveryWebhookNormalizer) Courier() shipping.CourierCode {
	return shipping.CourierDelhivery
}

// HandleWebhook parses a raw Delhivery webhook payload. It uses the same
// status table as the tracking poll so the two paths cannot disagree.
func (n *DelhiveryWebhookNormalizer) HandleWebhook(raw []byte) shipping.WebhookResult {
	var payload DelhiveryWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return shipping.WebhookResult{OK: false, Message: "delhivery: unreadable webhook payload"}
	}
	if payload.Shipment.AWB == "" {
		return shipping.WebhookResult{OK: false, Message: "delhivery: webhook payload missing AWB"}
	}

	scan := payload.Shipment.Status
	return shipping.WebhookResult{
		OK:              true,
		AWB:             payload.Shipment.AWB,
		ExternalOrderID: payload.Shipment.ReferenceNo,
		NewStatus:       mapDelhiveryStatus(scan.Status, scan.StatusType),
		Location:        scan.Location,
		Message:         scan.Instructions,
	}
}

// Ensure DelhiveryWebhookNormalizer implements the WebhookNormalizer interface
var _ shipping.WebhookNormalizer = (*DelhiveryWebhookNormalizer)(nil)
