package courier

import (
	"encoding/json"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// BluedartWebhookNormalizer parses Blue Dart status push payloads into the
// shared webhook event shape
type BluedartWebhookNormalizer struct{}

// NewBluedartWebhookNormalizer creates a Blue Dart webhook normalizer
func NewBluedartWebhookNormalizer() *BluedartWebhookNormalizer {
	return &BluedartWebhookNormalizer{}
}

// Courier returns the courier code the normalizer handles
func (n *BluedartWebhookNormalizer) Courier() shipping.CourierCode {
	return shipping.CourierBluedart
}

// HandleWebhook parses a raw Blue Dart webhook payload. It uses the same scan
// table as the tracking poll so the two paths cannot disagree.
func (n *BluedartWebhookNormalizer) HandleWebhook(raw []byte) shipping.WebhookResult {
	var payload BluedartWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return shipping.WebhookResult{OK: false, Message: "bluedart: unreadable webhook payload"}
	}
	if payload.WaybillNo == "" {
		return shipping.WebhookResult{OK: false, Message: "bluedart: webhook payload missing waybill"}
	}

	return shipping.WebhookResult{
		OK:              true,
		AWB:             payload.WaybillNo,
		ExternalOrderID: payload.RefNo,
		NewStatus:       mapBluedartStatus(payload.Scan, payload.ScanType),
		Location:        payload.Location,
		Message:         payload.Comments,
	}
}

// Ensure BluedartWebhookNormalizer implements the WebhookNormalizer interface
var _ shipping.WebhookNormalizer = (*BluedartWebhookNormalizer)(nil)
