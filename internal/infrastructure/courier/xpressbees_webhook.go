package courier

import (
	"encoding/json"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// XpressbeesWebhookNormalizer parses Xpressbees status push payloads into the
// shared webhook event shape
type XpressbeesWebhookNormalizer struct{}

// NewXpressbeesWebhookNormalizer creates an Xpressbees webhook normalizer
func NewXpressbeesWebhookNormalizer() *XpressbeesWebhookNormalizer {
	return &XpressbeesWebhookNormalizer{}
}

// Courier returns the courier code the normalizer handles
func (n *XpressbeesWebhookNormalizer) Courier() shipping.CourierCode {
	return shipping.CourierXpressbees
}

// HandleWebhook parses a raw Xpressbees webhook payload. It uses the same
// status table as the tracking poll so the two paths cannot disagree.
func (n *XpressbeesWebhookNormalizer) HandleWebhook(raw []byte) shipping.WebhookResult {
	var payload XpressbeesWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return shipping.WebhookResult{OK: false, Message: "xpressbees: unreadable webhook payload"}
	}
	if payload.AWBNumber == "" {
		return shipping.WebhookResult{OK: false, Message: "xpressbees: webhook payload missing AWB"}
	}

	return shipping.WebhookResult{
		OK:              true,
		AWB:             payload.AWBNumber,
		ExternalOrderID: payload.OrderNumber,
		NewStatus:       mapXpressbeesStatus(payload.Status),
		Location:        payload.Location,
		Message:         payload.Remarks,
	}
}

// Ensure XpressbeesWebhookNormalizer implements the WebhookNormalizer interface
var _ shipping.WebhookNormalizer = (*XpressbeesWebhookNormalizer)(nil)
