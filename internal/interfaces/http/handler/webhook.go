package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	appshipping "github.com/ecommanager/backend/internal/application/shipping"
	"github.com/ecommanager/backend/internal/domain/shipping"
)

// WebhookHandler is the courier webhook ingress. Carriers retry on
// non-2xx responses, so anything the normalizer rejects is answered 200
// with an ignored marker rather than provoking a retry storm.
type WebhookHandler struct {
	BaseHandler
	webhooks *appshipping.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(webhooks *appshipping.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhooks: webhooks}
}

// RegisterRoutes registers webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/courier/:code", h.HandleCourierWebhook)
}

// HandleCourierWebhook forwards the raw payload to the carrier's normalizer
// and applies the resulting status change by AWB
func (h *WebhookHandler) HandleCourierWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.BadRequest(c, "unreadable payload")
		return
	}

	shipment, err := h.webhooks.HandleWebhook(c.Request.Context(),
		shipping.CourierCode(c.Param("code")), raw)
	switch {
	case err == nil:
		h.Success(c, gin.H{"awb": shipment.AWB, "status": shipment.Status.String()})
	case isIgnorableWebhookError(err):
		c.JSON(http.StatusOK, gin.H{"ignored": true})
	default:
		h.HandleError(c, err)
	}
}

// isIgnorableWebhookError reports payloads that should be acknowledged
// without processing: malformed bodies and AWBs this system never issued
func isIgnorableWebhookError(err error) bool {
	return errorIsAny(err,
		shipping.ErrCourierInvalidResponse,
		shipping.ErrShipmentNotFound,
		shipping.ErrCourierNotRegistered,
	)
}
