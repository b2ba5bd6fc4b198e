package shipping

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// WebhookService applies carrier webhook events to shipments. The raw
// payload is normalized by the carrier's WebhookNormalizer and joined onto
// the internal shipment by AWB.
type WebhookService struct {
	shipments shipping.ShipmentRepository
	registry  shipping.Registry
	logger    *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(shipments shipping.ShipmentRepository, registry shipping.Registry, logger *zap.Logger) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookService{
		shipments: shipments,
		registry:  registry,
		logger:    logger,
	}
}

// HandleWebhook normalizes a raw carrier payload and applies the status
// change to the matching shipment. Unknown carrier statuses are logged
// no-ops; the webhook is still acknowledged so the carrier does not retry.
func (s *WebhookService) HandleWebhook(ctx context.Context, code shipping.CourierCode, raw []byte) (*shipping.Shipment, error) {
	normalizer, err := s.registry.Normalizer(code)
	if err != nil {
		return nil, err
	}

	event := normalizer.HandleWebhook(raw)
	if !event.OK {
		s.logger.Warn("discarding unparseable courier webhook",
			zap.String("courier", code.String()))
		return nil, shipping.ErrCourierInvalidResponse
	}

	shipment, err := s.shipments.FindByAWB(ctx, event.AWB)
	if err != nil {
		return nil, err
	}

	if event.NewStatus == nil {
		s.logger.Info("courier webhook carried no status change",
			zap.String("courier", code.String()),
			zap.String("awb", event.AWB),
			zap.String("message", event.Message))
		return shipment, nil
	}

	changed := shipment.ApplyStatus(event.NewStatus, event.Location, time.Now())
	if event.NewStatus.IsNDR() {
		shipment.RecordNDRReason(event.Message)
		changed = true
	}
	if changed {
		if err := s.shipments.Save(ctx, shipment); err != nil {
			return nil, err
		}
		s.logger.Info("shipment status updated from webhook",
			zap.String("courier", code.String()),
			zap.String("awb", event.AWB),
			zap.String("status", event.NewStatus.String()))
	}
	return shipment, nil
}
