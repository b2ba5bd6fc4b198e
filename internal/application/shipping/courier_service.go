// Package shipping orchestrates courier operations: account configuration,
// rate shopping, shipment creation, tracking, cancellation, labels and
// pickups. Carrier specifics stay behind the CourierProvider port.
package shipping

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// labelContentType is what every supported carrier returns labels as
const labelContentType = "application/pdf"

// CourierService coordinates courier accounts, adapters and shipments
type CourierService struct {
	accounts  shipping.AccountRepository
	shipments shipping.ShipmentRepository
	registry  shipping.Registry
	labels    LabelStore
	logger    *zap.Logger
}

// NewCourierService creates a new CourierService. labels may be nil when no
// object storage is configured; label archiving is then unavailable.
func NewCourierService(
	accounts shipping.AccountRepository,
	shipments shipping.ShipmentRepository,
	registry shipping.Registry,
	labels LabelStore,
	logger *zap.Logger,
) *CourierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourierService{
		accounts:  accounts,
		shipments: shipments,
		registry:  registry,
		labels:    labels,
		logger:    logger,
	}
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

// ConfigureAccount validates credentials against the carrier and saves the
// account. Validation failure keeps the previous account untouched.
func (s *CourierService) ConfigureAccount(ctx context.Context, tenantID uuid.UUID, code shipping.CourierCode, key, secret string, settings map[string]string) (*shipping.CourierAccount, error) {
	provider, err := s.registry.Provider(code)
	if err != nil {
		return nil, err
	}

	account, err := shipping.NewCourierAccount(tenantID, code, key, secret, settings)
	if err != nil {
		return nil, err
	}

	if result := provider.ValidateCredentials(ctx, account.Credentials()); result.Failed() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrMissingCredentials, result.Message)
	}

	// replace an existing account for the same carrier in place
	if existing, findErr := s.accounts.FindByTenantAndCourier(ctx, tenantID, code); findErr == nil {
		existing.Key = key
		existing.Secret = secret
		existing.Settings = settings
		existing.AccessToken = ""
		existing.Enabled = true
		if err := s.accounts.Save(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ---------------------------------------------------------------------------
// Rate shopping
// ---------------------------------------------------------------------------

// GetRates queries every enabled courier account sequentially and returns
// the merged candidate list sorted ascending by total charge. A carrier that
// cannot quote is logged and skipped; it never sinks the whole query.
func (s *CourierService) GetRates(ctx context.Context, tenantID uuid.UUID, req shipping.RateRequest) ([]shipping.CourierRate, error) {
	accounts, err := s.accounts.FindEnabledForTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, shipping.ErrCourierNotConfigured
	}

	var rates []shipping.CourierRate
	for _, account := range accounts {
		provider, err := s.registry.Provider(account.CourierCode)
		if err != nil {
			s.logger.Warn("skipping unregistered courier",
				zap.String("courier", account.CourierCode.String()))
			continue
		}
		carrierRates, result := provider.GetRates(ctx, account.Credentials(), req)
		if result.Failed() {
			s.logger.Warn("rate query failed",
				zap.String("courier", account.CourierCode.String()),
				zap.String("reason", result.Message))
			continue
		}
		rates = append(rates, carrierRates...)
	}

	shipping.SortRatesByTotal(rates)
	return rates, nil
}

// ---------------------------------------------------------------------------
// Shipments
// ---------------------------------------------------------------------------

// CreateShipment books a shipment with the carrier and persists the internal
// record keyed by the assigned AWB.
func (s *CourierService) CreateShipment(ctx context.Context, tenantID uuid.UUID, orderID *uuid.UUID, code shipping.CourierCode, req shipping.ShipmentRequest) (*shipping.Shipment, error) {
	account, err := s.accounts.FindByTenantAndCourier(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Provider(code)
	if err != nil {
		return nil, err
	}

	if orderID != nil {
		existing, err := s.shipments.FindByOrder(ctx, tenantID, *orderID)
		if err != nil {
			return nil, err
		}
		for _, sh := range existing {
			if sh.CourierCode == code && sh.Status != shipping.StatusCancelled {
				return nil, shipping.ErrDuplicateShipment
			}
		}
	}

	resp, result := provider.CreateShipment(ctx, account.Credentials(), req)
	if result.Failed() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierRequestFailed, result.Message)
	}

	shipment, err := shipping.NewShipment(tenantID, orderID, code, *resp)
	if err != nil {
		return nil, err
	}
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}

	s.logger.Info("shipment created",
		zap.String("courier", code.String()),
		zap.String("awb", shipment.AWB))
	return shipment, nil
}

// RefreshTracking polls the carrier for an AWB and applies the mapped status
// to the shipment. Unmapped carrier statuses never advance the lifecycle.
func (s *CourierService) RefreshTracking(ctx context.Context, awb string) (*shipping.Shipment, *shipping.TrackingResponse, error) {
	shipment, err := s.shipments.FindByAWB(ctx, awb)
	if err != nil {
		return nil, nil, err
	}
	account, err := s.accounts.FindByTenantAndCourier(ctx, shipment.TenantID, shipment.CourierCode)
	if err != nil {
		return nil, nil, err
	}
	provider, err := s.registry.Provider(shipment.CourierCode)
	if err != nil {
		return nil, nil, err
	}

	tracking, result := provider.GetTracking(ctx, account.Credentials(), awb)
	if result.Failed() {
		return nil, nil, fmt.Errorf("%w: %s", shipping.ErrCourierRequestFailed, result.Message)
	}
	if tracking == nil {
		// carrier knows nothing yet; keep the local record as is
		return shipment, nil, nil
	}

	at := time.Now()
	if latest := tracking.LatestEvent(); latest != nil {
		at = latest.Timestamp
	}
	changed := shipment.ApplyStatus(tracking.Status, tracking.CurrentLocation, at)
	if tracking.NDRReason != "" {
		shipment.RecordNDRReason(tracking.NDRReason)
		changed = true
	}
	if tracking.ExpectedDelivery != nil {
		shipment.ExpectedDeliveryAt = tracking.ExpectedDelivery
		changed = true
	}
	if changed {
		if err := s.shipments.Save(ctx, shipment); err != nil {
			return nil, nil, err
		}
	}
	return shipment, tracking, nil
}

// CancelShipment cancels the shipment with the carrier and marks the local
// record cancelled.
func (s *CourierService) CancelShipment(ctx context.Context, awb string) (*shipping.Shipment, error) {
	shipment, err := s.shipments.FindByAWB(ctx, awb)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindByTenantAndCourier(ctx, shipment.TenantID, shipment.CourierCode)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Provider(shipment.CourierCode)
	if err != nil {
		return nil, err
	}

	if result := provider.CancelShipment(ctx, account.Credentials(), awb); result.Failed() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierRequestFailed, result.Message)
	}

	shipment.ApplyStatus(shipping.StatusPtr(shipping.StatusCancelled), "", time.Now())
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// ---------------------------------------------------------------------------
// Labels
// ---------------------------------------------------------------------------

// ArchiveLabel fetches the label from the carrier and archives it in object
// storage keyed by AWB. Returns the storage key.
func (s *CourierService) ArchiveLabel(ctx context.Context, awb string) (string, error) {
	if s.labels == nil {
		return "", shipping.ErrLabelNotAvailable
	}
	shipment, err := s.shipments.FindByAWB(ctx, awb)
	if err != nil {
		return "", err
	}
	if shipment.LabelKey != "" {
		return shipment.LabelKey, nil
	}
	account, err := s.accounts.FindByTenantAndCourier(ctx, shipment.TenantID, shipment.CourierCode)
	if err != nil {
		return "", err
	}
	provider, err := s.registry.Provider(shipment.CourierCode)
	if err != nil {
		return "", err
	}

	data, result := provider.GetLabel(ctx, account.Credentials(), awb)
	if result.Failed() {
		return "", fmt.Errorf("%w: %s", shipping.ErrCourierRequestFailed, result.Message)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: %s", shipping.ErrLabelNotAvailable, result.Message)
	}

	key := fmt.Sprintf("labels/%s/%s.pdf", shipment.CourierCode, awb)
	if err := s.labels.Put(ctx, key, data, labelContentType); err != nil {
		return "", err
	}
	shipment.AttachLabel(key)
	if err := s.shipments.Save(ctx, shipment); err != nil {
		return "", err
	}
	return key, nil
}

// LabelURL returns a time-limited download URL for an archived label
func (s *CourierService) LabelURL(ctx context.Context, awb string, expiresIn time.Duration) (string, error) {
	if s.labels == nil {
		return "", shipping.ErrLabelNotAvailable
	}
	shipment, err := s.shipments.FindByAWB(ctx, awb)
	if err != nil {
		return "", err
	}
	if shipment.LabelKey == "" {
		return "", shipping.ErrLabelNotAvailable
	}
	return s.labels.DownloadURL(ctx, shipment.LabelKey, expiresIn)
}

// ---------------------------------------------------------------------------
// Pickups
// ---------------------------------------------------------------------------

// SchedulePickup schedules a carrier pickup for a tenant
func (s *CourierService) SchedulePickup(ctx context.Context, tenantID uuid.UUID, code shipping.CourierCode, req shipping.PickupRequest) (*shipping.PickupResponse, error) {
	account, err := s.accounts.FindByTenantAndCourier(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}
	provider, err := s.registry.Provider(code)
	if err != nil {
		return nil, err
	}

	resp, result := provider.SchedulePickup(ctx, account.Credentials(), req)
	if result.Failed() {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierRequestFailed, result.Message)
	}
	return resp, nil
}
