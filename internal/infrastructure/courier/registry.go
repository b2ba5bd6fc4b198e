package courier

import (
	"fmt"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// CourierRegistry holds the registered carrier adapters and webhook
// normalizers, keyed by courier code
type CourierRegistry struct {
	providers   map[shipping.CourierCode]shipping.CourierProvider
	normalizers map[shipping.CourierCode]shipping.WebhookNormalizer
	order       []shipping.CourierCode
}

// NewCourierRegistry creates a registry from the given adapters and normalizers
func NewCourierRegistry(providers []shipping.CourierProvider, normalizers []shipping.WebhookNormalizer) *CourierRegistry {
	r := &CourierRegistry{
		providers:   make(map[shipping.CourierCode]shipping.CourierProvider, len(providers)),
		normalizers: make(map[shipping.CourierCode]shipping.WebhookNormalizer, len(normalizers)),
	}
	for _, p := range providers {
		if _, exists := r.providers[p.Code()]; !exists {
			r.order = append(r.order, p.Code())
		}
		r.providers[p.Code()] = p
	}
	for _, n := range normalizers {
		r.normalizers[n.Courier()] = n
	}
	return r
}

// DefaultRegistry builds a registry with all supported carriers using the
// given request timeout
func DefaultRegistry(timeoutSeconds int) (*CourierRegistry, error) {
	delhivery, err := NewDelhiveryAdapter(&DelhiveryConfig{TimeoutSeconds: timeoutSeconds})
	if err != nil {
		return nil, err
	}
	bluedart, err := NewBluedartAdapter(&BluedartConfig{TimeoutSeconds: timeoutSeconds})
	if err != nil {
		return nil, err
	}
	xpressbees, err := NewXpressbeesAdapter(&XpressbeesConfig{TimeoutSeconds: timeoutSeconds})
	if err != nil {
		return nil, err
	}

	return NewCourierRegistry(
		[]shipping.CourierProvider{delhivery, bluedart, xpressbees},
		[]shipping.WebhookNormalizer{
			NewDelhiveryWebhookNormalizer(),
			NewBluedartWebhookNormalizer(),
			NewXpressbeesWebhookNormalizer(),
		},
	), nil
}

// Provider returns the adapter for the given code
func (r *CourierRegistry) Provider(code shipping.CourierCode) (shipping.CourierProvider, error) {
	p, ok := r.providers[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierNotRegistered, code)
	}
	return p, nil
}

// Normalizer returns the webhook normalizer for the given code
func (r *CourierRegistry) Normalizer(code shipping.CourierCode) (shipping.WebhookNormalizer, error) {
	n, ok := r.normalizers[code]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shipping.ErrCourierNotRegistered, code)
	}
	return n, nil
}

// Providers returns all registered adapters in registration order
func (r *CourierRegistry) Providers() []shipping.CourierProvider {
	out := make([]shipping.CourierProvider, 0, len(r.order))
	for _, code := range r.order {
		out = append(out, r.providers[code])
	}
	return out
}

// Ensure CourierRegistry implements the Registry interface
var _ shipping.Registry = (*CourierRegistry)(nil)
