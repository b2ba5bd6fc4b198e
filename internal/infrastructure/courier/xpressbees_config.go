package courier

import (
	"errors"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// XpressbeesConfig holds configuration for the Xpressbees API integration
type XpressbeesConfig struct {
	// BaseURL is the Xpressbees shipment API endpoint
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

// XpressbeesProductionURL is the production API endpoint
const XpressbeesProductionURL = "https://shipment.xpressbees.com/api"

// Errors for Xpressbees configuration and credentials
var (
	ErrXpressbeesMissingEmail    = errors.New("xpressbees: account email is required")
	ErrXpressbeesMissingPassword = errors.New("xpressbees: account password is required")
)

// NewXpressbeesConfig creates an Xpressbees configuration with defaults
func NewXpressbeesConfig() *XpressbeesConfig {
	return &XpressbeesConfig{
		BaseURL:        XpressbeesProductionURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Xpressbees configuration
func (c *XpressbeesConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = XpressbeesProductionURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// xpressbeesCredentials is the typed view of account credentials for
// Xpressbees. Key carries the account email and Secret the password; the
// pickup warehouse name travels in settings.
type xpressbeesCredentials struct {
	Email     string
	Password  string
	Warehouse string
}

func xpressbeesCredentialsFrom(creds shipping.Credentials) (xpressbeesCredentials, error) {
	if creds.Key == "" {
		return xpressbeesCredentials{}, ErrXpressbeesMissingEmail
	}
	if creds.Secret == "" {
		return xpressbeesCredentials{}, ErrXpressbeesMissingPassword
	}
	return xpressbeesCredentials{
		Email:     creds.Key,
		Password:  creds.Secret,
		Warehouse: creds.Setting("warehouse"),
	}, nil
}
