package courier

import (
	"errors"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// BluedartConfig holds configuration for the Blue Dart API integration
type BluedartConfig struct {
	// BaseURL is the Blue Dart API gateway endpoint
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// BluedartProductionURL is the production API gateway
	BluedartProductionURL = "https://apigateway.bluedart.com"
	// BluedartSandboxURL is the sandbox API gateway
	BluedartSandboxURL = "https://apigateway-sandbox.bluedart.com"
)

// Errors for Blue Dart configuration and credentials
var (
	ErrBluedartMissingLicence      = errors.New("bluedart: licence key is required")
	ErrBluedartMissingLoginID      = errors.New("bluedart: login ID is required")
	ErrBluedartMissingCustomerCode = errors.New("bluedart: customer code is required")
)

// NewBluedartConfig creates a Blue Dart configuration with defaults
func NewBluedartConfig() *BluedartConfig {
	return &BluedartConfig{
		BaseURL:        BluedartProductionURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Blue Dart configuration
func (c *BluedartConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = BluedartProductionURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// bluedartCredentials is the typed view of account credentials for Blue Dart.
// Key carries the licence key and Secret the login ID; the customer code and
// origin area come from settings.
type bluedartCredentials struct {
	LicenceKey   string
	LoginID      string
	CustomerCode string
	OriginArea   string
}

func bluedartCredentialsFrom(creds shipping.Credentials) (bluedartCredentials, error) {
	if creds.Key == "" {
		return bluedartCredentials{}, ErrBluedartMissingLicence
	}
	if creds.Secret == "" {
		return bluedartCredentials{}, ErrBluedartMissingLoginID
	}
	bc := bluedartCredentials{
		LicenceKey:   creds.Key,
		LoginID:      creds.Secret,
		CustomerCode: creds.Setting("customer_code"),
		OriginArea:   creds.Setting("origin_area"),
	}
	if bc.CustomerCode == "" {
		return bluedartCredentials{}, ErrBluedartMissingCustomerCode
	}
	return bc, nil
}
