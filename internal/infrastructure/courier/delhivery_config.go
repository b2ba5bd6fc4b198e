package courier

import (
	"errors"

	"github.com/ecommanager/backend/internal/domain/shipping"
)

// DelhiveryConfig holds configuration for the Delhivery API integration
type DelhiveryConfig struct {
	// BaseURL is the Delhivery API endpoint (production or staging)
	BaseURL string
	// TimeoutSeconds is the HTTP request timeout
	TimeoutSeconds int
}

const (
	// DelhiveryProductionURL is the production API endpoint
	DelhiveryProductionURL = "https://track.delhivery.com"
	// DelhiveryStagingURL is the staging API endpoint
	DelhiveryStagingURL = "https://staging-express.delhivery.com"
)

// Errors for Delhivery configuration and credentials
var (
	ErrDelhiveryMissingToken = errors.New("delhivery: API token is required")
)

// NewDelhiveryConfig creates a Delhivery configuration with defaults
func NewDelhiveryConfig() *DelhiveryConfig {
	return &DelhiveryConfig{
		BaseURL:        DelhiveryProductionURL,
		TimeoutSeconds: 30,
	}
}

// Validate validates the Delhivery configuration
func (c *DelhiveryConfig) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = DelhiveryProductionURL
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 30
	}
	return nil
}

// delhiveryCredentials is the typed view of account credentials for Delhivery.
// Key carries the API token; the pickup location name travels in settings.
type delhiveryCredentials struct {
	APIToken       string
	PickupLocation string
}

func delhiveryCredentialsFrom(creds shipping.Credentials) (delhiveryCredentials, error) {
	if creds.Key == "" {
		return delhiveryCredentials{}, ErrDelhiveryMissingToken
	}
	return delhiveryCredentials{
		APIToken:       creds.Key,
		PickupLocation: creds.Setting("pickup_location"),
	}, nil
}
