package stripe

import (
	"fmt"
)

// DefaultVIPLookupKey is the price lookup key used to resolve the VIP
// membership price when no explicit price ID is configured.
const DefaultVIPLookupKey = "vip_monthly"

// Config holds the complete Stripe configuration
type Config struct {
	APIKey        string `yaml:"api_key" json:"api_key"`
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
	// VIPPriceID is the recurring price used for VIP subscriptions. When
	// empty, the price is resolved through DefaultVIPLookupKey.
	VIPPriceID string `yaml:"vip_price_id" json:"vip_price_id"`
}

// NewConfig creates a new Stripe configuration, validating the required keys.
func NewConfig(apiKey, webhookSecret, vipPriceID string) (*Config, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("stripe api key is required")
	}
	return &Config{
		APIKey:        apiKey,
		WebhookSecret: webhookSecret,
		VIPPriceID:    vipPriceID,
	}, nil
}
