package stripe

import (
	"fmt"
	"strings"
	"time"
)

// DefaultWebhookTolerance is the maximum age accepted for the timestamp of a
// signed webhook payload.
const DefaultWebhookTolerance = 300 * time.Second

// Config holds the complete Stripe configuration
type Config struct {
	APIKey string `yaml:"api_key" json:"api_key"`
	// WebhookSecrets are tried in order, more than one is only needed while a
	// signing secret is being rotated.
	WebhookSecrets   []string      `yaml:"webhook_secrets" json:"webhook_secrets"`
	WebhookTolerance time.Duration `yaml:"webhook_tolerance" json:"webhook_tolerance"`

	// AllowedShippingCountries are the ISO 3166-1 alpha-2 codes offered in
	// the shipping address form.
	AllowedShippingCountries []string `yaml:"allowed_shipping_countries" json:"allowed_shipping_countries"`
	ShippingDisplayName      string   `yaml:"shipping_display_name" json:"shipping_display_name"`
	FreeShippingDisplayName  string   `yaml:"free_shipping_display_name" json:"free_shipping_display_name"`
	ShippingMinDays          int64    `yaml:"shipping_min_days" json:"shipping_min_days"`
	ShippingMaxDays          int64    `yaml:"shipping_max_days" json:"shipping_max_days"`

	// MetadataSource tags the sessions and customers created by this service.
	MetadataSource string `yaml:"metadata_source" json:"metadata_source"`
}

// DefaultConfig returns a configuration with every optional field set to its
// default value and no credentials.
func DefaultConfig() *Config {
	return &Config{
		WebhookTolerance:         DefaultWebhookTolerance,
		AllowedShippingCountries: []string{"IT", "SM", "VA"},
		ShippingDisplayName:      "Poste – Standard",
		FreeShippingDisplayName:  "Spedizione Gratuita",
		ShippingMinDays:          2,
		ShippingMaxDays:          5,
		MetadataSource:           "web-checkout",
	}
}

// Validate checks the configuration and fills the optional fields left empty
// with their default values.
func (c *Config) Validate() error {
	def := DefaultConfig()
	if c.WebhookTolerance <= 0 {
		c.WebhookTolerance = def.WebhookTolerance
	}
	if len(c.AllowedShippingCountries) == 0 {
		c.AllowedShippingCountries = def.AllowedShippingCountries
	}
	for i, country := range c.AllowedShippingCountries {
		country = strings.ToUpper(strings.TrimSpace(country))
		if len(country) != 2 {
			return fmt.Errorf("invalid shipping country %q", country)
		}
		c.AllowedShippingCountries[i] = country
	}
	if c.ShippingDisplayName == "" {
		c.ShippingDisplayName = def.ShippingDisplayName
	}
	if c.FreeShippingDisplayName == "" {
		c.FreeShippingDisplayName = def.FreeShippingDisplayName
	}
	if c.ShippingMinDays <= 0 {
		c.ShippingMinDays = def.ShippingMinDays
	}
	if c.ShippingMaxDays <= 0 {
		c.ShippingMaxDays = def.ShippingMaxDays
	}
	if c.ShippingMaxDays < c.ShippingMinDays {
		return fmt.Errorf("shipping max days (%d) lower than min days (%d)", c.ShippingMaxDays, c.ShippingMinDays)
	}
	if c.MetadataSource == "" {
		c.MetadataSource = def.MetadataSource
	}
	return nil
}

// ParseSecrets splits a comma separated list of webhook signing secrets,
// dropping the empty entries.
func ParseSecrets(list string) []string {
	var secrets []string
	for _, secret := range strings.Split(list, ",") {
		if secret = strings.TrimSpace(secret); secret != "" {
			secrets = append(secrets, secret)
		}
	}
	return secrets
}
