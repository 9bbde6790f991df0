package okta

import (
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Authentication methods.
const (
	AuthAPIToken = "api_token"
	AuthOAuth    = connectors.AuthOAuth
)

// Service names accepted in the services map.
const (
	ServiceUsers        = "users"
	ServiceGroups       = "groups"
	ServiceApplications = "applications"
	ServiceSystemLog    = "system_log"
	ServicePolicies     = "policies"
)

// AllServices returns every service name in execution order.
func AllServices() []string {
	return []string{ServiceUsers, ServiceGroups, ServiceApplications, ServiceSystemLog, ServicePolicies}
}

// Defaults for optional fields.
const (
	DefaultLogLookbackDays = 7
	DefaultMaxLogEvents    = 1000
)

// domainSuffixes are the Okta-hosted org domains.
var domainSuffixes = []string{".okta.com", ".oktapreview.com", ".okta-emea.com"}

// Config holds the parsed configuration of an Okta integration.
type Config struct {
	AuthMethod string `mapstructure:"auth_method"`

	// APIToken is sent as "Authorization: SSWS <token>".
	APIToken string `mapstructure:"api_token"`

	connectors.OAuthCredentials `mapstructure:",squash"`

	// Domain is the org host, e.g. acme.okta.com. A scheme prefix is dropped.
	Domain string `mapstructure:"domain"`

	LogLookbackDays int `mapstructure:"log_lookback_days"`
	MaxLogEvents    int `mapstructure:"max_log_events"`

	Services connectors.Services `mapstructure:"services"`
}

// ParseConfig decodes, validates and defaults raw.
func ParseConfig(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	if err := connectors.DecodeConfig(raw, cfg); err != nil {
		return nil, err
	}
	host, err := normalizeDomain(cfg.Domain)
	if err != nil {
		return nil, err
	}
	cfg.Domain = host
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.LogLookbackDays = connectors.DefaultInt(cfg.LogLookbackDays, DefaultLogLookbackDays)
	cfg.MaxLogEvents = connectors.DefaultInt(cfg.MaxLogEvents, DefaultMaxLogEvents)
	return cfg, nil
}

// normalizeDomain strips an https:// prefix and trailing slash. Any other
// scheme is rejected.
func normalizeDomain(d string) (string, error) {
	lower := strings.ToLower(d)
	if scheme, _, ok := strings.Cut(lower, "://"); ok && scheme != "https" {
		return "", domain.NewConfigError("domain", "must use the https scheme, got %q", scheme)
	}
	lower = strings.TrimPrefix(lower, "https://")
	return strings.TrimRight(lower, "/"), nil
}

// Validate checks the configuration. It is the single place where the
// auth_method union is resolved.
func (c *Config) Validate() error {
	if err := connectors.RequireOneOf(connectors.KeyAuthMethod, c.AuthMethod, AuthAPIToken, AuthOAuth); err != nil {
		return err
	}
	if err := connectors.RequireHostname("domain", c.Domain); err != nil {
		return err
	}
	if err := connectors.RequireSuffix("domain", c.Domain, domainSuffixes...); err != nil {
		return err
	}

	switch c.AuthMethod {
	case AuthAPIToken:
		if err := connectors.RequireString("api_token", c.APIToken); err != nil {
			return err
		}
	case AuthOAuth:
		if err := c.OAuthCredentials.Validate(); err != nil {
			return err
		}
	}

	if err := connectors.NonNegative("log_lookback_days", c.LogLookbackDays); err != nil {
		return err
	}
	if err := connectors.NonNegative("max_log_events", c.MaxLogEvents); err != nil {
		return err
	}
	return c.Services.Validate(AllServices())
}

// BaseURL returns the org API base URL.
func (c *Config) BaseURL() string {
	return "https://" + c.Domain + "/api/v1"
}
