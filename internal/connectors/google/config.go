package google

import (
	"encoding/json"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Authentication methods.
const (
	AuthServiceAccount = "service_account"
	AuthOAuth          = connectors.AuthOAuth
)

// Service names accepted in the services map.
const (
	ServiceUsers      = "users"
	ServiceGroups     = "groups"
	ServiceLoginAudit = "login_audit"
)

// AllServices returns every service name in execution order.
func AllServices() []string {
	return []string{ServiceUsers, ServiceGroups, ServiceLoginAudit}
}

// Defaults for optional fields.
const (
	DefaultLoginLookbackDays = 30
	DefaultMaxEvents         = 1000
)

// Config holds the parsed configuration of a Google Workspace integration.
type Config struct {
	AuthMethod string `mapstructure:"auth_method"`

	// ServiceAccountJSON is the key file of a service account with
	// domain-wide delegation.
	ServiceAccountJSON string `mapstructure:"service_account_json"`

	// AdminEmail is the administrator impersonated by the service account.
	AdminEmail string `mapstructure:"admin_email"`

	connectors.OAuthCredentials `mapstructure:",squash"`

	// Domain is the primary Workspace domain.
	Domain string `mapstructure:"domain"`

	LoginLookbackDays int `mapstructure:"login_lookback_days"`
	MaxEvents         int `mapstructure:"max_events"`

	Services connectors.Services `mapstructure:"services"`
}

// serviceAccountKey holds the fields of a key file that are checked up front.
type serviceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// ParseConfig decodes, validates and defaults raw.
func ParseConfig(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	if err := connectors.DecodeConfig(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Domain = strings.ToLower(cfg.Domain)
	cfg.LoginLookbackDays = connectors.DefaultInt(cfg.LoginLookbackDays, DefaultLoginLookbackDays)
	cfg.MaxEvents = connectors.DefaultInt(cfg.MaxEvents, DefaultMaxEvents)
	return cfg, nil
}

// Validate checks the configuration. It is the single place where the
// auth_method union is resolved.
func (c *Config) Validate() error {
	if err := connectors.RequireOneOf(connectors.KeyAuthMethod, c.AuthMethod, AuthServiceAccount, AuthOAuth); err != nil {
		return err
	}
	if err := connectors.RequireHostname("domain", c.Domain); err != nil {
		return err
	}

	switch c.AuthMethod {
	case AuthServiceAccount:
		if err := connectors.RequireString("service_account_json", c.ServiceAccountJSON); err != nil {
			return err
		}
		var key serviceAccountKey
		if err := json.Unmarshal([]byte(c.ServiceAccountJSON), &key); err != nil {
			return domain.NewConfigError("service_account_json", "is not valid JSON: %v", err)
		}
		if key.Type != "service_account" {
			return domain.NewConfigError("service_account_json", "type must be \"service_account\", got %q", key.Type)
		}
		if key.ClientEmail == "" {
			return domain.NewConfigError("service_account_json", "client_email is missing")
		}
		if err := connectors.RequireString("admin_email", c.AdminEmail); err != nil {
			return err
		}
		if !strings.HasSuffix(strings.ToLower(c.AdminEmail), "@"+strings.ToLower(c.Domain)) {
			return domain.NewConfigError("admin_email", "%q must belong to domain %s", c.AdminEmail, c.Domain)
		}
	case AuthOAuth:
		if err := c.OAuthCredentials.Validate(); err != nil {
			return err
		}
	}

	if err := connectors.NonNegative("login_lookback_days", c.LoginLookbackDays); err != nil {
		return err
	}
	if err := connectors.NonNegative("max_events", c.MaxEvents); err != nil {
		return err
	}
	return c.Services.Validate(AllServices())
}
