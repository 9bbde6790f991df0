package azuread

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
)

// Authentication methods.
const (
	// AuthClientSecret is the client credentials grant of an app registration.
	AuthClientSecret = "client_secret"
	AuthOAuth        = connectors.AuthOAuth
)

// Service names accepted in the services map.
const (
	ServiceUsers             = "users"
	ServiceGroups            = "groups"
	ServiceDirectoryRoles    = "directory_roles"
	ServiceSignInLogs        = "sign_in_logs"
	ServiceConditionalAccess = "conditional_access"
)

// AllServices returns every service name in execution order.
func AllServices() []string {
	return []string{ServiceUsers, ServiceGroups, ServiceDirectoryRoles, ServiceSignInLogs, ServiceConditionalAccess}
}

// Defaults for optional fields.
const (
	DefaultSignInLookbackDays = 7
	DefaultMaxSignIns         = 1000
)

var guidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// Config holds the parsed configuration of an Azure AD integration.
//
// The client_id and client_secret keys serve both auth methods: they are
// the app registration credentials for client_secret, and the refresh
// credentials for oauth.
type Config struct {
	AuthMethod string `mapstructure:"auth_method"`

	// TenantID is the directory GUID or one of its verified domains.
	TenantID string `mapstructure:"tenant_id"`

	connectors.OAuthCredentials `mapstructure:",squash"`

	SignInLookbackDays int `mapstructure:"sign_in_lookback_days"`
	MaxSignIns         int `mapstructure:"max_sign_ins"`

	Services connectors.Services `mapstructure:"services"`
}

// ParseConfig decodes, validates and defaults raw.
func ParseConfig(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	if err := connectors.DecodeConfig(raw, cfg); err != nil {
		return nil, err
	}
	cfg.TenantID = strings.ToLower(cfg.TenantID)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.SignInLookbackDays = connectors.DefaultInt(cfg.SignInLookbackDays, DefaultSignInLookbackDays)
	cfg.MaxSignIns = connectors.DefaultInt(cfg.MaxSignIns, DefaultMaxSignIns)
	return cfg, nil
}

// Validate checks the configuration. It is the single place where the
// auth_method union is resolved.
func (c *Config) Validate() error {
	if err := connectors.RequireOneOf(connectors.KeyAuthMethod, c.AuthMethod, AuthClientSecret, AuthOAuth); err != nil {
		return err
	}
	if err := connectors.RequireString("tenant_id", c.TenantID); err != nil {
		return err
	}
	if !guidRegex.MatchString(c.TenantID) {
		if err := connectors.RequireHostname("tenant_id", c.TenantID); err != nil {
			return err
		}
	}

	switch c.AuthMethod {
	case AuthClientSecret:
		if err := connectors.RequireString("client_id", c.ClientID); err != nil {
			return err
		}
		if err := connectors.RequireString("client_secret", c.ClientSecret); err != nil {
			return err
		}
	case AuthOAuth:
		if err := c.OAuthCredentials.Validate(); err != nil {
			return err
		}
	}

	if err := connectors.NonNegative("sign_in_lookback_days", c.SignInLookbackDays); err != nil {
		return err
	}
	if err := connectors.NonNegative("max_sign_ins", c.MaxSignIns); err != nil {
		return err
	}
	return c.Services.Validate(AllServices())
}
