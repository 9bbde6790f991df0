package github

import (
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Authentication methods.
const (
	AuthToken = "token"
	AuthOAuth = connectors.AuthOAuth
)

// Service names accepted in the services map.
const (
	ServiceRepositories     = "repositories"
	ServiceBranchProtection = "branch_protection"
	ServiceMembers          = "members"
	ServiceSecurityAlerts   = "security_alerts"
)

// AllServices returns every service name in execution order.
func AllServices() []string {
	return []string{ServiceRepositories, ServiceBranchProtection, ServiceMembers, ServiceSecurityAlerts}
}

// repoServices are the services that consume the shared repository listing.
var repoServices = []string{ServiceRepositories, ServiceBranchProtection, ServiceSecurityAlerts}

// Config holds the parsed configuration of a GitHub integration.
type Config struct {
	AuthMethod string `mapstructure:"auth_method"`

	// Token is a personal access token (classic or fine-grained).
	Token string `mapstructure:"token"`

	connectors.OAuthCredentials `mapstructure:",squash"`

	// Organization scopes the sync to one organisation. When empty the
	// repositories of the authenticated user are used and members is skipped.
	Organization string `mapstructure:"organization"`

	// Repositories restricts the sync to the named repositories, matched by
	// name or owner/name. Empty means every repository.
	Repositories []string `mapstructure:"repositories"`

	// IncludeArchived keeps archived repositories in the listing.
	IncludeArchived bool `mapstructure:"include_archived"`

	// BaseURL points at a GitHub Enterprise Server API.
	BaseURL string `mapstructure:"base_url"`

	Services connectors.Services `mapstructure:"services"`
}

// ParseConfig decodes and validates raw.
func ParseConfig(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	if err := connectors.DecodeConfig(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return cfg, nil
}

// Validate checks the configuration. It is the single place where the
// auth_method union is resolved.
func (c *Config) Validate() error {
	if err := connectors.RequireOneOf(connectors.KeyAuthMethod, c.AuthMethod, AuthToken, AuthOAuth); err != nil {
		return err
	}

	switch c.AuthMethod {
	case AuthToken:
		if err := connectors.RequireString("token", c.Token); err != nil {
			return err
		}
	case AuthOAuth:
		if err := c.OAuthCredentials.Validate(); err != nil {
			return err
		}
	}

	if c.BaseURL != "" {
		if _, err := connectors.RequireHTTPS("base_url", c.BaseURL); err != nil {
			return err
		}
	}
	if strings.Contains(c.Organization, "/") {
		return domain.NewConfigError("organization", "%q must be an organisation login, not a path", c.Organization)
	}
	return c.Services.Validate(AllServices())
}
