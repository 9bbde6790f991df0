package jira

import (
	"net/url"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
)

// Authentication methods.
const (
	AuthAPIToken = "api_token"
	AuthOAuth    = connectors.AuthOAuth
)

// Service names accepted in the services map.
const (
	ServiceProjects    = "projects"
	ServiceIssues      = "issues"
	ServiceUsers       = "users"
	ServicePermissions = "permissions"
)

// AllServices returns every service name in execution order.
func AllServices() []string {
	return []string{ServiceProjects, ServiceIssues, ServiceUsers, ServicePermissions}
}

// Defaults for optional fields.
const (
	DefaultIssueLookbackDays = 90
	DefaultMaxIssues         = 1000
)

// DefaultSecurityLabels are the labels that mark an issue as security relevant.
var DefaultSecurityLabels = []string{"security"}

// Config holds the parsed configuration of a Jira integration.
type Config struct {
	AuthMethod string `mapstructure:"auth_method"`

	// Email and APIToken authenticate api_token requests with basic auth.
	Email    string `mapstructure:"email"`
	APIToken string `mapstructure:"api_token"`

	connectors.OAuthCredentials `mapstructure:",squash"`

	// InstanceURL is the site URL, e.g. https://acme.atlassian.net.
	InstanceURL string `mapstructure:"instance_url"`

	// Projects is an allow-list of project keys or names.
	Projects []string `mapstructure:"projects"`

	SecurityLabels    []string `mapstructure:"security_labels"`
	IssueLookbackDays int      `mapstructure:"issue_lookback_days"`
	MaxIssues         int      `mapstructure:"max_issues"`

	Services connectors.Services `mapstructure:"services"`
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
	cfg.InstanceURL = strings.TrimRight(cfg.InstanceURL, "/")
	cfg.SecurityLabels = connectors.ScopeList("", cfg.SecurityLabels)
	if len(cfg.SecurityLabels) == 0 {
		cfg.SecurityLabels = DefaultSecurityLabels
	}
	cfg.IssueLookbackDays = connectors.DefaultInt(cfg.IssueLookbackDays, DefaultIssueLookbackDays)
	cfg.MaxIssues = connectors.DefaultInt(cfg.MaxIssues, DefaultMaxIssues)
	return cfg, nil
}

// Validate checks the configuration. It is the single place where the
// auth_method union is resolved.
func (c *Config) Validate() error {
	if err := connectors.RequireOneOf(connectors.KeyAuthMethod, c.AuthMethod, AuthAPIToken, AuthOAuth); err != nil {
		return err
	}
	if _, err := connectors.RequireHTTPS("instance_url", c.InstanceURL); err != nil {
		return err
	}

	switch c.AuthMethod {
	case AuthAPIToken:
		if err := connectors.RequireString("email", c.Email); err != nil {
			return err
		}
		if err := connectors.RequireString("api_token", c.APIToken); err != nil {
			return err
		}
	case AuthOAuth:
		if err := c.OAuthCredentials.Validate(); err != nil {
			return err
		}
	}

	if err := connectors.NonNegative("issue_lookback_days", c.IssueLookbackDays); err != nil {
		return err
	}
	if err := connectors.NonNegative("max_issues", c.MaxIssues); err != nil {
		return err
	}
	return c.Services.Validate(AllServices())
}

// Site returns the host of the instance URL.
func (c *Config) Site() string {
	u, err := url.Parse(c.InstanceURL)
	if err != nil {
		return c.InstanceURL
	}
	return u.Host
}
