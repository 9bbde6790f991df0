package jira

import (
	"context"
	"fmt"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// TypeID is the integration type identifier of the Jira provider.
const TypeID = "jira"

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// servicePermissions maps each service to the Jira permissions it relies on.
var servicePermissions = map[string][]string{
	ServiceProjects:    {"BROWSE_PROJECTS"},
	ServiceIssues:      {"BROWSE_PROJECTS"},
	ServiceUsers:       {"BROWSE_PROJECTS", "ASSIGNABLE_USER"},
	ServicePermissions: {"ADMINISTER_PROJECTS"},
}

var descriptor = domain.IntegrationType{
	ID:          TypeID,
	Name:        "Jira",
	Description: "Projects, security issues, assignable users and permission schemes",
	AuthMethods: []string{AuthAPIToken, AuthOAuth},
	Capabilities: domain.NewCapabilitySet(
		domain.CapUserSync, domain.CapAccessSync, domain.CapSecurityFindings, domain.CapAssetInventory,
	),
	ConfigKeys: []domain.ConfigKey{
		{Key: connectors.KeyAuthMethod, Label: "Auth Method", Description: "api_token or oauth", Required: true},
		{Key: "instance_url", Label: "Instance URL", Description: "Site URL, e.g. https://acme.atlassian.net", Required: true},
		{Key: "email", Label: "Email", Description: "Account email, required for api_token auth"},
		{Key: "api_token", Label: "API Token", Description: "Atlassian API token", Secret: true},
		{Key: "access_token", Label: "Access Token", Description: "OAuth access token", Secret: true},
		{Key: "refresh_token", Label: "Refresh Token", Description: "OAuth refresh token", Secret: true},
		{Key: "client_id", Label: "Client ID", Description: "OAuth app client ID, needed to refresh"},
		{Key: "client_secret", Label: "Client Secret", Description: "OAuth app client secret, needed to refresh", Secret: true},
		{Key: "projects", Label: "Projects", Description: "Allow-list of project keys or names"},
		{Key: "security_labels", Label: "Security Labels", Description: "Labels marking security issues", Default: "security"},
		{Key: "issue_lookback_days", Label: "Issue Lookback Days", Description: "Days of security issues to collect", Default: "90"},
		{Key: "max_issues", Label: "Max Issues", Description: "Upper bound on issues per sync", Default: "1000"},
		{Key: connectors.KeyServices, Label: "Services", Description: "Per-service enablement; all enabled by default"},
	},
	Services: AllServices(),
}

// ClientFactory builds the API client for a config.
type ClientFactory func(ctx context.Context, cfg *Config) (API, error)

// Provider collects compliance evidence from Jira.
type Provider struct {
	newClient ClientFactory
	runOpts   connectors.RunOptions
}

// Option configures a Provider.
type Option func(*Provider)

// WithClientFactory replaces how the API client is built.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) { p.newClient = f }
}

// WithRunOptions sets how units of work are executed.
func WithRunOptions(o connectors.RunOptions) Option {
	return func(p *Provider) { p.runOpts = o }
}

// New creates a Jira provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		newClient: func(ctx context.Context, cfg *Config) (API, error) {
			return NewClient(ctx, cfg)
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IntegrationType returns "jira".
func (p *Provider) IntegrationType() string { return TypeID }

// Capabilities returns the evidence classes Jira can produce.
func (p *Provider) Capabilities() domain.CapabilitySet { return descriptor.Capabilities }

// RequiredFields lists the keys every Jira config needs.
func (p *Provider) RequiredFields() []string { return descriptor.RequiredFields() }

// OptionalFields lists the remaining documented keys.
func (p *Provider) OptionalFields() []string { return descriptor.OptionalFields() }

// Describe returns the configuration surface.
func (p *Provider) Describe() domain.IntegrationType { return descriptor }

// ValidateConfig checks raw without contacting Jira.
func (p *Provider) ValidateConfig(raw map[string]any) error {
	_, err := ParseConfig(raw)
	return err
}

// TestConnection fetches the user owning the credentials.
func (p *Provider) TestConnection(ctx context.Context, raw map[string]any) (*domain.ConnectionDetails, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	client, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	me, err := client.Myself(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			err = fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	return &domain.ConnectionDetails{
		AccountID:   me.AccountID,
		AccountName: me.DisplayName,
		Permissions: connectors.DerivePermissions(cfg.Services, AllServices(), servicePermissions),
		Metadata: map[string]string{
			"auth_method": cfg.AuthMethod,
			"site":        cfg.Site(),
		},
	}, nil
}

// Sync runs every enabled service.
func (p *Provider) Sync(ctx context.Context, raw map[string]any, sc domain.SyncContext) (*domain.SyncResult, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	if cfg.Services.AllDisabled(AllServices()) {
		return domain.NewSyncResult(), nil
	}

	client, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}
	units := plan(ctx, client, cfg)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return connectors.RunUnits(ctx, connectors.Scope{Provider: TypeID, Sync: sc}, units, p.runOpts)
}
