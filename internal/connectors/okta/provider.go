package okta

import (
	"context"
	"fmt"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// TypeID is the integration type identifier of the Okta provider.
const TypeID = "okta"

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// servicePermissions maps each service to the OAuth scopes it relies on.
// API tokens inherit the permissions of the admin who created them.
var servicePermissions = map[string][]string{
	ServiceUsers:        {"okta.users.read", "okta.factors.read"},
	ServiceGroups:       {"okta.groups.read"},
	ServiceApplications: {"okta.apps.read"},
	ServiceSystemLog:    {"okta.logs.read"},
	ServicePolicies:     {"okta.policies.read"},
}

var descriptor = domain.IntegrationType{
	ID:          TypeID,
	Name:        "Okta",
	Description: "Users and MFA enrollment, groups, applications, System Log and policies",
	AuthMethods: []string{AuthAPIToken, AuthOAuth},
	Capabilities: domain.NewCapabilitySet(
		domain.CapUserSync, domain.CapAccessSync, domain.CapAuditLogs,
		domain.CapSecurityFindings, domain.CapConfigurationState,
	),
	ConfigKeys: []domain.ConfigKey{
		{Key: connectors.KeyAuthMethod, Label: "Auth Method", Description: "api_token or oauth", Required: true},
		{Key: "domain", Label: "Domain", Description: "Org domain, e.g. acme.okta.com", Required: true},
		{Key: "api_token", Label: "API Token", Description: "SSWS API token of a read-only admin", Secret: true},
		{Key: "access_token", Label: "Access Token", Description: "OAuth access token", Secret: true},
		{Key: "refresh_token", Label: "Refresh Token", Description: "OAuth refresh token", Secret: true},
		{Key: "client_id", Label: "Client ID", Description: "OAuth app client ID, needed to refresh"},
		{Key: "client_secret", Label: "Client Secret", Description: "OAuth app client secret, needed to refresh", Secret: true},
		{Key: "log_lookback_days", Label: "Log Lookback Days", Description: "Days of System Log events to collect", Default: "7"},
		{Key: "max_log_events", Label: "Max Log Events", Description: "Upper bound on System Log events per sync", Default: "1000"},
		{Key: connectors.KeyServices, Label: "Services", Description: "Per-service enablement; all enabled by default"},
	},
	Services: AllServices(),
}

// ClientFactory builds the API client for a config.
type ClientFactory func(ctx context.Context, cfg *Config) (API, error)

// Provider collects compliance evidence from Okta.
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

// New creates an Okta provider.
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

// IntegrationType returns "okta".
func (p *Provider) IntegrationType() string { return TypeID }

// Capabilities returns the evidence classes Okta can produce.
func (p *Provider) Capabilities() domain.CapabilitySet { return descriptor.Capabilities }

// RequiredFields lists the keys every Okta config needs.
func (p *Provider) RequiredFields() []string { return descriptor.RequiredFields() }

// OptionalFields lists the remaining documented keys.
func (p *Provider) OptionalFields() []string { return descriptor.OptionalFields() }

// Describe returns the configuration surface.
func (p *Provider) Describe() domain.IntegrationType { return descriptor }

// ValidateConfig checks raw without contacting Okta.
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

	me, err := client.CurrentUser(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			err = fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	return &domain.ConnectionDetails{
		AccountID:   me.ID,
		AccountName: me.Profile.Login,
		Permissions: connectors.DerivePermissions(cfg.Services, AllServices(), servicePermissions),
		Metadata: map[string]string{
			"auth_method": cfg.AuthMethod,
			"domain":      cfg.Domain,
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
	return connectors.RunUnits(ctx, connectors.Scope{Provider: TypeID, Sync: sc}, plan(client, cfg, sc), p.runOpts)
}
