package google

import (
	"context"
	"fmt"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// TypeID is the integration type identifier of the Google Workspace provider.
const TypeID = "google_workspace"

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// servicePermissions maps each service to the OAuth scopes it relies on.
var servicePermissions = map[string][]string{
	ServiceUsers:      {"admin.directory.user.readonly"},
	ServiceGroups:     {"admin.directory.group.readonly", "admin.directory.group.member.readonly"},
	ServiceLoginAudit: {"admin.reports.audit.readonly"},
}

var descriptor = domain.IntegrationType{
	ID:          TypeID,
	Name:        "Google Workspace",
	Description: "Users, 2-Step Verification, groups and login audit events",
	AuthMethods: []string{AuthServiceAccount, AuthOAuth},
	Capabilities: domain.NewCapabilitySet(
		domain.CapUserSync, domain.CapAccessSync, domain.CapAuditLogs,
	),
	ConfigKeys: []domain.ConfigKey{
		{Key: connectors.KeyAuthMethod, Label: "Auth Method", Description: "service_account or oauth", Required: true},
		{Key: "domain", Label: "Domain", Description: "Primary Workspace domain", Required: true},
		{Key: "service_account_json", Label: "Service Account Key", Description: "JSON key of a service account with domain-wide delegation", Secret: true},
		{Key: "admin_email", Label: "Admin Email", Description: "Administrator impersonated by the service account"},
		{Key: "access_token", Label: "Access Token", Description: "OAuth access token", Secret: true},
		{Key: "refresh_token", Label: "Refresh Token", Description: "OAuth refresh token", Secret: true},
		{Key: "client_id", Label: "Client ID", Description: "OAuth client ID, needed to refresh"},
		{Key: "client_secret", Label: "Client Secret", Description: "OAuth client secret, needed to refresh", Secret: true},
		{Key: "login_lookback_days", Label: "Login Lookback Days", Description: "Days of login activity to collect", Default: "30"},
		{Key: "max_events", Label: "Max Events", Description: "Upper bound on login events per sync", Default: "1000"},
		{Key: connectors.KeyServices, Label: "Services", Description: "Per-service enablement; all enabled by default"},
	},
	Services: AllServices(),
}

// ClientFactory builds the API client for a config.
type ClientFactory func(ctx context.Context, cfg *Config) (API, error)

// Provider collects compliance evidence from Google Workspace.
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

// New creates a Google Workspace provider.
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

// IntegrationType returns "google_workspace".
func (p *Provider) IntegrationType() string { return TypeID }

// Capabilities returns the evidence classes Google Workspace can produce.
func (p *Provider) Capabilities() domain.CapabilitySet { return descriptor.Capabilities }

// RequiredFields lists the keys every Google Workspace config needs.
func (p *Provider) RequiredFields() []string { return descriptor.RequiredFields() }

// OptionalFields lists the remaining documented keys.
func (p *Provider) OptionalFields() []string { return descriptor.OptionalFields() }

// Describe returns the configuration surface.
func (p *Provider) Describe() domain.IntegrationType { return descriptor }

// ValidateConfig checks raw without contacting Google.
func (p *Provider) ValidateConfig(raw map[string]any) error {
	_, err := ParseConfig(raw)
	return err
}

// TestConnection fetches the customer owning the credentials.
func (p *Provider) TestConnection(ctx context.Context, raw map[string]any) (*domain.ConnectionDetails, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	client, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	customer, err := client.Customer(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			err = fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	details := &domain.ConnectionDetails{
		AccountID:   customer.Id,
		AccountName: customer.CustomerDomain,
		Permissions: connectors.DerivePermissions(cfg.Services, AllServices(), servicePermissions),
		Metadata: map[string]string{
			"auth_method": cfg.AuthMethod,
			"domain":      cfg.Domain,
		},
	}
	if details.AccountName == "" {
		details.AccountName = cfg.Domain
	}
	if cfg.AuthMethod == AuthServiceAccount {
		details.Metadata["admin_email"] = cfg.AdminEmail
	}
	return details, nil
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
