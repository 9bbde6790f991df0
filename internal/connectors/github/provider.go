package github

import (
	"context"
	"fmt"
	"strconv"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// TypeID is the integration type identifier of the GitHub provider.
const TypeID = "github"

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// servicePermissions maps each service to the token scopes it relies on.
var servicePermissions = map[string][]string{
	ServiceRepositories:     {"repo"},
	ServiceBranchProtection: {"repo"},
	ServiceMembers:          {"read:org"},
	ServiceSecurityAlerts:   {"repo", "security_events"},
}

var descriptor = domain.IntegrationType{
	ID:          TypeID,
	Name:        "GitHub",
	Description: "Repositories, branch protection, organisation members and security alerts",
	AuthMethods: []string{AuthToken, AuthOAuth},
	Capabilities: domain.NewCapabilitySet(
		domain.CapUserSync, domain.CapAccessSync, domain.CapSecurityFindings,
		domain.CapAssetInventory, domain.CapConfigurationState,
	),
	ConfigKeys: []domain.ConfigKey{
		{Key: connectors.KeyAuthMethod, Label: "Auth Method", Description: "token or oauth", Required: true},
		{Key: "token", Label: "Personal Access Token", Description: "Required for token auth", Secret: true},
		{Key: "access_token", Label: "Access Token", Description: "OAuth access token", Secret: true},
		{Key: "refresh_token", Label: "Refresh Token", Description: "OAuth refresh token", Secret: true},
		{Key: "client_id", Label: "Client ID", Description: "OAuth app client ID, needed to refresh"},
		{Key: "client_secret", Label: "Client Secret", Description: "OAuth app client secret, needed to refresh", Secret: true},
		{Key: "organization", Label: "Organization", Description: "Organisation login; empty uses the authenticated user's repositories"},
		{Key: "repositories", Label: "Repositories", Description: "Allow-list of repository names or owner/name"},
		{Key: "include_archived", Label: "Include Archived", Description: "Keep archived repositories", Default: "false"},
		{Key: "base_url", Label: "API Base URL", Description: "GitHub Enterprise Server API URL (https)"},
		{Key: connectors.KeyServices, Label: "Services", Description: "Per-service enablement; all enabled by default"},
	},
	Services: AllServices(),
}

// ClientFactory builds the API client for a config.
type ClientFactory func(ctx context.Context, cfg *Config) (API, error)

// Provider collects compliance evidence from GitHub.
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

// New creates a GitHub provider.
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

// IntegrationType returns "github".
func (p *Provider) IntegrationType() string { return TypeID }

// Capabilities returns the evidence classes GitHub can produce.
func (p *Provider) Capabilities() domain.CapabilitySet { return descriptor.Capabilities }

// RequiredFields lists the keys every GitHub config needs.
func (p *Provider) RequiredFields() []string { return descriptor.RequiredFields() }

// OptionalFields lists the remaining documented keys.
func (p *Provider) OptionalFields() []string { return descriptor.OptionalFields() }

// Describe returns the configuration surface.
func (p *Provider) Describe() domain.IntegrationType { return descriptor }

// ValidateConfig checks raw without contacting GitHub.
func (p *Provider) ValidateConfig(raw map[string]any) error {
	_, err := ParseConfig(raw)
	return err
}

// TestConnection fetches the organisation, or the authenticated user when
// no organisation is configured.
func (p *Provider) TestConnection(ctx context.Context, raw map[string]any) (*domain.ConnectionDetails, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	client, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	details := &domain.ConnectionDetails{
		Permissions: connectors.DerivePermissions(cfg.Services, AllServices(), servicePermissions),
		Metadata:    map[string]string{"auth_method": cfg.AuthMethod},
	}
	if cfg.BaseURL != "" {
		details.Metadata["base_url"] = cfg.BaseURL
	}

	if cfg.Organization != "" {
		org, err := client.Organization(ctx, cfg.Organization)
		if err != nil {
			return nil, connectionError(err)
		}
		details.AccountID = strconv.FormatInt(org.GetID(), 10)
		details.AccountName = org.GetLogin()
		details.Metadata["plan"] = org.GetPlan().GetName()
		return details, nil
	}

	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		return nil, connectionError(err)
	}
	details.AccountID = strconv.FormatInt(user.GetID(), 10)
	details.AccountName = user.GetLogin()
	return details, nil
}

func connectionError(err error) error {
	if IsUnauthorized(err) {
		err = fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
	}
	return &domain.ConnectionError{Provider: TypeID, Err: err}
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
