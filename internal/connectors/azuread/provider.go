package azuread

import (
	"context"
	"fmt"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// TypeID is the integration type identifier of the Azure AD provider.
const TypeID = "azure_ad"

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// servicePermissions maps each service to the Graph application
// permissions it relies on.
var servicePermissions = map[string][]string{
	ServiceUsers:             {"User.Read.All", "AuditLog.Read.All"},
	ServiceGroups:            {"Group.Read.All"},
	ServiceDirectoryRoles:    {"RoleManagement.Read.Directory"},
	ServiceSignInLogs:        {"AuditLog.Read.All"},
	ServiceConditionalAccess: {"Policy.Read.All"},
}

var descriptor = domain.IntegrationType{
	ID:          TypeID,
	Name:        "Azure AD (Entra ID)",
	Description: "Users and MFA registration, groups, directory roles, sign-ins and Conditional Access",
	AuthMethods: []string{AuthClientSecret, AuthOAuth},
	Capabilities: domain.NewCapabilitySet(
		domain.CapUserSync, domain.CapAccessSync, domain.CapAuditLogs,
		domain.CapSecurityFindings, domain.CapConfigurationState,
	),
	ConfigKeys: []domain.ConfigKey{
		{Key: connectors.KeyAuthMethod, Label: "Auth Method", Description: "client_secret or oauth", Required: true},
		{Key: "tenant_id", Label: "Tenant ID", Description: "Directory ID or a verified domain", Required: true},
		{Key: "client_id", Label: "Client ID", Description: "Application (client) ID of the app registration"},
		{Key: "client_secret", Label: "Client Secret", Description: "Client secret of the app registration", Secret: true},
		{Key: "access_token", Label: "Access Token", Description: "Delegated Graph access token", Secret: true},
		{Key: "refresh_token", Label: "Refresh Token", Description: "Delegated Graph refresh token", Secret: true},
		{Key: "sign_in_lookback_days", Label: "Sign-in Lookback Days", Description: "Days of sign-ins to collect", Default: "7"},
		{Key: "max_sign_ins", Label: "Max Sign-ins", Description: "Upper bound on sign-ins per sync", Default: "1000"},
		{Key: connectors.KeyServices, Label: "Services", Description: "Per-service enablement; all enabled by default"},
	},
	Services: AllServices(),
}

// ClientFactory builds the API client for a config.
type ClientFactory func(ctx context.Context, cfg *Config) (API, error)

// Provider collects compliance evidence from Azure AD.
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

// New creates an Azure AD provider.
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

// IntegrationType returns "azure_ad".
func (p *Provider) IntegrationType() string { return TypeID }

// Capabilities returns the evidence classes Azure AD can produce.
func (p *Provider) Capabilities() domain.CapabilitySet { return descriptor.Capabilities }

// RequiredFields lists the keys every Azure AD config needs.
func (p *Provider) RequiredFields() []string { return descriptor.RequiredFields() }

// OptionalFields lists the remaining documented keys.
func (p *Provider) OptionalFields() []string { return descriptor.OptionalFields() }

// Describe returns the configuration surface.
func (p *Provider) Describe() domain.IntegrationType { return descriptor }

// ValidateConfig checks raw without contacting Graph.
func (p *Provider) ValidateConfig(raw map[string]any) error {
	_, err := ParseConfig(raw)
	return err
}

// TestConnection fetches the tenant profile.
func (p *Provider) TestConnection(ctx context.Context, raw map[string]any) (*domain.ConnectionDetails, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	client, err := p.newClient(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	org, err := client.Organization(ctx)
	if err != nil {
		if IsUnauthorized(err) {
			err = fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	details := &domain.ConnectionDetails{
		AccountID:   org.ID,
		AccountName: org.DisplayName,
		Permissions: connectors.DerivePermissions(cfg.Services, AllServices(), servicePermissions),
		Metadata: map[string]string{
			"auth_method": cfg.AuthMethod,
			"tenant_id":   cfg.TenantID,
		},
	}
	for _, d := range org.VerifiedDomains {
		if d.IsDefault {
			details.Metadata["default_domain"] = d.Name
		}
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
