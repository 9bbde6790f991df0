package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	stssvc "github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// TypeID is the integration type identifier of the AWS provider.
const TypeID = "aws"

// Ensure Provider implements the interface.
var _ driven.Provider = (*Provider)(nil)

// servicePermissions maps each service to the IAM actions it relies on.
var servicePermissions = map[string][]string{
	ServiceIAM:            {"iam:ListUsers", "iam:ListMFADevices", "iam:GetLoginProfile", "iam:ListAccessKeys"},
	ServiceS3:             {"s3:ListAllMyBuckets", "s3:GetBucketPolicyStatus", "s3:GetEncryptionConfiguration"},
	ServiceCloudTrail:     {"cloudtrail:DescribeTrails", "cloudtrail:GetTrailStatus"},
	ServiceConfig:         {"config:DescribeComplianceByConfigRule", "config:DescribeConfigurationRecorderStatus"},
	ServiceGuardDuty:      {"guardduty:ListDetectors", "guardduty:GetDetector", "guardduty:ListFindings", "guardduty:GetFindings"},
	ServiceSecurityGroups: {"ec2:DescribeSecurityGroups"},
	ServiceRDS:            {"rds:DescribeDBInstances"},
	ServiceELB:            {"elasticloadbalancing:DescribeLoadBalancers", "elasticloadbalancing:DescribeListeners"},
	ServiceCloudWatch:     {"cloudwatch:DescribeAlarms"},
}

var descriptor = domain.IntegrationType{
	ID:          TypeID,
	Name:        "Amazon Web Services",
	Description: "IAM, storage, logging, threat detection and network posture of an AWS account",
	AuthMethods: []string{AuthAccessKeys, AuthAssumeRole},
	Capabilities: domain.NewCapabilitySet(
		domain.CapUserSync, domain.CapAccessSync, domain.CapAuditLogs, domain.CapSecurityFindings,
		domain.CapComplianceStatus, domain.CapAssetInventory, domain.CapConfigurationState,
	),
	ConfigKeys: []domain.ConfigKey{
		{Key: connectors.KeyAuthMethod, Label: "Auth Method", Description: "access_keys or assume_role", Required: true},
		{Key: "region", Label: "Region", Description: "Primary region; global services run here", Required: true},
		{Key: "access_key_id", Label: "Access Key ID", Description: "Required for access_keys; optional base credentials for assume_role", Secret: true},
		{Key: "secret_access_key", Label: "Secret Access Key", Description: "Pairs with access_key_id", Secret: true},
		{Key: "session_token", Label: "Session Token", Description: "Temporary session token", Secret: true},
		{Key: "role_arn", Label: "Role ARN", Description: "IAM role to assume (assume_role)"},
		{Key: "external_id", Label: "External ID", Description: "External ID required by the role trust policy"},
		{Key: "session_name", Label: "Session Name", Description: "Role session name", Default: DefaultSessionName},
		{Key: "regions", Label: "Additional Regions", Description: "Further regions for regional services"},
		{Key: "max_findings", Label: "Max Findings", Description: "GuardDuty findings collected per region", Default: "100"},
		{Key: connectors.KeyServices, Label: "Services", Description: "Per-service enablement; all enabled by default"},
	},
	Services: AllServices(),
}

// Provider collects compliance evidence from AWS.
type Provider struct {
	loadConfig ConfigLoader
	newClients ClientFactory
	runOpts    connectors.RunOptions
}

// Option configures a Provider.
type Option func(*Provider)

// WithConfigLoader replaces how the base AWS config is built.
func WithConfigLoader(l ConfigLoader) Option {
	return func(p *Provider) { p.loadConfig = l }
}

// WithClientFactory replaces how service clients are built.
func WithClientFactory(f ClientFactory) Option {
	return func(p *Provider) { p.newClients = f }
}

// WithRunOptions sets how units of work are executed.
func WithRunOptions(o connectors.RunOptions) Option {
	return func(p *Provider) { p.runOpts = o }
}

// New creates an AWS provider.
func New(opts ...Option) *Provider {
	p := &Provider{loadConfig: LoadSDKConfig, newClients: NewClients}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IntegrationType returns "aws".
func (p *Provider) IntegrationType() string { return TypeID }

// Capabilities returns the evidence classes AWS can produce.
func (p *Provider) Capabilities() domain.CapabilitySet { return descriptor.Capabilities }

// RequiredFields lists the keys every AWS config needs.
func (p *Provider) RequiredFields() []string { return descriptor.RequiredFields() }

// OptionalFields lists the remaining documented keys.
func (p *Provider) OptionalFields() []string { return descriptor.OptionalFields() }

// Describe returns the configuration surface.
func (p *Provider) Describe() domain.IntegrationType { return descriptor }

// ValidateConfig checks raw without contacting AWS.
func (p *Provider) ValidateConfig(raw map[string]any) error {
	_, err := ParseConfig(raw)
	return err
}

// TestConnection resolves the caller identity with STS.
func (p *Provider) TestConnection(ctx context.Context, raw map[string]any) (*domain.ConnectionDetails, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	base, err := p.loadConfig(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}
	clients := p.newClients(ConfigForRegion(base, cfg.PrimaryRegion()))

	identity, err := clients.STS.GetCallerIdentity(ctx, &stssvc.GetCallerIdentityInput{})
	if err != nil {
		if IsInvalidCredentials(err) {
			err = fmt.Errorf("%w: %w", domain.ErrAuthInvalid, err)
		}
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}

	account := awsv2.ToString(identity.Account)
	return &domain.ConnectionDetails{
		AccountID:   account,
		AccountName: account,
		Permissions: connectors.DerivePermissions(cfg.Services, AllServices(), servicePermissions),
		Metadata: map[string]string{
			"arn":         awsv2.ToString(identity.Arn),
			"user_id":     awsv2.ToString(identity.UserId),
			"auth_method": cfg.AuthMethod,
			"region":      cfg.PrimaryRegion(),
		},
	}, nil
}

// Sync runs every enabled service across the configured regions.
func (p *Provider) Sync(ctx context.Context, raw map[string]any, sc domain.SyncContext) (*domain.SyncResult, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, err
	}
	if cfg.Services.AllDisabled(AllServices()) {
		return domain.NewSyncResult(), nil
	}

	base, err := p.loadConfig(ctx, cfg)
	if err != nil {
		return nil, &domain.ConnectionError{Provider: TypeID, Err: err}
	}
	clients := newRegionClients(base, p.newClients)
	clients.prepare(cfg.RegionList())

	return connectors.RunUnits(ctx, connectors.Scope{Provider: TypeID, Sync: sc}, plan(cfg, clients), p.runOpts)
}
