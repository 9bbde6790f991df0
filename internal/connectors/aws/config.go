package aws

import (
	"regexp"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Authentication methods.
const (
	AuthAccessKeys = "access_keys"
	AuthAssumeRole = "assume_role"
)

// Service names accepted in the services map.
const (
	ServiceIAM            = "iam"
	ServiceS3             = "s3"
	ServiceCloudTrail     = "cloudtrail"
	ServiceConfig         = "config"
	ServiceGuardDuty      = "guardduty"
	ServiceSecurityGroups = "security_groups"
	ServiceRDS            = "rds"
	ServiceELB            = "elb"
	ServiceCloudWatch     = "cloudwatch"
)

// Defaults for optional fields.
const (
	DefaultMaxFindings = 100
	DefaultSessionName = "evidence-sync"
)

// globalServices run once per sync in the primary region.
var globalServices = []string{ServiceIAM, ServiceS3, ServiceCloudTrail}

// regionalServices run once per configured region.
var regionalServices = []string{
	ServiceConfig, ServiceGuardDuty, ServiceSecurityGroups, ServiceRDS, ServiceELB, ServiceCloudWatch,
}

// AllServices returns every service name in execution order.
func AllServices() []string {
	out := make([]string, 0, len(globalServices)+len(regionalServices))
	out = append(out, globalServices...)
	return append(out, regionalServices...)
}

var (
	roleARNRegex = regexp.MustCompile(`^arn:aws[a-zA-Z-]*:iam::\d{12}:role/[\w+=,.@/-]+$`)
	regionRegex  = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]*)?-[a-z]+-\d+$`)
)

// Config is the typed configuration of an AWS integration.
type Config struct {
	AuthMethod      string              `mapstructure:"auth_method"`
	AccessKeyID     string              `mapstructure:"access_key_id"`
	SecretAccessKey string              `mapstructure:"secret_access_key"`
	SessionToken    string              `mapstructure:"session_token"`
	RoleARN         string              `mapstructure:"role_arn"`
	ExternalID      string              `mapstructure:"external_id"`
	SessionName     string              `mapstructure:"session_name"`
	Region          string              `mapstructure:"region"`
	Regions         []string            `mapstructure:"regions"`
	MaxFindings     int                 `mapstructure:"max_findings"`
	Services        connectors.Services `mapstructure:"services"`
}

// ParseConfig decodes, defaults and validates raw.
func ParseConfig(raw map[string]any) (*Config, error) {
	cfg := &Config{}
	if err := connectors.DecodeConfig(raw, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.MaxFindings = connectors.DefaultInt(c.MaxFindings, DefaultMaxFindings)
	if c.SessionName == "" {
		c.SessionName = DefaultSessionName
	}
}

// Validate checks the configuration. It is the single place where the
// auth_method union is resolved.
func (c *Config) Validate() error {
	if err := connectors.RequireOneOf(connectors.KeyAuthMethod, c.AuthMethod, AuthAccessKeys, AuthAssumeRole); err != nil {
		return err
	}

	switch c.AuthMethod {
	case AuthAccessKeys:
		if err := connectors.RequireString("access_key_id", c.AccessKeyID); err != nil {
			return err
		}
		if err := connectors.RequireString("secret_access_key", c.SecretAccessKey); err != nil {
			return err
		}
	case AuthAssumeRole:
		if err := connectors.RequireString("role_arn", c.RoleARN); err != nil {
			return err
		}
		if !roleARNRegex.MatchString(c.RoleARN) {
			return domain.NewConfigError("role_arn",
				"%q is not a valid IAM role ARN; expected arn:aws:iam::<account-id>:role/<name>", c.RoleARN)
		}
		// Base credentials are optional; when given, both halves are required.
		if c.AccessKeyID != "" || c.SecretAccessKey != "" {
			if err := connectors.RequireString("access_key_id", c.AccessKeyID); err != nil {
				return err
			}
			if err := connectors.RequireString("secret_access_key", c.SecretAccessKey); err != nil {
				return err
			}
		}
	}

	if len(c.RegionList()) == 0 {
		return domain.NewConfigError("region", "is required")
	}
	if c.Region != "" && !regionRegex.MatchString(c.Region) {
		return domain.NewConfigError("region", "%q is not a valid AWS region", c.Region)
	}
	for _, r := range c.Regions {
		if r == "" {
			continue
		}
		if !regionRegex.MatchString(r) {
			return domain.NewConfigError("regions", "%q is not a valid AWS region", r)
		}
	}
	if err := connectors.NonNegative("max_findings", c.MaxFindings); err != nil {
		return err
	}
	return c.Services.Validate(AllServices())
}

// RegionList returns the primary region followed by the additional
// regions, de-duplicated.
func (c *Config) RegionList() []string {
	return connectors.ScopeList(c.Region, c.Regions)
}

// PrimaryRegion is the region global services run in.
func (c *Config) PrimaryRegion() string {
	return c.RegionList()[0]
}
