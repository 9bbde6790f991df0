package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cloudwatchsvc "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	ec2svc "github.com/aws/aws-sdk-go-v2/service/ec2"
	elbv2svc "github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	guarddutysvc "github.com/aws/aws-sdk-go-v2/service/guardduty"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	stssvc "github.com/aws/aws-sdk-go-v2/service/sts"
)

// S3API is the narrow S3 interface used by the bucket collector.
type S3API interface {
	ListBuckets(ctx context.Context, params *s3svc.ListBucketsInput, optFns ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error)
	GetBucketPolicyStatus(ctx context.Context, params *s3svc.GetBucketPolicyStatusInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketPolicyStatusOutput, error)
	GetBucketEncryption(ctx context.Context, params *s3svc.GetBucketEncryptionInput, optFns ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error)
}

// IAMAPI is the narrow IAM interface used by the user collector. It embeds
// ListUsersAPIClient so the SDK paginator can be used directly.
type IAMAPI interface {
	iamsvc.ListUsersAPIClient
	ListMFADevices(ctx context.Context, params *iamsvc.ListMFADevicesInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListMFADevicesOutput, error)
	GetLoginProfile(ctx context.Context, params *iamsvc.GetLoginProfileInput, optFns ...func(*iamsvc.Options)) (*iamsvc.GetLoginProfileOutput, error)
	ListAccessKeys(ctx context.Context, params *iamsvc.ListAccessKeysInput, optFns ...func(*iamsvc.Options)) (*iamsvc.ListAccessKeysOutput, error)
}

// CloudTrailAPI is the narrow CloudTrail interface for trail configuration.
type CloudTrailAPI interface {
	DescribeTrails(ctx context.Context, params *cloudtrailsvc.DescribeTrailsInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.DescribeTrailsOutput, error)
	GetTrailStatus(ctx context.Context, params *cloudtrailsvc.GetTrailStatusInput, optFns ...func(*cloudtrailsvc.Options)) (*cloudtrailsvc.GetTrailStatusOutput, error)
}

// ConfigServiceAPI is the narrow AWS Config interface for rule compliance
// and recorder status.
type ConfigServiceAPI interface {
	DescribeComplianceByConfigRule(ctx context.Context, params *configsvc.DescribeComplianceByConfigRuleInput, optFns ...func(*configsvc.Options)) (*configsvc.DescribeComplianceByConfigRuleOutput, error)
	DescribeConfigurationRecorderStatus(ctx context.Context, params *configsvc.DescribeConfigurationRecorderStatusInput, optFns ...func(*configsvc.Options)) (*configsvc.DescribeConfigurationRecorderStatusOutput, error)
}

// GuardDutyAPI is the narrow GuardDuty interface for detectors and findings.
type GuardDutyAPI interface {
	ListDetectors(ctx context.Context, params *guarddutysvc.ListDetectorsInput, optFns ...func(*guarddutysvc.Options)) (*guarddutysvc.ListDetectorsOutput, error)
	GetDetector(ctx context.Context, params *guarddutysvc.GetDetectorInput, optFns ...func(*guarddutysvc.Options)) (*guarddutysvc.GetDetectorOutput, error)
	ListFindings(ctx context.Context, params *guarddutysvc.ListFindingsInput, optFns ...func(*guarddutysvc.Options)) (*guarddutysvc.ListFindingsOutput, error)
	GetFindings(ctx context.Context, params *guarddutysvc.GetFindingsInput, optFns ...func(*guarddutysvc.Options)) (*guarddutysvc.GetFindingsOutput, error)
}

// EC2API is the narrow EC2 interface used for security group collection.
type EC2API interface {
	DescribeSecurityGroups(ctx context.Context, params *ec2svc.DescribeSecurityGroupsInput, optFns ...func(*ec2svc.Options)) (*ec2svc.DescribeSecurityGroupsOutput, error)
}

// RDSAPI satisfies rds.DescribeDBInstancesAPIClient for the SDK paginator.
type RDSAPI interface {
	DescribeDBInstances(ctx context.Context, params *rdssvc.DescribeDBInstancesInput, optFns ...func(*rdssvc.Options)) (*rdssvc.DescribeDBInstancesOutput, error)
}

// ELBAPI is the narrow ELBv2 interface for load balancers and listeners.
type ELBAPI interface {
	DescribeLoadBalancers(ctx context.Context, params *elbv2svc.DescribeLoadBalancersInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeLoadBalancersOutput, error)
	DescribeListeners(ctx context.Context, params *elbv2svc.DescribeListenersInput, optFns ...func(*elbv2svc.Options)) (*elbv2svc.DescribeListenersOutput, error)
}

// CloudWatchAPI is the narrow CloudWatch interface for alarm inventory.
type CloudWatchAPI interface {
	DescribeAlarms(ctx context.Context, params *cloudwatchsvc.DescribeAlarmsInput, optFns ...func(*cloudwatchsvc.Options)) (*cloudwatchsvc.DescribeAlarmsOutput, error)
}

// STSAPI resolves the caller identity.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *stssvc.GetCallerIdentityInput, optFns ...func(*stssvc.Options)) (*stssvc.GetCallerIdentityOutput, error)
}

// Clients bundles the service clients for one region.
type Clients struct {
	S3         S3API
	IAM        IAMAPI
	CloudTrail CloudTrailAPI
	Config     ConfigServiceAPI
	GuardDuty  GuardDutyAPI
	EC2        EC2API
	RDS        RDSAPI
	ELB        ELBAPI
	CloudWatch CloudWatchAPI
	STS        STSAPI
}

// ClientFactory creates Clients from a region-scoped AWS config.
// Injection point: tests replace this with a function returning fake clients.
type ClientFactory func(cfg awsv2.Config) *Clients

// NewClients creates production AWS SDK clients from the given config.
func NewClients(cfg awsv2.Config) *Clients {
	return &Clients{
		S3:         s3svc.NewFromConfig(cfg),
		IAM:        iamsvc.NewFromConfig(cfg),
		CloudTrail: cloudtrailsvc.NewFromConfig(cfg),
		Config:     configsvc.NewFromConfig(cfg),
		GuardDuty:  guarddutysvc.NewFromConfig(cfg),
		EC2:        ec2svc.NewFromConfig(cfg),
		RDS:        rdssvc.NewFromConfig(cfg),
		ELB:        elbv2svc.NewFromConfig(cfg),
		CloudWatch: cloudwatchsvc.NewFromConfig(cfg),
		STS:        stssvc.NewFromConfig(cfg),
	}
}

// ConfigLoader builds the base AWS config for an integration.
type ConfigLoader func(ctx context.Context, cfg *Config) (awsv2.Config, error)

// LoadSDKConfig builds an AWS config from the integration's credentials.
//
// access_keys uses the static keys. assume_role assumes the role through STS,
// starting from the static keys when present or the default chain otherwise.
func LoadSDKConfig(ctx context.Context, cfg *Config) (awsv2.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.PrimaryRegion()),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, cfg.SessionToken),
		))
	}

	sdkCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return awsv2.Config{}, fmt.Errorf("load AWS config: %w", err)
	}

	if cfg.AuthMethod == AuthAssumeRole {
		provider := stscreds.NewAssumeRoleProvider(stssvc.NewFromConfig(sdkCfg), cfg.RoleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = cfg.SessionName
				if cfg.ExternalID != "" {
					o.ExternalID = awsv2.String(cfg.ExternalID)
				}
			})
		sdkCfg.Credentials = awsv2.NewCredentialsCache(provider)
	}
	return sdkCfg, nil
}

// ConfigForRegion returns a copy of base scoped to region.
func ConfigForRegion(base awsv2.Config, region string) awsv2.Config {
	cfg := base.Copy()
	cfg.Region = region
	return cfg
}

// regionClients builds each region's clients once per sync.
type regionClients struct {
	base    awsv2.Config
	factory ClientFactory
	cache   map[string]*Clients
}

func newRegionClients(base awsv2.Config, factory ClientFactory) *regionClients {
	return &regionClients{base: base, factory: factory, cache: make(map[string]*Clients)}
}

// prepare builds the clients for every region up front so units can read
// the cache concurrently.
func (r *regionClients) prepare(regions []string) {
	for _, region := range regions {
		if _, ok := r.cache[region]; !ok {
			r.cache[region] = r.factory(ConfigForRegion(r.base, region))
		}
	}
}

func (r *regionClients) get(region string) *Clients {
	return r.cache[region]
}
