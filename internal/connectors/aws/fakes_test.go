package aws

import (
	"context"
	"errors"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"
	iamsvc "github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	stssvc "github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

func apiError(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: code}
}

// fakeS3 embeds S3API so unimplemented calls panic.
type fakeS3 struct {
	S3API
	buckets    []string
	listErr    error
	public     map[string]bool
	policyErr  map[string]error
	encryption map[string]bool
	encErr     map[string]error
}

func (f *fakeS3) ListBuckets(context.Context, *s3svc.ListBucketsInput, ...func(*s3svc.Options)) (*s3svc.ListBucketsOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &s3svc.ListBucketsOutput{}
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for _, name := range f.buckets {
		out.Buckets = append(out.Buckets, s3types.Bucket{Name: awsv2.String(name), CreationDate: &created})
	}
	return out, nil
}

func (f *fakeS3) GetBucketPolicyStatus(_ context.Context, in *s3svc.GetBucketPolicyStatusInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketPolicyStatusOutput, error) {
	name := awsv2.ToString(in.Bucket)
	if err := f.policyErr[name]; err != nil {
		return nil, err
	}
	if _, ok := f.public[name]; !ok {
		return nil, apiError(codeNoSuchBucketPolicy)
	}
	return &s3svc.GetBucketPolicyStatusOutput{
		PolicyStatus: &s3types.PolicyStatus{IsPublic: awsv2.Bool(f.public[name])},
	}, nil
}

func (f *fakeS3) GetBucketEncryption(_ context.Context, in *s3svc.GetBucketEncryptionInput, _ ...func(*s3svc.Options)) (*s3svc.GetBucketEncryptionOutput, error) {
	name := awsv2.ToString(in.Bucket)
	if err := f.encErr[name]; err != nil {
		return nil, err
	}
	if !f.encryption[name] {
		return nil, apiError(codeNoEncryptionConfig)
	}
	return &s3svc.GetBucketEncryptionOutput{
		ServerSideEncryptionConfiguration: &s3types.ServerSideEncryptionConfiguration{
			Rules: []s3types.ServerSideEncryptionRule{{
				ApplyServerSideEncryptionByDefault: &s3types.ServerSideEncryptionByDefault{
					SSEAlgorithm: s3types.ServerSideEncryptionAes256,
				},
			}},
		},
	}, nil
}

type fakeIAM struct {
	IAMAPI
	users   []string
	mfa     map[string]bool
	console map[string]bool
	mfaErr  map[string]error
	keyAge  map[string]time.Duration
	listErr error
}

func (f *fakeIAM) ListUsers(context.Context, *iamsvc.ListUsersInput, ...func(*iamsvc.Options)) (*iamsvc.ListUsersOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &iamsvc.ListUsersOutput{}
	for _, name := range f.users {
		out.Users = append(out.Users, iamtypes.User{
			UserName: awsv2.String(name),
			Arn:      awsv2.String("arn:aws:iam::123456789012:user/" + name),
		})
	}
	return out, nil
}

func (f *fakeIAM) ListMFADevices(_ context.Context, in *iamsvc.ListMFADevicesInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListMFADevicesOutput, error) {
	name := awsv2.ToString(in.UserName)
	if err := f.mfaErr[name]; err != nil {
		return nil, err
	}
	out := &iamsvc.ListMFADevicesOutput{}
	if f.mfa[name] {
		out.MFADevices = []iamtypes.MFADevice{{UserName: in.UserName, SerialNumber: awsv2.String("mfa-" + name)}}
	}
	return out, nil
}

func (f *fakeIAM) GetLoginProfile(_ context.Context, in *iamsvc.GetLoginProfileInput, _ ...func(*iamsvc.Options)) (*iamsvc.GetLoginProfileOutput, error) {
	if !f.console[awsv2.ToString(in.UserName)] {
		return nil, apiError(codeNoSuchEntity)
	}
	return &iamsvc.GetLoginProfileOutput{LoginProfile: &iamtypes.LoginProfile{UserName: in.UserName}}, nil
}

func (f *fakeIAM) ListAccessKeys(_ context.Context, in *iamsvc.ListAccessKeysInput, _ ...func(*iamsvc.Options)) (*iamsvc.ListAccessKeysOutput, error) {
	out := &iamsvc.ListAccessKeysOutput{}
	if age, ok := f.keyAge[awsv2.ToString(in.UserName)]; ok {
		created := time.Now().Add(-age)
		out.AccessKeyMetadata = []iamtypes.AccessKeyMetadata{{
			UserName:   in.UserName,
			Status:     iamtypes.StatusTypeActive,
			CreateDate: &created,
		}}
	}
	return out, nil
}

type fakeConfigService struct {
	ConfigServiceAPI
	rules   map[string]configtypes.ComplianceType
	listErr error
}

func (f *fakeConfigService) DescribeComplianceByConfigRule(context.Context, *configsvc.DescribeComplianceByConfigRuleInput, ...func(*configsvc.Options)) (*configsvc.DescribeComplianceByConfigRuleOutput, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := &configsvc.DescribeComplianceByConfigRuleOutput{}
	for name, compliance := range f.rules {
		out.ComplianceByConfigRules = append(out.ComplianceByConfigRules, configtypes.ComplianceByConfigRule{
			ConfigRuleName: awsv2.String(name),
			Compliance:     &configtypes.Compliance{ComplianceType: compliance},
		})
	}
	return out, nil
}

func (f *fakeConfigService) DescribeConfigurationRecorderStatus(context.Context, *configsvc.DescribeConfigurationRecorderStatusInput, ...func(*configsvc.Options)) (*configsvc.DescribeConfigurationRecorderStatusOutput, error) {
	return &configsvc.DescribeConfigurationRecorderStatusOutput{
		ConfigurationRecordersStatus: []configtypes.ConfigurationRecorderStatus{{Name: awsv2.String("default"), Recording: true}},
	}, nil
}

type fakeSTS struct {
	account string
	err     error
}

func (f *fakeSTS) GetCallerIdentity(context.Context, *stssvc.GetCallerIdentityInput, ...func(*stssvc.Options)) (*stssvc.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &stssvc.GetCallerIdentityOutput{
		Account: awsv2.String(f.account),
		Arn:     awsv2.String("arn:aws:iam::" + f.account + ":user/auditor"),
		UserId:  awsv2.String("AIDAEXAMPLE"),
	}, nil
}

// fakeAWS returns a Provider whose clients come from perRegion, keyed by
// the region of the config handed to the factory.
func fakeAWS(perRegion map[string]*Clients) (*Provider, *[]string) {
	var built []string
	p := New(
		WithConfigLoader(func(_ context.Context, cfg *Config) (awsv2.Config, error) {
			return awsv2.Config{Region: cfg.PrimaryRegion()}, nil
		}),
		WithClientFactory(func(cfg awsv2.Config) *Clients {
			built = append(built, cfg.Region)
			if c, ok := perRegion[cfg.Region]; ok {
				return c
			}
			return &Clients{}
		}),
	)
	return p, &built
}

var errThrottled = errors.New("throttled")
