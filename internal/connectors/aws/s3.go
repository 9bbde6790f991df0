package aws

import (
	"context"
	"fmt"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3svc "github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Tri-state results of a per-bucket lookup.
const (
	statusEnabled  = "enabled"
	statusDisabled = "disabled"
	statusUnknown  = "unknown"
)

// Bucket is the analysed state of one S3 bucket.
type Bucket struct {
	Name       string `json:"name"`
	CreatedAt  string `json:"created_at,omitempty"`
	Public     string `json:"public"`
	Encryption string `json:"encryption"`
	Algorithm  string `json:"algorithm,omitempty"`
}

func listBuckets(ctx context.Context, client S3API) ([]Bucket, error) {
	var buckets []Bucket
	input := &s3svc.ListBucketsInput{}
	for {
		out, err := client.ListBuckets(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list S3 buckets: %w", err)
		}
		for _, b := range out.Buckets {
			bucket := Bucket{Name: awsv2.ToString(b.Name)}
			if b.CreationDate != nil {
				bucket.CreatedAt = b.CreationDate.UTC().Format(time.RFC3339)
			}
			buckets = append(buckets, bucket)
		}
		if awsv2.ToString(out.ContinuationToken) == "" {
			return buckets, nil
		}
		input.ContinuationToken = out.ContinuationToken
	}
}

// bucketPublicStatus reports whether the bucket policy makes it public.
// A bucket without a policy is not public.
func bucketPublicStatus(ctx context.Context, client S3API, name string) string {
	out, err := client.GetBucketPolicyStatus(ctx, &s3svc.GetBucketPolicyStatusInput{
		Bucket: awsv2.String(name),
	})
	if err != nil {
		if hasCode(err, codeNoSuchBucketPolicy) {
			return statusDisabled
		}
		logger.Warn("skipping bucket policy status", "bucket", name, "error", err)
		return statusUnknown
	}
	if out.PolicyStatus != nil && awsv2.ToBool(out.PolicyStatus.IsPublic) {
		return statusEnabled
	}
	return statusDisabled
}

// bucketEncryption reports the default server-side encryption of the bucket.
func bucketEncryption(ctx context.Context, client S3API, name string) (status, algorithm string) {
	out, err := client.GetBucketEncryption(ctx, &s3svc.GetBucketEncryptionInput{
		Bucket: awsv2.String(name),
	})
	if err != nil {
		if hasCode(err, codeNoEncryptionConfig) {
			return statusDisabled, ""
		}
		logger.Warn("skipping bucket encryption", "bucket", name, "error", err)
		return statusUnknown, ""
	}
	if out.ServerSideEncryptionConfiguration == nil || len(out.ServerSideEncryptionConfiguration.Rules) == 0 {
		return statusDisabled, ""
	}
	rule := out.ServerSideEncryptionConfiguration.Rules[0]
	if rule.ApplyServerSideEncryptionByDefault != nil {
		algorithm = string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm)
	}
	return statusEnabled, algorithm
}

// collectS3 inventories buckets and flags public and unencrypted ones.
func collectS3(ctx context.Context, client S3API) (*domain.SyncResult, error) {
	buckets, err := listBuckets(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(buckets)
	if len(buckets) == 0 {
		return result, nil
	}

	for i := range buckets {
		buckets[i].Public = bucketPublicStatus(ctx, client, buckets[i].Name)
		buckets[i].Encryption, buckets[i].Algorithm = bucketEncryption(ctx, client, buckets[i].Name)
	}

	public := connectors.Select(buckets, func(b Bucket) bool { return b.Public == statusEnabled })
	unencrypted := connectors.Select(buckets, func(b Bucket) bool { return b.Encryption == statusDisabled })

	result.AddEvidence(connectors.NewEvidence(TypeID, "s3:buckets", "S3 bucket inventory").
		Describe("%d S3 buckets inspected for public access and default encryption", len(buckets)).
		With("total_buckets", len(buckets)).
		With("public_buckets", len(public)).
		With("unencrypted_buckets", len(unencrypted)).
		With("encrypted_percent", connectors.Percent(
			connectors.Count(buckets, func(b Bucket) bool { return b.Encryption == statusEnabled }), len(buckets))).
		With("buckets", buckets).
		Controls(controlsS3Inventory...).
		Build())

	if len(public) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "s3:buckets:public", "Publicly accessible S3 buckets").
			Describe("%d of %d S3 buckets have a public bucket policy", len(public), len(buckets)).
			With("count", len(public)).
			With("buckets", public).
			Controls(controlsS3Public...).
			Build())
	}

	if len(unencrypted) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "s3:buckets:unencrypted", "Unencrypted S3 buckets").
			Describe("%d of %d S3 buckets have no default server-side encryption", len(unencrypted), len(buckets)).
			With("count", len(unencrypted)).
			With("buckets", unencrypted).
			Controls(controlsS3Encryption...).
			Build())
	}

	return result, nil
}
