package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	cloudtrailsvc "github.com/aws/aws-sdk-go-v2/service/cloudtrail"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Trail is the analysed configuration of one CloudTrail trail.
type Trail struct {
	Name              string `json:"name"`
	HomeRegion        string `json:"home_region,omitempty"`
	S3Bucket          string `json:"s3_bucket,omitempty"`
	MultiRegion       bool   `json:"multi_region"`
	LogFileValidation bool   `json:"log_file_validation"`
	KMSEncrypted      bool   `json:"kms_encrypted"`
	OrganizationTrail bool   `json:"organization_trail"`
	Logging           string `json:"logging"`
}

func trailLogging(ctx context.Context, client CloudTrailAPI, arn, name string) string {
	id := arn
	if id == "" {
		id = name
	}
	out, err := client.GetTrailStatus(ctx, &cloudtrailsvc.GetTrailStatusInput{Name: awsv2.String(id)})
	if err != nil {
		logger.Warn("skipping trail status", "trail", name, "error", err)
		return statusUnknown
	}
	if awsv2.ToBool(out.IsLogging) {
		return statusEnabled
	}
	return statusDisabled
}

// collectCloudTrail reports trail coverage and integrity settings.
func collectCloudTrail(ctx context.Context, client CloudTrailAPI) (*domain.SyncResult, error) {
	out, err := client.DescribeTrails(ctx, &cloudtrailsvc.DescribeTrailsInput{
		IncludeShadowTrails: awsv2.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("describe CloudTrail trails: %w", err)
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(out.TrailList)
	if len(out.TrailList) == 0 {
		return result, nil
	}

	trails := make([]Trail, 0, len(out.TrailList))
	for _, t := range out.TrailList {
		name := awsv2.ToString(t.Name)
		trails = append(trails, Trail{
			Name:              name,
			HomeRegion:        awsv2.ToString(t.HomeRegion),
			S3Bucket:          awsv2.ToString(t.S3BucketName),
			MultiRegion:       awsv2.ToBool(t.IsMultiRegionTrail),
			LogFileValidation: awsv2.ToBool(t.LogFileValidationEnabled),
			KMSEncrypted:      awsv2.ToString(t.KmsKeyId) != "",
			OrganizationTrail: awsv2.ToBool(t.IsOrganizationTrail),
			Logging:           trailLogging(ctx, client, awsv2.ToString(t.TrailARN), name),
		})
	}

	multiRegionLogging := connectors.Count(trails, func(t Trail) bool {
		return t.MultiRegion && t.Logging == statusEnabled
	})

	result.AddEvidence(connectors.NewEvidence(TypeID, "cloudtrail:trails", "CloudTrail audit logging configuration").
		Describe("%d CloudTrail trails, %d multi-region and logging", len(trails), multiRegionLogging).
		With("total_trails", len(trails)).
		With("multi_region_logging", multiRegionLogging).
		With("log_file_validation", connectors.Count(trails, func(t Trail) bool { return t.LogFileValidation })).
		With("kms_encrypted", connectors.Count(trails, func(t Trail) bool { return t.KMSEncrypted })).
		With("account_covered", multiRegionLogging > 0).
		With("trails", trails).
		Controls(controlsCloudTrail...).
		Build())

	return result, nil
}
