// Package aws implements the evidence provider for Amazon Web Services.
//
// The provider inspects one AWS account through aws-sdk-go-v2. Every call
// builds a fresh SDK config from the integration's credentials and discards
// it when the call returns.
//
// # Authentication
//
//   - access_keys: static access_key_id and secret_access_key, with an
//     optional session_token.
//   - assume_role: an IAM role assumed through STS. The base credentials are
//     the static keys when given, otherwise the default credential chain.
//     An external_id and session_name may be supplied.
//
// # Execution Plan
//
// Global services (iam, s3, cloudtrail) run once in the primary region.
// Regional services (config, guardduty, security_groups, rds, elb,
// cloudwatch) run once per region in the ordered, de-duplicated list made of
// region followed by regions. Units run service-major: every region of one
// service before the next service. A failed regional unit records a
// SyncError whose resource is the region.
//
// # Failure Policy
//
//	service          unit fails when                       item degrades when
//	iam              ListUsers fails                       MFA / login profile / key lookup fails -> "unknown"
//	s3               ListBuckets fails                     policy status / encryption lookup fails -> "unknown"
//	cloudtrail       DescribeTrails fails                  GetTrailStatus fails -> logging "unknown"
//	config           DescribeComplianceByConfigRule fails  recorder status lookup fails -> "unknown"
//	guardduty        ListDetectors / findings calls fail   GetDetector fails -> detector skipped
//	security_groups  DescribeSecurityGroups fails          -
//	rds              DescribeDBInstances fails             -
//	elb              DescribeLoadBalancers fails           DescribeListeners fails -> listeners "unknown"
//	cloudwatch       DescribeAlarms fails                  -
//
// Items in an unknown state appear in the inventory but never in an
// exception list.
package aws
