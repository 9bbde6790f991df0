package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	configsvc "github.com/aws/aws-sdk-go-v2/service/configservice"
	configtypes "github.com/aws/aws-sdk-go-v2/service/configservice/types"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// ConfigRule is the compliance state of one AWS Config rule.
type ConfigRule struct {
	Name       string `json:"name"`
	Compliance string `json:"compliance"`
}

func listConfigRules(ctx context.Context, client ConfigServiceAPI) ([]ConfigRule, error) {
	var rules []ConfigRule
	input := &configsvc.DescribeComplianceByConfigRuleInput{}
	for {
		out, err := client.DescribeComplianceByConfigRule(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("describe Config rule compliance: %w", err)
		}
		for _, r := range out.ComplianceByConfigRules {
			rule := ConfigRule{Name: awsv2.ToString(r.ConfigRuleName), Compliance: string(configtypes.ComplianceTypeInsufficientData)}
			if r.Compliance != nil && r.Compliance.ComplianceType != "" {
				rule.Compliance = string(r.Compliance.ComplianceType)
			}
			rules = append(rules, rule)
		}
		if awsv2.ToString(out.NextToken) == "" {
			return rules, nil
		}
		input.NextToken = out.NextToken
	}
}

func recorderStatus(ctx context.Context, client ConfigServiceAPI, region string) string {
	out, err := client.DescribeConfigurationRecorderStatus(ctx, &configsvc.DescribeConfigurationRecorderStatusInput{})
	if err != nil {
		logger.Warn("skipping configuration recorder status", "region", region, "error", err)
		return statusUnknown
	}
	for _, s := range out.ConfigurationRecordersStatus {
		if s.Recording {
			return statusEnabled
		}
	}
	return statusDisabled
}

// collectConfigRules reports AWS Config rule compliance for one region.
func collectConfigRules(ctx context.Context, client ConfigServiceAPI, region string) (*domain.SyncResult, error) {
	rules, err := listConfigRules(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(rules)
	if len(rules) == 0 {
		return result, nil
	}

	nonCompliant := connectors.Select(rules, func(r ConfigRule) bool {
		return r.Compliance == string(configtypes.ComplianceTypeNonCompliant)
	})
	compliant := connectors.Count(rules, func(r ConfigRule) bool {
		return r.Compliance == string(configtypes.ComplianceTypeCompliant)
	})

	result.AddEvidence(connectors.NewEvidence(TypeID, "config:rules:"+region, "AWS Config rule compliance ("+region+")").
		Describe("%d of %d AWS Config rules compliant in %s", compliant, len(rules), region).
		With("region", region).
		With("recorder", recorderStatus(ctx, client, region)).
		With("total_rules", len(rules)).
		With("compliant_rules", compliant).
		With("non_compliant_rules", len(nonCompliant)).
		With("compliance_by_state", connectors.CountBy(rules, func(r ConfigRule) string { return r.Compliance })).
		With("compliance_percent", connectors.Percent(compliant, len(rules))).
		With("non_compliant", nonCompliant).
		Controls(controlsConfigRules...).
		Build())

	return result, nil
}
