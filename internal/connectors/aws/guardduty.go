package aws

import (
	"context"
	"fmt"
	"sort"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	guarddutysvc "github.com/aws/aws-sdk-go-v2/service/guardduty"
	guarddutytypes "github.com/aws/aws-sdk-go-v2/service/guardduty/types"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// guardDutyBatch is the largest page GuardDuty accepts for findings calls.
const guardDutyBatch = 50

// Finding is a summarised GuardDuty finding.
type Finding struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Title     string  `json:"title"`
	Severity  float64 `json:"severity"`
	Level     string  `json:"level"`
	UpdatedAt string  `json:"updated_at,omitempty"`
}

// severityLevel buckets a GuardDuty severity score.
func severityLevel(score float64) string {
	switch {
	case score >= 7:
		return "high"
	case score >= 4:
		return "medium"
	default:
		return "low"
	}
}

func listDetectors(ctx context.Context, client GuardDutyAPI) ([]string, error) {
	var ids []string
	input := &guarddutysvc.ListDetectorsInput{}
	for {
		out, err := client.ListDetectors(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list GuardDuty detectors: %w", err)
		}
		ids = append(ids, out.DetectorIds...)
		if awsv2.ToString(out.NextToken) == "" {
			return ids, nil
		}
		input.NextToken = out.NextToken
	}
}

// listFindingIDs returns up to limit unarchived finding IDs, most severe first.
func listFindingIDs(ctx context.Context, client GuardDutyAPI, detectorID string, limit int) ([]string, error) {
	var ids []string
	input := &guarddutysvc.ListFindingsInput{
		DetectorId: awsv2.String(detectorID),
		FindingCriteria: &guarddutytypes.FindingCriteria{
			Criterion: map[string]guarddutytypes.Condition{
				"service.archived": {Equals: []string{"false"}},
			},
		},
		SortCriteria: &guarddutytypes.SortCriteria{
			AttributeName: awsv2.String("severity"),
			OrderBy:       guarddutytypes.OrderByDesc,
		},
	}
	for len(ids) < limit {
		input.MaxResults = awsv2.Int32(int32(min(guardDutyBatch, limit-len(ids))))
		out, err := client.ListFindings(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("list GuardDuty findings: %w", err)
		}
		ids = append(ids, out.FindingIds...)
		if awsv2.ToString(out.NextToken) == "" {
			break
		}
		input.NextToken = out.NextToken
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func getFindings(ctx context.Context, client GuardDutyAPI, detectorID string, ids []string) ([]Finding, error) {
	findings := make([]Finding, 0, len(ids))
	for start := 0; start < len(ids); start += guardDutyBatch {
		end := min(start+guardDutyBatch, len(ids))
		out, err := client.GetFindings(ctx, &guarddutysvc.GetFindingsInput{
			DetectorId: awsv2.String(detectorID),
			FindingIds: ids[start:end],
		})
		if err != nil {
			return nil, fmt.Errorf("get GuardDuty findings: %w", err)
		}
		for _, f := range out.Findings {
			severity := awsv2.ToFloat64(f.Severity)
			findings = append(findings, Finding{
				ID:        awsv2.ToString(f.Id),
				Type:      awsv2.ToString(f.Type),
				Title:     awsv2.ToString(f.Title),
				Severity:  severity,
				Level:     severityLevel(severity),
				UpdatedAt: awsv2.ToString(f.UpdatedAt),
			})
		}
	}
	return findings, nil
}

// collectGuardDuty reports detector state and active findings for one region.
// Findings are capped at maxFindings across all detectors.
func collectGuardDuty(ctx context.Context, client GuardDutyAPI, region string, maxFindings int) (*domain.SyncResult, error) {
	detectors, err := listDetectors(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	if len(detectors) == 0 {
		return result, nil
	}

	enabled := 0
	var findings []Finding
	for _, id := range detectors {
		det, err := client.GetDetector(ctx, &guarddutysvc.GetDetectorInput{DetectorId: awsv2.String(id)})
		if err != nil {
			logger.Warn("skipping GuardDuty detector", "region", region, "detector", id, "error", err)
			continue
		}
		if det.Status != guarddutytypes.DetectorStatusEnabled {
			continue
		}
		enabled++

		remaining := maxFindings - len(findings)
		if remaining <= 0 {
			continue
		}
		ids, err := listFindingIDs(ctx, client, id, remaining)
		if err != nil {
			return nil, err
		}
		batch, err := getFindings(ctx, client, id, ids)
		if err != nil {
			return nil, err
		}
		findings = append(findings, batch...)
	}
	sort.SliceStable(findings, func(i, j int) bool { return findings[i].Severity > findings[j].Severity })
	result.RecordsProcessed = len(detectors) + len(findings)

	result.AddEvidence(connectors.NewEvidence(TypeID, "guardduty:detectors:"+region, "GuardDuty threat detection ("+region+")").
		Describe("GuardDuty in %s: %d of %d detectors enabled", region, enabled, len(detectors)).
		With("region", region).
		With("detectors", len(detectors)).
		With("enabled_detectors", enabled).
		With("threat_detection_enabled", enabled > 0).
		Controls(controlsGuardDuty...).
		Build())

	if len(findings) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "guardduty:findings:"+region, "GuardDuty active findings ("+region+")").
			Describe("%d active GuardDuty findings in %s", len(findings), region).
			With("region", region).
			With("total_findings", len(findings)).
			With("by_severity", connectors.CountBy(findings, func(f Finding) string { return f.Level })).
			With("truncated", len(findings) >= maxFindings).
			With("findings", findings).
			Controls(controlsGuardDuty...).
			Build())
	}

	return result, nil
}
