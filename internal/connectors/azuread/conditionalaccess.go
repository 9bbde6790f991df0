package azuread

import (
	"context"
	"slices"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Conditional Access policy states.
const (
	stateEnabled    = "enabled"
	stateReportOnly = "enabledForReportingButNotEnforced"
	grantMFA        = "mfa"
)

// CAPolicy is one Conditional Access policy.
type CAPolicy struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	State        string   `json:"state"`
	Controls     []string `json:"grant_controls,omitempty"`
	IncludeUsers []string `json:"include_users,omitempty"`
	IncludeRoles []string `json:"include_roles,omitempty"`
	RequiresMFA  bool     `json:"requires_mfa"`
}

func toCAPolicy(p ConditionalAccessPolicy) CAPolicy {
	c := CAPolicy{ID: p.ID, Name: p.DisplayName, State: p.State}
	if p.GrantControls != nil {
		c.Controls = p.GrantControls.BuiltInControls
		c.RequiresMFA = slices.Contains(c.Controls, grantMFA)
	}
	if u := p.Conditions.Users; u != nil {
		c.IncludeUsers = u.IncludeUsers
		c.IncludeRoles = u.IncludeRoles
	}
	return c
}

// collectConditionalAccess inventories Conditional Access policies and the
// ones that enforce MFA.
func collectConditionalAccess(ctx context.Context, client API, tenant string) (*domain.SyncResult, error) {
	listed, err := client.ListConditionalAccessPolicies(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	policies := make([]CAPolicy, 0, len(listed))
	for _, p := range listed {
		policies = append(policies, toCAPolicy(p))
	}
	enforcing := connectors.Select(policies, func(p CAPolicy) bool { return p.State == stateEnabled && p.RequiresMFA })
	reportOnly := connectors.Select(policies, func(p CAPolicy) bool { return p.State == stateReportOnly })

	ref := "conditional_access:" + tenant
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Conditional Access policies").
		Describe("%d Conditional Access policies in tenant %s, %d enforcing MFA", len(policies), tenant, len(enforcing)).
		With("tenant_id", tenant).
		With("total_policies", len(policies)).
		With("by_state", connectors.CountBy(policies, func(p CAPolicy) string { return p.State })).
		With("mfa_enforced", len(enforcing) > 0).
		With("policies", policies).
		Controls(controlsCAPolicies...).
		Build())

	if len(enforcing) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":mfa", "Conditional Access policies enforcing MFA").
			Describe("%d enabled policies in tenant %s require multi-factor authentication", len(enforcing), tenant).
			With("tenant_id", tenant).
			With("count", len(enforcing)).
			With("policies", enforcing).
			Controls(controlsCAEnforcesMFA...).
			Build())
	}

	if len(reportOnly) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":report_only", "Conditional Access policies in report-only mode").
			Describe("%d policies in tenant %s are evaluated but not enforced", len(reportOnly), tenant).
			With("tenant_id", tenant).
			With("count", len(reportOnly)).
			With("policies", reportOnly).
			Controls(controlsCAReportOnly...).
			Build())
	}

	return result, nil
}
