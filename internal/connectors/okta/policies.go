package okta

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Policy types collected.
const (
	policySignOn   = "OKTA_SIGN_ON"
	policyPassword = "PASSWORD"
)

// MinPasswordLength is the shortest password policy minimum that is not
// reported as weak.
const MinPasswordLength = 12

// MFA enforcement states of a sign-on policy.
const (
	mfaEnforced    = "enforced"
	mfaNotEnforced = "not_enforced"
)

const (
	policyActive = "ACTIVE"
	accessAllow  = "ALLOW"
)

// PolicySummary is one sign-on or password policy.
type PolicySummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Priority  int    `json:"priority"`
	System    bool   `json:"system,omitempty"`
	MinLength int    `json:"min_length,omitempty"`
	MFA       string `json:"mfa,omitempty"`
}

// signOnMFA reports whether every active rule that allows access requires
// a second factor.
func signOnMFA(rules []PolicyRule) string {
	for _, r := range rules {
		if r.Status != policyActive || r.Actions.Signon == nil {
			continue
		}
		if r.Actions.Signon.Access == accessAllow && !r.Actions.Signon.RequireFactor {
			return mfaNotEnforced
		}
	}
	return mfaEnforced
}

// collectPolicies reviews sign-on and password policies. A failed rule
// lookup leaves that sign-on policy's MFA state unknown.
func collectPolicies(ctx context.Context, client API, org string) (*domain.SyncResult, error) {
	signOn, err := client.ListPolicies(ctx, policySignOn)
	if err != nil {
		return nil, err
	}
	password, err := client.ListPolicies(ctx, policyPassword)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(signOn) + len(password)
	if result.RecordsProcessed == 0 {
		return result, nil
	}

	policies := make([]PolicySummary, 0, result.RecordsProcessed)
	for _, p := range signOn {
		s := PolicySummary{ID: p.ID, Name: p.Name, Type: p.Type, Status: p.Status, Priority: p.Priority, System: p.System, MFA: statusUnknown}
		rules, err := client.ListPolicyRules(ctx, p.ID)
		if err != nil {
			logger.Warn("skipping policy rules", "policy", p.Name, "error", err)
		} else {
			s.MFA = signOnMFA(rules)
		}
		policies = append(policies, s)
	}
	for _, p := range password {
		s := PolicySummary{ID: p.ID, Name: p.Name, Type: p.Type, Status: p.Status, Priority: p.Priority, System: p.System}
		if p.Settings != nil && p.Settings.Password != nil {
			s.MinLength = p.Settings.Password.Complexity.MinLength
		}
		policies = append(policies, s)
	}

	weak := connectors.Select(policies, func(p PolicySummary) bool {
		return p.Type == policyPassword && p.Status == policyActive && p.MinLength < MinPasswordLength
	})
	noMFA := connectors.Select(policies, func(p PolicySummary) bool {
		return p.Type == policySignOn && p.Status == policyActive && p.MFA == mfaNotEnforced
	})

	ref := "policies:" + org
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Okta sign-on and password policies").
		Describe("%d sign-on and %d password policies in %s", len(signOn), len(password), org).
		With("org", org).
		With("total_policies", len(policies)).
		With("by_type", connectors.CountBy(policies, func(p PolicySummary) string { return p.Type })).
		With("policies", policies).
		Controls(controlsPolicies...).
		Build())

	if len(weak) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":weak_password", "Weak password policies").
			Describe("%d active password policies require fewer than %d characters", len(weak), MinPasswordLength).
			With("org", org).
			With("count", len(weak)).
			With("minimum_length", MinPasswordLength).
			With("policies", weak).
			Controls(controlsWeakPolicies...).
			Build())
	}

	if len(noMFA) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":no_mfa", "Sign-on policies without MFA").
			Describe("%d active sign-on policies allow access without a second factor", len(noMFA)).
			With("org", org).
			With("count", len(noMFA)).
			With("policies", noMFA).
			Controls(controlsSignOnNoMFA...).
			Build())
	}

	return result, nil
}
