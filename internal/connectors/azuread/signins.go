package azuread

import (
	"context"
	"time"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// riskyLevels are the risk levels reported as risky sign-ins.
var riskyLevels = map[string]bool{"medium": true, "high": true}

// riskyStates are the risk states reported as risky sign-ins.
var riskyStates = map[string]bool{"atRisk": true, "confirmedCompromised": true}

// SignInRecord is one flattened sign-in event.
type SignInRecord struct {
	Time          string `json:"time"`
	User          string `json:"user"`
	App           string `json:"app,omitempty"`
	IPAddress     string `json:"ip_address,omitempty"`
	ClientApp     string `json:"client_app,omitempty"`
	ErrorCode     int    `json:"error_code"`
	FailureReason string `json:"failure_reason,omitempty"`
	RiskLevel     string `json:"risk_level,omitempty"`
	RiskState     string `json:"risk_state,omitempty"`
}

func toSignInRecord(s SignIn) SignInRecord {
	return SignInRecord{
		Time:          s.CreatedDateTime,
		User:          s.UserPrincipalName,
		App:           s.AppDisplayName,
		IPAddress:     s.IPAddress,
		ClientApp:     s.ClientAppUsed,
		ErrorCode:     s.Status.ErrorCode,
		FailureReason: s.Status.FailureReason,
		RiskLevel:     s.RiskLevelDuringSignIn,
		RiskState:     s.RiskState,
	}
}

// Failed reports whether the sign-in was rejected.
func (r SignInRecord) Failed() bool { return r.ErrorCode != 0 }

// Risky reports whether Identity Protection flagged the sign-in.
func (r SignInRecord) Risky() bool { return riskyLevels[r.RiskLevel] || riskyStates[r.RiskState] }

// collectSignIns summarises sign-in activity over the lookback window.
func collectSignIns(ctx context.Context, client API, tenant string, days, limit int) (*domain.SyncResult, error) {
	since := connectors.Since(days)
	listed, err := client.ListSignIns(ctx, since, limit)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	records := make([]SignInRecord, 0, len(listed))
	for _, s := range listed {
		records = append(records, toSignInRecord(s))
	}
	failed := connectors.Select(records, SignInRecord.Failed)
	risky := connectors.Select(records, SignInRecord.Risky)

	ref := "sign_in_logs:" + tenant
	window := since.Format(time.RFC3339)
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Entra ID sign-in activity").
		Describe("%d sign-ins in tenant %s over the last %d days", len(records), tenant, days).
		With("tenant_id", tenant).
		With("lookback_days", days).
		With("since", window).
		With("total_sign_ins", len(records)).
		With("failed_sign_ins", len(failed)).
		With("by_client_app", connectors.CountBy(records, func(r SignInRecord) string { return r.ClientApp })).
		With("truncated", len(listed) >= limit).
		Controls(controlsSignIns...).
		Build())

	if len(failed) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":failed", "Failed Entra ID sign-ins").
			Describe("%d failed sign-ins in tenant %s since %s", len(failed), tenant, window).
			With("tenant_id", tenant).
			With("count", len(failed)).
			With("by_user", connectors.CountBy(failed, func(r SignInRecord) string { return r.User })).
			With("sign_ins", failed).
			Controls(controlsFailedSignIns...).
			Build())
	}

	if len(risky) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":risky", "Risky Entra ID sign-ins").
			Describe("%d risky sign-ins in tenant %s since %s", len(risky), tenant, window).
			With("tenant_id", tenant).
			With("count", len(risky)).
			With("sign_ins", risky).
			Controls(controlsRiskySignIns...).
			Build())
	}

	return result, nil
}
