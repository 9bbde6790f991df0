package azuread

import (
	"context"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// MFA registration states of a user.
const (
	statusEnabled  = "enabled"
	statusDisabled = "disabled"
	statusUnknown  = "unknown"
)

const userTypeGuest = "Guest"

// UserRecord is one directory user with its MFA registration.
type UserRecord struct {
	ID          string `json:"id"`
	UPN         string `json:"user_principal_name"`
	DisplayName string `json:"display_name,omitempty"`
	UserType    string `json:"user_type"`
	Enabled     bool   `json:"enabled"`
	MFA         string `json:"mfa"`
}

// Guest reports whether the user is a B2B guest.
func (u UserRecord) Guest() bool {
	return strings.EqualFold(u.UserType, userTypeGuest)
}

// collectUsers inventories users and their MFA registration. The
// registration report needs Entra ID P1; when it cannot be read every
// user's MFA state is unknown.
func collectUsers(ctx context.Context, client API, tenant string) (*domain.SyncResult, error) {
	listed, err := client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	var registered map[string]bool
	if regs, err := client.ListMFARegistrations(ctx); err != nil {
		logger.Warn("skipping MFA registration report", "tenant", tenant, "error", err)
	} else {
		registered = make(map[string]bool, len(regs))
		for _, r := range regs {
			registered[r.ID] = r.IsMfaRegistered
		}
	}

	users := make([]UserRecord, 0, len(listed))
	for _, u := range listed {
		r := UserRecord{
			ID:          u.ID,
			UPN:         u.UserPrincipalName,
			DisplayName: u.DisplayName,
			UserType:    u.UserType,
			Enabled:     u.AccountEnabled,
			MFA:         statusUnknown,
		}
		if registered != nil {
			r.MFA = statusDisabled
			if registered[u.ID] {
				r.MFA = statusEnabled
			}
		}
		users = append(users, r)
	}

	enabled := connectors.Select(users, func(u UserRecord) bool { return u.Enabled })
	noMFA := connectors.Select(enabled, func(u UserRecord) bool { return !u.Guest() && u.MFA == statusDisabled })
	guests := connectors.Select(enabled, UserRecord.Guest)
	mfa := connectors.Count(enabled, func(u UserRecord) bool { return u.MFA == statusEnabled })

	ref := "users:" + tenant
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Entra ID user inventory").
		Describe("%d users in tenant %s, %d enabled", len(users), tenant, len(enabled)).
		With("tenant_id", tenant).
		With("total_users", len(users)).
		With("enabled_users", len(enabled)).
		With("guest_users", len(guests)).
		With("mfa_registered", mfa).
		With("mfa_registered_percent", connectors.Percent(mfa, len(enabled))).
		With("mfa_report_available", registered != nil).
		With("users", users).
		Controls(controlsUsers...).
		Build())

	if len(noMFA) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":no_mfa", "Enabled users without MFA").
			Describe("%d enabled member users in tenant %s have not registered MFA", len(noMFA), tenant).
			With("tenant_id", tenant).
			With("count", len(noMFA)).
			With("users", noMFA).
			Controls(controlsNoMFA...).
			Build())
	}

	if len(guests) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":guests", "Guest users").
			Describe("%d enabled guest users in tenant %s", len(guests), tenant).
			With("tenant_id", tenant).
			With("count", len(guests)).
			With("users", guests).
			Controls(controlsGuests...).
			Build())
	}

	return result, nil
}
