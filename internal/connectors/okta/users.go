package okta

import (
	"context"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// MFA enrollment states of a user.
const (
	statusEnabled  = "enabled"
	statusDisabled = "disabled"
	statusUnknown  = "unknown"
)

// Okta status values.
const (
	userActive    = "ACTIVE"
	userLockedOut = "LOCKED_OUT"
	factorActive  = "ACTIVE"
)

// UserPosture is one user with its MFA enrollment.
type UserPosture struct {
	ID        string   `json:"id"`
	Login     string   `json:"login"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name,omitempty"`
	Status    string   `json:"status"`
	LastLogin string   `json:"last_login,omitempty"`
	MFA       string   `json:"mfa"`
	Factors   []string `json:"factors,omitempty"`
}

// activeFactors returns the types of the active factors of one user.
func activeFactors(ctx context.Context, client API, userID string) ([]string, error) {
	factors, err := client.ListFactors(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, f := range factors {
		if f.Status == factorActive {
			out = append(out, f.FactorType)
		}
	}
	return out, nil
}

// collectUsers inventories users and their enrolled factors. A failed
// factor lookup leaves that user's MFA state unknown.
func collectUsers(ctx context.Context, client API, org string) (*domain.SyncResult, error) {
	listed, err := client.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	users := make([]UserPosture, 0, len(listed))
	for _, u := range listed {
		p := UserPosture{
			ID:        u.ID,
			Login:     u.Profile.Login,
			Email:     u.Profile.Email,
			Name:      strings.TrimSpace(u.Profile.FirstName + " " + u.Profile.LastName),
			Status:    u.Status,
			LastLogin: u.LastLogin,
			MFA:       statusUnknown,
		}
		factors, err := activeFactors(ctx, client, u.ID)
		if err != nil {
			logger.Warn("skipping factor lookup", "user", p.Login, "error", err)
		} else {
			p.Factors = factors
			p.MFA = statusDisabled
			if len(factors) > 0 {
				p.MFA = statusEnabled
			}
		}
		users = append(users, p)
	}

	active := connectors.Select(users, func(u UserPosture) bool { return u.Status == userActive })
	noMFA := connectors.Select(active, func(u UserPosture) bool { return u.MFA == statusDisabled })
	lockedOut := connectors.Select(users, func(u UserPosture) bool { return u.Status == userLockedOut })
	enrolled := connectors.Count(active, func(u UserPosture) bool { return u.MFA == statusEnabled })

	ref := "users:" + org
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Okta user inventory").
		Describe("%d users in %s, %d active", len(users), org, len(active)).
		With("org", org).
		With("total_users", len(users)).
		With("active_users", len(active)).
		With("by_status", connectors.CountBy(users, func(u UserPosture) string { return u.Status })).
		With("mfa_enrolled", enrolled).
		With("mfa_enrolled_percent", connectors.Percent(enrolled, len(active))).
		With("users", users).
		Controls(controlsUsers...).
		Build())

	if len(noMFA) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":no_mfa", "Active users without MFA").
			Describe("%d active users in %s have no active MFA factor", len(noMFA), org).
			With("org", org).
			With("count", len(noMFA)).
			With("users", noMFA).
			Controls(controlsNoMFA...).
			Build())
	}

	if len(lockedOut) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":locked_out", "Locked-out users").
			Describe("%d users in %s are locked out", len(lockedOut), org).
			With("org", org).
			With("count", len(lockedOut)).
			With("users", lockedOut).
			Controls(controlsLockedOut...).
			Build())
	}

	return result, nil
}
