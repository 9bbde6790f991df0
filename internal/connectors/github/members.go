package github

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

const (
	roleAdmin   = "admin"
	roleUnknown = "unknown"

	filter2FADisabled = "2fa_disabled"
)

// Member is one organisation member with its role.
type Member struct {
	Login     string `json:"login"`
	Role      string `json:"role"`
	State     string `json:"state,omitempty"`
	TwoFactor string `json:"two_factor"`
	SiteAdmin bool   `json:"site_admin,omitempty"`
}

// twoFactorDisabled returns the logins without 2FA. The filter is only
// available to organisation owners, so a failure yields nil and the state
// of every member stays unknown.
func twoFactorDisabled(ctx context.Context, client API, org string) map[string]bool {
	users, err := client.ListMembers(ctx, org, filter2FADisabled)
	if err != nil {
		logger.Warn("skipping two-factor lookup", "organization", org, "error", err)
		return nil
	}
	out := make(map[string]bool, len(users))
	for _, u := range users {
		out[u.GetLogin()] = true
	}
	return out
}

// collectMembers inventories organisation members and their roles.
// A failed membership lookup marks that member's role unknown.
func collectMembers(ctx context.Context, client API, org string) (*domain.SyncResult, error) {
	users, err := client.ListMembers(ctx, org, "")
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(users)
	if len(users) == 0 {
		return result, nil
	}

	no2FA := twoFactorDisabled(ctx, client, org)
	members := make([]Member, 0, len(users))
	for _, u := range users {
		m := Member{Login: u.GetLogin(), Role: roleUnknown, TwoFactor: statusUnknown, SiteAdmin: u.GetSiteAdmin()}
		if no2FA != nil {
			m.TwoFactor = statusEnabled
			if no2FA[m.Login] {
				m.TwoFactor = statusDisabled
			}
		}
		membership, err := client.Membership(ctx, org, m.Login)
		if err != nil {
			logger.Warn("skipping membership lookup", "organization", org, "member", m.Login, "error", err)
		} else {
			m.Role = membership.GetRole()
			m.State = membership.GetState()
		}
		members = append(members, m)
	}

	admins := connectors.Select(members, func(m Member) bool { return m.Role == roleAdmin })
	without2FA := connectors.Select(members, func(m Member) bool { return m.TwoFactor == statusDisabled })

	result.AddEvidence(connectors.NewEvidence(TypeID, "members:"+org, "Organization members").
		Describe("%d members of %s", len(members), org).
		With("organization", org).
		With("total_members", len(members)).
		With("by_role", connectors.CountBy(members, func(m Member) string { return m.Role })).
		With("members", members).
		Controls(controlsMembers...).
		Build())

	if len(admins) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "members:"+org+":admins", "Organization administrators").
			Describe("%d of %d members of %s are owners", len(admins), len(members), org).
			With("organization", org).
			With("count", len(admins)).
			With("members", admins).
			Controls(controlsAdmins...).
			Build())
	}

	if len(without2FA) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "members:"+org+":no_2fa", "Members without two-factor authentication").
			Describe("%d members of %s have not enabled two-factor authentication", len(without2FA), org).
			With("organization", org).
			With("count", len(without2FA)).
			With("members", without2FA).
			Controls(controlsNo2FA...).
			Build())
	}

	return result, nil
}
