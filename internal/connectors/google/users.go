package google

import (
	"context"

	admin "google.golang.org/api/admin/directory/v1"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// User is one Workspace account with its security posture.
type User struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	SuperAdmin     bool   `json:"super_admin"`
	DelegatedAdmin bool   `json:"delegated_admin"`
	TwoStepEnroll  bool   `json:"two_step_enrolled"`
	TwoStepEnforce bool   `json:"two_step_enforced"`
	Suspended      bool   `json:"suspended"`
	Archived       bool   `json:"archived,omitempty"`
	OrgUnit        string `json:"org_unit,omitempty"`
	LastLogin      string `json:"last_login,omitempty"`
}

// Active reports whether the account can sign in.
func (u User) Active() bool { return !u.Suspended && !u.Archived }

// Admin reports whether the account holds any administrator role.
func (u User) Admin() bool { return u.SuperAdmin || u.DelegatedAdmin }

func toUser(u *admin.User) User {
	out := User{
		Email:          u.PrimaryEmail,
		SuperAdmin:     u.IsAdmin,
		DelegatedAdmin: u.IsDelegatedAdmin,
		TwoStepEnroll:  u.IsEnrolledIn2Sv,
		TwoStepEnforce: u.IsEnforcedIn2Sv,
		Suspended:      u.Suspended,
		Archived:       u.Archived,
		OrgUnit:        u.OrgUnitPath,
		LastLogin:      u.LastLoginTime,
	}
	if u.Name != nil {
		out.Name = u.Name.FullName
	}
	return out
}

// collectUsers inventories the users of domain and their 2-Step
// Verification status.
func collectUsers(ctx context.Context, client API, domainName string) (*domain.SyncResult, error) {
	listed, err := client.ListUsers(ctx, domainName)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	users := make([]User, 0, len(listed))
	for _, u := range listed {
		users = append(users, toUser(u))
	}

	active := connectors.Select(users, User.Active)
	no2SV := connectors.Select(active, func(u User) bool { return !u.TwoStepEnroll })
	admins := connectors.Select(users, User.Admin)
	suspended := connectors.Select(users, func(u User) bool { return u.Suspended })
	enrolled := len(active) - len(no2SV)

	ref := "users:" + domainName
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Workspace user inventory").
		Describe("%d users in %s, %d active", len(users), domainName, len(active)).
		With("domain", domainName).
		With("total_users", len(users)).
		With("active_users", len(active)).
		With("two_step_enrolled", enrolled).
		With("two_step_enrolled_percent", connectors.Percent(enrolled, len(active))).
		With("two_step_enforced", connectors.Count(active, func(u User) bool { return u.TwoStepEnforce })).
		With("users", users).
		Controls(controlsUsers...).
		Build())

	if len(no2SV) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":no_2sv", "Users without 2-Step Verification").
			Describe("%d active users in %s are not enrolled in 2-Step Verification", len(no2SV), domainName).
			With("domain", domainName).
			With("count", len(no2SV)).
			With("users", no2SV).
			Controls(controlsNo2SV...).
			Build())
	}

	if len(admins) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":admins", "Workspace administrators").
			Describe("%d of %d users in %s hold an administrator role", len(admins), len(users), domainName).
			With("domain", domainName).
			With("count", len(admins)).
			With("super_admins", connectors.Count(admins, func(u User) bool { return u.SuperAdmin })).
			With("users", admins).
			Controls(controlsAdmins...).
			Build())
	}

	if len(suspended) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":suspended", "Suspended users").
			Describe("%d users in %s are suspended", len(suspended), domainName).
			With("domain", domainName).
			With("count", len(suspended)).
			With("users", suspended).
			Controls(controlsSuspended...).
			Build())
	}

	return result, nil
}
