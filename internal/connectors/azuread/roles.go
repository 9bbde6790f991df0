package azuread

import (
	"context"
	"strings"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// GlobalAdminTemplateID is the role template of Global Administrator.
const GlobalAdminTemplateID = "62e90394-69f5-4237-9190-012177145e10"

// MaxGlobalAdmins is the most Global Administrators a tenant may hold
// before the assignment is reported.
const MaxGlobalAdmins = 4

// Role member listing states.
const (
	membersListed  = "listed"
	membersUnknown = "unknown"
)

// guestMarker appears in the principal name of B2B guests.
const guestMarker = "#EXT#"

// RoleMember is one principal holding a role.
type RoleMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// RoleAssignment is one activated role and who holds it.
type RoleAssignment struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	TemplateID string       `json:"template_id"`
	Status     string       `json:"members_status"`
	Members    []RoleMember `json:"members,omitempty"`
}

func toRoleMember(o DirectoryObject) RoleMember {
	name := o.UserPrincipalName
	if name == "" {
		name = o.DisplayName
	}
	return RoleMember{ID: o.ID, Name: name, Type: strings.TrimPrefix(o.Type, "#microsoft.graph.")}
}

// collectDirectoryRoles lists activated roles with their members. A failed
// member listing leaves that role's members unknown.
func collectDirectoryRoles(ctx context.Context, client API, tenant string) (*domain.SyncResult, error) {
	listed, err := client.ListDirectoryRoles(ctx)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(listed)
	if len(listed) == 0 {
		return result, nil
	}

	roles := make([]RoleAssignment, 0, len(listed))
	type guestAdmin struct {
		Role   string `json:"role"`
		Member string `json:"member"`
	}
	var guestAdmins []guestAdmin
	var globalAdmins []RoleMember
	for _, r := range listed {
		a := RoleAssignment{ID: r.ID, Name: r.DisplayName, TemplateID: r.RoleTemplateID, Status: membersUnknown}
		members, err := client.ListRoleMembers(ctx, r.ID)
		if err != nil {
			logger.Warn("skipping role members", "role", r.DisplayName, "error", err)
			roles = append(roles, a)
			continue
		}
		a.Status = membersListed
		for _, m := range members {
			rm := toRoleMember(m)
			a.Members = append(a.Members, rm)
			if strings.Contains(m.UserPrincipalName, guestMarker) {
				guestAdmins = append(guestAdmins, guestAdmin{Role: a.Name, Member: rm.Name})
			}
		}
		if r.RoleTemplateID == GlobalAdminTemplateID {
			globalAdmins = a.Members
		}
		roles = append(roles, a)
	}

	assigned := 0
	for _, r := range roles {
		assigned += len(r.Members)
	}

	ref := "directory_roles:" + tenant
	result.AddEvidence(connectors.NewEvidence(TypeID, ref, "Entra ID directory role assignments").
		Describe("%d activated directory roles with %d assignments in tenant %s", len(roles), assigned, tenant).
		With("tenant_id", tenant).
		With("total_roles", len(roles)).
		With("total_assignments", assigned).
		With("global_admins", len(globalAdmins)).
		With("roles", roles).
		Controls(controlsRoles...).
		Build())

	if len(globalAdmins) > MaxGlobalAdmins {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":global_admins", "Excess Global Administrators").
			Describe("%d principals hold Global Administrator, more than %d", len(globalAdmins), MaxGlobalAdmins).
			With("tenant_id", tenant).
			With("count", len(globalAdmins)).
			With("maximum", MaxGlobalAdmins).
			With("members", globalAdmins).
			Controls(controlsGlobalAdmins...).
			Build())
	}

	if len(guestAdmins) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, ref+":guests", "Guest users holding directory roles").
			Describe("%d role assignments in tenant %s are held by guests", len(guestAdmins), tenant).
			With("tenant_id", tenant).
			With("count", len(guestAdmins)).
			With("assignments", guestAdmins).
			Controls(controlsGuestAdmins...).
			Build())
	}

	return result, nil
}
