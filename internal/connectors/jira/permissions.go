package jira

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Permission grant holder types that open a project beyond named members.
const (
	holderAnyone          = "anyone"
	holderApplicationRole = "applicationRole"
)

// Review states of a project's permission scheme.
const (
	statusReviewed = "reviewed"
	statusUnknown  = "unknown"
)

// Grant is one permission granted to a holder.
type Grant struct {
	Permission string `json:"permission"`
	Holder     string `json:"holder"`
	Parameter  string `json:"parameter,omitempty"`
}

// broad reports whether the grant reaches anonymous users or every
// licensed user.
func (g Grant) broad() bool {
	return g.Holder == holderAnyone || (g.Holder == holderApplicationRole && g.Parameter == "")
}

// ProjectPermissions is the permission scheme of one project.
type ProjectPermissions struct {
	Project     string  `json:"project"`
	Scheme      string  `json:"scheme,omitempty"`
	Status      string  `json:"status"`
	Grants      int     `json:"grants"`
	BroadGrants []Grant `json:"broad_grants,omitempty"`
}

// collectPermissions reviews the permission scheme of each project in scope.
// A failed lookup marks that project unknown.
func collectPermissions(ctx context.Context, client API, site string, projects []Project) *domain.SyncResult {
	result := domain.NewSyncResult()
	result.RecordsProcessed = len(projects)
	if len(projects) == 0 {
		return result
	}

	reviewed := make([]ProjectPermissions, 0, len(projects))
	for _, p := range projects {
		pp := ProjectPermissions{Project: p.Key, Status: statusUnknown}
		scheme, err := client.PermissionScheme(ctx, p.Key)
		if err != nil {
			logger.Warn("skipping permission scheme", "project", p.Key, "error", err)
			reviewed = append(reviewed, pp)
			continue
		}
		pp.Status = statusReviewed
		pp.Scheme = scheme.Name
		pp.Grants = len(scheme.Permissions)
		for _, g := range scheme.Permissions {
			grant := Grant{Permission: g.Permission}
			if g.Holder != nil {
				grant.Holder = g.Holder.Type
				grant.Parameter = g.Holder.Parameter
			}
			if grant.broad() {
				pp.BroadGrants = append(pp.BroadGrants, grant)
			}
		}
		reviewed = append(reviewed, pp)
	}

	broad := connectors.Select(reviewed, func(p ProjectPermissions) bool { return len(p.BroadGrants) > 0 })

	result.AddEvidence(connectors.NewEvidence(TypeID, "permissions:"+site, "Jira project permission schemes").
		Describe("Permission schemes of %d projects", len(reviewed)).
		With("site", site).
		With("total_projects", len(reviewed)).
		With("by_status", connectors.CountBy(reviewed, func(p ProjectPermissions) string { return p.Status })).
		With("projects", reviewed).
		Controls(controlsPermissions...).
		Build())

	if len(broad) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "permissions:"+site+":broad", "Projects granting broad access").
			Describe("%d projects grant permissions to anonymous or all logged-in users", len(broad)).
			With("site", site).
			With("count", len(broad)).
			With("projects", broad).
			Controls(controlsBroadAccess...).
			Build())
	}

	return result
}
