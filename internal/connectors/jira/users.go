package jira

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// UserAccess is one account assignable in at least one project.
type UserAccess struct {
	AccountID   string   `json:"account_id"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email,omitempty"`
	AccountType string   `json:"account_type,omitempty"`
	Active      bool     `json:"active"`
	Projects    []string `json:"projects"`
}

// collectUsers inventories the users assignable in each project in scope.
// A failed lookup leaves that project out and lists it as unknown.
func collectUsers(ctx context.Context, client API, site string, projects []Project) *domain.SyncResult {
	result := domain.NewSyncResult()
	result.RecordsProcessed = len(projects)
	if len(projects) == 0 {
		return result
	}

	index := map[string]int{}
	var users []UserAccess
	var unknown []string
	for _, p := range projects {
		assignable, err := client.AssignableUsers(ctx, p.Key)
		if err != nil {
			logger.Warn("skipping assignable users", "project", p.Key, "error", err)
			unknown = append(unknown, p.Key)
			continue
		}
		for _, u := range assignable {
			i, seen := index[u.AccountID]
			if !seen {
				i = len(users)
				index[u.AccountID] = i
				users = append(users, UserAccess{
					AccountID:   u.AccountID,
					DisplayName: u.DisplayName,
					Email:       u.EmailAddress,
					AccountType: u.AccountType,
					Active:      u.Active,
				})
			}
			users[i].Projects = append(users[i].Projects, p.Key)
		}
	}

	inactive := connectors.Select(users, func(u UserAccess) bool { return !u.Active })

	result.AddEvidence(connectors.NewEvidence(TypeID, "users:"+site, "Jira user access").
		Describe("%d accounts can be assigned work across %d projects", len(users), len(projects)).
		With("site", site).
		With("total_users", len(users)).
		With("by_account_type", connectors.CountBy(users, func(u UserAccess) string { return u.AccountType })).
		With("projects_unknown", unknown).
		With("users", users).
		Controls(controlsUsers...).
		Build())

	if len(inactive) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "users:"+site+":inactive", "Inactive accounts with project access").
			Describe("%d deactivated accounts are still assignable", len(inactive)).
			With("site", site).
			With("count", len(inactive)).
			With("users", inactive).
			Controls(controlsInactiveUsers...).
			Build())
	}

	return result
}
