package jira

import (
	"context"

	"github.com/ctreminiom/go-atlassian/v2/pkg/infra/models"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Project is one Jira project.
type Project struct {
	ID   string `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	Lead string `json:"lead,omitempty"`
}

func toProject(p *models.ProjectScheme) Project {
	out := Project{ID: p.ID, Key: p.Key, Name: p.Name, Type: p.ProjectTypeKey}
	if p.Lead != nil {
		out.Lead = p.Lead.DisplayName
	}
	return out
}

// ListProjects lists the projects in scope: every visible project, narrowed
// by the projects allow-list on key or name.
func ListProjects(ctx context.Context, client API, cfg *Config) ([]Project, error) {
	listed, err := client.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	projects := make([]Project, 0, len(listed))
	for _, p := range listed {
		projects = append(projects, toProject(p))
	}
	return connectors.FilterAllowList(projects, cfg.Projects,
		func(p Project) string { return p.Key },
		func(p Project) string { return p.Name },
	), nil
}

// collectProjects inventories the projects in scope.
func collectProjects(site string, projects []Project) *domain.SyncResult {
	result := domain.NewSyncResult()
	result.RecordsProcessed = len(projects)
	if len(projects) == 0 {
		return result
	}

	result.AddEvidence(connectors.NewEvidence(TypeID, "projects:"+site, "Jira project inventory").
		Describe("%d projects on %s", len(projects), site).
		With("site", site).
		With("total_projects", len(projects)).
		With("by_type", connectors.CountBy(projects, func(p Project) string { return p.Type })).
		With("projects", projects).
		Controls(controlsProjects...).
		Build())
	return result
}
