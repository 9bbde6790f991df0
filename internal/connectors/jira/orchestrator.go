package jira

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// plan returns the units of work for cfg in declaration order. The project
// listing is resolved once before any unit runs and handed to every unit.
func plan(ctx context.Context, client API, cfg *Config) []connectors.Unit {
	enabled := cfg.Services.EnabledOf(AllServices())
	projects := connectors.LoadShared(ctx, len(enabled) > 0,
		func(ctx context.Context) ([]Project, error) {
			return ListProjects(ctx, client, cfg)
		})

	site := cfg.Site()
	units := make([]connectors.Unit, 0, len(enabled))
	for _, name := range enabled {
		var collect func(context.Context, []Project) (*domain.SyncResult, error)
		switch name {
		case ServiceProjects:
			collect = func(_ context.Context, p []Project) (*domain.SyncResult, error) {
				return collectProjects(site, p), nil
			}
		case ServiceIssues:
			collect = func(ctx context.Context, p []Project) (*domain.SyncResult, error) {
				return collectIssues(ctx, client, cfg, p)
			}
		case ServiceUsers:
			collect = func(ctx context.Context, p []Project) (*domain.SyncResult, error) {
				return collectUsers(ctx, client, site, p), nil
			}
		case ServicePermissions:
			collect = func(ctx context.Context, p []Project) (*domain.SyncResult, error) {
				return collectPermissions(ctx, client, site, p), nil
			}
		default:
			continue
		}
		units = append(units, projectUnit(name, site, projects, collect))
	}
	return units
}

// projectUnit binds a collector to the shared project listing. When the
// listing failed the unit fails with the same cause.
func projectUnit(service, site string, projects connectors.Shared[Project],
	collect func(context.Context, []Project) (*domain.SyncResult, error)) connectors.Unit {
	return connectors.Unit{
		Service:  service,
		Resource: site,
		Run: func(ctx context.Context) (*domain.SyncResult, error) {
			items, err := projects.Get()
			if err != nil {
				return nil, err
			}
			return collect(ctx, items)
		},
	}
}
