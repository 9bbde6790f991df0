package github

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// plan returns the units of work for cfg in declaration order. The
// repository listing is resolved once before any unit runs and handed to
// every unit that needs it.
func plan(ctx context.Context, client API, cfg *Config) []connectors.Unit {
	enabled := cfg.Services.EnabledOf(AllServices())
	repos := connectors.LoadShared(ctx, len(cfg.Services.EnabledOf(repoServices)) > 0,
		func(ctx context.Context) ([]Repository, error) {
			return ListRepositories(ctx, client, cfg)
		})

	units := make([]connectors.Unit, 0, len(enabled))
	for _, name := range enabled {
		switch name {
		case ServiceRepositories:
			units = append(units, repoUnit(name, cfg.Organization, repos, func(_ context.Context, r []Repository) *domain.SyncResult {
				return collectRepositories(r)
			}))
		case ServiceBranchProtection:
			units = append(units, repoUnit(name, cfg.Organization, repos, func(ctx context.Context, r []Repository) *domain.SyncResult {
				return collectBranchProtection(ctx, client, r)
			}))
		case ServiceSecurityAlerts:
			units = append(units, repoUnit(name, cfg.Organization, repos, func(ctx context.Context, r []Repository) *domain.SyncResult {
				return collectSecurityAlerts(ctx, client, r)
			}))
		case ServiceMembers:
			if cfg.Organization == "" {
				logger.Warn("skipping members: no organization configured")
				continue
			}
			org := cfg.Organization
			units = append(units, connectors.Unit{
				Service:  name,
				Resource: org,
				Run: func(ctx context.Context) (*domain.SyncResult, error) {
					return collectMembers(ctx, client, org)
				},
			})
		}
	}
	return units
}

// repoUnit binds a collector to the shared repository listing. When the
// listing failed the unit fails with the same cause.
func repoUnit(service, owner string, repos connectors.Shared[Repository],
	collect func(context.Context, []Repository) *domain.SyncResult) connectors.Unit {
	return connectors.Unit{
		Service:  service,
		Resource: owner,
		Run: func(ctx context.Context) (*domain.SyncResult, error) {
			items, err := repos.Get()
			if err != nil {
				return nil, err
			}
			return collect(ctx, items), nil
		},
	}
}
