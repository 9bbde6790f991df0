package google

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// plan returns one unit per enabled service, bound to the primary domain.
func plan(client API, cfg *Config, sc domain.SyncContext) []connectors.Unit {
	enabled := cfg.Services.EnabledOf(AllServices())
	units := make([]connectors.Unit, 0, len(enabled))
	for _, name := range enabled {
		var run func(ctx context.Context) (*domain.SyncResult, error)
		switch name {
		case ServiceUsers:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectUsers(ctx, client, cfg.Domain)
			}
		case ServiceGroups:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectGroups(ctx, client, cfg.Domain)
			}
		case ServiceLoginAudit:
			days := connectors.LookbackDays(cfg.LoginLookbackDays, sc)
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectLoginAudit(ctx, client, cfg.Domain, days, cfg.MaxEvents)
			}
		default:
			continue
		}
		units = append(units, connectors.Unit{Service: name, Resource: cfg.Domain, Run: run})
	}
	return units
}
