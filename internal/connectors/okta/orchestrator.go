package okta

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// plan returns one unit per enabled service, bound to the org domain.
func plan(client API, cfg *Config, sc domain.SyncContext) []connectors.Unit {
	org := cfg.Domain
	enabled := cfg.Services.EnabledOf(AllServices())
	units := make([]connectors.Unit, 0, len(enabled))
	for _, name := range enabled {
		var run func(ctx context.Context) (*domain.SyncResult, error)
		switch name {
		case ServiceUsers:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectUsers(ctx, client, org)
			}
		case ServiceGroups:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectGroups(ctx, client, org)
			}
		case ServiceApplications:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectApplications(ctx, client, org)
			}
		case ServiceSystemLog:
			days := connectors.LookbackDays(cfg.LogLookbackDays, sc)
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectSystemLog(ctx, client, org, days, cfg.MaxLogEvents)
			}
		case ServicePolicies:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectPolicies(ctx, client, org)
			}
		default:
			continue
		}
		units = append(units, connectors.Unit{Service: name, Resource: org, Run: run})
	}
	return units
}
