package azuread

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// plan returns one unit per enabled service, bound to the tenant.
func plan(client API, cfg *Config, sc domain.SyncContext) []connectors.Unit {
	tenant := cfg.TenantID
	enabled := cfg.Services.EnabledOf(AllServices())
	units := make([]connectors.Unit, 0, len(enabled))
	for _, name := range enabled {
		var run func(ctx context.Context) (*domain.SyncResult, error)
		switch name {
		case ServiceUsers:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectUsers(ctx, client, tenant)
			}
		case ServiceGroups:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectGroups(ctx, client, tenant)
			}
		case ServiceDirectoryRoles:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectDirectoryRoles(ctx, client, tenant)
			}
		case ServiceSignInLogs:
			days := connectors.LookbackDays(cfg.SignInLookbackDays, sc)
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectSignIns(ctx, client, tenant, days, cfg.MaxSignIns)
			}
		case ServiceConditionalAccess:
			run = func(ctx context.Context) (*domain.SyncResult, error) {
				return collectConditionalAccess(ctx, client, tenant)
			}
		default:
			continue
		}
		units = append(units, connectors.Unit{Service: name, Resource: tenant, Run: run})
	}
	return units
}
