package aws

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// plan returns the units of work for cfg in execution order: global
// services once in the primary region, then each regional service once
// per region.
func plan(cfg *Config, clients *regionClients) []connectors.Unit {
	primary := clients.get(cfg.PrimaryRegion())
	var units []connectors.Unit

	global := map[string]func(ctx context.Context) (*domain.SyncResult, error){
		ServiceIAM: func(ctx context.Context) (*domain.SyncResult, error) {
			return collectIAM(ctx, primary.IAM)
		},
		ServiceS3: func(ctx context.Context) (*domain.SyncResult, error) {
			return collectS3(ctx, primary.S3)
		},
		ServiceCloudTrail: func(ctx context.Context) (*domain.SyncResult, error) {
			return collectCloudTrail(ctx, primary.CloudTrail)
		},
	}
	for _, name := range cfg.Services.EnabledOf(globalServices) {
		units = append(units, connectors.Unit{Service: name, Run: global[name]})
	}

	for _, name := range cfg.Services.EnabledOf(regionalServices) {
		for _, region := range cfg.RegionList() {
			units = append(units, connectors.Unit{
				Service:  name,
				Resource: region,
				Run:      regionalRun(name, region, clients.get(region), cfg.MaxFindings),
			})
		}
	}
	return units
}

func regionalRun(service, region string, c *Clients, maxFindings int) func(ctx context.Context) (*domain.SyncResult, error) {
	return func(ctx context.Context) (*domain.SyncResult, error) {
		switch service {
		case ServiceConfig:
			return collectConfigRules(ctx, c.Config, region)
		case ServiceGuardDuty:
			return collectGuardDuty(ctx, c.GuardDuty, region, maxFindings)
		case ServiceSecurityGroups:
			return collectSecurityGroups(ctx, c.EC2, region)
		case ServiceRDS:
			return collectRDS(ctx, c.RDS, region)
		case ServiceELB:
			return collectELB(ctx, c.ELB, region)
		case ServiceCloudWatch:
			return collectCloudWatch(ctx, c.CloudWatch, region)
		}
		return domain.NewSyncResult(), nil
	}
}
