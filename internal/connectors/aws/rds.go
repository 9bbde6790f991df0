package aws

import (
	"context"
	"fmt"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	rdssvc "github.com/aws/aws-sdk-go-v2/service/rds"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// DBInstance is the analysed state of one RDS instance.
type DBInstance struct {
	ID                 string `json:"id"`
	Engine             string `json:"engine"`
	EngineVersion      string `json:"engine_version,omitempty"`
	Class              string `json:"class,omitempty"`
	Encrypted          bool   `json:"storage_encrypted"`
	Public             bool   `json:"publicly_accessible"`
	MultiAZ            bool   `json:"multi_az"`
	BackupRetention    int32  `json:"backup_retention_days"`
	DeletionProtection bool   `json:"deletion_protection"`
}

func listDBInstances(ctx context.Context, client RDSAPI) ([]DBInstance, error) {
	paginator := rdssvc.NewDescribeDBInstancesPaginator(client, &rdssvc.DescribeDBInstancesInput{})
	var instances []DBInstance
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe DB instances: %w", err)
		}
		for _, db := range page.DBInstances {
			instances = append(instances, DBInstance{
				ID:                 awsv2.ToString(db.DBInstanceIdentifier),
				Engine:             awsv2.ToString(db.Engine),
				EngineVersion:      awsv2.ToString(db.EngineVersion),
				Class:              awsv2.ToString(db.DBInstanceClass),
				Encrypted:          awsv2.ToBool(db.StorageEncrypted),
				Public:             awsv2.ToBool(db.PubliclyAccessible),
				MultiAZ:            awsv2.ToBool(db.MultiAZ),
				BackupRetention:    awsv2.ToInt32(db.BackupRetentionPeriod),
				DeletionProtection: awsv2.ToBool(db.DeletionProtection),
			})
		}
	}
	return instances, nil
}

// collectRDS inventories DB instances and flags unencrypted or public ones.
func collectRDS(ctx context.Context, client RDSAPI, region string) (*domain.SyncResult, error) {
	instances, err := listDBInstances(ctx, client)
	if err != nil {
		return nil, err
	}

	result := domain.NewSyncResult()
	result.RecordsProcessed = len(instances)
	if len(instances) == 0 {
		return result, nil
	}

	exposed := connectors.Select(instances, func(db DBInstance) bool { return db.Public || !db.Encrypted })

	result.AddEvidence(connectors.NewEvidence(TypeID, "rds:instances:"+region, "RDS database inventory ("+region+")").
		Describe("%d RDS instances in %s", len(instances), region).
		With("region", region).
		With("total_instances", len(instances)).
		With("encrypted", connectors.Count(instances, func(db DBInstance) bool { return db.Encrypted })).
		With("multi_az", connectors.Count(instances, func(db DBInstance) bool { return db.MultiAZ })).
		With("by_engine", connectors.CountBy(instances, func(db DBInstance) string { return db.Engine })).
		With("instances", instances).
		Controls(controlsRDSInventory...).
		Build())

	if len(exposed) > 0 {
		result.AddEvidence(connectors.NewEvidence(TypeID, "rds:instances:exposed:"+region, "Unencrypted or public RDS instances ("+region+")").
			Describe("%d RDS instances in %s are publicly accessible or unencrypted", len(exposed), region).
			With("region", region).
			With("public", connectors.Count(exposed, func(db DBInstance) bool { return db.Public })).
			With("unencrypted", connectors.Count(exposed, func(db DBInstance) bool { return !db.Encrypted })).
			With("instances", exposed).
			Controls(controlsRDSExposure...).
			Build())
	}

	return result, nil
}
