package driving

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// SyncService is the entry point the job queue and the configuration UI use.
type SyncService interface {
	// Sync runs one sync of the integration described by raw.
	Sync(ctx context.Context, integrationType string, raw map[string]any, sc domain.SyncContext) (*domain.SyncResult, error)

	// ValidateConfig checks raw against the integration type's rules without I/O.
	ValidateConfig(integrationType string, raw map[string]any) error

	// TestConnection confirms the configured credentials reach the remote system.
	TestConnection(ctx context.Context, integrationType string, raw map[string]any) (*domain.ConnectionDetails, error)

	// History returns recent sync runs, newest first.
	History(ctx context.Context, integrationID string, limit int) ([]domain.SyncRun, error)
}
