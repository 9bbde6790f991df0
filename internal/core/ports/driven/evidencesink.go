package driven

import (
	"context"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// EvidenceSink receives the evidence produced by a sync.
// Deduplication and control mapping are the sink's concern.
type EvidenceSink interface {
	// Ingest stores the evidence collected for one integration.
	Ingest(ctx context.Context, sc domain.SyncContext, evidence []domain.CollectedEvidence) error
}

// SyncRunStore persists the history of sync invocations.
type SyncRunStore interface {
	// SaveRun stores or updates a run.
	SaveRun(ctx context.Context, run domain.SyncRun) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*domain.SyncRun, error)

	// ListRuns returns the most recent runs of an integration, newest first.
	// An empty integrationID lists runs of every integration.
	ListRuns(ctx context.Context, integrationID string, limit int) ([]domain.SyncRun, error)
}
