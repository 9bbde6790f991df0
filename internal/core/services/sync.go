package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driving"
	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncService = (*SyncService)(nil)

// SyncService runs provider syncs and records their outcome.
type SyncService struct {
	registry *ProviderRegistry
	sink     driven.EvidenceSink
	runs     driven.SyncRunStore
	now      func() time.Time
}

// NewSyncService creates a sync service.
// The sink and run store are optional - if nil, evidence is only returned
// and runs are not recorded.
func NewSyncService(registry *ProviderRegistry, sink driven.EvidenceSink, runs driven.SyncRunStore) *SyncService {
	return &SyncService{
		registry: registry,
		sink:     sink,
		runs:     runs,
		now:      time.Now,
	}
}

// Sync runs one sync of the integration described by raw.
//
// Validation, connection and cancellation failures return no result. When
// the evidence sink fails the result is still returned alongside the error.
func (s *SyncService) Sync(
	ctx context.Context, integrationType string, raw map[string]any, sc domain.SyncContext,
) (*domain.SyncResult, error) {
	provider, err := s.registry.Get(integrationType)
	if err != nil {
		return nil, err
	}

	log := logger.With(
		"provider", integrationType,
		"organization", sc.OrganizationID,
		"integration", sc.IntegrationID,
		"full_sync", sc.FullSync,
	)
	run := domain.SyncRun{
		ID:              uuid.NewString(),
		IntegrationType: integrationType,
		OrganizationID:  sc.OrganizationID,
		IntegrationID:   sc.IntegrationID,
		FullSync:        sc.FullSync,
		StartedAt:       s.now().UTC(),
	}
	log.Info("sync started", "run", run.ID)

	result, err := provider.Sync(ctx, raw, sc)
	run.FinishedAt = s.now().UTC()
	if err != nil {
		run.Status = domain.SyncStatusFailed
		run.Message = err.Error()
		s.saveRun(ctx, run)
		log.Error("sync failed", "run", run.ID, "error", err)
		return nil, err
	}

	run.Status = result.Status()
	run.RecordsProcessed = result.RecordsProcessed
	run.RecordsCreated = result.RecordsCreated
	run.ErrorCount = len(result.Errors)
	s.saveRun(ctx, run)

	log.Info("sync complete",
		"run", run.ID,
		"status", run.Status,
		"processed", run.RecordsProcessed,
		"created", run.RecordsCreated,
		"errors", run.ErrorCount,
		"duration", run.Duration(),
	)
	for _, e := range result.Errors {
		log.Warn("unit failed", "code", e.Code, "resource", e.Resource, "error", e.Message)
	}

	if s.sink != nil && len(result.Evidence) > 0 {
		if err := s.sink.Ingest(ctx, sc, result.Evidence); err != nil {
			return result, fmt.Errorf("ingest evidence: %w", err)
		}
	}
	return result, nil
}

// saveRun records run. A store failure is logged and never fails the sync.
func (s *SyncService) saveRun(ctx context.Context, run domain.SyncRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Warn("failed to record sync run", "run", run.ID, "error", err)
	}
}

// ValidateConfig checks raw against the integration type's rules without I/O.
func (s *SyncService) ValidateConfig(integrationType string, raw map[string]any) error {
	provider, err := s.registry.Get(integrationType)
	if err != nil {
		return err
	}
	return provider.ValidateConfig(raw)
}

// TestConnection confirms the configured credentials reach the remote system.
func (s *SyncService) TestConnection(
	ctx context.Context, integrationType string, raw map[string]any,
) (*domain.ConnectionDetails, error) {
	provider, err := s.registry.Get(integrationType)
	if err != nil {
		return nil, err
	}
	details, err := provider.TestConnection(ctx, raw)
	if err != nil {
		logger.Warn("connection test failed", "provider", integrationType, "error", err)
		return nil, err
	}
	logger.Info("connection test passed", "provider", integrationType, "account", details.AccountID)
	return details, nil
}

// Describe returns the configuration surface and capabilities of an
// integration type.
func (s *SyncService) Describe(integrationType string) (domain.IntegrationType, error) {
	return s.registry.Describe(integrationType)
}

// History returns recent sync runs, newest first. Without a run store it
// returns nothing.
func (s *SyncService) History(ctx context.Context, integrationID string, limit int) ([]domain.SyncRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	runs, err := s.runs.ListRuns(ctx, integrationID, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}
