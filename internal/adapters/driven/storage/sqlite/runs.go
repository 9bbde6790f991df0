package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// runStore implements driven.SyncRunStore.
type runStore struct {
	store *Store
}

var _ driven.SyncRunStore = (*runStore)(nil)

const runColumns = `id, integration_type, organization_id, integration_id, full_sync, status,
	records_processed, records_created, error_count, message, started_at, finished_at`

// SaveRun stores or updates a run.
func (s *runStore) SaveRun(ctx context.Context, run domain.SyncRun) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			records_processed = excluded.records_processed,
			records_created = excluded.records_created,
			error_count = excluded.error_count,
			message = excluded.message,
			finished_at = excluded.finished_at
	`,
		run.ID, run.IntegrationType, run.OrganizationID, run.IntegrationID, run.FullSync, string(run.Status),
		run.RecordsProcessed, run.RecordsCreated, run.ErrorCount, run.Message,
		toNanos(run.StartedAt), toNanos(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.store.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM sync_runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs of an integration, newest first.
func (s *runStore) ListRuns(ctx context.Context, integrationID string, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM sync_runs
		WHERE ? = '' OR integration_id = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, integrationID, integrationID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.SyncRun, error) {
	var (
		run               domain.SyncRun
		status            string
		started, finished int64
	)
	err := row.Scan(
		&run.ID, &run.IntegrationType, &run.OrganizationID, &run.IntegrationID, &run.FullSync, &status,
		&run.RecordsProcessed, &run.RecordsCreated, &run.ErrorCount, &run.Message, &started, &finished,
	)
	if err != nil {
		return nil, err
	}
	run.Status = domain.SyncStatus(status)
	run.StartedAt = fromNanos(started)
	run.FinishedAt = fromNanos(finished)
	return &run, nil
}
