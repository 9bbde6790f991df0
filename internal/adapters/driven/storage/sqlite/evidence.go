package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

var _ driven.EvidenceSink = (*EvidenceStore)(nil)

// StoredEvidence is one ingested evidence row.
type StoredEvidence struct {
	ID             string
	OrganizationID string
	IntegrationID  string
	IngestedAt     time.Time
	Evidence       domain.CollectedEvidence
}

// EvidenceStore persists evidence in the evidence table.
type EvidenceStore struct {
	store *Store
	now   func() time.Time
}

// Ingest inserts every item in a single transaction.
func (s *EvidenceStore) Ingest(ctx context.Context, sc domain.SyncContext, evidence []domain.CollectedEvidence) error {
	if len(evidence) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO evidence (id, organization_id, integration_id, source_provider, source_reference,
			kind, title, description, data, control_codes, collected_at, ingested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing ingest: %w", err)
	}
	defer stmt.Close()

	ingestedAt := toNanos(s.now())
	for _, e := range evidence {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("encoding data of %s: %w", e.SourceReference, err)
		}
		codes := e.ControlCodes
		if codes == nil {
			codes = []string{}
		}
		controls, err := json.Marshal(codes)
		if err != nil {
			return fmt.Errorf("encoding control codes of %s: %w", e.SourceReference, err)
		}
		_, err = stmt.ExecContext(ctx,
			uuid.NewString(), sc.OrganizationID, sc.IntegrationID, e.SourceProvider, e.SourceReference,
			string(e.Kind), e.Title, e.Description, string(data), string(controls),
			toNanos(e.CollectedAt), ingestedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting %s: %w", e.SourceReference, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ingest: %w", err)
	}
	return nil
}

// List returns the evidence of an integration in ingestion order.
// An empty integrationID lists everything.
func (s *EvidenceStore) List(ctx context.Context, integrationID string) ([]StoredEvidence, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, organization_id, integration_id, source_provider, source_reference,
			kind, title, description, data, control_codes, collected_at, ingested_at
		FROM evidence
		WHERE ? = '' OR integration_id = ?
		ORDER BY ingested_at, rowid
	`, integrationID, integrationID)
	if err != nil {
		return nil, fmt.Errorf("listing evidence: %w", err)
	}
	defer rows.Close()

	var out []StoredEvidence
	for rows.Next() {
		var (
			item                 StoredEvidence
			kind, data, controls string
			collected, ingested  int64
		)
		err := rows.Scan(&item.ID, &item.OrganizationID, &item.IntegrationID,
			&item.Evidence.SourceProvider, &item.Evidence.SourceReference,
			&kind, &item.Evidence.Title, &item.Evidence.Description, &data, &controls,
			&collected, &ingested)
		if err != nil {
			return nil, fmt.Errorf("scanning evidence: %w", err)
		}
		item.Evidence.Kind = domain.EvidenceKind(kind)
		if err := json.Unmarshal([]byte(data), &item.Evidence.Data); err != nil {
			return nil, fmt.Errorf("decoding data of %s: %w", item.ID, err)
		}
		if err := json.Unmarshal([]byte(controls), &item.Evidence.ControlCodes); err != nil {
			return nil, fmt.Errorf("decoding control codes of %s: %w", item.ID, err)
		}
		item.Evidence.CollectedAt = fromNanos(collected)
		item.IngestedAt = fromNanos(ingested)
		out = append(out, item)
	}
	return out, rows.Err()
}

// Count returns how many evidence rows are stored.
func (s *EvidenceStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM evidence").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting evidence: %w", err)
	}
	return n, nil
}
