package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// Ensure EvidenceStore implements the interface.
var _ driven.EvidenceSink = (*EvidenceStore)(nil)

// StoredEvidence is one ingested item with the sync it came from.
type StoredEvidence struct {
	OrganizationID string
	IntegrationID  string
	Evidence       domain.CollectedEvidence
}

// EvidenceStore is an in-memory driven.EvidenceSink.
type EvidenceStore struct {
	mu    sync.RWMutex
	items []StoredEvidence
}

// NewEvidenceStore creates a new in-memory evidence store.
func NewEvidenceStore() *EvidenceStore {
	return &EvidenceStore{}
}

// Ingest appends evidence in the order given.
func (s *EvidenceStore) Ingest(_ context.Context, sc domain.SyncContext, evidence []domain.CollectedEvidence) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range evidence {
		s.items = append(s.items, StoredEvidence{
			OrganizationID: sc.OrganizationID,
			IntegrationID:  sc.IntegrationID,
			Evidence:       e,
		})
	}
	return nil
}

// List returns the evidence ingested for an integration, oldest first.
// An empty integrationID lists everything.
func (s *EvidenceStore) List(integrationID string) []StoredEvidence {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []StoredEvidence
	for _, item := range s.items {
		if integrationID == "" || item.IntegrationID == integrationID {
			out = append(out, item)
		}
	}
	return out
}

// Count returns how many items were ingested.
func (s *EvidenceStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
