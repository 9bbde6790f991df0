package services

import (
	"context"
	"errors"
	"sync"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

var errUpstream = errors.New("upstream failure")

// stubProvider is a driven.Provider returning canned outcomes.
type stubProvider struct {
	typ     string
	caps    domain.CapabilitySet
	result  *domain.SyncResult
	syncErr error
	details *domain.ConnectionDetails
	connErr error
	cfgErr  error

	calls int
}

var _ driven.Provider = (*stubProvider)(nil)

func (p *stubProvider) IntegrationType() string            { return p.typ }
func (p *stubProvider) Capabilities() domain.CapabilitySet  { return p.caps }
func (p *stubProvider) RequiredFields() []string            { return []string{"auth_method"} }
func (p *stubProvider) OptionalFields() []string            { return nil }
func (p *stubProvider) ValidateConfig(map[string]any) error { return p.cfgErr }

func (p *stubProvider) Describe() domain.IntegrationType {
	return domain.IntegrationType{ID: p.typ, Name: p.typ, Capabilities: p.caps}
}

func (p *stubProvider) TestConnection(context.Context, map[string]any) (*domain.ConnectionDetails, error) {
	return p.details, p.connErr
}

func (p *stubProvider) Sync(ctx context.Context, _ map[string]any, _ domain.SyncContext) (*domain.SyncResult, error) {
	p.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.result, p.syncErr
}

// recordingSink remembers every ingested batch.
type recordingSink struct {
	err     error
	batches [][]domain.CollectedEvidence
}

func (s *recordingSink) Ingest(_ context.Context, _ domain.SyncContext, evidence []domain.CollectedEvidence) error {
	s.batches = append(s.batches, evidence)
	return s.err
}

// runLog is an in-memory driven.SyncRunStore.
type runLog struct {
	mu   sync.Mutex
	runs []domain.SyncRun
	err  error
}

var _ driven.SyncRunStore = (*runLog)(nil)

func (l *runLog) SaveRun(_ context.Context, run domain.SyncRun) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.runs = append(l.runs, run)
	return nil
}

func (l *runLog) GetRun(_ context.Context, id string) (*domain.SyncRun, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range l.runs {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (l *runLog) ListRuns(_ context.Context, integrationID string, limit int) ([]domain.SyncRun, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	var out []domain.SyncRun
	for i := len(l.runs) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if integrationID == "" || l.runs[i].IntegrationID == integrationID {
			out = append(out, l.runs[i])
		}
	}
	return out, nil
}
