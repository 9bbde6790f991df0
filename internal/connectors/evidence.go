package connectors

import (
	"fmt"
	"time"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// now is replaced in tests that assert on CollectedAt.
var now = time.Now

// EvidenceBuilder assembles one CollectedEvidence.
type EvidenceBuilder struct {
	e domain.CollectedEvidence
}

// NewEvidence starts an automated evidence item for provider.
func NewEvidence(provider, reference, title string) *EvidenceBuilder {
	return &EvidenceBuilder{e: domain.CollectedEvidence{
		Title:           title,
		Kind:            domain.EvidenceKindAutomated,
		SourceProvider:  provider,
		SourceReference: reference,
		Data:            map[string]any{},
	}}
}

// Describe sets the description.
func (b *EvidenceBuilder) Describe(format string, args ...any) *EvidenceBuilder {
	b.e.Description = fmt.Sprintf(format, args...)
	return b
}

// With sets one payload entry.
func (b *EvidenceBuilder) With(key string, value any) *EvidenceBuilder {
	b.e.Data[key] = value
	return b
}

// Controls tags the evidence with control codes.
func (b *EvidenceBuilder) Controls(codes ...string) *EvidenceBuilder {
	b.e.ControlCodes = append(b.e.ControlCodes, codes...)
	return b
}

// Build stamps the collection time and returns the evidence.
func (b *EvidenceBuilder) Build() domain.CollectedEvidence {
	e := b.e
	e.CollectedAt = now().UTC()
	e.ControlCodes = append([]string(nil), b.e.ControlCodes...)
	data := make(map[string]any, len(b.e.Data))
	for k, v := range b.e.Data {
		data[k] = v
	}
	e.Data = data
	return e
}

// IncrementalLookbackDays caps log windows on incremental syncs.
const IncrementalLookbackDays = 1

// LookbackDays returns the log window for a sync. Incremental syncs never
// look further back than IncrementalLookbackDays.
func LookbackDays(configured int, sc domain.SyncContext) int {
	if !sc.FullSync && configured > IncrementalLookbackDays {
		return IncrementalLookbackDays
	}
	return configured
}

// Since returns the start of a window of days ending now.
func Since(days int) time.Time {
	return now().UTC().AddDate(0, 0, -days)
}

// Percent returns part/total as a percentage rounded to one decimal.
func Percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(int(float64(part)*1000/float64(total)+0.5)) / 10
}
