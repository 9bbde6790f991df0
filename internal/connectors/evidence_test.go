package connectors

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestEvidenceBuilder(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	b := NewEvidence("aws", "s3:buckets", "S3 bucket inventory").
		Describe("%d buckets inspected", 3).
		With("total", 3).
		Controls("CC6.1", "C1.1")
	e := b.Build()

	assert.Equal(t, "S3 bucket inventory", e.Title)
	assert.Equal(t, "3 buckets inspected", e.Description)
	assert.Equal(t, domain.EvidenceKindAutomated, e.Kind)
	assert.Equal(t, "aws", e.SourceProvider)
	assert.Equal(t, "s3:buckets", e.SourceReference)
	assert.Equal(t, 3, e.Data["total"])
	assert.Equal(t, []string{"CC6.1", "C1.1"}, e.ControlCodes)
	assert.Equal(t, fixed, e.CollectedAt)

	b.With("total", 4)
	assert.Equal(t, 3, e.Data["total"], "built evidence is not affected by later builder calls")
}

func TestLookbackDays(t *testing.T) {
	full := domain.SyncContext{FullSync: true}
	incremental := domain.SyncContext{FullSync: false}

	assert.Equal(t, 30, LookbackDays(30, full))
	assert.Equal(t, 1, LookbackDays(30, incremental))
	assert.Equal(t, 1, LookbackDays(1, incremental))
}

func TestSince(t *testing.T) {
	fixed := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	now = func() time.Time { return fixed }
	defer func() { now = time.Now }()

	assert.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), Since(7))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0.0, Percent(1, 0))
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 100.0, Percent(4, 4))
}
