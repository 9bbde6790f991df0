package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func testRun(id, integrationID string, started time.Time) domain.SyncRun {
	return domain.SyncRun{
		ID:              id,
		IntegrationType: "github",
		OrganizationID:  "org-1",
		IntegrationID:   integrationID,
		FullSync:        true,
		Status:          domain.SyncStatusSucceeded,
		StartedAt:       started,
		FinishedAt:      started.Add(3 * time.Second),
	}
}

func TestRunStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 123, time.UTC)

	run := testRun("run-1", "int-1", started)
	run.RecordsProcessed = 40
	run.RecordsCreated = 6
	run.ErrorCount = 1
	run.Status = domain.SyncStatusPartial
	run.Message = "branch_protection_sync_failed"
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, run, *got)
	assert.Equal(t, 3*time.Second, got.Duration())
}

func TestRunStore_SaveUpdatesExisting(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()

	run := testRun("run-1", "int-1", time.Now().UTC())
	run.FinishedAt = time.Time{}
	require.NoError(t, store.SaveRun(ctx, run))

	run.Status = domain.SyncStatusFailed
	run.Message = "auth failed"
	run.FinishedAt = run.StartedAt.Add(time.Second)
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusFailed, got.Status)
	assert.Equal(t, "auth failed", got.Message)
	assert.False(t, got.FinishedAt.IsZero())
}

func TestRunStore_GetMissing(t *testing.T) {
	store := setupTestStore(t).RunStore()

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_ListRuns(t *testing.T) {
	store := setupTestStore(t).RunStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, testRun("a", "int-1", base)))
	require.NoError(t, store.SaveRun(ctx, testRun("b", "int-1", base.Add(time.Hour))))
	require.NoError(t, store.SaveRun(ctx, testRun("c", "int-2", base.Add(2*time.Hour))))
	require.NoError(t, store.SaveRun(ctx, testRun("d", "int-1", base.Add(3*time.Hour))))

	tests := []struct {
		name          string
		integrationID string
		limit         int
		want          []string
	}{
		{name: "filtered newest first", integrationID: "int-1", want: []string{"d", "b", "a"}},
		{name: "limited", integrationID: "int-1", limit: 2, want: []string{"d", "b"}},
		{name: "all integrations", want: []string{"d", "c", "b", "a"}},
		{name: "unknown integration", integrationID: "int-9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := store.ListRuns(ctx, tt.integrationID, tt.limit)
			require.NoError(t, err)
			var ids []string
			for _, r := range runs {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}
