package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestHistoryCmd_Empty(t *testing.T) {
	out, err := execute(t, "history", "--store", filepath.Join(t.TempDir(), "evidence.db"))

	require.NoError(t, err)
	assert.Contains(t, out, "No sync runs recorded.")
}

func TestHistoryCmd_ListsRuns(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "fake", result: partialResult()})
	store := filepath.Join(t.TempDir(), "evidence.db")
	path := writeDoc(t, "fake.toml", "type = \"fake\"\n")

	_, err := execute(t, "sync", "--config", path, "--store", store, "--integration", "int-1")
	require.NoError(t, err)
	_, err = execute(t, "sync", "--config", path, "--store", store, "--integration", "int-2")
	require.NoError(t, err)

	out, err := execute(t, "history", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "int-1")
	assert.Contains(t, out, "int-2")

	out, err = execute(t, "history", "--store", store, "--integration", "int-2", "--json")
	require.NoError(t, err)
	var runs []runView
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "int-2", runs[0].IntegrationID)
	assert.Equal(t, string(domain.SyncStatusPartial), runs[0].Status)
	assert.Equal(t, 5, runs[0].RecordsProcessed)
}

func TestHistoryCmd_StoreFromEnv(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "fake", syncErr: domain.NewConfigError("token", "is required")})
	store := filepath.Join(t.TempDir(), "evidence.db")
	t.Setenv("EVIDENCE_SYNC_STORE", store)
	path := writeDoc(t, "fake.toml", "type = \"fake\"\n")

	_, err := execute(t, "sync", "--config", path)
	require.Error(t, err)

	out, err := execute(t, "history", "--json")
	require.NoError(t, err)
	var runs []runView
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, string(domain.SyncStatusFailed), runs[0].Status)
	assert.Contains(t, runs[0].Message, "token")
}

func TestEvidenceCmd(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "fake", result: partialResult()})
	store := filepath.Join(t.TempDir(), "evidence.db")
	path := writeDoc(t, "fake.toml", "type = \"fake\"\n")

	out, err := execute(t, "evidence", "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "No evidence stored.")

	_, err = execute(t, "sync", "--config", path, "--store", store, "--integration", "int-1")
	require.NoError(t, err)

	out, err = execute(t, "evidence", "--store", store, "--integration", "int-1", "--json")
	require.NoError(t, err)
	var items []evidenceView
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.NotEmpty(t, items[0].ID)
	assert.Equal(t, "int-1", items[0].IntegrationID)
	assert.Equal(t, "users:acme", items[0].SourceReference)
	assert.Equal(t, float64(2), items[0].Data["total"])
}
