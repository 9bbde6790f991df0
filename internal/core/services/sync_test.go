package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

var testSync = domain.SyncContext{OrganizationID: "org-1", IntegrationID: "int-1", FullSync: true}

func evidenceResult(titles ...string) *domain.SyncResult {
	res := domain.NewSyncResult()
	res.RecordsProcessed = len(titles)
	for _, title := range titles {
		res.AddEvidence(domain.CollectedEvidence{Title: title, Kind: domain.EvidenceKindAutomated})
	}
	return res
}

func TestSyncService_Sync(t *testing.T) {
	provider := &stubProvider{typ: "okta", result: evidenceResult("Okta user inventory", "Locked-out users")}
	sink := &recordingSink{}
	runs := &runLog{}
	svc := NewSyncService(NewProviderRegistry(provider), sink, runs)

	res, err := svc.Sync(context.Background(), "okta", map[string]any{}, testSync)

	require.NoError(t, err)
	assert.Equal(t, 2, res.RecordsCreated)
	require.Len(t, sink.batches, 1)
	assert.Len(t, sink.batches[0], 2)

	require.Len(t, runs.runs, 1)
	run := runs.runs[0]
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "okta", run.IntegrationType)
	assert.Equal(t, "int-1", run.IntegrationID)
	assert.Equal(t, domain.SyncStatusSucceeded, run.Status)
	assert.Equal(t, 2, run.RecordsCreated)
	assert.False(t, run.FinishedAt.Before(run.StartedAt))
}

func TestSyncService_SyncPartial(t *testing.T) {
	res := evidenceResult("Entra ID group inventory")
	res.AddError("sign_in_logs_sync_failed", "403", "tenant")
	runs := &runLog{}
	svc := NewSyncService(NewProviderRegistry(&stubProvider{typ: "azure_ad", result: res}), nil, runs)

	got, err := svc.Sync(context.Background(), "azure_ad", nil, testSync)

	require.NoError(t, err)
	assert.Equal(t, domain.SyncStatusPartial, got.Status())
	require.Len(t, runs.runs, 1)
	assert.Equal(t, domain.SyncStatusPartial, runs.runs[0].Status)
	assert.Equal(t, 1, runs.runs[0].ErrorCount)
}

func TestSyncService_SyncFailures(t *testing.T) {
	tests := []struct {
		name     string
		typ      string
		provider *stubProvider
		wantErr  error
		wantRun  bool
	}{
		{
			name:     "unsupported type",
			typ:      "salesforce",
			provider: &stubProvider{typ: "okta"},
			wantErr:  domain.ErrUnsupportedType,
		},
		{
			name:     "invalid config",
			typ:      "okta",
			provider: &stubProvider{typ: "okta", syncErr: domain.NewConfigError("domain", "is required")},
			wantErr:  domain.ErrInvalidConfig,
			wantRun:  true,
		},
		{
			name:     "connection",
			typ:      "okta",
			provider: &stubProvider{typ: "okta", syncErr: &domain.ConnectionError{Provider: "okta", Err: errUpstream}},
			wantErr:  domain.ErrConnection,
			wantRun:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			runs := &runLog{}
			svc := NewSyncService(NewProviderRegistry(tt.provider), sink, runs)

			res, err := svc.Sync(context.Background(), tt.typ, nil, testSync)

			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, res)
			assert.Empty(t, sink.batches)
			if !tt.wantRun {
				assert.Empty(t, runs.runs)
				return
			}
			require.Len(t, runs.runs, 1)
			assert.Equal(t, domain.SyncStatusFailed, runs.runs[0].Status)
			assert.Equal(t, tt.provider.syncErr.Error(), runs.runs[0].Message)
		})
	}
}

func TestSyncService_SinkFailureKeepsResult(t *testing.T) {
	sink := &recordingSink{err: errors.New("disk full")}
	svc := NewSyncService(NewProviderRegistry(&stubProvider{typ: "jira", result: evidenceResult("Jira project inventory")}), sink, nil)

	res, err := svc.Sync(context.Background(), "jira", nil, testSync)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest evidence")
	require.NotNil(t, res)
	assert.Len(t, res.Evidence, 1)
}

func TestSyncService_NoEvidenceSkipsSink(t *testing.T) {
	sink := &recordingSink{}
	svc := NewSyncService(NewProviderRegistry(&stubProvider{typ: "jira", result: domain.NewSyncResult()}), sink, nil)

	_, err := svc.Sync(context.Background(), "jira", nil, testSync)

	require.NoError(t, err)
	assert.Empty(t, sink.batches)
}

func TestSyncService_RunStoreFailureIgnored(t *testing.T) {
	runs := &runLog{err: errors.New("locked")}
	svc := NewSyncService(NewProviderRegistry(&stubProvider{typ: "okta", result: evidenceResult("x")}), nil, runs)

	res, err := svc.Sync(context.Background(), "okta", nil, testSync)

	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestSyncService_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runs := &runLog{}
	svc := NewSyncService(NewProviderRegistry(&stubProvider{typ: "okta", result: evidenceResult("x")}), nil, runs)

	res, err := svc.Sync(ctx, "okta", nil, testSync)

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
	require.Len(t, runs.runs, 1, "the failed run is still recorded")
	assert.Equal(t, domain.SyncStatusFailed, runs.runs[0].Status)
}

func TestSyncService_ValidateAndTestConnection(t *testing.T) {
	provider := &stubProvider{
		typ:     "github",
		cfgErr:  domain.NewConfigError("token", "is required"),
		details: &domain.ConnectionDetails{AccountID: "acme"},
	}
	svc := NewSyncService(NewProviderRegistry(provider), nil, nil)

	err := svc.ValidateConfig("github", nil)
	assert.Equal(t, "token", domain.ConfigField(err))

	details, err := svc.TestConnection(context.Background(), "github", nil)
	require.NoError(t, err)
	assert.Equal(t, "acme", details.AccountID)

	_, err = svc.TestConnection(context.Background(), "gitlab", nil)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	desc, err := svc.Describe("github")
	require.NoError(t, err)
	assert.Equal(t, "github", desc.ID)
}

func TestSyncService_History(t *testing.T) {
	runs := &runLog{}
	provider := &stubProvider{typ: "okta", result: evidenceResult("x")}
	svc := NewSyncService(NewProviderRegistry(provider), nil, runs)

	for _, id := range []string{"int-1", "int-2", "int-1"} {
		sc := testSync
		sc.IntegrationID = id
		_, err := svc.Sync(context.Background(), "okta", nil, sc)
		require.NoError(t, err)
	}

	history, err := svc.History(context.Background(), "int-1", 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, runs.runs[2].ID, history[0].ID, "newest first")

	all, err := svc.History(context.Background(), "", 1)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := NewSyncService(NewProviderRegistry(), nil, nil).History(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
