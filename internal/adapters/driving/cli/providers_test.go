package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestProvidersCmd_ListsBuiltins(t *testing.T) {
	out, err := execute(t, "providers")

	require.NoError(t, err)
	assert.Contains(t, out, "TYPE")
	for _, typ := range []string{"aws", "azure_ad", "github", "google_workspace", "jira", "okta"} {
		assert.Contains(t, out, typ)
	}
}

func TestProvidersCmd_JSON(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "zeta"}, &fakeProvider{typ: "alpha"})

	out, err := execute(t, "providers", "--json")
	require.NoError(t, err)

	var views []providerView
	require.NoError(t, json.Unmarshal([]byte(out), &views))
	require.Len(t, views, 2)
	assert.Equal(t, "alpha", views[0].ID)
	assert.Equal(t, "zeta", views[1].ID)
	assert.Equal(t, []string{"user_sync", "audit_logs"}, views[0].Capabilities)
	assert.Empty(t, views[0].ConfigKeys)
}

func TestProvidersCmd_Detail(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "fake"})

	out, err := execute(t, "providers", "fake")

	require.NoError(t, err)
	assert.Contains(t, out, "Fake fake (fake)")
	assert.Contains(t, out, "Services:      users, audit")
	assert.Contains(t, out, "* token")
	assert.Contains(t, out, "(default 7)")
}

func TestProvidersCmd_DetailJSON(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "fake"})

	out, err := execute(t, "providers", "fake", "--json")
	require.NoError(t, err)

	var view providerView
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.ConfigKeys, 3)
	assert.True(t, view.ConfigKeys[1].Secret)
	assert.Equal(t, []string{"users", "audit"}, view.Services)
}

func TestProvidersCmd_UnknownType(t *testing.T) {
	useProviders(t, &fakeProvider{typ: "fake"})

	_, err := execute(t, "providers", "nope")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
