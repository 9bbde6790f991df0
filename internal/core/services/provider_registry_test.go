package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestNewDefaultProviderRegistry(t *testing.T) {
	registry := NewDefaultProviderRegistry()

	assert.Equal(t, []string{"aws", "azure_ad", "github", "google_workspace", "jira", "okta"}, registry.Types())
	for _, typ := range registry.Types() {
		desc, err := registry.Describe(typ)
		require.NoError(t, err, typ)
		assert.Equal(t, typ, desc.ID)
		assert.NotEmpty(t, desc.RequiredFields(), typ)
		assert.NotEmpty(t, desc.Services, typ)
	}
}

func TestProviderRegistry_Get(t *testing.T) {
	okta := &stubProvider{typ: "okta"}
	registry := NewProviderRegistry(okta)

	tests := []struct {
		name    string
		typ     string
		wantErr error
	}{
		{name: "registered", typ: "okta"},
		{name: "unknown", typ: "salesforce", wantErr: domain.ErrUnsupportedType},
		{name: "case sensitive", typ: "OKTA", wantErr: domain.ErrUnsupportedType},
		{name: "empty", typ: "", wantErr: domain.ErrUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := registry.Get(tt.typ)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				assert.False(t, registry.Supports(tt.typ))
				return
			}
			require.NoError(t, err)
			assert.Same(t, okta, p)
			assert.True(t, registry.Supports(tt.typ))
		})
	}
}

func TestProviderRegistry_RegisterReplaces(t *testing.T) {
	first := &stubProvider{typ: "jira"}
	second := &stubProvider{typ: "jira", caps: domain.NewCapabilitySet(domain.CapUserSync)}
	registry := NewProviderRegistry(first)

	registry.Register(second)

	p, err := registry.Get("jira")
	require.NoError(t, err)
	assert.Same(t, second, p)
	assert.Equal(t, []string{"jira"}, registry.Types())
}

func TestProviderRegistry_Capabilities(t *testing.T) {
	registry := NewProviderRegistry(&stubProvider{
		typ:  "github",
		caps: domain.NewCapabilitySet(domain.CapAssetInventory, domain.CapSecurityFindings),
	})

	caps, err := registry.Capabilities("github")
	require.NoError(t, err)
	assert.True(t, caps.Has(domain.CapSecurityFindings))
	assert.False(t, caps.Has(domain.CapAuditLogs))

	_, err = registry.Capabilities("gitlab")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
