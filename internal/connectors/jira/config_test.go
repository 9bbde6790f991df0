package jira

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestParseConfig(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"auth_method":  "api_token",
			"email":        "bot@acme.com",
			"api_token":    "ATATT",
			"instance_url": "https://acme.atlassian.net/",
		}
	}

	tests := []struct {
		name      string
		mutate    func(map[string]any)
		wantField string
	}{
		{name: "api token"},
		{name: "missing auth method", mutate: func(r map[string]any) { delete(r, "auth_method") }, wantField: "auth_method"},
		{name: "missing email", mutate: func(r map[string]any) { delete(r, "email") }, wantField: "email"},
		{name: "missing api token", mutate: func(r map[string]any) { r["api_token"] = "  " }, wantField: "api_token"},
		{name: "missing instance url", mutate: func(r map[string]any) { delete(r, "instance_url") }, wantField: "instance_url"},
		{name: "http instance url", mutate: func(r map[string]any) { r["instance_url"] = "http://acme.atlassian.net" }, wantField: "instance_url"},
		{name: "relative instance url", mutate: func(r map[string]any) { r["instance_url"] = "acme.atlassian.net" }, wantField: "instance_url"},
		{
			name: "oauth access token",
			mutate: func(r map[string]any) {
				r["auth_method"] = "oauth"
				r["access_token"] = "eyJ"
				r["instance_url"] = "https://api.atlassian.com/ex/jira/11223344"
			},
		},
		{name: "oauth without tokens", mutate: func(r map[string]any) { r["auth_method"] = "oauth" }, wantField: "access_token"},
		{name: "negative max issues", mutate: func(r map[string]any) { r["max_issues"] = -5 }, wantField: "max_issues"},
		{name: "max issues not a number", mutate: func(r map[string]any) { r["max_issues"] = "lots" }, wantField: "max_issues"},
		{name: "unknown service", mutate: func(r map[string]any) { r["services"] = map[string]any{"boards": true} }, wantField: "services.boards"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base()
			if tt.mutate != nil {
				tt.mutate(raw)
			}

			cfg, err := ParseConfig(raw)
			if tt.wantField == "" {
				require.NoError(t, err)
				require.NotNil(t, cfg)
				return
			}
			require.ErrorIs(t, err, domain.ErrInvalidConfig)
			assert.Equal(t, tt.wantField, domain.ConfigField(err))
		})
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(map[string]any{
		"auth_method":     "api_token",
		"email":           "bot@acme.com",
		"api_token":       "ATATT",
		"instance_url":    "https://acme.atlassian.net/",
		"security_labels": "",
	})

	require.NoError(t, err)
	assert.Equal(t, "https://acme.atlassian.net", cfg.InstanceURL)
	assert.Equal(t, "acme.atlassian.net", cfg.Site())
	assert.Equal(t, []string{"security"}, cfg.SecurityLabels)
	assert.Equal(t, DefaultIssueLookbackDays, cfg.IssueLookbackDays)
	assert.Equal(t, DefaultMaxIssues, cfg.MaxIssues)
}
