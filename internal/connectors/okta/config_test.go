package okta

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(raw map[string]any)
		wantField string
	}{
		{name: "api token"},
		{name: "missing auth method", mutate: func(r map[string]any) { delete(r, "auth_method") }, wantField: "auth_method"},
		{name: "missing domain", mutate: func(r map[string]any) { delete(r, "domain") }, wantField: "domain"},
		{name: "foreign domain", mutate: func(r map[string]any) { r["domain"] = "acme.example.com" }, wantField: "domain"},
		{name: "lookalike domain", mutate: func(r map[string]any) { r["domain"] = "acme.okta.com.evil.io" }, wantField: "domain"},
		{name: "http scheme", mutate: func(r map[string]any) { r["domain"] = "http://acme.okta.com" }, wantField: "domain"},
		{name: "other scheme", mutate: func(r map[string]any) { r["domain"] = "ftp://acme.okta.com" }, wantField: "domain"},
		{name: "preview domain", mutate: func(r map[string]any) { r["domain"] = "acme.oktapreview.com" }},
		{name: "emea domain", mutate: func(r map[string]any) { r["domain"] = "acme.okta-emea.com" }},
		{name: "missing token", mutate: func(r map[string]any) { delete(r, "api_token") }, wantField: "api_token"},
		{
			name: "oauth access token",
			mutate: func(r map[string]any) {
				r["auth_method"] = "oauth"
				r["access_token"] = "eyJ"
				delete(r, "api_token")
			},
		},
		{
			name:      "oauth without tokens",
			mutate:    func(r map[string]any) { r["auth_method"] = "oauth" },
			wantField: "access_token",
		},
		{name: "negative lookback", mutate: func(r map[string]any) { r["log_lookback_days"] = -3 }, wantField: "log_lookback_days"},
		{name: "unknown service", mutate: func(r map[string]any) { r["services"] = map[string]any{"devices": true} }, wantField: "services.devices"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tokenConfig(nil)
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

func TestParseConfig_NormalizesDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "acme.okta.com", want: "acme.okta.com"},
		{in: "https://acme.okta.com", want: "acme.okta.com"},
		{in: "https://ACME.okta.com/", want: "acme.okta.com"},
		{in: "HTTPS://acme.oktapreview.com", want: "acme.oktapreview.com"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			raw := tokenConfig(nil)
			raw["domain"] = tt.in

			cfg, err := ParseConfig(raw)

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Domain)
			assert.Equal(t, "https://"+tt.want+"/api/v1", cfg.BaseURL())
		})
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(tokenConfig(nil))

	require.NoError(t, err)
	assert.Equal(t, DefaultLogLookbackDays, cfg.LogLookbackDays)
	assert.Equal(t, DefaultMaxLogEvents, cfg.MaxLogEvents)
	assert.Equal(t, AllServices(), cfg.Services.EnabledOf(AllServices()))
}
