package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"github.toml", FormatTOML},
		{"okta.json", FormatJSON},
		{"OKTA.JSON", FormatJSON},
		{"config", FormatTOML},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOf(tt.path))
		})
	}
}

func TestParse_TOML(t *testing.T) {
	t.Setenv("TEST_GH_TOKEN", "ghp_secret")

	doc, err := Parse([]byte(`
type = "github"
auth_method = "pat"
token = "${TEST_GH_TOKEN}"
organization = "acme"
repositories = ["api", "web"]

[services]
dependabot_alerts = false
`), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "github", doc.Type)
	assert.Equal(t, "ghp_secret", doc.Config["token"])
	assert.Equal(t, "acme", doc.Config["organization"])
	assert.Equal(t, []any{"api", "web"}, doc.Config["repositories"])
	assert.Equal(t, map[string]any{"dependabot_alerts": false}, doc.Config["services"])
	assert.NotContains(t, doc.Config, KeyType)
}

func TestParse_JSON(t *testing.T) {
	t.Setenv("TEST_OKTA_TOKEN", "00abc")

	doc, err := Parse([]byte(`{"domain": "acme.okta.com", "api_token": "${TEST_OKTA_TOKEN}", "max_log_events": 500}`), FormatJSON)
	require.NoError(t, err)

	assert.Empty(t, doc.Type)
	assert.Equal(t, "00abc", doc.Config["api_token"])
	assert.Equal(t, float64(500), doc.Config["max_log_events"])
}

func TestParse_ExpandsOnlyBracedReferences(t *testing.T) {
	t.Setenv("TEST_SECRET", "s3cr3t")
	t.Setenv("xYz9", "leaked")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "braced reference", in: "${TEST_SECRET}", want: "s3cr3t"},
		{name: "embedded reference", in: "pre-${TEST_SECRET}-post", want: "pre-s3cr3t-post"},
		{name: "unset reference", in: "${TEST_UNSET_VAR}", want: ""},
		{name: "bare dollar name", in: "Ab1$xYz9", want: "Ab1$xYz9"},
		{name: "double dollar", in: "tok$$en", want: "tok$$en"},
		{name: "trailing dollar", in: "secret$", want: "secret$"},
		{name: "unterminated brace", in: "a${b", want: "a${b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(`{"client_secret": "`+tt.in+`"}`), FormatJSON)
			require.NoError(t, err)

			assert.Equal(t, tt.want, doc.Config["client_secret"])
		})
	}
}

func TestParse_Empty(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatJSON} {
		doc, err := Parse([]byte("  \n"), format)
		require.NoError(t, err)
		assert.Empty(t, doc.Config)
		assert.NotNil(t, doc.Config)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{name: "invalid toml", data: "invalid toml syntax ][}{", format: FormatTOML},
		{name: "invalid json", data: "{", format: FormatJSON},
		{name: "json array", data: "[1, 2]", format: FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, domain.ErrInvalidConfig)
		})
	}
}

func TestParse_TypeMustBeString(t *testing.T) {
	_, err := Parse([]byte("type = 3"), FormatTOML)

	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, KeyType, cfgErr.Field)
}

func TestParse_UnsupportedFormat(t *testing.T) {
	_, err := Parse([]byte("a: b"), Format("yaml"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jira.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"type": "jira", "site_url": "https://acme.atlassian.net"}`), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, doc.Path)
	assert.Equal(t, "jira", doc.Type)
	assert.Equal(t, "https://acme.atlassian.net", doc.Config["site_url"])
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
