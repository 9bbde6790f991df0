package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/evidence-sync/internal/connectors"
	"github.com/custodia-labs/evidence-sync/internal/core/domain"
	"github.com/custodia-labs/evidence-sync/internal/core/ports/driven"
)

// fakeProvider is a driven.Provider returning canned outcomes.
type fakeProvider struct {
	typ     string
	result  *domain.SyncResult
	syncErr error
	details *domain.ConnectionDetails
	connErr error
	cfgErr  error

	lastRaw map[string]any
	lastSC  domain.SyncContext
}

var _ driven.Provider = (*fakeProvider)(nil)

func (p *fakeProvider) IntegrationType() string { return p.typ }
func (p *fakeProvider) Capabilities() domain.CapabilitySet {
	return domain.NewCapabilitySet(domain.CapUserSync, domain.CapAuditLogs)
}
func (p *fakeProvider) RequiredFields() []string { return []string{"auth_method", "token"} }
func (p *fakeProvider) OptionalFields() []string { return []string{"services"} }

func (p *fakeProvider) Describe() domain.IntegrationType {
	return domain.IntegrationType{
		ID:           p.typ,
		Name:         "Fake " + p.typ,
		Description:  "Test provider.",
		AuthMethods:  []string{"token"},
		Capabilities: p.Capabilities(),
		ConfigKeys: []domain.ConfigKey{
			{Key: "auth_method", Description: "How to authenticate", Required: true},
			{Key: "token", Description: "API token", Required: true, Secret: true},
			{Key: "lookback_days", Description: "Days of history", Default: "7"},
		},
		Services: []string{"users", "audit"},
	}
}

func (p *fakeProvider) ValidateConfig(raw map[string]any) error {
	p.lastRaw = raw
	return p.cfgErr
}

func (p *fakeProvider) TestConnection(_ context.Context, raw map[string]any) (*domain.ConnectionDetails, error) {
	p.lastRaw = raw
	return p.details, p.connErr
}

func (p *fakeProvider) Sync(ctx context.Context, raw map[string]any, sc domain.SyncContext) (*domain.SyncResult, error) {
	p.lastRaw = raw
	p.lastSC = sc
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.result, p.syncErr
}

// useProviders replaces the built-in providers for the duration of a test
// and records the run options the commands pass.
func useProviders(t *testing.T, providers ...driven.Provider) *connectors.RunOptions {
	t.Helper()
	var got connectors.RunOptions
	old := newProviders
	newProviders = func(opts connectors.RunOptions) []driven.Provider {
		got = opts
		return providers
	}
	t.Cleanup(func() { newProviders = old })
	return &got
}

// execute runs the root command with args against a fresh HOME and
// default flag values. It returns what the command printed; logs go to
// a separate buffer.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// writeDoc writes a config document into a temp directory.
func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testEvidence(ref string) domain.CollectedEvidence {
	return domain.CollectedEvidence{
		Title:           "Fake inventory",
		Kind:            domain.EvidenceKindAutomated,
		SourceProvider:  "fake",
		SourceReference: ref,
		Data:            map[string]any{"total": 2},
		ControlCodes:    []string{"CC6.1"},
	}
}
