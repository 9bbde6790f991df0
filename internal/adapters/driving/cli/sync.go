package cli

import (
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// defaultOrganization is used when --org is not given.
const defaultOrganization = "default"

var (
	syncFlags       integrationFlags
	syncOrg         string
	syncIntegration string
	syncFull        bool
	syncDryRun      bool
	syncJSON        bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Collect evidence from an integration",
	Long: `Runs one sync of the integration described by the config document.
Evidence and the run record are stored in the SQLite database unless
--dry-run is given. Failed sub-services are reported but do not fail the
command; only config, credential and storage failures do.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func init() {
	syncFlags.register(syncCmd)
	flags := syncCmd.Flags()
	flags.StringVar(&syncOrg, "org", defaultOrganization, "organization ID the evidence belongs to")
	flags.StringVar(&syncIntegration, "integration", "", "integration ID (defaults to the config file name)")
	flags.BoolVar(&syncFull, "full", false, "run a full sync instead of an incremental one")
	flags.Int(keyConcurrency, 1, "maximum sub-service units run at once")
	flags.BoolVar(&syncDryRun, "dry-run", false, "collect evidence without storing it")
	flags.BoolVar(&syncJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	integrationType, doc, err := loadIntegration(syncFlags.config, syncFlags.typ)
	if err != nil {
		return err
	}

	mode := withSQLiteStore
	if syncDryRun {
		mode = withMemoryStore
	}
	a, err := openApp(mode)
	if err != nil {
		return err
	}
	defer a.close()

	sc := domain.SyncContext{
		OrganizationID: syncOrg,
		IntegrationID:  syncIntegration,
		FullSync:       syncFull,
	}
	if sc.IntegrationID == "" {
		sc.IntegrationID = strings.TrimSuffix(filepath.Base(doc.Path), filepath.Ext(doc.Path))
	}

	result, err := a.sync.Sync(cmd.Context(), integrationType, doc.Config, sc)
	if result != nil {
		if syncJSON {
			if printErr := printJSON(cmd, newSyncView(integrationType, sc, result)); printErr != nil {
				return printErr
			}
		} else {
			printSyncResult(cmd, integrationType, sc, result)
		}
	}
	return err
}

type syncView struct {
	IntegrationType  string         `json:"integration_type"`
	OrganizationID   string         `json:"organization_id"`
	IntegrationID    string         `json:"integration_id"`
	FullSync         bool           `json:"full_sync"`
	Status           string         `json:"status"`
	RecordsProcessed int            `json:"records_processed"`
	RecordsCreated   int            `json:"records_created"`
	Evidence         []evidenceView `json:"evidence"`
	Errors           []errorView    `json:"errors"`
}

type errorView struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Resource string `json:"resource,omitempty"`
}

func newSyncView(integrationType string, sc domain.SyncContext, r *domain.SyncResult) syncView {
	v := syncView{
		IntegrationType:  integrationType,
		OrganizationID:   sc.OrganizationID,
		IntegrationID:    sc.IntegrationID,
		FullSync:         sc.FullSync,
		Status:           string(r.Status()),
		RecordsProcessed: r.RecordsProcessed,
		RecordsCreated:   r.RecordsCreated,
		Evidence:         make([]evidenceView, 0, len(r.Evidence)),
		Errors:           make([]errorView, 0, len(r.Errors)),
	}
	for _, e := range r.Evidence {
		v.Evidence = append(v.Evidence, newEvidenceView(e))
	}
	for _, e := range r.Errors {
		v.Errors = append(v.Errors, errorView{Code: e.Code, Message: e.Message, Resource: e.Resource})
	}
	return v
}

func printSyncResult(cmd *cobra.Command, integrationType string, sc domain.SyncContext, r *domain.SyncResult) {
	mode := "incremental"
	if sc.FullSync {
		mode = "full"
	}
	cmd.Printf("Sync %s: %s (%s, integration %s)\n", r.Status(), integrationType, mode, sc.IntegrationID)
	cmd.Printf("  Records processed: %d\n", r.RecordsProcessed)
	cmd.Printf("  Evidence created:  %d\n", r.RecordsCreated)

	if len(r.Evidence) > 0 {
		cmd.Println()
		cmd.Println("Evidence:")
		for _, e := range r.Evidence {
			cmd.Printf("  - %s [%s]\n", e.Title, e.SourceReference)
		}
	}
	if len(r.Errors) > 0 {
		cmd.Println()
		cmd.Println("Errors:")
		for _, e := range r.Errors {
			if e.Resource != "" {
				cmd.Printf("  - %s (%s): %s\n", e.Code, e.Resource, e.Message)
				continue
			}
			cmd.Printf("  - %s: %s\n", e.Code, e.Message)
		}
	}
}
