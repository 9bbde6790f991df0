package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

var (
	evidenceIntegration string
	evidenceJSON        bool
)

var evidenceCmd = &cobra.Command{
	Use:   "evidence",
	Short: "List stored evidence",
	Args:  cobra.NoArgs,
	RunE:  runEvidence,
}

func init() {
	evidenceCmd.Flags().StringVar(&evidenceIntegration, "integration", "", "only evidence of this integration ID")
	evidenceCmd.Flags().BoolVar(&evidenceJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(evidenceCmd)
}

func runEvidence(cmd *cobra.Command, _ []string) error {
	a, err := openApp(withSQLiteStore)
	if err != nil {
		return err
	}
	defer a.close()

	items, err := a.evidence.List(cmd.Context(), evidenceIntegration)
	if err != nil {
		return err
	}

	if evidenceJSON {
		views := make([]evidenceView, 0, len(items))
		for _, item := range items {
			v := newEvidenceView(item.Evidence)
			v.ID = item.ID
			v.IntegrationID = item.IntegrationID
			views = append(views, v)
		}
		return printJSON(cmd, views)
	}

	if len(items) == 0 {
		cmd.Println("No evidence stored.")
		return nil
	}
	for _, item := range items {
		e := item.Evidence
		cmd.Printf("%s  %-10s %s [%s]\n", e.CollectedAt.Local().Format(time.DateTime), item.IntegrationID, e.Title, e.SourceReference)
	}
	return nil
}

type evidenceView struct {
	ID              string         `json:"id,omitempty"`
	IntegrationID   string         `json:"integration_id,omitempty"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Kind            string         `json:"kind"`
	SourceProvider  string         `json:"source_provider"`
	SourceReference string         `json:"source_reference"`
	Data            map[string]any `json:"data"`
	ControlCodes    []string       `json:"control_codes"`
	CollectedAt     time.Time      `json:"collected_at"`
}

func newEvidenceView(e domain.CollectedEvidence) evidenceView {
	return evidenceView{
		Title:           e.Title,
		Description:     e.Description,
		Kind:            string(e.Kind),
		SourceProvider:  e.SourceProvider,
		SourceReference: e.SourceReference,
		Data:            e.Data,
		ControlCodes:    e.ControlCodes,
		CollectedAt:     e.CollectedAt,
	}
}
