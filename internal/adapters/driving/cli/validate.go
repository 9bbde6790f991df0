package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

// Flags shared by commands that read an integration config document.
type integrationFlags struct {
	typ    string
	config string
}

func (f *integrationFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.typ, "type", "t", "", "integration type (defaults to the document's type key)")
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "integration config document (TOML or JSON)")
}

var (
	validateFlags integrationFlags
	testFlags     integrationFlags
	testJSON      bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an integration config without contacting the remote system",
	Args:  cobra.NoArgs,
	RunE:  runValidate,
}

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test the credentials of an integration config",
	Long: `Validates the config, then makes one cheap authenticated call to the
remote system and prints the account it resolves to.`,
	Args: cobra.NoArgs,
	RunE: runTest,
}

func init() {
	validateFlags.register(validateCmd)
	testFlags.register(testCmd)
	testCmd.Flags().BoolVar(&testJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(testCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	integrationType, doc, err := loadIntegration(validateFlags.config, validateFlags.typ)
	if err != nil {
		return err
	}
	a, err := openApp(withoutStore)
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.sync.ValidateConfig(integrationType, doc.Config); err != nil {
		var cfgErr *domain.ConfigError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("%s: invalid %s: %s", doc.Path, cfgErr.Field, cfgErr.Message)
		}
		return err
	}
	cmd.Printf("%s: valid %s configuration\n", doc.Path, integrationType)
	return nil
}

func runTest(cmd *cobra.Command, _ []string) error {
	integrationType, doc, err := loadIntegration(testFlags.config, testFlags.typ)
	if err != nil {
		return err
	}
	a, err := openApp(withoutStore)
	if err != nil {
		return err
	}
	defer a.close()

	details, err := a.sync.TestConnection(cmd.Context(), integrationType, doc.Config)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}

	if testJSON {
		return printJSON(cmd, connectionView{
			IntegrationType: integrationType,
			AccountID:       details.AccountID,
			AccountName:     details.AccountName,
			Permissions:     details.Permissions,
			Metadata:        details.Metadata,
		})
	}

	cmd.Printf("Connected to %s\n", integrationType)
	cmd.Printf("  Account:     %s\n", details.AccountID)
	if details.AccountName != "" {
		cmd.Printf("  Name:        %s\n", details.AccountName)
	}
	if len(details.Metadata) > 0 {
		keys := make([]string, 0, len(details.Metadata))
		for k := range details.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %-12s %s\n", k+":", details.Metadata[k])
		}
	}
	if len(details.Permissions) > 0 {
		cmd.Println("  Permissions required:")
		for _, p := range details.Permissions {
			cmd.Printf("    - %s\n", p)
		}
	}
	return nil
}

type connectionView struct {
	IntegrationType string            `json:"integration_type"`
	AccountID       string            `json:"account_id"`
	AccountName     string            `json:"account_name,omitempty"`
	Permissions     []string          `json:"permissions"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}
