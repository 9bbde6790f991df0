package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/evidence-sync/internal/core/domain"
)

var providersJSON bool

var providersCmd = &cobra.Command{
	Use:   "providers [type]",
	Short: "List supported integration types",
	Long: `Lists every supported integration type with its capabilities.
Given a type, shows its auth methods, configuration keys and services.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProviders,
}

func init() {
	providersCmd.Flags().BoolVar(&providersJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(providersCmd)
}

func runProviders(cmd *cobra.Command, args []string) error {
	a, err := openApp(withoutStore)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 1 {
		desc, err := a.sync.Describe(args[0])
		if err != nil {
			return err
		}
		if providersJSON {
			return printJSON(cmd, newProviderView(desc, true))
		}
		printProviderDetail(cmd, desc)
		return nil
	}

	var views []providerView
	for _, t := range a.registry.Types() {
		desc, err := a.registry.Describe(t)
		if err != nil {
			return err
		}
		views = append(views, newProviderView(desc, false))
	}
	if providersJSON {
		return printJSON(cmd, views)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tNAME\tAUTH METHODS\tCAPABILITIES")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Name,
			strings.Join(v.AuthMethods, ","), strings.Join(v.Capabilities, ","))
	}
	return w.Flush()
}

type providerView struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	AuthMethods  []string        `json:"auth_methods"`
	Capabilities []string        `json:"capabilities"`
	Services     []string        `json:"services,omitempty"`
	ConfigKeys   []configKeyView `json:"config_keys,omitempty"`
}

type configKeyView struct {
	Key         string `json:"key"`
	Label       string `json:"label,omitempty"`
	Description string `json:"description,omitempty"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required"`
	Secret      bool   `json:"secret"`
}

func newProviderView(desc domain.IntegrationType, detailed bool) providerView {
	v := providerView{
		ID:           desc.ID,
		Name:         desc.Name,
		AuthMethods:  desc.AuthMethods,
		Capabilities: desc.Capabilities.Strings(),
	}
	if !detailed {
		return v
	}
	v.Description = desc.Description
	v.Services = desc.Services
	for _, k := range desc.ConfigKeys {
		v.ConfigKeys = append(v.ConfigKeys, configKeyView{
			Key:         k.Key,
			Label:       k.Label,
			Description: k.Description,
			Default:     k.Default,
			Required:    k.Required,
			Secret:      k.Secret,
		})
	}
	return v
}

func printProviderDetail(cmd *cobra.Command, desc domain.IntegrationType) {
	cmd.Printf("%s (%s)\n", desc.Name, desc.ID)
	if desc.Description != "" {
		cmd.Printf("  %s\n", desc.Description)
	}
	cmd.Println()
	cmd.Printf("Auth methods:  %s\n", strings.Join(desc.AuthMethods, ", "))
	cmd.Printf("Capabilities:  %s\n", strings.Join(desc.Capabilities.Strings(), ", "))
	cmd.Printf("Services:      %s\n", strings.Join(desc.Services, ", "))
	cmd.Println()
	cmd.Println("Configuration:")
	for _, k := range desc.ConfigKeys {
		marker := " "
		if k.Required {
			marker = "*"
		}
		line := fmt.Sprintf("  %s %-24s %s", marker, k.Key, k.Description)
		if k.Default != "" {
			line += fmt.Sprintf(" (default %s)", k.Default)
		}
		cmd.Println(line)
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
