package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/custodia-labs/evidence-sync/internal/logger"
)

// Setting keys.
const (
	keyVerbose     = "verbose"
	keyLogFormat   = "log_format"
	keyStore       = "store"
	keyConcurrency = "concurrency"
)

// EnvPrefix prefixes every setting read from the environment.
const EnvPrefix = "EVIDENCE_SYNC"

// version is set at build time with -ldflags.
var version = "dev"

var (
	settings     = viper.New()
	settingsFile string
)

var rootCmd = &cobra.Command{
	Use:   "evidence-sync",
	Short: "Collect compliance evidence from connected systems",
	Long: `evidence-sync pulls configuration, identity and activity data from
cloud platforms, identity providers, source-control hosts and issue trackers,
and turns it into compliance evidence tagged with control codes.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initSettings,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&settingsFile, "settings", "", "settings file (default ~/.evidence-sync/config.toml)")
	flags.BoolP(keyVerbose, "v", false, "enable debug logging")
	flags.String("log-format", string(logger.FormatText), "log format: text or json")
	flags.String(keyStore, "", "SQLite database path (default ~/.evidence-sync/data/evidence.db)")
}

// newSettings builds the settings of one invocation from cmd's flags,
// the environment and the settings file.
func newSettings(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	bindings := map[string]*pflag.Flag{
		keyVerbose:     cmd.Flags().Lookup(keyVerbose),
		keyLogFormat:   cmd.Flags().Lookup("log-format"),
		keyStore:       cmd.Flags().Lookup(keyStore),
		keyConcurrency: cmd.Flags().Lookup(keyConcurrency),
	}
	for key, flag := range bindings {
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := readSettingsFile(v); err != nil {
		return nil, err
	}
	return v, nil
}

// initSettings reads the settings file and configures logging.
func initSettings(cmd *cobra.Command, _ []string) error {
	v, err := newSettings(cmd)
	if err != nil {
		return err
	}
	settings = v

	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetVerbose(settings.GetBool(keyVerbose))
	if err := logger.SetFormat(logger.Format(settings.GetString(keyLogFormat))); err != nil {
		return err
	}
	return nil
}

func readSettingsFile(v *viper.Viper) error {
	if settingsFile != "" {
		v.SetConfigFile(settingsFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading settings file: %w", err)
		}
		return nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(home, ".evidence-sync"))
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading settings file: %w", err)
	}
	return nil
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
