// Root command for the keel CLI.
package main

import (
	"github.com/spf13/cobra"

	"github.com/keelworks/keel/internal/paths"
	"github.com/keelworks/keel/pkg/keel"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// Global flag values.
var (
	flagConfigDir string
	flagDataDir   string
	flagJSON      bool
)

// configDataDir and configEmbedderURL hold values loaded from config.yaml.
// Set by PersistentPreRunE so all subcommands can use them.
var (
	configDataDir     string
	configEmbedderURL string
)

var rootCmd = &cobra.Command{
	Use:     "keel",
	Short:   "Keel is a persistent identity and belief integrity store",
	Version: keel.Version,
	Long: `Keel stores an evolving identity: anchor statements, beliefs,
formative events, and permanent scars. Write-path invariants are enforced at
the data layer, so protected records can never be deleted and frozen fields
can never change, regardless of caller behavior.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configDir, err := resolveConfigDir()
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}

		configDataDir = cfg.GetString(cfgKeyDataDir)
		configEmbedderURL = cfg.GetString(cfgKeyEmbedderURL)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default: $(CWD)/.keel-db)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(beliefCmd)
	rootCmd.AddCommand(scarCmd)
	rootCmd.AddCommand(effectCmd)
}

// resolveDataDir returns the data directory path following the precedence:
// --data-dir flag > config.yaml data_dir > KEEL_DATA_DIR env > default.
func resolveDataDir() (string, error) {
	return paths.ResolveDataDir(flagDataDir, configDataDir)
}

// resolveConfigDir returns the configuration directory following the
// precedence: --config-dir flag > KEEL_CONFIG_DIR env > platform default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}
