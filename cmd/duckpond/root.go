// Root command for the duckpond CLI.
package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/duckpond/internal/paths"
	"github.com/mesh-intelligence/duckpond/pkg/duckpond"
	"github.com/mesh-intelligence/duckpond/pkg/types"
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
	flagMainURL   string
	flagStatePath string
	flagJSON      bool
	flagVerbose   bool
)

// Values loaded from config.yaml. Set by PersistentPreRunE so all
// subcommands can use them.
var (
	configDataDir   string
	configMainURL   string
	configStatePath string
)

var rootCmd = &cobra.Command{
	Use:     "duckpond",
	Short:   "duckpond is a MySQL-surface session manager over embedded DuckDB",
	Version: duckpond.Version,
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
		configMainURL = cfg.GetString(cfgKeyMainURL)
		configStatePath = cfg.GetString(cfgKeyStatePath)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "configuration directory")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "database directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&flagMainURL, "db", "", "primary database path (default: in-memory)")
	rootCmd.PersistentFlags().StringVar(&flagStatePath, "state", "", "state snapshot path (default: persistence disabled)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(databasesCmd)
}

// resolveConfigDir returns the configuration directory following the
// precedence chain: --config-dir flag > DUCKPOND_CONFIG_DIR env > platform
// default.
func resolveConfigDir() (string, error) {
	return paths.ResolveConfigDir(flagConfigDir)
}

// openManager builds the manager Config from flags, config.yaml, and
// environment, then constructs the manager.
func openManager() (*duckpond.Manager, error) {
	dataDir, err := paths.ResolveDataDir(flagDataDir, configDataDir)
	if err != nil {
		return nil, err
	}
	statePath, err := paths.ResolveStatePath(flagStatePath, configStatePath)
	if err != nil {
		return nil, err
	}

	mainURL := flagMainURL
	if mainURL == "" {
		mainURL = configMainURL
	}

	logger := zap.NewNop()
	if flagVerbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	return duckpond.New(types.Config{
		MainURL:   mainURL,
		DataDir:   dataDir,
		StatePath: statePath,
		Logger:    logger,
	})
}
