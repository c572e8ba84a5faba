package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/config"
	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/logging"
)

const version = "1.0.0"

// RootConfig is shared by every subcommand. ConfigPath and LogLevel come
// from persistent flags; Store and Log are set up before a command runs.
type RootConfig struct {
	ConfigPath string
	LogLevel   string

	Store *config.FileStore
	Log   *zap.Logger
}

// Config returns the effective configuration.
func (rc *RootConfig) Config() (*config.Config, error) {
	cfg, err := rc.Store.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", rc.ConfigPath, err)
	}
	return cfg, nil
}

// OpenJournal opens the configured journal, Nop when journaling is off.
func (rc *RootConfig) OpenJournal() (journal.Journal, error) {
	cfg, err := rc.Config()
	if err != nil {
		return nil, err
	}
	j, err := journal.Open(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return j, nil
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:   "poscalc",
		Short: "Position size calculator",
		Long: `poscalc sizes a trade from an entry price, a stop-loss price, the amount
you are willing to lose and the fee rate charged on the position.

  investment  = amount * entry / (|entry - stop| + fee * entry)
  take-profit = 2 * entry - stop

Defaults for the amount and fee rate are kept in the config file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", config.DefaultPath(), "path to config file")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "warn", "log level: debug|info|warn|error")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		rc.Store = config.NewFileStore(rc.ConfigPath)

		level, dev := rc.LogLevel, false
		cfg, cfgErr := rc.Store.Load()
		if cfgErr == nil {
			dev = cfg.Log.Development
			if !cmd.Flags().Changed("log-level") && cmd.Name() == "serve" {
				level = cfg.Log.Level
			}
		}

		logger, err := logging.New(level, dev)
		if err != nil {
			return err
		}
		rc.Log = logger
		if cfgErr != nil {
			rc.Log.Debug("config not loaded", zap.String("path", rc.ConfigPath), zap.Error(cfgErr))
		}
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if rc.Log != nil {
			_ = rc.Log.Sync()
		}
	}

	cmd.AddCommand(
		newCalcCmd(rc),
		newSessionCmd(rc),
		newPrefsCmd(rc),
		newHistoryCmd(rc),
		newServeCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "poscalc version %s\n", version)
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func closeQuietly(w io.Closer) {
	_ = w.Close()
}
