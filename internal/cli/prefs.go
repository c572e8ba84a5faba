package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/config"
)

func newPrefsCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change the default stop-loss amount and fee rate",
		Long: `Manage the stored defaults and the config file.

Subcommands:
  show     - print the effective defaults
  set      - change one or both defaults
  init     - write a default config file
  validate - check a config file

Examples:
  poscalc prefs set --amount 25 --fee 0.05
  poscalc prefs validate --file ./poscalc.yaml`,
	}

	cmd.AddCommand(
		newPrefsShowCmd(rc),
		newPrefsSetCmd(rc),
		newPrefsInitCmd(rc),
		newPrefsValidateCmd(rc),
	)
	return cmd
}

func newPrefsShowCmd(rc *RootConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.Config()
			if err != nil {
				return err
			}
			amount, fee := cfg.Defaults.Text()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config:           %s\n", rc.ConfigPath)
			fmt.Fprintf(out, "Stop-loss amount: %s\n", amount)
			fmt.Fprintf(out, "Fee rate:         %s%%\n", fee)
			fmt.Fprintf(out, "Journal:          %s\n", cfg.Journal.Type)
			return nil
		},
	}
}

func newPrefsSetCmd(rc *RootConfig) *cobra.Command {
	var amount, fee string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the stored defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("amount") && !cmd.Flags().Changed("fee") {
				return fmt.Errorf("nothing to set: pass --amount and/or --fee")
			}

			p, err := rc.Store.Defaults()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("amount") {
				if p.StopLossAmount, err = strconv.ParseFloat(amount, 64); err != nil {
					return fmt.Errorf("--amount %q is not a number", amount)
				}
			}
			if cmd.Flags().Changed("fee") {
				if p.FeeRate, err = strconv.ParseFloat(fee, 64); err != nil {
					return fmt.Errorf("--fee %q is not a number", fee)
				}
			}

			if err := rc.Store.SetDefaults(p); err != nil {
				return fmt.Errorf("save defaults: %w", err)
			}

			a, f := p.Text()
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Defaults saved to %s (amount %s, fee %s%%)\n", rc.ConfigPath, a, f)
			return nil
		},
	}

	cmd.Flags().StringVarP(&amount, "amount", "a", "", "default stop-loss amount")
	cmd.Flags().StringVarP(&fee, "fee", "f", "", "default fee rate in percent")
	return cmd
}

func newPrefsInitCmd(rc *RootConfig) *cobra.Command {
	var (
		output string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = rc.ConfigPath
			}
			if _, err := os.Stat(output); err == nil && !force {
				return fmt.Errorf("%s exists, use --force to overwrite", output)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := config.Default().SaveToFile(output); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created default configuration: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output config file path (default --config)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newPrefsValidateCmd(rc *RootConfig) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = rc.ConfigPath
			}
			cfg, err := config.LoadFromFile(path)
			if err != nil {
				return fmt.Errorf("validation failed: %w", err)
			}

			amount, fee := cfg.Defaults.Text()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Configuration valid: %s\n", path)
			fmt.Fprintf(out, "  Defaults: amount %s, fee %s%%\n", amount, fee)
			fmt.Fprintf(out, "  Journal: %s\n", cfg.Journal.Type)
			fmt.Fprintf(out, "  Server: %s\n", cfg.Server.Addr)
			return nil
		},
	}

	cmd.Flags().StringVarP(&path, "file", "f", "", "path to config file (default --config)")
	return cmd
}
