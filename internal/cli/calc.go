package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/session"
)

func newCalcCmd(rc *RootConfig) *cobra.Command {
	var (
		entry  string
		stop   string
		amount string
		fee    string
		asJSON bool
		record bool
		note   string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Size a position once",
		Long: `Compute the investment amount, take-profit price and fee cost.

The stop-loss amount and fee rate fall back to the stored defaults.

Example:
  poscalc calc --entry 100 --stop 95
  poscalc calc -e 50000 -s 49000 -a 20 -f 0.05 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := session.New(rc.Store)
			if err != nil {
				rc.Log.Warn("using built-in defaults", zap.Error(err))
			}
			s.SetEntryPrice(entry)
			s.SetStopLossPrice(stop)
			if cmd.Flags().Changed("amount") {
				s.SetStopLossAmount(amount)
			}
			if cmd.Flags().Changed("fee") {
				s.SetFeeRate(fee)
			}

			res, err := s.Calculate()
			if err != nil {
				return fmt.Errorf("calculate: %w", err)
			}

			var recID string
			if record {
				j, err := rc.OpenJournal()
				if err != nil {
					return err
				}
				defer closeQuietly(j)
				if _, ok := j.(journal.Nop); ok {
					return fmt.Errorf("--record needs journal.type set in %s", rc.ConfigPath)
				}

				rec := journal.NewRecord(res, time.Now())
				rec.Note = note
				if err := j.RecordCalculation(rec); err != nil {
					return fmt.Errorf("record: %w", err)
				}
				recID = rec.ID
				rc.Log.Debug("recorded calculation", zap.String("id", rec.ID))
			}

			out := cmd.OutOrStdout()
			if asJSON {
				return printResultJSON(out, res, recID)
			}
			printResult(out, res)
			if recID != "" {
				fmt.Fprintf(out, "Recorded           %s\n", recID)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&entry, "entry", "e", "", "entry price (required)")
	cmd.Flags().StringVarP(&stop, "stop", "s", "", "stop-loss price (required)")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "max loss at stop (default from config)")
	cmd.Flags().StringVarP(&fee, "fee", "f", "", "fee rate in percent (default from config)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().BoolVar(&record, "record", false, "save the result to the journal")
	cmd.Flags().StringVar(&note, "note", "", "note stored with --record")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("stop")

	return cmd
}
