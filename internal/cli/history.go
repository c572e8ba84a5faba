package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/poscalc/journal"
)

func newHistoryCmd(rc *RootConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Query recorded calculations",
		Long: `Query calculations saved in the SQLite journal.

Subcommands:
  list   - most recent calculations
  show   - a single calculation by ID
  today  - calculations made today
  day    - calculations made on a specific day

Examples:
  poscalc history list --limit 5
  poscalc history day 2025-03-01`,
	}

	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent calculations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLite(rc, func(j *journal.SQLite) error {
				recs, err := j.Recent(limit)
				if err != nil {
					return fmt.Errorf("query calculations: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRecordsOrg(recs))
				return nil
			})
		},
	}
	listCmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of calculations")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a single calculation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSQLite(rc, func(j *journal.SQLite) error {
				rec, err := j.Get(args[0])
				if err != nil {
					return fmt.Errorf("get calculation: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRecordOrg(rec))
				return nil
			})
		},
	}

	todayCmd := &cobra.Command{
		Use:   "today",
		Short: "List calculations made today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDay(cmd, rc, time.Now().In(time.Local).Format("2006-01-02"))
		},
	}

	dayCmd := &cobra.Command{
		Use:   "day <YYYY-MM-DD>",
		Short: "List calculations made on a specific day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listDay(cmd, rc, args[0])
		},
	}

	cmd.AddCommand(listCmd, showCmd, todayCmd, dayCmd)
	return cmd
}

func listDay(cmd *cobra.Command, rc *RootConfig, day string) error {
	start, end, err := dayBounds(time.Local, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}
	return withSQLite(rc, func(j *journal.SQLite) error {
		recs, err := j.ListBetween(start, end)
		if err != nil {
			return fmt.Errorf("query calculations: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatRecordsOrg(recs))
		return nil
	})
}

func withSQLite(rc *RootConfig, fn func(*journal.SQLite) error) error {
	cfg, err := rc.Config()
	if err != nil {
		return err
	}
	if cfg.Journal.Type != "sqlite" {
		return fmt.Errorf("history needs journal.type sqlite (have %q)", cfg.Journal.Type)
	}
	j, err := journal.NewSQLite(cfg.Journal.DBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer closeQuietly(j)
	return fn(j)
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
