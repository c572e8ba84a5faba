package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/journal"
	"github.com/rustyeddy/poscalc/risk"
	"github.com/rustyeddy/poscalc/session"
)

const sessionHelp = `Enter: <entry> <stop> [amount [fee]]
  :show      print the last result
  :defaults  reload amount and fee from the config file
  :clear     forget the last result
  :quit      exit`

func newSessionCmd(rc *RootConfig) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "session",
		Short: "Interactive calculator reading prices from stdin",
		Long: `Read one calculation per line. A line that does not produce a result
leaves the previous result in place.

` + sessionHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := rc.OpenJournal()
			if err != nil {
				return err
			}
			defer closeQuietly(j)

			var opts []session.Option
			if _, ok := j.(journal.Nop); !ok {
				opts = append(opts, session.WithRecorder(journal.NewRecorder(j)))
			}
			s, err := session.New(rc.Store, opts...)
			if err != nil {
				rc.Log.Warn("using built-in defaults", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			prompt := func() {
				if !quiet {
					fmt.Fprint(out, "> ")
				}
			}
			if !quiet {
				fmt.Fprintln(out, sessionHelp)
			}

			sc := bufio.NewScanner(cmd.InOrStdin())
			prompt()
			for sc.Scan() {
				line := strings.TrimSpace(sc.Text())
				switch line {
				case "":
				case ":q", ":quit", ":exit":
					return nil
				case ":show":
					if r, ok := s.Result(); ok {
						printResult(out, r)
					}
				case ":defaults":
					if err := s.Reseed(); err != nil {
						rc.Log.Warn("reload defaults", zap.Error(err))
					}
					in := s.Inputs()
					fmt.Fprintf(out, "amount=%s fee=%s%%\n", in.StopLossAmount, in.FeeRate)
				case ":clear":
					s.Clear()
				default:
					applyLine(s, line)
					if !s.Ready() {
						rc.Log.Debug("waiting for entry and stop", zap.String("line", line))
						break
					}
					r, err := s.Calculate()
					switch {
					case err == nil:
						printResult(out, r)
					case r != (risk.Result{}):
						// computed but not journaled
						printResult(out, r)
						rc.Log.Warn("journal", zap.Error(err))
					default:
						rc.Log.Debug("no result", zap.String("line", line), zap.Error(err))
					}
				}
				prompt()
			}
			return sc.Err()
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "no prompt or help text")
	return cmd
}

// applyLine maps whitespace separated fields onto the session inputs.
// Missing trailing fields keep their current values.
func applyLine(s *session.Session, line string) {
	fields := strings.Fields(line)
	setters := []func(string){
		s.SetEntryPrice,
		s.SetStopLossPrice,
		s.SetStopLossAmount,
		s.SetFeeRate,
	}
	if len(fields) < 2 {
		s.SetStopLossPrice("")
	}
	for i, f := range fields {
		if i >= len(setters) {
			break
		}
		setters[i](f)
	}
}
