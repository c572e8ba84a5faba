package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/poscalc/httpapi"
	"github.com/rustyeddy/poscalc/journal"
)

func newServeCmd(rc *RootConfig) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator over HTTP",
		Long: `Start an HTTP server.

Routes:
  POST /calculate   {"entry_price":"100","stop_loss_price":"95"}
  GET  /defaults
  PUT  /defaults    {"stop_loss_amount":10,"fee_rate":0.1}
  GET  /history?limit=20
  GET  /health`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rc.Config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			shutdown, err := cfg.Server.ParseShutdownTimeout()
			if err != nil {
				return fmt.Errorf("shutdown timeout: %w", err)
			}
			if shutdown <= 0 {
				shutdown = 10 * time.Second
			}

			opts := []httpapi.Option{httpapi.WithLogger(rc.Log)}
			j, err := journal.Open(cfg.Journal)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer closeQuietly(j)
			if _, ok := j.(journal.Nop); !ok {
				opts = append(opts, httpapi.WithRecorder(journal.NewRecorder(j)))
			}
			if h, ok := j.(httpapi.History); ok {
				opts = append(opts, httpapi.WithHistory(h))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			rc.Log.Info("starting",
				zap.String("addr", addr),
				zap.String("config", rc.ConfigPath),
				zap.String("journal", cfg.Journal.Type))

			srv := httpapi.New(rc.Store, opts...)
			return httpapi.ListenAndServe(ctx, addr, srv.Routes(), shutdown, rc.Log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

