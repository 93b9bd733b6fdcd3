package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daybot/broker/alpaca"
	"github.com/rustyeddy/daybot/config"
	"github.com/rustyeddy/daybot/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the decision loop continuously",
	Long: `Run the decision loop against the Alpaca account until interrupted.

A cycle executes immediately, then once per configured interval. Stop with
SIGINT or SIGTERM; the current cycle finishes before shutdown.

Example:
  daybot run --config bot.yaml`,
	RunE: runRun,
}

var runConfigPath string

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, args []string) error {
	log := newLogger()

	if err := loadCredentials(); err != nil {
		return err
	}

	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	jnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jnl.Close()

	m := metrics.New()
	if cfg.Metrics.Listen != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			log.Info().Str("listen", cfg.Metrics.Listen).Msg("metrics endpoint up")
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Error().Err(err).Msg("metrics listener failed")
			}
		}()
	}

	eng, err := newEngine(cfg, alpaca.New(), jnl, m, log)
	if err != nil {
		return fmt.Errorf("wire engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Strs("universe", cfg.Universe).
		Str("interval", cfg.Schedule.Interval).
		Msg("daybot started")

	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
