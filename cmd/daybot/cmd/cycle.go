package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/broker/alpaca"
	"github.com/rustyeddy/daybot/broker/paper"
	"github.com/rustyeddy/daybot/config"
	"github.com/rustyeddy/daybot/market"
	"github.com/rustyeddy/daybot/metrics"
)

var cycleCmd = &cobra.Command{
	Use:   "cycle",
	Short: "Run a single decision cycle and exit",
	Long: `Execute exactly one pass of the decision loop: protective exits, gate
checks, and entry scan. Useful for cron-style scheduling or a dry run.

With --paper the cycle runs against an in-memory broker with synthetic bars
and no credentials are needed.

Examples:
  daybot cycle --config bot.yaml
  daybot cycle --config bot.yaml --paper`,
	RunE: runCycle,
}

var (
	cycleConfigPath string
	cyclePaper      bool
)

func init() {
	rootCmd.AddCommand(cycleCmd)

	cycleCmd.Flags().StringVarP(&cycleConfigPath, "config", "f", "", "path to config file (YAML or JSON) (required)")
	cycleCmd.Flags().BoolVar(&cyclePaper, "paper", false, "run against an in-memory broker with synthetic data")
	cycleCmd.MarkFlagRequired("config")
}

func runCycle(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := config.LoadFromFile(cycleConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var brk broker.Broker
	if cyclePaper {
		brk = paperBroker(cfg)
	} else {
		if err := loadCredentials(); err != nil {
			return err
		}
		brk = alpaca.New()
	}

	jnl, err := newJournal(cfg)
	if err != nil {
		return fmt.Errorf("create journal: %w", err)
	}
	defer jnl.Close()

	eng, err := newEngine(cfg, brk, jnl, metrics.New(), log)
	if err != nil {
		return fmt.Errorf("wire engine: %w", err)
	}

	return eng.Cycle(context.Background())
}

// paperBroker scripts a funded account with a fresh breakout on every symbol
// so the whole loop, gates included, gets exercised offline.
func paperBroker(cfg *config.Config) *paper.Broker {
	b := paper.New()
	b.Account = broker.AccountSnapshot{
		Equity:      10000,
		BuyingPower: 20000,
		Cash:        10000,
		LastEquity:  10000,
	}
	b.Clock = broker.Clock{Now: time.Now(), IsOpen: true}

	n := cfg.Signal.BarLimit
	for _, symbol := range cfg.Universe {
		bars := make([]market.Bar, n)
		for i := range bars {
			c := 100.0
			if i == n-1 {
				c = 105.0
			}
			bars[i] = market.Bar{
				Time:   time.Now().Add(time.Duration(i-n) * 5 * time.Minute),
				Open:   c, High: c + 0.5, Low: c - 0.5, Close: c,
				Volume: 1000,
			}
		}
		b.Bars[symbol] = bars
	}
	return b
}
