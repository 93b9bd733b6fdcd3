package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/config"
	"github.com/rustyeddy/daybot/engine"
	"github.com/rustyeddy/daybot/entry"
	"github.com/rustyeddy/daybot/exits"
	"github.com/rustyeddy/daybot/journal"
	"github.com/rustyeddy/daybot/metrics"
	"github.com/rustyeddy/daybot/orders"
	"github.com/rustyeddy/daybot/risk"
	"github.com/rustyeddy/daybot/store"
)

// newLogger builds the console logger shared by every command.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).
		With().Timestamp().Logger()
}

// loadCredentials pulls a .env file if present and verifies the Alpaca keys
// are set. The SDK reads them from the environment itself.
func loadCredentials() error {
	_ = godotenv.Load()

	if os.Getenv("APCA_API_KEY_ID") == "" || os.Getenv("APCA_API_SECRET_KEY") == "" {
		return fmt.Errorf("APCA_API_KEY_ID and APCA_API_SECRET_KEY must be set")
	}
	return nil
}

func newJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "csv":
		return journal.NewCSV(cfg.Journal.OrdersFile, cfg.Journal.EquityFile)
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	default:
		return journal.Nop{}, nil
	}
}

// newEngine wires the full decision loop around the given broker.
func newEngine(cfg *config.Config, brk broker.Broker, jnl journal.Journal, m *metrics.Metrics, log zerolog.Logger) (*engine.Scheduler, error) {
	pol, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	sig, err := cfg.SignalPolicy()
	if err != nil {
		return nil, err
	}
	interval, err := cfg.Interval()
	if err != nil {
		return nil, err
	}
	barInterval, err := cfg.BarInterval()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	kv, err := store.NewFile(cfg.State.Dir)
	if err != nil {
		return nil, err
	}
	rs := risk.NewStore(kv, loc, log)

	sel := &entry.Selector{
		Broker:     brk,
		Translator: orders.NewTranslator(brk, cfg.Orders.LimitCushionPct),
		RiskStore:  rs,
		Policy:     pol,
		Signal:     sig,
		Journal:    jnl,
		Logger:     log,
		Universe:   cfg.Universe,
		Interval:   barInterval,
		BarLimit:   cfg.Signal.BarLimit,
	}

	return engine.New(engine.Options{
		Broker:    brk,
		RiskStore: rs,
		Policy:    pol,
		Exits:     exits.New(brk, pol, jnl, log),
		Entries:   sel,
		Journal:   jnl,
		Metrics:   m,
		Logger:    log,
		Interval:  interval,
	}), nil
}
