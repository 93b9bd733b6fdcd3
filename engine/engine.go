// Package engine drives the periodic decision cycle: exits first, then the
// daily gates, then new entries.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/entry"
	"github.com/rustyeddy/daybot/exits"
	"github.com/rustyeddy/daybot/journal"
	"github.com/rustyeddy/daybot/metrics"
	"github.com/rustyeddy/daybot/risk"
)

// Options wires the scheduler's collaborators.
type Options struct {
	Broker    broker.Broker
	RiskStore *risk.Store
	Policy    risk.Policy
	Exits     *exits.Manager
	Entries   *entry.Selector
	Journal   journal.Journal
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
	Interval  time.Duration
}

type Scheduler struct {
	opts Options
	log  zerolog.Logger
}

func New(opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Minute
	}
	if opts.Journal == nil {
		opts.Journal = journal.Nop{}
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New()
	}
	return &Scheduler{opts: opts, log: opts.Logger}
}

// Run executes a cycle immediately, then one per interval until ctx is done.
// A failed cycle is logged and the loop keeps going.
func (e *Scheduler) Run(ctx context.Context) error {
	if err := e.Cycle(ctx); err != nil {
		e.log.Error().Err(err).Msg("cycle failed")
	}

	tick := time.NewTicker(e.opts.Interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			e.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case <-tick.C:
			if err := e.Cycle(ctx); err != nil {
				e.log.Error().Err(err).Msg("cycle failed")
			}
		}
	}
}

// Cycle runs one pass of the decision loop. Protective exits run before any
// gate so a breached position is closed even on a fully blocked day.
func (e *Scheduler) Cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("cycle panic: %v", r)
		}
		e.opts.Metrics.Cycles.Inc()
		if err != nil {
			e.opts.Metrics.CycleErrors.Inc()
		}
	}()

	acct, err := e.opts.Broker.GetAccount(ctx)
	if err != nil {
		return fmt.Errorf("get account: %w", err)
	}
	clock, err := e.opts.Broker.GetClock(ctx)
	if err != nil {
		return fmt.Errorf("get clock: %w", err)
	}

	exited := e.opts.Exits.Run(ctx, clock.Now)
	if exited > 0 {
		e.opts.Metrics.ExitsTriggered.Add(float64(exited))
		e.opts.Metrics.OrdersSubmitted.WithLabelValues(string(broker.Sell)).Add(float64(exited))
	}

	st, err := e.opts.RiskStore.Load(clock.Now, acct.Equity)
	if err != nil {
		return fmt.Errorf("load risk state: %w", err)
	}

	if err := e.opts.Journal.RecordEquity(journal.EquityRecord{
		Time:        clock.Now,
		Equity:      acct.Equity,
		BuyingPower: acct.BuyingPower,
		Cash:        acct.Cash,
		DailyPnL:    acct.Equity - acct.LastEquity,
	}); err != nil {
		e.log.Warn().Err(err).Msg("journal equity failed")
	}

	positions, err := e.opts.Broker.ListPositions(ctx)
	if err != nil {
		return fmt.Errorf("list positions: %w", err)
	}

	d := risk.Evaluate(e.opts.Policy, risk.Inputs{
		Acct:          acct,
		State:         st,
		OpenPositions: len(positions),
		MarketOpen:    clock.IsOpen,
		Now:           clock.Now,
	})
	if !d.Allowed {
		for _, v := range d.Violations {
			e.opts.Metrics.EntriesBlocked.WithLabelValues(v.Code).Inc()
			e.log.Info().Str("code", v.Code).Str("msg", v.Msg).Msg("entries blocked")
		}
		return nil
	}

	entered := e.opts.Entries.Run(ctx, st, d, acct.Equity, clock.IsOpen, clock.Now)
	if entered > 0 {
		e.opts.Metrics.OrdersSubmitted.WithLabelValues(string(broker.Buy)).Add(float64(entered))
	}

	e.log.Info().
		Int("exits", exited).
		Int("entries", entered).
		Float64("equity", acct.Equity).
		Float64("daily_pnl", d.DailyPnL).
		Msg("cycle complete")
	return nil
}
