// Package entry scans the symbol universe and opens new positions on signal.
package entry

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/journal"
	"github.com/rustyeddy/daybot/orders"
	"github.com/rustyeddy/daybot/risk"
	"github.com/rustyeddy/daybot/strategies"
)

// Selector iterates the configured universe in priority order, filters by
// per-symbol risk state, and enters on signal up to the per-cycle cap.
type Selector struct {
	Broker     broker.Broker
	Translator *orders.Translator
	RiskStore  *risk.Store
	Policy     risk.Policy
	Signal     *strategies.SignalConfig
	Journal    journal.Journal
	Logger     zerolog.Logger

	Universe []string
	Interval time.Duration
	BarLimit int
}

// Run evaluates the universe once and submits at most MaxEntriesPerCycle
// entries. The deployable notional is recomputed before every entry so each
// order is capped against the budget the previous one just consumed; the scan
// stops once it falls below MinOrderNotional. A failure on one symbol skips
// that symbol only. Returns the number of entries submitted.
func (s *Selector) Run(ctx context.Context, st *risk.State, d risk.Decision, equity float64, marketOpen bool, now time.Time) int {
	maxEntries := s.Policy.MaxEntriesPerCycle
	if maxEntries <= 0 {
		maxEntries = 1
	}

	entered := 0
	for _, symbol := range s.Universe {
		if entered >= maxEntries {
			break
		}

		notional := risk.AvailableNotional(s.Policy, d, st, equity)
		if notional < s.Policy.MinOrderNotional {
			s.Logger.Info().
				Float64("notional", notional).
				Float64("min", s.Policy.MinOrderNotional).
				Msg("available notional below minimum, entry scan done")
			break
		}

		held, err := s.isHeld(ctx, symbol)
		if err != nil {
			s.Logger.Error().Err(err).Str("symbol", symbol).Msg("position lookup failed, skipping")
			continue
		}

		if ok, reason := risk.SymbolEligible(s.Policy, st, symbol, held, now); !ok {
			s.Logger.Debug().Str("symbol", symbol).Str("reason", reason).Msg("symbol not eligible")
			continue
		}

		bars, err := s.Broker.GetBars(ctx, symbol, s.Interval, s.BarLimit)
		if err != nil {
			s.Logger.Error().Err(err).Str("symbol", symbol).Msg("bar fetch failed, skipping")
			continue
		}

		signal, set, err := strategies.Evaluate(s.Signal, bars)
		if err != nil {
			s.Logger.Error().Err(err).Str("symbol", symbol).Msg("signal evaluation failed, skipping")
			continue
		}
		if !signal {
			s.Logger.Debug().
				Str("symbol", symbol).
				Float64("fast", set.Fast).
				Float64("slow", set.Slow).
				Float64("osc", set.Oscillator).
				Msg("no entry signal")
			continue
		}

		if s.enter(ctx, st, symbol, notional, marketOpen, now) {
			entered++
		}
	}
	return entered
}

func (s *Selector) isHeld(ctx context.Context, symbol string) (bool, error) {
	_, err := s.Broker.GetPosition(ctx, symbol)
	if errors.Is(err, broker.ErrPositionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Selector) enter(ctx context.Context, st *risk.State, symbol string, notional float64, marketOpen bool, now time.Time) bool {
	req, ok, err := s.Translator.Buy(ctx, symbol, notional, marketOpen)
	if err != nil {
		s.Logger.Error().Err(err).Str("symbol", symbol).Msg("order translation failed")
		return false
	}
	if !ok {
		s.Logger.Debug().Str("symbol", symbol).Msg("order too small off session, skipping")
		return false
	}

	id, err := s.Broker.SubmitOrder(ctx, req)
	if err != nil {
		s.Logger.Error().Err(err).Str("symbol", symbol).Msg("order submit failed")
		return false
	}

	spent := req.Notional
	if spent == 0 {
		spent = req.Qty * req.LimitPrice
	}

	// The order is out; the budget must reflect it before this cycle ends.
	if err := s.RiskStore.RecordSpend(st, spent, now); err != nil {
		s.Logger.Error().Err(err).Str("symbol", symbol).Msg("record spend failed")
	}
	if err := s.RiskStore.RecordSymbolTrade(st, symbol, now); err != nil {
		s.Logger.Error().Err(err).Str("symbol", symbol).Msg("record symbol trade failed")
	}

	s.Logger.Info().
		Str("symbol", symbol).
		Str("order_id", id).
		Float64("notional", spent).
		Str("kind", string(req.Kind)).
		Bool("extended_hours", req.ExtendedHours).
		Msg("entry submitted")

	if err := s.Journal.RecordOrder(journal.OrderRecord{
		OrderID:       id,
		ClientID:      req.ClientID,
		Symbol:        symbol,
		Side:          string(req.Side),
		Qty:           req.Qty,
		Notional:      req.Notional,
		Kind:          string(req.Kind),
		LimitPrice:    req.LimitPrice,
		ExtendedHours: req.ExtendedHours,
		Reason:        "EntrySignal",
		Time:          now,
	}); err != nil {
		s.Logger.Warn().Err(err).Msg("journal entry failed")
	}
	return true
}
