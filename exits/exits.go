// Package exits force-closes positions that breach the stop-loss or
// take-profit thresholds. It runs first every cycle and is never blocked by
// the daily entry gates or cooldowns.
package exits

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/journal"
	"github.com/rustyeddy/daybot/orders"
	"github.com/rustyeddy/daybot/risk"
)

type Manager struct {
	brk broker.Broker
	pol risk.Policy
	jnl journal.Journal
	log zerolog.Logger
}

func New(brk broker.Broker, pol risk.Policy, jnl journal.Journal, log zerolog.Logger) *Manager {
	return &Manager{brk: brk, pol: pol, jnl: jnl, log: log}
}

// Run scans every open position and submits a market sell for each breach.
// Positions are handled independently: one failure never prevents the rest
// from being attempted. now is the cycle timestamp, stamped onto journal
// records. Returns the number of exits submitted.
func (m *Manager) Run(ctx context.Context, now time.Time) int {
	positions, err := m.brk.ListPositions(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("exit scan: list positions failed")
		return 0
	}

	closed := 0
	for _, p := range positions {
		if p.Qty <= 0 || p.AvgEntryPrice <= 0 {
			continue
		}

		pnlPct := (p.CurrentPrice - p.AvgEntryPrice) / p.AvgEntryPrice * 100

		var reason string
		switch {
		case pnlPct <= m.pol.StopLossPct:
			reason = "StopLoss"
		case pnlPct >= m.pol.TakeProfitPct:
			reason = "TakeProfit"
		default:
			continue
		}

		if err := m.close(ctx, p, pnlPct, reason, now); err != nil {
			m.log.Error().Err(err).Str("symbol", p.Symbol).Msg("exit failed")
			continue
		}
		closed++
	}
	return closed
}

func (m *Manager) close(ctx context.Context, p broker.Position, pnlPct float64, reason string, now time.Time) error {
	// Clear any resting orders first so the full quantity is sellable.
	if err := m.brk.CancelOpenOrders(ctx, p.Symbol); err != nil {
		m.log.Warn().Err(err).Str("symbol", p.Symbol).Msg("cancel open orders failed, selling anyway")
	}

	req := orders.SellMarket(p.Symbol, p.Qty)
	id, err := m.brk.SubmitOrder(ctx, req)
	if err != nil {
		return err
	}

	m.log.Info().
		Str("symbol", p.Symbol).
		Float64("qty", p.Qty).
		Float64("pnl_pct", pnlPct).
		Str("reason", reason).
		Str("order_id", id).
		Msg("position closed")

	if err := m.jnl.RecordOrder(journal.OrderRecord{
		OrderID:  id,
		ClientID: req.ClientID,
		Symbol:   p.Symbol,
		Side:     string(req.Side),
		Qty:      p.Qty,
		Kind:     string(req.Kind),
		Reason:   reason,
		Time:     now,
	}); err != nil {
		m.log.Warn().Err(err).Msg("journal exit failed")
	}
	return nil
}
