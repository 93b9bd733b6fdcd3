package exits

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/broker/paper"
	"github.com/rustyeddy/daybot/journal"
	"github.com/rustyeddy/daybot/risk"
)

var testNow = time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

// recJournal captures order records in memory.
type recJournal struct {
	orders []journal.OrderRecord
}

func (j *recJournal) RecordOrder(r journal.OrderRecord) error { j.orders = append(j.orders, r); return nil }
func (j *recJournal) RecordEquity(journal.EquityRecord) error { return nil }
func (j *recJournal) Close() error                            { return nil }

func exitPolicy() risk.Policy {
	return risk.Policy{StopLossPct: -0.4, TakeProfitPct: 4.0}
}

func TestStopLossTriggersMarketSell(t *testing.T) {
	t.Parallel()

	b := paper.New()
	b.Positions = []broker.Position{
		{Symbol: "AAPL", Qty: 5, AvgEntryPrice: 100.00, CurrentPrice: 99.50}, // -0.5%
	}

	m := New(b, exitPolicy(), journal.Nop{}, zerolog.Nop())
	closed := m.Run(context.Background(), testNow)

	assert.Equal(t, 1, closed)
	require.Len(t, b.Submitted, 1)

	req := b.Submitted[0]
	assert.Equal(t, broker.Sell, req.Side)
	assert.Equal(t, broker.Market, req.Kind)
	assert.Equal(t, broker.Day, req.TimeInForce)
	assert.InDelta(t, 5.0, req.Qty, 1e-9)
	assert.Equal(t, []string{"AAPL"}, b.Canceled)
}

func TestTakeProfitTriggersMarketSell(t *testing.T) {
	t.Parallel()

	b := paper.New()
	b.Positions = []broker.Position{
		{Symbol: "NVDA", Qty: 2, AvgEntryPrice: 100, CurrentPrice: 105}, // +5%
	}

	m := New(b, exitPolicy(), journal.Nop{}, zerolog.Nop())
	assert.Equal(t, 1, m.Run(context.Background(), testNow))
}

func TestHealthyPositionsLeftAlone(t *testing.T) {
	t.Parallel()

	b := paper.New()
	b.Positions = []broker.Position{
		{Symbol: "AAPL", Qty: 5, AvgEntryPrice: 100, CurrentPrice: 100.2}, // +0.2%
		{Symbol: "MSFT", Qty: 1, AvgEntryPrice: 400, CurrentPrice: 399},   // -0.25%
	}

	m := New(b, exitPolicy(), journal.Nop{}, zerolog.Nop())
	assert.Zero(t, m.Run(context.Background(), testNow))
	assert.Empty(t, b.Submitted)
}

func TestOneFailureDoesNotBlockOthers(t *testing.T) {
	t.Parallel()

	b := paper.New()
	b.Positions = []broker.Position{
		{Symbol: "AAPL", Qty: 5, AvgEntryPrice: 100, CurrentPrice: 90},
		{Symbol: "MSFT", Qty: 3, AvgEntryPrice: 400, CurrentPrice: 360},
		{Symbol: "NVDA", Qty: 1, AvgEntryPrice: 100, CurrentPrice: 80},
	}
	b.SubmitErr = map[string]error{"MSFT": errors.New("rejected")}

	m := New(b, exitPolicy(), journal.Nop{}, zerolog.Nop())
	closed := m.Run(context.Background(), testNow)

	assert.Equal(t, 2, closed)
	require.Len(t, b.Submitted, 2)
	assert.Equal(t, "AAPL", b.Submitted[0].Symbol)
	assert.Equal(t, "NVDA", b.Submitted[1].Symbol)
}

func TestExitJournaledWithCycleTime(t *testing.T) {
	t.Parallel()

	b := paper.New()
	b.Positions = []broker.Position{
		{Symbol: "AAPL", Qty: 5, AvgEntryPrice: 100, CurrentPrice: 99},
	}

	jnl := &recJournal{}
	m := New(b, exitPolicy(), jnl, zerolog.Nop())
	require.Equal(t, 1, m.Run(context.Background(), testNow))

	require.Len(t, jnl.orders, 1)
	assert.Equal(t, "StopLoss", jnl.orders[0].Reason)
	assert.Equal(t, testNow, jnl.orders[0].Time)
}

func TestZeroQuantityPositionsSkipped(t *testing.T) {
	t.Parallel()

	b := paper.New()
	b.Positions = []broker.Position{
		{Symbol: "AAPL", Qty: 0, AvgEntryPrice: 100, CurrentPrice: 50},
	}

	m := New(b, exitPolicy(), journal.Nop{}, zerolog.Nop())
	assert.Zero(t, m.Run(context.Background(), testNow))
}
