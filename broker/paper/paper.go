// Package paper is an in-memory broker for offline cycles and tests. Market
// data is scripted, buys fill immediately into positions, and every submitted
// order is recorded for inspection.
package paper

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/market"
)

type Broker struct {
	Account   broker.AccountSnapshot
	Clock     broker.Clock
	Bars      map[string][]market.Bar
	Prices    map[string]float64
	Positions []broker.Position

	// Submitted and Canceled record every call in order.
	Submitted []broker.OrderRequest
	Canceled  []string

	// SubmitErr and BarsErr inject per-symbol failures.
	SubmitErr map[string]error
	BarsErr   map[string]error

	nextID int
}

var _ broker.Broker = (*Broker)(nil)

func New() *Broker {
	return &Broker{
		Bars:   make(map[string][]market.Bar),
		Prices: make(map[string]float64),
	}
}

func (b *Broker) GetAccount(ctx context.Context) (broker.AccountSnapshot, error) {
	return b.Account, nil
}

func (b *Broker) GetClock(ctx context.Context) (broker.Clock, error) {
	return b.Clock, nil
}

func (b *Broker) GetBars(ctx context.Context, symbol string, interval time.Duration, limit int) ([]market.Bar, error) {
	if err := b.BarsErr[symbol]; err != nil {
		return nil, err
	}
	bars := b.Bars[symbol]
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (b *Broker) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	px, ok := b.Prices[symbol]
	if !ok {
		if bars := b.Bars[symbol]; len(bars) > 0 {
			return market.LastClose(bars), nil
		}
		return 0, fmt.Errorf("paper: no price for %s", symbol)
	}
	return px, nil
}

func (b *Broker) ListPositions(ctx context.Context) ([]broker.Position, error) {
	out := make([]broker.Position, len(b.Positions))
	copy(out, b.Positions)
	return out, nil
}

func (b *Broker) GetPosition(ctx context.Context, symbol string) (broker.Position, error) {
	for _, p := range b.Positions {
		if p.Symbol == symbol {
			return p, nil
		}
	}
	return broker.Position{}, broker.ErrPositionNotFound
}

func (b *Broker) SubmitOrder(ctx context.Context, req broker.OrderRequest) (string, error) {
	if err := b.SubmitErr[req.Symbol]; err != nil {
		return "", err
	}
	b.Submitted = append(b.Submitted, req)
	b.nextID++
	id := fmt.Sprintf("paper-%d", b.nextID)

	switch req.Side {
	case broker.Buy:
		b.fillBuy(ctx, req)
	case broker.Sell:
		b.removePosition(req.Symbol)
	}
	return id, nil
}

func (b *Broker) CancelOpenOrders(ctx context.Context, symbol string) error {
	b.Canceled = append(b.Canceled, symbol)
	return nil
}

func (b *Broker) fillBuy(ctx context.Context, req broker.OrderRequest) {
	px := req.LimitPrice
	if px == 0 {
		px, _ = b.GetLatestPrice(ctx, req.Symbol)
	}
	if px <= 0 {
		return
	}
	qty := req.Qty
	if qty == 0 && req.Notional > 0 {
		qty = req.Notional / px
	}
	b.Positions = append(b.Positions, broker.Position{
		Symbol:        req.Symbol,
		Qty:           qty,
		AvgEntryPrice: px,
		CurrentPrice:  px,
	})
}

func (b *Broker) removePosition(symbol string) {
	for i, p := range b.Positions {
		if p.Symbol == symbol {
			b.Positions = append(b.Positions[:i], b.Positions[i+1:]...)
			return
		}
	}
}
