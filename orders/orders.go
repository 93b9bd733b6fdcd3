// Package orders turns sizing decisions into concrete order requests. Entries
// adapt to the session: market orders while the market is open, cushioned
// limit orders flagged for extended hours when it is not. Exits are always
// market orders; capital protection takes priority over price.
package orders

import (
	"context"
	"fmt"
	"math"

	"github.com/oklog/ulid/v2"

	"github.com/rustyeddy/daybot/broker"
)

// Translator builds entry orders against the current session state.
type Translator struct {
	brk broker.Broker

	// cushion is the fractional markup applied to the last price on
	// off-session limit buys to improve fill probability.
	cushion float64
}

func NewTranslator(brk broker.Broker, cushionPct float64) *Translator {
	return &Translator{brk: brk, cushion: cushionPct}
}

// Buy builds the entry order for notional dollars. The second return is
// false when no order should be placed: off-session with a limit price too
// high for even one whole share.
func (t *Translator) Buy(ctx context.Context, symbol string, notional float64, marketOpen bool) (broker.OrderRequest, bool, error) {
	if marketOpen {
		return broker.OrderRequest{
			ClientID:    NewID(),
			Symbol:      symbol,
			Side:        broker.Buy,
			Notional:    notional,
			Kind:        broker.Market,
			TimeInForce: broker.Day,
		}, true, nil
	}

	px, err := t.brk.GetLatestPrice(ctx, symbol)
	if err != nil {
		return broker.OrderRequest{}, false, fmt.Errorf("latest price %s: %w", symbol, err)
	}
	if px <= 0 {
		return broker.OrderRequest{}, false, fmt.Errorf("latest price %s: non-positive %v", symbol, px)
	}

	// Whole cents; extended-hours orders must be whole-share limit orders.
	limit := math.Ceil(px*(1+t.cushion)*100) / 100
	qty := math.Floor(notional / limit)
	if qty < 1 {
		return broker.OrderRequest{}, false, nil
	}

	return broker.OrderRequest{
		ClientID:      NewID(),
		Symbol:        symbol,
		Side:          broker.Buy,
		Qty:           qty,
		Kind:          broker.Limit,
		LimitPrice:    limit,
		TimeInForce:   broker.Day,
		ExtendedHours: true,
	}, true, nil
}

// SellMarket is the protective exit: a market sell for the full held
// quantity, regardless of session state.
func SellMarket(symbol string, qty float64) broker.OrderRequest {
	return broker.OrderRequest{
		ClientID:    NewID(),
		Symbol:      symbol,
		Side:        broker.Sell,
		Qty:         qty,
		Kind:        broker.Market,
		TimeInForce: broker.Day,
	}
}

// NewID returns a ULID client order ID.
func NewID() string {
	return ulid.Make().String()
}
