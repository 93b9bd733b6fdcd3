// Package alpaca implements broker.Broker against the Alpaca trading and
// market data APIs. Credentials come from the standard APCA_* environment
// variables, which the SDK reads on its own.
package alpaca

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/daybot/broker"
	"github.com/rustyeddy/daybot/market"
)

type Client struct {
	trading *alpaca.Client
	data    *marketdata.Client
}

var _ broker.Broker = (*Client)(nil)

func New() *Client {
	return &Client{
		trading: alpaca.NewClient(alpaca.ClientOpts{}),
		data:    marketdata.NewClient(marketdata.ClientOpts{}),
	}
}

func (c *Client) GetAccount(ctx context.Context) (broker.AccountSnapshot, error) {
	acct, err := c.trading.GetAccount()
	if err != nil {
		return broker.AccountSnapshot{}, fmt.Errorf("alpaca: get account: %w", err)
	}
	return broker.AccountSnapshot{
		Equity:         acct.Equity.InexactFloat64(),
		BuyingPower:    acct.BuyingPower.InexactFloat64(),
		Cash:           acct.Cash.InexactFloat64(),
		LastEquity:     acct.LastEquity.InexactFloat64(),
		TradingBlocked: acct.TradingBlocked,
	}, nil
}

func (c *Client) GetClock(ctx context.Context) (broker.Clock, error) {
	clk, err := c.trading.GetClock()
	if err != nil {
		return broker.Clock{}, fmt.Errorf("alpaca: get clock: %w", err)
	}
	return broker.Clock{
		Now:       clk.Timestamp,
		IsOpen:    clk.IsOpen,
		NextOpen:  clk.NextOpen,
		NextClose: clk.NextClose,
	}, nil
}

func (c *Client) GetBars(ctx context.Context, symbol string, interval time.Duration, limit int) ([]market.Bar, error) {
	// Reach back far enough to cover weekends and the overnight gap.
	start := time.Now().Add(-interval * time.Duration(limit) * 6)
	if interval >= 24*time.Hour {
		start = time.Now().AddDate(0, 0, -limit*2)
	}

	raw, err := c.data.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  timeFrame(interval),
		Start:      start,
		TotalLimit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca: get bars %s: %w", symbol, err)
	}
	if len(raw) > limit {
		raw = raw[len(raw)-limit:]
	}

	bars := make([]market.Bar, 0, len(raw))
	for _, b := range raw {
		bars = append(bars, market.Bar{
			Time:   b.Timestamp,
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: float64(b.Volume),
		})
	}
	return bars, nil
}

func (c *Client) GetLatestPrice(ctx context.Context, symbol string) (float64, error) {
	trade, err := c.data.GetLatestTrade(symbol, marketdata.GetLatestTradeRequest{})
	if err != nil {
		return 0, fmt.Errorf("alpaca: latest trade %s: %w", symbol, err)
	}
	if trade == nil {
		return 0, fmt.Errorf("alpaca: no trade data for %s", symbol)
	}
	return trade.Price, nil
}

func (c *Client) ListPositions(ctx context.Context) ([]broker.Position, error) {
	raw, err := c.trading.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("alpaca: list positions: %w", err)
	}
	positions := make([]broker.Position, 0, len(raw))
	for i := range raw {
		positions = append(positions, mapPosition(&raw[i]))
	}
	return positions, nil
}

func (c *Client) GetPosition(ctx context.Context, symbol string) (broker.Position, error) {
	p, err := c.trading.GetPosition(symbol)
	if err != nil {
		var apiErr *alpaca.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == 404 {
			return broker.Position{}, broker.ErrPositionNotFound
		}
		return broker.Position{}, fmt.Errorf("alpaca: get position %s: %w", symbol, err)
	}
	return mapPosition(p), nil
}

func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (string, error) {
	por := alpaca.PlaceOrderRequest{
		Symbol:        req.Symbol,
		Side:          alpaca.Side(req.Side),
		Type:          alpaca.OrderType(req.Kind),
		TimeInForce:   alpaca.TimeInForce(req.TimeInForce),
		ExtendedHours: req.ExtendedHours,
		ClientOrderID: req.ClientID,
	}
	if req.Notional > 0 {
		notional := decimal.NewFromFloat(req.Notional)
		por.Notional = &notional
	} else {
		qty := decimal.NewFromFloat(req.Qty)
		por.Qty = &qty
	}
	if req.Kind == broker.Limit {
		limit := decimal.NewFromFloat(req.LimitPrice)
		por.LimitPrice = &limit
	}

	order, err := c.trading.PlaceOrder(por)
	if err != nil {
		return "", fmt.Errorf("alpaca: place order %s %s: %w", req.Side, req.Symbol, err)
	}
	return order.ID, nil
}

func (c *Client) CancelOpenOrders(ctx context.Context, symbol string) error {
	open, err := c.trading.GetOrders(alpaca.GetOrdersRequest{
		Status:  "open",
		Symbols: []string{symbol},
		Limit:   100,
	})
	if err != nil {
		return fmt.Errorf("alpaca: list open orders %s: %w", symbol, err)
	}
	for _, o := range open {
		if err := c.trading.CancelOrder(o.ID); err != nil {
			return fmt.Errorf("alpaca: cancel order %s: %w", o.ID, err)
		}
	}
	return nil
}

func mapPosition(p *alpaca.Position) broker.Position {
	current := 0.0
	if p.CurrentPrice != nil {
		current = p.CurrentPrice.InexactFloat64()
	}
	return broker.Position{
		Symbol:        p.Symbol,
		Qty:           p.Qty.InexactFloat64(),
		AvgEntryPrice: p.AvgEntryPrice.InexactFloat64(),
		CurrentPrice:  current,
	}
}

func timeFrame(interval time.Duration) marketdata.TimeFrame {
	switch {
	case interval >= 24*time.Hour:
		return marketdata.OneDay
	case interval >= time.Hour:
		return marketdata.NewTimeFrame(int(interval/time.Hour), marketdata.Hour)
	default:
		n := int(interval / time.Minute)
		if n < 1 {
			n = 1
		}
		return marketdata.NewTimeFrame(n, marketdata.Min)
	}
}
