// Package broker defines the brokerage collaborator the decision loop runs
// against. Implementations own order execution and fill handling; the core
// only submits and forgets.
package broker

import (
	"context"
	"errors"
	"time"

	"github.com/rustyeddy/daybot/market"
)

// ErrPositionNotFound is returned by GetPosition when the symbol is not held.
// Callers branch on it instead of treating absence as a failure.
var ErrPositionNotFound = errors.New("position not found")

type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

type OrderKind string

const (
	Market OrderKind = "market"
	Limit  OrderKind = "limit"
)

type TimeInForce string

const (
	Day TimeInForce = "day"
)

// AccountSnapshot is the account state read once per cycle.
type AccountSnapshot struct {
	Equity         float64
	BuyingPower    float64
	Cash           float64
	LastEquity     float64 // equity at the prior session close
	TradingBlocked bool
}

// Clock reports the session state and the broker's notion of now.
type Clock struct {
	Now       time.Time
	IsOpen    bool
	NextOpen  time.Time
	NextClose time.Time
}

// Position is an open holding. The broker owns it; the core only reads it.
type Position struct {
	Symbol        string
	Qty           float64
	AvgEntryPrice float64
	CurrentPrice  float64
}

// OrderRequest describes one order to submit. Notional and Qty are mutually
// exclusive; LimitPrice is required for limit orders.
type OrderRequest struct {
	ClientID      string
	Symbol        string
	Side          Side
	Notional      float64
	Qty           float64
	Kind          OrderKind
	TimeInForce   TimeInForce
	LimitPrice    float64
	ExtendedHours bool
}

type Broker interface {
	GetAccount(ctx context.Context) (AccountSnapshot, error)
	GetClock(ctx context.Context) (Clock, error)
	GetBars(ctx context.Context, symbol string, interval time.Duration, limit int) ([]market.Bar, error)
	GetLatestPrice(ctx context.Context, symbol string) (float64, error)
	ListPositions(ctx context.Context) ([]Position, error)

	// GetPosition returns ErrPositionNotFound when the symbol is not held.
	GetPosition(ctx context.Context, symbol string) (Position, error)

	// SubmitOrder returns the broker's order ID. Fills are not confirmed.
	SubmitOrder(ctx context.Context, req OrderRequest) (string, error)

	CancelOpenOrders(ctx context.Context, symbol string) error
}
