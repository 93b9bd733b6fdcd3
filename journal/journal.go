// Package journal records every submitted order and a per-cycle equity
// snapshot for audit. The journal is observability; a journal failure never
// blocks an order.
package journal

import "time"

// OrderRecord is one submitted order, entry or protective exit.
type OrderRecord struct {
	OrderID       string
	ClientID      string
	Symbol        string
	Side          string
	Qty           float64
	Notional      float64
	Kind          string
	LimitPrice    float64
	ExtendedHours bool
	Reason        string // "EntrySignal", "StopLoss", "TakeProfit"
	Time          time.Time
}

// EquityRecord is the account snapshot taken each cycle.
type EquityRecord struct {
	Time        time.Time
	Equity      float64
	BuyingPower float64
	Cash        float64
	DailyPnL    float64
}

type Journal interface {
	RecordOrder(OrderRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

// Nop discards everything.
type Nop struct{}

func (Nop) RecordOrder(OrderRecord) error   { return nil }
func (Nop) RecordEquity(EquityRecord) error { return nil }
func (Nop) Close() error                    { return nil }
