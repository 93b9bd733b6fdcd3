package risk

import "time"

// State is the persisted daily risk budget, keyed by trading date. Exactly
// one State is active at a time; prior dates are kept in the store for audit
// but never read for gating.
type State struct {
	TradingDate      string               `json:"trading_date"`
	StartOfDayEquity float64              `json:"start_of_day_equity"`
	CumulativeSpend  float64              `json:"cumulative_spend"`
	LastTradeAt      time.Time            `json:"last_trade_at"`
	SymbolTrades     map[string]int       `json:"symbol_trades"`
	SymbolLastTrade  map[string]time.Time `json:"symbol_last_trade"`
}

// NewState returns a zeroed state for the given date, seeded with the
// current equity as the start-of-day reference.
func NewState(date string, equity float64) *State {
	return &State{
		TradingDate:      date,
		StartOfDayEquity: equity,
		SymbolTrades:     make(map[string]int),
		SymbolLastTrade:  make(map[string]time.Time),
	}
}

// TradeCount returns the number of entries recorded for symbol today.
func (s *State) TradeCount(symbol string) int {
	return s.SymbolTrades[symbol]
}

// LastSymbolTrade returns when symbol last traded today; zero time if never.
func (s *State) LastSymbolTrade(symbol string) time.Time {
	return s.SymbolLastTrade[symbol]
}
