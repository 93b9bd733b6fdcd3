package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/rustyeddy/daybot/broker"
)

// Violation is one tripped gate. Gate violations are expected, frequent
// outcomes, not errors.
type Violation struct {
	Code string
	Msg  string
}

// Decision is the per-cycle entry verdict. Any violation blocks new entries;
// protective exits are never subject to it.
type Decision struct {
	Allowed    bool
	Violations []Violation

	DailyPnL          float64
	UsableBuyingPower float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Inputs collects everything the gate checks read for one cycle.
type Inputs struct {
	Acct          broker.AccountSnapshot
	State         *State
	OpenPositions int
	MarketOpen    bool
	Now           time.Time
}

// Evaluate runs the daily gate checks in order. All gates are evaluated so
// the decision carries every violation, not just the first.
func Evaluate(p Policy, in Inputs) Decision {
	d := Decision{Allowed: true}

	d.DailyPnL = in.Acct.Equity - in.Acct.LastEquity
	d.UsableBuyingPower = math.Min(in.Acct.BuyingPower, in.Acct.Equity*p.EquityUsagePct)

	if in.Acct.TradingBlocked {
		d.add("TRADING_BLOCKED", "account is blocked from trading")
	}

	if p.DailyProfitGoal > 0 && d.DailyPnL >= p.DailyProfitGoal {
		d.add("PROFIT_GOAL_MET",
			fmt.Sprintf("daily pnl %.2f reached goal %.2f", d.DailyPnL, p.DailyProfitGoal))
	}
	if p.DailyMaxLossDollars > 0 && d.DailyPnL <= -p.DailyMaxLossDollars {
		d.add("DAILY_LOSS_DOLLARS",
			fmt.Sprintf("daily pnl %.2f breached -%.2f", d.DailyPnL, p.DailyMaxLossDollars))
	}
	if p.DailyMaxLossPct > 0 && d.DailyPnL <= -(in.Acct.Equity*p.DailyMaxLossPct) {
		d.add("DAILY_LOSS_PCT",
			fmt.Sprintf("daily pnl %.2f breached %.2f%% of equity", d.DailyPnL, 100*p.DailyMaxLossPct))
	}
	if in.State.CumulativeSpend >= p.MaxDailySpend {
		d.add("DAILY_BUDGET_EXHAUSTED",
			fmt.Sprintf("spend %.2f >= budget %.2f", in.State.CumulativeSpend, p.MaxDailySpend))
	}
	if !in.MarketOpen && !p.ExtendedHours {
		d.add("MARKET_CLOSED", "market closed and extended hours disabled")
	}
	if p.Cooldown > 0 && !in.State.LastTradeAt.IsZero() && in.Now.Sub(in.State.LastTradeAt) < p.Cooldown {
		d.add("COOLDOWN_ACTIVE",
			fmt.Sprintf("last trade %s ago, cooldown %s", in.Now.Sub(in.State.LastTradeAt), p.Cooldown))
	}
	if in.OpenPositions >= p.MaxOpenPositions {
		d.add("MAX_POSITIONS",
			fmt.Sprintf("open positions %d >= max %d", in.OpenPositions, p.MaxOpenPositions))
	}

	return d
}

// SymbolEligible applies the per-symbol entry checks. The returned reason is
// empty when the symbol may enter.
func SymbolEligible(p Policy, s *State, symbol string, held bool, now time.Time) (bool, string) {
	if held {
		return false, "already held"
	}
	if p.MaxTradesPerSymbol > 0 && s.TradeCount(symbol) >= p.MaxTradesPerSymbol {
		return false, fmt.Sprintf("daily cap %d reached", p.MaxTradesPerSymbol)
	}
	if p.SymbolCooldown > 0 {
		if last := s.LastSymbolTrade(symbol); !last.IsZero() && now.Sub(last) < p.SymbolCooldown {
			return false, fmt.Sprintf("cooling down, last trade %s ago", now.Sub(last))
		}
	}
	return true, ""
}
