package risk

import "time"

// Policy holds every capital-protection limit. All percentages are fractions
// (0.02 = 2%) except the exit thresholds, which are expressed in percent to
// match how position P/L is quoted.
type Policy struct {
	// Capital deployment
	EquityUsagePct float64 // fraction of equity deployable, caps buying power
	CashBuffer     float64 // dollars held back from usable buying power

	// Daily circuit breakers; zero disables the individual gate
	DailyProfitGoal     float64
	DailyMaxLossDollars float64
	DailyMaxLossPct     float64

	// Budget and sizing
	MaxDailySpend    float64
	OrderNotional    float64 // fixed dollar entry size
	OrderEquityPct   float64 // when > 0, entry size = equity * pct instead
	MinOrderNotional float64

	// Cooldowns and caps
	Cooldown           time.Duration // global, since the last entry
	SymbolCooldown     time.Duration // per symbol
	MaxOpenPositions   int
	MaxTradesPerSymbol int
	MaxEntriesPerCycle int

	// Session
	ExtendedHours bool

	// Exit thresholds in percent; StopLossPct is negative
	StopLossPct   float64
	TakeProfitPct float64
}
