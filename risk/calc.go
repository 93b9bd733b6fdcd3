package risk

import "math"

// AvailableNotional returns the dollars a new entry may deploy this cycle:
// the configured order size capped by the remaining daily budget and by
// usable buying power less the cash buffer, floored at zero. Callers skip
// the entry when the result is below Policy.MinOrderNotional.
func AvailableNotional(p Policy, d Decision, s *State, equity float64) float64 {
	size := p.OrderNotional
	if p.OrderEquityPct > 0 {
		size = equity * p.OrderEquityPct
	}

	n := math.Min(size, p.MaxDailySpend-s.CumulativeSpend)
	n = math.Min(n, d.UsableBuyingPower-p.CashBuffer)
	if n < 0 {
		return 0
	}
	return n
}
