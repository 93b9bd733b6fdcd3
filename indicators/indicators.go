// Package indicators provides the derived series the entry signals are
// computed from.
package indicators

import (
	"fmt"

	"github.com/rustyeddy/daybot/market"
)

// lossEpsilon stands in for a zero average loss so the oscillator ratio is
// always defined.
const lossEpsilon = 1e-10

// Set holds the values derived from one symbol's bar series for one cycle.
// It is never persisted; the signal policies consume it and it is logged for
// diagnostics.
type Set struct {
	Fast           float64 // fast EMA over the full series
	Slow           float64 // slow EMA over the full series
	PrevFast       float64 // fast EMA excluding the most recent bar
	PrevSlow       float64 // slow EMA excluding the most recent bar
	Oscillator     float64 // 0-100
	VolumeBaseline float64
	RangeFraction  float64
	LastClose      float64
	LastVolume     float64
}

// Params controls the window lengths used by Compute.
type Params struct {
	FastSpan           int
	SlowSpan           int
	OscillatorLookback int
	VolumeWindow       int
}

// EMA computes the exponential moving average of the closes with smoothing
// 2/(span+1). The recursion is seeded with the first close; no bias
// correction is applied.
func EMA(bars []market.Bar, span int) (float64, error) {
	if span <= 0 {
		return 0, fmt.Errorf("span must be positive, got %d", span)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no bars")
	}

	alpha := 2.0 / float64(span+1)
	ema := bars[0].Close
	for _, b := range bars[1:] {
		ema += alpha * (b.Close - ema)
	}
	return ema, nil
}

// Oscillator maps the ratio of average gains to average losses over the
// lookback window onto a 0-100 scale. A series with no losses never divides
// by zero; the average loss is floored at a small epsilon instead.
func Oscillator(bars []market.Bar, lookback int) (float64, error) {
	if lookback <= 0 {
		return 0, fmt.Errorf("lookback must be positive, got %d", lookback)
	}
	if len(bars) < lookback+1 {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", lookback+1, len(bars))
	}

	var gains, losses float64
	for i := len(bars) - lookback; i < len(bars); i++ {
		d := bars[i].Close - bars[i-1].Close
		if d > 0 {
			gains += d
		} else {
			losses -= d
		}
	}

	avgGain := gains / float64(lookback)
	avgLoss := losses / float64(lookback)
	if avgLoss == 0 {
		avgLoss = lossEpsilon
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), nil
}

// VolumeBaseline is the mean volume of the last window bars.
func VolumeBaseline(bars []market.Bar, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(bars) < window {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", window, len(bars))
	}

	sum := 0.0
	for i := len(bars) - window; i < len(bars); i++ {
		sum += bars[i].Volume
	}
	return sum / float64(window), nil
}

// RangeFraction is the high-low span of the last window bars as a fraction of
// the most recent close. Flat, illiquid series score near zero.
func RangeFraction(bars []market.Bar, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(bars) < window {
		return 0, fmt.Errorf("not enough bars: need %d, got %d", window, len(bars))
	}

	hi := bars[len(bars)-window].High
	lo := bars[len(bars)-window].Low
	for i := len(bars) - window + 1; i < len(bars); i++ {
		if bars[i].High > hi {
			hi = bars[i].High
		}
		if bars[i].Low < lo {
			lo = bars[i].Low
		}
	}

	last := market.LastClose(bars)
	if last <= 0 {
		return 0, nil
	}
	return (hi - lo) / last, nil
}

// Compute assembles the full Set for one bar series. The series must be long
// enough for every configured window; callers enforce their own minimum bar
// count before calling.
func Compute(bars []market.Bar, p Params) (Set, error) {
	if len(bars) < 2 {
		return Set{}, fmt.Errorf("not enough bars: need 2, got %d", len(bars))
	}
	prev := bars[:len(bars)-1]

	fast, err := EMA(bars, p.FastSpan)
	if err != nil {
		return Set{}, err
	}
	slow, err := EMA(bars, p.SlowSpan)
	if err != nil {
		return Set{}, err
	}
	prevFast, err := EMA(prev, p.FastSpan)
	if err != nil {
		return Set{}, err
	}
	prevSlow, err := EMA(prev, p.SlowSpan)
	if err != nil {
		return Set{}, err
	}
	osc, err := Oscillator(bars, p.OscillatorLookback)
	if err != nil {
		return Set{}, err
	}
	volBase, err := VolumeBaseline(bars, p.VolumeWindow)
	if err != nil {
		return Set{}, err
	}
	rng, err := RangeFraction(bars, p.VolumeWindow)
	if err != nil {
		return Set{}, err
	}

	last := bars[len(bars)-1]
	return Set{
		Fast:           fast,
		Slow:           slow,
		PrevFast:       prevFast,
		PrevSlow:       prevSlow,
		Oscillator:     osc,
		VolumeBaseline: volBase,
		RangeFraction:  rng,
		LastClose:      last.Close,
		LastVolume:     last.Volume,
	}, nil
}
