// Package strategies evaluates entry signals over bar series.
package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/daybot/indicators"
	"github.com/rustyeddy/daybot/market"
)

// Mode selects which signal policy is active. Exactly one runs per config.
type Mode string

const (
	// Crossover enters when the fast EMA crosses above the slow EMA on the
	// most recent bar, the close confirms the trend, and the window shows a
	// minimum amount of range.
	Crossover Mode = "crossover"

	// Threshold enters when the trend is already established, the oscillator
	// sits inside a band, and volume runs above its baseline.
	Threshold Mode = "threshold"
)

// SignalConfig holds the windows and thresholds for both policies.
type SignalConfig struct {
	Mode Mode

	FastSpan           int
	SlowSpan           int
	OscillatorLookback int
	VolumeWindow       int

	// MinBars is the minimum series length; shorter series produce no signal
	// rather than an error.
	MinBars int

	// Crossover mode: minimum high-low range over the window as a fraction
	// of price. Rejects flat chop.
	MinRangeFraction float64

	// Threshold mode: oscillator band and volume multiplier.
	OscillatorLow  float64
	OscillatorHigh float64
	VolumeSurge    float64
}

// SignalConfigDefaults returns a crossover configuration with the standard
// windows.
func SignalConfigDefaults() *SignalConfig {
	return &SignalConfig{
		Mode:               Crossover,
		FastSpan:           9,
		SlowSpan:           21,
		OscillatorLookback: 14,
		VolumeWindow:       20,
		MinBars:            50,
		MinRangeFraction:   0.002,
		OscillatorLow:      52,
		OscillatorHigh:     68,
		VolumeSurge:        1.5,
	}
}

// ModeFromString parses a mode name.
func ModeFromString(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Crossover:
		return Crossover, nil
	case Threshold:
		return Threshold, nil
	default:
		return "", fmt.Errorf("unknown signal mode %q (supported: crossover, threshold)", s)
	}
}

// Evaluate runs the configured policy over one symbol's bars and returns the
// entry recommendation plus the computed indicator set for diagnostics.
// Fewer than MinBars bars means no signal, not an error.
func Evaluate(cfg *SignalConfig, bars []market.Bar) (bool, indicators.Set, error) {
	if len(bars) < cfg.MinBars {
		return false, indicators.Set{}, nil
	}

	set, err := indicators.Compute(bars, indicators.Params{
		FastSpan:           cfg.FastSpan,
		SlowSpan:           cfg.SlowSpan,
		OscillatorLookback: cfg.OscillatorLookback,
		VolumeWindow:       cfg.VolumeWindow,
	})
	if err != nil {
		return false, indicators.Set{}, err
	}

	switch cfg.Mode {
	case Crossover:
		return crossover(cfg, set), set, nil
	case Threshold:
		return threshold(cfg, set), set, nil
	default:
		return false, set, fmt.Errorf("unknown signal mode %q", cfg.Mode)
	}
}

func crossover(cfg *SignalConfig, set indicators.Set) bool {
	crossed := set.PrevFast <= set.PrevSlow && set.Fast > set.Slow
	confirmed := set.LastClose > set.Slow
	enoughRange := set.RangeFraction >= cfg.MinRangeFraction
	return crossed && confirmed && enoughRange
}

func threshold(cfg *SignalConfig, set indicators.Set) bool {
	trending := set.Fast > set.Slow
	inBand := set.Oscillator >= cfg.OscillatorLow && set.Oscillator <= cfg.OscillatorHigh
	surging := set.LastVolume > set.VolumeBaseline*cfg.VolumeSurge
	return trending && inBand && surging
}
