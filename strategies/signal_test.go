package strategies

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daybot/market"
)

func series(closes []float64, lastVolume float64) []market.Bar {
	base := time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{
			Time:   base.Add(time.Duration(i) * 5 * time.Minute),
			Open:   c,
			High:   c + 0.5,
			Low:    c - 0.5,
			Close:  c,
			Volume: 1000,
		}
	}
	if len(bars) > 0 {
		bars[len(bars)-1].Volume = lastVolume
	}
	return bars
}

// flatThenJump is 49 flat bars followed by one sharp up bar, so the fast EMA
// crosses the slow EMA exactly on the most recent bar.
func flatThenJump() []market.Bar {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 100
	}
	closes[49] = 105
	return series(closes, 1000)
}

// drifting alternates +1.5/-1.0 deltas, giving an established uptrend with
// the oscillator balanced at 60 over any even lookback.
func drifting(lastVolume float64) []market.Bar {
	closes := make([]float64, 50)
	closes[0] = 100
	for i := 1; i < len(closes); i++ {
		if i%2 == 1 {
			closes[i] = closes[i-1] + 1.5
		} else {
			closes[i] = closes[i-1] - 1.0
		}
	}
	return series(closes, lastVolume)
}

func TestModeFromString(t *testing.T) {
	t.Parallel()

	m, err := ModeFromString(" Crossover ")
	require.NoError(t, err)
	assert.Equal(t, Crossover, m)

	m, err = ModeFromString("threshold")
	require.NoError(t, err)
	assert.Equal(t, Threshold, m)

	_, err = ModeFromString("momentum")
	assert.Error(t, err)
}

func TestEvaluateCrossover(t *testing.T) {
	t.Parallel()

	t.Run("fires on fresh cross", func(t *testing.T) {
		cfg := SignalConfigDefaults()

		ok, set, err := Evaluate(cfg, flatThenJump())
		require.NoError(t, err)

		assert.True(t, ok)
		assert.Greater(t, set.Fast, set.Slow)
		assert.LessOrEqual(t, set.PrevFast, set.PrevSlow)
	})

	t.Run("no signal when already trending", func(t *testing.T) {
		cfg := SignalConfigDefaults()

		// Fast has been above slow for many bars; no fresh cross.
		ok, set, err := Evaluate(cfg, drifting(1000))
		require.NoError(t, err)

		assert.False(t, ok)
		assert.Greater(t, set.Fast, set.Slow)
	})

	t.Run("range filter rejects the cross", func(t *testing.T) {
		cfg := SignalConfigDefaults()
		cfg.MinRangeFraction = 0.25

		ok, _, err := Evaluate(cfg, flatThenJump())
		require.NoError(t, err)

		assert.False(t, ok)
	})

	t.Run("insufficient bars means no signal not error", func(t *testing.T) {
		cfg := SignalConfigDefaults()

		ok, set, err := Evaluate(cfg, flatThenJump()[:10])
		require.NoError(t, err)

		assert.False(t, ok)
		assert.Zero(t, set)
	})
}

func TestEvaluateThreshold(t *testing.T) {
	t.Parallel()

	t.Run("fires in band with volume surge", func(t *testing.T) {
		cfg := SignalConfigDefaults()
		cfg.Mode = Threshold

		ok, set, err := Evaluate(cfg, drifting(2500))
		require.NoError(t, err)

		assert.True(t, ok)
		assert.InDelta(t, 60.0, set.Oscillator, 1e-9)
	})

	t.Run("no surge no signal", func(t *testing.T) {
		cfg := SignalConfigDefaults()
		cfg.Mode = Threshold

		ok, _, err := Evaluate(cfg, drifting(1000))
		require.NoError(t, err)

		assert.False(t, ok)
	})

	t.Run("oscillator outside band", func(t *testing.T) {
		cfg := SignalConfigDefaults()
		cfg.Mode = Threshold
		cfg.OscillatorHigh = 55

		ok, _, err := Evaluate(cfg, drifting(2500))
		require.NoError(t, err)

		assert.False(t, ok)
	})

	t.Run("no trend no signal", func(t *testing.T) {
		cfg := SignalConfigDefaults()
		cfg.Mode = Threshold

		closes := make([]float64, 50)
		for i := range closes {
			closes[i] = 100 - float64(i)*0.3 // downtrend
		}

		ok, _, err := Evaluate(cfg, series(closes, 2500))
		require.NoError(t, err)

		assert.False(t, ok)
	})
}
