package risk

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daybot/store"
)

func newTestStore(t *testing.T) (*Store, store.KV) {
	t.Helper()
	kv := store.NewMem()
	return NewStore(kv, time.UTC, zerolog.Nop()), kv
}

func TestStoreLoadSeedsFreshState(t *testing.T) {
	t.Parallel()

	st, kv := newTestStore(t)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	s, err := st.Load(now, 10000)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-03", s.TradingDate)
	assert.InDelta(t, 10000.0, s.StartOfDayEquity, 1e-9)
	assert.Zero(t, s.CumulativeSpend)
	assert.Empty(t, s.SymbolTrades)

	// Seeding persists before returning.
	_, ok, err := kv.Read("riskstate/2024-06-03")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreLoadIsIdempotent(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	first, err := st.Load(now, 10000)
	require.NoError(t, err)

	second, err := st.Load(now, 12345) // equity changed intraday; seed is kept
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.InDelta(t, 10000.0, second.StartOfDayEquity, 1e-9)
}

func TestStoreSpendIsDurableAndMonotone(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	s, err := st.Load(now, 10000)
	require.NoError(t, err)

	require.NoError(t, st.RecordSpend(s, 32.50, now))
	require.NoError(t, st.RecordSpend(s, 10.00, now.Add(time.Hour)))
	assert.InDelta(t, 42.50, s.CumulativeSpend, 1e-9)
	assert.Equal(t, now.Add(time.Hour), s.LastTradeAt)

	// A reload (as after a crash) observes the post-update state.
	reloaded, err := st.Load(now.Add(2*time.Hour), 9999)
	require.NoError(t, err)
	assert.InDelta(t, 42.50, reloaded.CumulativeSpend, 1e-9)
	assert.InDelta(t, 10000.0, reloaded.StartOfDayEquity, 1e-9)
}

func TestStoreSymbolTrades(t *testing.T) {
	t.Parallel()

	st, _ := newTestStore(t)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	s, err := st.Load(now, 10000)
	require.NoError(t, err)

	require.NoError(t, st.RecordSymbolTrade(s, "AAPL", now))
	require.NoError(t, st.RecordSymbolTrade(s, "AAPL", now.Add(time.Hour)))
	require.NoError(t, st.RecordSymbolTrade(s, "MSFT", now))

	assert.Equal(t, 2, s.TradeCount("AAPL"))
	assert.Equal(t, 1, s.TradeCount("MSFT"))
	assert.Zero(t, s.TradeCount("NVDA"))
	assert.Equal(t, now.Add(time.Hour), s.LastSymbolTrade("AAPL"))

	reloaded, err := st.Load(now, 10000)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.TradeCount("AAPL"))
}

func TestStoreDateRolloverResetsCounters(t *testing.T) {
	t.Parallel()

	st, kv := newTestStore(t)
	day1 := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 6, 4, 15, 0, 0, 0, time.UTC)

	s, err := st.Load(day1, 10000)
	require.NoError(t, err)
	require.NoError(t, st.RecordSpend(s, 50, day1))

	fresh, err := st.Load(day2, 10200)
	require.NoError(t, err)

	assert.Equal(t, "2024-06-04", fresh.TradingDate)
	assert.Zero(t, fresh.CumulativeSpend)
	assert.InDelta(t, 10200.0, fresh.StartOfDayEquity, 1e-9)

	// The prior day's record is retained for audit.
	_, ok, err := kv.Read("riskstate/2024-06-03")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStoreCorruptStateStartsFresh(t *testing.T) {
	t.Parallel()

	st, kv := newTestStore(t)
	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)

	require.NoError(t, kv.Write("riskstate/2024-06-03", []byte("{not json")))

	s, err := st.Load(now, 10000)
	require.NoError(t, err)
	assert.Zero(t, s.CumulativeSpend)
	assert.Equal(t, "2024-06-03", s.TradingDate)
}

func TestStoreTradingDateUsesLocation(t *testing.T) {
	t.Parallel()

	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	st := NewStore(store.NewMem(), ny, zerolog.Nop())

	// 2024-06-04 01:00 UTC is still June 3rd in New York.
	now := time.Date(2024, 6, 4, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-03", st.TradingDate(now))
}
