package risk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/daybot/store"
)

const keyPrefix = "riskstate/"

// Store loads and persists the daily State through a durable KV. Every
// mutation is flushed before the call returns: a crash between a trade
// decision and its persistence must not let the same budget be spent twice.
type Store struct {
	kv  store.KV
	loc *time.Location
	log zerolog.Logger
}

func NewStore(kv store.KV, loc *time.Location, log zerolog.Logger) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{kv: kv, loc: loc, log: log}
}

// TradingDate formats now as a calendar date in the store's location.
func (st *Store) TradingDate(now time.Time) string {
	return now.In(st.loc).Format("2006-01-02")
}

// Load returns today's State. A missing, corrupt, or stale-dated record is
// replaced with a fresh state seeded from the current equity and persisted
// before returning; it is never a fatal condition.
func (st *Store) Load(now time.Time, equity float64) (*State, error) {
	date := st.TradingDate(now)

	b, ok, err := st.kv.Read(keyPrefix + date)
	if err != nil {
		st.log.Warn().Err(err).Str("date", date).Msg("risk state read failed, starting fresh")
		return st.seed(date, equity)
	}
	if !ok {
		return st.seed(date, equity)
	}

	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		st.log.Warn().Err(err).Str("date", date).Msg("risk state corrupt, starting fresh")
		return st.seed(date, equity)
	}
	if s.TradingDate != date {
		return st.seed(date, equity)
	}

	if s.SymbolTrades == nil {
		s.SymbolTrades = make(map[string]int)
	}
	if s.SymbolLastTrade == nil {
		s.SymbolLastTrade = make(map[string]time.Time)
	}
	return &s, nil
}

// RecordSpend adds amount to the cumulative spend and stamps the global
// last-trade time, then flushes.
func (st *Store) RecordSpend(s *State, amount float64, now time.Time) error {
	s.CumulativeSpend += amount
	s.LastTradeAt = now
	return st.persist(s)
}

// RecordSymbolTrade increments the symbol's daily trade count and stamps its
// last-trade time, then flushes.
func (st *Store) RecordSymbolTrade(s *State, symbol string, now time.Time) error {
	s.SymbolTrades[symbol]++
	s.SymbolLastTrade[symbol] = now
	return st.persist(s)
}

func (st *Store) seed(date string, equity float64) (*State, error) {
	s := NewState(date, equity)
	if err := st.persist(s); err != nil {
		return nil, err
	}
	st.log.Info().Str("date", date).Float64("equity", equity).Msg("new trading day, risk state seeded")
	return s, nil
}

func (st *Store) persist(s *State) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal risk state: %w", err)
	}
	if err := st.kv.Write(keyPrefix+s.TradingDate, b); err != nil {
		return fmt.Errorf("persist risk state: %w", err)
	}
	return nil
}
