// Package config loads and validates the bot configuration. Files are YAML
// first with a JSON fallback; durations are written as strings ("30m", "1h").
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/daybot/risk"
	"github.com/rustyeddy/daybot/strategies"
)

type Config struct {
	Schedule ScheduleConfig `json:"schedule" yaml:"schedule"`
	Universe []string       `json:"universe" yaml:"universe"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Signal   SignalConfig   `json:"signal" yaml:"signal"`
	Orders   OrdersConfig   `json:"orders" yaml:"orders"`
	State    StateConfig    `json:"state" yaml:"state"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
	Metrics  MetricsConfig  `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// ScheduleConfig controls the cycle cadence and trading-date rollover.
type ScheduleConfig struct {
	Interval string `json:"interval" yaml:"interval"`
	Timezone string `json:"timezone" yaml:"timezone"` // trading-date boundary
}

// RiskConfig mirrors risk.Policy with string durations.
type RiskConfig struct {
	EquityUsagePct      float64 `json:"equity_usage_pct" yaml:"equity_usage_pct"`
	CashBuffer          float64 `json:"cash_buffer" yaml:"cash_buffer"`
	DailyProfitGoal     float64 `json:"daily_profit_goal" yaml:"daily_profit_goal"`
	DailyMaxLossDollars float64 `json:"daily_max_loss_dollars" yaml:"daily_max_loss_dollars"`
	DailyMaxLossPct     float64 `json:"daily_max_loss_pct" yaml:"daily_max_loss_pct"`
	MaxDailySpend       float64 `json:"max_daily_spend" yaml:"max_daily_spend"`
	OrderNotional       float64 `json:"order_notional" yaml:"order_notional"`
	OrderEquityPct      float64 `json:"order_equity_pct,omitempty" yaml:"order_equity_pct,omitempty"`
	MinOrderNotional    float64 `json:"min_order_notional" yaml:"min_order_notional"`
	Cooldown            string  `json:"cooldown,omitempty" yaml:"cooldown,omitempty"`
	SymbolCooldown      string  `json:"symbol_cooldown,omitempty" yaml:"symbol_cooldown,omitempty"`
	MaxOpenPositions    int     `json:"max_open_positions" yaml:"max_open_positions"`
	MaxTradesPerSymbol  int     `json:"max_trades_per_symbol" yaml:"max_trades_per_symbol"`
	MaxEntriesPerCycle  int     `json:"max_entries_per_cycle" yaml:"max_entries_per_cycle"`
	ExtendedHours       bool    `json:"extended_hours" yaml:"extended_hours"`
	StopLossPct         float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"` // negative
	TakeProfitPct       float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
}

// SignalConfig selects and tunes the entry signal.
type SignalConfig struct {
	Mode               string  `json:"mode" yaml:"mode"` // "crossover" or "threshold"
	FastSpan           int     `json:"fast_span" yaml:"fast_span"`
	SlowSpan           int     `json:"slow_span" yaml:"slow_span"`
	OscillatorLookback int     `json:"oscillator_lookback" yaml:"oscillator_lookback"`
	VolumeWindow       int     `json:"volume_window" yaml:"volume_window"`
	MinBars            int     `json:"min_bars" yaml:"min_bars"`
	MinRangeFraction   float64 `json:"min_range_fraction" yaml:"min_range_fraction"`
	OscillatorLow      float64 `json:"oscillator_low" yaml:"oscillator_low"`
	OscillatorHigh     float64 `json:"oscillator_high" yaml:"oscillator_high"`
	VolumeSurge        float64 `json:"volume_surge" yaml:"volume_surge"`

	BarInterval string `json:"bar_interval" yaml:"bar_interval"`
	BarLimit    int    `json:"bar_limit" yaml:"bar_limit"`
}

// OrdersConfig tunes order translation.
type OrdersConfig struct {
	LimitCushionPct float64 `json:"limit_cushion_pct" yaml:"limit_cushion_pct"` // fraction over last price
}

// StateConfig locates the durable risk-state store.
type StateConfig struct {
	Dir string `json:"dir" yaml:"dir"`
}

// JournalConfig selects the journal backend.
type JournalConfig struct {
	Type       string `json:"type" yaml:"type"` // "csv", "sqlite", or "none"
	OrdersFile string `json:"orders_file,omitempty" yaml:"orders_file,omitempty"`
	EquityFile string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath     string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// MetricsConfig enables the prometheus endpoint when Listen is set.
type MetricsConfig struct {
	Listen string `json:"listen,omitempty" yaml:"listen,omitempty"` // e.g. ":9100"
}

// LoadFromFile loads a configuration, trying YAML first and falling back to
// JSON, then validates it.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SaveToFile writes the configuration, YAML for .yaml/.yml and JSON otherwise.
func (c *Config) SaveToFile(path string) error {
	var (
		data []byte
		err  error
	)
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks the configuration before anything is wired up.
func (c *Config) Validate() error {
	if _, err := time.ParseDuration(c.Schedule.Interval); err != nil {
		return fmt.Errorf("schedule.interval: %w", err)
	}
	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	if len(c.Universe) == 0 {
		return fmt.Errorf("universe must list at least one symbol")
	}

	if c.Risk.EquityUsagePct <= 0 || c.Risk.EquityUsagePct > 1 {
		return fmt.Errorf("risk.equity_usage_pct must be between 0 and 1")
	}
	if c.Risk.MaxDailySpend <= 0 {
		return fmt.Errorf("risk.max_daily_spend must be positive")
	}
	if c.Risk.OrderNotional <= 0 && c.Risk.OrderEquityPct <= 0 {
		return fmt.Errorf("risk.order_notional or risk.order_equity_pct must be positive")
	}
	if c.Risk.MinOrderNotional < 0 {
		return fmt.Errorf("risk.min_order_notional must not be negative")
	}
	if c.Risk.MaxOpenPositions <= 0 {
		return fmt.Errorf("risk.max_open_positions must be positive")
	}
	if c.Risk.StopLossPct >= 0 {
		return fmt.Errorf("risk.stop_loss_pct must be negative")
	}
	if c.Risk.TakeProfitPct <= 0 {
		return fmt.Errorf("risk.take_profit_pct must be positive")
	}
	for name, d := range map[string]string{
		"risk.cooldown":        c.Risk.Cooldown,
		"risk.symbol_cooldown": c.Risk.SymbolCooldown,
	} {
		if d == "" {
			continue
		}
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	if _, err := strategies.ModeFromString(c.Signal.Mode); err != nil {
		return fmt.Errorf("signal.mode: %w", err)
	}
	if c.Signal.FastSpan <= 0 || c.Signal.SlowSpan <= 0 {
		return fmt.Errorf("signal spans must be positive")
	}
	if c.Signal.FastSpan >= c.Signal.SlowSpan {
		return fmt.Errorf("signal.fast_span must be less than signal.slow_span")
	}
	if c.Signal.OscillatorLookback <= 0 {
		return fmt.Errorf("signal.oscillator_lookback must be positive")
	}
	if c.Signal.VolumeWindow <= 0 {
		return fmt.Errorf("signal.volume_window must be positive")
	}
	if c.Signal.MinBars < c.Signal.SlowSpan {
		return fmt.Errorf("signal.min_bars must cover the slow span")
	}
	if c.Signal.MinBars <= c.Signal.OscillatorLookback {
		return fmt.Errorf("signal.min_bars must exceed signal.oscillator_lookback")
	}
	if c.Signal.MinBars < c.Signal.VolumeWindow {
		return fmt.Errorf("signal.min_bars must cover the volume window")
	}
	if _, err := time.ParseDuration(c.Signal.BarInterval); err != nil {
		return fmt.Errorf("signal.bar_interval: %w", err)
	}
	if c.Signal.BarLimit < c.Signal.MinBars {
		return fmt.Errorf("signal.bar_limit must be at least signal.min_bars")
	}

	if c.Orders.LimitCushionPct < 0 {
		return fmt.Errorf("orders.limit_cushion_pct must not be negative")
	}
	if c.State.Dir == "" {
		return fmt.Errorf("state.dir is required")
	}

	switch c.Journal.Type {
	case "csv":
		if c.Journal.OrdersFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal orders_file and equity_file required for csv type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for sqlite type")
		}
	case "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite', or 'none'")
	}
	return nil
}

// Policy converts the risk section. Call Validate first; duration parse
// errors are still reported here.
func (c *Config) Policy() (risk.Policy, error) {
	cooldown, err := parseDuration(c.Risk.Cooldown)
	if err != nil {
		return risk.Policy{}, fmt.Errorf("risk.cooldown: %w", err)
	}
	symbolCooldown, err := parseDuration(c.Risk.SymbolCooldown)
	if err != nil {
		return risk.Policy{}, fmt.Errorf("risk.symbol_cooldown: %w", err)
	}

	return risk.Policy{
		EquityUsagePct:      c.Risk.EquityUsagePct,
		CashBuffer:          c.Risk.CashBuffer,
		DailyProfitGoal:     c.Risk.DailyProfitGoal,
		DailyMaxLossDollars: c.Risk.DailyMaxLossDollars,
		DailyMaxLossPct:     c.Risk.DailyMaxLossPct,
		MaxDailySpend:       c.Risk.MaxDailySpend,
		OrderNotional:       c.Risk.OrderNotional,
		OrderEquityPct:      c.Risk.OrderEquityPct,
		MinOrderNotional:    c.Risk.MinOrderNotional,
		Cooldown:            cooldown,
		SymbolCooldown:      symbolCooldown,
		MaxOpenPositions:    c.Risk.MaxOpenPositions,
		MaxTradesPerSymbol:  c.Risk.MaxTradesPerSymbol,
		MaxEntriesPerCycle:  c.Risk.MaxEntriesPerCycle,
		ExtendedHours:       c.Risk.ExtendedHours,
		StopLossPct:         c.Risk.StopLossPct,
		TakeProfitPct:       c.Risk.TakeProfitPct,
	}, nil
}

// SignalPolicy converts the signal section.
func (c *Config) SignalPolicy() (*strategies.SignalConfig, error) {
	mode, err := strategies.ModeFromString(c.Signal.Mode)
	if err != nil {
		return nil, err
	}
	return &strategies.SignalConfig{
		Mode:               mode,
		FastSpan:           c.Signal.FastSpan,
		SlowSpan:           c.Signal.SlowSpan,
		OscillatorLookback: c.Signal.OscillatorLookback,
		VolumeWindow:       c.Signal.VolumeWindow,
		MinBars:            c.Signal.MinBars,
		MinRangeFraction:   c.Signal.MinRangeFraction,
		OscillatorLow:      c.Signal.OscillatorLow,
		OscillatorHigh:     c.Signal.OscillatorHigh,
		VolumeSurge:        c.Signal.VolumeSurge,
	}, nil
}

// Interval returns the cycle cadence.
func (c *Config) Interval() (time.Duration, error) {
	return time.ParseDuration(c.Schedule.Interval)
}

// BarInterval returns the bar resolution fed to the signal.
func (c *Config) BarInterval() (time.Duration, error) {
	return time.ParseDuration(c.Signal.BarInterval)
}

// Location returns the trading-date timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Schedule.Timezone)
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	return time.ParseDuration(s)
}

// Default returns a conservative paper-friendly configuration.
func Default() *Config {
	defs := strategies.SignalConfigDefaults()
	return &Config{
		Schedule: ScheduleConfig{
			Interval: "5m",
			Timezone: "America/New_York",
		},
		Universe: []string{"AAPL", "MSFT", "NVDA"},
		Risk: RiskConfig{
			EquityUsagePct:      0.5,
			CashBuffer:          100,
			DailyProfitGoal:     200,
			DailyMaxLossDollars: 100,
			DailyMaxLossPct:     0.02,
			MaxDailySpend:       500,
			OrderNotional:       50,
			MinOrderNotional:    5,
			Cooldown:            "15m",
			SymbolCooldown:      "30m",
			MaxOpenPositions:    5,
			MaxTradesPerSymbol:  2,
			MaxEntriesPerCycle:  1,
			ExtendedHours:       false,
			StopLossPct:         -0.4,
			TakeProfitPct:       4.0,
		},
		Signal: SignalConfig{
			Mode:               string(defs.Mode),
			FastSpan:           defs.FastSpan,
			SlowSpan:           defs.SlowSpan,
			OscillatorLookback: defs.OscillatorLookback,
			VolumeWindow:       defs.VolumeWindow,
			MinBars:            defs.MinBars,
			MinRangeFraction:   defs.MinRangeFraction,
			OscillatorLow:      defs.OscillatorLow,
			OscillatorHigh:     defs.OscillatorHigh,
			VolumeSurge:        defs.VolumeSurge,
			BarInterval:        "5m",
			BarLimit:           100,
		},
		Orders: OrdersConfig{
			LimitCushionPct: 0.0025,
		},
		State: StateConfig{
			Dir: "./state",
		},
		Journal: JournalConfig{
			Type:       "csv",
			OrdersFile: "./orders.csv",
			EquityFile: "./equity.csv",
		},
	}
}
