package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	orders *csv.Writer
	equity *csv.Writer
	of, ef *os.File
}

func NewCSV(ordersPath, equityPath string) (*CSVJournal, error) {
	of, err := os.Create(ordersPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		of.Close()
		return nil, err
	}

	ow := csv.NewWriter(of)
	ew := csv.NewWriter(ef)

	if err := ow.Write([]string{"order_id", "client_id", "symbol", "side", "qty", "notional", "kind", "limit_price", "extended_hours", "reason", "time"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"time", "equity", "buying_power", "cash", "daily_pnl"}); err != nil {
		return nil, err
	}

	ow.Flush()
	if err := ow.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{ow, ew, of, ef}, nil
}

func (j *CSVJournal) RecordOrder(o OrderRecord) error {
	j.orders.Write([]string{
		o.OrderID,
		o.ClientID,
		o.Symbol,
		o.Side,
		f(o.Qty),
		f(o.Notional),
		o.Kind,
		f(o.LimitPrice),
		strconv.FormatBool(o.ExtendedHours),
		o.Reason,
		o.Time.Format(time.RFC3339),
	})
	j.orders.Flush()
	return j.orders.Error()
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.Time.Format(time.RFC3339),
		f(e.Equity),
		f(e.BuyingPower),
		f(e.Cash),
		f(e.DailyPnL),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.orders.Flush()
	if err := j.orders.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.of.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
