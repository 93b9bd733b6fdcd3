package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordOrder(o OrderRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO orders
		(order_id, client_id, symbol, side, qty, notional, kind, limit_price, extended_hours, reason, time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.OrderID, o.ClientID, o.Symbol, o.Side, o.Qty, o.Notional,
		o.Kind, o.LimitPrice, o.ExtendedHours, o.Reason, o.Time,
	)
	return err
}

func (j *SQLiteJournal) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(time, equity, buying_power, cash, daily_pnl)
		VALUES (?, ?, ?, ?, ?)`,
		e.Time, e.Equity, e.BuyingPower, e.Cash, e.DailyPnL,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
