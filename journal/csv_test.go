package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVJournal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ordersPath := filepath.Join(dir, "orders.csv")
	equityPath := filepath.Join(dir, "equity.csv")

	j, err := NewCSV(ordersPath, equityPath)
	require.NoError(t, err)

	now := time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordOrder(OrderRecord{
		OrderID: "ord-1", Symbol: "AAPL", Side: "buy", Notional: 32.5,
		Kind: "limit", LimitPrice: 189.30, ExtendedHours: true,
		Reason: "EntrySignal", Time: now,
	}))
	require.NoError(t, j.RecordEquity(EquityRecord{Time: now, Equity: 10000}))
	require.NoError(t, j.Close())

	of, err := os.Open(ordersPath)
	require.NoError(t, err)
	defer of.Close()

	rows, err := csv.NewReader(of).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2) // header + one order

	assert.Equal(t, "order_id", rows[0][0])
	assert.Equal(t, "AAPL", rows[1][2])
	assert.Equal(t, "buy", rows[1][3])
	assert.Equal(t, "true", rows[1][8])

	ef, err := os.Open(equityPath)
	require.NoError(t, err)
	defer ef.Close()

	erows, err := csv.NewReader(ef).ReadAll()
	require.NoError(t, err)
	assert.Len(t, erows, 2)
}
