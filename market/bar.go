// Package market holds the raw market data types shared by every component.
package market

import "time"

// Bar is one OHLCV sampling interval. Series are ordered oldest to newest.
type Bar struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// LastClose returns the close of the most recent bar, or 0 for an empty series.
func LastClose(bars []Bar) float64 {
	if len(bars) == 0 {
		return 0
	}
	return bars[len(bars)-1].Close
}
