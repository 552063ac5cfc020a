package models

import "time"

// DateLayout is the calendar-date format used for series points
const DateLayout = "2006-01-02"

// Quote represents the current-moment snapshot for one symbol
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
	Volume        int64     `json:"volume"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	PreviousClose float64   `json:"previousClose"`
	MarketCap     string    `json:"marketCap,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Reprice sets a new price and recomputes change fields against the unchanged previous close
func (q *Quote) Reprice(price float64) {
	q.Price = price
	q.Change = price - q.PreviousClose
	q.ChangePercent = PercentOf(q.Change, q.PreviousClose)
}

// Volatility returns the intraday range as a fraction of price
func (q *Quote) Volatility() float64 {
	if q.Price == 0 {
		return 0
	}
	return (q.High - q.Low) / q.Price
}

// Summary returns the lightweight overview form of the quote
func (q *Quote) Summary() StockSummary {
	return StockSummary{
		Symbol:        q.Symbol,
		Price:         q.Price,
		Change:        q.Change,
		ChangePercent: q.ChangePercent,
		Volume:        q.Volume,
		High:          q.High,
		Low:           q.Low,
		MarketCap:     q.MarketCap,
	}
}

// PercentOf returns part/whole*100, or 0 when whole is zero
func PercentOf(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}

// SeriesPoint represents one day's bar plus derived moving averages
type SeriesPoint struct {
	Time      string   `json:"time"`
	Price     float64  `json:"price"`
	Volume    int64    `json:"volume"`
	High      float64  `json:"high"`
	Low       float64  `json:"low"`
	Open      float64  `json:"open"`
	Close     float64  `json:"close"`
	SMA20     *float64 `json:"sma20,omitempty"`
	SMA50     *float64 `json:"sma50,omitempty"`
	PrevPrice *float64 `json:"prevPrice,omitempty"`
}

// StockSummary is a quote without series or insights, used by the overview grid
type StockSummary struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Volume        int64   `json:"volume"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	MarketCap     string  `json:"marketCap,omitempty"`
}
