package services

import (
	"context"

	"stock-dashboard/models"
)

// Provider modes
const (
	ModeDemo = "demo"
	ModeLive = "live"
)

// MarketData is a quote paired with its daily series
type MarketData struct {
	Quote  models.Quote
	Series []models.SeriesPoint
}

// MarketDataProvider loads quote and series data for a symbol
type MarketDataProvider interface {
	// Load fetches the quote and series for symbol. It may block.
	Load(ctx context.Context, symbol string) (*MarketData, error)
	// Refresh returns the next live value of an active quote
	Refresh(ctx context.Context, quote models.Quote) (models.Quote, error)
	// Overview returns summary quotes for the given symbols
	Overview(ctx context.Context, symbols []string) ([]models.StockSummary, error)
	// Mode reports whether data is synthesized or fetched
	Mode() string
}

// QuoteFetcher fetches a single current quote from an external source
type QuoteFetcher interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// Compile-time interface verification
var _ MarketDataProvider = (*DemoProvider)(nil)
var _ MarketDataProvider = (*LiveProvider)(nil)
var _ QuoteFetcher = (*AlphaVantageService)(nil)
var _ QuoteFetcher = (*QuoteCache)(nil)
