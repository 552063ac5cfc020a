package services

import (
	"context"

	"stock-dashboard/generator"
	"stock-dashboard/models"
)

// LiveProvider takes the current quote from an external source and synthesizes
// the daily series around the live price
type LiveProvider struct {
	quotes QuoteFetcher
	gen    *generator.Generator
}

// NewLiveProvider creates a LiveProvider
func NewLiveProvider(quotes QuoteFetcher, gen *generator.Generator) *LiveProvider {
	return &LiveProvider{quotes: quotes, gen: gen}
}

// Load fetches the live quote for symbol and builds a series around its price
func (p *LiveProvider) Load(ctx context.Context, symbol string) (*MarketData, error) {
	quote, err := p.quotes.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &MarketData{
		Quote:  *quote,
		Series: p.gen.SeriesAround(quote.Price),
	}, nil
}

// Refresh re-fetches the quote, keeping the market cap carried by the previous value
func (p *LiveProvider) Refresh(ctx context.Context, quote models.Quote) (models.Quote, error) {
	next, err := p.quotes.GetQuote(ctx, quote.Symbol)
	if err != nil {
		return quote, err
	}
	if next.MarketCap == "" {
		next.MarketCap = quote.MarketCap
	}
	return *next, nil
}

// Overview synthesizes the summary grid; the overview never spends external quota
func (p *LiveProvider) Overview(ctx context.Context, symbols []string) ([]models.StockSummary, error) {
	return p.gen.Overview(symbols), nil
}

// Mode returns ModeLive
func (p *LiveProvider) Mode() string {
	return ModeLive
}
