package services

import (
	"context"
	"fmt"
	"time"

	"stock-dashboard/generator"
	"stock-dashboard/models"
)

// DemoProvider synthesizes market data locally after a simulated network delay
type DemoProvider struct {
	gen     *generator.Generator
	latency time.Duration
}

// NewDemoProvider creates a DemoProvider
func NewDemoProvider(gen *generator.Generator, latency time.Duration) *DemoProvider {
	return &DemoProvider{gen: gen, latency: latency}
}

// Load waits for the simulated latency and then generates data for symbol
func (p *DemoProvider) Load(ctx context.Context, symbol string) (*MarketData, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	quote, series := p.gen.Generate(symbol)
	return &MarketData{Quote: quote, Series: series}, nil
}

// Refresh nudges the quote price
func (p *DemoProvider) Refresh(ctx context.Context, quote models.Quote) (models.Quote, error) {
	return p.gen.Nudge(quote), nil
}

// Overview generates an independent summary for each symbol
func (p *DemoProvider) Overview(ctx context.Context, symbols []string) ([]models.StockSummary, error) {
	return p.gen.Overview(symbols), nil
}

// Mode returns ModeDemo
func (p *DemoProvider) Mode() string {
	return ModeDemo
}

func (p *DemoProvider) wait(ctx context.Context) error {
	if p.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("demo load cancelled: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}
