// Package generator produces synthetic quotes and daily price series for demo mode.
package generator

import (
	"math/rand/v2"
	"sync"
	"time"

	"stock-dashboard/models"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Distribution parameters for synthetic data, tuned to the Indian equity price range
const (
	DefaultDays = 30

	basePriceMin  = 500.0
	basePriceSpan = 2000.0
	changeSpan    = 50.0 // +/-25
	rangeSpan     = 25.0
	openSpan      = 15.0 // +/-7.5

	quoteVolumeMin  = 1_000_000
	quoteVolumeSpan = 10_000_000

	dailyPriceSpan   = 20.0 // +/-10
	seriesVolumeMin  = 5_000_000
	seriesVolumeSpan = 30_000_000
	barRangeSpan     = 3.0
	barOpenSpan      = 2.0 // +/-1

	marketCapMin  = 50_000
	marketCapSpan = 500_000

	nudgeSpan = 2.0 // +/-1
)

// Generator produces randomized quotes and series. It is safe for concurrent use.
type Generator struct {
	mu   sync.Mutex
	rng  *rand.Rand
	days int
	now  func() time.Time
}

// Option configures a Generator
type Option func(*Generator)

// WithSource sets the random source, mainly for reproducible tests
func WithSource(src rand.Source) Option {
	return func(g *Generator) {
		g.rng = rand.New(src)
	}
}

// WithDays sets the number of daily points in a generated series
func WithDays(days int) Option {
	return func(g *Generator) {
		if days > 0 {
			g.days = days
		}
	}
}

// WithClock sets the clock used to date series points
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// New creates a Generator seeded from the runtime's random source
func New(opts ...Option) *Generator {
	g := &Generator{
		rng:  rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		days: DefaultDays,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Days returns the configured series length
func (g *Generator) Days() int {
	return g.days
}

// Generate produces a quote and a daily series for symbol
func (g *Generator) Generate(symbol string) (models.Quote, []models.SeriesPoint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	quote := g.quote(symbol)
	series := g.series(quote.Price)
	return quote, series
}

// SeriesAround produces a daily series centred on basePrice, used when the quote comes from a live source
func (g *Generator) SeriesAround(basePrice float64) []models.SeriesPoint {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.series(basePrice)
}

// Summary produces an independent overview entry for symbol
func (g *Generator) Summary(symbol string) models.StockSummary {
	g.mu.Lock()
	defer g.mu.Unlock()

	q := g.quote(symbol)
	return q.Summary()
}

// Overview produces one summary per symbol, in order
func (g *Generator) Overview(symbols []string) []models.StockSummary {
	out := make([]models.StockSummary, 0, len(symbols))
	for _, symbol := range symbols {
		out = append(out, g.Summary(symbol))
	}
	return out
}

// Nudge moves the quote price by a small random delta, keeping the previous close
func (g *Generator) Nudge(q models.Quote) models.Quote {
	g.mu.Lock()
	delta := g.symmetric(nudgeSpan)
	g.mu.Unlock()

	q.Reprice(q.Price + delta)
	q.UpdatedAt = g.now()
	return q
}

func (g *Generator) quote(symbol string) models.Quote {
	basePrice := basePriceMin + g.rng.Float64()*basePriceSpan
	change := g.symmetric(changeSpan)

	return models.Quote{
		Symbol:        symbol,
		Price:         basePrice,
		Change:        change,
		ChangePercent: models.PercentOf(change, basePrice),
		Volume:        quoteVolumeMin + g.rng.Int64N(quoteVolumeSpan),
		High:          basePrice + g.rng.Float64()*rangeSpan,
		Low:           basePrice - g.rng.Float64()*rangeSpan,
		Open:          basePrice + g.symmetric(openSpan),
		PreviousClose: basePrice - change,
		MarketCap:     FormatMarketCap(marketCapMin + g.rng.Int64N(marketCapSpan)),
		UpdatedAt:     g.now(),
	}
}

func (g *Generator) series(basePrice float64) []models.SeriesPoint {
	today := g.now().UTC()
	series := make([]models.SeriesPoint, 0, g.days)

	for i := g.days - 1; i >= 0; i-- {
		dailyPrice := basePrice + g.symmetric(dailyPriceSpan)

		point := models.SeriesPoint{
			Time:   today.AddDate(0, 0, -i).Format(models.DateLayout),
			Price:  dailyPrice,
			Volume: seriesVolumeMin + g.rng.Int64N(seriesVolumeSpan),
			High:   dailyPrice + g.rng.Float64()*barRangeSpan,
			Low:    dailyPrice - g.rng.Float64()*barRangeSpan,
			Open:   dailyPrice + g.symmetric(barOpenSpan),
			Close:  dailyPrice,
		}
		if n := len(series); n > 0 {
			prev := series[n-1].Price
			point.PrevPrice = &prev
		}
		series = append(series, point)
	}

	ApplyMovingAverages(series)
	return series
}

// symmetric draws uniformly from [-span/2, span/2)
func (g *Generator) symmetric(span float64) float64 {
	return (g.rng.Float64() - 0.5) * span
}

var printer = message.NewPrinter(language.English)

// FormatMarketCap renders a market capitalisation given in crores
func FormatMarketCap(crores int64) string {
	return printer.Sprintf("₹%d Cr", crores)
}
