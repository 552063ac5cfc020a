package services

import (
	"context"
	"sync"
	"time"

	"stock-dashboard/models"
)

// QuoteCache serves recent quotes per symbol so sessions watching the same
// symbol share one upstream fetch. Failures are never cached.
// A TTL of 0 disables caching.
type QuoteCache struct {
	next QuoteFetcher
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedQuote
}

type cachedQuote struct {
	quote     models.Quote
	fetchedAt time.Time
}

// NewQuoteCache wraps next with a TTL cache
func NewQuoteCache(next QuoteFetcher, ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedQuote),
	}
}

// GetQuote returns the cached quote for symbol while fresh, fetching it otherwise
func (c *QuoteCache) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if q, ok := c.get(symbol); ok {
		return &q, nil
	}

	quote, err := c.next.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	if c.ttl > 0 {
		c.mu.Lock()
		c.entries[symbol] = cachedQuote{quote: *quote, fetchedAt: c.now()}
		c.mu.Unlock()
	}
	return quote, nil
}

func (c *QuoteCache) get(symbol string) (models.Quote, bool) {
	if c.ttl <= 0 {
		return models.Quote{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[symbol]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		return models.Quote{}, false
	}
	return e.quote, true
}

// Invalidate drops the cached quote for symbol
func (c *QuoteCache) Invalidate(symbol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, symbol)
}

// TTL returns the cache's time-to-live
func (c *QuoteCache) TTL() time.Duration {
	return c.ttl
}
