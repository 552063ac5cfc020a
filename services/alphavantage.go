package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock-dashboard/config"
	"stock-dashboard/models"
	"stock-dashboard/observability"
)

const (
	alphaVantageService = "alphavantage"
	opGlobalQuote       = "global_quote"
)

// ErrQuoteNotFound is returned when Alpha Vantage has no quote for a symbol
var ErrQuoteNotFound = errors.New("quote not found")

// ErrRateLimited is returned when Alpha Vantage answers with a throttling note
var ErrRateLimited = errors.New("alpha vantage rate limit reached")

// AlphaVantageService fetches current quotes from the Alpha Vantage GLOBAL_QUOTE endpoint
type AlphaVantageService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breakers   *CircuitBreakerRegistry
	retry      RetryConfig
}

// NewAlphaVantageService creates a new AlphaVantageService instance
func NewAlphaVantageService(cfg config.AlphaVantageConfig, breakers *CircuitBreakerRegistry) *AlphaVantageService {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if breakers == nil {
		breakers = NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	}

	retry := DefaultRetryConfig
	retry.MaxRetries = cfg.MaxRetries

	return &AlphaVantageService{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		breakers:   breakers,
		retry:      retry,
	}
}

// QuoteResponse represents the GLOBAL_QUOTE response from Alpha Vantage
type QuoteResponse struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"`
	} `json:"Global Quote"`
	Note         string `json:"Note,omitempty"`
	Information  string `json:"Information,omitempty"`
	ErrorMessage string `json:"Error Message,omitempty"`
}

// GetQuote returns the current quote for a symbol
func (s *AlphaVantageService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(alphaVantageService, opGlobalQuote)
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(alphaVantageService, opGlobalQuote)

	var quote *models.Quote
	err := WithRetry(ctx, s.retry, func() error {
		q, err := WithBreaker(ctx, s.breakers, BreakerAlphaVantage, func() (*models.Quote, error) {
			return s.fetchQuote(ctx, symbol)
		})
		if err != nil {
			return err
		}
		quote = q
		return nil
	})
	if err != nil {
		metrics.RecordExternalAPIError(alphaVantageService, opGlobalQuote, errorType(err))
		observability.WithSymbol(symbol).Warn("alpha vantage quote failed", "error", err)
		return nil, err
	}

	return quote, nil
}

func (s *AlphaVantageService) fetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("function", "GLOBAL_QUOTE")
	params.Set("symbol", symbol)
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build quote request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alpha vantage returned status %d", resp.StatusCode)
	}

	var quoteResp QuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quoteResp); err != nil {
		return nil, fmt.Errorf("failed to decode quote: %w", err)
	}

	switch {
	case quoteResp.Note != "":
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, quoteResp.Note)
	case quoteResp.Information != "":
		return nil, fmt.Errorf("%w: %s", ErrRateLimited, quoteResp.Information)
	case quoteResp.ErrorMessage != "":
		return nil, fmt.Errorf("%w: %s: %s", ErrQuoteNotFound, symbol, quoteResp.ErrorMessage)
	case quoteResp.GlobalQuote.Price == "":
		return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, symbol)
	}

	return quoteResp.toQuote(symbol)
}

func (r *QuoteResponse) toQuote(symbol string) (*models.Quote, error) {
	gq := r.GlobalQuote

	price, err := decimal.NewFromString(gq.Price)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", gq.Price, err)
	}

	quote := &models.Quote{
		Symbol:        symbol,
		Price:         price.InexactFloat64(),
		Open:          parseDecimal("open", gq.Open),
		High:          parseDecimal("high", gq.High),
		Low:           parseDecimal("low", gq.Low),
		PreviousClose: parseDecimal("previous close", gq.PreviousClose),
		Change:        parseDecimal("change", gq.Change),
		ChangePercent: parseDecimal("change percent", strings.TrimSuffix(gq.ChangePercent, "%")),
		UpdatedAt:     time.Now(),
	}
	if gq.Symbol != "" {
		quote.Symbol = strings.ToUpper(gq.Symbol)
	}
	// the API rounds change and change percent; derive them from the close instead
	if quote.PreviousClose != 0 {
		quote.Reprice(quote.Price)
	}

	if gq.Volume != "" {
		volume, err := decimal.NewFromString(gq.Volume)
		if err != nil {
			observability.Warn("failed to parse volume", "value", gq.Volume, "error", err)
		} else {
			quote.Volume = volume.IntPart()
		}
	}

	return quote, nil
}

func parseDecimal(field, value string) float64 {
	if value == "" {
		return 0
	}
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		observability.Warn("failed to parse quote field", "field", field, "value", value, "error", err)
		return 0
	}
	return d.InexactFloat64()
}

func errorType(err error) string {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return "circuit_open"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrQuoteNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return "timeout"
	default:
		return "request"
	}
}
