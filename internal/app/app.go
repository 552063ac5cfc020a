package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"stock-dashboard/config"
	"stock-dashboard/insights"
	"stock-dashboard/models"
	"stock-dashboard/observability"
	"stock-dashboard/services"
)

const (
	noticeDataError = "Failed to fetch stock data. Please try again."
	sweepInterval   = time.Minute
)

// Refresh tick outcomes recorded in metrics
const (
	tickUpdated = "updated"
	tickStale   = "stale"
	tickFailed  = "failed"
)

// App owns the viewer sessions and coordinates loading, analysis and live refresh
type App struct {
	cfg       *config.Config
	provider  services.MarketDataProvider
	breakers  *services.CircuitBreakerRegistry
	refresher *Refresher
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// New creates a new App
func New(cfg *config.Config, provider services.MarketDataProvider, breakers *services.CircuitBreakerRegistry) *App {
	if breakers == nil {
		breakers = services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig)
	}
	return &App{
		cfg:       cfg,
		provider:  provider,
		breakers:  breakers,
		refresher: NewRefresher(cfg.Refresh.Interval),
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Startup starts the refresh scheduler and the idle-session sweep
func (a *App) Startup(ctx context.Context) error {
	if a.cfg.MarketData.SessionIdleExpiry > 0 {
		if _, err := a.refresher.Every(sweepInterval, a.sweepIdle); err != nil {
			return err
		}
	}
	a.refresher.Start()

	observability.Info("dashboard started",
		"mode", a.Mode(),
		"refresh_interval", a.cfg.Refresh.Interval,
		"watchlist", len(a.cfg.Watchlist))
	return nil
}

// Shutdown cancels every refresh job and waits for running ticks
func (a *App) Shutdown(ctx context.Context) {
	a.mu.Lock()
	ids := make([]string, 0, len(a.sessions))
	for id := range a.sessions {
		ids = append(ids, id)
	}
	a.mu.Unlock()

	for _, id := range ids {
		_ = a.CloseSession(id)
	}
	a.refresher.Stop(ctx)
}

// Mode reports whether data is synthesized or fetched
func (a *App) Mode() string {
	return a.provider.Mode()
}

// IsDemo reports whether the app serves synthesized data
func (a *App) IsDemo() bool {
	return a.provider.Mode() == services.ModeDemo
}

// Breakers returns the state of the external API circuit breakers
func (a *App) Breakers() map[string]services.CircuitBreakerStatus {
	return a.breakers.Status()
}

// SessionCount returns the number of open sessions
func (a *App) SessionCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.sessions)
}

// CreateSession opens an empty session and returns its ID
func (a *App) CreateSession() (string, models.Dashboard) {
	id := uuid.NewString()
	s := newSession(id, a.IsDemo(), a.now())

	a.mu.Lock()
	a.sessions[id] = s
	n := len(a.sessions)
	a.mu.Unlock()

	observability.GetMetrics().SetActiveSessions(n)
	observability.WithSession(id).Debug("session created")

	s.mu.Lock()
	defer s.mu.Unlock()
	return id, s.snapshot()
}

// Dashboard returns the current view state of a session
func (a *App) Dashboard(id string) (models.Dashboard, error) {
	s, err := a.session(id)
	if err != nil {
		return models.Dashboard{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = a.now()
	return s.snapshot(), nil
}

// CloseSession cancels the session's refresh job and discards its state
func (a *App) CloseSession(id string) error {
	a.mu.Lock()
	s, ok := a.sessions[id]
	if ok {
		delete(a.sessions, id)
	}
	n := len(a.sessions)
	a.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	s.mu.Lock()
	a.refresher.Cancel(s.refreshID)
	s.refreshID = 0
	s.generation++
	s.closed = true
	s.mu.Unlock()

	observability.GetMetrics().SetActiveSessions(n)
	observability.WithSession(id).Debug("session closed")
	return nil
}

// LoadSymbol makes symbol the session's active quote.
// On retrieval failure the previous quote, series and insights are kept, a
// destructive notice is set and an error wrapping ErrDataRetrieval is returned
// together with that stale dashboard.
func (a *App) LoadSymbol(ctx context.Context, id, rawSymbol string) (models.Dashboard, error) {
	symbol, err := NormalizeSymbol(rawSymbol)
	if err != nil {
		return models.Dashboard{}, err
	}

	s, err := a.session(id)
	if err != nil {
		return models.Dashboard{}, err
	}

	s.mu.Lock()
	s.loadSeq++
	seq := s.loadSeq
	s.dashboard.Loading = true
	s.lastSeen = a.now()
	s.mu.Unlock()

	logger := observability.WithSession(id).With("symbol", symbol)
	data, loadErr := a.load(ctx, symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return models.Dashboard{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if seq != s.loadSeq {
		// a newer load owns the session now
		logger.Debug("load superseded")
		if loadErr != nil {
			return s.snapshot(), loadErr
		}
		return s.snapshot(), nil
	}

	s.dashboard.Loading = false

	if loadErr != nil {
		logger.Warn("failed to load market data", "error", loadErr)
		s.dashboard.Notice = a.notice("Error", noticeDataError, models.NoticeDestructive)
		return s.snapshot(), loadErr
	}

	// cancel the outstanding refresh before the active quote is replaced
	a.refresher.Cancel(s.refreshID)
	s.refreshID = 0
	s.generation++

	s.dashboard.Quote = &data.Quote
	s.dashboard.Series = data.Series
	s.dashboard.Insights = data.Insights
	s.dashboard.Volatility = data.Volatility
	s.dashboard.Demo = a.IsDemo()
	s.dashboard.Notice = a.loadedNotice(symbol)

	gen := s.generation
	refreshID, err := a.refresher.Schedule(func() { a.refreshTick(id, gen) })
	if err != nil {
		logger.Error("failed to schedule quote refresh", "error", err)
	} else {
		s.refreshID = refreshID
	}

	logger.Info("symbol loaded", "price", data.Quote.Price, "insights", len(data.Insights))
	return s.snapshot(), nil
}

// Lookup builds a dashboard for symbol without touching any session
func (a *App) Lookup(ctx context.Context, rawSymbol string) (models.Dashboard, error) {
	symbol, err := NormalizeSymbol(rawSymbol)
	if err != nil {
		return models.Dashboard{}, err
	}

	data, err := a.load(ctx, symbol)
	if err != nil {
		return models.Dashboard{}, err
	}

	quote := data.Quote
	return models.Dashboard{
		Quote:      &quote,
		Series:     data.Series,
		Insights:   data.Insights,
		Demo:       a.IsDemo(),
		Volatility: data.Volatility,
	}, nil
}

// Overview returns a summary for every watchlist symbol
func (a *App) Overview(ctx context.Context) ([]models.StockSummary, error) {
	observability.GetMetrics().RecordOverview()

	summaries, err := a.provider.Overview(ctx, a.cfg.Watchlist)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataRetrieval, err)
	}
	return summaries, nil
}

type analysis struct {
	services.MarketData
	Insights   []models.Insight
	Volatility float64
}

// load fetches market data and runs the insight rules over it
func (a *App) load(ctx context.Context, symbol string) (*analysis, error) {
	mode := a.provider.Mode()
	metrics := observability.GetMetrics()
	metrics.RecordDataRequest(mode)
	timer := metrics.NewTimer()

	data, err := a.provider.Load(ctx, symbol)
	if err != nil {
		timer.ObserveDataLoad(mode, "error")
		metrics.RecordDataError(mode)
		return nil, fmt.Errorf("%w: %s: %w", ErrDataRetrieval, symbol, err)
	}
	timer.ObserveDataLoad(mode, "ok")

	result := insights.Evaluate(data.Quote, data.Series)
	for _, in := range result {
		metrics.RecordInsight(string(in.Type), string(in.Confidence))
	}

	return &analysis{
		MarketData: *data,
		Insights:   result,
		Volatility: data.Quote.Volatility() * 100,
	}, nil
}

// refreshTick advances the live quote of session id if gen is still current
func (a *App) refreshTick(id string, gen uint64) {
	metrics := observability.GetMetrics()

	s, err := a.session(id)
	if err != nil {
		metrics.RecordRefreshTick(tickStale)
		return
	}

	s.mu.Lock()
	if s.generation != gen || s.dashboard.Quote == nil {
		s.mu.Unlock()
		metrics.RecordRefreshTick(tickStale)
		return
	}
	current := *s.dashboard.Quote
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTP.RequestTimeout)
	defer cancel()
	next, err := a.provider.Refresh(ctx, current)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != gen {
		metrics.RecordRefreshTick(tickStale)
		return
	}
	if err != nil {
		metrics.RecordRefreshTick(tickFailed)
		observability.WithSession(id).Warn("quote refresh failed",
			"symbol", current.Symbol,
			"error", err)
		return
	}

	s.dashboard.Quote = &next
	s.dashboard.Volatility = next.Volatility() * 100
	metrics.RecordRefreshTick(tickUpdated)
}

// sweepIdle closes sessions nobody has read within the idle timeout
func (a *App) sweepIdle() {
	expiry := a.cfg.MarketData.SessionIdleExpiry
	now := a.now()

	a.mu.RLock()
	var idle []string
	for id, s := range a.sessions {
		if s.idleSince(now) > expiry {
			idle = append(idle, id)
		}
	}
	a.mu.RUnlock()

	for _, id := range idle {
		if err := a.CloseSession(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			observability.WithSession(id).Warn("failed to close idle session", "error", err)
			continue
		}
		observability.WithSession(id).Info("idle session expired")
	}
}

func (a *App) session(id string) (*Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	s, ok := a.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

func (a *App) loadedNotice(symbol string) *models.Notice {
	if a.IsDemo() {
		return a.notice("Demo Data Loaded",
			fmt.Sprintf("Showing demo data for %s. Add Alpha Vantage API key for real data.", symbol),
			models.NoticeDefault)
	}
	return a.notice("Real Data Loaded",
		fmt.Sprintf("Successfully loaded data for %s", symbol),
		models.NoticeDefault)
}

func (a *App) notice(title, description string, variant models.NoticeVariant) *models.Notice {
	return &models.Notice{
		Title:       title,
		Description: description,
		Variant:     variant,
		CreatedAt:   a.now(),
	}
}
