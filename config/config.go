package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultWatchlist is the overview grid shown when no watchlist file is configured
var DefaultWatchlist = []string{
	"RELIANCE", "TCS", "INFY", "HDFCBANK", "ICICIBANK", "BHARTIARTL",
	"ITC", "KOTAKBANK", "LT", "SBIN", "ASIANPAINT", "MARUTI",
}

// Config holds all application configuration
type Config struct {
	// Market data configuration
	MarketData MarketDataConfig

	// Alpha Vantage configuration
	AlphaVantage AlphaVantageConfig

	// Refresh configuration
	Refresh RefreshConfig

	// HTTP configuration
	HTTP HTTPConfig

	// Logging configuration
	Log LogConfig

	// Watchlist for the overview grid
	Watchlist []string
}

// MarketDataConfig holds data source configuration
type MarketDataConfig struct {
	DemoMode          bool
	SimulatedLatency  time.Duration
	SeriesDays        int
	WatchlistFile     string
	SessionIdleExpiry time.Duration
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey     string
	BaseURL    string
	MaxRetries int
	Timeout    time.Duration
	CacheTTL   time.Duration
}

// RefreshConfig holds live quote refresh configuration
type RefreshConfig struct {
	Interval time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	Port               int
	CORSAllowedOrigins string
	RequestTimeout     time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Format string // text or json
	Level  string
}

// Load loads configuration from an optional .env file and environment variables
func Load() (*Config, error) {
	// a missing .env file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		MarketData: MarketDataConfig{
			DemoMode:          getEnvBool("DEMO_MODE", true),
			SimulatedLatency:  time.Duration(getEnvIntAllowZero("SIMULATED_LATENCY_MS", 1000)) * time.Millisecond,
			SeriesDays:        getEnvInt("SERIES_DAYS", 30),
			WatchlistFile:     os.Getenv("WATCHLIST_FILE"),
			SessionIdleExpiry: time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT_MINUTES", 30)) * time.Minute,
		},
		AlphaVantage: AlphaVantageConfig{
			APIKey:     os.Getenv("ALPHA_VANTAGE_API_KEY"),
			BaseURL:    getEnvString("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			MaxRetries: getEnvIntAllowZero("ALPHA_VANTAGE_MAX_RETRIES", 0),
			Timeout:    time.Duration(getEnvInt("ALPHA_VANTAGE_TIMEOUT_SECONDS", 30)) * time.Second,
			CacheTTL:   time.Duration(getEnvIntAllowZero("ALPHA_VANTAGE_CACHE_SECONDS", 5)) * time.Second,
		},
		Refresh: RefreshConfig{
			Interval: time.Duration(getEnvInt("REFRESH_INTERVAL_SECONDS", 10)) * time.Second,
		},
		HTTP: HTTPConfig{
			Port:               getEnvInt("HTTP_PORT", 8080),
			CORSAllowedOrigins: getEnvString("CORS_ALLOWED_ORIGINS", "*"),
			RequestTimeout:     time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Log: LogConfig{
			Format: strings.ToLower(getEnvString("LOG_FORMAT", "text")),
			Level:  strings.ToLower(getEnvString("LOG_LEVEL", "info")),
		},
		Watchlist: DefaultWatchlist,
	}

	if cfg.MarketData.WatchlistFile != "" {
		symbols, err := LoadWatchlist(cfg.MarketData.WatchlistFile)
		if err != nil {
			return nil, err
		}
		cfg.Watchlist = symbols
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.MarketData.SeriesDays <= 0 {
		return fmt.Errorf("SERIES_DAYS must be positive, got %d", c.MarketData.SeriesDays)
	}
	if c.MarketData.SimulatedLatency < 0 {
		return fmt.Errorf("SIMULATED_LATENCY_MS must not be negative, got %s", c.MarketData.SimulatedLatency)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL_SECONDS must be positive, got %s", c.Refresh.Interval)
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.AlphaVantage.MaxRetries < 0 {
		return fmt.Errorf("ALPHA_VANTAGE_MAX_RETRIES must not be negative, got %d", c.AlphaVantage.MaxRetries)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist must contain at least one symbol")
	}
	return nil
}

// HasAlphaVantage returns true if an Alpha Vantage key is configured
func (c *Config) HasAlphaVantage() bool {
	return c.AlphaVantage.APIKey != ""
}

// IsDemo returns true when market data is synthesized rather than fetched
func (c *Config) IsDemo() bool {
	return c.MarketData.DemoMode || !c.HasAlphaVantage()
}

// Addr returns the HTTP listen address
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTP.Port)
}

func getEnvString(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvIntAllowZero(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// NewTestConfig creates a Config with default values for testing
func NewTestConfig() *Config {
	return &Config{
		MarketData: MarketDataConfig{
			DemoMode:          true,
			SimulatedLatency:  0,
			SeriesDays:        30,
			SessionIdleExpiry: 30 * time.Minute,
		},
		AlphaVantage: AlphaVantageConfig{
			BaseURL:    "https://www.alphavantage.co/query",
			MaxRetries: 0,
			Timeout:    5 * time.Second,
		},
		Refresh: RefreshConfig{
			Interval: 10 * time.Second,
		},
		HTTP: HTTPConfig{
			Port:               8080,
			CORSAllowedOrigins: "*",
			RequestTimeout:     30 * time.Second,
		},
		Log: LogConfig{
			Format: "text",
			Level:  "info",
		},
		Watchlist: append([]string(nil), DefaultWatchlist...),
	}
}
