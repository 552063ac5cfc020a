package main

import (
	"stock-dashboard/config"
	"stock-dashboard/generator"
	"stock-dashboard/internal/app"
	"stock-dashboard/observability"
	"stock-dashboard/services"
)

// newApp wires the market data provider chosen by cfg into an App
func newApp(cfg *config.Config) *app.App {
	gen := generator.New(generator.WithDays(cfg.MarketData.SeriesDays))
	breakers := services.NewCircuitBreakerRegistry(services.DefaultCircuitBreakerConfig)
	return app.New(cfg, newProvider(cfg, gen, breakers), breakers)
}

func newProvider(cfg *config.Config, gen *generator.Generator, breakers *services.CircuitBreakerRegistry) services.MarketDataProvider {
	if cfg.IsDemo() {
		if !cfg.MarketData.DemoMode {
			observability.Warn("ALPHA_VANTAGE_API_KEY not set, serving demo data")
		}
		return services.NewDemoProvider(gen, cfg.MarketData.SimulatedLatency)
	}
	quotes := services.NewQuoteCache(services.NewAlphaVantageService(cfg.AlphaVantage, breakers), cfg.AlphaVantage.CacheTTL)
	return services.NewLiveProvider(quotes, gen)
}

func initObservability(cfg *config.Config) {
	observability.SetupLogger(observability.LogOptions{
		JSON:  cfg.Log.Format == "json",
		Level: observability.ParseLevel(cfg.Log.Level),
	})
	observability.InitMetrics()
}
