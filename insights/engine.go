// Package insights turns a quote and its daily series into rule-based advisory messages.
package insights

import (
	"fmt"
	"math"

	"stock-dashboard/models"
)

// Rule thresholds
const (
	MomentumPercent    = 5.0
	VolumeWindow       = 5
	VolumeSpikeRatio   = 1.5
	VolatilityFraction = 0.05
)

// Evaluate returns the insights that apply to quote and series, in rule order.
// An empty series yields no insights.
func Evaluate(quote models.Quote, series []models.SeriesPoint) []models.Insight {
	out := []models.Insight{}
	if len(series) == 0 {
		return out
	}
	latest := series[len(series)-1]

	switch {
	case quote.ChangePercent > MomentumPercent:
		out = append(out, models.Insight{
			Type:       models.InsightBullish,
			Message:    fmt.Sprintf("%s is up %.2f%% today, showing strong bullish momentum.", quote.Symbol, quote.ChangePercent),
			Confidence: models.ConfidenceHigh,
		})
	case quote.ChangePercent < -MomentumPercent:
		out = append(out, models.Insight{
			Type:       models.InsightBearish,
			Message:    fmt.Sprintf("%s is down %.2f%% today, indicating bearish pressure.", quote.Symbol, math.Abs(quote.ChangePercent)),
			Confidence: models.ConfidenceHigh,
		})
	}

	// Only reachable when the series is long enough to carry a 50-day average.
	if latest.SMA20 != nil && latest.SMA50 != nil {
		sma20, sma50 := *latest.SMA20, *latest.SMA50
		switch {
		case sma20 > sma50 && quote.Price > sma20:
			out = append(out, models.Insight{
				Type:       models.InsightBullish,
				Message:    "The 20-day SMA has crossed above the 50-day SMA, and price is above both averages - potential bullish trend.",
				Confidence: models.ConfidenceMedium,
			})
		case sma20 < sma50 && quote.Price < sma20:
			out = append(out, models.Insight{
				Type:       models.InsightBearish,
				Message:    "Price is below both moving averages with 20-day SMA below 50-day SMA - potential bearish trend.",
				Confidence: models.ConfidenceMedium,
			})
		}
	}

	if float64(quote.Volume) > recentAverageVolume(series)*VolumeSpikeRatio {
		out = append(out, models.Insight{
			Type:       models.InsightWarning,
			Message:    "Trading volume is significantly higher than average, indicating increased market interest.",
			Confidence: models.ConfidenceHigh,
		})
	}

	if quote.Price != 0 {
		if rng := (quote.High - quote.Low) / quote.Price; rng > VolatilityFraction {
			out = append(out, models.Insight{
				Type:       models.InsightWarning,
				Message:    fmt.Sprintf("High intraday volatility detected (%.1f%% range) - trade with caution.", rng*100),
				Confidence: models.ConfidenceMedium,
			})
		}
	}

	return out
}

// recentAverageVolume averages the volume of the last VolumeWindow points.
// The divisor stays fixed at VolumeWindow, so shorter series average in zeros.
func recentAverageVolume(series []models.SeriesPoint) float64 {
	start := len(series) - VolumeWindow
	if start < 0 {
		start = 0
	}
	var sum int64
	for _, p := range series[start:] {
		sum += p.Volume
	}
	return float64(sum) / VolumeWindow
}
