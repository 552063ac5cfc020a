package generator

import (
	"stock-dashboard/models"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"
)

// Moving average windows
const (
	ShortWindow = 20
	LongWindow  = 50
)

// ApplyMovingAverages sets SMA20 and SMA50 on every point that has a full trailing window.
// Points without a full window are left nil.
func ApplyMovingAverages(series []models.SeriesPoint) {
	prices := make([]float64, len(series))
	for i, p := range series {
		prices[i] = p.Price
	}

	for i, v := range SimpleMovingAverage(prices, ShortWindow) {
		if v != nil {
			series[i].SMA20 = v
		}
	}
	for i, v := range SimpleMovingAverage(prices, LongWindow) {
		if v != nil {
			series[i].SMA50 = v
		}
	}
}

// SimpleMovingAverage returns a slice aligned with prices where index i holds the mean of
// prices[i-period+1..i], or nil when fewer than period prices are available.
func SimpleMovingAverage(prices []float64, period int) []*float64 {
	out := make([]*float64, len(prices))
	if period <= 0 || len(prices) < period {
		return out
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))

	// the indicator skips its idle period, so align from the newest value
	offset := len(prices) - len(values)
	for j, v := range values {
		idx := offset + j
		if idx < period-1 {
			continue
		}
		v := v
		out[idx] = &v
	}
	return out
}
