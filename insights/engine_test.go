package insights

import (
	"strings"
	"testing"

	"stock-dashboard/models"
)

func ptr(v float64) *float64 { return &v }

// quietSeries returns n points whose volumes average 1,000,000 over the last five
func quietSeries(n int) []models.SeriesPoint {
	series := make([]models.SeriesPoint, n)
	for i := range series {
		series[i] = models.SeriesPoint{Price: 100, Close: 100, Volume: 1_000_000}
	}
	return series
}

// quietQuote fires no rules against quietSeries
func quietQuote() models.Quote {
	return models.Quote{
		Symbol:        "TCS",
		Price:         100,
		ChangePercent: 0.5,
		Volume:        1_000_000,
		High:          101,
		Low:           99,
	}
}

func countType(ins []models.Insight, typ models.InsightType, conf models.Confidence) int {
	n := 0
	for _, i := range ins {
		if i.Type == typ && i.Confidence == conf {
			n++
		}
	}
	return n
}

func TestEvaluate_EmptySeries(t *testing.T) {
	q := quietQuote()
	q.ChangePercent = 9
	q.Volume = 50_000_000

	got := Evaluate(q, nil)

	if got == nil {
		t.Fatal("expected an empty, non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("expected no insights for empty series, got %d", len(got))
	}
}

func TestEvaluate_Quiet(t *testing.T) {
	got := Evaluate(quietQuote(), quietSeries(30))
	if len(got) != 0 {
		t.Errorf("expected no insights, got %+v", got)
	}
}

func TestEvaluate_Momentum(t *testing.T) {
	t.Run("bullish above five percent", func(t *testing.T) {
		q := quietQuote()
		q.ChangePercent = 6.0

		got := Evaluate(q, quietSeries(30))

		if n := countType(got, models.InsightBullish, models.ConfidenceHigh); n != 1 {
			t.Fatalf("expected exactly one high-confidence bullish insight, got %d", n)
		}
		if !strings.Contains(got[0].Message, "6.00%") {
			t.Errorf("message %q should mention 6.00%%", got[0].Message)
		}
		if !strings.Contains(got[0].Message, "TCS") {
			t.Errorf("message %q should mention the symbol", got[0].Message)
		}
	})

	t.Run("bearish below minus five percent", func(t *testing.T) {
		q := quietQuote()
		q.ChangePercent = -7.25

		got := Evaluate(q, quietSeries(30))

		if n := countType(got, models.InsightBearish, models.ConfidenceHigh); n != 1 {
			t.Fatalf("expected exactly one high-confidence bearish insight, got %d", n)
		}
		if !strings.Contains(got[0].Message, "7.25%") {
			t.Errorf("message %q should mention the absolute change 7.25%%", got[0].Message)
		}
	})

	t.Run("exactly five percent does not fire", func(t *testing.T) {
		q := quietQuote()
		q.ChangePercent = 5.0

		if got := Evaluate(q, quietSeries(30)); len(got) != 0 {
			t.Errorf("expected no insights at the threshold, got %+v", got)
		}
	})
}

func TestEvaluate_MovingAverageCrossover(t *testing.T) {
	t.Run("crossover above", func(t *testing.T) {
		series := quietSeries(30)
		series[29].SMA20 = ptr(100)
		series[29].SMA50 = ptr(90)
		q := quietQuote()
		q.Price = 105
		q.High = 106
		q.Low = 104

		got := Evaluate(q, series)

		if n := countType(got, models.InsightBullish, models.ConfidenceMedium); n != 1 {
			t.Errorf("expected medium-confidence bullish crossover, got %+v", got)
		}
		if n := countType(got, models.InsightBearish, models.ConfidenceMedium); n != 0 {
			t.Errorf("did not expect bearish crossunder, got %+v", got)
		}
	})

	t.Run("crossunder below", func(t *testing.T) {
		series := quietSeries(30)
		series[29].SMA20 = ptr(90)
		series[29].SMA50 = ptr(100)
		q := quietQuote()
		q.Price = 85
		q.High = 86
		q.Low = 84

		got := Evaluate(q, series)

		if n := countType(got, models.InsightBearish, models.ConfidenceMedium); n != 1 {
			t.Errorf("expected medium-confidence bearish crossunder, got %+v", got)
		}
		if n := countType(got, models.InsightBullish, models.ConfidenceMedium); n != 0 {
			t.Errorf("did not expect bullish crossover, got %+v", got)
		}
	})

	t.Run("missing sma50 skips both rules", func(t *testing.T) {
		series := quietSeries(30)
		series[29].SMA20 = ptr(100)
		q := quietQuote()
		q.Price = 105
		q.High = 106
		q.Low = 104

		if got := Evaluate(q, series); len(got) != 0 {
			t.Errorf("expected no insights without sma50, got %+v", got)
		}
	})

	t.Run("only the latest point is considered", func(t *testing.T) {
		series := quietSeries(30)
		series[28].SMA20 = ptr(100)
		series[28].SMA50 = ptr(90)
		q := quietQuote()
		q.Price = 105
		q.High = 106
		q.Low = 104

		if got := Evaluate(q, series); len(got) != 0 {
			t.Errorf("expected no insights, got %+v", got)
		}
	})
}

func TestEvaluate_Volume(t *testing.T) {
	tests := []struct {
		name   string
		volume int64
		want   int
	}{
		{"double the average", 2_000_000, 1},
		{"below the spike ratio", 1_400_000, 0},
		{"exactly the spike ratio", 1_500_000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := quietQuote()
			q.Volume = tt.volume

			got := Evaluate(q, quietSeries(30))

			if n := countType(got, models.InsightWarning, models.ConfidenceHigh); n != tt.want {
				t.Errorf("volume warnings = %d, want %d", n, tt.want)
			}
		})
	}
}

func TestEvaluate_VolumeUsesLastFivePoints(t *testing.T) {
	series := quietSeries(30)
	for i := 0; i < 25; i++ {
		series[i].Volume = 100_000_000
	}
	q := quietQuote()
	q.Volume = 2_000_000

	got := Evaluate(q, series)

	if n := countType(got, models.InsightWarning, models.ConfidenceHigh); n != 1 {
		t.Errorf("older points should not affect the volume average, got %+v", got)
	}
}

func TestEvaluate_Volatility(t *testing.T) {
	t.Run("ten percent range", func(t *testing.T) {
		q := quietQuote()
		q.High, q.Low, q.Price = 105, 95, 100

		got := Evaluate(q, quietSeries(30))

		if n := countType(got, models.InsightWarning, models.ConfidenceMedium); n != 1 {
			t.Fatalf("expected a medium-confidence volatility warning, got %+v", got)
		}
		if !strings.Contains(got[0].Message, "10.0%") {
			t.Errorf("message %q should mention 10.0%%", got[0].Message)
		}
	})

	t.Run("four percent range", func(t *testing.T) {
		q := quietQuote()
		q.High, q.Low, q.Price = 102, 98, 100

		if got := Evaluate(q, quietSeries(30)); len(got) != 0 {
			t.Errorf("expected no volatility warning, got %+v", got)
		}
	})
}

func TestEvaluate_RuleOrder(t *testing.T) {
	series := quietSeries(60)
	series[59].SMA20 = ptr(100)
	series[59].SMA50 = ptr(90)
	q := models.Quote{
		Symbol:        "RELIANCE",
		Price:         110,
		ChangePercent: 8,
		Volume:        5_000_000,
		High:          120,
		Low:           100,
	}

	got := Evaluate(q, series)

	want := []struct {
		typ  models.InsightType
		conf models.Confidence
	}{
		{models.InsightBullish, models.ConfidenceHigh},
		{models.InsightBullish, models.ConfidenceMedium},
		{models.InsightWarning, models.ConfidenceHigh},
		{models.InsightWarning, models.ConfidenceMedium},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d insights, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].Type != w.typ || got[i].Confidence != w.conf {
			t.Errorf("insight %d = %s/%s, want %s/%s", i, got[i].Type, got[i].Confidence, w.typ, w.conf)
		}
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	q := quietQuote()
	q.ChangePercent = -6
	q.High, q.Low = 110, 90
	series := quietSeries(30)

	first := Evaluate(q, series)
	for i := 0; i < 10; i++ {
		again := Evaluate(q, series)
		if len(again) != len(first) {
			t.Fatalf("run %d produced %d insights, want %d", i, len(again), len(first))
		}
		for j := range first {
			if again[j] != first[j] {
				t.Errorf("run %d insight %d differs: %+v vs %+v", i, j, again[j], first[j])
			}
		}
	}
}

func TestEvaluate_ShortSeriesVolumeAverage(t *testing.T) {
	// two points of 1,000,000 average to 400,000 over the fixed five-point window
	series := quietSeries(2)
	q := quietQuote()
	q.Volume = 700_000

	got := Evaluate(q, series)

	if n := countType(got, models.InsightWarning, models.ConfidenceHigh); n != 1 {
		t.Errorf("expected volume warning for short series, got %+v", got)
	}
}
