package api

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"stock-dashboard/models"
)

// TODO: move these components to .templ sources once templ generate runs in the build.

var numbers = message.NewPrinter(language.English)

// page accumulates the first write error so views read top to bottom
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

// printf writes a formatted fragment; string args must already be escaped
func (p *page) printf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) component(ctx context.Context, c templ.Component) {
	if p.err == nil {
		p.err = c.Render(ctx, p.w)
	}
}

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.printf(`<title>%s | Stock Dashboard</title>`, templ.EscapeString(title))
		p.raw(`<script src="https://unpkg.com/htmx.org@1.9.12"></script></head><body>`)
		p.raw(`<header><a href="/"><h1>Stock Dashboard</h1></a>`)
		p.raw(`<form action="/stocks" method="get" role="search">`)
		p.raw(`<input type="text" name="symbol" placeholder="Search symbol (e.g. RELIANCE)" required>`)
		p.raw(`<button type="submit">Search</button></form></header><main>`)
		p.component(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}

// OverviewPage renders the watchlist grid
func OverviewPage(summaries []models.StockSummary, demo bool) templ.Component {
	return layout("Market Overview", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		if demo {
			p.raw(`<p class="badge">Demo data</p>`)
		}
		p.raw(`<section class="overview">`)
		for _, s := range summaries {
			p.printf(`<a class="card %s" href="/stocks/%s">`, direction(s.Change), templ.EscapeString(url.PathEscape(s.Symbol)))
			p.printf(`<h2>%s</h2>`, templ.EscapeString(s.Symbol))
			p.printf(`<p class="price">%s</p>`, templ.EscapeString(rupees(s.Price)))
			p.printf(`<p class="change">%s (%s)</p>`, templ.EscapeString(signed(s.Change)), templ.EscapeString(signedPercent(s.ChangePercent)))
			p.printf(`<dl><dt>High</dt><dd>%s</dd><dt>Low</dt><dd>%s</dd><dt>Volume</dt><dd>%s</dd>`,
				templ.EscapeString(rupees(s.High)), templ.EscapeString(rupees(s.Low)), templ.EscapeString(volume(s.Volume)))
			if s.MarketCap != "" {
				p.printf(`<dt>Market Cap</dt><dd>%s</dd>`, templ.EscapeString(s.MarketCap))
			}
			p.raw(`</dl></a>`)
		}
		p.raw(`</section>`)
		return p.err
	}))
}

// StockPage renders the full dashboard for one symbol
func StockPage(d models.Dashboard) templ.Component {
	return layout(d.Symbol(), DashboardPanel(d))
}

// DashboardPanel renders the quote, metrics, insights and daily series of a dashboard
func DashboardPanel(d models.Dashboard) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<section id="dashboard">`)

		if d.Notice != nil {
			p.printf(`<div class="notice %s" role="status"><strong>%s</strong> %s</div>`,
				templ.EscapeString(string(d.Notice.Variant)),
				templ.EscapeString(d.Notice.Title),
				templ.EscapeString(d.Notice.Description))
		}
		if d.Loading {
			p.raw(`<p class="loading">Loading...</p>`)
		}
		if !d.HasQuote() {
			p.raw(`<p class="empty">Search for a symbol to see its dashboard.</p></section>`)
			return p.err
		}

		q := d.Quote
		p.printf(`<div class="quote %s"><h2>%s</h2>`, direction(q.Change), templ.EscapeString(q.Symbol))
		if d.Demo {
			p.raw(`<span class="badge">Demo data</span>`)
		}
		p.printf(`<p class="price">%s</p><p class="change">%s (%s)</p></div>`,
			templ.EscapeString(rupees(q.Price)),
			templ.EscapeString(signed(q.Change)),
			templ.EscapeString(signedPercent(q.ChangePercent)))

		p.raw(`<dl class="metrics">`)
		p.printf(`<dt>Open</dt><dd>%s</dd>`, templ.EscapeString(rupees(q.Open)))
		p.printf(`<dt>Previous Close</dt><dd>%s</dd>`, templ.EscapeString(rupees(q.PreviousClose)))
		p.printf(`<dt>Day Range</dt><dd>%s - %s</dd>`, templ.EscapeString(rupees(q.Low)), templ.EscapeString(rupees(q.High)))
		p.printf(`<dt>Volume</dt><dd>%s</dd>`, templ.EscapeString(volume(q.Volume)))
		p.printf(`<dt>Volatility</dt><dd>%.2f%%</dd>`, d.Volatility)
		if q.MarketCap != "" {
			p.printf(`<dt>Market Cap</dt><dd>%s</dd>`, templ.EscapeString(q.MarketCap))
		}
		p.raw(`</dl>`)

		p.component(ctx, InsightsList(d.Insights))
		p.component(ctx, SeriesTable(d.Series))

		p.raw(`</section>`)
		return p.err
	})
}

// InsightsList renders the rule-based insights
func InsightsList(insights []models.Insight) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<section class="insights"><h3>AI Insights</h3>`)
		if len(insights) == 0 {
			p.raw(`<p>No notable signals today.</p>`)
		}
		p.raw(`<ul>`)
		for _, in := range insights {
			p.printf(`<li class="insight %s"><span class="confidence">%s</span> `,
				templ.EscapeString(string(in.Type)), templ.EscapeString(string(in.Confidence)))
			p.text(in.Message)
			p.raw(`</li>`)
		}
		p.raw(`</ul></section>`)
		return p.err
	})
}

// SeriesTable renders the daily bars with their moving averages
func SeriesTable(series []models.SeriesPoint) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<table class="series"><thead><tr><th>Date</th><th>Open</th><th>High</th><th>Low</th><th>Close</th><th>Volume</th><th>SMA20</th><th>SMA50</th></tr></thead><tbody>`)
		for i := len(series) - 1; i >= 0; i-- {
			pt := series[i]
			p.printf(`<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(pt.Time),
				numbers.Sprintf("%.2f", pt.Open),
				numbers.Sprintf("%.2f", pt.High),
				numbers.Sprintf("%.2f", pt.Low),
				numbers.Sprintf("%.2f", pt.Close),
				templ.EscapeString(volume(pt.Volume)),
				optional(pt.SMA20),
				optional(pt.SMA50))
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

// ErrorPage renders a standalone error state
func ErrorPage(status int, message string) templ.Component {
	return layout("Error", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.printf(`<div class="notice destructive" role="alert"><strong>Error %d</strong> %s</div>`, status, templ.EscapeString(message))
		return p.err
	}))
}

func direction(change float64) string {
	if change < 0 {
		return "down"
	}
	return "up"
}

func rupees(v float64) string {
	return numbers.Sprintf("₹%.2f", v)
}

func signed(v float64) string {
	return numbers.Sprintf("%+.2f", v)
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

func volume(v int64) string {
	return numbers.Sprintf("%d", v)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return numbers.Sprintf("%.2f", *v)
}
