package models

import "time"

// NoticeVariant controls how a notice is presented
type NoticeVariant string

const (
	NoticeDefault     NoticeVariant = "default"
	NoticeDestructive NoticeVariant = "destructive"
)

// Notice is a non-fatal, user-visible notification
type Notice struct {
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Variant     NoticeVariant `json:"variant"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// Dashboard is the caller-owned view state for a single active symbol
type Dashboard struct {
	Quote      *Quote        `json:"quote"`
	Series     []SeriesPoint `json:"series"`
	Insights   []Insight     `json:"insights"`
	Loading    bool          `json:"loading"`
	Demo       bool          `json:"demo"`
	Volatility float64       `json:"volatilityPercent"`
	Notice     *Notice       `json:"notice,omitempty"`
}

// HasQuote reports whether a symbol is currently active
func (d *Dashboard) HasQuote() bool {
	return d.Quote != nil
}

// Symbol returns the active symbol, or an empty string
func (d *Dashboard) Symbol() string {
	if d.Quote == nil {
		return ""
	}
	return d.Quote.Symbol
}

// Clone returns a copy that shares no mutable state with d
func (d Dashboard) Clone() Dashboard {
	out := d
	if d.Quote != nil {
		q := *d.Quote
		out.Quote = &q
	}
	if d.Series != nil {
		out.Series = append(make([]SeriesPoint, 0, len(d.Series)), d.Series...)
	}
	if d.Insights != nil {
		out.Insights = append(make([]Insight, 0, len(d.Insights)), d.Insights...)
	}
	if d.Notice != nil {
		n := *d.Notice
		out.Notice = &n
	}
	return out
}
