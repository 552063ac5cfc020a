package models

// InsightType is the directional bias of an insight
type InsightType string

const (
	InsightBullish InsightType = "bullish"
	InsightBearish InsightType = "bearish"
	InsightNeutral InsightType = "neutral"
	InsightWarning InsightType = "warning"
)

// IsValid checks if the insight type is valid
func (t InsightType) IsValid() bool {
	switch t {
	case InsightBullish, InsightBearish, InsightNeutral, InsightWarning:
		return true
	}
	return false
}

// Confidence is the confidence label attached to an insight
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValid checks if the confidence label is valid
func (c Confidence) IsValid() bool {
	switch c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return true
	}
	return false
}

// Insight is a generated advisory message
type Insight struct {
	Type       InsightType `json:"type"`
	Message    string      `json:"message"`
	Confidence Confidence  `json:"confidence"`
}
