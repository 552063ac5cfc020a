package app

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidSymbol is returned when a ticker fails validation
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrDataRetrieval is the single non-fatal failure class for market data loads
	ErrDataRetrieval = errors.New("data retrieval failed")
)
