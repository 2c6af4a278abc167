package models

import "errors"

var (
	// ErrNoData is returned when no symbol produced any price history.
	ErrNoData = errors.New("no price data")
	// ErrInsufficientData is returned when filtering left no usable rows.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrInsufficientSplits is returned when the fold count needs more rows than exist.
	ErrInsufficientSplits = errors.New("insufficient rows for splits")
	// ErrNoFolds is returned for a non-positive fold count.
	ErrNoFolds = errors.New("fold count must be positive")
	// ErrShapeMismatch is returned when model and feature names disagree in length.
	ErrShapeMismatch = errors.New("shape mismatch")
)
