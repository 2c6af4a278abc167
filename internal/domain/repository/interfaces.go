package repository

import (
	"context"
	"time"

	"ShortScan/internal/domain/models"
)

// PriceSource supplies the daily history of one symbol ordered by date.
// An empty slice with a nil error means the provider has no data.
type PriceSource interface {
	Fetch(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceRecord, error)
}

// PriceArchive persists fetched bars.
type PriceArchive interface {
	StoreBatch(ctx context.Context, records []models.PriceRecord) error
}

// RunSink receives a finished run report (storage, message bus, ...).
type RunSink interface {
	Name() string
	SaveRun(ctx context.Context, r *models.RunReport) error
	Close() error
}

type Metrics interface {
	RecordFetched(symbol string, records int)
	RecordSkipped(symbol string)
	RecordCleanRows(n int)
	RecordFoldAccuracy(fold int, accuracy float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
