package repository

import (
	"context"
	"fmt"
	"time"

	"ShortScan/internal/domain/models"
	domrepo "ShortScan/internal/domain/repository"
	pkgch "ShortScan/pkg/clickhouse"
	applogger "ShortScan/pkg/logger"
	"ShortScan/pkg/util"
)

// CHPriceStore reads and archives daily bars in ClickHouse.
type CHPriceStore struct {
	ch    *pkgch.Client
	table string
	l     *applogger.Logger
}

var (
	_ domrepo.PriceSource  = (*CHPriceStore)(nil)
	_ domrepo.PriceArchive = (*CHPriceStore)(nil)
)

func NewCHPriceStore(ch *pkgch.Client, table string) *CHPriceStore {
	return &CHPriceStore{ch: ch, table: table, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHPriceStore) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// PriceSchema returns the DDL of the price table.
func PriceSchema(table string) string {
	return fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s (
            symbol LowCardinality(String),
            date   Date,
            open   Float64,
            high   Float64,
            low    Float64,
            close  Float64,
            volume Int64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, date)`, table)
}

func (s *CHPriceStore) selectQuery() string {
	return fmt.Sprintf(`
        SELECT symbol, date, open, high, low, close, volume
        FROM %s FINAL
        WHERE symbol = ? AND date >= ? AND date < ?
        ORDER BY date ASC`, s.table)
}

func (s *CHPriceStore) insertQuery() string {
	return fmt.Sprintf("INSERT INTO %s (symbol, date, open, high, low, close, volume)", s.table)
}

// Fetch returns the stored bars of symbol with dates in [start, end).
func (s *CHPriceStore) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceRecord, error) {
	t0 := time.Now()
	from, to := util.DayRange(start, end)
	rows, err := s.ch.DB().QueryContext(ctx, s.selectQuery(), symbol, from, to)
	if err != nil {
		s.l.Error("clickhouse fetch prices query error",
			applogger.String("table", s.table),
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer rows.Close()

	out := make([]models.PriceRecord, 0, 2048)
	for rows.Next() {
		var r models.PriceRecord
		if err := rows.Scan(&r.Symbol, &r.Date, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume); err != nil {
			return nil, fmt.Errorf("scan price: %w", err)
		}
		r.Date = util.Day(r.Date)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse fetch prices ok",
		applogger.String("table", s.table),
		applogger.String("symbol", symbol),
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(t0)),
	)
	return out, nil
}

// StoreBatch archives records; re-inserting a (symbol, date) replaces it on merge.
func (s *CHPriceStore) StoreBatch(ctx context.Context, records []models.PriceRecord) error {
	rows := priceRows(records)
	if err := s.ch.InsertBatch(ctx, s.insertQuery(), rows); err != nil {
		return fmt.Errorf("store prices: %w", err)
	}
	return nil
}

func priceRows(records []models.PriceRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, r := range records {
		if r.Symbol == "" || r.Date.IsZero() {
			continue
		}
		rows = append(rows, []any{r.Symbol, util.Day(r.Date), r.Open, r.High, r.Low, r.Close, r.Volume})
	}
	return rows
}
