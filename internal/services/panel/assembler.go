package panel

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ShortScan/internal/domain/models"
	domrepo "ShortScan/internal/domain/repository"
	"ShortScan/pkg/logger"
)

// Assembler builds a multi-symbol panel from a PriceSource.
type Assembler struct {
	source  domrepo.PriceSource
	archive domrepo.PriceArchive
	metrics domrepo.Metrics
	log     *logger.Logger
}

type Option func(*Assembler)

// WithArchive stores every fetched history in addition to returning it.
func WithArchive(a domrepo.PriceArchive) Option {
	return func(as *Assembler) { as.archive = a }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(as *Assembler) { as.metrics = m }
}

func NewAssembler(source domrepo.PriceSource, log *logger.Logger, opts ...Option) *Assembler {
	if log == nil {
		log = logger.Nop()
	}
	a := &Assembler{source: source, log: log}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble fetches each symbol and returns the panel sorted by (symbol, date)
// together with the symbols that were skipped for lack of data.
func (a *Assembler) Assemble(ctx context.Context, symbols []string, start, end time.Time) (models.Panel, []string, error) {
	var (
		panel   models.Panel
		skipped []string
	)
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" {
			continue
		}

		a.log.Info(fmt.Sprintf("Downloading %s...", sym), logger.String("symbol", sym))
		t0 := time.Now()
		records, err := a.source.Fetch(ctx, sym, start, end)
		if a.metrics != nil {
			a.metrics.RecordLatency("fetch", time.Since(t0).Seconds())
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			a.log.Warn("fetch failed, skipping symbol", logger.String("symbol", sym), logger.Error(err))
			skipped = append(skipped, a.skip(sym))
			continue
		}
		if len(records) == 0 {
			a.log.Warn("no data returned, skipping symbol", logger.String("symbol", sym))
			skipped = append(skipped, a.skip(sym))
			continue
		}

		for i := range records {
			records[i].Symbol = sym
		}
		if a.metrics != nil {
			a.metrics.RecordFetched(sym, len(records))
		}
		if a.archive != nil {
			if err := a.archive.StoreBatch(ctx, records); err != nil {
				a.log.Warn("archive prices failed", logger.String("symbol", sym), logger.Error(err))
				if a.metrics != nil {
					a.metrics.RecordError("archive")
				}
			}
		}
		panel = append(panel, records...)
	}

	if len(panel) == 0 {
		return nil, skipped, fmt.Errorf("assemble %d symbols: %w", len(symbols), models.ErrNoData)
	}
	return Normalize(panel), skipped, nil
}

func (a *Assembler) skip(sym string) string {
	if a.metrics != nil {
		a.metrics.RecordSkipped(sym)
	}
	return sym
}

// Normalize sorts the panel by (symbol, date) and drops repeated dates
// within a symbol, keeping the first occurrence.
func Normalize(p models.Panel) models.Panel {
	sort.SliceStable(p, func(i, j int) bool {
		if p[i].Symbol != p[j].Symbol {
			return p[i].Symbol < p[j].Symbol
		}
		return p[i].Date.Before(p[j].Date)
	})
	out := p[:0]
	for _, r := range p {
		if n := len(out); n > 0 && r.Symbol == out[n-1].Symbol && r.Date.Equal(out[n-1].Date) {
			continue
		}
		out = append(out, r)
	}
	return out
}
