package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ShortScan/internal/domain/models"
	drepo "ShortScan/internal/domain/repository"
	"ShortScan/pkg/logger"
	"ShortScan/pkg/util"
)

const keyPrefix = "prices"

// CachedSource decorates a PriceSource with a read-through history cache.
// Cache failures degrade to a direct fetch; empty histories are not cached.
type CachedSource struct {
	src   drepo.PriceSource
	cache BytesCache
	ttl   time.Duration
	log   *logger.Logger
}

var _ drepo.PriceSource = (*CachedSource)(nil)

func NewCachedSource(src drepo.PriceSource, cache BytesCache, ttl time.Duration, log *logger.Logger) *CachedSource {
	if log == nil {
		log = logger.Nop()
	}
	return &CachedSource{src: src, cache: cache, ttl: ttl, log: log}
}

// Key identifies one symbol history request.
func Key(symbol string, start, end time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyPrefix, symbol, start.Format(util.DateLayout), end.Format(util.DateLayout))
}

func (c *CachedSource) Fetch(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceRecord, error) {
	key := Key(symbol, start, end)
	b, ok, err := c.cache.GetBytes(ctx, key)
	if err != nil {
		c.log.Warn("price cache read failed", logger.String("key", key), logger.Error(err))
	}
	if ok {
		var recs []models.PriceRecord
		if err := json.Unmarshal(b, &recs); err == nil {
			c.log.Debug("price cache hit", logger.String("symbol", symbol), logger.Int("records", len(recs)))
			return recs, nil
		}
		c.log.Warn("price cache entry corrupt", logger.String("key", key))
	}

	recs, err := c.src.Fetch(ctx, symbol, start, end)
	if err != nil || len(recs) == 0 {
		return recs, err
	}
	if b, err := json.Marshal(recs); err == nil {
		if err := c.cache.SetBytes(ctx, key, b, c.ttl); err != nil {
			c.log.Warn("price cache write failed", logger.String("key", key), logger.Error(err))
		}
	}
	return recs, nil
}

// Close releases the underlying cache.
func (c *CachedSource) Close() error { return c.cache.Close() }
