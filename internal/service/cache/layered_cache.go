package cache

import (
	"context"
	"time"
)

// LayeredCache implements a two-level cache (L1: in-process, L2: shared).
type LayeredCache struct {
	l1    BytesCache
	l2    BytesCache
	l1TTL time.Duration
}

// NewLayeredCache puts l1 in front of l2. Entries promoted from l2 live at
// most l1TTL in l1.
func NewLayeredCache(l1, l2 BytesCache, l1TTL time.Duration) *LayeredCache {
	return &LayeredCache{l1: l1, l2: l2, l1TTL: l1TTL}
}

func (lc *LayeredCache) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	// L1: Try memory first
	if b, ok, err := lc.l1.GetBytes(ctx, key); err == nil && ok {
		return b, true, nil
	}

	// L2
	b, ok, err := lc.l2.GetBytes(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	_ = lc.l1.SetBytes(ctx, key, b, lc.l1TTL)
	return b, true, nil
}

// SetBytes writes through: L2 first, then L1.
func (lc *LayeredCache) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := lc.l2.SetBytes(ctx, key, value, ttl); err != nil {
		return err
	}
	l1TTL := lc.l1TTL
	if ttl > 0 && (l1TTL <= 0 || ttl < l1TTL) {
		l1TTL = ttl
	}
	return lc.l1.SetBytes(ctx, key, value, l1TTL)
}

// Sweep expires L1 entries. L2 is expected to expire its own keys.
func (lc *LayeredCache) Sweep() int {
	if s, ok := lc.l1.(Sweeper); ok {
		return s.Sweep()
	}
	return 0
}

// Len reports the L1 size.
func (lc *LayeredCache) Len() int {
	if s, ok := lc.l1.(Sweeper); ok {
		return s.Len()
	}
	return 0
}

// Close closes both cache layers.
func (lc *LayeredCache) Close() error {
	_ = lc.l1.Close()
	return lc.l2.Close()
}
