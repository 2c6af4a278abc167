package cache

import (
	"context"
	"time"
)

// BytesCache is a minimal cache API storing raw bytes with TTL.
type BytesCache interface {
	GetBytes(ctx context.Context, key string) (b []byte, ok bool, err error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Sweeper is implemented by caches holding expired entries in process memory.
type Sweeper interface {
	// Sweep drops expired entries and returns how many were removed.
	Sweep() int
	// Len returns the number of entries held.
	Len() int
}
