package server

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"ShortScan/internal/domain/models"
	icache "ShortScan/internal/service/cache"
	"ShortScan/internal/services/evaluation"
	"ShortScan/internal/services/panel"
	"ShortScan/internal/usecase"
	"ShortScan/pkg/config"
)

type emptySource struct{ calls int }

func (s *emptySource) Fetch(context.Context, string, time.Time, time.Time) ([]models.PriceRecord, error) {
	s.calls++
	return nil, nil
}

type closeCounter struct{ closed int }

func (c *closeCounter) GetBytes(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (c *closeCounter) SetBytes(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (c *closeCounter) Close() error { c.closed++; return nil }

func TestRunBatchReturnsPipelineError(t *testing.T) {
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	src := &emptySource{}
	p := usecase.NewShortPipeline(
		panel.NewAssembler(src, nil),
		evaluation.NewEvaluator(evaluation.ForestFactory, nil, nil),
		nil, nil,
	)
	cache := &closeCounter{}
	params := models.RunParams{
		Symbols: []string{"AAPL", "MSFT"},
		Start:   time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:     time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC),
		Model:   models.ModelParams{Splits: 2, NEstimators: 5, MinSamplesLeaf: 1},
	}

	app := New(cfg, p, params, nil, nil, cache, nil)
	err = app.Run()
	if !errors.Is(err, models.ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("every symbol should be requested, got %d", src.calls)
	}
	if cache.closed != 1 {
		t.Fatalf("cache must be closed on shutdown")
	}
}

type countingSweeper struct{ n int32 }

func (s *countingSweeper) Sweep() int { atomic.AddInt32(&s.n, 1); return 1 }
func (s *countingSweeper) Len() int   { return 0 }

func TestSweepRunsUntilCancelled(t *testing.T) {
	a := New(nil, nil, models.RunParams{}, nil, nil, nil, nil)
	s := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.sweep(ctx, s, time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&s.n) < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("sweep ran %d times", atomic.LoadInt32(&s.n))
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("sweep loop did not stop")
	}
}

func TestSweepDisabledForNonPositiveInterval(t *testing.T) {
	a := New(nil, nil, models.RunParams{}, nil, nil, nil, nil)
	s := &countingSweeper{}
	a.sweep(context.Background(), s, 0)
	if s.n != 0 {
		t.Fatalf("zero interval must not sweep")
	}
}

func TestMemoryCachesAreSweepers(t *testing.T) {
	ttl := icache.NewTTLCache()
	for _, c := range []icache.BytesCache{ttl, icache.NewLayeredCache(ttl, icache.NewTTLCache(), time.Minute)} {
		if _, ok := c.(icache.Sweeper); !ok {
			t.Fatalf("%T should be swept while serving", c)
		}
	}
}
