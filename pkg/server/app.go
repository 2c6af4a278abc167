package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ShortScan/internal/domain/models"
	icache "ShortScan/internal/service/cache"
	"ShortScan/internal/usecase"
	pkgch "ShortScan/pkg/clickhouse"
	"ShortScan/pkg/config"
	xhttp "ShortScan/pkg/http"
	applogger "ShortScan/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	pipeline   *usecase.ShortPipeline
	params     models.RunParams
	httpServer *xhttp.Server
	chClient   *pkgch.Client
	cache      icache.BytesCache
	l          *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	pipeline *usecase.ShortPipeline,
	params models.RunParams,
	httpServer *xhttp.Server,
	chClient *pkgch.Client,
	cache icache.BytesCache,
	l *applogger.Logger,
) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{
		cfg:        cfg,
		pipeline:   pipeline,
		params:     params,
		httpServer: httpServer,
		chClient:   chClient,
		cache:      cache,
		l:          l,
	}
}

// Run executes the configured run and, when the HTTP API is enabled, serves
// until interrupted. Without the API a failed run is returned as the error.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serving := a.cfg.Server.Enabled && a.httpServer != nil
	if serving {
		if err := a.httpServer.Start(); err != nil {
			a.l.Error("http server start error", applogger.Error(err))
			return err
		}
	}

	var runErr error
	if a.cfg.Server.RunOnStart || !serving {
		a.l.Info("pipeline started",
			applogger.Strings("symbols", a.params.Symbols),
			applogger.Date("start", a.params.Start),
			applogger.Date("end", a.params.End),
			applogger.Int("splits", a.params.Model.Splits),
		)
		if _, runErr = a.pipeline.Run(ctx, a.params); runErr != nil {
			a.l.Error("pipeline failed", applogger.Error(runErr))
		}
	}

	if serving && !errors.Is(runErr, context.Canceled) {
		a.l.Info("serving run reports", applogger.String("addr", a.httpServer.Addr()))
		if s, ok := a.cache.(icache.Sweeper); ok {
			go a.sweep(ctx, s, a.cfg.Cache.SweepInterval)
		}
		<-ctx.Done()
		a.l.Info("shutdown signal received")
		runErr = nil
	}

	if err := a.shutdown(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// sweep drops expired cache entries every interval until ctx is done.
func (a *App) sweep(ctx context.Context, s icache.Sweeper, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.Sweep(); n > 0 {
				a.l.Debug("cache swept", applogger.Int("dropped", n), applogger.Int("remaining", s.Len()))
			}
		}
	}
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	a.l.Info("shutting down...")
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	if a.cfg.Server.Enabled && a.httpServer != nil {
		if err := a.httpServer.Stop(context.Background()); err != nil {
			a.l.Error("http shutdown error", applogger.Error(err))
			keep(err)
		}
	}

	// Sinks own the Kafka producer.
	if err := a.pipeline.Close(); err != nil {
		a.l.Warn("run sink close error", applogger.Error(err))
		keep(err)
	}

	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
			keep(err)
		}
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
			keep(err)
		}
	}

	a.l.Info("shutdown complete")
	return first
}
