package di

import (
	"context"
	"fmt"
	"os"
	"time"

	"ShortScan/internal/domain/models"
	"ShortScan/internal/domain/repository"
	"ShortScan/internal/handler/api"
	internalrepo "ShortScan/internal/repository"
	icache "ShortScan/internal/service/cache"
	"ShortScan/internal/service/finnhub"
	"ShortScan/internal/services/evaluation"
	"ShortScan/internal/services/panel"
	"ShortScan/internal/usecase"
	pkgch "ShortScan/pkg/clickhouse"
	"ShortScan/pkg/config"
	xhttp "ShortScan/pkg/http"
	pkgkafka "ShortScan/pkg/kafka"
	applogger "ShortScan/pkg/logger"
	"ShortScan/pkg/metrics"
	"ShortScan/pkg/server"
)

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New(nil)
}

// ProvideRunParams parses the configured universe, range and hyperparameters.
func ProvideRunParams(cfg *config.Config) (models.RunParams, error) {
	start, end, err := cfg.Pipeline.Dates()
	if err != nil {
		return models.RunParams{}, err
	}
	return models.RunParams{
		Symbols: cfg.Pipeline.Symbols,
		Start:   start,
		End:     end,
		Model: models.ModelParams{
			Splits:         cfg.Pipeline.Splits,
			NEstimators:    cfg.Pipeline.NEstimators,
			MinSamplesLeaf: cfg.Pipeline.MinSamplesLeaf,
			Seed:           cfg.Pipeline.Seed,
			Jobs:           cfg.Pipeline.Jobs,
		},
	}, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 0),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout,
			cfg.ClickHouse.WriteTimeout, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if !cfg.ClickHouse.InitSchema {
		return client, nil
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := append([]string{internalrepo.PriceSchema(cfg.ClickHouse.PriceTable)},
		internalrepo.RunSchema(cfg.ClickHouse.RunTable, cfg.ClickHouse.ImportanceTable)...)
	if err := client.InitSchema(ctx, stmts); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	l.Info("clickhouse schema ready", applogger.String("db", cfg.ClickHouse.Database))
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithDelivery(cfg.Kafka.Producer.MaxAttempts, 0),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideHistoryCache creates the price history cache, or nil when disabled.
func ProvideHistoryCache(cfg *config.Config) (icache.BytesCache, error) {
	switch cfg.Cache.Type {
	case "memory":
		return icache.NewTTLCache(), nil
	case "redis", "layered":
		rc := icache.NewRedisCache(icache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			_ = rc.Close()
			return nil, err
		}
		if cfg.Cache.Type == "layered" {
			return icache.NewLayeredCache(icache.NewTTLCache(), rc, cfg.Cache.MemoryTTL), nil
		}
		return rc, nil
	default:
		return nil, nil
	}
}

// ProvidePriceSource selects the history provider and wraps it in the cache.
func ProvidePriceSource(cfg *config.Config, ch *pkgch.Client, cache icache.BytesCache, l *applogger.Logger) repository.PriceSource {
	var src repository.PriceSource
	switch cfg.Source.Type {
	case "clickhouse":
		store := internalrepo.NewCHPriceStore(ch, cfg.ClickHouse.PriceTable)
		store.SetLogger(l)
		src = store
	default:
		hc := xhttp.NewClient(
			xhttp.WithTimeout(cfg.Finnhub.Timeout),
			xhttp.WithRateLimit(cfg.Finnhub.RequestsPerSec),
			xhttp.WithRetry(cfg.Finnhub.MaxRetryTime),
		)
		src = finnhub.New(cfg.Finnhub.APIKey, cfg.Finnhub.BaseURL, hc)
	}
	if cache == nil {
		return src
	}
	return icache.NewCachedSource(src, cache, cfg.Cache.TTL, l)
}

// ProvidePanelAssembler creates the assembler; fetched bars are archived to
// ClickHouse when requested and the source is not ClickHouse itself.
func ProvidePanelAssembler(cfg *config.Config, src repository.PriceSource, ch *pkgch.Client, m repository.Metrics, l *applogger.Logger) *panel.Assembler {
	opts := []panel.Option{panel.WithMetrics(m)}
	if cfg.Source.ArchivePrices && cfg.Source.Type != "clickhouse" && ch != nil {
		store := internalrepo.NewCHPriceStore(ch, cfg.ClickHouse.PriceTable)
		store.SetLogger(l)
		opts = append(opts, panel.WithArchive(store))
	}
	return panel.NewAssembler(src, l, opts...)
}

// ProvideEvaluator creates the walk-forward evaluator over random forests.
func ProvideEvaluator(m repository.Metrics, l *applogger.Logger) *evaluation.Evaluator {
	return evaluation.NewEvaluator(evaluation.ForestFactory, m, l)
}

// ProvideRunSinks collects the enabled run sinks.
func ProvideRunSinks(cfg *config.Config, ch *pkgch.Client, producer *pkgkafka.Producer) []repository.RunSink {
	var sinks []repository.RunSink
	if cfg.ClickHouse.StoreRuns && ch != nil {
		sinks = append(sinks, internalrepo.NewCHRunStore(ch, cfg.ClickHouse.RunTable, cfg.ClickHouse.ImportanceTable))
	}
	if producer != nil {
		sinks = append(sinks, internalrepo.NewKafkaRunPublisher(producer, cfg.Kafka.Topic))
	}
	return sinks
}

// ProvideShortPipeline creates the pipeline use case.
func ProvideShortPipeline(
	cfg *config.Config,
	asm *panel.Assembler,
	ev *evaluation.Evaluator,
	m repository.Metrics,
	sinks []repository.RunSink,
	l *applogger.Logger,
) *usecase.ShortPipeline {
	return usecase.NewShortPipeline(asm, ev, m, l,
		usecase.WithSinks(sinks...),
		usecase.WithConsole(os.Stdout),
		usecase.WithOutputDir(cfg.Output.Dir, cfg.Output.ExportDataset),
	)
}

// ProvideRunsHandler creates the runs HTTP handler.
func ProvideRunsHandler(p *usecase.ShortPipeline, params models.RunParams, l *applogger.Logger) *api.RunsEchoHandler {
	return api.NewRunsEchoHandler(l, p, params.Model, api.RunLimit{})
}

// ProvideHTTPServer creates the Echo server.
func ProvideHTTPServer(cfg *config.Config, h *api.RunsEchoHandler, l *applogger.Logger) *xhttp.Server {
	return xhttp.NewServer(h, l,
		xhttp.WithHost(cfg.Server.Host),
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithSlowThreshold(cfg.Server.SlowThreshold),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	p *usecase.ShortPipeline,
	params models.RunParams,
	srv *xhttp.Server,
	ch *pkgch.Client,
	cache icache.BytesCache,
	l *applogger.Logger,
) *server.App {
	return server.New(cfg, p, params, srv, ch, cache, l)
}
