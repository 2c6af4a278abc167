package usecase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"ShortScan/internal/domain/models"
	drepo "ShortScan/internal/domain/repository"
	"ShortScan/internal/services/dataset"
	"ShortScan/internal/services/evaluation"
	"ShortScan/internal/services/features"
	"ShortScan/internal/services/importance"
	"ShortScan/internal/services/panel"
	"ShortScan/internal/services/report"
	"ShortScan/internal/trace"
	"ShortScan/pkg/logger"
)

const (
	datasetFile    = "dataset.csv"
	importanceFile = "feature_importance.csv"
)

// ShortPipeline runs assemble -> features -> filter -> walk-forward -> importance
// and keeps the latest finished report.
type ShortPipeline struct {
	assembler *panel.Assembler
	evaluator *evaluation.Evaluator
	sinks     []drepo.RunSink
	metrics   drepo.Metrics
	log       *logger.Logger

	console       io.Writer
	outputDir     string
	exportDataset bool

	runMu    sync.Mutex
	latestMu sync.RWMutex
	latest   *models.RunReport
}

type PipelineOption func(*ShortPipeline)

// WithSinks publishes every finished run to the given sinks.
func WithSinks(sinks ...drepo.RunSink) PipelineOption {
	return func(p *ShortPipeline) { p.sinks = append(p.sinks, sinks...) }
}

// WithConsole renders the report tables to w.
func WithConsole(w io.Writer) PipelineOption {
	return func(p *ShortPipeline) { p.console = w }
}

// WithOutputDir writes CSV artifacts under dir. An empty dir disables them.
func WithOutputDir(dir string, exportDataset bool) PipelineOption {
	return func(p *ShortPipeline) {
		p.outputDir = dir
		p.exportDataset = exportDataset
	}
}

// NewShortPipeline creates a new ShortPipeline instance.
func NewShortPipeline(assembler *panel.Assembler, evaluator *evaluation.Evaluator, metrics drepo.Metrics, log *logger.Logger, opts ...PipelineOption) *ShortPipeline {
	if log == nil {
		log = logger.Nop()
	}
	p := &ShortPipeline{assembler: assembler, evaluator: evaluator, metrics: metrics, log: log}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full evaluation. Concurrent calls are serialized.
func (p *ShortPipeline) Run(ctx context.Context, params models.RunParams) (*models.RunReport, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	started := time.Now()
	rep := &models.RunReport{RunID: uuid.NewString(), Params: params, StartedAt: started.UTC()}
	log := p.log.With(logger.String("run_id", rep.RunID))

	ctx, span := trace.StartSpan(ctx, "pipeline.run", attribute.String("run_id", rep.RunID))
	defer span.End()
	if id, ok := trace.TraceID(ctx); ok {
		log = log.With(logger.String("trace_id", id))
	}

	// Assemble
	sctx, s := trace.StartSpan(ctx, "pipeline.assemble", attribute.Int("symbols", len(params.Symbols)))
	pn, skipped, err := p.assembler.Assemble(sctx, params.Symbols, params.Start, params.End)
	s.End()
	if err != nil {
		p.recordError("assemble")
		return nil, fmt.Errorf("assemble panel: %w", err)
	}
	rep.Symbols = pn.Symbols()
	rep.Skipped = skipped
	rep.PanelRows = len(pn)

	// Features + filter
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, s = trace.StartSpan(ctx, "pipeline.features", attribute.Int("rows", len(pn)))
	ds, err := dataset.Filter(features.Engineer(pn))
	s.End()
	if err != nil {
		p.recordError("features")
		return nil, fmt.Errorf("build dataset from %d records: %w", len(pn), err)
	}
	rep.CleanRows = ds.Len()
	counts := dataset.LabelCounts(ds)
	log.Info(fmt.Sprintf("Total clean rows: %d", ds.Len()),
		logger.Int("clean_rows", ds.Len()),
		logger.Int("short_labels", counts[models.LabelShort]),
		logger.Int("panel_rows", len(pn)),
	)
	if p.metrics != nil {
		p.metrics.RecordCleanRows(ds.Len())
	}

	// Walk-forward
	ectx, s := trace.StartSpan(ctx, "pipeline.evaluate", attribute.Int("splits", params.Model.Splits))
	ev, err := p.evaluator.Evaluate(ectx, ds, params.Model)
	s.End()
	if err != nil {
		p.recordError("evaluate")
		return nil, fmt.Errorf("walk-forward evaluation: %w", err)
	}
	rep.Folds = ev.Folds
	rep.BestFold = ev.BestFold

	rep.Importances, err = importance.Rank(ev.Best, ds.FeatureNames)
	if err != nil {
		p.recordError("importance")
		return nil, fmt.Errorf("rank importances: %w", err)
	}
	if best, ok := rep.Best(); ok {
		log.Info("best fold",
			logger.Int("fold", best.Fold.Index),
			logger.Float64("accuracy", best.Accuracy),
			logger.Float64("short_f1", best.Report.Classes[models.LabelShort].F1),
		)
	}

	rep.Duration = time.Since(started)
	if p.metrics != nil {
		p.metrics.RecordLatency("run", rep.Duration.Seconds())
	}

	if err := p.export(ds, rep); err != nil {
		// Artifacts are a convenience; the run itself succeeded.
		log.Warn("export artifacts failed", logger.Error(err))
		p.recordError("export")
	}
	if p.console != nil {
		report.Run(p.console, rep)
	}
	p.publish(ctx, log, rep)

	p.latestMu.Lock()
	p.latest = rep
	p.latestMu.Unlock()
	return rep, nil
}

// Latest returns the most recent successful run.
func (p *ShortPipeline) Latest() (*models.RunReport, bool) {
	p.latestMu.RLock()
	defer p.latestMu.RUnlock()
	return p.latest, p.latest != nil
}

func (p *ShortPipeline) export(ds *models.Dataset, rep *models.RunReport) error {
	if p.outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if p.exportDataset {
		if err := writeFile(filepath.Join(p.outputDir, datasetFile), func(w io.Writer) error {
			return dataset.ExportCSV(w, ds)
		}); err != nil {
			return err
		}
	}
	return writeFile(filepath.Join(p.outputDir, importanceFile), func(w io.Writer) error {
		return importance.ExportCSV(w, rep.Importances)
	})
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// publish hands the report to every sink; failures are logged only.
func (p *ShortPipeline) publish(ctx context.Context, log *logger.Logger, rep *models.RunReport) {
	for _, sink := range p.sinks {
		sctx, s := trace.StartSpan(ctx, "pipeline.sink", attribute.String("sink", sink.Name()))
		err := sink.SaveRun(sctx, rep)
		s.End()
		if err != nil {
			log.Warn("run sink failed", logger.String("sink", sink.Name()), logger.Error(err))
			p.recordError("sink_" + sink.Name())
			continue
		}
		log.Debug("run published", logger.String("sink", sink.Name()))
	}
}

// Close releases every sink.
func (p *ShortPipeline) Close() error {
	var first error
	for _, sink := range p.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (p *ShortPipeline) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}
