package evaluation

import (
	"context"
	"fmt"
	"time"

	"ShortScan/internal/domain/models"
	domrepo "ShortScan/internal/domain/repository"
	"ShortScan/internal/domain/service"
	"ShortScan/internal/services/forest"
	"ShortScan/pkg/logger"
)

// Split partitions [0, n) into k+1 contiguous blocks and returns k expanding
// folds: fold i trains on blocks [0, i) and tests on block i. Test blocks are
// n/(k+1) rows; the first block takes the remainder.
func Split(n, k int) ([]models.Fold, error) {
	if k <= 0 {
		return nil, fmt.Errorf("split %d rows into %d folds: %w", n, k, models.ErrNoFolds)
	}
	if k+1 > n {
		return nil, fmt.Errorf("split %d rows into %d folds: %w", n, k, models.ErrInsufficientSplits)
	}
	testSize := n / (k + 1)
	first := n - k*testSize
	folds := make([]models.Fold, k)
	for i := range folds {
		testStart := first + i*testSize
		folds[i] = models.Fold{
			Index:      i + 1,
			TrainStart: 0,
			TrainEnd:   testStart,
			TestStart:  testStart,
			TestEnd:    testStart + testSize,
		}
	}
	return folds, nil
}

// TrainerFactory builds the per-fold model trainer.
type TrainerFactory func(p models.ModelParams) service.Trainer

// ForestFactory trains the balanced random forest.
func ForestFactory(p models.ModelParams) service.Trainer {
	return forest.NewTrainer(
		forest.WithEstimators(p.NEstimators),
		forest.WithMinSamplesLeaf(p.MinSamplesLeaf),
		forest.WithSeed(p.Seed),
		forest.WithJobs(p.Jobs),
	)
}

// Evaluation is the outcome of a walk-forward run.
type Evaluation struct {
	Folds    []models.FoldResult
	BestFold int
	Best     service.Classifier
}

// Evaluator scores one model per fold.
type Evaluator struct {
	factory TrainerFactory
	metrics domrepo.Metrics
	log     *logger.Logger
}

func NewEvaluator(factory TrainerFactory, metrics domrepo.Metrics, log *logger.Logger) *Evaluator {
	if factory == nil {
		factory = ForestFactory
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Evaluator{factory: factory, metrics: metrics, log: log}
}

// Evaluate trains and scores a fresh model on every fold. The best fold is
// the one with strictly highest accuracy; ties keep the earlier fold.
func (e *Evaluator) Evaluate(ctx context.Context, ds *models.Dataset, p models.ModelParams) (*Evaluation, error) {
	folds, err := Split(ds.Len(), p.Splits)
	if err != nil {
		return nil, err
	}

	out := &Evaluation{Folds: make([]models.FoldResult, 0, len(folds))}
	bestAcc := -1.0
	for _, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		t0 := time.Now()
		model, err := e.factory(p).Fit(ds.X[fold.TrainStart:fold.TrainEnd], ds.Y[fold.TrainStart:fold.TrainEnd])
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", fold.Index, err)
		}
		yTrue := ds.Y[fold.TestStart:fold.TestEnd]
		yPred := model.Predict(ds.X[fold.TestStart:fold.TestEnd])
		rep := Classify(yTrue, yPred)

		res := models.FoldResult{Fold: fold, Accuracy: rep.Accuracy, Report: rep}
		out.Folds = append(out.Folds, res)
		e.log.Info(fmt.Sprintf("Fold %d accuracy: %.4f", fold.Index, res.Accuracy),
			logger.Int("fold", fold.Index),
			logger.Int("train_rows", fold.TrainSize()),
			logger.Int("test_rows", fold.TestSize()),
			logger.Float64("accuracy", res.Accuracy),
			logger.Duration("elapsed", time.Since(t0)),
		)
		if e.metrics != nil {
			e.metrics.RecordFoldAccuracy(fold.Index, res.Accuracy)
			e.metrics.RecordLatency("fold", time.Since(t0).Seconds())
		}

		if res.Accuracy > bestAcc {
			bestAcc = res.Accuracy
			out.BestFold = fold.Index
			out.Best = model
		}
	}
	return out, nil
}
