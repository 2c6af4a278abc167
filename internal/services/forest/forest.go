package forest

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/floats"

	"ShortScan/internal/domain/models"
	"ShortScan/internal/domain/service"
)

// Trainer fits balanced-subsample random forests.
type Trainer struct {
	cfg Config
}

var _ service.Trainer = (*Trainer)(nil)

func NewTrainer(opts ...Option) *Trainer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Trainer{cfg: cfg}
}

// Config returns the effective hyperparameters.
func (t *Trainer) Config() Config { return t.cfg }

// Fit trains a forest on x (rows of equal width) and binary labels y.
func (t *Trainer) Fit(x [][]float64, y []int) (service.Classifier, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("fit: %w", models.ErrInsufficientData)
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit: %d rows but %d labels: %w", len(x), len(y), models.ErrShapeMismatch)
	}
	nf := len(x[0])
	for i, row := range x {
		if len(row) != nf {
			return nil, fmt.Errorf("fit: row %d has %d features, want %d: %w", i, len(row), nf, models.ErrShapeMismatch)
		}
		if y[i] != models.LabelNoShort && y[i] != models.LabelShort {
			return nil, fmt.Errorf("fit: row %d has label %d", i, y[i])
		}
	}
	if t.cfg.NEstimators < 1 || t.cfg.MinSamplesLeaf < 1 {
		return nil, fmt.Errorf("fit: n_estimators and min_samples_leaf must be positive")
	}

	maxFeatures := t.cfg.MaxFeatures
	if maxFeatures <= 0 {
		maxFeatures = int(math.Floor(math.Sqrt(float64(nf))))
	}
	if maxFeatures < 1 {
		maxFeatures = 1
	}
	if maxFeatures > nf {
		maxFeatures = nf
	}

	// Seeds are drawn up front so the result does not depend on scheduling.
	master := rand.New(rand.NewSource(t.cfg.Seed))
	seeds := make([]int64, t.cfg.NEstimators)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	trees := make([]*tree, len(seeds))
	sem := make(chan struct{}, t.cfg.workers())
	var wg sync.WaitGroup
	for i, seed := range seeds {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, seed int64) {
			defer wg.Done()
			defer func() { <-sem }()
			trees[i] = buildTree(x, y, nf, t.cfg.MinSamplesLeaf, maxFeatures, rand.New(rand.NewSource(seed)))
		}(i, seed)
	}
	wg.Wait()

	return &Forest{trees: trees, nFeatures: nf, importances: aggregateImportances(trees, nf)}, nil
}

// Forest is a trained ensemble.
type Forest struct {
	trees       []*tree
	nFeatures   int
	importances []float64
}

var _ service.Classifier = (*Forest)(nil)

// Predict returns the class with the highest mean leaf probability; ties go to LabelNoShort.
func (f *Forest) Predict(x [][]float64) []int {
	out := make([]int, len(x))
	for i, row := range x {
		p := f.Proba(row)
		if p[models.LabelShort] > p[models.LabelNoShort] {
			out[i] = models.LabelShort
		} else {
			out[i] = models.LabelNoShort
		}
	}
	return out
}

// Proba returns the mean class distribution over all trees.
func (f *Forest) Proba(row []float64) [numClasses]float64 {
	var sum [numClasses]float64
	for _, t := range f.trees {
		v := t.predict(row)
		sum[0] += v[0]
		sum[1] += v[1]
	}
	n := float64(len(f.trees))
	return [numClasses]float64{sum[0] / n, sum[1] / n}
}

// FeatureImportances returns a copy of the normalized impurity importances.
func (f *Forest) FeatureImportances() []float64 {
	return append([]float64(nil), f.importances...)
}

func (f *Forest) NumFeatures() int { return f.nFeatures }

// aggregateImportances averages per-tree normalized impurity decrease over
// trees that split at least once; without any split it is uniform.
func aggregateImportances(trees []*tree, nf int) []float64 {
	out := make([]float64, nf)
	used := 0
	for _, t := range trees {
		if t.splits() == 0 {
			continue
		}
		total := floats.Sum(t.importance)
		if total <= 0 {
			continue
		}
		imp := append([]float64(nil), t.importance...)
		floats.Scale(1/total, imp)
		floats.Add(out, imp)
		used++
	}
	total := floats.Sum(out)
	if used == 0 || total <= 0 {
		for i := range out {
			out[i] = 1 / float64(nf)
		}
		return out
	}
	floats.Scale(1/total, out)
	return out
}
