package forest

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"testing"

	"ShortScan/internal/domain/models"
)

func noisyData(n int, seed int64) ([][]float64, []int) {
	rng := rand.New(rand.NewSource(seed))
	x := make([][]float64, n)
	y := make([]int, n)
	for i := range x {
		x[i] = []float64{rng.NormFloat64(), rng.NormFloat64(), rng.Float64(), rng.NormFloat64(), rng.Float64()}
		if x[i][0]+0.5*x[i][3]+0.3*rng.NormFloat64() > 0.8 {
			y[i] = 1
		}
	}
	return x, y
}

func TestFitDeterministicAcrossJobs(t *testing.T) {
	x, y := noisyData(300, 7)

	var (
		preds [][]int
		imps  [][]float64
	)
	for _, jobs := range []int{1, 2, 8} {
		model, err := NewTrainer(WithEstimators(25), WithMinSamplesLeaf(3), WithSeed(42), WithJobs(jobs)).Fit(x, y)
		if err != nil {
			t.Fatalf("fit jobs=%d: %v", jobs, err)
		}
		preds = append(preds, model.Predict(x))
		imps = append(imps, model.FeatureImportances())
	}
	for i := 1; i < len(preds); i++ {
		if !reflect.DeepEqual(preds[0], preds[i]) {
			t.Fatalf("predictions differ between worker counts")
		}
		if !reflect.DeepEqual(imps[0], imps[i]) {
			t.Fatalf("importances differ between worker counts: %v vs %v", imps[0], imps[i])
		}
	}
}

func TestFitSeedChangesModel(t *testing.T) {
	x, y := noisyData(200, 3)
	a, _ := NewTrainer(WithEstimators(10), WithSeed(1)).Fit(x, y)
	b, _ := NewTrainer(WithEstimators(10), WithSeed(2)).Fit(x, y)
	if reflect.DeepEqual(a.FeatureImportances(), b.FeatureImportances()) {
		t.Fatalf("different seeds should grow different forests")
	}
}

func TestImportancesSumToOne(t *testing.T) {
	x, y := noisyData(250, 11)
	model, err := NewTrainer(WithEstimators(30), WithMinSamplesLeaf(5)).Fit(x, y)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	imp := model.FeatureImportances()
	if len(imp) != model.NumFeatures() || model.NumFeatures() != 5 {
		t.Fatalf("unexpected importance length %d", len(imp))
	}
	sum := 0.0
	for _, v := range imp {
		if v < 0 {
			t.Fatalf("negative importance %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("importances sum to %v", sum)
	}
}

func TestSeparableData(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	var (
		x [][]float64
		y []int
	)
	for i := 0; i < 100; i++ {
		x = append(x, []float64{float64(i), rng.Float64()})
		if i >= 50 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	model, err := NewTrainer(WithEstimators(20), WithMinSamplesLeaf(1), WithMaxFeatures(2)).Fit(x, y)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	got := model.Predict([][]float64{{5, 0.5}, {20, 0.1}, {80, 0.9}, {99, 0.3}})
	want := []int{0, 0, 1, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	imp := model.FeatureImportances()
	if imp[0] <= imp[1] {
		t.Fatalf("signal feature should dominate: %v", imp)
	}
}

func TestSingleClassTraining(t *testing.T) {
	x := [][]float64{{1, 2}, {2, 3}, {3, 4}, {4, 5}}
	y := []int{0, 0, 0, 0}
	model, err := NewTrainer(WithEstimators(5)).Fit(x, y)
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	for _, p := range model.Predict(x) {
		if p != models.LabelNoShort {
			t.Fatalf("expected only class 0 predictions")
		}
	}
	imp := model.FeatureImportances()
	if imp[0] != 0.5 || imp[1] != 0.5 {
		t.Fatalf("expected uniform importances without splits, got %v", imp)
	}
}

func TestFitShapeErrors(t *testing.T) {
	tr := NewTrainer(WithEstimators(2))
	if _, err := tr.Fit([][]float64{{1}, {2}}, []int{0}); !errors.Is(err, models.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	if _, err := tr.Fit([][]float64{{1, 2}, {2}}, []int{0, 1}); !errors.Is(err, models.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch for ragged rows, got %v", err)
	}
	if _, err := tr.Fit(nil, nil); err == nil {
		t.Fatalf("expected error for empty training set")
	}
	if _, err := tr.Fit([][]float64{{1}}, []int{2}); err == nil {
		t.Fatalf("expected error for unknown label")
	}
}

func TestBootstrapWeightsBalanced(t *testing.T) {
	y := []int{0, 0, 0, 1}
	counts := []int{2, 1, 0, 1} // 3 of class 0, 1 of class 1
	w := bootstrapWeights(y, counts)
	// class 0 weight = 4/(2*3), class 1 weight = 4/(2*1)
	want := []float64{2 * 4.0 / 6, 4.0 / 6, 0, 2}
	for i := range w {
		if math.Abs(w[i]-want[i]) > 1e-12 {
			t.Fatalf("weight %d: got %v want %v", i, w[i], want[i])
		}
	}
}

func TestMinSamplesLeafRespected(t *testing.T) {
	x, y := noisyData(120, 9)
	rng := rand.New(rand.NewSource(1))
	tr := buildTree(x, y, 5, 10, 2, rng)
	var walk func(i int) int
	walk = func(i int) int {
		n := tr.nodes[i]
		if n.leaf {
			return 1
		}
		return walk(n.left) + walk(n.right)
	}
	if walk(0) == 0 {
		t.Fatalf("tree has no leaves")
	}
	// Every leaf must hold at least 10 distinct training rows that reach it.
	reach := make(map[int]map[int]bool)
	for r, row := range x {
		i := 0
		for !tr.nodes[i].leaf {
			n := tr.nodes[i]
			if row[n.feature] <= n.threshold {
				i = n.left
			} else {
				i = n.right
			}
		}
		if reach[i] == nil {
			reach[i] = map[int]bool{}
		}
		reach[i][r] = true
	}
	for leaf, rows := range reach {
		if tr.splits() > 0 && len(rows) < 10 {
			t.Fatalf("leaf %d reached by %d rows", leaf, len(rows))
		}
	}
}
