package models

import "time"

// Fold is one expanding-window partition over dataset row indices.
// Ranges are half-open; train always ends where test starts.
type Fold struct {
	Index      int `json:"index"`
	TrainStart int `json:"train_start"`
	TrainEnd   int `json:"train_end"`
	TestStart  int `json:"test_start"`
	TestEnd    int `json:"test_end"`
}

// TrainSize returns the number of training rows.
func (f Fold) TrainSize() int { return f.TrainEnd - f.TrainStart }

// TestSize returns the number of test rows.
func (f Fold) TestSize() int { return f.TestEnd - f.TestStart }

// ClassNames are the report labels for LabelNoShort and LabelShort.
var ClassNames = [2]string{"No Short", "Short"}

// ClassMetrics holds precision/recall/F1 for one class (or an average).
type ClassMetrics struct {
	Name      string  `json:"name"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// ClassificationReport summarizes predictions on one test block.
type ClassificationReport struct {
	Classes     [2]ClassMetrics `json:"classes"`
	Accuracy    float64         `json:"accuracy"`
	MacroAvg    ClassMetrics    `json:"macro_avg"`
	WeightedAvg ClassMetrics    `json:"weighted_avg"`
	Support     int             `json:"support"`
}

// FoldResult is the score of one fold.
type FoldResult struct {
	Fold     Fold                 `json:"fold"`
	Accuracy float64              `json:"accuracy"`
	Report   ClassificationReport `json:"report"`
}

// ImportanceEntry pairs a feature with its normalized importance.
type ImportanceEntry struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelParams configures the per-fold classifier.
type ModelParams struct {
	Splits         int   `json:"splits"`
	NEstimators    int   `json:"n_estimators"`
	MinSamplesLeaf int   `json:"min_samples_leaf"`
	Seed           int64 `json:"seed"`
	Jobs           int   `json:"jobs"`
}

// RunParams are the inputs of one pipeline run.
type RunParams struct {
	Symbols []string    `json:"symbols"`
	Start   time.Time   `json:"start"`
	End     time.Time   `json:"end"`
	Model   ModelParams `json:"model"`
}

// RunReport is the outcome of one pipeline run.
type RunReport struct {
	RunID       string            `json:"run_id"`
	Params      RunParams         `json:"params"`
	Symbols     []string          `json:"symbols"`
	Skipped     []string          `json:"skipped"`
	PanelRows   int               `json:"panel_rows"`
	CleanRows   int               `json:"clean_rows"`
	Folds       []FoldResult      `json:"folds"`
	BestFold    int               `json:"best_fold"`
	Importances []ImportanceEntry `json:"importances"`
	StartedAt   time.Time         `json:"started_at"`
	Duration    time.Duration     `json:"duration"`
}

// Best returns the result of the best fold, or false if it is missing.
func (r *RunReport) Best() (FoldResult, bool) {
	for _, f := range r.Folds {
		if f.Fold.Index == r.BestFold {
			return f, true
		}
	}
	return FoldResult{}, false
}
