package service

// Classifier is a trained model as seen by the evaluation pipeline.
type Classifier interface {
	// Predict returns one class label per row of X.
	Predict(X [][]float64) []int
	// FeatureImportances returns one non-negative score per feature, summing to 1.
	FeatureImportances() []float64
	// NumFeatures is the width of the matrix the model was trained on.
	NumFeatures() int
}

// Trainer fits a Classifier on a training matrix.
type Trainer interface {
	Fit(X [][]float64, y []int) (Classifier, error)
}
