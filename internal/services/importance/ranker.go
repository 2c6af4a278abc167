package importance

import (
	"fmt"
	"io"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"ShortScan/internal/domain/models"
	"ShortScan/internal/domain/service"
)

// Rank pairs the model's importances with feature names, ascending by
// importance. Equal importances keep feature order.
func Rank(model service.Classifier, names []string) ([]models.ImportanceEntry, error) {
	imp := model.FeatureImportances()
	if len(names) != model.NumFeatures() || len(imp) != len(names) {
		return nil, fmt.Errorf("rank %d names against %d features (%d importances): %w",
			len(names), model.NumFeatures(), len(imp), models.ErrShapeMismatch)
	}
	out := make([]models.ImportanceEntry, len(names))
	for i, name := range names {
		out[i] = models.ImportanceEntry{Feature: name, Importance: imp[i]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Importance < out[j].Importance })
	return out, nil
}

// ExportCSV writes the ranked importances as a two-column CSV.
func ExportCSV(w io.Writer, entries []models.ImportanceEntry) error {
	names := make([]string, len(entries))
	values := make([]float64, len(entries))
	for i, e := range entries {
		names[i] = e.Feature
		values[i] = e.Importance
	}
	df := dataframe.New(
		series.New(names, series.String, "feature"),
		series.New(values, series.Float, "importance"),
	)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}
