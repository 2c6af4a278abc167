package report

import (
	"bytes"
	"strings"
	"testing"

	"ShortScan/internal/domain/models"
)

func TestRunRendersAllSections(t *testing.T) {
	rep := models.ClassificationReport{
		Classes: [2]models.ClassMetrics{
			{Name: "No Short", Precision: 0.8, Recall: 0.9, F1: 0.85, Support: 10},
			{Name: "Short", Precision: 0.5, Recall: 0.25, F1: 0.3333, Support: 4},
		},
		Accuracy:    0.7143,
		MacroAvg:    models.ClassMetrics{Name: "macro avg", Support: 14},
		WeightedAvg: models.ClassMetrics{Name: "weighted avg", Support: 14},
		Support:     14,
	}
	run := &models.RunReport{
		Folds: []models.FoldResult{
			{Fold: models.Fold{Index: 1, TrainEnd: 10, TestStart: 10, TestEnd: 24}, Accuracy: 0.5, Report: rep},
			{Fold: models.Fold{Index: 2, TrainEnd: 24, TestStart: 24, TestEnd: 38}, Accuracy: 0.7143, Report: rep},
		},
		BestFold:    2,
		Importances: []models.ImportanceEntry{{Feature: "ma_50", Importance: 0.1}, {Feature: "return_1d", Importance: 0.9}},
		CleanRows:   38,
	}

	var buf bytes.Buffer
	Run(&buf, run)
	out := buf.String()
	for _, want := range []string{"0.7143", "No Short", "weighted avg", "return_1d", "Total clean rows: 38", "best"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "ma_50") > strings.Index(out, "return_1d") {
		t.Fatalf("importances must keep the given order")
	}
}
