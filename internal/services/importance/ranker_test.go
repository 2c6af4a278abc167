package importance

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"

	"ShortScan/internal/domain/models"
)

type fixedModel struct{ imp []float64 }

func (m fixedModel) Predict(x [][]float64) []int   { return make([]int, len(x)) }
func (m fixedModel) FeatureImportances() []float64 { return m.imp }
func (m fixedModel) NumFeatures() int              { return len(m.imp) }

func TestRankAscending(t *testing.T) {
	m := fixedModel{imp: []float64{0.3, 0.1, 0.2, 0.1, 0.3}}
	got, err := Rank(m, models.FeatureNames())
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	want := []string{
		models.FeatureReturn5D, models.FeatureMA10, models.FeatureVolatility10,
		models.FeatureReturn1D, models.FeatureMA50,
	}
	for i, w := range want {
		if got[i].Feature != w {
			t.Fatalf("position %d: got %s want %s", i, got[i].Feature, w)
		}
		if i > 0 && got[i].Importance < got[i-1].Importance {
			t.Fatalf("not ascending at %d", i)
		}
	}
}

func TestRankShapeMismatch(t *testing.T) {
	m := fixedModel{imp: []float64{0.5, 0.5}}
	if _, err := Rank(m, models.FeatureNames()); !errors.Is(err, models.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	var buf bytes.Buffer
	entries := []models.ImportanceEntry{{Feature: "ma_10", Importance: 0.25}, {Feature: "ma_50", Importance: 0.75}}
	if err := ExportCSV(&buf, entries); err != nil {
		t.Fatalf("export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != "feature" || rows[2][0] != "ma_50" {
		t.Fatalf("unexpected csv %v", rows)
	}
}
