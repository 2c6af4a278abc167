package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"ShortScan/internal/domain/models"
)

func f(v float64) *float64 { return &v }
func l(v int) *int         { return &v }

func fullRow(sym string, d int, label int) models.FeatureRow {
	return models.FeatureRow{
		Symbol:       sym,
		Date:         time.Date(2022, 3, d, 0, 0, 0, 0, time.UTC),
		Return1D:     f(0.01),
		Return5D:     f(0.02),
		Volatility10: f(0.003),
		MA10:         f(100),
		MA50:         f(99.5),
		Label:        l(label),
	}
}

func TestFilterDropsIncompleteRows(t *testing.T) {
	noLabel := fullRow("A", 3, 0)
	noLabel.Label = nil
	noMA := fullRow("A", 4, 1)
	noMA.MA50 = nil

	rows := []models.FeatureRow{fullRow("A", 1, 0), noLabel, fullRow("A", 2, 1), noMA, fullRow("B", 1, 1)}
	ds, err := Filter(rows)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if ds.Len() != 3 || len(ds.X) != 3 || len(ds.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", ds.Len())
	}
	if ds.Rows[1].Date.Day() != 2 || ds.Rows[2].Symbol != "B" {
		t.Fatalf("order not preserved: %+v", ds.Rows)
	}
	if ds.Y[0] != 0 || ds.Y[1] != 1 || ds.Y[2] != 1 {
		t.Fatalf("unexpected labels %v", ds.Y)
	}
	if len(ds.X[0]) != len(models.FeatureNames()) || ds.X[0][4] != 99.5 {
		t.Fatalf("unexpected feature vector %v", ds.X[0])
	}
	if c := LabelCounts(ds); c[0] != 1 || c[1] != 2 {
		t.Fatalf("unexpected label counts %v", c)
	}
}

func TestFilterEmpty(t *testing.T) {
	r := fullRow("A", 1, 0)
	r.Return1D = nil
	if _, err := Filter([]models.FeatureRow{r}); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := Filter(nil); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData for no rows, got %v", err)
	}
}

func TestExportCSV(t *testing.T) {
	ds, err := Filter([]models.FeatureRow{fullRow("A", 1, 0), fullRow("B", 2, 1)})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	var buf bytes.Buffer
	if err := ExportCSV(&buf, ds); err != nil {
		t.Fatalf("export: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	header := records[0]
	if header[0] != "symbol" || header[1] != "date" || header[len(header)-1] != "short_label" {
		t.Fatalf("unexpected header %v", header)
	}
	if records[2][0] != "B" || records[2][1] != "2022-03-02" || records[2][len(header)-1] != "1" {
		t.Fatalf("unexpected row %v", records[2])
	}
}
