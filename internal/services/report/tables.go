package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"ShortScan/internal/domain/models"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func pct(v float64) string { return fmt.Sprintf("%.4f", v) }

// Folds renders one line per fold with its block sizes and accuracy.
func Folds(w io.Writer, folds []models.FoldResult, best int) {
	t := newTable(w, "Walk-forward folds")
	t.AppendHeader(table.Row{"Fold", "Train", "Test", "Accuracy", ""})
	for _, f := range folds {
		mark := ""
		if f.Fold.Index == best {
			mark = "best"
		}
		t.AppendRow(table.Row{f.Fold.Index, f.Fold.TrainSize(), f.Fold.TestSize(), pct(f.Accuracy), mark})
	}
	t.Render()
}

// Classification renders a classification report in the usual
// precision/recall/f1/support layout.
func Classification(w io.Writer, title string, rep models.ClassificationReport) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"", "Precision", "Recall", "F1-score", "Support"})
	for _, c := range rep.Classes {
		t.AppendRow(table.Row{c.Name, pct(c.Precision), pct(c.Recall), pct(c.F1), c.Support})
	}
	t.AppendSeparator()
	t.AppendRow(table.Row{"accuracy", "", "", pct(rep.Accuracy), rep.Support})
	for _, c := range []models.ClassMetrics{rep.MacroAvg, rep.WeightedAvg} {
		t.AppendRow(table.Row{c.Name, pct(c.Precision), pct(c.Recall), pct(c.F1), c.Support})
	}
	t.Render()
}

// Importances renders features in the given (ascending) order.
func Importances(w io.Writer, entries []models.ImportanceEntry) {
	t := newTable(w, "Feature importance")
	t.AppendHeader(table.Row{"Feature", "Importance"})
	for _, e := range entries {
		t.AppendRow(table.Row{e.Feature, pct(e.Importance)})
	}
	t.Render()
}

// Run renders the full console summary of a finished run.
func Run(w io.Writer, r *models.RunReport) {
	Folds(w, r.Folds, r.BestFold)
	if best, ok := r.Best(); ok {
		Classification(w, fmt.Sprintf("Best fold %d (accuracy %s)", best.Fold.Index, pct(best.Accuracy)), best.Report)
	}
	Importances(w, r.Importances)
	fmt.Fprintf(w, "Total clean rows: %d\n", r.CleanRows)
}
