package features

import (
	"ShortScan/internal/domain/models"
)

const (
	// ShortHorizon is the number of sessions after t searched for a decline.
	ShortHorizon = 5
	// ShortDropThreshold is the minimum peak-to-trough decline labeled as a short.
	ShortDropThreshold = 0.03

	volatilityWindow = 10
	fastMAWindow     = 10
	slowMAWindow     = 50
)

// Engineer computes indicators and the short label for every panel record.
// Each symbol is processed on its own, so no window crosses a symbol boundary.
func Engineer(panel models.Panel) []models.FeatureRow {
	out := make([]models.FeatureRow, 0, len(panel))
	for _, seg := range panel.Segments() {
		out = append(out, engineerSymbol(panel[seg.Start:seg.End])...)
	}
	return out
}

func engineerSymbol(records []models.PriceRecord) []models.FeatureRow {
	closes := make([]float64, len(records))
	for i, r := range records {
		closes[i] = r.Close
	}

	ret1 := PctChange(closes, 1)
	ret5 := PctChange(closes, 5)
	ma10 := RollingMean(closes, fastMAWindow)
	ma50 := RollingMean(closes, slowMAWindow)
	vol10 := RollingStd(ret1, volatilityWindow)
	labels := ShortLabels(closes)

	rows := make([]models.FeatureRow, len(records))
	for i, r := range records {
		rows[i] = models.FeatureRow{
			Symbol:       r.Symbol,
			Date:         r.Date,
			Close:        r.Close,
			Return1D:     ret1[i],
			Return5D:     ret5[i],
			Volatility10: vol10[i],
			MA10:         ma10[i],
			MA50:         ma50[i],
			Label:        labels[i],
		}
	}
	return rows
}

// ShortLabels marks t as a short opportunity when the lowest close of the
// next ShortHorizon sessions is at least ShortDropThreshold below close[t].
// The label only looks at strictly later sessions.
func ShortLabels(closes []float64) []*int {
	futureMin := ForwardMin(closes, ShortHorizon)
	out := make([]*int, len(closes))
	for t, fm := range futureMin {
		if fm == nil || closes[t] == 0 {
			continue
		}
		label := models.LabelNoShort
		if DropRatio(closes[t], *fm) >= ShortDropThreshold {
			label = models.LabelShort
		}
		out[t] = &label
	}
	return out
}

// DropRatio is the relative decline from price to trough.
func DropRatio(price, trough float64) float64 {
	return (price - trough) / price
}
