package models

import "time"

// Feature column names in matrix order.
const (
	FeatureReturn1D     = "return_1d"
	FeatureReturn5D     = "return_5d"
	FeatureVolatility10 = "volatility_10"
	FeatureMA10         = "ma_10"
	FeatureMA50         = "ma_50"
)

// FeatureNames lists the model inputs in the column order of Dataset.X.
func FeatureNames() []string {
	return []string{FeatureReturn1D, FeatureReturn5D, FeatureVolatility10, FeatureMA10, FeatureMA50}
}

// Label values.
const (
	LabelNoShort = 0
	LabelShort   = 1
)

// FeatureRow holds indicators and the forward label of one panel record.
// A nil field is undefined: its window reaches outside the symbol's history.
type FeatureRow struct {
	Symbol       string
	Date         time.Time
	Close        float64
	Return1D     *float64
	Return5D     *float64
	Volatility10 *float64
	MA10         *float64
	MA50         *float64
	Label        *int
}

// Complete reports whether every feature and the label are defined.
func (r FeatureRow) Complete() bool {
	return r.Return1D != nil && r.Return5D != nil && r.Volatility10 != nil &&
		r.MA10 != nil && r.MA50 != nil && r.Label != nil
}

// CleanRow is a FeatureRow with all values defined.
type CleanRow struct {
	Symbol       string    `json:"symbol"`
	Date         time.Time `json:"date"`
	Return1D     float64   `json:"return_1d"`
	Return5D     float64   `json:"return_5d"`
	Volatility10 float64   `json:"volatility_10"`
	MA10         float64   `json:"ma_10"`
	MA50         float64   `json:"ma_50"`
	Label        int       `json:"short_label"`
}

// Vector returns the features in FeatureNames order.
func (r CleanRow) Vector() []float64 {
	return []float64{r.Return1D, r.Return5D, r.Volatility10, r.MA10, r.MA50}
}

// Dataset is the training universe: rows plus the aligned matrix and labels.
type Dataset struct {
	Rows         []CleanRow
	X            [][]float64
	Y            []int
	FeatureNames []string
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Y) }
