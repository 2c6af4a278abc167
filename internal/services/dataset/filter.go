package dataset

import (
	"ShortScan/internal/domain/models"
)

// Filter keeps the rows whose features and label are all defined, in input
// order, and builds the aligned feature matrix and label vector.
func Filter(rows []models.FeatureRow) (*models.Dataset, error) {
	ds := &models.Dataset{FeatureNames: models.FeatureNames()}
	for _, r := range rows {
		if !r.Complete() {
			continue
		}
		clean := models.CleanRow{
			Symbol:       r.Symbol,
			Date:         r.Date,
			Return1D:     *r.Return1D,
			Return5D:     *r.Return5D,
			Volatility10: *r.Volatility10,
			MA10:         *r.MA10,
			MA50:         *r.MA50,
			Label:        *r.Label,
		}
		ds.Rows = append(ds.Rows, clean)
		ds.X = append(ds.X, clean.Vector())
		ds.Y = append(ds.Y, clean.Label)
	}
	if ds.Len() == 0 {
		return nil, models.ErrInsufficientData
	}
	return ds, nil
}

// LabelCounts returns the number of rows per label.
func LabelCounts(ds *models.Dataset) [2]int {
	var out [2]int
	for _, y := range ds.Y {
		out[y]++
	}
	return out
}
