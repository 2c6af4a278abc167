package dataset

import (
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"ShortScan/internal/domain/models"
	"ShortScan/pkg/util"
)

// Frame converts the clean dataset to a dataframe with one column per field.
func Frame(ds *models.Dataset) dataframe.DataFrame {
	n := ds.Len()
	symbols := make([]string, n)
	dates := make([]string, n)
	cols := make([][]float64, len(ds.FeatureNames))
	for j := range cols {
		cols[j] = make([]float64, n)
	}
	for i, r := range ds.Rows {
		symbols[i] = r.Symbol
		dates[i] = r.Date.Format(util.DateLayout)
		for j, v := range ds.X[i] {
			cols[j][i] = v
		}
	}

	all := []series.Series{
		series.New(symbols, series.String, "symbol"),
		series.New(dates, series.String, "date"),
	}
	for j, name := range ds.FeatureNames {
		all = append(all, series.New(cols[j], series.Float, name))
	}
	all = append(all, series.New(ds.Y, series.Int, "short_label"))
	return dataframe.New(all...)
}

// ExportCSV writes the dataset as CSV with a header row.
func ExportCSV(w io.Writer, ds *models.Dataset) error {
	df := Frame(ds)
	if df.Err != nil {
		return df.Err
	}
	return df.WriteCSV(w)
}
