package models

// Requests for the runs HTTP endpoints. Defined in domain for consistency and reuse.

type RunRequest struct {
	Symbols        []string `json:"symbols" validate:"required,min=1,dive,required"`
	Start          string   `json:"start" default:"2015-01-01" validate:"required,datetime=2006-01-02"`
	End            string   `json:"end" default:"2024-01-01" validate:"required,datetime=2006-01-02"`
	Splits         int      `json:"splits" default:"5" validate:"gte=1,lte=50"`
	NEstimators    int      `json:"n_estimators" default:"400" validate:"gte=1,lte=5000"`
	MinSamplesLeaf int      `json:"min_samples_leaf" default:"5" validate:"gte=1"`
}
