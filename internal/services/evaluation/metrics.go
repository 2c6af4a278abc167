package evaluation

import (
	"gonum.org/v1/gonum/stat"

	"ShortScan/internal/domain/models"
)

// Accuracy is the share of positions where prediction equals truth.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue))
}

// Classify computes per-class precision, recall and F1 plus macro and
// support-weighted averages. Undefined ratios are reported as 0.
func Classify(yTrue, yPred []int) models.ClassificationReport {
	var tp, fp, fn, support [2]int
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		support[t]++
		if t == p {
			tp[t]++
		} else {
			fp[p]++
			fn[t]++
		}
	}

	rep := models.ClassificationReport{
		Accuracy: Accuracy(yTrue, yPred),
		Support:  len(yTrue),
	}
	var prec, rec, f1, weights [2]float64
	for c := range rep.Classes {
		prec[c] = ratio(tp[c], tp[c]+fp[c])
		rec[c] = ratio(tp[c], tp[c]+fn[c])
		if prec[c]+rec[c] > 0 {
			f1[c] = 2 * prec[c] * rec[c] / (prec[c] + rec[c])
		}
		weights[c] = float64(support[c])
		rep.Classes[c] = models.ClassMetrics{
			Name:      models.ClassNames[c],
			Precision: prec[c],
			Recall:    rec[c],
			F1:        f1[c],
			Support:   support[c],
		}
	}

	rep.MacroAvg = models.ClassMetrics{
		Name:      "macro avg",
		Precision: stat.Mean(prec[:], nil),
		Recall:    stat.Mean(rec[:], nil),
		F1:        stat.Mean(f1[:], nil),
		Support:   len(yTrue),
	}
	rep.WeightedAvg = models.ClassMetrics{Name: "weighted avg", Support: len(yTrue)}
	if len(yTrue) > 0 {
		rep.WeightedAvg.Precision = stat.Mean(prec[:], weights[:])
		rep.WeightedAvg.Recall = stat.Mean(rec[:], weights[:])
		rep.WeightedAvg.F1 = stat.Mean(f1[:], weights[:])
	}
	return rep
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
