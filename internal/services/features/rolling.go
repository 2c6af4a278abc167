package features

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PctChange returns x[t]/x[t-lag] - 1; the first lag entries are undefined.
func PctChange(x []float64, lag int) []*float64 {
	out := make([]*float64, len(x))
	for t := lag; t < len(x); t++ {
		if x[t-lag] == 0 {
			continue
		}
		v := x[t]/x[t-lag] - 1
		out[t] = &v
	}
	return out
}

// RollingMean is the trailing mean over window values inclusive of t.
func RollingMean(x []float64, window int) []*float64 {
	out := make([]*float64, len(x))
	for t := window - 1; t < len(x); t++ {
		v := stat.Mean(x[t-window+1:t+1], nil)
		out[t] = &v
	}
	return out
}

// RollingStd is the trailing sample standard deviation over window values.
// A window containing an undefined value is undefined.
func RollingStd(x []*float64, window int) []*float64 {
	out := make([]*float64, len(x))
	buf := make([]float64, window)
outer:
	for t := window - 1; t < len(x); t++ {
		for i := 0; i < window; i++ {
			p := x[t-window+1+i]
			if p == nil {
				continue outer
			}
			buf[i] = *p
		}
		v := stat.StdDev(buf, nil)
		out[t] = &v
	}
	return out
}

// ForwardMin is the minimum of x[t+1..t+horizon]; undefined when fewer
// than horizon values follow t.
func ForwardMin(x []float64, horizon int) []*float64 {
	out := make([]*float64, len(x))
	for t := 0; t+horizon < len(x); t++ {
		v := floats.Min(x[t+1 : t+horizon+1])
		out[t] = &v
	}
	return out
}
