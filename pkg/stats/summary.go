package stats

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of a field
type Summary struct {
	N    int
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// Summarize returns the count, population mean and standard deviation, and
// range of values. An empty input yields NaN statistics.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		nan := math.NaN()
		return Summary{Mean: nan, Std: nan, Min: nan, Max: nan}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	return Summary{
		N:    len(values),
		Mean: mean,
		Std:  std,
		Min:  floats.Min(values),
		Max:  floats.Max(values),
	}
}

// Binarize turns the interpolated output of a volume-to-vertex evaluation
// into a clean 0/1 mask: values below threshold become 1 and the others 0,
// or the opposite when invert is set.
func Binarize(values []float64, threshold float64, invert bool) []int {
	below, above := 1, 0
	if invert {
		below, above = 0, 1
	}
	mask := make([]int, len(values))
	for i, v := range values {
		if v < threshold {
			mask[i] = below
		} else {
			mask[i] = above
		}
	}
	return mask
}
