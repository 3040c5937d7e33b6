package quality

import (
	"math"
	"sort"

	"surfacesfetus/pkg/stats"
)

// Fences are the bounds outside of which a value is an outlier
type Fences struct {
	Q1, Q3 float64
	IQR    float64
	Lower  float64
	Upper  float64
}

// ComputeFences returns the quartiles of the finite values and the fences
// Q1 - k*IQR and Q3 + k*IQR. With no finite value the fences are NaN.
func ComputeFences(values []float64, k float64) Fences {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		nan := math.NaN()
		return Fences{Q1: nan, Q3: nan, IQR: nan, Lower: nan, Upper: nan}
	}
	sort.Float64s(finite)

	q1 := quantile(0.25, finite)
	q3 := quantile(0.75, finite)
	iqr := q3 - q1
	return Fences{
		Q1:    q1,
		Q3:    q3,
		IQR:   iqr,
		Lower: q1 - k*iqr,
		Upper: q3 + k*iqr,
	}
}

// quantile interpolates linearly between the closest ranks of sorted x, at
// position h = (n-1)p. This is the default of numpy and R type 7; gonum's
// stat.Quantile only offers the empirical and type 4 estimates.
func quantile(p float64, x []float64) float64 {
	h := float64(len(x)-1) * p
	lo := int(math.Floor(h))
	if lo+1 >= len(x) {
		return x[len(x)-1]
	}
	return x[lo] + (h-float64(lo))*(x[lo+1]-x[lo])
}

// Outside reports whether v lies beyond the fences. Infinite and NaN values
// are always outside.
func (f Fences) Outside(v float64) bool {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return true
	}
	return v < f.Lower || v > f.Upper
}

// ClassifyOutliers returns the sorted indices of the values lying below
// Q1 - k*IQR or above Q3 + k*IQR
func ClassifyOutliers(values []float64, k float64) []int {
	fences := ComputeFences(values, k)
	var outliers []int
	for i, v := range values {
		if fences.Outside(v) {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// ClassifyOutliers applies the analyzer's fence to values
func (a *Analyzer) ClassifyOutliers(values []float64) []int {
	return ClassifyOutliers(values, a.Fence)
}

// Report summarizes a per-triangle quality field before and after masking
// its outliers
type Report struct {
	All      stats.Summary
	Fences   Fences
	Outliers []int
	Percent  float64
	Masked   stats.Summary
}

// Report classifies values and recomputes their statistics with the
// outliers masked out
func (a *Analyzer) Report(values []float64) Report {
	r := Report{
		All:    stats.Summarize(values),
		Fences: ComputeFences(values, a.Fence),
	}

	kept := make([]float64, 0, len(values))
	for i, v := range values {
		if r.Fences.Outside(v) {
			r.Outliers = append(r.Outliers, i)
		} else {
			kept = append(kept, v)
		}
	}
	if len(values) > 0 {
		r.Percent = float64(len(r.Outliers)) / float64(len(values)) * 100
	}
	r.Masked = stats.Summarize(kept)
	return r
}
