package quality

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
)

// TestAspectRatioEquilateral verifies the minimum value of 1 and its invariance
func TestAspectRatioEquilateral(t *testing.T) {
	for _, side := range []float64{1, 0.01, 42} {
		a := r3.Vec{}
		b := r3.Vec{X: side}
		c := r3.Vec{X: side / 2, Y: side * math.Sqrt(3) / 2}

		ratio, err := AspectRatio(a, b, c)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, ratio, 1e-9, "side %f", side)
	}
}

// TestAspectRatioRightTriangle verifies the value for the unit right triangle
func TestAspectRatioRightTriangle(t *testing.T) {
	ratio, err := AspectRatio(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{Y: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.2071, ratio, 1e-4)
	assert.InDelta(t, (1+math.Sqrt2)/2, ratio, 1e-12)
}

// TestAspectRatioRigidMotion verifies invariance under rotation, translation and scaling
func TestAspectRatioRigidMotion(t *testing.T) {
	a, b, c := r3.Vec{X: 0.3}, r3.Vec{X: 2, Y: 0.1}, r3.Vec{X: 0.7, Y: 1.4, Z: 0.2}
	base, err := AspectRatio(a, b, c)
	require.NoError(t, err)

	axis := r3.Unit(r3.Vec{X: 1, Y: 2, Z: 3})
	move := func(p r3.Vec) r3.Vec {
		return r3.Add(r3.Scale(3.5, r3.Rotate(p, 0.8, axis)), r3.Vec{X: -4, Y: 9, Z: 1})
	}
	moved, err := AspectRatio(move(a), move(b), move(c))
	require.NoError(t, err)
	assert.InDelta(t, base, moved, 1e-9)
}

// TestAspectRatioDegenerate verifies collinear points are reported instead of dividing by zero
func TestAspectRatioDegenerate(t *testing.T) {
	ratio, err := AspectRatio(r3.Vec{}, r3.Vec{X: 1}, r3.Vec{X: 2})
	assert.True(t, math.IsInf(ratio, 1))
	assert.ErrorIs(t, err, ErrInfiniteAspectRatio)
	assert.ErrorIs(t, err, models.ErrDegenerateGeometry)

	_, err = AspectRatio(r3.Vec{X: 1}, r3.Vec{X: 1}, r3.Vec{X: 1})
	assert.ErrorIs(t, err, ErrInfiniteAspectRatio)
}

// createMesh returns three triangles, the last one collinear
func createMesh() *models.Mesh {
	points := []r3.Vec{{}, {X: 1}, {Y: 1}, {X: 1, Y: 1}, {X: 2}, {X: 3}}
	return models.NewTriangleMesh(points, [][3]int{{0, 1, 2}, {1, 3, 2}, {1, 4, 5}})
}

// TestAspectRatiosPolicies verifies both degenerate triangle policies
func TestAspectRatiosPolicies(t *testing.T) {
	analyzer := NewAnalyzer(1)
	ratios, err := analyzer.AspectRatios(createMesh())
	require.NoError(t, err)
	require.Len(t, ratios, 3)
	assert.InDelta(t, ratios[0], ratios[1], 1e-12)
	assert.True(t, math.IsInf(ratios[2], 1))

	analyzer.Policy = PolicyReject
	_, err = analyzer.AspectRatios(createMesh())
	require.Error(t, err)
	var merr *models.Error
	require.True(t, errors.As(err, &merr))
	assert.Equal(t, 2, merr.Index)
	assert.ErrorIs(t, err, ErrInfiniteAspectRatio)
}

// TestAspectRatiosRequiresTriangles verifies polygon meshes are rejected
func TestAspectRatiosRequiresTriangles(t *testing.T) {
	mesh := &models.Mesh{
		Points:     make([]r3.Vec, 4),
		EndIndices: []int{4},
		Indices:    []int{0, 1, 2, 3},
	}
	_, err := NewAnalyzer(1).AspectRatios(mesh)
	assert.ErrorIs(t, err, models.ErrFormat)
}

// TestClassifyOutliers verifies the interquartile range fences
func TestClassifyOutliers(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100}
	assert.Equal(t, []int{9}, ClassifyOutliers(values, DefaultFence))

	fences := ComputeFences(values, DefaultFence)
	assert.InDelta(t, 3.25, fences.Q1, 1e-12)
	assert.InDelta(t, 7.75, fences.Q3, 1e-12)
	assert.InDelta(t, 14.5, fences.Upper, 1e-12)
}

// TestComputeFencesLinearQuartiles checks quartiles against numpy.quantile
func TestComputeFencesLinearQuartiles(t *testing.T) {
	cases := []struct {
		values   []float64
		q1, q3   float64
		outliers []int
	}{
		{[]float64{1, 2, 3, 4, 7.2}, 2, 4, []int{4}},
		{[]float64{7.2, 1, 4, 2, 3}, 2, 4, []int{0}},
		{[]float64{1, 2, 3, 4}, 1.75, 3.25, nil},
		{[]float64{5}, 5, 5, nil},
		{[]float64{1, 2, math.Inf(1), 3, 4, math.NaN(), 7.2}, 2, 4, []int{2, 5, 6}},
	}
	for _, tc := range cases {
		fences := ComputeFences(tc.values, DefaultFence)
		assert.InDelta(t, tc.q1, fences.Q1, 1e-12, "%v", tc.values)
		assert.InDelta(t, tc.q3, fences.Q3, 1e-12, "%v", tc.values)
		assert.Equal(t, tc.outliers, ClassifyOutliers(tc.values, DefaultFence), "%v", tc.values)
	}
}

// TestClassifyOutliersConstant verifies a sequence without variation has no outliers
func TestClassifyOutliersConstant(t *testing.T) {
	values := make([]float64, 50)
	for i := range values {
		values[i] = 1.3
	}
	assert.Empty(t, ClassifyOutliers(values, DefaultFence))
	assert.Empty(t, ClassifyOutliers(nil, DefaultFence))
}

// TestReport verifies outliers are counted and masked from the statistics
func TestReport(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100, math.Inf(1)}
	report := NewAnalyzer(1).Report(values)

	assert.Equal(t, 11, report.All.N)
	assert.Equal(t, []int{9, 10}, report.Outliers)
	assert.InDelta(t, 200.0/11, report.Percent, 1e-9)
	assert.Equal(t, 9, report.Masked.N)
	assert.InDelta(t, 5.0, report.Masked.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(20.0/3), report.Masked.Std, 1e-12)
}
