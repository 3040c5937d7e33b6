// Package quality measures the shape quality of the triangles of a mesh and
// flags statistical outliers among them.
package quality

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/parallel"
)

// ErrInfiniteAspectRatio is reported for a triangle whose vertices are
// collinear or coincident
var ErrInfiniteAspectRatio = fmt.Errorf("infinite aspect ratio: %w", models.ErrDegenerateGeometry)

// DegeneratePolicy decides what happens to triangles with an infinite
// aspect ratio when a whole mesh is measured
type DegeneratePolicy string

const (
	// PolicyInfinite records +Inf so the outlier classifier reports them
	PolicyInfinite DegeneratePolicy = "infinite"
	// PolicyReject fails with ErrInfiniteAspectRatio
	PolicyReject DegeneratePolicy = "reject"
)

// DefaultFence is the interquartile range multiplier of the outlier fences
const DefaultFence = 1.5

// AspectRatio returns the ratio of the circumradius to twice the inradius of
// the triangle abc,
//
//	a*b*c / (8*(s-a)*(s-b)*(s-c)),  s = (a+b+c)/2
//
// which is 1 for an equilateral triangle and grows without bound as the
// triangle flattens. A non-positive denominator yields ErrInfiniteAspectRatio.
func AspectRatio(a, b, c r3.Vec) (float64, error) {
	ab := r3.Norm(r3.Sub(a, b))
	bc := r3.Norm(r3.Sub(b, c))
	ca := r3.Norm(r3.Sub(c, a))
	s := (ab + bc + ca) / 2

	denom := 8 * (s - ab) * (s - bc) * (s - ca)
	if denom <= 0 {
		return math.Inf(1), ErrInfiniteAspectRatio
	}
	return ab * bc * ca / denom, nil
}

// Analyzer measures every triangle of a mesh
type Analyzer struct {
	// NumCores bounds the number of goroutines, 0 means all CPUs
	NumCores int

	// Fence is the IQR multiplier used by ClassifyOutliers
	Fence float64

	// Policy handles degenerate triangles
	Policy DegeneratePolicy
}

// NewAnalyzer returns an analyzer with the conventional 1.5 IQR fence that
// records degenerate triangles as +Inf
func NewAnalyzer(numCores int) *Analyzer {
	return &Analyzer{
		NumCores: numCores,
		Fence:    DefaultFence,
		Policy:   PolicyInfinite,
	}
}

// AspectRatios returns one aspect ratio per triangle, in polygon order. The
// mesh must be made of triangles only.
func (a *Analyzer) AspectRatios(mesh *models.Mesh) (models.ScalarField, error) {
	triangles, err := mesh.Triangles()
	if err != nil {
		return nil, err
	}

	ratios := make(models.ScalarField, len(triangles))
	err = parallel.For(len(triangles), a.NumCores, func(start, end int) error {
		for i := start; i < end; i++ {
			t := triangles[i]
			r, err := AspectRatio(mesh.Points[t[0]], mesh.Points[t[1]], mesh.Points[t[2]])
			if err != nil && a.Policy == PolicyReject {
				return models.NewError(ErrInfiniteAspectRatio, "aspect ratio", i, r,
					fmt.Sprintf("triangle (%d, %d, %d)", t[0], t[1], t[2]))
			}
			ratios[i] = r
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ratios, nil
}
