// Package spherical generates surfaces from parametric spherical functions
// by deforming a reference triangulation of the unit sphere. Meshes produced
// from the same reference share their topology exactly, so the vertex to
// vertex correspondence between them is perfect, and they are smooth as long
// as the function is differentiable.
//
// Angles follow the physics (ISO) convention: theta is the polar angle from
// the +z axis in [0, pi] and phi the azimuth in (-pi, pi].
package spherical

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/normals"
	"surfacesfetus/pkg/parallel"
)

// ToSpherical converts p to radius, polar angle and azimuth. The ratio z/r
// is clipped into [-1, 1] before acos; the origin, where the angles are
// undefined, is reported as a domain error.
func ToSpherical(p r3.Vec) (r, theta, phi float64, err error) {
	r = r3.Norm(p)
	if r == 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return r, 0, 0, models.NewError(models.ErrDomain, "to spherical", -1, r,
			"angles are undefined at this radius")
	}
	theta = math.Acos(clip(p.Z/r, -1, 1))
	phi = math.Atan2(p.Y, p.X)
	return r, theta, phi, nil
}

// FromSpherical converts radius, polar angle and azimuth to cartesian
// coordinates
func FromSpherical(r, theta, phi float64) r3.Vec {
	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return r3.Vec{
		X: r * sinTheta * cosPhi,
		Y: r * sinTheta * sinPhi,
		Z: r * cosTheta,
	}
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// Projector deforms reference sphere meshes
type Projector struct {
	// NumCores bounds the number of goroutines, 0 means all CPUs
	NumCores int
}

// NewProjector creates a projector using numCores goroutines
func NewProjector(numCores int) *Projector {
	return &Projector{NumCores: numCores}
}

// Project dispatches on the number of functions: one is a radius function
// r(theta, phi), three are the coordinate functions x, y and z.
func (p *Projector) Project(reference *models.Mesh, funcs ...Func) (*models.Mesh, error) {
	switch len(funcs) {
	case 1:
		return p.ProjectRadius(reference, funcs[0])
	case 3:
		return p.ProjectXYZ(reference, funcs[0], funcs[1], funcs[2])
	default:
		return nil, models.NewError(models.ErrCardinalityMismatch, "project", -1, float64(len(funcs)),
			"expected 1 radius function or 3 coordinate functions")
	}
}

// ProjectRadius moves every reference point along its direction from the
// origin to the radius radius(theta, phi).
func (p *Projector) ProjectRadius(reference *models.Mesh, radius Func) (*models.Mesh, error) {
	return p.project(reference, func(theta, phi float64) r3.Vec {
		return FromSpherical(radius.Eval(theta, phi), theta, phi)
	})
}

// ProjectXYZ replaces every reference point by (x, y, z) evaluated at the
// point's angles. This defines the deformation per axis rather than along
// the radius.
func (p *Projector) ProjectXYZ(reference *models.Mesh, x, y, z Func) (*models.Mesh, error) {
	return p.project(reference, func(theta, phi float64) r3.Vec {
		return r3.Vec{
			X: x.Eval(theta, phi),
			Y: y.Eval(theta, phi),
			Z: z.Eval(theta, phi),
		}
	})
}

// project returns a copy of reference with transformed points and
// recomputed normals. The reference is left untouched.
func (p *Projector) project(reference *models.Mesh, transform func(theta, phi float64) r3.Vec) (*models.Mesh, error) {
	out := reference.Clone()

	err := parallel.For(len(reference.Points), p.NumCores, func(start, end int) error {
		for i := start; i < end; i++ {
			r, theta, phi, err := ToSpherical(reference.Points[i])
			if err != nil {
				return models.NewError(models.ErrDomain, "project", i, r,
					"reference point has no direction")
			}
			q := transform(theta, phi)
			if !finite(q) {
				return models.NewError(models.ErrDomain, "project", i, math.NaN(),
					fmt.Sprintf("function is undefined at theta=%g phi=%g", theta, phi))
			}
			out.Points[i] = q
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	normals.Recompute(out)
	return out, nil
}

func finite(v r3.Vec) bool {
	for _, c := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
