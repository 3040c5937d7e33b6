// Package distortion measures how much a thin shell bends between its inner
// and outer boundary surfaces: for every pair of corresponding vertices it
// reports the angle between the surface normals.
package distortion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/normals"
)

// Mode selects how the angles are obtained
type Mode string

const (
	// ModeDefault inverts the ratios produced by an external surface angle
	// measurement over the inner, mid and outer surfaces
	ModeDefault Mode = "default"

	// ModeIdeal takes the angle between corresponding normals directly
	ModeIdeal Mode = "ideal"

	// ModeError would subtract the ideal angle from the measured one. It is
	// not implemented.
	ModeError Mode = "error"
)

// Correspondence pairs the vertices of an inner and an outer surface by
// index. Constructing one checks that both surfaces have the same number of
// vertices.
type Correspondence struct {
	Inner *models.Mesh
	Outer *models.Mesh
}

// NewCorrespondence checks that inner and outer can be paired vertex by vertex
func NewCorrespondence(inner, outer *models.Mesh) (*Correspondence, error) {
	if err := models.CheckCardinality("correspondence", "outer surface",
		inner.NumPoints(), outer.NumPoints()); err != nil {
		return nil, err
	}
	return &Correspondence{Inner: inner, Outer: outer}, nil
}

// Len returns the number of corresponding vertex pairs
func (c *Correspondence) Len() int { return c.Inner.NumPoints() }

// MidSurface returns the surface halfway between inner and outer, with the
// topology of the inner surface and recomputed normals. Relaxing it onto a
// smooth surface is left to external tools.
func (c *Correspondence) MidSurface() *models.Mesh {
	mid := c.Inner.Clone()
	for i, p := range c.Inner.Points {
		mid.Points[i] = r3.Scale(0.5, r3.Add(p, c.Outer.Points[i]))
	}
	normals.Recompute(mid)
	return mid
}

// normalsOf returns the stored normals of mesh, or computes them when the
// mesh has none. Files written without normals hold zeros, which count as
// none.
func normalsOf(mesh *models.Mesh) []r3.Vec {
	if len(mesh.Normals) == mesh.NumPoints() {
		for _, n := range mesh.Normals {
			if n != (r3.Vec{}) {
				return mesh.Normals
			}
		}
	}
	return normals.Compute(mesh)
}

// IdealAngles returns the angle between the normals of every corresponding
// vertex pair, using the normals stored in the meshes.
func (c *Correspondence) IdealAngles() (models.ScalarField, error) {
	return IdealAngles(normalsOf(c.Inner), normalsOf(c.Outer))
}

// IdealAngles returns arccos(dot(inner[i], outer[i])) for every i after
// normalizing both vectors. The dot product is clipped into [-1, 1] so that
// rounding cannot push arccos out of its domain.
func IdealAngles(inner, outer []r3.Vec) (models.ScalarField, error) {
	if err := models.CheckCardinality("ideal angles", "outer normals",
		len(inner), len(outer)); err != nil {
		return nil, err
	}

	angles := make(models.ScalarField, len(inner))
	for i := range inner {
		a, b := r3.Norm(inner[i]), r3.Norm(outer[i])
		if a == 0 || b == 0 {
			return nil, models.NewError(models.ErrDegenerateGeometry, "ideal angles", i, math.NaN(),
				"zero length normal")
		}
		cos := r3.Dot(inner[i], outer[i]) / (a * b)
		angles[i] = math.Acos(math.Max(-1, math.Min(1, cos)))
	}
	return angles, nil
}

// InvertRatios converts the raw ratios a of a surface angle measurement into
// angles with arccos(1/a). Ratios with |1/a| > 1 have no angle and are
// reported as domain errors.
func InvertRatios(ratios []float64) (models.ScalarField, error) {
	angles := make(models.ScalarField, len(ratios))
	for i, a := range ratios {
		inv := 1 / a
		if !(math.Abs(inv) <= 1) {
			return nil, models.NewError(models.ErrDomain, "invert ratios", i, a,
				"1/a is outside [-1, 1]")
		}
		angles[i] = math.Acos(inv)
	}
	return angles, nil
}

// NormalizeThickness rescales thickness linearly onto [0, 1]. A constant or
// non-finite field cannot be normalized.
func NormalizeThickness(thickness []float64) (models.ScalarField, error) {
	if len(thickness) == 0 {
		return models.ScalarField{}, nil
	}
	for i, v := range thickness {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, models.NewError(models.ErrDomain, "normalize thickness", i, v,
				"thickness is not finite")
		}
	}
	lo, hi := floats.Min(thickness), floats.Max(thickness)
	if hi == lo {
		return nil, models.NewError(models.ErrDomain, "normalize thickness", -1, lo,
			"thickness is constant")
	}

	out := make(models.ScalarField, len(thickness))
	copy(out, thickness)
	floats.AddConst(-lo, out)
	floats.Scale(1/(hi-lo), out)
	return out, nil
}

// Regularize down-weights the distortion of vertices where the shell is thin
// by multiplying every angle with the min-max normalized thickness.
func Regularize(angles, thickness []float64) (models.ScalarField, error) {
	if err := models.CheckCardinality("regularize", "thickness",
		len(angles), len(thickness)); err != nil {
		return nil, err
	}
	weights, err := NormalizeThickness(thickness)
	if err != nil {
		return nil, err
	}
	floats.Mul(weights, angles)
	return weights, nil
}

// Request describes one distortion computation
type Request struct {
	// Mode selects the computation, ModeDefault when empty
	Mode Mode

	// Ratios are the surface angle ratios consumed by ModeDefault
	Ratios []float64

	// InnerNormals and OuterNormals override the mesh normals in ModeIdeal
	InnerNormals []r3.Vec
	OuterNormals []r3.Vec

	// Thickness, when set, regularizes the result
	Thickness []float64
}

// Angles computes the per-vertex distortion angles described by req
func (c *Correspondence) Angles(req Request) (models.ScalarField, error) {
	var (
		angles models.ScalarField
		err    error
	)

	switch req.Mode {
	case ModeDefault, "":
		if err := models.CheckCardinality("distortion", "ratios", c.Len(), len(req.Ratios)); err != nil {
			return nil, err
		}
		angles, err = InvertRatios(req.Ratios)

	case ModeIdeal:
		inner, outer := req.InnerNormals, req.OuterNormals
		if inner == nil {
			inner = normalsOf(c.Inner)
		}
		if outer == nil {
			outer = normalsOf(c.Outer)
		}
		if err := models.CheckCardinality("distortion", "inner normals", c.Len(), len(inner)); err != nil {
			return nil, err
		}
		angles, err = IdealAngles(inner, outer)

	case ModeError:
		return nil, models.NewError(models.ErrUnimplementedVariant, "distortion", -1, math.NaN(),
			"subtracting the ideal angle from the measured distortion is not supported")

	default:
		return nil, models.NewError(models.ErrUnimplementedVariant, "distortion", -1, math.NaN(),
			fmt.Sprintf("unknown mode %q", req.Mode))
	}
	if err != nil {
		return nil, err
	}

	if req.Thickness != nil {
		return Regularize(angles, req.Thickness)
	}
	return angles, nil
}
