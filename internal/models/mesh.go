package models

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// SurfaceProperties holds the lighting coefficients stored in the header of
// an MNI polygon object. They carry no geometric meaning but are preserved so
// that a loaded mesh can be written back unchanged.
type SurfaceProperties struct {
	Ambient          float64
	Diffuse          float64
	Specular         float64
	SpecularExponent float64
	Opacity          float64
}

// DefaultSurfaceProperties returns the coefficients used by the MINC tools
// when they create a new surface.
func DefaultSurfaceProperties() SurfaceProperties {
	return SurfaceProperties{
		Ambient:          0.3,
		Diffuse:          0.3,
		Specular:         0.4,
		SpecularExponent: 10,
		Opacity:          1,
	}
}

// ColourFlag tells how many RGBA colours a mesh carries
type ColourFlag int

const (
	// OneColour paints the whole object with a single colour
	OneColour ColourFlag = iota
	// PerItemColours assigns one colour to every polygon
	PerItemColours
	// PerVertexColours assigns one colour to every point
	PerVertexColours
)

// Colour is an RGBA quadruple with components in [0, 1]
type Colour [4]float64

// White is the default surface colour
var White = Colour{1, 1, 1, 1}

// Mesh represents a polygonal surface as stored in an MNI object file.
//
// Polygons are described by a flat Indices list partitioned by EndIndices:
// polygon i spans Indices[EndIndices[i-1]:EndIndices[i]] (with an implicit
// zero before the first entry). When EndIndices is nil every polygon is
// assumed to be a triangle.
type Mesh struct {
	// Surface holds the header lighting coefficients
	Surface SurfaceProperties

	// Points are the vertex coordinates, one per vertex index 0..N-1
	Points []r3.Vec

	// Normals are the per-vertex normals. Empty until loaded or computed.
	Normals []r3.Vec

	// ColourFlag and Colours describe the object's colouring
	ColourFlag ColourFlag
	Colours    []Colour

	// EndIndices holds, for each polygon, the offset one past its last
	// vertex in Indices
	EndIndices []int

	// Indices is the flat list of polygon vertex indices
	Indices []int
}

// NewTriangleMesh builds a mesh from points and triangles with default surface
// properties and a single white colour.
func NewTriangleMesh(points []r3.Vec, triangles [][3]int) *Mesh {
	m := &Mesh{
		Surface:    DefaultSurfaceProperties(),
		Points:     points,
		ColourFlag: OneColour,
		Colours:    []Colour{White},
		EndIndices: make([]int, len(triangles)),
		Indices:    make([]int, 0, 3*len(triangles)),
	}
	for i, t := range triangles {
		m.Indices = append(m.Indices, t[0], t[1], t[2])
		m.EndIndices[i] = 3 * (i + 1)
	}
	return m
}

// NumPoints returns the number of vertices
func (m *Mesh) NumPoints() int { return len(m.Points) }

// NumPolygons returns the number of polygons
func (m *Mesh) NumPolygons() int {
	if m.EndIndices == nil {
		return len(m.Indices) / 3
	}
	return len(m.EndIndices)
}

// Polygon returns the vertex indices of polygon i. The returned slice aliases
// the mesh's index list and must not be modified.
func (m *Mesh) Polygon(i int) []int {
	if m.EndIndices == nil {
		return m.Indices[3*i : 3*i+3]
	}
	start := 0
	if i > 0 {
		start = m.EndIndices[i-1]
	}
	return m.Indices[start:m.EndIndices[i]]
}

// Triangles returns the polygons as vertex triples. It fails with a format
// error if any polygon is not a triangle.
func (m *Mesh) Triangles() ([][3]int, error) {
	if m.EndIndices == nil && len(m.Indices)%3 != 0 {
		return nil, NewError(ErrFormat, "triangles", -1, float64(len(m.Indices)),
			"index count is not a multiple of 3")
	}
	n := m.NumPolygons()
	triangles := make([][3]int, n)
	for i := 0; i < n; i++ {
		p := m.Polygon(i)
		if len(p) != 3 {
			return nil, NewError(ErrFormat, "triangles", i, float64(len(p)),
				"polygon is not a triangle")
		}
		triangles[i] = [3]int{p[0], p[1], p[2]}
	}
	return triangles, nil
}

// Validate checks the structural invariants of the mesh: end indices are
// non-decreasing and cover the index list, every index references an
// existing point, normals (if present) match the point count and the colour
// table matches its flag.
func (m *Mesh) Validate() error {
	n := len(m.Points)

	if m.EndIndices != nil {
		prev := 0
		for i, end := range m.EndIndices {
			if end < prev {
				return NewError(ErrFormat, "validate", i, float64(end),
					fmt.Sprintf("end index decreases (previous %d)", prev))
			}
			prev = end
		}
		if prev != len(m.Indices) {
			return NewError(ErrFormat, "validate", len(m.EndIndices)-1, float64(prev),
				fmt.Sprintf("last end index does not match index count %d", len(m.Indices)))
		}
	} else if len(m.Indices)%3 != 0 {
		return NewError(ErrFormat, "validate", -1, float64(len(m.Indices)),
			"index count is not a multiple of 3")
	}

	for i, idx := range m.Indices {
		if idx < 0 || idx >= n {
			return NewError(ErrFormat, "validate", i, float64(idx),
				fmt.Sprintf("index out of range for %d points", n))
		}
	}

	if len(m.Normals) != 0 && len(m.Normals) != n {
		return NewError(ErrFormat, "validate", -1, float64(len(m.Normals)),
			fmt.Sprintf("normal count does not match point count %d", n))
	}

	if want := m.ColourCount(); m.Colours != nil && len(m.Colours) != want {
		return NewError(ErrFormat, "validate", -1, float64(len(m.Colours)),
			fmt.Sprintf("colour flag %d expects %d colours", m.ColourFlag, want))
	}
	return nil
}

// ColourCount returns the number of colours the colour flag calls for
func (m *Mesh) ColourCount() int {
	switch m.ColourFlag {
	case PerItemColours:
		return m.NumPolygons()
	case PerVertexColours:
		return len(m.Points)
	default:
		return 1
	}
}

// Clone returns a deep copy of the mesh
func (m *Mesh) Clone() *Mesh {
	c := &Mesh{
		Surface:    m.Surface,
		ColourFlag: m.ColourFlag,
	}
	c.Points = append([]r3.Vec(nil), m.Points...)
	if m.Normals != nil {
		c.Normals = append([]r3.Vec(nil), m.Normals...)
	}
	if m.Colours != nil {
		c.Colours = append([]Colour(nil), m.Colours...)
	}
	if m.EndIndices != nil {
		c.EndIndices = append([]int(nil), m.EndIndices...)
	}
	c.Indices = append([]int(nil), m.Indices...)
	return c
}

// NeighborGraph maps every vertex index to the sorted, de-duplicated list of
// vertices it shares an edge with. The relation is symmetric and has no
// self-loops; a vertex owned by no polygon has an empty list.
type NeighborGraph [][]int

// Len returns the number of vertices in the graph
func (g NeighborGraph) Len() int { return len(g) }

// Neighbors returns the neighbors of vertex v
func (g NeighborGraph) Neighbors(v int) []int { return g[v] }

// Degree returns the number of neighbors of vertex v
func (g NeighborGraph) Degree(v int) int { return len(g[v]) }

// HasEdge reports whether u and v share an edge
func (g NeighborGraph) HasEdge(u, v int) bool {
	n := g[u]
	i := sort.SearchInts(n, v)
	return i < len(n) && n[i] == v
}

// ScalarField is one value per vertex (or per triangle), positionally aligned
// with the mesh it was computed from.
type ScalarField []float64
