// Package normals computes per-vertex normals of polygonal meshes.
package normals

import (
	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
)

// Polygon returns the unit normal of the polygon whose vertices are the
// given points, following their winding (Newell's method). A degenerate
// polygon yields the zero vector.
func Polygon(points []r3.Vec) r3.Vec {
	var n r3.Vec
	for i, cur := range points {
		next := points[(i+1)%len(points)]
		n.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		n.Y += (cur.Z - next.Z) * (cur.X + next.X)
		n.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	if n == (r3.Vec{}) {
		return n
	}
	return r3.Unit(n)
}

// Compute returns one normal per vertex: the normalized sum of the unit
// normals of the polygons owning the vertex. Vertices owned by no polygon,
// or whose polygon normals cancel out, get the zero vector.
func Compute(mesh *models.Mesh) []r3.Vec {
	sums := make([]r3.Vec, mesh.NumPoints())
	var corners []r3.Vec
	for i := 0; i < mesh.NumPolygons(); i++ {
		poly := mesh.Polygon(i)
		corners = corners[:0]
		for _, v := range poly {
			corners = append(corners, mesh.Points[v])
		}
		n := Polygon(corners)
		for _, v := range poly {
			sums[v] = r3.Add(sums[v], n)
		}
	}

	for i, s := range sums {
		if s != (r3.Vec{}) {
			sums[i] = r3.Unit(s)
		}
	}
	return sums
}

// Recompute replaces the normals of mesh with Compute(mesh)
func Recompute(mesh *models.Mesh) {
	mesh.Normals = Compute(mesh)
}
