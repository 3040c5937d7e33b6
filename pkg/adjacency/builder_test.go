package adjacency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
)

// tetrahedron returns a closed mesh of four triangles
func tetrahedron() *models.Mesh {
	points := []r3.Vec{{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 0, Y: 0, Z: 1}}
	return models.NewTriangleMesh(points, [][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}})
}

// TestBuildTetrahedron verifies that every vertex of a tetrahedron neighbors the other three
func TestBuildTetrahedron(t *testing.T) {
	graph := Build(tetrahedron())
	require.Equal(t, 4, graph.Len())

	for v := 0; v < 4; v++ {
		assert.Equal(t, 3, graph.Degree(v), "vertex %d", v)
		assert.False(t, graph.HasEdge(v, v), "self loop at %d", v)
	}
	assert.Equal(t, []int{1, 2, 3}, graph.Neighbors(0))
	assert.Len(t, Edges(graph), 6)
}

// TestBuildSymmetric verifies the graph is symmetric for a mixed polygon mesh
func TestBuildSymmetric(t *testing.T) {
	mesh := &models.Mesh{
		Points:     make([]r3.Vec, 7),
		EndIndices: []int{4, 7, 10},
		Indices:    []int{0, 1, 2, 3, 2, 1, 4, 4, 5, 2},
	}
	require.NoError(t, mesh.Validate())

	graph := Build(mesh)
	for u := range graph {
		for _, v := range graph.Neighbors(u) {
			assert.True(t, graph.HasEdge(v, u), "edge %d-%d is not symmetric", u, v)
		}
	}

	// the quad closes its cycle from 3 back to 0 but has no diagonal
	assert.True(t, graph.HasEdge(0, 3))
	assert.False(t, graph.HasEdge(0, 2))

	// vertex 6 belongs to no polygon
	assert.Empty(t, graph.Neighbors(6))
}

// TestBuildSharedEdge verifies an edge shared by two triangles is stored once
func TestBuildSharedEdge(t *testing.T) {
	points := make([]r3.Vec, 4)
	mesh := models.NewTriangleMesh(points, [][3]int{{0, 1, 2}, {2, 1, 3}})

	graph := Build(mesh)
	assert.Equal(t, []int{0, 2, 3}, graph.Neighbors(1))
	assert.Equal(t, []int{0, 1, 3}, graph.Neighbors(2))
	assert.Len(t, Edges(graph), 5)
}

// TestBuildImplicitTriangles verifies meshes without an end index table use a stride of 3
func TestBuildImplicitTriangles(t *testing.T) {
	mesh := &models.Mesh{
		Points:  make([]r3.Vec, 3),
		Indices: []int{0, 1, 2},
	}
	graph := Build(mesh)
	for v := 0; v < 3; v++ {
		assert.Equal(t, 2, graph.Degree(v))
	}
}
