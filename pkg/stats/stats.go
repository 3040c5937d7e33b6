// Package stats computes per-vertex statistics over a mesh's neighbor graph:
// the average length of the edges incident to a vertex and the "smoothness"
// of a scalar field, i.e. the average absolute change of the field between a
// vertex and its neighbors.
package stats

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/parallel"
)

// Calculator evaluates per-vertex statistics. Vertices are independent, so
// the work is spread over NumCores goroutines.
type Calculator struct {
	// NumCores bounds the number of goroutines, 0 means all CPUs
	NumCores int
}

// NewCalculator creates a calculator using numCores goroutines
func NewCalculator(numCores int) *Calculator {
	return &Calculator{NumCores: numCores}
}

// AverageEdgeLength returns, for every vertex, the mean Euclidean distance
// to its neighbors. A vertex without neighbors is reported as degenerate
// geometry.
func (c *Calculator) AverageEdgeLength(mesh *models.Mesh, graph models.NeighborGraph) (models.ScalarField, error) {
	if err := models.CheckCardinality("average edge length", "neighbor graph",
		mesh.NumPoints(), graph.Len()); err != nil {
		return nil, err
	}

	result := make(models.ScalarField, graph.Len())
	err := parallel.For(graph.Len(), c.NumCores, func(start, end int) error {
		for v := start; v < end; v++ {
			neighbors := graph.Neighbors(v)
			if len(neighbors) == 0 {
				return isolated("average edge length", v)
			}
			p := mesh.Points[v]
			sum := 0.0
			for _, n := range neighbors {
				sum += r3.Norm(r3.Sub(p, mesh.Points[n]))
			}
			result[v] = sum / float64(len(neighbors))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Smoothness returns, for every vertex v, the mean of |s(v) - s(n)| over its
// neighbors n. Values near zero indicate a locally smooth field; applied to
// mean curvature it measures surface bumpiness.
func (c *Calculator) Smoothness(graph models.NeighborGraph, field models.ScalarField) (models.ScalarField, error) {
	if err := models.CheckCardinality("smoothness", "scalar field",
		graph.Len(), len(field)); err != nil {
		return nil, err
	}

	result := make(models.ScalarField, graph.Len())
	err := parallel.For(graph.Len(), c.NumCores, func(start, end int) error {
		for v := start; v < end; v++ {
			neighbors := graph.Neighbors(v)
			if len(neighbors) == 0 {
				return isolated("smoothness", v)
			}
			s := field[v]
			sum := 0.0
			for _, n := range neighbors {
				sum += math.Abs(s - field[n])
			}
			result[v] = sum / float64(len(neighbors))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func isolated(op string, v int) error {
	return models.NewError(models.ErrDegenerateGeometry, op, v, math.NaN(),
		"vertex has no neighbors")
}
