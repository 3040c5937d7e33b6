// Package adjacency derives the vertex neighbor graph of a polygonal mesh.
package adjacency

import (
	"sort"

	"surfacesfetus/internal/models"
)

// Build returns the neighbor graph of mesh. Every polygon contributes the
// edges between consecutive vertices of its index cycle, including the edge
// closing the cycle from the last vertex back to the first. Edges shared by
// several polygons are recorded once and self-loops are dropped.
//
// The mesh is assumed to be valid (see models.Mesh.Validate).
func Build(mesh *models.Mesh) models.NeighborGraph {
	n := mesh.NumPoints()
	sets := make([]map[int]struct{}, n)

	link := func(u, v int) {
		if u == v {
			return
		}
		if sets[u] == nil {
			sets[u] = make(map[int]struct{}, 6)
		}
		sets[u][v] = struct{}{}
	}

	for i := 0; i < mesh.NumPolygons(); i++ {
		poly := mesh.Polygon(i)
		for j, u := range poly {
			v := poly[(j+1)%len(poly)]
			link(u, v)
			link(v, u)
		}
	}

	graph := make(models.NeighborGraph, n)
	for v, set := range sets {
		neighbors := make([]int, 0, len(set))
		for u := range set {
			neighbors = append(neighbors, u)
		}
		sort.Ints(neighbors)
		graph[v] = neighbors
	}
	return graph
}

// Edges returns every undirected edge of graph once, as (u, v) with u < v,
// ordered by u then v.
func Edges(graph models.NeighborGraph) [][2]int {
	var edges [][2]int
	for u := range graph {
		for _, v := range graph[u] {
			if u < v {
				edges = append(edges, [2]int{u, v})
			}
		}
	}
	return edges
}
