// Package stl exports surfaces as binary STL files so they can be opened in
// general purpose mesh viewers.
package stl

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/normals"
)

// Triangle is one facet of an STL file
type Triangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // attribute byte count
}

// header is the fixed 84 byte prefix of a binary STL file
type header struct {
	_     [80]uint8
	Count uint32
}

func toFloat32(v r3.Vec) [3]float32 {
	return [3]float32{float32(v.X), float32(v.Y), float32(v.Z)}
}

// FromMesh converts every polygon of mesh to triangles. Polygons with more
// than three vertices are split as fans around their first vertex.
func FromMesh(mesh *models.Mesh) []Triangle {
	triangles := make([]Triangle, 0, mesh.NumPolygons())
	for i := 0; i < mesh.NumPolygons(); i++ {
		poly := mesh.Polygon(i)
		for k := 1; k+1 < len(poly); k++ {
			a, b, c := mesh.Points[poly[0]], mesh.Points[poly[k]], mesh.Points[poly[k+1]]
			triangles = append(triangles, Triangle{
				Normal:  toFloat32(normals.Polygon([]r3.Vec{a, b, c})),
				Vertex1: toFloat32(a),
				Vertex2: toFloat32(b),
				Vertex3: toFloat32(c),
			})
		}
	}
	return triangles
}

// Write encodes triangles to w in binary STL format
func Write(w io.Writer, triangles []Triangle) error {
	if uint64(len(triangles)) > math.MaxUint32 {
		return fmt.Errorf("too many triangles for STL: %d", len(triangles))
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, header{Count: uint32(len(triangles))}); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, triangles); err != nil {
		return err
	}
	return bw.Flush()
}

// Read decodes a binary STL stream
func Read(r io.Reader) ([]Triangle, error) {
	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to read STL header: %w", err)
	}
	triangles := make([]Triangle, h.Count)
	if err := binary.Read(r, binary.LittleEndian, triangles); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, models.NewError(models.ErrFormat, "read stl", -1, float64(h.Count),
				"file truncated before the announced triangle count")
		}
		return nil, err
	}
	return triangles, nil
}

// SaveToSTL writes triangles to filename
func SaveToSTL(filename string, triangles []Triangle) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}
	if err := Write(f, triangles); err != nil {
		f.Close()
		return fmt.Errorf("failed to write STL file: %w", err)
	}
	return f.Close()
}

// SaveMesh writes mesh to filename as binary STL
func SaveMesh(filename string, mesh *models.Mesh) error {
	return SaveToSTL(filename, FromMesh(mesh))
}
