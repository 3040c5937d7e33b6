package obj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
)

// realPrecision matches the "%g" conversion used by the MINC tools. Values
// that do not survive it are written with the shortest exact form instead.
const realPrecision = 6

// integersPerLine is the line width of the end index and index tables
const integersPerLine = 8

// Save writes mesh to path in MNI polygon object format, creating the parent
// directory if needed.
func Save(mesh *models.Mesh, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create mesh file: %w", err)
	}
	if err := Write(f, mesh); err != nil {
		f.Close()
		return fmt.Errorf("failed to write mesh file %s: %w", path, err)
	}
	return f.Close()
}

// Write serializes mesh to w. Missing normals are written as zero vectors,
// missing end indices as a triangle table and missing colours as one white.
func Write(w io.Writer, mesh *models.Mesh) error {
	if err := mesh.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	var buf []byte

	buf = append(buf, polygonsMarker...)
	for _, v := range []float64{
		mesh.Surface.Ambient,
		mesh.Surface.Diffuse,
		mesh.Surface.Specular,
		mesh.Surface.SpecularExponent,
		mesh.Surface.Opacity,
	} {
		buf = appendReal(buf, v)
	}
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(len(mesh.Points)), 10)
	buf = append(buf, '\n')

	for _, p := range mesh.Points {
		buf = appendVec(buf, p)
	}
	buf = append(buf, '\n')

	normals := mesh.Normals
	if len(normals) == 0 {
		normals = make([]r3.Vec, len(mesh.Points))
	}
	for _, n := range normals {
		buf = appendVec(buf, n)
	}
	if _, err := bw.Write(buf); err != nil {
		return err
	}
	buf = buf[:0]

	nItems := mesh.NumPolygons()
	buf = append(buf, "\n "...)
	buf = strconv.AppendInt(buf, int64(nItems), 10)
	buf = append(buf, '\n')

	colours := mesh.Colours
	flag := mesh.ColourFlag
	if colours == nil {
		colours = []models.Colour{models.White}
		flag = models.OneColour
	}
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(flag), 10)
	for _, c := range colours {
		for _, v := range c {
			buf = appendReal(buf, v)
		}
	}
	buf = append(buf, "\n\n"...)

	ends := mesh.EndIndices
	if ends == nil {
		ends = make([]int, nItems)
		for i := range ends {
			ends[i] = 3 * (i + 1)
		}
	}
	buf = appendIntegers(buf, ends)
	buf = append(buf, '\n')
	buf = appendIntegers(buf, mesh.Indices)

	if _, err := bw.Write(buf); err != nil {
		return err
	}
	return bw.Flush()
}

func appendReal(buf []byte, v float64) []byte {
	buf = append(buf, ' ')
	n := len(buf)
	buf = strconv.AppendFloat(buf, v, 'g', realPrecision, 64)
	if r, err := strconv.ParseFloat(string(buf[n:]), 64); err == nil && r == v {
		return buf
	}
	return strconv.AppendFloat(buf[:n], v, 'g', -1, 64)
}

func appendVec(buf []byte, v r3.Vec) []byte {
	buf = appendReal(buf, v.X)
	buf = appendReal(buf, v.Y)
	buf = appendReal(buf, v.Z)
	return append(buf, '\n')
}

func appendIntegers(buf []byte, values []int) []byte {
	for i, v := range values {
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(v), 10)
		if (i+1)%integersPerLine == 0 || i == len(values)-1 {
			buf = append(buf, '\n')
		}
	}
	return buf
}
