// Package obj reads and writes surfaces in the MNI polygon object format
// (.obj) used by the MINC/CIVET tools, and the one-value-per-line text files
// that carry per-vertex or per-triangle data alongside them.
//
// An ASCII polygon object looks like:
//
//	P 0.3 0.3 0.4 10 1 <n_points>
//	 x y z                 (n_points lines)
//
//	 nx ny nz              (n_points lines)
//
//	 <n_items>
//	 <colour_flag> r g b a ...
//
//	 <end indices, eight per line>
//
//	 <indices, eight per line>
//
// The reader is token based, so any whitespace layout is accepted.
package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
)

// polygonsMarker is the object kind written at the start of polygon files
const polygonsMarker = "P"

// tokenReader splits a stream into whitespace separated tokens and keeps
// track of what is being parsed so that truncation can be reported.
type tokenReader struct {
	s     *bufio.Scanner
	count int
}

func newTokenReader(r io.Reader) *tokenReader {
	s := bufio.NewScanner(r)
	s.Split(bufio.ScanWords)
	return &tokenReader{s: s}
}

func (t *tokenReader) next(what string) (string, error) {
	if !t.s.Scan() {
		if err := t.s.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				return "", models.NewError(models.ErrFormat, "load", t.count, math.NaN(),
					"oversized token in "+what)
			}
			return "", fmt.Errorf("failed reading %s: %w", what, err)
		}
		return "", models.NewError(models.ErrFormat, "load", t.count, math.NaN(),
			"file truncated while reading "+what)
	}
	t.count++
	return t.s.Text(), nil
}

func (t *tokenReader) float(what string) (float64, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return 0, models.NewError(models.ErrFormat, "load", t.count-1, math.NaN(),
			fmt.Sprintf("invalid number %q in %s", tok, what))
	}
	return v, nil
}

func (t *tokenReader) int(what string) (int, error) {
	tok, err := t.next(what)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, models.NewError(models.ErrFormat, "load", t.count-1, math.NaN(),
			fmt.Sprintf("invalid integer %q in %s", tok, what))
	}
	return v, nil
}

func (t *tokenReader) size(what string) (int, error) {
	n, err := t.int(what)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, models.NewError(models.ErrFormat, "load", t.count-1, float64(n),
			"negative "+what)
	}
	return n, nil
}

// preallocLimit caps the capacity reserved from a count read in the file, so
// that a count larger than the data fails as truncation instead of allocating.
const preallocLimit = 1 << 16

func (t *tokenReader) vectors(n int, what string) ([]r3.Vec, error) {
	vs := make([]r3.Vec, 0, min(n, preallocLimit))
	for i := 0; i < n; i++ {
		var c [3]float64
		for k := range c {
			v, err := t.float(what)
			if err != nil {
				return nil, err
			}
			c[k] = v
		}
		vs = append(vs, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
	}
	return vs, nil
}

func (t *tokenReader) ints(n int, what string) ([]int, error) {
	vs := make([]int, 0, min(n, preallocLimit))
	for i := 0; i < n; i++ {
		v, err := t.int(what)
		if err != nil {
			return nil, err
		}
		vs = append(vs, v)
	}
	return vs, nil
}

// Load reads a polygon object from the file at path
func Load(path string) (*models.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh file: %w", err)
	}
	defer f.Close()

	mesh, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return mesh, nil
}

// Read parses a polygon object from r and validates its structure
func Read(r io.Reader) (*models.Mesh, error) {
	t := newTokenReader(r)

	marker, err := t.next("object kind")
	if err != nil {
		return nil, err
	}
	if marker != polygonsMarker {
		return nil, models.NewError(models.ErrFormat, "load", 0, math.NaN(),
			fmt.Sprintf("unsupported object kind %q, only polygons (P) are supported", marker))
	}

	mesh := &models.Mesh{}
	props := []*float64{
		&mesh.Surface.Ambient,
		&mesh.Surface.Diffuse,
		&mesh.Surface.Specular,
		&mesh.Surface.SpecularExponent,
		&mesh.Surface.Opacity,
	}
	for _, p := range props {
		if *p, err = t.float("surface properties"); err != nil {
			return nil, err
		}
	}

	nPoints, err := t.size("point count")
	if err != nil {
		return nil, err
	}
	if mesh.Points, err = t.vectors(nPoints, "points"); err != nil {
		return nil, err
	}
	if mesh.Normals, err = t.vectors(nPoints, "normals"); err != nil {
		return nil, err
	}

	nItems, err := t.size("polygon count")
	if err != nil {
		return nil, err
	}

	flag, err := t.int("colour flag")
	if err != nil {
		return nil, err
	}
	if flag < int(models.OneColour) || flag > int(models.PerVertexColours) {
		return nil, models.NewError(models.ErrFormat, "load", t.count-1, float64(flag),
			"invalid colour flag")
	}
	mesh.ColourFlag = models.ColourFlag(flag)
	nColours := 1
	switch mesh.ColourFlag {
	case models.PerItemColours:
		nColours = nItems
	case models.PerVertexColours:
		nColours = nPoints
	}
	mesh.Colours = make([]models.Colour, 0, min(nColours, preallocLimit))
	for i := 0; i < nColours; i++ {
		var c models.Colour
		for k := range c {
			if c[k], err = t.float("colours"); err != nil {
				return nil, err
			}
		}
		mesh.Colours = append(mesh.Colours, c)
	}

	if mesh.EndIndices, err = t.ints(nItems, "end indices"); err != nil {
		return nil, err
	}
	prev := 0
	for i, end := range mesh.EndIndices {
		if end < prev {
			return nil, models.NewError(models.ErrFormat, "load", i, float64(end),
				"end indices must not decrease")
		}
		prev = end
	}

	if mesh.Indices, err = t.ints(prev, "indices"); err != nil {
		return nil, err
	}

	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}
