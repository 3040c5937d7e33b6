package obj

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
)

// ReadScalarField loads a one-column text file, one value per line. Blank
// lines are ignored.
func ReadScalarField(path string) (models.ScalarField, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scalar file: %w", err)
	}
	defer f.Close()

	values, err := ParseScalarField(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// ParseScalarField reads one value per line from r
func ParseScalarField(r io.Reader) (models.ScalarField, error) {
	var values models.ScalarField
	err := scanRows(r, 1, func(row []float64) {
		values = append(values, row[0])
	})
	return values, err
}

// ReadVectorField loads a three-column text file such as the per-vertex
// normals produced by depth_potential -normals.
func ReadVectorField(path string) ([]r3.Vec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector file: %w", err)
	}
	defer f.Close()

	var vectors []r3.Vec
	err = scanRows(f, 3, func(row []float64) {
		vectors = append(vectors, r3.Vec{X: row[0], Y: row[1], Z: row[2]})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vectors, nil
}

// maxLineLength bounds a single row of a field file
const maxLineLength = 1 << 20

func scanRows(r io.Reader, columns int, emit func([]float64)) error {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), maxLineLength)
	row := make([]float64, columns)
	line := 0
	for s.Scan() {
		line++
		fields := strings.Fields(s.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != columns {
			return models.NewError(models.ErrFormat, "read field", line, float64(len(fields)),
				fmt.Sprintf("expected %d columns", columns))
		}
		for i, tok := range fields {
			v, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return models.NewError(models.ErrFormat, "read field", line, math.NaN(),
					fmt.Sprintf("invalid number %q", tok))
			}
			row[i] = v
		}
		emit(row)
	}
	if err := s.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return models.NewError(models.ErrFormat, "read field", line+1, math.NaN(),
				fmt.Sprintf("line longer than %d bytes", maxLineLength))
		}
		return err
	}
	return nil
}

// WriteScalarField writes values to path, one per line, using the shortest
// representation that parses back to the same value.
func WriteScalarField(values []float64, path string) error {
	return writeLines(path, len(values), func(buf []byte, i int) []byte {
		return strconv.AppendFloat(buf, values[i], 'g', -1, 64)
	})
}

// WriteFixedField writes values to path, one per line, with six decimals
func WriteFixedField(values []float64, path string) error {
	return writeLines(path, len(values), func(buf []byte, i int) []byte {
		return strconv.AppendFloat(buf, values[i], 'f', 6, 64)
	})
}

// WriteIntegerField writes integer labels to path, one per line
func WriteIntegerField(values []int, path string) error {
	return writeLines(path, len(values), func(buf []byte, i int) []byte {
		return strconv.AppendInt(buf, int64(values[i]), 10)
	})
}

func writeLines(path string, n int, format func([]byte, int) []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	w := bufio.NewWriter(f)
	var buf []byte
	for i := 0; i < n; i++ {
		buf = format(buf[:0], i)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
