package cli

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"surfacesfetus/internal/models"
	"surfacesfetus/pkg/config"
	"surfacesfetus/pkg/obj"
)

// run executes the command tree with a configuration path that does not
// exist, so the built-in defaults apply unless args override them
func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

// writeTetrahedron saves the corner tetrahedron (origin and the three unit
// points) and returns its path
func writeTetrahedron(t *testing.T, dir string) string {
	t.Helper()
	mesh := models.NewTriangleMesh(
		[]r3.Vec{{}, {X: 1}, {Y: 1}, {Z: 1}},
		[][3]int{{0, 2, 1}, {0, 1, 3}, {1, 2, 3}, {0, 3, 2}},
	)
	path := filepath.Join(dir, "tetra.obj")
	require.NoError(t, obj.Save(mesh, path))
	return path
}

func writeLines(t *testing.T, path string, lines ...string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
	return path
}

func TestEdgy(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	output := filepath.Join(dir, "edges.txt")

	_, logs, err := run(t, "edgy", surface, output)
	require.NoError(t, err)
	assert.Contains(t, logs, "loaded surface")

	lengths, err := obj.ReadScalarField(output)
	require.NoError(t, err)
	require.Len(t, lengths, 4)
	assert.InDelta(t, 1.0, lengths[0], 1e-6)
	// vertex 1 reaches the origin (1) and two others at sqrt(2)
	assert.InDelta(t, (1+2*math.Sqrt2)/3, lengths[1], 1e-5)
}

func TestSmoothnessPrintsMean(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	curvature := writeLines(t, filepath.Join(dir, "curv.txt"), "1", "2", "3", "4")

	out, _, err := run(t, "smoothness", surface, curvature)
	require.NoError(t, err)
	// per-vertex 2, 4/3, 4/3, 2
	assert.Equal(t, "1.667\n", out)
}

func TestSmoothnessWritesField(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	curvature := writeLines(t, filepath.Join(dir, "curv.txt"), "1", "2", "3", "4")
	output := filepath.Join(dir, "smooth.txt")

	out, _, err := run(t, "smoothness", surface, curvature, output)
	require.NoError(t, err)
	assert.Empty(t, out)

	values, err := obj.ReadScalarField(output)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{2, 4.0 / 3, 4.0 / 3, 2}, []float64(values), 1e-12)
}

func TestSmoothnessCardinalityMismatch(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	curvature := writeLines(t, filepath.Join(dir, "curv.txt"), "1", "2")

	_, _, err := run(t, "smoothness", surface, curvature)
	assert.True(t, errors.Is(err, models.ErrCardinalityMismatch), "got %v", err)
}

func TestAspectReport(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	output := filepath.Join(dir, "ratios.txt")

	out, _, err := run(t, "aspect", surface, output)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "all triangles, n=4", lines[0])
	assert.Equal(t, "0 out of 4 (0.0%) outliers masked", lines[2])

	ratios, err := obj.ReadScalarField(output)
	require.NoError(t, err)
	assert.Len(t, ratios, 4)
	// the face opposite the origin is equilateral
	assert.InDelta(t, 1.0, ratios[2], 1e-9)
}

func TestAspectRejectFromConfig(t *testing.T) {
	dir := t.TempDir()
	flat := models.NewTriangleMesh([]r3.Vec{{}, {X: 1}, {X: 2}}, [][3]int{{0, 1, 2}})
	surface := filepath.Join(dir, "flat.obj")
	require.NoError(t, obj.Save(flat, surface))
	cfgPath := writeLines(t, filepath.Join(dir, "cfg.yaml"), "quality:", "  degenerate: reject")

	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"aspect", surface, "--config", cfgPath})
	err := cmd.Execute()
	assert.True(t, errors.Is(err, models.ErrDegenerateGeometry), "got %v", err)

	// the default policy reports the triangle as an outlier instead
	out, _, err := run(t, "aspect", surface)
	require.NoError(t, err)
	assert.Contains(t, out, "1 out of 1 (100.0%) outliers masked")
}

func TestParm(t *testing.T) {
	dir := t.TempDir()
	octahedron := models.NewTriangleMesh(
		[]r3.Vec{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1}},
		[][3]int{
			{0, 2, 4}, {2, 1, 4}, {1, 3, 4}, {3, 0, 4},
			{2, 0, 5}, {1, 2, 5}, {3, 1, 5}, {0, 3, 5},
		},
	)
	sphere := filepath.Join(dir, "sphere.obj")
	require.NoError(t, obj.Save(octahedron, sphere))
	output := filepath.Join(dir, "out.obj")

	_, _, err := run(t, "parm", "--sphere", sphere, "2", output)
	require.NoError(t, err)

	surface, err := obj.Load(output)
	require.NoError(t, err)
	require.Equal(t, 6, surface.NumPoints())
	for i, p := range surface.Points {
		assert.InDelta(t, 2.0, r3.Norm(p), 1e-5, "point %d", i)
	}
	assert.InDelta(t, 1.0, r3.Norm(surface.Normals[4]), 1e-5)

	_, _, err = run(t, "parm", "--sphere", sphere, "1", "2", output)
	assert.True(t, errors.Is(err, models.ErrCardinalityMismatch), "got %v", err)

	_, _, err = run(t, "parm", "--sphere", sphere, "2 +", output)
	assert.True(t, errors.Is(err, models.ErrFormat), "got %v", err)
}

func TestAnglesIdeal(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	output := filepath.Join(dir, "angles.txt")
	mid := filepath.Join(dir, "mid.obj")

	_, _, err := run(t, "angles", "--ideal", "--recompute", "--mid", mid, surface, surface, output)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "0.000000\n0.000000\n0.000000\n0.000000\n", string(data))

	midSurface, err := obj.Load(mid)
	require.NoError(t, err)
	assert.Equal(t, 4, midSurface.NumPoints())
}

func TestAnglesDefaultRegularized(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	ratios := writeLines(t, filepath.Join(dir, "ratios.txt"), "1", "2", "2", "1")
	thickness := writeLines(t, filepath.Join(dir, "t.txt"), "1", "3", "2", "3")
	output := filepath.Join(dir, "angles.txt")

	_, _, err := run(t, "angles", "--ratios", ratios, "--regular", thickness, surface, surface, output)
	require.NoError(t, err)

	angles, err := obj.ReadScalarField(output)
	require.NoError(t, err)
	// acos(1/2) = pi/3 scaled by normalized thickness 0, 1, 0.5, 1
	assert.InDeltaSlice(t, []float64{0, math.Pi / 3, math.Pi / 6, 0}, []float64(angles), 1e-6)
}

func TestAnglesErrorMode(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)

	_, _, err := run(t, "angles", "--error", surface, surface, filepath.Join(dir, "angles.txt"))
	assert.True(t, errors.Is(err, models.ErrUnimplementedVariant), "got %v", err)
}

func TestDiemeshMask(t *testing.T) {
	dir := t.TempDir()
	values := writeLines(t, filepath.Join(dir, "values.txt"), "0.1", "0.6", "0.9", "0.59")
	output := filepath.Join(dir, "mask.txt")

	_, _, err := run(t, "diemesh-mask", values, output)
	require.NoError(t, err)
	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "1\n0\n0\n1\n", string(data))

	_, _, err = run(t, "diemesh-mask", "--invert", "--threshold", "0.95", values, output)
	require.NoError(t, err)
	data, err = os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "0\n0\n0\n0\n", string(data))
}

func TestExportSTL(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	output := filepath.Join(dir, "tetra.stl")

	_, logs, err := run(t, "export-stl", surface, output)
	require.NoError(t, err)
	assert.Contains(t, logs, "wrote STL")

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.EqualValues(t, 84+50*4, info.Size())
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "surfacesfetus.yaml")

	out, _, err := run(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig(), cfg)
}

func TestLogLevelFlag(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)

	_, logs, err := run(t, "export-stl", surface, filepath.Join(dir, "a.stl"), "--log-level", "error")
	require.NoError(t, err)
	assert.Empty(t, logs)

	_, logs, err = run(t, "export-stl", surface, filepath.Join(dir, "b.stl"), "--log-level", "debug")
	require.NoError(t, err)
	assert.Contains(t, logs, "stage finished")
}

func TestMissingInput(t *testing.T) {
	_, _, err := run(t, "edgy", filepath.Join(t.TempDir(), "nope.obj"), "out.txt")
	assert.True(t, errors.Is(err, os.ErrNotExist), "got %v", err)
}

func TestHistograms(t *testing.T) {
	dir := t.TempDir()
	surface := writeTetrahedron(t, dir)
	aspectPNG := filepath.Join(dir, "aspect.png")
	edgesPNG := filepath.Join(dir, "edges.png")

	_, logs, err := run(t, "aspect", "--histogram", aspectPNG, surface)
	require.NoError(t, err)
	assert.Contains(t, logs, "wrote histogram")
	assert.FileExists(t, aspectPNG)

	_, _, err = run(t, "edgy", "--histogram", edgesPNG, surface, filepath.Join(dir, "edges.txt"))
	require.NoError(t, err)
	assert.FileExists(t, edgesPNG)
}
