package visual

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"reach/grid"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

func testField(t *testing.T) (*grid.Grid, *grid.Field) {
	t.Helper()
	g, err := grid.New([]float64{-1, -1, 0}, []float64{1, 1, 1}, []int{5, 4, 3})
	require.NoError(t, err)
	f := grid.Fill(g, func(x []float64) float64 { return x[0]*x[0] + x[1]*x[1] - 0.5 + x[2] })
	return g, f
}

func TestSlice(t *testing.T) {
	g, f := testField(t)
	s, err := NewSlice(g, f, 0, 1, []int{0, 0, 2})
	require.NoError(t, err)

	c, r := s.Dims()
	require.Equal(t, 5, c)
	require.Equal(t, 4, r)
	require.Equal(t, -1.0, s.X(0))
	require.Equal(t, 1.0, s.Y(3))
	require.InDelta(t, 1+1-0.5+1, s.Z(0, 0), 1e-6)
	require.Equal(t, float64(f.At(4, 3, 2)), s.Z(4, 3))
	require.Contains(t, s.Title(), "thetaA=1.00")

	_, err = NewSlice(g, f, 1, 1, []int{0, 0, 0})
	require.Error(t, err)
	_, err = NewSlice(g, f, 0, 1, []int{0, 0})
	require.Error(t, err)
	_, err = NewSlice(g, f, 0, 1, []int{0, 0, 3})
	require.Error(t, err)
}

func TestSaveSlice(t *testing.T) {
	g, f := testField(t)
	s, err := NewSlice(g, f, 0, 1, []int{0, 0, 0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "plots", "slice.png")
	err = SaveSlice(s, Options{
		File:     path,
		DPI:      50,
		Overlays: []orb.Bound{{Min: orb.Point{0.2, 0.1}, Max: orb.Point{0.6, 0.4}}},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
}

func TestSaveConstantSlice(t *testing.T) {
	g, err := grid.New([]float64{0, 0}, []float64{1, 1}, []int{3, 3})
	require.NoError(t, err)
	s, err := NewSlice(g, grid.NewField(g), 0, 1, []int{0, 0})
	require.NoError(t, err)

	require.NoError(t, SaveSlice(s, Options{File: filepath.Join(t.TempDir(), "flat.png"), DPI: 50}))
}
