package region

import (
	"errors"
	"math"
	"reach/grid"
	"testing"

	"github.com/stretchr/testify/require"
)

func unitGrid(t *testing.T, n int) *grid.Grid {
	t.Helper()
	g, err := grid.Uniform([]float64{-1, -1, -1, -1, -1, -1}, []float64{1, 1, 1, 1, 1, 1}, n)
	require.NoError(t, err)
	return g
}

var target = struct{ lower, upper []float64 }{
	lower: []float64{0.6, 0.1, -Unbounded, -Unbounded, -Unbounded, -Unbounded},
	upper: []float64{0.8, 0.3, Unbounded, Unbounded, Unbounded, Unbounded},
}

func TestCaptureSet(t *testing.T) {
	g := unitGrid(t, 6)

	capture, err := CaptureSet(g, 0.1, Capture)
	require.NoError(t, err)
	require.NoError(t, capture.Matches(g))

	t.Run("co-located cars are captured", func(t *testing.T) {
		idx := g.Nearest([]float64{0, 0, 0, 0, 0, 0})
		require.InDelta(t, -0.1, capture.Data[g.Index(idx)], 1e-6)
	})

	t.Run("opposite corners are far from capture", func(t *testing.T) {
		idx := g.Nearest([]float64{-1, -1, 0, 1, 1, 0})
		require.InDelta(t, 2*math.Sqrt2-0.1, capture.Data[g.Index(idx)], 1e-6)
		require.Greater(t, capture.Data[g.Index(idx)], float32(0))
	})

	t.Run("headings are ignored", func(t *testing.T) {
		a := g.Nearest([]float64{0.2, 0.6, -1, -0.6, 0.2, -1})
		b := g.Nearest([]float64{0.2, 0.6, 1, -0.6, 0.2, 0.6})
		require.Equal(t, capture.Data[g.Index(a)], capture.Data[g.Index(b)])
	})

	t.Run("escape is the exact negation of capture", func(t *testing.T) {
		escape, err := CaptureSet(g, 0.1, Escape)
		require.NoError(t, err)
		for i := range capture.Data {
			require.Equal(t, -capture.Data[i], escape.Data[i])
		}
	})
}

func TestCaptureSetInvalidArguments(t *testing.T) {
	_, err := CaptureSet(unitGrid(t, 3), 0.1, CaptureMode(5))
	require.True(t, errors.Is(err, ErrInvalidArgument))

	small, err := grid.Uniform([]float64{-1, -1}, []float64{1, 1}, 3)
	require.NoError(t, err)
	_, err = CaptureSet(small, 0.1, Capture)
	require.True(t, errors.Is(err, ErrInvalidArgument))

	_, err = ParseCaptureMode("evade")
	require.True(t, errors.Is(err, ErrInvalidArgument))
	m, err := ParseCaptureMode("escape")
	require.NoError(t, err)
	require.Equal(t, Escape, m)
}

func TestRectangleDistance(t *testing.T) {
	t.Run("inside the target", func(t *testing.T) {
		p := []float64{0.7, 0.2, 0.5, -0.3, 0.9, -0.9}
		require.InDelta(t, -0.1, RectangleDistance(p, target.lower, target.upper), 1e-12)
	})

	t.Run("outside the target", func(t *testing.T) {
		p := []float64{0, 0, 0.5, -0.3, 0.9, -0.9}
		require.InDelta(t, 0.6, RectangleDistance(p, target.lower, target.upper), 1e-12)
	})

	t.Run("outside every bound", func(t *testing.T) {
		lower := []float64{0, 0}
		upper := []float64{1, 1}
		require.Greater(t, RectangleDistance([]float64{2, -3}, lower, upper), 0.0)
		require.Less(t, RectangleDistance([]float64{0.5, 0.5}, lower, upper), 0.0)
	})
}

func TestRectangle(t *testing.T) {
	g := unitGrid(t, 6)

	f, err := Rectangle(g, target.lower, target.upper)
	require.NoError(t, err)
	require.NoError(t, f.Matches(g))

	centre := g.Index(g.Nearest([]float64{0, 0, 0, 0, 0, 0}))
	require.Greater(t, f.Data[centre], float32(0))

	g2, err := grid.New(
		[]float64{0.5, 0, -1, -1, -1, -1},
		[]float64{0.9, 0.4, 1, 1, 1, 1},
		[]int{5, 5, 2, 2, 2, 2})
	require.NoError(t, err)
	f2, err := Rectangle(g2, target.lower, target.upper)
	require.NoError(t, err)
	inside := g2.Index(g2.Nearest([]float64{0.7, 0.2, 1, -1, 1, -1}))
	require.Less(t, f2.Data[inside], float32(0))

	_, err = Rectangle(g, []float64{0}, []float64{1})
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = Rectangle(g, target.upper, target.lower)
	require.True(t, errors.Is(err, ErrInvalidArgument))
}

func TestPlanarBound(t *testing.T) {
	g := unitGrid(t, 3)
	b := PlanarBound(g, target.lower, target.upper, 0, 1)
	require.Equal(t, 0.6, b.Min.X())
	require.Equal(t, 0.3, b.Max.Y())

	wide := PlanarBound(g, target.lower, target.upper, 2, 3)
	require.Equal(t, -1.0, wide.Min.X(), "unbounded axes clip to the grid")
	require.Equal(t, 1.0, wide.Max.Y())
}
