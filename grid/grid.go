package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid is an axis-aligned discretization of a box. Axis k holds Points[k]
// evenly spaced coordinates from Lower[k] to Upper[k] inclusive. Fields over
// a grid are stored row-major with the last axis varying fastest.
type Grid struct {
	lower   []float64
	upper   []float64
	points  []int
	axes    [][]float64
	strides []int
	size    int
}

func New(lower, upper []float64, points []int) (*Grid, error) {
	dims := len(lower)
	if dims == 0 {
		return nil, fmt.Errorf("grid needs at least one axis")
	}
	if len(upper) != dims || len(points) != dims {
		return nil, fmt.Errorf("grid bounds and points disagree on dimension: lower=%d upper=%d points=%d",
			len(lower), len(upper), len(points))
	}

	g := &Grid{
		lower:   append([]float64(nil), lower...),
		upper:   append([]float64(nil), upper...),
		points:  append([]int(nil), points...),
		axes:    make([][]float64, dims),
		strides: make([]int, dims),
		size:    1,
	}
	for k := 0; k < dims; k++ {
		if points[k] < 2 {
			return nil, fmt.Errorf("axis %d needs at least 2 points, got %d", k, points[k])
		}
		if !(lower[k] < upper[k]) {
			return nil, fmt.Errorf("axis %d bounds not increasing: [%v, %v]", k, lower[k], upper[k])
		}
		g.axes[k] = floats.Span(make([]float64, points[k]), lower[k], upper[k])
	}
	for k := dims - 1; k >= 0; k-- {
		g.strides[k] = g.size
		g.size *= points[k]
	}
	return g, nil
}

// Uniform builds a grid with the same point count on every axis.
func Uniform(lower, upper []float64, n int) (*Grid, error) {
	points := make([]int, len(lower))
	for k := range points {
		points[k] = n
	}
	return New(lower, upper, points)
}

func (g *Grid) Dims() int { return len(g.points) }

// Size is the number of cells.
func (g *Grid) Size() int { return g.size }

func (g *Grid) Shape() []int { return append([]int(nil), g.points...) }

func (g *Grid) Lower() []float64 { return append([]float64(nil), g.lower...) }

func (g *Grid) Upper() []float64 { return append([]float64(nil), g.upper...) }

// Axis returns the coordinates of axis k. The slice is shared and must not be
// modified.
func (g *Grid) Axis(k int) []float64 { return g.axes[k] }

// Spacing is the distance between neighbouring coordinates on axis k.
func (g *Grid) Spacing(k int) float64 {
	return (g.upper[k] - g.lower[k]) / float64(g.points[k]-1)
}

// Index converts a multi-index to a flat offset.
func (g *Grid) Index(idx []int) int {
	flat := 0
	for k, i := range idx {
		flat += i * g.strides[k]
	}
	return flat
}

// Unravel writes the multi-index of flat into idx, which must have Dims entries.
func (g *Grid) Unravel(flat int, idx []int) {
	for k := range g.points {
		idx[k] = flat / g.strides[k]
		flat %= g.strides[k]
	}
}

// Point writes the coordinates of the cell at idx into dst.
func (g *Grid) Point(idx []int, dst []float64) {
	for k, i := range idx {
		dst[k] = g.axes[k][i]
	}
}

// Nearest returns the multi-index of the cell closest to p. Coordinates
// outside the grid snap to the boundary; ties go to the lower index and NaN
// maps to index 0. It panics if p does not have one coordinate per axis.
func (g *Grid) Nearest(p []float64) []int {
	if len(p) != g.Dims() {
		panic(fmt.Sprintf("grid: point has %d coordinates, grid has %d axes", len(p), g.Dims()))
	}
	idx := make([]int, g.Dims())
	for k, x := range p {
		if math.IsNaN(x) {
			continue
		}
		f := (x - g.lower[k]) / g.Spacing(k)
		i := int(math.Floor(f + 0.5))
		if f-math.Floor(f) == 0.5 {
			i = int(math.Floor(f))
		}
		idx[k] = max(0, min(g.points[k]-1, i))
	}
	return idx
}

// Each visits every cell in storage order with its flat offset and
// coordinates. The coordinate slice is reused between calls.
func (g *Grid) Each(fn func(flat int, x []float64)) {
	idx := make([]int, g.Dims())
	x := make([]float64, g.Dims())
	g.Point(idx, x)
	for flat := 0; flat < g.size; flat++ {
		fn(flat, x)
		for k := g.Dims() - 1; k >= 0; k-- {
			idx[k]++
			if idx[k] < g.points[k] {
				x[k] = g.axes[k][idx[k]]
				break
			}
			idx[k] = 0
			x[k] = g.axes[k][0]
		}
	}
}
