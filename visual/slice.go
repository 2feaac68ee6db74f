package visual

import (
	"fmt"

	"reach/game"
	"reach/grid"
)

// Slice is a 2D cut through a field: two free axes, every other axis pinned
// to a grid index. It satisfies plotter.GridXYZ.
type Slice struct {
	g     *grid.Grid
	f     *grid.Field
	xAxis int
	yAxis int
	fixed []int
}

func NewSlice(g *grid.Grid, f *grid.Field, xAxis, yAxis int, fixed []int) (*Slice, error) {
	if err := f.Matches(g); err != nil {
		return nil, err
	}
	if xAxis == yAxis || xAxis < 0 || yAxis < 0 || xAxis >= g.Dims() || yAxis >= g.Dims() {
		return nil, fmt.Errorf("slice axes %d and %d must be distinct axes of a %d-dimensional grid", xAxis, yAxis, g.Dims())
	}
	if len(fixed) != g.Dims() {
		return nil, fmt.Errorf("slice needs %d fixed indices, got %d", g.Dims(), len(fixed))
	}
	shape := g.Shape()
	for k, i := range fixed {
		if i < 0 || i >= shape[k] {
			return nil, fmt.Errorf("slice index %d out of range on axis %d", i, k)
		}
	}
	return &Slice{g: g, f: f, xAxis: xAxis, yAxis: yAxis, fixed: append([]int(nil), fixed...)}, nil
}

func (s *Slice) Dims() (c, r int) {
	shape := s.g.Shape()
	return shape[s.xAxis], shape[s.yAxis]
}

func (s *Slice) Z(c, r int) float64 {
	idx := append([]int(nil), s.fixed...)
	idx[s.xAxis] = c
	idx[s.yAxis] = r
	return float64(s.f.Data[s.g.Index(idx)])
}

func (s *Slice) X(c int) float64 { return s.g.Axis(s.xAxis)[c] }
func (s *Slice) Y(r int) float64 { return s.g.Axis(s.yAxis)[r] }

// Title names the free axes and the pinned coordinates.
func (s *Slice) Title() string {
	title := fmt.Sprintf("%s vs %s", axisName(s.yAxis), axisName(s.xAxis))
	for k, i := range s.fixed {
		if k == s.xAxis || k == s.yAxis {
			continue
		}
		title += fmt.Sprintf(", %s=%.2f", axisName(k), s.g.Axis(k)[i])
	}
	return title
}

func axisName(k int) string {
	if k < game.StateDims {
		return game.StateNames[k]
	}
	return fmt.Sprintf("x%d", k)
}
