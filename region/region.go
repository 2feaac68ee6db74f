package region

import (
	"errors"
	"fmt"
	"math"
	"reach/game"
	"reach/grid"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

var ErrInvalidArgument = errors.New("invalid argument")

// Unbounded is used as a rectangle bound on axes the rectangle does not
// constrain. It lies well outside any normalized grid.
const Unbounded = 1000.0

// CaptureMode selects which side of the capture radius is "inside".
type CaptureMode int

const (
	// Capture is negative while the cars are within the capture radius.
	Capture CaptureMode = iota
	// Escape is negative while the cars are farther apart than the radius.
	Escape
)

func ParseCaptureMode(s string) (CaptureMode, error) {
	switch s {
	case "capture":
		return Capture, nil
	case "escape":
		return Escape, nil
	}
	return 0, fmt.Errorf("%w: capture mode %q", ErrInvalidArgument, s)
}

func (m CaptureMode) String() string {
	switch m {
	case Capture:
		return "capture"
	case Escape:
		return "escape"
	}
	return fmt.Sprintf("CaptureMode(%d)", int(m))
}

// CaptureDistance is the signed distance of a joint state to the capture
// boundary. Headings do not matter.
func CaptureDistance(state [game.StateDims]float64, radius float64, mode CaptureMode) (float64, error) {
	attacker, defender := game.Positions(state)
	dist := planar.Distance(attacker, defender)
	switch mode {
	case Capture:
		return dist - radius, nil
	case Escape:
		return radius - dist, nil
	}
	return 0, fmt.Errorf("%w: capture mode %v", ErrInvalidArgument, mode)
}

// CaptureSet evaluates CaptureDistance over a joint-state grid.
func CaptureSet(g *grid.Grid, radius float64, mode CaptureMode) (*grid.Field, error) {
	if g.Dims() != game.StateDims {
		return nil, fmt.Errorf("%w: capture set needs a %d-dimensional grid, got %d",
			ErrInvalidArgument, game.StateDims, g.Dims())
	}
	if _, err := CaptureDistance([game.StateDims]float64{}, radius, mode); err != nil {
		return nil, err
	}

	var state [game.StateDims]float64
	return grid.Fill(g, func(x []float64) float64 {
		copy(state[:], x)
		d, _ := CaptureDistance(state, radius, mode)
		return d
	}), nil
}

// RectangleDistance is the largest per-axis bound violation of p, which is
// negative strictly inside the box and positive outside it.
func RectangleDistance(p, lower, upper []float64) float64 {
	d := math.Inf(-1)
	for k, x := range p {
		d = max(d, x-upper[k], lower[k]-x)
	}
	return d
}

// Rectangle evaluates RectangleDistance over g.
func Rectangle(g *grid.Grid, lower, upper []float64) (*grid.Field, error) {
	if len(lower) != g.Dims() || len(upper) != g.Dims() {
		return nil, fmt.Errorf("%w: rectangle bounds have %d and %d entries for a %d-dimensional grid",
			ErrInvalidArgument, len(lower), len(upper), g.Dims())
	}
	for k := range lower {
		if lower[k] > upper[k] {
			return nil, fmt.Errorf("%w: rectangle axis %d bounds inverted: [%v, %v]",
				ErrInvalidArgument, k, lower[k], upper[k])
		}
	}
	return grid.Fill(g, func(x []float64) float64 {
		return RectangleDistance(x, lower, upper)
	}), nil
}

// PlanarBound projects the rectangle onto two axes, clipped to the grid.
func PlanarBound(g *grid.Grid, lower, upper []float64, xAxis, yAxis int) orb.Bound {
	lo, hi := g.Lower(), g.Upper()
	return orb.Bound{
		Min: orb.Point{max(lower[xAxis], lo[xAxis]), max(lower[yAxis], lo[yAxis])},
		Max: orb.Point{min(upper[xAxis], hi[xAxis]), min(upper[yAxis], hi[yAxis])},
	}
}
