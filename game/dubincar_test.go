package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

func randomGradient(r *rand.Rand) [StateDims]float64 {
	var g [StateDims]float64
	for i := range g {
		g[i] = r.NormFloat64()
	}
	return g
}

func TestDynamics(t *testing.T) {
	car := NewDubinCar1v1(WithSpeeds(2, 0.5))
	state := [StateDims]float64{0.3, -0.2, math.Pi / 2, 0.1, 0.4, 0}

	got := car.Dynamics(state, 0.7, -0.3)

	require.InDelta(t, 0, got[XA], 1e-12, "attacker moves along its heading")
	require.InDelta(t, 2, got[YA], 1e-12)
	require.Equal(t, 0.7, got[ThetaA], "attacker heading rate is the control")
	require.InDelta(t, 0.5, got[XD], 1e-12)
	require.InDelta(t, 0, got[YD], 1e-12)
	require.Equal(t, -0.3, got[ThetaD], "defender heading rate is the disturbance")
}

func TestOptimalControl(t *testing.T) {
	t.Run("min mode turns against the gradient", func(t *testing.T) {
		car := NewDubinCar1v1(WithModes(Min, Max), WithControlBounds(-2, 2))
		require.Equal(t, -2.0, car.OptimalControl([StateDims]float64{ThetaA: 1}))
		require.Equal(t, 2.0, car.OptimalControl([StateDims]float64{ThetaA: -1}))
	})

	t.Run("max mode turns with the gradient", func(t *testing.T) {
		car := NewDubinCar1v1(WithModes(Max, Max), WithControlBounds(-2, 2))
		require.Equal(t, 2.0, car.OptimalControl([StateDims]float64{ThetaA: 1}))
		require.Equal(t, -2.0, car.OptimalControl([StateDims]float64{ThetaA: -1}))
	})

	t.Run("zero or undefined gradient keeps the upper bound", func(t *testing.T) {
		for _, mode := range []Mode{Min, Max} {
			car := NewDubinCar1v1(WithModes(mode, mode))
			require.Equal(t, 1.0, car.OptimalControl([StateDims]float64{}))
			require.Equal(t, 1.0, car.OptimalControl([StateDims]float64{ThetaA: math.NaN()}))
			require.Equal(t, 1.0, car.OptimalDisturbance([StateDims]float64{}))
		}
	})

	t.Run("only the attacker heading component matters", func(t *testing.T) {
		car := NewDubinCar1v1()
		g := [StateDims]float64{5, 5, -1, 5, 5, 5}
		require.Equal(t, 1.0, car.OptimalControl(g))
	})
}

func TestOptimalControlIsBangBang(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for _, mode := range []Mode{Min, Max} {
		car := NewDubinCar1v1(WithModes(mode, mode), WithControlBounds(-0.8, 0.8), WithDisturbanceBounds(-1.5, 1.5))
		for i := 0; i < 1000; i++ {
			g := randomGradient(r)
			u := car.OptimalControl(g)
			d := car.OptimalDisturbance(g)
			require.Contains(t, []float64{-0.8, 0.8}, u)
			require.Contains(t, []float64{-1.5, 1.5}, d)
		}
	}
}

func TestOptimalControlSymmetry(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	minCar := NewDubinCar1v1(WithModes(Min, Min))
	maxCar := NewDubinCar1v1(WithModes(Max, Max))
	for i := 0; i < 1000; i++ {
		g := randomGradient(r)
		neg := g
		neg[ThetaA] = -g[ThetaA]
		neg[ThetaD] = -g[ThetaD]

		require.Equal(t, minCar.OptimalControl(g), maxCar.OptimalControl(neg),
			"negating the gradient and flipping the mode should pick the same control")
		require.Equal(t, minCar.OptimalDisturbance(g), maxCar.OptimalDisturbance(neg))
	}
}

func TestOptimalDisturbance(t *testing.T) {
	car := NewDubinCar1v1(WithModes(Min, Max), WithDisturbanceBounds(-3, 3))

	require.Equal(t, 3.0, car.OptimalDisturbance([StateDims]float64{ThetaD: 1}))
	require.Equal(t, -3.0, car.OptimalDisturbance([StateDims]float64{ThetaD: -1}))
	require.Equal(t, 3.0, car.OptimalDisturbance([StateDims]float64{ThetaA: -1}),
		"disturbance ignores the attacker heading component")
}

func TestFloat32Strategy(t *testing.T) {
	p := DefaultParams()
	alg := Float[float32]{}
	got := OptimalControl[float32](alg, p, [StateDims]float32{ThetaA: 0.25})
	require.Equal(t, float32(-1), got)

	dx := Dynamics[float32](alg, p, [StateDims]float32{}, 0.5, -0.5)
	require.Equal(t, [StateDims]float32{1, 0, 0.5, 1, 0, -0.5}, dx)
}

func TestNewDubinCar1v1Panics(t *testing.T) {
	require.Panics(t, func() { NewDubinCar1v1(WithSpeeds(0, 1)) })
	require.Panics(t, func() { NewDubinCar1v1(WithModes(Mode(7), Max)) })
	require.Panics(t, func() { NewDubinCar1v1(WithControlBounds(1, -1)) })
}

func TestPositions(t *testing.T) {
	a, d := Positions([StateDims]float64{1, 2, 3, 4, 5, 6})
	require.Equal(t, 1.0, a.X())
	require.Equal(t, 2.0, a.Y())
	require.Equal(t, 4.0, d.X())
	require.Equal(t, 5.0, d.Y())
}

func TestMode(t *testing.T) {
	t.Run("parse", func(t *testing.T) {
		m, err := ParseMode("max")
		require.NoError(t, err)
		require.Equal(t, Max, m)

		_, err = ParseMode("maximum")
		require.Error(t, err)
	})

	t.Run("yaml", func(t *testing.T) {
		var p Params
		require.NoError(t, yaml.Unmarshal([]byte("u_mode: max\nd_mode: min\n"), &p))
		require.Equal(t, Max, p.UMode)
		require.Equal(t, Min, p.DMode)

		require.Error(t, yaml.Unmarshal([]byte("u_mode: mni\n"), &p))

		out, err := yaml.Marshal(p)
		require.NoError(t, err)
		require.Contains(t, string(out), "u_mode: max")
	})

	t.Run("string", func(t *testing.T) {
		require.Equal(t, "min", Min.String())
		require.Equal(t, "Mode(3)", Mode(3).String())
	})
}
