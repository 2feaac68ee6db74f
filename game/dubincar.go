package game

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Joint state layout: attacker (xA, yA, thetaA) followed by defender (xD, yD, thetaD).
const (
	XA = iota
	YA
	ThetaA
	XD
	YD
	ThetaD
	StateDims
)

var StateNames = [StateDims]string{"xA", "yA", "thetaA", "xD", "yD", "thetaD"}

// Params holds both cars' speeds, turn-rate bounds and optimization modes.
type Params struct {
	SpeedA float64 `yaml:"speed_a" json:"speed_a"`
	SpeedD float64 `yaml:"speed_d" json:"speed_d"`
	UMin   float64 `yaml:"u_min" json:"u_min"`
	UMax   float64 `yaml:"u_max" json:"u_max"`
	DMin   float64 `yaml:"d_min" json:"d_min"`
	DMax   float64 `yaml:"d_max" json:"d_max"`
	UMode  Mode    `yaml:"u_mode" json:"u_mode"`
	DMode  Mode    `yaml:"d_mode" json:"d_mode"`
}

func DefaultParams() Params {
	return Params{
		SpeedA: 1,
		SpeedD: 1,
		UMin:   -1,
		UMax:   1,
		DMin:   -1,
		DMax:   1,
		UMode:  Min,
		DMode:  Max,
	}
}

func (p Params) Validate() error {
	if p.SpeedA <= 0 || p.SpeedD <= 0 {
		return fmt.Errorf("speeds must be positive, got attacker=%v defender=%v", p.SpeedA, p.SpeedD)
	}
	if p.UMin > p.UMax {
		return fmt.Errorf("control bounds inverted: [%v, %v]", p.UMin, p.UMax)
	}
	if p.DMin > p.DMax {
		return fmt.Errorf("disturbance bounds inverted: [%v, %v]", p.DMin, p.DMax)
	}
	if !p.UMode.Valid() || !p.DMode.Valid() {
		return fmt.Errorf("invalid modes u=%v d=%v", p.UMode, p.DMode)
	}
	return nil
}

// Dynamics is the time derivative of the joint state. The attacker steers
// with u, the defender with d.
func Dynamics[T any](alg Algebra[T], p Params, state [StateDims]T, u, d T) [StateDims]T {
	speedA := alg.Const(p.SpeedA)
	speedD := alg.Const(p.SpeedD)
	return [StateDims]T{
		alg.Mul(speedA, alg.Cos(state[ThetaA])),
		alg.Mul(speedA, alg.Sin(state[ThetaA])),
		u,
		alg.Mul(speedD, alg.Cos(state[ThetaD])),
		alg.Mul(speedD, alg.Sin(state[ThetaD])),
		d,
	}
}

// OptimalControl picks the attacker's turn rate from the sign of the value
// gradient along thetaA. A zero gradient keeps the default UMax.
func OptimalControl[T any](alg Algebra[T], p Params, spatDeriv [StateDims]T) T {
	return bangBang(alg, p.UMode, p.UMax, spatDeriv[ThetaA])
}

// OptimalDisturbance is the defender's counterpart on thetaD, DMode and DMax.
func OptimalDisturbance[T any](alg Algebra[T], p Params, spatDeriv [StateDims]T) T {
	return bangBang(alg, p.DMode, p.DMax, spatDeriv[ThetaD])
}

func bangBang[T any](alg Algebra[T], mode Mode, bound float64, g T) T {
	hi := alg.Const(bound)
	lo := alg.Neg(hi)
	switch mode {
	case Min:
		return alg.Select(g, lo, hi, hi)
	case Max:
		return alg.Select(g, hi, lo, hi)
	}
	panic(fmt.Sprintf("unexpected mode %v", mode))
}

type Option func(car *DubinCar1v1)

func WithSpeeds(attacker, defender float64) Option {
	return func(car *DubinCar1v1) {
		car.params.SpeedA = attacker
		car.params.SpeedD = defender
	}
}

func WithControlBounds(min, max float64) Option {
	return func(car *DubinCar1v1) {
		car.params.UMin = min
		car.params.UMax = max
	}
}

func WithDisturbanceBounds(min, max float64) Option {
	return func(car *DubinCar1v1) {
		car.params.DMin = min
		car.params.DMax = max
	}
}

func WithModes(u, d Mode) Option {
	return func(car *DubinCar1v1) {
		car.params.UMode = u
		car.params.DMode = d
	}
}

func WithParams(p Params) Option {
	return func(car *DubinCar1v1) {
		car.params = p
	}
}

// DubinCar1v1 is the attacker/defender pair. It carries no grid state.
type DubinCar1v1 struct {
	params Params
}

func NewDubinCar1v1(options ...Option) *DubinCar1v1 {
	car := &DubinCar1v1{params: DefaultParams()}
	for _, option := range options {
		option(car)
	}
	if err := car.params.Validate(); err != nil {
		panic(fmt.Sprintf("invalid dubin car parameters: %v", err))
	}
	return car
}

func (c *DubinCar1v1) Params() Params {
	return c.params
}

func (c *DubinCar1v1) Dynamics(state [StateDims]float64, u, d float64) [StateDims]float64 {
	return Dynamics[float64](Float[float64]{}, c.params, state, u, d)
}

func (c *DubinCar1v1) OptimalControl(spatDeriv [StateDims]float64) float64 {
	return OptimalControl[float64](Float[float64]{}, c.params, spatDeriv)
}

func (c *DubinCar1v1) OptimalDisturbance(spatDeriv [StateDims]float64) float64 {
	return OptimalDisturbance[float64](Float[float64]{}, c.params, spatDeriv)
}

// Positions splits a joint state into the two cars' planar positions.
func Positions(state [StateDims]float64) (attacker, defender orb.Point) {
	return orb.Point{state[XA], state[YA]}, orb.Point{state[XD], state[YD]}
}
