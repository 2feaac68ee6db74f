package game

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Algebra is the set of operations the dynamics and policies need from a
// number representation. The same rule code runs on plain floats for direct
// evaluation and on Expr trees for export to the solver kernel.
type Algebra[T any] interface {
	Const(v float64) T
	Mul(a, b T) T
	Neg(a T) T
	Cos(a T) T
	Sin(a T) T
	// Select returns pos when g > 0, neg when g < 0 and zero otherwise
	// (including an undefined sign).
	Select(g, pos, neg, zero T) T
}

// Float evaluates directly on machine floats.
type Float[F constraints.Float] struct{}

func (Float[F]) Const(v float64) F { return F(v) }
func (Float[F]) Mul(a, b F) F      { return a * b }
func (Float[F]) Neg(a F) F         { return -a }
func (Float[F]) Cos(a F) F         { return F(math.Cos(float64(a))) }
func (Float[F]) Sin(a F) F         { return F(math.Sin(float64(a))) }

func (Float[F]) Select(g, pos, neg, zero F) F {
	switch {
	case g > 0:
		return pos
	case g < 0:
		return neg
	default:
		return zero
	}
}

// Symbolic builds expression trees instead of numbers.
type Symbolic struct{}

func (Symbolic) Const(v float64) Expr { return constant(v) }
func (Symbolic) Mul(a, b Expr) Expr   { return binary{op: "*", a: a, b: b} }
func (Symbolic) Neg(a Expr) Expr      { return unary{fn: "neg", a: a} }
func (Symbolic) Cos(a Expr) Expr      { return unary{fn: "cos", a: a} }
func (Symbolic) Sin(a Expr) Expr      { return unary{fn: "sin", a: a} }

func (Symbolic) Select(g, pos, neg, zero Expr) Expr {
	return selection{g: g, pos: pos, neg: neg, zero: zero}
}
