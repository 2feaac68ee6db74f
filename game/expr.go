package game

import (
	"fmt"
	"math"
	"strconv"
)

// Expr is a node of a symbolic scalar expression. Variables are looked up by
// name at evaluation time; a missing variable evaluates to NaN.
type Expr interface {
	Eval(env map[string]float64) float64
	String() string
}

// Var returns a named variable expression.
func Var(name string) Expr { return variable(name) }

type constant float64

func (c constant) Eval(map[string]float64) float64 { return float64(c) }
func (c constant) String() string {
	return strconv.FormatFloat(float64(c), 'g', -1, 64)
}

type variable string

func (v variable) Eval(env map[string]float64) float64 {
	x, ok := env[string(v)]
	if !ok {
		return math.NaN()
	}
	return x
}
func (v variable) String() string { return string(v) }

type unary struct {
	fn string
	a  Expr
}

func (u unary) Eval(env map[string]float64) float64 {
	x := u.a.Eval(env)
	switch u.fn {
	case "neg":
		return -x
	case "cos":
		return math.Cos(x)
	case "sin":
		return math.Sin(x)
	}
	panic("unknown function " + u.fn)
}

func (u unary) String() string {
	if u.fn == "neg" {
		return fmt.Sprintf("(-%s)", u.a)
	}
	return fmt.Sprintf("%s(%s)", u.fn, u.a)
}

type binary struct {
	op   string
	a, b Expr
}

func (b binary) Eval(env map[string]float64) float64 {
	switch b.op {
	case "*":
		return b.a.Eval(env) * b.b.Eval(env)
	}
	panic("unknown operator " + b.op)
}

func (b binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.a, b.op, b.b)
}

type selection struct {
	g, pos, neg, zero Expr
}

func (s selection) Eval(env map[string]float64) float64 {
	g := s.g.Eval(env)
	switch {
	case g > 0:
		return s.pos.Eval(env)
	case g < 0:
		return s.neg.Eval(env)
	default:
		return s.zero.Eval(env)
	}
}

func (s selection) String() string {
	return fmt.Sprintf("select(%s, %s, %s, %s)", s.g, s.pos, s.neg, s.zero)
}
