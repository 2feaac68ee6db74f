package game

// Kernel is the symbolic form of the game handed to the external solver for
// compilation. State variables are named after StateNames, spatial derivative
// components are "p0".."p5", and the controls are "u" and "d".
type Kernel struct {
	State       []string `json:"state"`
	Dynamics    []string `json:"dynamics"`
	OptCtrl     string   `json:"opt_ctrl"`
	OptDstb     string   `json:"opt_dstb"`
	ControlVar  string   `json:"control_var"`
	DisturbVar  string   `json:"disturbance_var"`
	DerivPrefix string   `json:"deriv_prefix"`
	Params      Params   `json:"params"`
}

// KernelExprs returns the dynamics and policy expression trees.
func KernelExprs(p Params) (dynamics [StateDims]Expr, optCtrl, optDstb Expr) {
	var state, deriv [StateDims]Expr
	for i := range state {
		state[i] = Var(StateNames[i])
		deriv[i] = Var(derivName(i))
	}
	alg := Symbolic{}
	dynamics = Dynamics[Expr](alg, p, state, Var("u"), Var("d"))
	optCtrl = OptimalControl[Expr](alg, p, deriv)
	optDstb = OptimalDisturbance[Expr](alg, p, deriv)
	return dynamics, optCtrl, optDstb
}

func (c *DubinCar1v1) Kernel() Kernel {
	dynamics, optCtrl, optDstb := KernelExprs(c.params)
	k := Kernel{
		State:       StateNames[:],
		Dynamics:    make([]string, StateDims),
		OptCtrl:     optCtrl.String(),
		OptDstb:     optDstb.String(),
		ControlVar:  "u",
		DisturbVar:  "d",
		DerivPrefix: "p",
		Params:      c.params,
	}
	for i, e := range dynamics {
		k.Dynamics[i] = e.String()
	}
	return k
}

func derivName(i int) string {
	return "p" + string(rune('0'+i))
}
