package solver

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"reach/game"
	"reach/grid"
)

// ErrPreconditionViolation marks inputs or outputs that do not fit the grid.
var ErrPreconditionViolation = errors.New("precondition violation")

type TargetSetMode string

const (
	MinVWithV0      TargetSetMode = "minVWithV0"
	MaxVWithV0      TargetSetMode = "maxVWithV0"
	MinVWithVTarget TargetSetMode = "minVWithVTarget"
	MaxVWithVTarget TargetSetMode = "maxVWithVTarget"
)

type ObstacleSetMode string

const (
	NoObstacle       ObstacleSetMode = ""
	MaxVWithObstacle ObstacleSetMode = "maxVWithObstacle"
)

// Modes picks how the solver folds the target and avoid sets into the value
// function at each step.
type Modes struct {
	TargetSetMode   TargetSetMode   `json:"TargetSetMode" yaml:"target_set_mode"`
	ObstacleSetMode ObstacleSetMode `json:"ObstacleSetMode,omitempty" yaml:"obstacle_set_mode"`
}

func (m Modes) Validate() error {
	switch m.TargetSetMode {
	case MinVWithV0, MaxVWithV0, MinVWithVTarget, MaxVWithVTarget:
	default:
		return fmt.Errorf("unknown target set mode %q", m.TargetSetMode)
	}
	switch m.ObstacleSetMode {
	case NoObstacle, MaxVWithObstacle:
	default:
		return fmt.Errorf("unknown obstacle set mode %q", m.ObstacleSetMode)
	}
	return nil
}

// Model is what the solver needs from a game: its symbolic kernel.
type Model interface {
	Kernel() game.Kernel
}

type Job struct {
	Model  Model
	Grid   *grid.Grid
	Target *grid.Field
	// Avoid may be nil when ObstacleSetMode is NoObstacle.
	Avoid            *grid.Field
	Tau              []float64
	Modes            Modes
	SaveAllTimeSteps bool
}

// Validate checks the job against its grid before any work is started.
func (j Job) Validate() error {
	if j.Model == nil || j.Grid == nil || j.Target == nil {
		return fmt.Errorf("%w: job needs a model, a grid and a target set", ErrPreconditionViolation)
	}
	if len(j.Tau) < 2 {
		return fmt.Errorf("%w: need at least two time points, got %d", ErrPreconditionViolation, len(j.Tau))
	}
	if err := j.Modes.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPreconditionViolation, err)
	}
	if err := j.Target.Matches(j.Grid); err != nil {
		return fmt.Errorf("%w: target set: %w", ErrPreconditionViolation, err)
	}
	if j.Modes.ObstacleSetMode != NoObstacle {
		if j.Avoid == nil {
			return fmt.Errorf("%w: obstacle mode %q without an avoid set", ErrPreconditionViolation, j.Modes.ObstacleSetMode)
		}
		if err := j.Avoid.Matches(j.Grid); err != nil {
			return fmt.Errorf("%w: avoid set: %w", ErrPreconditionViolation, err)
		}
	}
	return nil
}

// ResultShape is the shape a solver must return for the job.
func (j Job) ResultShape() []int {
	shape := j.Grid.Shape()
	if j.SaveAllTimeSteps {
		shape = append(shape, len(j.Tau))
	}
	return shape
}

// Result is the value function. With history retained the trailing axis of
// Value indexes time.
type Result struct {
	Value   *grid.Field
	History bool
}

func NewResult(j Job, value *grid.Field) (*Result, error) {
	if want := j.ResultShape(); !slices.Equal(value.Shape, want) || len(value.Data) != shapeSize(want) {
		return nil, fmt.Errorf("%w: solver returned shape %v, want %v", ErrPreconditionViolation, value.Shape, want)
	}
	return &Result{Value: value, History: j.SaveAllTimeSteps}, nil
}

// Steps is the number of time snapshots held.
func (r *Result) Steps() int {
	if !r.History {
		return 1
	}
	return r.Value.Shape[len(r.Value.Shape)-1]
}

// Snapshot extracts time step t as a grid-shaped field.
func (r *Result) Snapshot(t int) *grid.Field {
	if !r.History {
		return r.Value
	}
	steps := r.Steps()
	shape := r.Value.Shape[:len(r.Value.Shape)-1]
	out := &grid.Field{Shape: slices.Clone(shape), Data: make([]float32, len(r.Value.Data)/steps)}
	for i := range out.Data {
		out.Data[i] = r.Value.Data[i*steps+t]
	}
	return out
}

// Final is the value function at the end of the horizon.
func (r *Result) Final() *grid.Field {
	return r.Snapshot(r.Steps() - 1)
}

// Solver runs the Hamilton-Jacobi-Isaacs level-set computation.
type Solver interface {
	Solve(ctx context.Context, job Job) (*Result, error)
}

func shapeSize(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}
