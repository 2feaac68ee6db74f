// Package config holds the run configuration. A Config is built once,
// validated, and then passed by value; nothing here is process-wide state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"reach/game"
	"reach/region"
	"reach/solver"

	"gopkg.in/yaml.v3"
)

// Composition is how the escape field and the target rectangle combine into
// the attacker-win set.
type Composition string

const (
	// Intersection takes the elementwise maximum: the attacker must be
	// outside the capture radius and inside the target.
	Intersection Composition = "intersection"
	// Union takes the elementwise minimum: either condition suffices.
	Union Composition = "union"
)

type Box struct {
	Lower []float64 `yaml:"lower"`
	Upper []float64 `yaml:"upper"`
}

type Grid struct {
	Lower  []float64 `yaml:"lower"`
	Upper  []float64 `yaml:"upper"`
	Points []int     `yaml:"points"`
}

type Solver struct {
	Modes            solver.Modes `yaml:"modes"`
	SaveAllTimeSteps bool         `yaml:"save_all_time_steps"`
	Command          []string     `yaml:"command"`
	WorkDir          string       `yaml:"work_dir"`
	// Env holds extra KEY=value entries for the solver process.
	Env []string `yaml:"env"`
}

type Plot struct {
	Enabled bool `yaml:"enabled"`
	// Dims are the two state axes drawn on the x and y axes.
	Dims [2]int `yaml:"dims"`
	// Slice fixes the remaining axes, one grid index per state axis; entries
	// for the plotted axes are ignored.
	Slice []int `yaml:"slice"`
	// File is suffixed with the grid size, so plots/value_slice.png becomes
	// plots/value_slice_grid6.png.
	File string `yaml:"file"`
}

type Output struct {
	Dir string `yaml:"dir"`
	// Metrics writes per-stage memory and timing samples next to the value function.
	Metrics bool `yaml:"metrics"`
	Plot    Plot `yaml:"plot"`
}

type Config struct {
	Grid           Grid        `yaml:"grid"`
	Game           game.Params `yaml:"game"`
	CaptureRadius  float64     `yaml:"capture_radius"`
	Target         Box         `yaml:"target"`
	WinComposition Composition `yaml:"win_composition"`
	// Obstacles are regions the defender gets stuck in.
	Obstacles []Box   `yaml:"obstacles"`
	Horizon   float64 `yaml:"horizon"`
	TimeStep  float64 `yaml:"time_step"`
	Solver    Solver  `yaml:"solver"`
	Output    Output  `yaml:"output"`
}

const GridSize = 6

const u = region.Unbounded

func Default() Config {
	return Config{
		Grid: Grid{
			Lower:  []float64{-1, -1, -1, -1, -1, -1},
			Upper:  []float64{1, 1, 1, 1, 1, 1},
			Points: []int{GridSize, GridSize, GridSize, GridSize, GridSize, GridSize},
		},
		Game:          game.DefaultParams(),
		CaptureRadius: 0.1,
		Target: Box{
			Lower: []float64{0.6, 0.1, -u, -u, -u, -u},
			Upper: []float64{0.8, 0.3, u, u, u, u},
		},
		WinComposition: Intersection,
		Obstacles: []Box{
			{Lower: []float64{-u, -u, -u, -u, -0.1, -1.0}, Upper: []float64{u, u, u, u, 0.1, -0.3}},
			{Lower: []float64{-u, -u, -u, -u, -0.1, 0.3}, Upper: []float64{u, u, u, u, 0.1, 0.6}},
		},
		Horizon:  2.5,
		TimeStep: 0.025,
		Solver: Solver{
			Modes: solver.Modes{
				TargetSetMode:   solver.MinVWithVTarget,
				ObstacleSetMode: solver.MaxVWithObstacle,
			},
			Command: []string{"python3", "-m", "reach_solver"},
		},
		Output: Output{
			Dir:     ".",
			Metrics: true,
			Plot: Plot{
				Enabled: true,
				Dims:    [2]int{0, 1},
				Slice:   []int{0, 0, 1, 2, 2, 1},
				File:    "plots/value_slice.png",
			},
		},
	}
}

// Load overlays the YAML file at path on Default and validates the result.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithGridSize returns a copy of c with n points on every axis.
func (c Config) WithGridSize(n int) Config {
	points := make([]int, len(c.Grid.Points))
	for k := range points {
		points[k] = n
	}
	c.Grid.Points = points
	slice := make([]int, len(c.Output.Plot.Slice))
	for k, i := range c.Output.Plot.Slice {
		slice[k] = min(i, n-1)
	}
	c.Output.Plot.Slice = slice
	return c
}

func (c Config) Validate() error {
	dims := len(c.Grid.Lower)
	if dims != game.StateDims || len(c.Grid.Upper) != dims || len(c.Grid.Points) != dims {
		return fmt.Errorf("grid must describe %d axes", game.StateDims)
	}
	if err := c.Game.Validate(); err != nil {
		return err
	}
	if c.CaptureRadius <= 0 {
		return fmt.Errorf("capture radius must be positive, got %v", c.CaptureRadius)
	}
	boxes := append([]Box{c.Target}, c.Obstacles...)
	for i, b := range boxes {
		if len(b.Lower) != dims || len(b.Upper) != dims {
			return fmt.Errorf("region %d must have %d lower and upper bounds", i, dims)
		}
	}
	if len(c.Obstacles) == 0 {
		return errors.New("at least one obstacle is required")
	}
	switch c.WinComposition {
	case Intersection, Union:
	default:
		return fmt.Errorf("unknown win composition %q", c.WinComposition)
	}
	if c.Horizon <= 0 || c.TimeStep <= 0 || c.TimeStep > c.Horizon {
		return fmt.Errorf("need 0 < time step <= horizon, got step=%v horizon=%v", c.TimeStep, c.Horizon)
	}
	if err := c.Solver.Modes.Validate(); err != nil {
		return err
	}
	if len(c.Solver.Command) == 0 {
		return errors.New("solver command is empty")
	}
	if p := c.Output.Plot; p.Enabled {
		if p.Dims[0] == p.Dims[1] || p.Dims[0] < 0 || p.Dims[1] < 0 || p.Dims[0] >= dims || p.Dims[1] >= dims {
			return fmt.Errorf("plot dims %v must be two distinct axes", p.Dims)
		}
		if len(p.Slice) != dims {
			return fmt.Errorf("plot slice needs %d indices, got %d", dims, len(p.Slice))
		}
		for k, i := range p.Slice {
			if i < 0 || i >= c.Grid.Points[k] {
				return fmt.Errorf("plot slice index %d out of range on axis %d", i, k)
			}
		}
	}
	return nil
}
