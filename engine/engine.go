package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"reach/config"
	"reach/experiments/metrics"
	"reach/game"
	"reach/grid"
	"reach/region"
	"reach/solver"
	"reach/utils"
	"reach/visual"

	"github.com/rs/zerolog/log"
)

// Tolerance added to the horizon so the last time point is included.
const smallNumber = 1e-5

type Option func(e *Engine)

func WithMetrics() Option {
	return func(e *Engine) {
		e.metrics = metrics.NewCollector()
	}
}

func WithCollector(c metrics.Collector) Option {
	return func(e *Engine) {
		if c != nil {
			e.metrics = c
		}
	}
}

type Engine struct {
	cfg     config.Config
	solver  solver.Solver
	metrics metrics.Collector
}

// Outcome is what a run leaves behind.
type Outcome struct {
	Grid      *grid.Grid
	Result    *solver.Result
	ValuePath string
	PlotPath  string
	Metric    metrics.RunMetric
}

func New(cfg config.Config, s solver.Solver, options ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		solver:  s,
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ValueFileName names the persisted value function by grid resolution.
func ValueFileName(gridSize int) string {
	return fmt.Sprintf("DubinCar1v1_grid%d.npy", gridSize)
}

// PlotFileName suffixes the configured plot file with the grid size.
func PlotFileName(file string, gridSize int) string {
	ext := filepath.Ext(file)
	return fmt.Sprintf("%s_grid%d%s", strings.TrimSuffix(file, ext), gridSize, ext)
}

// Tau is the time vector handed to the solver.
func Tau(cfg config.Config) []float64 {
	return utils.Arange(0, cfg.Horizon+smallNumber, cfg.TimeStep)
}

// Run seeds the level sets, solves, and persists the final value function.
func (e *Engine) Run(ctx context.Context) (*Outcome, error) {
	cfg := e.cfg
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	tau := Tau(cfg)
	gridSize := cfg.Grid.Points[0]
	cells := 1
	for _, n := range cfg.Grid.Points {
		cells *= n
	}
	e.metrics.Start(gridSize, cells, len(tau))

	car := game.NewDubinCar1v1(game.WithParams(cfg.Game))
	log.Info().Msgf("initialized 1v1 dubin car: %+v", car.Params())

	seeds, err := e.BuildSeeds()
	if err != nil {
		return nil, err
	}

	job := solver.Job{
		Model:            car,
		Grid:             seeds.Grid,
		Target:           seeds.Reach,
		Avoid:            seeds.Avoid,
		Tau:              tau,
		Modes:            cfg.Solver.Modes,
		SaveAllTimeSteps: cfg.Solver.SaveAllTimeSteps,
	}
	result, err := e.solver.Solve(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to solve: %w", err)
	}
	e.metrics.Stage("value function", result.Value.Bytes())

	final := result.Final()
	lo, hi := final.Range()
	log.Info().Msgf("value function shape %v (%.2f MB), range [%.4f, %.4f], %d cells inside",
		result.Value.Shape, float64(result.Value.Bytes())/1e6, lo, hi, final.Inside())

	out := &Outcome{Grid: job.Grid, Result: result}
	out.ValuePath = filepath.Join(cfg.Output.Dir, ValueFileName(gridSize))
	if err := solver.SaveNPY(out.ValuePath, final); err != nil {
		return nil, fmt.Errorf("failed to save value function: %w", err)
	}
	log.Info().Msgf("value function saved to %s", out.ValuePath)

	if cfg.Output.Plot.Enabled {
		out.PlotPath = filepath.Join(cfg.Output.Dir, PlotFileName(cfg.Output.Plot.File, gridSize))
		if err := e.plot(job.Grid, final, out.PlotPath); err != nil {
			return nil, err
		}
		log.Info().Msgf("value function slice rendered to %s", out.PlotPath)
	}

	out.Metric = e.metrics.Complete()
	if cfg.Output.Metrics && len(out.Metric.Stages) > 0 {
		writer, err := metrics.NewWriter(cfg.Output.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics writer: %w", err)
		}
		name := fmt.Sprintf("DubinCar1v1_grid%d_stages.csv", gridSize)
		if err := writer.WriteStages(name, out.Metric); err != nil {
			return nil, fmt.Errorf("failed to write stage metrics: %w", err)
		}
	}
	log.Info().Msgf("whole run took %s", out.Metric.Duration)

	return out, nil
}

func (e *Engine) plot(g *grid.Grid, value *grid.Field, path string) error {
	p := e.cfg.Output.Plot
	s, err := visual.NewSlice(g, value, p.Dims[0], p.Dims[1], p.Slice)
	if err != nil {
		return fmt.Errorf("failed to slice value function: %w", err)
	}
	target := region.PlanarBound(g, e.cfg.Target.Lower, e.cfg.Target.Upper, p.Dims[0], p.Dims[1])
	opts := visual.Options{File: path}
	if target.Min.X() < target.Max.X() && target.Min.Y() < target.Max.Y() {
		opts.Overlays = append(opts.Overlays, target)
	}
	if err := visual.SaveSlice(s, opts); err != nil {
		return fmt.Errorf("failed to render value function: %w", err)
	}
	return nil
}
