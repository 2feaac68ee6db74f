package experiments

import (
	"context"
	"fmt"

	"reach/config"
	"reach/engine"
	"reach/experiments/metrics"
	"reach/solver"

	"github.com/rs/zerolog/log"
)

// RunResolutionSweep solves the same game at each grid size and records how
// memory and time scale with the number of cells.
func RunResolutionSweep(ctx context.Context, base config.Config, s solver.Solver, sizes []int) ([]metrics.RunMetric, error) {
	writer, err := metrics.NewTimestampedWriter(base.Output.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create experiment writer: %w", err)
	}

	log.Info().Msgf("starting resolution sweep over grid sizes %v...", sizes)

	runs := []metrics.RunMetric{}
	for i, n := range sizes {
		cfg := base.WithGridSize(n)
		cfg.Output.Dir = writer.Dir()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("grid size %d: %w", n, err)
		}

		log.Info().Msgf("starting run %d of %d with %d points per axis...", i+1, len(sizes), n)

		out, err := engine.New(cfg, s, engine.WithMetrics()).Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("grid size %d: %w", n, err)
		}
		runs = append(runs, out.Metric)

		log.Info().Msgf("completed run %d of %d: %d cells in %s, peak rss %.3f GB",
			i+1, len(sizes), out.Metric.Cells, out.Metric.Duration, float64(out.Metric.PeakRSS)/1e9)
	}

	log.Info().Msg("completed resolution sweep")

	err = writer.WriteRuns("runs.csv", runs)
	if err != nil {
		return nil, fmt.Errorf("failed to write runs: %w", err)
	}
	log.Info().Msgf("stored run records in %s", writer.Dir())

	return runs, nil
}
