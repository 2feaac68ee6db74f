package engine

import (
	"fmt"

	"reach/config"
	"reach/grid"
	"reach/region"

	"github.com/rs/zerolog/log"
)

// Seeds are the level-set fields the solver starts from.
type Seeds struct {
	Grid *grid.Grid
	// Reach is negative where the attacker has won or the defender is stuck.
	Reach *grid.Field
	// Avoid is negative where the attacker is captured.
	Avoid *grid.Field
}

// BuildSeeds constructs the reach and avoid sets. Each intermediate field is
// folded into its accumulator and dropped before the next one is built.
func (e *Engine) BuildSeeds() (*Seeds, error) {
	cfg := e.cfg
	g, err := grid.New(cfg.Grid.Lower, cfg.Grid.Upper, cfg.Grid.Points)
	if err != nil {
		return nil, fmt.Errorf("failed to build grid: %w", err)
	}
	e.metrics.Stage("grid", 0)

	avoid, err := region.CaptureSet(g, cfg.CaptureRadius, region.Capture)
	if err != nil {
		return nil, fmt.Errorf("failed to build capture set: %w", err)
	}
	e.metrics.Stage("capture set", avoid.Bytes())

	attackerWin, err := buildAttackerWin(g, cfg)
	if err != nil {
		return nil, err
	}
	e.metrics.Stage("attacker win set", avoid.Bytes()+attackerWin.Bytes())

	defenderStuck, err := buildDefenderStuck(g, cfg.Obstacles)
	if err != nil {
		return nil, err
	}
	e.metrics.Stage("defender stuck set", avoid.Bytes()+attackerWin.Bytes()+defenderStuck.Bytes())

	if err := attackerWin.MinWith(defenderStuck); err != nil {
		return nil, fmt.Errorf("failed to build reach set: %w", err)
	}
	reach := attackerWin
	e.metrics.Stage("reach set", avoid.Bytes()+reach.Bytes())

	log.Info().Msgf("seeded %d cells: %d inside reach set, %d inside capture set", g.Size(), reach.Inside(), avoid.Inside())
	return &Seeds{Grid: g, Reach: reach, Avoid: avoid}, nil
}

func buildAttackerWin(g *grid.Grid, cfg config.Config) (*grid.Field, error) {
	target, err := region.Rectangle(g, cfg.Target.Lower, cfg.Target.Upper)
	if err != nil {
		return nil, fmt.Errorf("failed to build target set: %w", err)
	}
	escape, err := region.CaptureSet(g, cfg.CaptureRadius, region.Escape)
	if err != nil {
		return nil, fmt.Errorf("failed to build escape set: %w", err)
	}

	switch cfg.WinComposition {
	case config.Intersection:
		log.Warn().Msg("attacker win requires escaping capture AND reaching the target (intersection); set win_composition: union for either")
		err = target.MaxWith(escape)
	case config.Union:
		err = target.MinWith(escape)
	default:
		err = fmt.Errorf("unknown win composition %q", cfg.WinComposition)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build attacker win set: %w", err)
	}
	return target, nil
}

func buildDefenderStuck(g *grid.Grid, obstacles []config.Box) (*grid.Field, error) {
	var stuck *grid.Field
	for i, box := range obstacles {
		obstacle, err := region.Rectangle(g, box.Lower, box.Upper)
		if err != nil {
			return nil, fmt.Errorf("failed to build obstacle %d: %w", i, err)
		}
		if stuck == nil {
			stuck = obstacle
			continue
		}
		if err := stuck.MinWith(obstacle); err != nil {
			return nil, fmt.Errorf("failed to fold obstacle %d: %w", i, err)
		}
	}
	if stuck == nil {
		return nil, fmt.Errorf("no obstacles configured")
	}
	return stuck, nil
}
