package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"reach/config"
	"reach/engine"
	"reach/experiments"
	"reach/solver"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "YAML file overriding the default run configuration")
	solverCmd := flag.String("solver", "", "Solver command line, e.g. \"python3 solve.py\" (the manifest path is appended)")
	outDir := flag.String("out", "", "Directory for the value function, plots and metrics")
	sweep := flag.String("sweep", "", "Comma separated grid sizes for a resolution sweep, e.g. 4,5,6")
	verbose := flag.Bool("verbose", false, "Log solver output and debug messages")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		cfg = loaded
	}
	if *solverCmd != "" {
		cfg.Solver.Command = strings.Fields(*solverCmd)
	}
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := solver.NewExec(cfg.Solver.Command,
		solver.WithWorkDir(cfg.Solver.WorkDir),
		solver.WithEnv(cfg.Solver.Env...),
	)

	if *sweep != "" {
		sizes, err := parseSizes(*sweep)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid sweep")
		}
		if _, err := experiments.RunResolutionSweep(ctx, cfg, s, sizes); err != nil {
			log.Fatal().Err(err).Msg("resolution sweep failed")
		}
		return
	}

	out, err := engine.New(cfg, s, engine.WithMetrics()).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
	log.Info().Msgf("the value function has been saved successfully to %s", out.ValuePath)
}

func parseSizes(s string) ([]int, error) {
	sizes := []int{}
	for _, field := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
