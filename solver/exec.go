package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"reach/game"

	"github.com/rs/zerolog/log"
)

const (
	ManifestFile = "job.json"
	TargetFile   = "target.npy"
	AvoidFile    = "avoid.npy"
	ValueFile    = "value.npy"
)

const (
	// How long Wait keeps waiting on output pipes once the solver has exited
	// or the context is done. Grandchildren can hold the pipes open.
	defaultWaitDelay = 5 * time.Second
	// Longest line relayed to the logger; longer output is split.
	maxLineBytes = 64 * 1024
)

// Manifest is the job description handed to the external solver program.
type Manifest struct {
	Grid struct {
		Lower  []float64 `json:"lower"`
		Upper  []float64 `json:"upper"`
		Points []int     `json:"points"`
	} `json:"grid"`
	Kernel           game.Kernel `json:"kernel"`
	Tau              []float64   `json:"tau"`
	Modes            Modes       `json:"comp_methods"`
	SaveAllTimeSteps bool        `json:"save_all_time_steps"`
	Target           string      `json:"target"`
	Avoid            string      `json:"avoid,omitempty"`
	Output           string      `json:"output"`
}

type ExecOption func(e *Exec)

// WithWorkDir keeps the job files in dir instead of a temporary directory.
func WithWorkDir(dir string) ExecOption {
	return func(e *Exec) {
		if dir != "" {
			e.workDir = dir
		}
	}
}

// WithEnv adds KEY=value entries to the solver's environment.
func WithEnv(env ...string) ExecOption {
	return func(e *Exec) {
		e.env = append(e.env, env...)
	}
}

func WithWaitDelay(d time.Duration) ExecOption {
	return func(e *Exec) {
		if d > 0 {
			e.waitDelay = d
		}
	}
}

// Exec runs an external solver program. The program receives the manifest
// path as its last argument and must write the value function to the
// manifest's output path.
type Exec struct {
	command []string
	workDir   string
	env       []string
	waitDelay time.Duration
}

func NewExec(command []string, options ...ExecOption) *Exec {
	if len(command) == 0 {
		panic("solver command must not be empty")
	}
	e := &Exec{command: command, waitDelay: defaultWaitDelay}
	for _, option := range options {
		option(e)
	}
	return e
}

func (e *Exec) Solve(ctx context.Context, job Job) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}

	dir := e.workDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "reach-solve-")
		if err != nil {
			return nil, fmt.Errorf("failed to create work directory: %w", err)
		}
		defer os.RemoveAll(tmp)
		dir = tmp
	} else if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve work directory: %w", err)
	}

	manifestPath, err := writeJob(dir, job)
	if err != nil {
		return nil, err
	}

	args := append(append([]string(nil), e.command[1:]...), manifestPath)
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), e.env...)

	cmd.WaitDelay = e.waitDelay
	stdout := &lineLogger{emit: func(line string) { log.Debug().Str("stream", "stdout").Msg(line) }}
	stderr := &lineLogger{emit: func(line string) { log.Warn().Str("stream", "stderr").Msg(line) }}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Info().Msgf("starting solver %q with %d time points in %s", e.command[0], len(job.Tau), dir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start solver: %w", err)
	}
	err = cmd.Wait()
	stdout.Flush()
	stderr.Flush()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("solver cancelled after %s: %w", time.Since(start), ctxErr)
	}
	if errors.Is(err, exec.ErrWaitDelay) {
		log.Warn().Msgf("solver exited but its output was still open after %s", e.waitDelay)
	} else if err != nil {
		return nil, fmt.Errorf("solver failed after %s: %w", time.Since(start), err)
	}
	log.Info().Msgf("solver finished in %s", time.Since(start))

	value, err := LoadNPY(filepath.Join(dir, ValueFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read solver output: %w", err)
	}
	return NewResult(job, value)
}

func writeJob(dir string, job Job) (string, error) {
	m := Manifest{
		Kernel:           job.Model.Kernel(),
		Tau:              job.Tau,
		Modes:            job.Modes,
		SaveAllTimeSteps: job.SaveAllTimeSteps,
		Target:           TargetFile,
		Output:           ValueFile,
	}
	m.Grid.Lower = job.Grid.Lower()
	m.Grid.Upper = job.Grid.Upper()
	m.Grid.Points = job.Grid.Shape()

	if err := SaveNPY(filepath.Join(dir, TargetFile), job.Target); err != nil {
		return "", fmt.Errorf("failed to write target set: %w", err)
	}
	if job.Modes.ObstacleSetMode != NoObstacle {
		m.Avoid = AvoidFile
		if err := SaveNPY(filepath.Join(dir, AvoidFile), job.Avoid); err != nil {
			return "", fmt.Errorf("failed to write avoid set: %w", err)
		}
	}

	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode manifest: %w", err)
	}
	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	return path, nil
}

// lineLogger is an io.Writer that hands each line of output to emit. Lines
// end at '\n' or '\r' so progress bars come through one update at a time.
// exec.Cmd copies each stream from a single goroutine.
type lineLogger struct {
	buf  []byte
	emit func(line string)
}

func (l *lineLogger) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		i := bytes.IndexAny(p, "\r\n")
		if i < 0 {
			l.buf = append(l.buf, p...)
			for len(l.buf) >= maxLineBytes {
				l.emit(string(l.buf[:maxLineBytes]))
				l.buf = append(l.buf[:0], l.buf[maxLineBytes:]...)
			}
			break
		}
		l.buf = append(l.buf, p[:i]...)
		l.Flush()
		p = p[i+1:]
	}
	return n, nil
}

// Flush emits whatever is buffered as a final line.
func (l *lineLogger) Flush() {
	for len(l.buf) > maxLineBytes {
		l.emit(string(l.buf[:maxLineBytes]))
		l.buf = l.buf[maxLineBytes:]
	}
	if len(l.buf) > 0 {
		l.emit(string(l.buf))
	}
	l.buf = l.buf[:0]
}
