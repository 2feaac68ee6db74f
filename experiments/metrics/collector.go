package metrics

import (
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/process"
)

type StageMetric struct {
	Step     int
	Name     string
	Elapsed  time.Duration // Since Start
	RSS      uint64        // Resident memory in bytes, 0 if unavailable
	HeapLive uint64
	// FieldBytes is the size of the fields the stage holds on to.
	FieldBytes int
}

type RunMetric struct {
	GridSize  int
	Cells     int
	TimeSteps int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	PeakRSS   uint64
	Stages    []StageMetric
}

type Collector interface {
	Start(gridSize, cells, timeSteps int)
	// Stage records a sample after forcing garbage to be returned to the OS.
	Stage(name string, fieldBytes int)
	Complete() RunMetric
}

type collector struct {
	run     RunMetric
	process *process.Process
}

func NewCollector() Collector {
	c := &collector{}
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Warn().Msgf("resident memory sampling unavailable: %v", err)
	} else {
		c.process = p
	}
	return c
}

func (c *collector) Start(gridSize, cells, timeSteps int) {
	c.run = RunMetric{
		GridSize:  gridSize,
		Cells:     cells,
		TimeSteps: timeSteps,
		StartTime: time.Now(),
	}
}

func (c *collector) Stage(name string, fieldBytes int) {
	debug.FreeOSMemory()

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stage := StageMetric{
		Step:       len(c.run.Stages) + 1,
		Name:       name,
		Elapsed:    time.Since(c.run.StartTime),
		HeapLive:   ms.HeapAlloc,
		FieldBytes: fieldBytes,
	}
	if c.process != nil {
		if mem, err := c.process.MemoryInfo(); err == nil {
			stage.RSS = mem.RSS
		}
	}
	c.run.PeakRSS = max(c.run.PeakRSS, stage.RSS)
	c.run.Stages = append(c.run.Stages, stage)

	log.Info().Msgf("%d. gigabytes consumed after %s: %.4f (fields %.2f MB)",
		stage.Step, name, float64(stage.RSS)/1e9, float64(fieldBytes)/1e6)
}

func (c *collector) Complete() RunMetric {
	c.run.EndTime = time.Now()
	c.run.Duration = c.run.EndTime.Sub(c.run.StartTime)
	return c.run
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (c *dummyCollector) Start(gridSize, cells, timeSteps int) {}
func (c *dummyCollector) Stage(name string, fieldBytes int)    {}
func (c *dummyCollector) Complete() RunMetric                  { return RunMetric{} }
