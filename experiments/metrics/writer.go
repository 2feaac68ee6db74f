package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) (*Writer, error) {
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

// NewTimestampedWriter writes into a subfolder of baseDir named by the current time.
func NewTimestampedWriter(baseDir string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	return NewWriter(filepath.Join(baseDir, timestamp))
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteStages(name string, run RunMetric) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create stages file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	// Write header
	header := []string{"grid_size", "step", "stage", "elapsed", "rss_bytes", "heap_bytes", "field_bytes"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write stages header: %w", err)
	}

	// Write each row
	for _, stage := range run.Stages {
		row := []string{
			strconv.Itoa(run.GridSize),
			strconv.Itoa(stage.Step),
			stage.Name,
			stage.Elapsed.String(),
			strconv.FormatUint(stage.RSS, 10),
			strconv.FormatUint(stage.HeapLive, 10),
			strconv.Itoa(stage.FieldBytes),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write stage row: %w", err)
		}
	}

	return nil
}

func (w *Writer) WriteRuns(name string, runs []RunMetric) error {
	// Create a file
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create runs file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	defer writer.Flush()

	// Write header
	header := []string{"grid_size", "cells", "time_steps", "start_time", "end_time", "duration", "peak_rss_bytes"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write runs header: %w", err)
	}

	// Write each row
	for _, run := range runs {
		row := []string{
			strconv.Itoa(run.GridSize),
			strconv.Itoa(run.Cells),
			strconv.Itoa(run.TimeSteps),
			run.StartTime.Format(time.RFC3339),
			run.EndTime.Format(time.RFC3339),
			run.Duration.String(),
			strconv.FormatUint(run.PeakRSS, 10),
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write run row: %w", err)
		}
	}

	return nil
}
