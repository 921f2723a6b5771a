// Package sim holds the simulation job model and the run-mode
// orchestrator that drives the external eigenmode solver.
package sim

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/geometry"
	"github.com/lightwell/phcband/pkg/kspace"
)

// Job is one simulation: a named working directory plus everything
// needed to render its control script. The job name doubles as the
// on-disk memoization key, so it must be derived deterministically from
// the physical parameters.
type Job struct {
	Name     string
	Geometry *geometry.Geometry
	KSpace   *kspace.KSpace

	NumBands   int
	Resolution int
	MeshSize   int

	InitCode string
	RunCode  string
	PostCode string

	// WorkDir persists across runs; it is cleared before ctl/sim runs
	// when ClearWorkDir is set.
	WorkDir      string
	ClearWorkDir bool
}

// CtlPath returns the control-script file path.
func (j *Job) CtlPath() string {
	return filepath.Join(j.WorkDir, j.Name+".ctl")
}

// OutPath returns the solver output capture file path.
func (j *Job) OutPath() string {
	return filepath.Join(j.WorkDir, j.Name+".out")
}

// RangesPath returns the per-mode valid-frequency-ranges result file.
// Its existence is the completion marker the orchestrator memoizes on.
func (j *Job) RangesPath(mode ctl.Mode) string {
	return filepath.Join(j.WorkDir, RangesFileName(j.Name, mode))
}

// RangesFileName builds the marker file name for a job and mode.
func RangesFileName(jobName string, mode ctl.Mode) string {
	return fmt.Sprintf("%s_%s_ranges.csv", jobName, mode)
}

// Script assembles the control-script description for this job.
func (j *Job) Script() *ctl.Script {
	return &ctl.Script{
		InitCode:   j.InitCode,
		Geometry:   j.Geometry,
		KSpace:     j.KSpace,
		NumBands:   j.NumBands,
		Resolution: j.Resolution,
		MeshSize:   j.MeshSize,
		RunCode:    j.RunCode,
		PostCode:   j.PostCode,
	}
}

// Validate checks the job before any filesystem mutation.
func (j *Job) Validate() error {
	if j.Name == "" {
		return fmt.Errorf("job name is empty")
	}
	if j.WorkDir == "" {
		return fmt.Errorf("job %s has no working directory", j.Name)
	}
	if j.NumBands <= 0 {
		return fmt.Errorf("job %s: num-bands must be positive, got %d", j.Name, j.NumBands)
	}
	if j.Geometry != nil {
		if err := j.Geometry.Validate(); err != nil {
			return fmt.Errorf("job %s: %w", j.Name, err)
		}
	}
	return nil
}

// PrepareWorkDir creates the working directory, clearing a previous one
// first when the job requests it.
func (j *Job) PrepareWorkDir() error {
	if j.ClearWorkDir {
		if err := os.RemoveAll(j.WorkDir); err != nil {
			return fmt.Errorf("clearing %s: %w", j.WorkDir, err)
		}
	}
	if err := os.MkdirAll(j.WorkDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", j.WorkDir, err)
	}
	return nil
}

// WriteCtl persists the rendered control script into the working
// directory, preparing it first.
func (j *Job) WriteCtl() error {
	if err := j.Validate(); err != nil {
		return err
	}
	if err := j.PrepareWorkDir(); err != nil {
		return err
	}
	if err := os.WriteFile(j.CtlPath(), []byte(j.Script().Render()), 0o644); err != nil {
		return fmt.Errorf("writing control script: %w", err)
	}
	return nil
}
