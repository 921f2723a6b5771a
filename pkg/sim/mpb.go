package sim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"go.uber.org/zap"
)

// MPB runs the external MPB eigenmode solver as a subprocess. Runs with
// more than one worker process go through mpirun and the MPI build of
// the solver.
type MPB struct {
	Binary    string // serial solver, e.g. "mpb"
	MPIBinary string // MPI solver, e.g. "mpb-mpi"
	MPIRun    string // launcher, e.g. "mpirun"

	log *zap.Logger
}

// NewMPB creates a solver with the given binaries; empty strings fall
// back to the conventional names.
func NewMPB(binary, mpiBinary, mpiRun string, log *zap.Logger) *MPB {
	if binary == "" {
		binary = "mpb"
	}
	if mpiBinary == "" {
		mpiBinary = "mpb-mpi"
	}
	if mpiRun == "" {
		mpiRun = "mpirun"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MPB{Binary: binary, MPIBinary: mpiBinary, MPIRun: mpiRun, log: log}
}

// Run blocks until the solver subprocess finishes. Stdout and stderr
// are captured into the job's .out file, which the post-processor
// parses later.
func (m *MPB) Run(ctx context.Context, job *Job, numProcessors int) error {
	out, err := os.Create(job.OutPath())
	if err != nil {
		return fmt.Errorf("creating output capture: %w", err)
	}
	defer out.Close()

	var cmd *exec.Cmd
	if numProcessors > 1 {
		cmd = exec.CommandContext(ctx, m.MPIRun,
			"-np", strconv.Itoa(numProcessors), m.MPIBinary, job.Name+".ctl")
	} else {
		cmd = exec.CommandContext(ctx, m.Binary, job.Name+".ctl")
	}
	cmd.Dir = job.WorkDir
	cmd.Stdout = out
	cmd.Stderr = out

	m.log.Debug("invoking solver",
		zap.String("job", job.Name), zap.Strings("argv", cmd.Args))

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("solver failed (see %s): %w", job.OutPath(), err)
	}
	return nil
}
