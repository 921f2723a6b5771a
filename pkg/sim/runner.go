package sim

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lightwell/phcband/pkg/ctl"
	"github.com/lightwell/phcband/pkg/kspace"
)

// Crop selects band-diagram y-axis cropping: automatic (before the last
// band) or at an explicit maximum frequency.
type Crop struct {
	Auto bool
	YMax float64
}

// AutoCrop crops automatically.
func AutoCrop() Crop { return Crop{Auto: true} }

// CropAt crops at a fixed maximum frequency.
func CropAt(y float64) Crop { return Crop{YMax: y} }

// AxisHint tells the post-processor how to label the band-diagram
// x-axis: a labeled k-path when one is available, otherwise a plain
// tick count.
type AxisHint struct {
	Ticks int
	Path  *kspace.KSpace
}

// PostOpts is the parameter surface handed to the post-processing
// collaborator. The core does not interpret any returned artifacts.
type PostOpts struct {
	Title                string
	Modes                []ctl.Mode
	Crop                 Crop
	ConvertFieldPatterns bool

	// FieldPatternKSelection selects which k-points of interest get
	// their field patterns plotted.
	FieldPatternKSelection []int

	XAxis AxisHint

	// ProjectBands lists the unperturbed reference job folders, in
	// k-value order, for waveguide band projection.
	ProjectBands []string
}

// Solver invokes the external eigenmode engine for one job and blocks
// until it completes or fails.
type Solver interface {
	Run(ctx context.Context, job *Job, numProcessors int) error
}

// PostProcessor is the external collaborator that turns solver output
// into plots and per-band range tables.
type PostProcessor interface {
	Process(ctx context.Context, job *Job, opts PostOpts) error
	Display(ctx context.Context, job *Job) error
}

// Runner is the run-mode state machine. It decides per invocation
// whether to just build the script, execute the solver, post-process
// existing results or display them.
type Runner struct {
	Solver        Solver
	Post          PostProcessor
	NumProcessors int

	log *zap.Logger
}

// NewRunner wires a runner; a nil logger disables logging.
func NewRunner(solver Solver, post PostProcessor, numProcessors int, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	if numProcessors < 1 {
		numProcessors = 1
	}
	return &Runner{Solver: solver, Post: post, NumProcessors: numProcessors, log: log}
}

// Do drives one job through the requested run mode. The mode is
// validated before any filesystem mutation. A failed run returns a nil
// job along with the error, so callers can branch on the job alone.
func (r *Runner) Do(ctx context.Context, job *Job, mode RunMode, opts PostOpts) (*Job, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid run mode %q", mode)
	}

	switch mode {
	case ModeNone:
		return job, nil

	case ModeCtl:
		if err := job.WriteCtl(); err != nil {
			return nil, err
		}
		r.log.Info("control script written",
			zap.String("job", job.Name), zap.String("ctl", job.CtlPath()))
		return job, nil

	case ModeSim:
		if err := job.WriteCtl(); err != nil {
			return nil, err
		}
		r.log.Info("running solver",
			zap.String("job", job.Name), zap.Int("processors", r.NumProcessors))
		if err := r.Solver.Run(ctx, job, r.NumProcessors); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.Name, err)
		}
		if err := r.Post.Process(ctx, job, opts); err != nil {
			return nil, fmt.Errorf("post-processing %s: %w", job.Name, err)
		}
		return job, nil

	case ModePostPC:
		// results of a prior sim run are assumed present; nothing is
		// cleared here
		if err := r.Post.Process(ctx, job, opts); err != nil {
			return nil, fmt.Errorf("post-processing %s: %w", job.Name, err)
		}
		return job, nil

	case ModeDisplay:
		if err := r.Post.Display(ctx, job); err != nil {
			return nil, fmt.Errorf("displaying %s: %w", job.Name, err)
		}
		return job, nil
	}

	return nil, fmt.Errorf("invalid run mode %q", mode)
}
