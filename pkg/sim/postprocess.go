package sim

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ExternalPost hands results to the external post-processing tool that
// parses solver output tables and renders band diagrams, DOS plots and
// field patterns. The core only builds its parameter surface.
type ExternalPost struct {
	// Command is the post-processing executable; empty disables
	// post-processing (script-only workflows).
	Command string
	// Viewer displays generated plot images in display mode.
	Viewer string

	log *zap.Logger
}

// NewExternalPost creates the default post-processing collaborator.
func NewExternalPost(command, viewer string, log *zap.Logger) *ExternalPost {
	if viewer == "" {
		viewer = "xdg-open"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ExternalPost{Command: command, Viewer: viewer, log: log}
}

// Process runs the external tool in the job's working directory.
func (p *ExternalPost) Process(ctx context.Context, job *Job, opts PostOpts) error {
	if p.Command == "" {
		p.log.Info("no post-processing command configured, skipping",
			zap.String("job", job.Name))
		return nil
	}

	cmd := exec.CommandContext(ctx, p.Command, p.args(job, opts)...)
	cmd.Dir = job.WorkDir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w\n%s", p.Command, err, out)
	}
	return nil
}

// args flattens PostOpts into the tool's argument surface.
func (p *ExternalPost) args(job *Job, opts PostOpts) []string {
	args := []string{job.Name, "--title", opts.Title}

	for _, m := range opts.Modes {
		name := string(m)
		if name == "" {
			name = "all"
		}
		args = append(args, "--mode", name)
	}

	switch {
	case opts.Crop.Auto:
		args = append(args, "--crop", "auto")
	case opts.Crop.YMax > 0:
		args = append(args, "--crop", strconv.FormatFloat(opts.Crop.YMax, 'g', -1, 64))
	}

	if opts.ConvertFieldPatterns {
		args = append(args, "--convert-patterns")
	}

	if len(opts.FieldPatternKSelection) > 0 {
		sel := make([]string, len(opts.FieldPatternKSelection))
		for i, k := range opts.FieldPatternKSelection {
			sel[i] = strconv.Itoa(k)
		}
		args = append(args, "--k-selection", strings.Join(sel, ","))
	}

	if opts.XAxis.Path != nil && opts.XAxis.Path.HasLabels() {
		for _, t := range opts.XAxis.Path.Ticks() {
			args = append(args, "--x-label", fmt.Sprintf("%s:%d", t.Label, t.Index))
		}
	} else {
		args = append(args, "--x-ticks", strconv.Itoa(opts.XAxis.Ticks))
	}

	for _, folder := range opts.ProjectBands {
		args = append(args, "--project", folder)
	}

	return args
}

// Display opens every plot image in the job folder with the configured
// viewer. This is the only interactive code path.
func (p *ExternalPost) Display(ctx context.Context, job *Job) error {
	pngs, err := filepath.Glob(filepath.Join(job.WorkDir, "*.png"))
	if err != nil {
		return fmt.Errorf("listing plots: %w", err)
	}
	if len(pngs) == 0 {
		return fmt.Errorf("no plots found in %s, run post-processing first", job.WorkDir)
	}

	cmd := exec.CommandContext(ctx, p.Viewer, pngs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("viewer %s: %w", p.Viewer, err)
	}
	return nil
}
