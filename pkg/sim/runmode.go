package sim

import (
	"fmt"
	"strings"
)

// RunMode selects what the orchestrator does with a constructed job.
// The modes are mutually exclusive at the top level.
type RunMode string

const (
	// ModeNone constructs the job object only, with no side effects.
	ModeNone RunMode = ""
	// ModeCtl persists the control script to disk.
	ModeCtl RunMode = "ctl"
	// ModeSim persists the script, runs the solver and post-processes.
	ModeSim RunMode = "sim"
	// ModePostPC post-processes results of an earlier sim run.
	ModePostPC RunMode = "postpc"
	// ModeDisplay shows previously generated plots; the only
	// interactive mode.
	ModeDisplay RunMode = "display"
)

// ParseRunMode validates a mode string. Invalid input is rejected here,
// before any filesystem mutation.
func ParseRunMode(s string) (RunMode, error) {
	m := RunMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("invalid run mode %q (want '', 'ctl', 'sim', 'postpc' or 'display')", s)
	}
	return m, nil
}

// Valid reports whether the mode is one of the five run modes.
func (m RunMode) Valid() bool {
	switch m {
	case ModeNone, ModeCtl, ModeSim, ModePostPC, ModeDisplay:
		return true
	}
	return false
}

// ClearsWorkDir reports whether a previous working directory is cleared
// before the run. The prefix rule ('s' or 'c') is a compatibility
// surface and must be preserved.
func (m RunMode) ClearsWorkDir() bool {
	return strings.HasPrefix(string(m), "s") || strings.HasPrefix(string(m), "c")
}
