// Package ctl renders MPB control scripts: initialization code, geometry
// and k-point blocks, per-mode run directives and the field-pattern
// output gates written in the solver's own scripting language. The
// emitted text is a compatibility surface; MPB's parser is intolerant of
// malformed syntax.
package ctl

// Mode is a polarization/symmetry class of computed modes.
type Mode string

const (
	ModeTE    Mode = "te"
	ModeTM    Mode = "tm"
	ModeZEven Mode = "zeven"
	ModeZOdd  Mode = "zodd"
	// ModeAll runs without polarization distinction.
	ModeAll Mode = ""
)

// DOSWindow is the frequency window of the density-of-states directive
// appended after every run directive.
type DOSWindow struct {
	Min, Max float64
	Points   int
}

// Defaults is the explicit, immutable configuration handed to the
// emitter and orchestrator at construction time: solver version flags,
// output-function sets and script fragments that used to live in
// ambient module state.
type Defaults struct {
	// NewMPB enables script fragments only understood by recent MPB
	// releases (grid-size optimization).
	NewMPB bool

	// InitCode opens every control script.
	InitCode string

	// Output function sets per mode class.
	OutputFuncsTE    []string
	OutputFuncsTM    []string
	OutputFuncsOther []string

	// XAxisTicks is the plain tick count used as the axis hint when a
	// k-path has no high-symmetry labels.
	XAxisTicks int

	// NumProjectedBands is the band count of unperturbed reference
	// simulations run for waveguide band projection.
	NumProjectedBands int

	DOS DOSWindow
}

// NewDefaults returns the canonical defaults.
func NewDefaults() Defaults {
	return Defaults{
		NewMPB:   true,
		InitCode: "(set! filename-prefix \"\")\n",
		OutputFuncsTE: []string{
			"fix-hfield-phase", "output-hfield-z",
		},
		OutputFuncsTM: []string{
			"fix-efield-phase", "output-efield-z",
		},
		OutputFuncsOther: []string{
			"fix-hfield-phase", "output-hfield-z",
			"fix-efield-phase", "output-efield-z",
		},
		XAxisTicks:        5,
		NumProjectedBands: 4,
		DOS:               DOSWindow{Min: 0, Max: 1.2, Points: 121},
	}
}

// OutputFuncs returns the output function set for a mode: TE-like modes
// output the magnetic field, TM-like modes the electric field, and the
// undistinguished mode both.
func (d Defaults) OutputFuncs(mode Mode) []string {
	switch mode {
	case ModeTE, ModeZEven:
		return d.OutputFuncsTE
	case ModeTM, ModeZOdd:
		return d.OutputFuncsTM
	default:
		return d.OutputFuncsOther
	}
}
