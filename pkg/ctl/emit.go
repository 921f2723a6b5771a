package ctl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lightwell/phcband/pkg/geometry"
	"github.com/lightwell/phcband/pkg/kspace"
)

// BandFunc renders the band function handed to a run directive: group
// velocity display plus, when outputFunc is non-empty, one
// output-at-kpoint gate per point of interest.
func (d Defaults) BandFunc(poi []kspace.Vec3, outputFunc string) string {
	var b strings.Builder
	b.WriteString("\n    display-group-velocities")
	if outputFunc != "" {
		for _, p := range poi {
			fmt.Fprintf(&b, "\n    (output-at-kpoint %s %s)", p, outputFunc)
		}
	}
	b.WriteString("\n")
	return b.String()
}

// RunPrefix returns script text placed before the first run directive.
func (d Defaults) RunPrefix() string {
	if d.NewMPB {
		return "(optimize-grid-size!)\n\n"
	}
	return ""
}

// RunCode renders one run directive per mode, each followed by the
// density-of-states directive. Field patterns are written at the given
// points of interest.
func (d Defaults) RunCode(modes []Mode, poi []kspace.Vec3) string {
	var b strings.Builder
	for _, mode := range modes {
		bandFunc := d.BandFunc(poi, strings.Join(d.OutputFuncs(mode), " "))
		b.WriteString(runDirective(mode, bandFunc))
		b.WriteString(d.dosDirective())
	}
	return b.String()
}

// GatedRunCode renders a single run directive whose field-pattern output
// is restricted to the given band numbers at the given k-points. MPB's
// scripting language has no built-in list membership test, so the
// recursive member? routine is generated inline; its text is exact
// solver syntax and must not be reformatted.
func (d Defaults) GatedRunCode(mode Mode, kvecs []kspace.Vec3, bandNums []int) string {
	var b strings.Builder

	if len(bandNums) > 0 && len(kvecs) > 0 {
		b.WriteString(";function to determine whether an item x is member of list:\n" +
			"(define (member? x list)\n" +
			"    (cond (\n" +
			"        ;false if the list is empty:\n" +
			"        (null? list) #f )\n" +
			"        ;true if first item (car) equals x:\n" +
			"        ( (eqv? x (car list)) #t )\n" +
			"        ;else, drop first item (cdr) and make recursive call:\n" +
			"        ( else (member? x (cdr list)) )\n" +
			"    ))\n\n")

		nums := make([]string, len(bandNums))
		for i, n := range bandNums {
			nums[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(&b, "(define output-bands-list (list %s))\n\n", strings.Join(nums, " "))

		b.WriteString("(define (output-func bnum)\n" +
			"    (if (member? bnum output-bands-list)\n" +
			"        (begin\n")
		for _, fn := range d.OutputFuncs(mode) {
			fmt.Fprintf(&b, "            (%s bnum)\n", fn)
		}
		b.WriteString("        )\n" +
			"    ))\n\n")

		b.WriteString(runDirective(mode, d.BandFunc(kvecs, "output-func")))
	} else {
		b.WriteString(runDirective(mode, d.BandFunc(nil, "")))
	}
	b.WriteString(d.dosDirective())

	return b.String()
}

func runDirective(mode Mode, bandFunc string) string {
	if mode == ModeAll {
		return fmt.Sprintf("(run %s)\n", bandFunc)
	}
	return fmt.Sprintf("(run-%s %s)\n", mode, bandFunc)
}

func (d Defaults) dosDirective() string {
	return fmt.Sprintf("(print-dos %s %s %d)\n\n",
		fmtF(d.DOS.Min), fmtF(d.DOS.Max), d.DOS.Points)
}

func fmtF(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Script is everything needed to render one control script with
// deterministic formatting.
type Script struct {
	InitCode   string
	Geometry   *geometry.Geometry
	KSpace     *kspace.KSpace
	NumBands   int
	Resolution int
	MeshSize   int
	RunCode    string
	PostCode   string
}

// Render emits the complete control-script text: initialization,
// geometry block, k-point block, numerical parameters, then the run and
// post-processing fragments.
func (s *Script) Render() string {
	var b strings.Builder

	b.WriteString(s.InitCode)
	b.WriteString("\n")
	fmt.Fprintf(&b, "(set! num-bands %d)\n\n", s.NumBands)

	if s.Geometry != nil {
		b.WriteString(s.Geometry.Render())
		b.WriteString("\n")
	}

	b.WriteString("(set! k-points (list")
	if s.KSpace != nil {
		for _, p := range s.KSpace.Points() {
			b.WriteString("\n    ")
			b.WriteString(p.String())
		}
	}
	b.WriteString("))\n\n")

	fmt.Fprintf(&b, "(set! resolution %d)\n", s.Resolution)
	fmt.Fprintf(&b, "(set! mesh-size %d)\n\n", s.MeshSize)

	b.WriteString(s.RunCode)
	if s.PostCode != "" {
		b.WriteString(s.PostCode)
		b.WriteString("\n")
	}

	return b.String()
}
