// Package decor applies cosmetic corrections to Doxygen generated HTML.
//
// A Decorator owns an ordered list of independent steps. Run walks them in
// order over an explicit document root; every step degrades to a no-op when
// the markup it looks for is missing, so Run never fails. Running the same
// Decorator twice over its own output changes nothing further apart from
// restarting the body fade-in.
package decor

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/net/html"
)

type StepResult struct {
	Name    string
	Touched int
	Skipped bool
}

type Report struct {
	Steps []StepResult
}

func (r Report) Total() int {
	total := 0
	for _, s := range r.Steps {
		total += s.Touched
	}
	return total
}

// Touched returns the count recorded for the named step.
func (r Report) Touched(name string) int {
	for _, s := range r.Steps {
		if s.Name == name {
			return s.Touched
		}
	}
	return 0
}

func (r Report) String() string {
	parts := make([]string, 0, len(r.Steps))
	for _, s := range r.Steps {
		if s.Skipped {
			parts = append(parts, s.Name+"=off")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%d", s.Name, s.Touched))
	}
	return strings.Join(parts, " ")
}

type Decorator struct {
	opts   Options
	steps  []Step
	logger *log.Logger
}

func New(opts Options, logger *log.Logger) *Decorator {
	if logger == nil {
		logger = log.Default()
	}
	return &Decorator{
		opts:   opts.withDefaults(),
		steps:  defaultSteps(),
		logger: logger,
	}
}

// Options returns a copy of the effective options.
func (d *Decorator) Options() Options { return d.opts }

// Steps lists the step names in run order.
func (d *Decorator) Steps() []string {
	names := make([]string, 0, len(d.steps))
	for _, s := range d.steps {
		names = append(names, s.Name)
	}
	return names
}

// StepNames lists the built-in steps without constructing a Decorator.
func StepNames() []string {
	steps := defaultSteps()
	names := make([]string, 0, len(steps))
	for _, s := range steps {
		names = append(names, s.Name)
	}
	return names
}

func (d *Decorator) Run(doc *html.Node) Report {
	var rep Report
	if doc == nil {
		return rep
	}
	opts := d.opts
	for _, s := range d.steps {
		if opts.disabled(s.Name) {
			rep.Steps = append(rep.Steps, StepResult{Name: s.Name, Skipped: true})
			continue
		}
		rep.Steps = append(rep.Steps, StepResult{Name: s.Name, Touched: s.Apply(doc, &opts)})
	}
	d.logger.Printf("steps: %s", rep)
	return rep
}
