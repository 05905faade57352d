// Package stages checks the applicability of tower candidates.
//
// A Runner is a fixed pipeline of stages. Each stage either passes the
// candidate on or returns a verdict; the first non-successful verdict ends
// the pipeline. Runners hold no per-call state and may be shared.
package stages

import (
	"fmt"

	"tower/internal/diag"
	"tower/internal/symbols"
	"tower/internal/tower"
)

// State carries what earlier stages learned about one candidate.
type State struct {
	Candidate *tower.Candidate
	Symbol    *symbols.Symbol
	// Params still to be bound by arguments.
	Params []symbols.Param
	// Mapping[i] is the index in Params argument i binds to.
	Mapping []int
}

// Stage is one step of the pipeline. A nil defect means the stage passed.
type Stage struct {
	Name  string
	Check func(r *Runner, st *State) (tower.Applicability, *tower.Defect)
}

// Runner implements tower.StageRunner over a declaration table.
type Runner struct {
	table  *symbols.Table
	stages []Stage
}

// DefaultStages returns the standard pipeline in order.
func DefaultStages() []Stage {
	return []Stage{
		{Name: "hidden", Check: checkHidden},
		{Name: "receivers", Check: checkReceivers},
		{Name: "operator", Check: checkOperator},
		{Name: "map-arguments", Check: mapArguments},
		{Name: "check-arguments", Check: checkArguments},
		{Name: "low-priority", Check: checkLowPriority},
	}
}

// New creates a runner with the default stages.
func New(table *symbols.Table) *Runner {
	return &Runner{table: table, stages: DefaultStages()}
}

// NewWithStages creates a runner with a custom pipeline.
func NewWithStages(table *symbols.Table, stages []Stage) *Runner {
	return &Runner{table: table, stages: stages}
}

// Run checks c.
func (r *Runner) Run(c *tower.Candidate) tower.Verdict {
	sym := r.table.Symbol(c.Symbol)
	if sym == nil {
		return tower.Verdict{
			Applicability: tower.Hidden,
			Defects:       []tower.Defect{{Code: diag.ResHidden, Message: fmt.Sprintf("unknown symbol %d", c.Symbol)}},
		}
	}
	st := &State{Candidate: c, Symbol: sym, Params: sym.Params}
	verdict := tower.Verdict{Applicability: tower.Resolved}
	for _, stage := range r.stages {
		app, defect := stage.Check(r, st)
		if defect == nil {
			continue
		}
		verdict.Defects = append(verdict.Defects, *defect)
		verdict.Applicability = min(verdict.Applicability, app)
		if !app.IsSuccess() {
			break
		}
	}
	return verdict
}

func defect(code diag.Code, format string, args ...any) *tower.Defect {
	return &tower.Defect{Code: code, Message: fmt.Sprintf(format, args...)}
}
