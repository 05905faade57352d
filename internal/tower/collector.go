package tower

// Ranked pairs a kept candidate with its verdict.
type Ranked struct {
	Candidate *Candidate
	Verdict   Verdict
}

// Collector keeps the most applicable candidates of the lowest group.
type Collector struct {
	stages    StageRunner
	best      []Ranked
	current   Applicability
	bestGroup Group
	consumed  int
	observe   func(group Group, c *Candidate, v Verdict)
}

// NewCollector creates an empty collector checking candidates with stages.
func NewCollector(stages StageRunner) *Collector {
	c := &Collector{stages: stages}
	c.NewDataSet()
	return c
}

// NewDataSet forgets everything collected so far.
func (c *Collector) NewDataSet() {
	c.best = nil
	c.current = Hidden
	c.bestGroup = Last
	c.consumed = 0
}

// ConsumeCandidate checks cand and keeps it when it beats or ties the
// current best. A better applicability or an equal one at a lower group
// replaces the kept set; an equal one at the same group joins it.
func (c *Collector) ConsumeCandidate(group Group, cand *Candidate) Applicability {
	v := c.stages.Run(cand)
	c.consumed++
	app := v.Applicability
	if app > c.current || (app == c.current && group.Less(c.bestGroup)) {
		c.best = c.best[:0]
		c.current = app
		c.bestGroup = group
	}
	if app == c.current && group == c.bestGroup {
		c.best = append(c.best, Ranked{Candidate: cand, Verdict: v})
	}
	if c.observe != nil {
		c.observe(group, cand, v)
	}
	return app
}

// IsSuccess reports whether a successful candidate was kept.
func (c *Collector) IsSuccess() bool {
	return c.current.IsSuccess() && len(c.best) > 0
}

// BestCandidates returns the kept candidates.
func (c *Collector) BestCandidates() []*Candidate {
	out := make([]*Candidate, 0, len(c.best))
	for _, r := range c.best {
		out = append(out, r.Candidate)
	}
	return out
}

// Best returns the kept candidates with their verdicts.
func (c *Collector) Best() []Ranked {
	out := make([]Ranked, len(c.best))
	copy(out, c.best)
	return out
}

// Applicability of the kept candidates.
func (c *Collector) Applicability() Applicability { return c.current }

// BestGroup is the group of the kept candidates, Last when none.
func (c *Collector) BestGroup() Group { return c.bestGroup }

// Consumed counts candidates checked since the last NewDataSet.
func (c *Collector) Consumed() int { return c.consumed }

// ShouldStopAtLevel reports whether probing group can no longer change the
// result.
func (c *Collector) ShouldStopAtLevel(group Group) bool {
	return c.IsSuccess() && c.bestGroup.Less(group)
}

// Outcome classifies a finished run.
type Outcome uint8

const (
	OutcomeUnresolved Outcome = iota
	OutcomeResolved
	OutcomeAmbiguous
	OutcomeInapplicable
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResolved:
		return "resolved"
	case OutcomeAmbiguous:
		return "ambiguous"
	case OutcomeInapplicable:
		return "inapplicable"
	default:
		return "unresolved"
	}
}

// Outcome classifies the kept candidates.
func (c *Collector) Outcome() Outcome {
	switch {
	case len(c.best) == 0:
		return OutcomeUnresolved
	case !c.current.IsSuccess():
		return OutcomeInapplicable
	case len(c.best) > 1:
		return OutcomeAmbiguous
	default:
		return OutcomeResolved
	}
}
