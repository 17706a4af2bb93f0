package plan

import (
	"fmt"
	"slices"

	"github.com/myrjola/calicoach/internal/errors"
)

// ErrUnrecoverable means a plan could not be repaired and a template has to be used instead.
var ErrUnrecoverable = errors.NewSentinel("plan cannot be repaired")

// Repair describes what was done about a violation.
type Repair string

const (
	RepairNone        Repair = ""
	RepairSubstituted Repair = "substituted"
	RepairRemoved     Repair = "removed"
	RepairTrimmed     Repair = "trimmed"
)

// Violation is a rule breach found by one of the validation passes. Day, Block and Exercise are positions in
// the plan as the pass saw it.
type Violation struct {
	Pass          string `json:"pass"`
	Code          string `json:"code"`
	Day           int    `json:"day"`
	Block         int    `json:"block"`
	Exercise      int    `json:"exercise"`
	Slug          string `json:"slug,omitempty"`
	Detail        string `json:"detail"`
	Repair        Repair `json:"repair,omitempty"`
	Unrecoverable bool   `json:"unrecoverable,omitempty"`
}

func (v Violation) String() string {
	s := fmt.Sprintf("%s/%s day %d block %d exercise %d: %s", v.Pass, v.Code, v.Day, v.Block, v.Exercise, v.Detail)
	if v.Repair != RepairNone {
		s += " (" + string(v.Repair) + ")"
	}
	return s
}

// Result is a validated plan and everything that was found on the way.
type Result struct {
	Plan        Plan
	WasRepaired bool
	Violations  []Violation
}

// Pass is one step of the validation pipeline. A pass never mutates its input.
type Pass struct {
	Name string
	Run  func(Plan, Constraints) (Plan, []Violation)
}

// Pipeline returns the validation passes in the order they run.
func Pipeline() []Pass {
	return []Pass{
		{Name: "normalize", Run: normalize},
		{Name: "tag_safety", Run: enforceTagSafety},
		{Name: "volume", Run: enforceVolume},
		{Name: "structure", Run: checkStructure},
		{Name: "equipment", Run: enforceEquipment},
		{Name: "completeness", Run: checkCompleteness},
	}
}

// ValidateAndRepair runs the pipeline over a copy of p. Violations are repaired where possible. When a pass
// reports an unrecoverable violation the pipeline stops and an error wrapping ErrUnrecoverable is returned
// together with the violations found so far.
//
// Running ValidateAndRepair on its own output yields no violations and the same plan.
func ValidateAndRepair(p Plan, c Constraints) (Result, error) {
	current := p.Clone()
	var all []Violation
	for _, pass := range Pipeline() {
		var found []Violation
		current, found = pass.Run(current, c)
		fatal := 0
		for i := range found {
			found[i].Pass = pass.Name
			if found[i].Unrecoverable {
				fatal++
			}
		}
		all = append(all, found...)
		if fatal > 0 {
			return Result{Plan: Plan{}, WasRepaired: wasRepaired(all), Violations: all},
				fmt.Errorf("%w: %d unrecoverable violations in %s pass", ErrUnrecoverable, fatal, pass.Name)
		}
	}
	current.Metadata = ComputeMetadata(current, c.AvoidTags)
	return Result{Plan: current, WasRepaired: wasRepaired(all), Violations: all}, nil
}

func wasRepaired(violations []Violation) bool {
	return slices.ContainsFunc(violations, func(v Violation) bool { return v.Repair != RepairNone })
}

const (
	defaultReps    = 8
	defaultHoldSec = 20
)

// applyDose makes the rep or hold prescription match how the exercise is performed.
func applyDose(e *Exercise, d Definition) {
	if d.Hold {
		if e.HoldSec <= 0 {
			e.HoldSec = defaultHoldSec
		}
		e.Reps = 0
		return
	}
	if e.Reps <= 0 {
		e.Reps = defaultReps
	}
	e.HoldSec = 0
}

// normalize fills in catalog data. Known exercises get their vetted name, tags, equipment and progressions.
// Tags claimed by the generator are kept on top of the catalog tags.
func normalize(p Plan, _ Constraints) (Plan, []Violation) {
	for di := range p.Days {
		for bi := range p.Days[di].Blocks {
			exercises := p.Days[di].Blocks[bi].Exercises
			for ei := range exercises {
				e := &exercises[ei]
				tags := append([]string{}, e.Tags...)
				d, ok := Lookup(e.Slug)
				if !ok {
					slices.Sort(tags)
					e.Tags = slices.Compact(tags)
					continue
				}
				tags = append(tags, d.Tags...)
				slices.Sort(tags)
				e.Tags = slices.Compact(tags)
				e.Name = d.Name
				e.Equipment = append([]string{}, d.Equipment...)
				e.Regression = d.Regression
				e.Progression = d.Progression
				applyDose(e, d)
			}
		}
	}
	return p, nil
}

// substitute replaces e with d, keeping the prescription.
func substitute(e Exercise, d Definition) Exercise {
	replaced := e.Name
	if replaced == "" {
		replaced = e.Slug
	}
	e.Slug = d.Slug
	e.Name = d.Name
	e.Tags = append([]string{}, d.Tags...)
	e.Equipment = append([]string{}, d.Equipment...)
	e.Regression = d.Regression
	e.Progression = d.Progression
	e.Notes = "Replaces " + replaced + "."
	applyDose(&e, d)
	return e
}

func hasAnyTag(tags []string, avoid []string) []string {
	var hits []string
	for _, tag := range tags {
		if slices.Contains(avoid, tag) {
			hits = append(hits, tag)
		}
	}
	return hits
}

// firstRegression walks the regression chain of slug and returns the first definition accepted by ok.
func firstRegression(slug string, ok func(Definition) bool) (Definition, bool) {
	for _, d := range RegressionChain(slug) {
		if ok(d) {
			return d, true
		}
	}
	return Definition{}, false
}

// contiguousBase returns the base of indices that count up by one from 0 or 1.
func contiguousBase(indices []int) (int, bool) {
	if len(indices) == 0 {
		return 0, true
	}
	base := indices[0]
	if base != 0 && base != 1 {
		return 0, false
	}
	for i, idx := range indices {
		if idx != base+i {
			return 0, false
		}
	}
	return base, true
}

func exerciseIndices(exercises []Exercise) []int {
	indices := make([]int, len(exercises))
	for i, e := range exercises {
		indices[i] = e.Index
	}
	return indices
}

// replaceExercises swaps the exercises of a block. When the old indices were well-formed the new list is
// renumbered from the same base so that removals do not leave gaps behind.
func replaceExercises(b *Block, exercises []Exercise) {
	base, ok := contiguousBase(exerciseIndices(b.Exercises))
	if ok && len(b.Exercises) > 0 {
		for i := range exercises {
			exercises[i].Index = base + i
		}
	}
	b.Exercises = exercises
}

// checkCompleteness runs after the equipment pass. Substitutions there can lengthen a block, so block durations
// are trimmed again before checking that no training block was emptied.
func checkCompleteness(p Plan, c Constraints) (Plan, []Violation) {
	var violations []Violation
	if c.Caps.BlockMinutes > 0 {
		violations = trimBlockDurations(p, c.Caps.BlockMinutes*60) //nolint:mnd // minutes
	}
	for di, d := range p.Days {
		if d.Type == DayRest {
			continue
		}
		for bi, b := range d.Blocks {
			if len(b.Exercises) == 0 {
				violations = append(violations, Violation{
					Code: "empty_block", Day: di, Block: bi, Exercise: -1,
					Detail:        fmt.Sprintf("%s block of %q has no exercises left", b.Type, d.Name),
					Unrecoverable: true,
				})
			}
		}
	}
	return p, violations
}
