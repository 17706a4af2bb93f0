package plan

import (
	"fmt"
	"slices"
)

const (
	maxDays      = 7
	maxRPE       = 10
	maxRIR       = 5
	maxIntensity = 100
)

// checkStructure verifies the shape of the plan. It repairs nothing: a malformed plan means the generator
// misbehaved, so every finding is unrecoverable.
func checkStructure(p Plan, _ Constraints) (Plan, []Violation) {
	var violations []Violation
	fail := func(day, block, exercise int, code, format string, args ...any) {
		violations = append(violations, Violation{
			Code: code, Day: day, Block: block, Exercise: exercise,
			Detail: fmt.Sprintf(format, args...), Unrecoverable: true,
		})
	}

	if len(p.Days) == 0 || len(p.Days) > maxDays {
		fail(-1, -1, -1, "day_count", "plan has %d days, want 1 to %d", len(p.Days), maxDays)
	}

	dayIndices := make([]int, len(p.Days))
	for di, d := range p.Days {
		dayIndices[di] = d.Index
	}
	base, ok := contiguousBase(dayIndices)
	if !ok {
		fail(-1, -1, -1, "day_indices", "day indices %v are not contiguous from 0 or 1", dayIndices)
	}

	for di, d := range p.Days {
		if !slices.Contains(DayTypes(), d.Type) {
			fail(di, -1, -1, "day_type", "unknown day type %q", d.Type)
		}
		if d.Type != DayRest && len(d.Blocks) == 0 {
			fail(di, -1, -1, "empty_day", "%s day %q has no blocks", d.Type, d.Name)
		}

		blockIndices := make([]int, len(d.Blocks))
		for bi, b := range d.Blocks {
			blockIndices[bi] = b.Index
		}
		if !indicesFrom(blockIndices, base) {
			fail(di, -1, -1, "block_indices", "block indices %v do not count up from %d", blockIndices, base)
		}

		for bi, b := range d.Blocks {
			if !slices.Contains(BlockTypes(), b.Type) {
				fail(di, bi, -1, "block_type", "unknown block type %q", b.Type)
			}
			if d.Type != DayRest && len(b.Exercises) == 0 {
				fail(di, bi, -1, "empty_block", "%s block has no exercises", b.Type)
			}
			if !indicesFrom(exerciseIndices(b.Exercises), base) {
				fail(di, bi, -1, "exercise_indices", "exercise indices %v do not count up from %d",
					exerciseIndices(b.Exercises), base)
			}
			for ei, e := range b.Exercises {
				if e.Sets < 1 {
					fail(di, bi, ei, "sets", "%s has %d sets", e.Slug, e.Sets)
				}
				if e.Reps < 0 || e.HoldSec < 0 || (e.Reps == 0 && e.HoldSec == 0) {
					fail(di, bi, ei, "dose", "%s has neither reps nor a hold time", e.Slug)
				}
				if e.RestSec < 0 {
					fail(di, bi, ei, "rest", "%s has negative rest", e.Slug)
				}
				if !validIntensity(e.Intensity) {
					fail(di, bi, ei, "intensity", "%s has invalid intensity %s %.1f",
						e.Slug, e.Intensity.Kind, e.Intensity.Value)
				}
			}
		}
	}
	return p, violations
}

func indicesFrom(indices []int, base int) bool {
	for i, idx := range indices {
		if idx != base+i {
			return false
		}
	}
	return true
}

func validIntensity(in Intensity) bool {
	switch in.Kind {
	case IntensityRPE:
		return in.Value >= 1 && in.Value <= maxRPE
	case IntensityRIR:
		return in.Value >= 0 && in.Value <= maxRIR
	case IntensityPercentage:
		return in.Value > 0 && in.Value <= maxIntensity
	}
	return false
}
