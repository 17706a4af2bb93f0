package plan

import (
	"fmt"
	"sort"
)

// Trim priorities from first trimmed to last trimmed. Conditioning and cool-down work go first, compound
// strength work goes last.
const (
	priorityConditioning = iota
	priorityCooldown
	priorityWarmup
	priorityAccessory
	prioritySkill
	priorityCompound
)

func trimPriority(b Block, e Exercise) int {
	switch b.Type {
	case BlockConditioning:
		return priorityConditioning
	case BlockCooldown:
		return priorityCooldown
	case BlockWarmup:
		return priorityWarmup
	case BlockSkill:
		return prioritySkill
	case BlockStrength:
		if d, ok := Lookup(e.Slug); ok && d.Compound {
			return priorityCompound
		}
		return priorityAccessory
	}
	return priorityAccessory
}

type position struct {
	day, block, exercise int
}

func (pos position) before(other position) bool {
	if pos.day != other.day {
		return pos.day < other.day
	}
	if pos.block != other.block {
		return pos.block < other.block
	}
	return pos.exercise < other.exercise
}

// trimOrder lists exercise positions in the order they are trimmed: lowest priority first and, within the same
// priority, from the end of the week backwards.
func trimOrder(p Plan, include func(position) bool) []position {
	var order []position
	priority := map[position]int{}
	for di, d := range p.Days {
		for bi, b := range d.Blocks {
			for ei, e := range b.Exercises {
				pos := position{day: di, block: bi, exercise: ei}
				if include != nil && !include(pos) {
					continue
				}
				order = append(order, pos)
				priority[pos] = trimPriority(b, e)
			}
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		if priority[order[i]] != priority[order[j]] {
			return priority[order[i]] < priority[order[j]]
		}
		return order[j].before(order[i])
	})
	return order
}

func (p Plan) at(pos position) *Exercise {
	return &p.Days[pos.day].Blocks[pos.block].Exercises[pos.exercise]
}

// enforceVolume brings the weekly set count under the cap of the fitness level and then shortens blocks that
// would take longer than the per-block limit.
//
// Sets are reduced first, never below one working set. If that is not enough, whole exercises are dropped,
// but never the last exercise of a block.
func enforceVolume(p Plan, c Constraints) (Plan, []Violation) {
	var violations []Violation
	if c.Caps.WeeklySets > 0 {
		violations = append(violations, trimWeeklySets(p, c.Caps.WeeklySets)...)
		if hasUnrecoverable(violations) {
			return p, violations
		}
	}
	if c.Caps.BlockMinutes > 0 {
		violations = append(violations, trimBlockDurations(p, c.Caps.BlockMinutes*60)...) //nolint:mnd // minutes
	}
	return p, violations
}

func hasUnrecoverable(violations []Violation) bool {
	for _, v := range violations {
		if v.Unrecoverable {
			return true
		}
	}
	return false
}

func trimWeeklySets(p Plan, limit int) []Violation {
	excess := p.TotalSets() - limit
	if excess <= 0 {
		return nil
	}

	var violations []Violation
	order := trimOrder(p, nil)
	for _, pos := range order {
		if excess == 0 {
			break
		}
		e := p.at(pos)
		cut := min(e.Sets-1, excess)
		if cut <= 0 {
			continue
		}
		violations = append(violations, Violation{
			Code: "weekly_volume", Day: pos.day, Block: pos.block, Exercise: pos.exercise, Slug: e.Slug,
			Detail: fmt.Sprintf("%s reduced from %d to %d sets to fit %d weekly sets", e.Slug, e.Sets,
				e.Sets-cut, limit),
			Repair: RepairTrimmed,
		})
		e.Sets -= cut
		excess -= cut
	}
	if excess == 0 {
		return violations
	}

	removed := map[position]bool{}
	remaining := map[[2]int]int{}
	for di, d := range p.Days {
		for bi, b := range d.Blocks {
			remaining[[2]int{di, bi}] = len(b.Exercises)
		}
	}
	for _, pos := range order {
		if excess <= 0 {
			break
		}
		key := [2]int{pos.day, pos.block}
		if remaining[key] <= 1 {
			continue
		}
		e := p.at(pos)
		removed[pos] = true
		remaining[key]--
		excess -= e.Sets
		violations = append(violations, Violation{
			Code: "weekly_volume", Day: pos.day, Block: pos.block, Exercise: pos.exercise, Slug: e.Slug,
			Detail: fmt.Sprintf("%s dropped to fit %d weekly sets", e.Slug, limit),
			Repair: RepairRemoved,
		})
	}
	dropRemoved(p, removed)

	if excess > 0 {
		violations = append(violations, Violation{
			Code: "weekly_volume_unreachable", Day: -1, Block: -1, Exercise: -1,
			Detail: fmt.Sprintf("%d weekly sets remain above the cap of %d with one set per block",
				p.TotalSets(), limit),
			Unrecoverable: true,
		})
	}
	return violations
}

func dropRemoved(p Plan, removed map[position]bool) {
	if len(removed) == 0 {
		return
	}
	for di := range p.Days {
		for bi := range p.Days[di].Blocks {
			b := &p.Days[di].Blocks[bi]
			kept := make([]Exercise, 0, len(b.Exercises))
			for ei, e := range b.Exercises {
				if !removed[position{day: di, block: bi, exercise: ei}] {
					kept = append(kept, e)
				}
			}
			if len(kept) != len(b.Exercises) {
				replaceExercises(b, kept)
			}
		}
	}
}

const minRestSec = 30

func trimBlockDurations(p Plan, limitSec int) []Violation {
	var violations []Violation
	for di := range p.Days {
		for bi := range p.Days[di].Blocks {
			b := &p.Days[di].Blocks[bi]
			if blockSeconds(*b) <= limitSec {
				continue
			}
			before := blockSeconds(*b)
			limitMin := limitSec / 60 //nolint:mnd // seconds per minute
			inBlock := func(pos position) bool { return pos.day == di && pos.block == bi }
			order := trimOrder(p, inBlock)

			for _, pos := range order {
				e := p.at(pos)
				from := e.Sets
				for e.Sets > 1 && blockSeconds(*b) > limitSec {
					e.Sets--
				}
				if e.Sets != from {
					violations = append(violations, Violation{
						Code: "block_duration", Day: di, Block: bi, Exercise: pos.exercise, Slug: e.Slug,
						Detail: fmt.Sprintf("%s reduced from %d to %d sets to keep the block under %d minutes",
							e.Slug, from, e.Sets, limitMin),
						Repair: RepairTrimmed,
					})
				}
			}

			removed := map[position]bool{}
			left := len(b.Exercises)
			for _, pos := range order {
				if blockSeconds(*b)-removedSeconds(p, removed) <= limitSec || left <= 1 {
					break
				}
				e := p.at(pos)
				removed[pos] = true
				left--
				violations = append(violations, Violation{
					Code: "block_duration", Day: di, Block: bi, Exercise: pos.exercise, Slug: e.Slug,
					Detail: fmt.Sprintf("%s dropped to keep the block under %d minutes", e.Slug, limitMin),
					Repair: RepairRemoved,
				})
			}
			dropRemoved(p, removed)

			for ei := range b.Exercises {
				if blockSeconds(*b) <= limitSec {
					break
				}
				e := &b.Exercises[ei]
				if e.RestSec > minRestSec {
					violations = append(violations, Violation{
						Code: "block_duration", Day: di, Block: bi, Exercise: ei, Slug: e.Slug,
						Detail: fmt.Sprintf("%s rest shortened from %ds to %ds", e.Slug, e.RestSec, minRestSec),
						Repair: RepairTrimmed,
					})
					e.RestSec = minRestSec
				}
			}

			if after := blockSeconds(*b); after > limitSec {
				violations = append(violations, Violation{
					Code: "block_duration_unreachable", Day: di, Block: bi, Exercise: -1,
					Detail: fmt.Sprintf("block still takes %ds after trimming from %ds, limit %ds",
						after, before, limitSec),
					Unrecoverable: true,
				})
			}
		}
	}
	return violations
}

func removedSeconds(p Plan, removed map[position]bool) int {
	total := 0
	for pos := range removed {
		e := p.at(pos)
		total += e.Sets * (workSeconds(*e) + e.RestSec)
	}
	return total
}
