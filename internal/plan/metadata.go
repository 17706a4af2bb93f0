package plan

import (
	"math"
	"slices"
)

// ComputeMetadata summarises the plan's volume and focus.
func ComputeMetadata(p Plan, avoidTags []string) Metadata {
	m := Metadata{
		TotalWeeklySets:  0,
		PushSets:         0,
		PullSets:         0,
		PushPullRatio:    0,
		SkillFocus:       []string{},
		AvoidedMovements: append([]string{}, avoidTags...),
	}
	slices.Sort(m.AvoidedMovements)

	p.Exercises(func(_ Day, b Block, e Exercise) {
		m.TotalWeeklySets += e.Sets
		d, _ := Lookup(e.Slug)
		switch d.Pattern { //nolint:exhaustive // only push and pull are balanced
		case PatternPush:
			m.PushSets += e.Sets
		case PatternPull:
			m.PullSets += e.Sets
		}
		if b.Type == BlockSkill && !slices.Contains(m.SkillFocus, e.Name) {
			m.SkillFocus = append(m.SkillFocus, e.Name)
		}
	})
	slices.Sort(m.SkillFocus)
	if m.PullSets > 0 {
		m.PushPullRatio = math.Round(float64(m.PushSets)/float64(m.PullSets)*100) / 100 //nolint:mnd // two decimals
	}
	return m
}
