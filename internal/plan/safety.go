package plan

import (
	"fmt"
	"slices"
	"strings"
)

// enforceTagSafety removes every exercise that carries an avoid tag, preferring the closest safe regression.
// Exercises missing from the catalog cannot be checked and are treated as unsafe.
func enforceTagSafety(p Plan, c Constraints) (Plan, []Violation) {
	var violations []Violation
	for di := range p.Days {
		for bi := range p.Days[di].Blocks {
			b := &p.Days[di].Blocks[bi]
			kept := make([]Exercise, 0, len(b.Exercises))
			for ei, e := range b.Exercises {
				v := Violation{Day: di, Block: bi, Exercise: ei, Slug: e.Slug}

				if _, known := Lookup(e.Slug); !known {
					v.Code = "unknown_exercise"
					v.Detail = fmt.Sprintf("%q is not in the exercise catalog", e.Slug)
					v.Repair = RepairRemoved
					violations = append(violations, v)
					continue
				}

				hits := hasAnyTag(e.Tags, c.AvoidTags)
				if len(hits) == 0 {
					kept = append(kept, e)
					continue
				}

				v.Code = "forbidden_tag"
				d, ok := firstRegression(e.Slug, func(d Definition) bool { return d.TagSafe(c.AvoidTags) })
				switch {
				case !ok:
					v.Detail = fmt.Sprintf("%s carries %s and has no safe regression", e.Slug, strings.Join(hits, ", "))
					v.Repair = RepairRemoved
				case containsSlug(kept, d.Slug):
					v.Detail = fmt.Sprintf("%s carries %s and its regression %s is already in the block",
						e.Slug, strings.Join(hits, ", "), d.Slug)
					v.Repair = RepairRemoved
				default:
					v.Detail = fmt.Sprintf("%s carries %s, replaced with %s", e.Slug, strings.Join(hits, ", "), d.Slug)
					v.Repair = RepairSubstituted
					kept = append(kept, substitute(e, d))
				}
				violations = append(violations, v)
			}
			if len(kept) != len(b.Exercises) {
				replaceExercises(b, kept)
			} else {
				b.Exercises = kept
			}
		}
	}
	return p, violations
}

// enforceEquipment swaps exercises that need undeclared equipment for the closest regression that is both
// available and tag safe.
func enforceEquipment(p Plan, c Constraints) (Plan, []Violation) {
	var violations []Violation
	for di := range p.Days {
		for bi := range p.Days[di].Blocks {
			b := &p.Days[di].Blocks[bi]
			kept := make([]Exercise, 0, len(b.Exercises))
			for ei, e := range b.Exercises {
				missing := missingEquipment(e.Equipment, c.Equipment)
				if len(missing) == 0 {
					kept = append(kept, e)
					continue
				}

				v := Violation{Day: di, Block: bi, Exercise: ei, Slug: e.Slug, Code: "missing_equipment"}
				d, ok := firstRegression(e.Slug, func(d Definition) bool {
					return d.TagSafe(c.AvoidTags) && d.Available(c.Equipment)
				})
				switch {
				case !ok:
					v.Detail = fmt.Sprintf("%s needs %s and has no available regression",
						e.Slug, strings.Join(missing, ", "))
					v.Repair = RepairRemoved
				case containsSlug(kept, d.Slug):
					v.Detail = fmt.Sprintf("%s needs %s and its regression %s is already in the block",
						e.Slug, strings.Join(missing, ", "), d.Slug)
					v.Repair = RepairRemoved
				default:
					v.Detail = fmt.Sprintf("%s needs %s, replaced with %s", e.Slug, strings.Join(missing, ", "), d.Slug)
					v.Repair = RepairSubstituted
					kept = append(kept, substitute(e, d))
				}
				violations = append(violations, v)
			}
			if len(kept) != len(b.Exercises) {
				replaceExercises(b, kept)
			} else {
				b.Exercises = kept
			}
		}
	}
	return p, violations
}

func missingEquipment(needed, available []string) []string {
	var missing []string
	for _, item := range needed {
		if !slices.Contains(available, item) {
			missing = append(missing, item)
		}
	}
	return missing
}

func containsSlug(exercises []Exercise, slug string) bool {
	return slices.ContainsFunc(exercises, func(e Exercise) bool { return e.Slug == slug })
}
