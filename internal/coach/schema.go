package coach

import (
	"slices"

	"github.com/myrjola/calicoach/internal/plan"
)

func stringEnum[T ~string](description string, values []T) map[string]any {
	enum := make([]string, len(values))
	for i, v := range values {
		enum[i] = string(v)
	}
	return map[string]any{"type": "string", "description": description, "enum": enum}
}

func object(properties map[string]any) map[string]any {
	required := make([]string, 0, len(properties))
	for name := range properties {
		required = append(required, name)
	}
	slices.Sort(required)
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

func integer(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func array(description string, items map[string]any) map[string]any {
	return map[string]any{"type": "array", "description": description, "items": items}
}

// catalogTags lists every tag used in the exercise catalog.
func catalogTags() []string {
	var tags []string
	for _, slug := range plan.Slugs() {
		d, _ := plan.Lookup(slug)
		tags = append(tags, d.Tags...)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

// planSchema is the strict response schema of a weekly plan. Exercise slugs are limited to slugs.
func planSchema(slugs []string) map[string]any {
	exercise := object(map[string]any{
		"index":   integer("Position within the block, starting from 1"),
		"slug":    stringEnum("Catalog identifier of the exercise", slugs),
		"name":    map[string]any{"type": "string", "description": "Display name of the exercise"},
		"sets":    integer("Working sets"),
		"reps":    integer("Repetitions per set, 0 for held positions"),
		"holdSec": integer("Seconds per set for held positions, 0 for counted repetitions"),
		"restSec": integer("Rest after each set in seconds"),
		"intensity": object(map[string]any{
			"kind": stringEnum("Intensity scale", []plan.IntensityKind{
				plan.IntensityRPE, plan.IntensityRIR, plan.IntensityPercentage,
			}),
			"value": map[string]any{"type": "number", "description": "Target on the chosen scale"},
		}),
		"tags":  array("Movement tags that apply to this exercise", stringEnum("Movement tag", catalogTags())),
		"notes": map[string]any{"type": "string", "description": "Short coaching cue, may be empty"},
	})
	block := object(map[string]any{
		"index":     integer("Position within the day, starting from 1"),
		"type":      stringEnum("Role of the block", plan.BlockTypes()),
		"exercises": array("Exercises in order", exercise),
	})
	day := object(map[string]any{
		"index":  integer("Day of the week, starting from 1"),
		"type":   stringEnum("Focus of the day", plan.DayTypes()),
		"name":   map[string]any{"type": "string", "description": "Short title of the day"},
		"blocks": array("Blocks in order, empty on rest days", block),
	})
	return object(map[string]any{
		"days": array("Seven days starting on Monday", day),
	})
}
