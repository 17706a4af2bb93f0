package plan

import (
	"fmt"

	"github.com/myrjola/calicoach/internal/assessment"
)

// Template builders. Days, blocks and exercises are numbered from 1 by week.

func tx(slug string, sets, dose, restSec int, rpe float64) Exercise {
	d, ok := Lookup(slug)
	if !ok {
		panic("template exercise missing from catalog: " + slug)
	}
	e := Exercise{
		Index:       0,
		Slug:        slug,
		Name:        d.Name,
		Sets:        sets,
		RestSec:     restSec,
		Intensity:   Intensity{Kind: IntensityRPE, Value: rpe},
		Tags:        append([]string{}, d.Tags...),
		Equipment:   append([]string{}, d.Equipment...),
		Progression: d.Progression,
		Regression:  d.Regression,
	}
	if d.Hold {
		e.HoldSec = dose
	} else {
		e.Reps = dose
	}
	return e
}

func tb(t BlockType, exercises ...Exercise) Block {
	for i := range exercises {
		exercises[i].Index = i + 1
	}
	return Block{Type: t, Exercises: exercises}
}

func td(t DayType, name string, blocks ...Block) Day {
	for i := range blocks {
		blocks[i].Index = i + 1
	}
	return Day{Type: t, Name: name, Blocks: blocks}
}

func restDay() Day {
	return Day{Type: DayRest, Name: "Rest", Blocks: []Block{}}
}

func week(days ...Day) Plan {
	for i := range days {
		days[i].Index = i + 1
	}
	return Plan{Days: days, Source: SourceTemplate}
}

func beginnerTemplate() Plan {
	return week(
		td(DayFull, "Full Body A",
			tb(BlockWarmup, tx("march_in_place", 1, 60, 0, 3), tx("arm_circles", 1, 45, 0, 3)),
			tb(BlockStrength,
				tx("incline_pushup", 3, 8, 60, 6),
				tx("australian_row", 3, 8, 60, 6),
				tx("bodyweight_squat", 3, 10, 60, 6),
				tx("dead_bug", 2, 8, 45, 5)),
			tb(BlockCooldown, tx("hamstring_stretch", 1, 60, 0, 2))),
		restDay(),
		td(DayFull, "Full Body B",
			tb(BlockWarmup, tx("jumping_jack", 1, 45, 0, 4), tx("leg_swings", 1, 10, 0, 3)),
			tb(BlockStrength,
				tx("knee_pushup", 3, 8, 60, 6),
				tx("negative_pullup", 3, 3, 90, 7),
				tx("glute_bridge", 3, 12, 45, 6),
				tx("plank", 2, 20, 45, 6)),
			tb(BlockCooldown, tx("childs_pose", 1, 60, 0, 2))),
		restDay(),
		td(DayFull, "Full Body C",
			tb(BlockWarmup, tx("arm_circles", 1, 45, 0, 3), tx("march_in_place", 1, 60, 0, 3)),
			tb(BlockStrength,
				tx("wall_pushup", 3, 12, 45, 6),
				tx("prone_y_raise", 3, 10, 45, 6),
				tx("reverse_lunge", 2, 8, 60, 6),
				tx("side_plank", 2, 20, 30, 6)),
			tb(BlockCooldown, tx("supine_breathing", 1, 60, 0, 1))),
		td(DayActiveRecovery, "Mobility",
			tb(BlockCooldown,
				tx("hip_circles", 1, 10, 0, 2),
				tx("doorway_chest_stretch", 1, 60, 0, 2),
				tx("hamstring_stretch", 1, 60, 0, 2))),
		restDay(),
	)
}

func intermediateTemplate() Plan {
	return week(
		td(DayPush, "Push",
			tb(BlockWarmup, tx("arm_circles", 1, 60, 0, 3), tx("scapular_pushup", 2, 10, 30, 4)),
			tb(BlockSkill, tx("crow_pose", 3, 20, 90, 6)),
			tb(BlockStrength,
				tx("dip", 4, 8, 120, 8),
				tx("pike_pushup", 3, 8, 90, 8),
				tx("diamond_pushup", 3, 10, 90, 7)),
			tb(BlockConditioning, tx("mountain_climber", 2, 30, 45, 7)),
			tb(BlockCooldown, tx("doorway_chest_stretch", 1, 60, 0, 2))),
		td(DayPull, "Pull",
			tb(BlockWarmup, tx("arm_circles", 1, 60, 0, 3), tx("band_pull_apart", 2, 15, 30, 4)),
			tb(BlockStrength,
				tx("pullup", 4, 6, 120, 8),
				tx("chinup", 3, 6, 120, 8),
				tx("australian_row", 3, 10, 90, 7),
				tx("hanging_leg_raise", 3, 8, 60, 7)),
			tb(BlockCooldown, tx("childs_pose", 1, 60, 0, 2))),
		restDay(),
		td(DayLegs, "Legs and Core",
			tb(BlockWarmup, tx("leg_swings", 1, 10, 0, 3), tx("hip_circles", 1, 10, 0, 3)),
			tb(BlockStrength,
				tx("bulgarian_split_squat", 3, 8, 90, 8),
				tx("nordic_curl", 3, 5, 120, 8),
				tx("calf_raise", 3, 15, 45, 7),
				tx("hollow_hold", 3, 30, 60, 7)),
			tb(BlockConditioning, tx("jump_squat", 2, 8, 60, 7)),
			tb(BlockCooldown, tx("hamstring_stretch", 1, 60, 0, 2))),
		td(DaySkill, "Skill and Conditioning",
			tb(BlockWarmup, tx("wrist_prep", 1, 60, 0, 3), tx("arm_circles", 1, 60, 0, 3)),
			tb(BlockSkill, tx("wall_handstand", 3, 30, 90, 6), tx("l_sit", 3, 10, 90, 7)),
			tb(BlockConditioning, tx("burpee", 3, 8, 60, 8)),
			tb(BlockCooldown, tx("supine_breathing", 1, 60, 0, 1))),
		td(DayActiveRecovery, "Mobility",
			tb(BlockCooldown,
				tx("cat_cow", 1, 10, 0, 2),
				tx("figure_four_stretch", 1, 60, 0, 2),
				tx("hamstring_stretch", 1, 60, 0, 2))),
		restDay(),
	)
}

func advancedTemplate() Plan {
	return week(
		td(DayPush, "Push",
			tb(BlockWarmup,
				tx("arm_circles", 1, 60, 0, 3),
				tx("scapular_pushup", 2, 10, 30, 4),
				tx("wrist_prep", 1, 60, 0, 3)),
			tb(BlockSkill, tx("tuck_planche", 4, 10, 120, 8), tx("freestanding_handstand", 4, 30, 90, 7)),
			tb(BlockStrength,
				tx("ring_dip", 4, 8, 120, 8),
				tx("wall_handstand_pushup", 4, 5, 120, 9),
				tx("archer_pushup", 3, 8, 90, 8)),
			tb(BlockConditioning, tx("burpee", 2, 10, 60, 8)),
			tb(BlockCooldown, tx("doorway_chest_stretch", 1, 60, 0, 2))),
		td(DayPull, "Pull",
			tb(BlockWarmup, tx("arm_circles", 1, 60, 0, 3), tx("band_pull_apart", 2, 15, 30, 4)),
			tb(BlockSkill, tx("muscle_up", 4, 3, 150, 8), tx("front_lever_tuck", 4, 10, 120, 8)),
			tb(BlockStrength,
				tx("archer_pullup", 4, 5, 120, 8),
				tx("ring_row", 3, 10, 90, 7),
				tx("dragon_flag", 3, 5, 90, 8)),
			tb(BlockCooldown, tx("childs_pose", 1, 60, 0, 2))),
		td(DayLegs, "Legs",
			tb(BlockWarmup, tx("leg_swings", 1, 10, 0, 3), tx("deep_squat_hold", 1, 60, 0, 3)),
			tb(BlockStrength,
				tx("pistol_squat", 4, 6, 120, 8),
				tx("nordic_curl", 3, 5, 120, 9),
				tx("calf_raise", 3, 20, 45, 7),
				tx("hanging_leg_raise", 3, 10, 60, 8)),
			tb(BlockConditioning, tx("jump_squat", 3, 8, 60, 8)),
			tb(BlockCooldown, tx("pigeon_stretch", 1, 60, 0, 2))),
		restDay(),
		td(DayFull, "Full Body",
			tb(BlockWarmup, tx("jumping_jack", 1, 60, 0, 4), tx("wrist_prep", 1, 60, 0, 3)),
			tb(BlockSkill, tx("wall_handstand", 3, 45, 90, 7)),
			tb(BlockStrength,
				tx("pullup", 4, 8, 120, 8),
				tx("dip", 4, 10, 120, 8),
				tx("bulgarian_split_squat", 3, 10, 90, 8),
				tx("l_sit", 3, 15, 90, 8)),
			tb(BlockCooldown, tx("cobra_stretch", 1, 60, 0, 2))),
		td(DayActiveRecovery, "Mobility",
			tb(BlockCooldown,
				tx("bridge", 2, 20, 30, 4),
				tx("figure_four_stretch", 1, 60, 0, 2),
				tx("supine_breathing", 1, 60, 0, 1))),
		restDay(),
	)
}

// TemplatePlan returns the unsanitised template of a level. Unknown levels get the beginner template.
func TemplatePlan(level assessment.FitnessLevel) Plan {
	switch level {
	case assessment.LevelAdvanced:
		return advancedTemplate()
	case assessment.LevelIntermediate:
		return intermediateTemplate()
	case assessment.LevelBeginner:
		return beginnerTemplate()
	}
	return beginnerTemplate()
}

// GetTemplatePlan returns the template of a level sanitised against the constraints. The catalog guarantees
// that a safe regression exists for every template exercise, so an error here is a defect in the templates.
func GetTemplatePlan(level assessment.FitnessLevel, c Constraints) (Result, error) {
	res, err := ValidateAndRepair(TemplatePlan(level), c)
	if err != nil {
		return Result{}, fmt.Errorf("sanitise %s template: %w", level, err)
	}
	res.Plan.Source = SourceTemplate
	return res, nil
}
