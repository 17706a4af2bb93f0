package plan

import (
	"slices"
	"sort"
)

// Pattern groups exercises by the movement they train.
type Pattern string

const (
	PatternPush         Pattern = "push"
	PatternPull         Pattern = "pull"
	PatternLegs         Pattern = "legs"
	PatternCore         Pattern = "core"
	PatternSkill        Pattern = "skill"
	PatternConditioning Pattern = "conditioning"
	PatternMobility     Pattern = "mobility"
)

// Definition is the vetted description of an exercise. Tags and equipment in a plan are always taken from here.
type Definition struct {
	Slug        string
	Name        string
	Pattern     Pattern
	Compound    bool
	Hold        bool
	Tags        []string
	Equipment   []string
	Regression  string
	Progression string
}

// Every regression chain ends in an exercise without tags or equipment so that a safe substitute always exists.
//
//nolint:gochecknoglobals // static exercise catalog.
var catalog = newCatalog([]Definition{
	// Push.
	{Slug: "tuck_planche", Name: "Tuck Planche", Pattern: PatternSkill, Hold: true,
		Tags: []string{"planche_training", "straight_arm_strength", "wrist_loaded_extension"}, Regression: "planche_lean"},
	{Slug: "planche_lean", Name: "Planche Lean", Pattern: PatternPush, Hold: true,
		Tags: []string{"planche_training", "straight_arm_strength", "wrist_loaded_extension"},
		Regression: "pseudo_planche_pushup", Progression: "tuck_planche"},
	{Slug: "pseudo_planche_pushup", Name: "Pseudo Planche Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"planche_training", "wrist_loaded_extension"}, Regression: "diamond_pushup",
		Progression: "planche_lean"},
	{Slug: "archer_pushup", Name: "Archer Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "diamond_pushup"},
	{Slug: "diamond_pushup", Name: "Diamond Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "pushup", Progression: "archer_pushup"},
	{Slug: "parallette_pushup", Name: "Parallette Push-up", Pattern: PatternPush, Compound: true,
		Equipment: []string{"parallettes"}, Regression: "pushup"},
	{Slug: "pushup", Name: "Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "incline_pushup", Progression: "diamond_pushup"},
	{Slug: "knee_pushup", Name: "Knee Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"kneeling", "wrist_loaded_extension"}, Regression: "wall_pushup", Progression: "pushup"},
	{Slug: "incline_pushup", Name: "Incline Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "wall_pushup", Progression: "pushup"},
	{Slug: "wall_pushup", Name: "Wall Push-up", Pattern: PatternPush, Compound: true,
		Regression: "isometric_chest_squeeze", Progression: "incline_pushup"},
	{Slug: "isometric_chest_squeeze", Name: "Isometric Chest Squeeze", Pattern: PatternPush, Hold: true,
		Progression: "wall_pushup"},
	{Slug: "wall_handstand_pushup", Name: "Wall Handstand Push-up", Pattern: PatternPush, Compound: true,
		Tags:       []string{"handstand_training", "overhead_pressing", "wrist_loaded_extension"},
		Regression: "pike_pushup"},
	{Slug: "pike_pushup", Name: "Pike Push-up", Pattern: PatternPush, Compound: true,
		Tags: []string{"overhead_pressing", "wrist_loaded_extension"}, Regression: "pushup",
		Progression: "wall_handstand_pushup"},
	{Slug: "ring_dip", Name: "Ring Dip", Pattern: PatternPush, Compound: true,
		Tags: []string{"deep_dips", "straight_arm_strength"}, Equipment: []string{"rings"}, Regression: "dip"},
	{Slug: "dip", Name: "Parallel Bar Dip", Pattern: PatternPush, Compound: true,
		Tags: []string{"deep_dips"}, Equipment: []string{"dip_bars"}, Regression: "bench_dip",
		Progression: "ring_dip"},
	{Slug: "bench_dip", Name: "Bench Dip", Pattern: PatternPush,
		Tags: []string{"deep_dips"}, Regression: "diamond_pushup", Progression: "dip"},
	{Slug: "scapular_pushup", Name: "Scapular Push-up", Pattern: PatternMobility,
		Tags: []string{"wrist_loaded_extension"}, Regression: "wall_slide"},

	// Pull.
	{Slug: "muscle_up", Name: "Muscle-up", Pattern: PatternSkill, Compound: true,
		Tags:      []string{"kipping", "muscle_up_training", "straight_arm_strength"},
		Equipment: []string{"pullup_bar"}, Regression: "chest_to_bar_pullup"},
	{Slug: "chest_to_bar_pullup", Name: "Chest-to-Bar Pull-up", Pattern: PatternPull, Compound: true,
		Equipment: []string{"pullup_bar"}, Regression: "pullup", Progression: "muscle_up"},
	{Slug: "kipping_pullup", Name: "Kipping Pull-up", Pattern: PatternPull, Compound: true,
		Tags: []string{"kipping"}, Equipment: []string{"pullup_bar"}, Regression: "pullup"},
	{Slug: "archer_pullup", Name: "Archer Pull-up", Pattern: PatternPull, Compound: true,
		Equipment: []string{"pullup_bar"}, Regression: "pullup"},
	{Slug: "pullup", Name: "Pull-up", Pattern: PatternPull, Compound: true,
		Equipment: []string{"pullup_bar"}, Regression: "negative_pullup", Progression: "chest_to_bar_pullup"},
	{Slug: "chinup", Name: "Chin-up", Pattern: PatternPull, Compound: true,
		Equipment: []string{"pullup_bar"}, Regression: "negative_pullup", Progression: "pullup"},
	{Slug: "negative_pullup", Name: "Negative Pull-up", Pattern: PatternPull, Compound: true,
		Equipment: []string{"pullup_bar"}, Regression: "australian_row", Progression: "pullup"},
	{Slug: "ring_row", Name: "Ring Row", Pattern: PatternPull, Compound: true,
		Equipment: []string{"rings"}, Regression: "australian_row"},
	{Slug: "australian_row", Name: "Australian Row", Pattern: PatternPull, Compound: true,
		Equipment: []string{"low_bar"}, Regression: "prone_y_raise", Progression: "negative_pullup"},
	{Slug: "front_lever_tuck", Name: "Tuck Front Lever", Pattern: PatternSkill, Hold: true,
		Tags: []string{"straight_arm_strength"}, Equipment: []string{"pullup_bar"}, Regression: "scapular_pull"},
	{Slug: "back_lever_tuck", Name: "Tuck Back Lever", Pattern: PatternSkill, Hold: true,
		Tags:       []string{"deep_dips", "straight_arm_strength"},
		Equipment:  []string{"rings"}, Regression: "scapular_pull"},
	{Slug: "scapular_pull", Name: "Scapular Pull-up", Pattern: PatternPull,
		Equipment: []string{"pullup_bar"}, Regression: "prone_y_raise"},
	{Slug: "band_pull_apart", Name: "Band Pull-apart", Pattern: PatternPull,
		Equipment: []string{"resistance_band"}, Regression: "prone_y_raise"},
	{Slug: "prone_y_raise", Name: "Prone Y Raise", Pattern: PatternPull, Progression: "australian_row"},

	// Legs.
	{Slug: "pistol_squat", Name: "Pistol Squat", Pattern: PatternLegs, Compound: true,
		Tags:       []string{"deep_dorsiflexion", "deep_squat", "pistol_squat"},
		Regression: "bulgarian_split_squat"},
	{Slug: "bulgarian_split_squat", Name: "Bulgarian Split Squat", Pattern: PatternLegs, Compound: true,
		Tags: []string{"deep_squat"}, Regression: "bodyweight_squat", Progression: "pistol_squat"},
	{Slug: "jump_squat", Name: "Jump Squat", Pattern: PatternConditioning, Compound: true,
		Tags: []string{"deep_squat", "jumping", "plyometric_landing"}, Regression: "bodyweight_squat"},
	{Slug: "box_jump", Name: "Box Jump", Pattern: PatternConditioning,
		Tags: []string{"jumping", "plyometric_landing"}, Regression: "march_in_place"},
	{Slug: "reverse_lunge", Name: "Reverse Lunge", Pattern: PatternLegs, Compound: true,
		Tags: []string{"deep_squat"}, Regression: "glute_bridge"},
	{Slug: "bodyweight_squat", Name: "Bodyweight Squat", Pattern: PatternLegs, Compound: true,
		Tags: []string{"deep_squat"}, Regression: "glute_bridge", Progression: "bulgarian_split_squat"},
	{Slug: "nordic_curl", Name: "Nordic Hamstring Curl", Pattern: PatternLegs, Compound: true,
		Tags: []string{"kneeling"}, Regression: "single_leg_glute_bridge"},
	{Slug: "single_leg_glute_bridge", Name: "Single-leg Glute Bridge", Pattern: PatternLegs,
		Regression: "glute_bridge", Progression: "nordic_curl"},
	{Slug: "glute_bridge", Name: "Glute Bridge", Pattern: PatternLegs, Progression: "bodyweight_squat"},
	{Slug: "calf_raise", Name: "Calf Raise", Pattern: PatternLegs},
	{Slug: "wall_sit", Name: "Wall Sit", Pattern: PatternLegs, Hold: true, Regression: "glute_bridge"},

	// Core.
	{Slug: "dragon_flag", Name: "Dragon Flag", Pattern: PatternCore,
		Tags: []string{"dragon_flag", "lumbar_hyperextension"}, Regression: "hanging_leg_raise"},
	{Slug: "hanging_leg_raise", Name: "Hanging Leg Raise", Pattern: PatternCore,
		Equipment: []string{"pullup_bar"}, Regression: "hollow_hold", Progression: "dragon_flag"},
	{Slug: "l_sit", Name: "L-sit", Pattern: PatternCore, Hold: true,
		Equipment: []string{"parallettes"}, Regression: "hollow_hold"},
	{Slug: "v_up", Name: "V-up", Pattern: PatternCore,
		Tags: []string{"spinal_flexion_loaded"}, Regression: "hollow_hold"},
	{Slug: "weighted_situp", Name: "Weighted Sit-up", Pattern: PatternCore,
		Tags: []string{"spinal_flexion_loaded"}, Regression: "dead_bug"},
	{Slug: "hollow_hold", Name: "Hollow Body Hold", Pattern: PatternCore, Hold: true,
		Regression: "dead_bug", Progression: "l_sit"},
	{Slug: "plank", Name: "Forearm Plank", Pattern: PatternCore, Hold: true, Regression: "dead_bug"},
	{Slug: "side_plank", Name: "Side Plank", Pattern: PatternCore, Hold: true, Regression: "dead_bug"},
	{Slug: "superman", Name: "Superman Hold", Pattern: PatternCore, Hold: true,
		Tags: []string{"lumbar_hyperextension"}, Regression: "dead_bug"},
	{Slug: "bird_dog", Name: "Bird Dog", Pattern: PatternCore,
		Tags: []string{"kneeling"}, Regression: "dead_bug"},
	{Slug: "dead_bug", Name: "Dead Bug", Pattern: PatternCore, Progression: "hollow_hold"},

	// Skill.
	{Slug: "freestanding_handstand", Name: "Freestanding Handstand", Pattern: PatternSkill, Hold: true,
		Tags:       []string{"handstand_training", "overhead_pressing", "wrist_loaded_extension"},
		Regression: "wall_handstand"},
	{Slug: "wall_handstand", Name: "Wall Handstand", Pattern: PatternSkill, Hold: true,
		Tags:       []string{"handstand_training", "overhead_pressing", "wrist_loaded_extension"},
		Regression: "pike_hold", Progression: "freestanding_handstand"},
	{Slug: "pike_hold", Name: "Elevated Pike Hold", Pattern: PatternSkill, Hold: true,
		Tags: []string{"overhead_pressing", "wrist_loaded_extension"}, Regression: "hollow_hold",
		Progression: "wall_handstand"},
	{Slug: "headstand", Name: "Tripod Headstand", Pattern: PatternSkill, Hold: true,
		Tags: []string{"headstand", "neck_loading"}, Regression: "hollow_hold"},
	{Slug: "crow_pose", Name: "Crow Pose", Pattern: PatternSkill, Hold: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "hollow_hold", Progression: "tuck_planche"},

	// Conditioning.
	{Slug: "burpee", Name: "Burpee", Pattern: PatternConditioning,
		Tags:       []string{"jumping", "plyometric_landing", "wrist_loaded_extension"},
		Regression: "mountain_climber"},
	{Slug: "mountain_climber", Name: "Mountain Climber", Pattern: PatternConditioning, Hold: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "march_in_place"},
	{Slug: "high_knees", Name: "High Knees", Pattern: PatternConditioning, Hold: true,
		Tags: []string{"jumping"}, Regression: "march_in_place"},
	{Slug: "bear_crawl", Name: "Bear Crawl", Pattern: PatternConditioning, Hold: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "march_in_place"},
	{Slug: "shadow_boxing", Name: "Shadow Boxing", Pattern: PatternConditioning, Hold: true},

	// Warm-up and mobility.
	{Slug: "jumping_jack", Name: "Jumping Jacks", Pattern: PatternMobility, Hold: true,
		Tags: []string{"jumping"}, Regression: "march_in_place"},
	{Slug: "march_in_place", Name: "March in Place", Pattern: PatternMobility, Hold: true},
	{Slug: "arm_circles", Name: "Arm Circles", Pattern: PatternMobility, Hold: true},
	{Slug: "wall_slide", Name: "Wall Slide", Pattern: PatternMobility},
	{Slug: "wrist_prep", Name: "Loaded Wrist Prep", Pattern: PatternMobility, Hold: true,
		Tags: []string{"wrist_loaded_extension"}, Regression: "wrist_circles"},
	{Slug: "wrist_circles", Name: "Wrist Circles", Pattern: PatternMobility, Hold: true},
	{Slug: "leg_swings", Name: "Leg Swings", Pattern: PatternMobility},
	{Slug: "hip_circles", Name: "Hip Circles", Pattern: PatternMobility},
	{Slug: "deep_squat_hold", Name: "Deep Squat Hold", Pattern: PatternMobility, Hold: true,
		Tags: []string{"deep_dorsiflexion", "deep_squat"}, Regression: "hip_circles"},
	{Slug: "cat_cow", Name: "Cat-Cow", Pattern: PatternMobility,
		Tags: []string{"kneeling", "wrist_loaded_extension"}, Regression: "pelvic_tilt"},
	{Slug: "pelvic_tilt", Name: "Supine Pelvic Tilt", Pattern: PatternMobility},

	// Cool-down.
	{Slug: "childs_pose", Name: "Child's Pose", Pattern: PatternMobility, Hold: true,
		Tags: []string{"kneeling"}, Regression: "supine_breathing"},
	{Slug: "pigeon_stretch", Name: "Pigeon Stretch", Pattern: PatternMobility, Hold: true,
		Tags: []string{"kneeling"}, Regression: "figure_four_stretch"},
	{Slug: "figure_four_stretch", Name: "Supine Figure-four Stretch", Pattern: PatternMobility, Hold: true},
	{Slug: "hamstring_stretch", Name: "Supine Hamstring Stretch", Pattern: PatternMobility, Hold: true},
	{Slug: "doorway_chest_stretch", Name: "Doorway Chest Stretch", Pattern: PatternMobility, Hold: true},
	{Slug: "cobra_stretch", Name: "Cobra Stretch", Pattern: PatternMobility, Hold: true,
		Tags: []string{"lumbar_hyperextension", "wrist_loaded_extension"}, Regression: "supine_breathing"},
	{Slug: "bridge", Name: "Full Bridge", Pattern: PatternMobility, Hold: true,
		Tags:       []string{"lumbar_hyperextension", "overhead_pressing", "wrist_loaded_extension"},
		Regression: "glute_bridge"},
	{Slug: "wrestler_bridge", Name: "Wrestler's Bridge", Pattern: PatternMobility, Hold: true,
		Tags: []string{"neck_loading", "wrestler_bridge"}, Regression: "glute_bridge"},
	{Slug: "supine_breathing", Name: "Supine Breathing", Pattern: PatternMobility, Hold: true},
})

func newCatalog(defs []Definition) map[string]Definition {
	m := make(map[string]Definition, len(defs))
	for _, d := range defs {
		d.Tags = slices.Sorted(slices.Values(d.Tags))
		m[d.Slug] = d
	}
	return m
}

// Lookup returns the catalog definition of slug.
func Lookup(slug string) (Definition, bool) {
	d, ok := catalog[slug]
	return d, ok
}

// Slugs returns every catalog slug in alphabetical order.
func Slugs() []string {
	slugs := make([]string, 0, len(catalog))
	for slug := range catalog {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

// TagSafe reports whether the definition carries none of the avoid tags.
func (d Definition) TagSafe(avoidTags []string) bool {
	for _, tag := range d.Tags {
		if slices.Contains(avoidTags, tag) {
			return false
		}
	}
	return true
}

// Available reports whether every piece of equipment the definition needs is in equipment.
func (d Definition) Available(equipment []string) bool {
	for _, item := range d.Equipment {
		if !slices.Contains(equipment, item) {
			return false
		}
	}
	return true
}

// RegressionChain returns the regressions of slug from the closest to the easiest.
func RegressionChain(slug string) []Definition {
	var chain []Definition
	seen := map[string]bool{slug: true}
	for next := catalog[slug].Regression; next != "" && !seen[next]; {
		d, ok := catalog[next]
		if !ok {
			break
		}
		seen[next] = true
		chain = append(chain, d)
		next = d.Regression
	}
	return chain
}
