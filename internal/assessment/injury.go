package assessment

import (
	"slices"
)

// PainArea is a body region with current pain.
type PainArea string

const (
	PainShoulder  PainArea = "shoulder"
	PainElbow     PainArea = "elbow"
	PainWrist     PainArea = "wrist"
	PainLowerBack PainArea = "lower_back"
	PainKnee      PainArea = "knee"
	PainAnkle     PainArea = "ankle"
	PainNeck      PainArea = "neck"
)

// PainAreas lists every known pain area in display order.
func PainAreas() []PainArea {
	return []PainArea{PainShoulder, PainElbow, PainWrist, PainLowerBack, PainKnee, PainAnkle, PainNeck}
}

// injuryAvoidTags maps a pain area to the exercise tags that are contraindicated for it.
//
//nolint:gochecknoglobals // static lookup table.
var injuryAvoidTags = map[PainArea][]string{
	PainShoulder:  {"overhead_pressing", "muscle_up_training", "handstand_training", "deep_dips", "kipping"},
	PainElbow:     {"muscle_up_training", "straight_arm_strength", "deep_dips"},
	PainWrist:     {"wrist_loaded_extension", "handstand_training", "planche_training"},
	PainLowerBack: {"spinal_flexion_loaded", "lumbar_hyperextension", "dragon_flag"},
	PainKnee:      {"deep_squat", "jumping", "pistol_squat", "kneeling"},
	PainAnkle:     {"jumping", "plyometric_landing", "deep_dorsiflexion"},
	PainNeck:      {"neck_loading", "headstand", "wrestler_bridge"},
}

// AvoidTagsFor returns the tags forbidden for a single pain area, or nil for unknown areas.
func AvoidTagsFor(area PainArea) []string {
	return slices.Clone(injuryAvoidTags[area])
}

// ComputeAvoidTags returns the sorted union of forbidden tags for the given pain areas. Unknown areas are
// ignored and duplicates collapse.
//
// This is the only place avoid tags come from. Values sent by clients must never be used instead.
func ComputeAvoidTags(areas []PainArea) []string {
	set := make(map[string]struct{})
	for _, area := range areas {
		for _, tag := range injuryAvoidTags[area] {
			set[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for tag := range set {
		tags = append(tags, tag)
	}
	slices.Sort(tags)
	return tags
}
