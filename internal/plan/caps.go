package plan

import (
	"github.com/myrjola/calicoach/internal/assessment"
)

// VolumeCaps bound the weekly set count and the estimated length of a single block.
type VolumeCaps struct {
	WeeklySets   int `json:"weeklySets"`
	BlockMinutes int `json:"blockMinutes"`
}

// CapsFor returns the volume caps of a fitness level. Unknown levels get the beginner caps.
func CapsFor(level assessment.FitnessLevel) VolumeCaps {
	switch level {
	case assessment.LevelAdvanced:
		return VolumeCaps{WeeklySets: 100, BlockMinutes: 40}
	case assessment.LevelIntermediate:
		return VolumeCaps{WeeklySets: 70, BlockMinutes: 30}
	case assessment.LevelBeginner:
		return VolumeCaps{WeeklySets: 45, BlockMinutes: 20}
	}
	return VolumeCaps{WeeklySets: 45, BlockMinutes: 20}
}

// Constraints are the per-user limits a plan is validated against.
type Constraints struct {
	// AvoidTags are forbidden exercise tags. A plan never keeps an exercise carrying one of them.
	AvoidTags []string
	Caps      VolumeCaps
	// Equipment is the declared equipment. Bodyweight, floor and wall are always available.
	Equipment []string
}

// ConstraintsFor derives the constraints of a training profile.
func ConstraintsFor(p assessment.Profile) Constraints {
	return Constraints{
		AvoidTags: p.ExcludedTags(),
		Caps:      CapsFor(p.PlanningLevel()),
		Equipment: p.Submission.Equipment,
	}
}

const secondsPerRep = 3

// workSeconds estimates the time under tension of one set.
func workSeconds(e Exercise) int {
	if e.Reps > 0 {
		return e.Reps * secondsPerRep
	}
	return e.HoldSec
}

// blockSeconds estimates how long a block takes including rests.
func blockSeconds(b Block) int {
	total := 0
	for _, e := range b.Exercises {
		total += e.Sets * (workSeconds(e) + e.RestSec)
	}
	return total
}
