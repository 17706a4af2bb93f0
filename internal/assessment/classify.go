package assessment

import (
	"fmt"
)

// FitnessLevel is derived from the baseline and never accepted from clients.
type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "beginner"
	LevelIntermediate FitnessLevel = "intermediate"
	LevelAdvanced     FitnessLevel = "advanced"
)

func (l FitnessLevel) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// Baseline holds the self-reported performance tests of one assessment.
type Baseline struct {
	MaxPushups           Measurement `json:"maxPushups"`
	MaxPullups           Measurement `json:"maxPullups"`
	MaxDips              Measurement `json:"maxDips"`
	PlankHoldSec         int         `json:"plankHoldSec"`
	HollowHoldSec        Measurement `json:"hollowHoldSec"`
	WallHandstandHoldSec Measurement `json:"wallHandstandHoldSec"`
}

// FitnessComputation is the classifier output together with a human-readable justification.
type FitnessComputation struct {
	Level              FitnessLevel `json:"level"`
	Reasoning          []string     `json:"reasoning"`
	AdvancedIndicators int          `json:"advancedIndicators"`
}

const (
	beginnerPushups   = 5
	beginnerPlankSec  = 30
	advancedRequired  = 3
	advancedPushups   = 25
	advancedPullups   = 12
	advancedDips      = 15
	advancedPlankSec  = 120
	advancedHollowSec = 60
	advancedHSSec     = 30

	solidPushups  = 10
	solidPullups  = 5
	solidPlankSec = 60
)

// Classify maps a baseline to a fitness level. The beginner gate wins over everything else, then at least three
// advanced indicators are needed for advanced, and intermediate is the default.
//
// Movements that could not be tested for lack of equipment are skipped by both gates.
func Classify(b Baseline) FitnessComputation {
	pushups, _ := b.MaxPushups.Resolve()

	var reasons []string
	if pushups < beginnerPushups {
		reasons = append(reasons, fmt.Sprintf("max pushups %d is below %d", pushups, beginnerPushups))
	}
	if pullups, ok := b.MaxPullups.Resolve(); ok && pullups == 0 {
		reasons = append(reasons, "cannot perform a pullup (pullups = 0)")
	}
	if b.PlankHoldSec < beginnerPlankSec {
		reasons = append(reasons, fmt.Sprintf("plank hold %ds is below %ds", b.PlankHoldSec, beginnerPlankSec))
	}
	if len(reasons) > 0 {
		return FitnessComputation{Level: LevelBeginner, Reasoning: reasons, AdvancedIndicators: 0}
	}

	indicators := advancedIndicators(b)
	if len(indicators) >= advancedRequired {
		reasons = append(reasons, fmt.Sprintf("%d advanced indicators met", len(indicators)))
		reasons = append(reasons, indicators...)
		return FitnessComputation{Level: LevelAdvanced, Reasoning: reasons, AdvancedIndicators: len(indicators)}
	}

	if pushups >= solidPushups {
		reasons = append(reasons, fmt.Sprintf("max pushups %d reaches %d", pushups, solidPushups))
	}
	if b.MaxPullups.AtLeast(solidPullups) {
		reasons = append(reasons, fmt.Sprintf("max pullups reach %d", solidPullups))
	}
	if b.PlankHoldSec >= solidPlankSec {
		reasons = append(reasons, fmt.Sprintf("plank hold %ds reaches %ds", b.PlankHoldSec, solidPlankSec))
	}
	reasons = append(reasons, fmt.Sprintf("%d of %d advanced indicators met", len(indicators), advancedRequired))
	return FitnessComputation{Level: LevelIntermediate, Reasoning: reasons, AdvancedIndicators: len(indicators)}
}

func advancedIndicators(b Baseline) []string {
	var met []string
	if b.MaxPushups.AtLeast(advancedPushups) {
		met = append(met, fmt.Sprintf("pushups >= %d", advancedPushups))
	}
	if b.MaxPullups.AtLeast(advancedPullups) {
		met = append(met, fmt.Sprintf("pullups >= %d", advancedPullups))
	}
	if b.MaxDips.AtLeast(advancedDips) {
		met = append(met, fmt.Sprintf("dips >= %d", advancedDips))
	}
	if b.PlankHoldSec >= advancedPlankSec {
		met = append(met, fmt.Sprintf("plank >= %ds", advancedPlankSec))
	}
	if b.HollowHoldSec.AtLeast(advancedHollowSec) {
		met = append(met, fmt.Sprintf("hollow hold >= %ds", advancedHollowSec))
	}
	if b.WallHandstandHoldSec.AtLeast(advancedHSSec) {
		met = append(met, fmt.Sprintf("wall handstand >= %ds", advancedHSSec))
	}
	return met
}
