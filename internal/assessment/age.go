package assessment

import (
	"fmt"
)

const (
	MinimumAge = 13
	adultAge   = 18
	seniorAge  = 65
)

const (
	FlagParentalGuidance     = "parental_guidance"
	FlagSeniorConsiderations = "senior_considerations"

	RestrictionNoAdvancedSkills = "no_advanced_skills"
	RestrictionNoDietContent    = "no_diet_content"
	RestrictionMobilityFirst    = "mobility_first"
	RestrictionLowImpact        = "low_impact"
)

// AgeAdjustment modulates plan generation for minors and older adults.
type AgeAdjustment struct {
	Flags              []string `json:"flags"`
	Restrictions       []string `json:"restrictions"`
	DisclaimerAddendum string   `json:"disclaimerAddendum,omitempty"`
}

// ResolveAgeAdjustment returns the adjustments for age. Users younger than MinimumAge are not eligible.
func ResolveAgeAdjustment(age int) (AgeAdjustment, error) {
	switch {
	case age < MinimumAge:
		return AgeAdjustment{}, fmt.Errorf("%w: age %d is below %d", ErrIneligibleAge, age, MinimumAge)
	case age < adultAge:
		return AgeAdjustment{
			Flags:        []string{FlagParentalGuidance},
			Restrictions: []string{RestrictionNoAdvancedSkills, RestrictionNoDietContent},
			DisclaimerAddendum: "Because you are under 18, train with a parent or guardian's knowledge, " +
				"focus on technique and stop any exercise that causes pain.",
		}, nil
	case age >= seniorAge:
		return AgeAdjustment{
			Flags:        []string{FlagSeniorConsiderations},
			Restrictions: []string{RestrictionMobilityFirst, RestrictionLowImpact},
			DisclaimerAddendum: "Check with your physician before starting a new training program. " +
				"Warm up thoroughly and prioritise balance and mobility work.",
		}, nil
	default:
		return AgeAdjustment{Flags: []string{}, Restrictions: []string{}, DisclaimerAddendum: ""}, nil
	}
}

func (a AgeAdjustment) Has(restriction string) bool {
	for _, r := range a.Restrictions {
		if r == restriction {
			return true
		}
	}
	return false
}

// PlanningLevel is the level used for volume caps and template selection. Minors and seniors are never planned
// at advanced volume, whatever their classification says.
func (a AgeAdjustment) PlanningLevel(level FitnessLevel) FitnessLevel {
	if level == LevelAdvanced && (a.Has(RestrictionNoAdvancedSkills) || a.Has(RestrictionMobilityFirst)) {
		return LevelIntermediate
	}
	return level
}

// AdvancedSkillTags are forbidden for users with the no_advanced_skills restriction.
func AdvancedSkillTags() []string {
	return []string{"muscle_up_training", "planche_training", "dragon_flag"}
}

// LowImpactTags are forbidden for users with the low_impact restriction.
func LowImpactTags() []string {
	return []string{"jumping", "plyometric_landing"}
}
