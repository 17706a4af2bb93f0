package testhelpers

import (
	"github.com/myrjola/calicoach/internal/assessment"
)

// Submission returns a valid intermediate-level assessment for an adult with shoulder pain and a pull-up bar.
func Submission() assessment.Submission {
	return assessment.Submission{
		BasicInfo: assessment.BasicInfo{
			Age:               30,
			Sex:               assessment.SexFemale,
			HeightCm:          170,
			WeightKg:          65,
			TrainingAgeMonths: 12,
		},
		Availability: assessment.Availability{
			DaysPerWeek:    4,
			SessionMinutes: 45,
			Location:       assessment.LocationHome,
		},
		Equipment: []string{assessment.EquipmentPullupBar},
		Goals:     assessment.GoalSet{Primary: assessment.GoalStrength, Secondary: assessment.GoalSkill, Tertiary: ""},
		InjuryScreen: assessment.InjuryScreen{
			HasCurrentPain: true,
			PainAreas:      []assessment.PainArea{assessment.PainShoulder},
			Severity:       3,
		},
		Baseline: assessment.Baseline{
			MaxPushups:           assessment.Measured(15),
			MaxPullups:           assessment.Measured(6),
			MaxDips:              assessment.NoEquipment(),
			PlankHoldSec:         75,
			HollowHoldSec:        assessment.Measured(20),
			WallHandstandHoldSec: assessment.NeverAttempted(),
		},
	}
}
