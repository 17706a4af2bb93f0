package assessment_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/calicoach/internal/assessment"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		baseline       assessment.Baseline
		wantLevel      assessment.FitnessLevel
		wantIndicators int
		wantReasons    []string
	}{
		{
			name: "all beginner triggers are reported",
			baseline: assessment.Baseline{
				MaxPushups:           assessment.Measured(3),
				MaxPullups:           assessment.Measured(0),
				MaxDips:              assessment.Measured(0),
				PlankHoldSec:         20,
				HollowHoldSec:        assessment.NeverAttempted(),
				WallHandstandHoldSec: assessment.NeverAttempted(),
			},
			wantLevel: assessment.LevelBeginner,
			wantReasons: []string{
				"max pushups 3 is below 5",
				"cannot perform a pullup (pullups = 0)",
				"plank hold 20s is below 30s",
			},
		},
		{
			name: "unable pullups count as zero",
			baseline: assessment.Baseline{
				MaxPushups:           assessment.Measured(30),
				MaxPullups:           assessment.Unable(),
				MaxDips:              assessment.Measured(20),
				PlankHoldSec:         180,
				HollowHoldSec:        assessment.Measured(90),
				WallHandstandHoldSec: assessment.Measured(60),
			},
			wantLevel:   assessment.LevelBeginner,
			wantReasons: []string{"cannot perform a pullup (pullups = 0)"},
		},
		{
			name: "missing pullup bar is not penalised",
			baseline: assessment.Baseline{
				MaxPushups:           assessment.Measured(12),
				MaxPullups:           assessment.NoEquipment(),
				MaxDips:              assessment.NoEquipment(),
				PlankHoldSec:         60,
				HollowHoldSec:        assessment.NeverAttempted(),
				WallHandstandHoldSec: assessment.Unable(),
			},
			wantLevel: assessment.LevelIntermediate,
			wantReasons: []string{
				"max pushups 12 reaches 10",
				"plank hold 60s reaches 60s",
				"0 of 3 advanced indicators met",
			},
		},
		{
			name: "three advanced indicators",
			baseline: assessment.Baseline{
				MaxPushups:           assessment.Measured(25),
				MaxPullups:           assessment.Measured(12),
				MaxDips:              assessment.Measured(10),
				PlankHoldSec:         120,
				HollowHoldSec:        assessment.Measured(30),
				WallHandstandHoldSec: assessment.Unable(),
			},
			wantLevel:      assessment.LevelAdvanced,
			wantIndicators: 3,
			wantReasons: []string{
				"3 advanced indicators met",
				"pushups >= 25",
				"pullups >= 12",
				"plank >= 120s",
			},
		},
		{
			name: "two advanced indicators stay intermediate",
			baseline: assessment.Baseline{
				MaxPushups:           assessment.Measured(40),
				MaxPullups:           assessment.Measured(6),
				MaxDips:              assessment.Measured(20),
				PlankHoldSec:         90,
				HollowHoldSec:        assessment.NeverAttempted(),
				WallHandstandHoldSec: assessment.NeverAttempted(),
			},
			wantLevel:      assessment.LevelIntermediate,
			wantIndicators: 2,
			wantReasons: []string{
				"max pushups 40 reaches 10",
				"max pullups reach 5",
				"plank hold 90s reaches 60s",
				"2 of 3 advanced indicators met",
			},
		},
		{
			name: "no-equipment dips are not an advanced indicator",
			baseline: assessment.Baseline{
				MaxPushups:           assessment.Measured(25),
				MaxPullups:           assessment.NoEquipment(),
				MaxDips:              assessment.NoEquipment(),
				PlankHoldSec:         120,
				HollowHoldSec:        assessment.NeverAttempted(),
				WallHandstandHoldSec: assessment.Unable(),
			},
			wantLevel:      assessment.LevelIntermediate,
			wantIndicators: 2,
			wantReasons: []string{
				"max pushups 25 reaches 10",
				"plank hold 120s reaches 60s",
				"2 of 3 advanced indicators met",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := assessment.Classify(tt.baseline)
			if got.Level != tt.wantLevel {
				t.Errorf("level = %s, want %s (reasoning %q)", got.Level, tt.wantLevel, got.Reasoning)
			}
			if got.AdvancedIndicators != tt.wantIndicators {
				t.Errorf("advanced indicators = %d, want %d", got.AdvancedIndicators, tt.wantIndicators)
			}
			if diff := cmp.Diff(tt.wantReasons, got.Reasoning); diff != "" {
				t.Errorf("reasoning mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClassify_beginnerScenarioCitesEveryTrigger(t *testing.T) {
	got := assessment.Classify(assessment.Baseline{
		MaxPushups:           assessment.Measured(3),
		MaxPullups:           assessment.Measured(0),
		MaxDips:              assessment.Measured(0),
		PlankHoldSec:         20,
		HollowHoldSec:        assessment.NeverAttempted(),
		WallHandstandHoldSec: assessment.NeverAttempted(),
	})
	if got.Level != assessment.LevelBeginner {
		t.Fatalf("level = %s, want beginner", got.Level)
	}
	for _, want := range []string{"pushups", "pullup", "plank"} {
		found := false
		for _, reason := range got.Reasoning {
			if strings.Contains(reason, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("reasoning %q does not cite %s", got.Reasoning, want)
		}
	}
}

func levelRank(l assessment.FitnessLevel) int {
	switch l {
	case assessment.LevelBeginner:
		return 0
	case assessment.LevelIntermediate:
		return 1
	case assessment.LevelAdvanced:
		return 2
	}
	return -1
}

// TestClassify_monotonic increases one metric at a time over a grid of baselines and checks that the level
// never drops.
func TestClassify_monotonic(t *testing.T) {
	reps := []int{0, 3, 5, 9, 10, 12, 15, 24, 25, 40}
	holds := []int{0, 20, 30, 59, 60, 119, 120, 200}

	type mutation struct {
		name  string
		apply func(b assessment.Baseline, v int) assessment.Baseline
		steps []int
	}
	mutations := []mutation{
		{"pushups", func(b assessment.Baseline, v int) assessment.Baseline {
			b.MaxPushups = assessment.Measured(v)
			return b
		}, reps},
		{"pullups", func(b assessment.Baseline, v int) assessment.Baseline {
			b.MaxPullups = assessment.Measured(v)
			return b
		}, reps},
		{"dips", func(b assessment.Baseline, v int) assessment.Baseline {
			b.MaxDips = assessment.Measured(v)
			return b
		}, reps},
		{"plank", func(b assessment.Baseline, v int) assessment.Baseline {
			b.PlankHoldSec = v
			return b
		}, holds},
		{"hollow", func(b assessment.Baseline, v int) assessment.Baseline {
			b.HollowHoldSec = assessment.Measured(v)
			return b
		}, holds},
		{"handstand", func(b assessment.Baseline, v int) assessment.Baseline {
			b.WallHandstandHoldSec = assessment.Measured(v)
			return b
		}, holds},
	}

	var bases []assessment.Baseline
	for _, p := range []int{4, 12, 30} {
		for _, pu := range []assessment.Measurement{
			assessment.Unable(), assessment.NoEquipment(), assessment.Measured(6), assessment.Measured(14),
		} {
			for _, plank := range []int{25, 70, 150} {
				bases = append(bases, assessment.Baseline{
					MaxPushups:           assessment.Measured(p),
					MaxPullups:           pu,
					MaxDips:              assessment.Measured(16),
					PlankHoldSec:         plank,
					HollowHoldSec:        assessment.NeverAttempted(),
					WallHandstandHoldSec: assessment.Measured(35),
				})
			}
		}
	}

	for _, base := range bases {
		for _, m := range mutations {
			prev := -1
			for _, v := range m.steps {
				got := levelRank(assessment.Classify(m.apply(base, v)).Level)
				if got < prev {
					t.Errorf("%s increased to %d lowered the level for baseline %+v", m.name, v, base)
				}
				prev = got
			}
		}
	}
}

// Going from "no equipment" to a measured zero is the one place a more informative answer can lower the level.
func TestClassify_noEquipmentBoundary(t *testing.T) {
	base := assessment.Baseline{
		MaxPushups:           assessment.Measured(15),
		MaxPullups:           assessment.NoEquipment(),
		MaxDips:              assessment.NoEquipment(),
		PlankHoldSec:         60,
		HollowHoldSec:        assessment.NeverAttempted(),
		WallHandstandHoldSec: assessment.NeverAttempted(),
	}
	if got := assessment.Classify(base).Level; got != assessment.LevelIntermediate {
		t.Fatalf("no equipment: level = %s, want intermediate", got)
	}

	measuredZero := base
	measuredZero.MaxPullups = assessment.Measured(0)
	if got := assessment.Classify(measuredZero).Level; got != assessment.LevelBeginner {
		t.Errorf("measured zero pullups: level = %s, want beginner", got)
	}

	oneRep := base
	oneRep.MaxPullups = assessment.Measured(1)
	if got := assessment.Classify(oneRep).Level; got != assessment.LevelIntermediate {
		t.Errorf("one pullup: level = %s, want intermediate", got)
	}
}
