package coach

import (
	"slices"
	"strings"
	"testing"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/plan"
	"github.com/myrjola/calicoach/internal/testhelpers"
)

func profile(t *testing.T, mutate func(*assessment.Submission)) assessment.Profile {
	t.Helper()
	s := testhelpers.Submission()
	if mutate != nil {
		mutate(&s)
	}
	p, err := assessment.Derive(s)
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	return p
}

func TestAllowedSlugs(t *testing.T) {
	p := profile(t, nil)
	c := plan.ConstraintsFor(p)
	slugs := allowedSlugs(c)
	if len(slugs) == 0 {
		t.Fatal("no exercises allowed")
	}
	for _, slug := range slugs {
		d, _ := plan.Lookup(slug)
		if !d.TagSafe(c.AvoidTags) || !d.Available(c.Equipment) {
			t.Errorf("%s should not be allowed", slug)
		}
	}
	for _, forbidden := range []string{"wall_handstand_pushup", "dip", "ring_row", "muscle_up"} {
		if slices.Contains(slugs, forbidden) {
			t.Errorf("%s is allowed for a shoulder with a pull-up bar only", forbidden)
		}
	}
	if !slices.Contains(slugs, "pullup") {
		t.Error("pullup should be allowed with a pull-up bar")
	}
}

func TestPlanPrompt(t *testing.T) {
	prompt := planPrompt(profile(t, nil))
	for _, want := range []string{
		"Fitness level: intermediate",
		"Excluded tags: deep_dips, handstand_training, kipping, muscle_up_training, overhead_pressing",
		"Weekly set cap: 70, block time limit: 30 minutes",
		"Goals: strength, skill",
		"- pullup: Pull-up (pull, needs pullup_bar)",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt does not contain %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "- pike_pushup:") {
		t.Errorf("prompt offers an overhead pressing exercise:\n%s", prompt)
	}
}

func TestEnhancePrompt(t *testing.T) {
	prompt, err := enhancePrompt(profile(t, nil), plan.TemplatePlan(assessment.LevelIntermediate))
	if err != nil {
		t.Fatalf("enhancePrompt: %v", err)
	}
	if !strings.Contains(prompt, `"source":"template"`) {
		t.Errorf("template missing from prompt:\n%s", prompt)
	}
}

func TestChatSystemPrompt(t *testing.T) {
	tests := []struct {
		name    string
		profile *assessment.Profile
		want    []string
		notWant []string
	}{
		{
			name:    "no assessment",
			profile: nil,
			want:    []string{"has not completed the assessment"},
			notWant: []string{"Never recommend"},
		},
		{
			name: "adult with shoulder pain",
			profile: func() *assessment.Profile {
				p := profile(t, nil)
				return &p
			}(),
			want:    []string{"Never recommend movements tagged deep_dips, handstand_training"},
			notWant: []string{"diet"},
		},
		{
			name: "minor",
			profile: func() *assessment.Profile {
				p := profile(t, func(s *assessment.Submission) {
					s.BasicInfo.Age = 15
					s.InjuryScreen = assessment.InjuryScreen{HasCurrentPain: false, PainAreas: nil, Severity: 0}
				})
				return &p
			}(),
			want: []string{
				"Never recommend movements tagged dragon_flag, muscle_up_training, planche_training",
				"Do not give diet",
				"parent or guardian",
			},
			notWant: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt := chatSystemPrompt(tt.profile)
			for _, want := range tt.want {
				if !strings.Contains(prompt, want) {
					t.Errorf("prompt does not contain %q:\n%s", want, prompt)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(prompt, notWant) {
					t.Errorf("prompt contains %q:\n%s", notWant, prompt)
				}
			}
		})
	}
}

// assertStrict checks the rules of strict structured outputs: every object lists all its properties as
// required and forbids additional ones.
func assertStrict(t *testing.T, path string, schema map[string]any) {
	t.Helper()
	switch schema["type"] {
	case "object":
		properties, _ := schema["properties"].(map[string]any)
		required, _ := schema["required"].([]string)
		if len(required) != len(properties) {
			t.Errorf("%s: required %v does not cover all %d properties", path, required, len(properties))
		}
		if schema["additionalProperties"] != false {
			t.Errorf("%s: additional properties allowed", path)
		}
		for name, property := range properties {
			assertStrict(t, path+"."+name, property.(map[string]any))
		}
	case "array":
		assertStrict(t, path+"[]", schema["items"].(map[string]any))
	}
}

func TestPlanSchema(t *testing.T) {
	slugs := []string{"pullup", "pushup"}
	schema := planSchema(slugs)
	assertStrict(t, "plan", schema)

	days := schema["properties"].(map[string]any)["days"].(map[string]any)
	day := days["items"].(map[string]any)
	block := day["properties"].(map[string]any)["blocks"].(map[string]any)["items"].(map[string]any)
	exercise := block["properties"].(map[string]any)["exercises"].(map[string]any)["items"].(map[string]any)
	slug := exercise["properties"].(map[string]any)["slug"].(map[string]any)
	if got := slug["enum"].([]string); !slices.Equal(got, slugs) {
		t.Errorf("slug enum = %v, want %v", got, slugs)
	}
}
