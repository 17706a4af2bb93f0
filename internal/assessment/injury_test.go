package assessment_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/calicoach/internal/assessment"
)

func TestComputeAvoidTags(t *testing.T) {
	tests := []struct {
		name  string
		areas []assessment.PainArea
		want  []string
	}{
		{
			name:  "empty",
			areas: nil,
			want:  []string{},
		},
		{
			name:  "knee",
			areas: []assessment.PainArea{assessment.PainKnee},
			want:  []string{"deep_squat", "jumping", "kneeling", "pistol_squat"},
		},
		{
			name:  "shared tags collapse",
			areas: []assessment.PainArea{assessment.PainKnee, assessment.PainAnkle},
			want: []string{
				"deep_dorsiflexion", "deep_squat", "jumping", "kneeling", "pistol_squat", "plyometric_landing",
			},
		},
		{
			name:  "unknown areas are ignored",
			areas: []assessment.PainArea{"spleen", assessment.PainNeck},
			want:  []string{"headstand", "neck_loading", "wrestler_bridge"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, assessment.ComputeAvoidTags(tt.areas)); diff != "" {
				t.Errorf("ComputeAvoidTags() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeAvoidTags_orderAndDuplicates(t *testing.T) {
	kneeShoulder := assessment.ComputeAvoidTags([]assessment.PainArea{assessment.PainKnee, assessment.PainShoulder})
	shoulderKnee := assessment.ComputeAvoidTags([]assessment.PainArea{assessment.PainShoulder, assessment.PainKnee})
	if diff := cmp.Diff(kneeShoulder, shoulderKnee); diff != "" {
		t.Errorf("input order changed the result (-knee,shoulder +shoulder,knee):\n%s", diff)
	}

	twice := assessment.ComputeAvoidTags([]assessment.PainArea{assessment.PainKnee, assessment.PainKnee})
	once := assessment.ComputeAvoidTags([]assessment.PainArea{assessment.PainKnee})
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("duplicate input changed the result (-once +twice):\n%s", diff)
	}

	all := assessment.ComputeAvoidTags(assessment.PainAreas())
	if !slices.IsSorted(all) {
		t.Errorf("result %q is not sorted", all)
	}
	if len(slices.Compact(slices.Clone(all))) != len(all) {
		t.Errorf("result %q has duplicates", all)
	}
}

func TestComputeAvoidTags_shoulder(t *testing.T) {
	tags := assessment.ComputeAvoidTags([]assessment.PainArea{assessment.PainShoulder})
	for _, want := range []string{"overhead_pressing", "muscle_up_training"} {
		if !slices.Contains(tags, want) {
			t.Errorf("shoulder tags %q missing %s", tags, want)
		}
	}
	for _, kneeOnly := range []string{"deep_squat", "kneeling", "pistol_squat"} {
		if slices.Contains(tags, kneeOnly) {
			t.Errorf("shoulder tags %q contain knee-only tag %s", tags, kneeOnly)
		}
	}
}

func TestAvoidTagsFor_isACopy(t *testing.T) {
	tags := assessment.AvoidTagsFor(assessment.PainWrist)
	tags[0] = "tampered"
	if slices.Contains(assessment.AvoidTagsFor(assessment.PainWrist), "tampered") {
		t.Error("mutating the returned slice changed the injury table")
	}
}
