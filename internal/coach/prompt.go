package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/plan"
)

// allowedSlugs lists the catalog exercises the profile may be given.
func allowedSlugs(c plan.Constraints) []string {
	var slugs []string
	for _, slug := range plan.Slugs() {
		if d, _ := plan.Lookup(slug); d.TagSafe(c.AvoidTags) && d.Available(c.Equipment) {
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

const planSystemPrompt = `You are an experienced calisthenics coach writing weekly bodyweight training plans.

Rules:
- Write exactly seven days starting on Monday. Rest days have no blocks.
- Only use exercises from the catalog in the request, referenced by slug.
- Never use an exercise carrying one of the excluded tags.
- Stay within the weekly set cap and keep every block under the block time limit.
- Days, blocks and exercises are numbered from 1.
- Held positions use holdSec with reps 0. Counted exercises use reps with holdSec 0.
- Balance pushing and pulling volume.
- Training days start with a warmup block and end with a cooldown block.`

func catalogLines(slugs []string) string {
	var sb strings.Builder
	for _, slug := range slugs {
		d, _ := plan.Lookup(slug)
		fmt.Fprintf(&sb, "- %s: %s (%s", slug, d.Name, d.Pattern)
		if d.Hold {
			sb.WriteString(", held")
		}
		if len(d.Equipment) > 0 {
			fmt.Fprintf(&sb, ", needs %s", strings.Join(d.Equipment, " and "))
		}
		sb.WriteString(")\n")
	}
	return sb.String()
}

func goals(g assessment.GoalSet) string {
	list := []string{string(g.Primary)}
	for _, goal := range []assessment.Goal{g.Secondary, g.Tertiary} {
		if goal != "" {
			list = append(list, string(goal))
		}
	}
	return strings.Join(list, ", ")
}

func orNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ", ")
}

// profileSummary describes the trainee in plain text. The same summary grounds plans and chat replies.
func profileSummary(p assessment.Profile) string {
	c := plan.ConstraintsFor(p)
	s := p.Submission
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fitness level: %s\n", p.PlanningLevel())
	fmt.Fprintf(&sb, "Classification: %s\n", strings.Join(p.Fitness.Reasoning, "; "))
	fmt.Fprintf(&sb, "Age: %d\n", s.BasicInfo.Age)
	fmt.Fprintf(&sb, "Training days per week: %d, %d minutes per session, training at %s\n",
		s.Availability.DaysPerWeek, s.Availability.SessionMinutes, s.Availability.Location)
	fmt.Fprintf(&sb, "Goals: %s\n", goals(s.Goals))
	fmt.Fprintf(&sb, "Equipment: %s\n", orNone(s.Equipment))
	fmt.Fprintf(&sb, "Excluded tags: %s\n", orNone(c.AvoidTags))
	fmt.Fprintf(&sb, "Age restrictions: %s\n", orNone(p.AgeAdjustment.Restrictions))
	fmt.Fprintf(&sb, "Weekly set cap: %d, block time limit: %d minutes\n", c.Caps.WeeklySets, c.Caps.BlockMinutes)
	return sb.String()
}

// planPrompt asks for a new plan for p.
func planPrompt(p assessment.Profile) string {
	var sb strings.Builder
	sb.WriteString("Write a weekly plan for this trainee.\n\n")
	sb.WriteString(profileSummary(p))
	sb.WriteString("\nExercise catalog:\n")
	sb.WriteString(catalogLines(allowedSlugs(plan.ConstraintsFor(p))))
	return sb.String()
}

// enhancePrompt asks the model to personalise a safe template plan without changing its structure.
func enhancePrompt(p assessment.Profile, template plan.Plan) (string, error) {
	body, err := json.Marshal(template)
	if err != nil {
		return "", fmt.Errorf("marshal template: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("Adapt this template plan to the trainee. Keep the days and blocks, " +
		"adjust exercise choice and dosage to the goals and write short coaching notes.\n\n")
	sb.WriteString(profileSummary(p))
	sb.WriteString("\nExercise catalog:\n")
	sb.WriteString(catalogLines(allowedSlugs(plan.ConstraintsFor(p))))
	sb.WriteString("\nTemplate:\n")
	sb.Write(body)
	sb.WriteString("\n")
	return sb.String(), nil
}

// chatSystemPrompt grounds coach replies in the active profile. Without a profile the coach only gives general
// advice and asks the user to take the assessment.
func chatSystemPrompt(p *assessment.Profile) string {
	var sb strings.Builder
	sb.WriteString("You are a friendly calisthenics coach answering questions about training. " +
		"Keep answers short and practical and format them as Markdown. " +
		"You are not a doctor; refer pain and injuries to a medical professional.\n\n")
	if p == nil {
		sb.WriteString("The user has not completed the assessment yet. Give general advice and suggest " +
			"taking the assessment for a personal plan.\n")
		return sb.String()
	}
	sb.WriteString("Trainee profile:\n")
	sb.WriteString(profileSummary(*p))
	c := plan.ConstraintsFor(*p)
	if len(c.AvoidTags) > 0 {
		fmt.Fprintf(&sb, "\nNever recommend movements tagged %s. Suggest safer alternatives instead.\n",
			strings.Join(c.AvoidTags, ", "))
	}
	if p.AgeAdjustment.Has(assessment.RestrictionNoDietContent) {
		sb.WriteString("Do not give diet, calorie or weight loss advice.\n")
	}
	if p.AgeAdjustment.DisclaimerAddendum != "" {
		fmt.Fprintf(&sb, "Remind the trainee when relevant: %s\n", p.AgeAdjustment.DisclaimerAddendum)
	}
	return sb.String()
}
