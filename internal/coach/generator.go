package coach

import (
	"context"
	"fmt"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/plan"
	"github.com/openai/openai-go/v3"
)

// PlanGenerator drafts plans with the language model. Its output is unvalidated.
type PlanGenerator struct {
	client *Client
}

func NewPlanGenerator(client *Client) *PlanGenerator {
	return &PlanGenerator{client: client}
}

func (g *PlanGenerator) planFormat(p assessment.Profile) *openai.ResponseFormatJSONSchemaJSONSchemaParam {
	return &openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "weekly_plan",
		Description: openai.String("Weekly calisthenics training plan"),
		Schema:      planSchema(allowedSlugs(plan.ConstraintsFor(p))),
		Strict:      openai.Bool(true),
	}
}

func (g *PlanGenerator) draft(ctx context.Context, p assessment.Profile, prompt string, source plan.Source) (plan.Plan, error) {
	if g.client == nil {
		return plan.Plan{}, fmt.Errorf("%w: %w", ErrGeneration, ErrCoachOffline)
	}
	content, err := g.client.complete(ctx, completion{
		system:   planSystemPrompt,
		messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		format:   g.planFormat(p),
	})
	if err != nil {
		return plan.Plan{}, err
	}
	drafted, err := plan.Decode([]byte(content), source)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return drafted, nil
}

// Generate drafts a plan from scratch.
func (g *PlanGenerator) Generate(ctx context.Context, p assessment.Profile) (plan.Plan, error) {
	return g.draft(ctx, p, planPrompt(p), plan.SourceAI)
}

// EnhanceTemplate personalises a template plan. The result is marked as an enhanced template.
func (g *PlanGenerator) EnhanceTemplate(ctx context.Context, p assessment.Profile, template plan.Plan) (plan.Plan, error) {
	prompt, err := enhancePrompt(p, template)
	if err != nil {
		return plan.Plan{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	return g.draft(ctx, p, prompt, plan.SourceAIEnhancedTemplate)
}
