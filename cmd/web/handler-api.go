package main

import (
	"log/slog"
	"net/http"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/plan"
)

type generatePlanResponse struct {
	SavedToAccount bool                          `json:"savedToAccount"`
	PlanID         string                        `json:"planId,omitempty"`
	PlanURL        string                        `json:"planUrl,omitempty"`
	Plan           *plan.Plan                    `json:"plan,omitempty"`
	Source         plan.Source                   `json:"source"`
	WasRepaired    bool                          `json:"wasRepaired"`
	Fitness        assessment.FitnessComputation `json:"fitness"`
	AgeAdjustment  assessment.AgeAdjustment      `json:"ageAdjustment"`
	AvoidTags      []string                      `json:"avoidTags"`
}

// assessmentsAPIPOST is the JSON variant of assessmentPOST. Avoid tags in the request body are ignored.
func (app *application) assessmentsAPIPOST(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	submission, clientTags, err := assessment.DecodeSubmission(r.Body)
	if err != nil {
		app.handleErrorJSON(w, r, err)
		return
	}
	if clientTags {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "ignored client-supplied avoid tags")
	}

	outcome, err := app.trainingService.GeneratePlan(ctx, submission)
	if err != nil {
		app.handleErrorJSON(w, r, err)
		return
	}

	resp := generatePlanResponse{
		SavedToAccount: outcome.SavedToAccount,
		PlanID:         outcome.PlanID,
		PlanURL:        "",
		Plan:           nil,
		Source:         outcome.Source,
		WasRepaired:    outcome.WasRepaired,
		Fitness:        outcome.Fitness,
		AgeAdjustment:  outcome.AgeAdjustment,
		AvoidTags:      outcome.AvoidTags,
	}
	if outcome.SavedToAccount {
		resp.PlanURL = "/api/plans/" + outcome.PlanID
	} else {
		resp.Plan = &outcome.Plan
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

type storedPlanResponse struct {
	ID          string    `json:"id"`
	Plan        plan.Plan `json:"plan"`
	WasRepaired bool      `json:"wasRepaired"`
	Superseded  bool      `json:"superseded"`
	Created     string    `json:"created"`
}

func (app *application) planAPIGET(w http.ResponseWriter, r *http.Request) {
	stored, err := app.trainingService.Plan(r.Context(), r.PathValue("id"))
	if err != nil {
		app.handleErrorJSON(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, storedPlanResponse{
		ID:          stored.ID,
		Plan:        stored.Plan,
		WasRepaired: stored.WasRepaired,
		Superseded:  stored.Superseded,
		Created:     stored.Created.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

type usageResponse struct {
	Tier         string `json:"tier"`
	Plans        int    `json:"plans"`
	PlanLimit    int    `json:"planLimit"`
	ChatMessages int    `json:"chatMessages"`
	ChatLimit    int    `json:"chatLimit"`
}

func (app *application) usageAPIGET(w http.ResponseWriter, r *http.Request) {
	usage, err := app.trainingService.Usage(r.Context())
	if err != nil {
		app.handleErrorJSON(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, usageResponse{
		Tier:         string(usage.Tier),
		Plans:        usage.Plans,
		PlanLimit:    usage.Allowance.Plans,
		ChatMessages: usage.ChatMessages,
		ChatLimit:    usage.Allowance.ChatMessages,
	})
}
