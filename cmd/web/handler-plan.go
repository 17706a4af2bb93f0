package main

import (
	"fmt"
	"net/http"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/plan"
	"github.com/myrjola/calicoach/internal/training"
)

type exerciseView struct {
	Name      string
	Sets      int
	Dose      string
	RestSec   int
	Intensity string
	Notes     string
}

type blockView struct {
	Type      string
	Exercises []exerciseView
}

type dayView struct {
	Name   string
	Type   string
	Blocks []blockView
}

type planView struct {
	Days     []dayView
	Metadata plan.Metadata
}

func newPlanView(p plan.Plan) planView {
	days := make([]dayView, 0, len(p.Days))
	for _, d := range p.Days {
		blocks := make([]blockView, 0, len(d.Blocks))
		for _, b := range d.Blocks {
			exercises := make([]exerciseView, 0, len(b.Exercises))
			for _, e := range b.Exercises {
				dose := fmt.Sprintf("%d reps", e.Reps)
				if e.HoldSec > 0 {
					dose = fmt.Sprintf("%d s hold", e.HoldSec)
				}
				exercises = append(exercises, exerciseView{
					Name:      e.Name,
					Sets:      e.Sets,
					Dose:      dose,
					RestSec:   e.RestSec,
					Intensity: fmt.Sprintf("%s %s", formatFloat(e.Intensity.Value), e.Intensity.Kind),
					Notes:     e.Notes,
				})
			}
			blocks = append(blocks, blockView{Type: humanize(string(b.Type)), Exercises: exercises})
		}
		name := d.Name
		if name == "" {
			name = humanize(string(d.Type))
		}
		days = append(days, dayView{Name: name, Type: string(d.Type), Blocks: blocks})
	}
	return planView{Days: days, Metadata: p.Metadata}
}

type profileView struct {
	Level        string
	Reasoning    []string
	AvoidTags    []string
	Flags        []string
	Restrictions []string
	Disclaimer   string
}

func newProfileView(fitness assessment.FitnessComputation, age assessment.AgeAdjustment, avoidTags []string) *profileView {
	return &profileView{
		Level:        string(fitness.Level),
		Reasoning:    fitness.Reasoning,
		AvoidTags:    avoidTags,
		Flags:        age.Flags,
		Restrictions: age.Restrictions,
		Disclaimer:   age.DisclaimerAddendum,
	}
}

type planTemplateData struct {
	BaseTemplateData
	Plan        planView
	Profile     *profileView
	Source      string
	WasRepaired bool
	Saved       bool
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stored, err := app.trainingService.Plan(ctx, r.PathValue("id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	data := planTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Plan:             newPlanView(stored.Plan),
		Profile:          nil,
		Source:           string(stored.Plan.Source),
		WasRepaired:      stored.WasRepaired,
		Saved:            true,
	}
	profile, err := app.trainingService.ActiveProfile(ctx)
	switch {
	case err == nil && profile.ID == stored.ProfileID:
		p := profile.Profile
		data.Profile = newProfileView(p.Fitness, p.AgeAdjustment, p.AvoidTags)
	case err != nil && !errors.Is(err, training.ErrNotFound):
		app.serverError(w, r, err)
		return
	}
	app.render(w, r, http.StatusOK, "plan", data)
}

// activePlanGET redirects to the current plan or to the assessment when there is none yet.
func (app *application) activePlanGET(w http.ResponseWriter, r *http.Request) {
	stored, err := app.trainingService.ActivePlan(r.Context())
	if errors.Is(err, training.ErrNotFound) {
		redirect(w, r, "/assessment")
		return
	}
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	redirect(w, r, "/plans/"+stored.ID)
}
