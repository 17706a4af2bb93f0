package main

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/training"
)

type option struct {
	Value string
	Label string
}

func options[T ~string](values []T) []option {
	out := make([]option, len(values))
	for i, v := range values {
		out[i] = option{Value: string(v), Label: humanize(string(v))}
	}
	return out
}

type assessmentTemplateData struct {
	BaseTemplateData
	Goals     []option
	Equipment []option
	PainAreas []option
	Locations []option
	Sexes     []option
}

func (app *application) assessmentGET(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusOK, "assessment", assessmentTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Goals:            options(assessment.Goals()),
		Equipment:        options(assessment.EquipmentOptions()),
		PainAreas:        options(assessment.PainAreas()),
		Locations: options([]assessment.Location{
			assessment.LocationHome, assessment.LocationGym, assessment.LocationOutdoor,
		}),
		Sexes: options([]assessment.Sex{
			assessment.SexUnspecified, assessment.SexFemale, assessment.SexMale, assessment.SexOther,
		}),
	})
}

// formReader accumulates parse errors so that the user sees every problem at once.
type formReader struct {
	r    *http.Request
	errs []error
}

func (f *formReader) int(name string) int {
	raw := strings.TrimSpace(f.r.PostForm.Get(name))
	if raw == "" {
		f.errs = append(f.errs, fmt.Errorf("%s is required", humanize(name)))
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		f.errs = append(f.errs, fmt.Errorf("%s must be a whole number", humanize(name)))
	}
	return v
}

func (f *formReader) float(name string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.r.PostForm.Get(name)), 64)
	if err != nil {
		f.errs = append(f.errs, fmt.Errorf("%s must be a number", humanize(name)))
	}
	return v
}

// measurement reads a baseline test entered as a kind select and an optional value.
func (f *formReader) measurement(name string) assessment.Measurement {
	kind := assessment.MeasurementKind(f.r.PostForm.Get(name + "_kind"))
	if kind == "" || kind == assessment.KindMeasured {
		return assessment.Measured(f.int(name))
	}
	return assessment.Measurement{Kind: kind, Value: 0}
}

// parseSubmissionForm converts the assessment form. Range checks are left to assessment.Derive.
func parseSubmissionForm(r *http.Request) (assessment.Submission, error) {
	if err := r.ParseForm(); err != nil {
		return assessment.Submission{}, fmt.Errorf("%w: parse form: %w", assessment.ErrInvalidSubmission, err)
	}
	f := &formReader{r: r, errs: nil}
	form := r.PostForm

	painAreas := make([]assessment.PainArea, 0, len(form["pain_areas"]))
	for _, area := range form["pain_areas"] {
		painAreas = append(painAreas, assessment.PainArea(area))
	}
	hasPain := form.Get("has_current_pain") == "on" || len(painAreas) > 0
	severity := 0
	if hasPain {
		severity = f.int("pain_severity")
	}

	s := assessment.Submission{
		BasicInfo: assessment.BasicInfo{
			Age:               f.int("age"),
			Sex:               assessment.Sex(form.Get("sex")),
			HeightCm:          f.float("height_cm"),
			WeightKg:          f.float("weight_kg"),
			TrainingAgeMonths: f.int("training_age_months"),
		},
		Availability: assessment.Availability{
			DaysPerWeek:    f.int("days_per_week"),
			SessionMinutes: f.int("session_minutes"),
			Location:       assessment.Location(form.Get("location")),
		},
		Equipment: slices.Clone(form["equipment"]),
		Goals: assessment.GoalSet{
			Primary:   assessment.Goal(form.Get("goal_primary")),
			Secondary: assessment.Goal(form.Get("goal_secondary")),
			Tertiary:  assessment.Goal(form.Get("goal_tertiary")),
		},
		InjuryScreen: assessment.InjuryScreen{
			HasCurrentPain: hasPain,
			PainAreas:      painAreas,
			Severity:       severity,
		},
		Baseline: assessment.Baseline{
			MaxPushups:           f.measurement("max_pushups"),
			MaxPullups:           f.measurement("max_pullups"),
			MaxDips:              f.measurement("max_dips"),
			PlankHoldSec:         f.int("plank_hold_sec"),
			HollowHoldSec:        f.measurement("hollow_hold_sec"),
			WallHandstandHoldSec: f.measurement("wall_handstand_hold_sec"),
		},
	}
	if len(f.errs) > 0 {
		return assessment.Submission{}, fmt.Errorf("%w: %w", assessment.ErrInvalidSubmission, errors.Join(f.errs...))
	}
	return s, nil
}

// assessmentPOST generates a plan from the form. Accounts are redirected to the stored plan and guests get the plan
// inline because there is nowhere to keep it.
func (app *application) assessmentPOST(w http.ResponseWriter, r *http.Request) {
	submission, err := parseSubmissionForm(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}

	var outcome training.Outcome
	if outcome, err = app.trainingService.GeneratePlan(r.Context(), submission); err != nil {
		app.handleError(w, r, err)
		return
	}

	if outcome.SavedToAccount {
		redirect(w, r, "/plans/"+outcome.PlanID)
		return
	}
	app.render(w, r, http.StatusOK, "plan", planTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Plan:             newPlanView(outcome.Plan),
		Profile:          newProfileView(outcome.Fitness, outcome.AgeAdjustment, outcome.AvoidTags),
		Source:           string(outcome.Source),
		WasRepaired:      outcome.WasRepaired,
		Saved:            false,
	})
}
