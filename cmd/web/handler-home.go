package main

import (
	"net/http"

	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/training"
)

type homeTemplateData struct {
	BaseTemplateData
	// HasPlan is set when the account has a current plan to link to.
	HasPlan bool
	Level   string
	Version int
	Usage   *training.Usage
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := homeTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		HasPlan:          false,
		Level:            "",
		Version:          0,
		Usage:            nil,
	}

	if data.Authenticated {
		profile, err := app.trainingService.ActiveProfile(ctx)
		switch {
		case err == nil:
			data.Level = string(profile.Profile.Fitness.Level)
			data.Version = profile.Version
		case !errors.Is(err, training.ErrNotFound):
			app.serverError(w, r, err)
			return
		}

		_, err = app.trainingService.ActivePlan(ctx)
		switch {
		case err == nil:
			data.HasPlan = true
		case !errors.Is(err, training.ErrNotFound):
			app.serverError(w, r, err)
			return
		}

		usage, err := app.trainingService.Usage(ctx)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		data.Usage = &usage
	}

	app.render(w, r, http.StatusOK, "home", data)
}
