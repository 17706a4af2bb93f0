package main

import (
	"net/http"

	"github.com/myrjola/calicoach/internal/coach"
	"github.com/myrjola/calicoach/internal/training"
)

type messageView struct {
	FromCoach bool
	Content   string
}

type coachTemplateData struct {
	BaseTemplateData
	Messages []messageView
	Usage    training.Usage
}

func (app *application) coachGET(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	transcript, err := app.trainingService.CoachTranscript(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	usage, err := app.trainingService.Usage(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}

	messages := make([]messageView, len(transcript))
	for i, m := range transcript {
		messages[i] = messageView{FromCoach: m.Role == coach.RoleAssistant, Content: m.Content}
	}
	app.render(w, r, http.StatusOK, "coach", coachTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Messages:         messages,
		Usage:            usage,
	})
}

func (app *application) coachMessagePOST(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		app.clientError(w, r, http.StatusBadRequest, "Could not read the message.")
		return
	}
	if _, err := app.trainingService.SendCoachMessage(r.Context(), r.PostForm.Get("message")); err != nil {
		app.handleError(w, r, err)
		return
	}
	redirect(w, r, "/coach")
}
