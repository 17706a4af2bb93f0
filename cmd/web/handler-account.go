package main

import (
	"net/http"

	"github.com/myrjola/calicoach/internal/contexthelpers"
	"github.com/myrjola/calicoach/internal/errors"
)

// createAccount turns the current session into a free account. Plans created afterwards are stored and metered.
func (app *application) createAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if contexthelpers.IsAuthenticated(ctx) {
		redirect(w, r, "/")
		return
	}

	userID, err := app.trainingService.CreateAccount(ctx)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	if err = app.sessionManager.RenewToken(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "renew session token"))
		return
	}
	app.sessionManager.Put(ctx, userIDSessionKey, userID)
	redirect(w, r, "/")
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := app.sessionManager.Destroy(ctx); err != nil {
		app.serverError(w, r, errors.Wrap(err, "destroy session"))
		return
	}
	redirect(w, r, "/")
}
