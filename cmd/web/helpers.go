package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/coach"
	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/training"
)

type errorTemplateData struct {
	BaseTemplateData
	Status  int
	Title   string
	Message string
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	data := errorTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Status:           http.StatusInternalServerError,
		Title:            "Something went wrong",
		Message:          "Please try again in a moment.",
	}
	// The error page must not recurse into serverError when it cannot be rendered.
	buf, renderErr := app.renderToBuf(r.Context(), "error", data)
	if renderErr != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "render error page", errors.SlogError(renderErr))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = buf.WriteTo(w)
}

// clientError renders the error page with a message the user can act on.
func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.render(w, r, status, "error", errorTemplateData{
		BaseTemplateData: app.newBaseTemplateData(r),
		Status:           status,
		Title:            http.StatusText(status),
		Message:          message,
	})
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	app.render(w, r, http.StatusNotFound, "not-found", app.newBaseTemplateData(r))
}

// redirect detects if the request is originating from a fetch API call or a top-level navigation and points the user
// to the correct URL.
func redirect(w http.ResponseWriter, r *http.Request, path string) {
	if r.Header.Get("Sec-Fetch-Dest") == "empty" {
		w.Header().Set("Content-Location", path)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, path, http.StatusSeeOther)
}

// statusForError maps domain errors to the HTTP status and the message shown to the user. Anything unexpected is a
// server error and its details stay in the logs.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, assessment.ErrIneligibleAge):
		return http.StatusUnprocessableEntity,
			"You must be at least 13 years old to receive a training plan."
	case errors.Is(err, assessment.ErrInvalidSubmission):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, training.ErrInvalidMessage):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, training.ErrUsageLimitReached):
		return http.StatusTooManyRequests,
			"You have reached today's limit. Your allowance resets at midnight UTC."
	case errors.Is(err, training.ErrAccountRequired):
		return http.StatusUnauthorized, "Create an account to use this feature."
	case errors.Is(err, training.ErrNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, coach.ErrCoachOffline):
		return http.StatusServiceUnavailable, "The coach is offline right now."
	case errors.Is(err, coach.ErrGeneration):
		return http.StatusServiceUnavailable, "The coach did not answer. Please ask again."
	}
	return http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
}

// handleError renders err as an HTML page, logging it if it is unexpected.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)
	switch status {
	case http.StatusInternalServerError:
		app.serverError(w, r, err)
	case http.StatusNotFound:
		app.notFound(w, r)
	default:
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected request",
			slog.Int("status", status), slog.String("reason", err.Error()))
		app.clientError(w, r, status, message)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "marshal response", errors.SlogError(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// handleErrorJSON is handleError for the JSON API.
func (app *application) handleErrorJSON(w http.ResponseWriter, r *http.Request, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	} else {
		app.logger.LogAttrs(r.Context(), slog.LevelInfo, "rejected request",
			slog.Int("status", status), slog.String("reason", err.Error()))
	}
	app.writeJSON(w, r, status, errorResponse{Error: message})
}
