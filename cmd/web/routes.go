package main

import (
	"fmt"
	"net/http"
)

func (app *application) routes() (*http.ServeMux, error) {
	mux := http.NewServeMux()

	var (
		noAuth = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(
				commonContext(app.timeout(next))))))
		}
		withSession = func(timeout func(http.Handler) http.Handler, next http.Handler) http.Handler {
			return app.recoverPanic(noCache(app.sessionManager.LoadAndSave(app.authenticate(
				app.logAndTraceRequest(secureHeaders(app.crossOriginProtection(commonContext(timeout(next)))))))))
		}
		session = func(next http.Handler) http.Handler {
			return withSession(app.timeout, next)
		}
		// generation routes wait for the model and therefore get the longer deadline.
		generation = func(next http.Handler) http.Handler {
			return withSession(app.generationTimeoutHandler, next)
		}
		mustSession = func(next http.Handler) http.Handler {
			return session(app.mustAuthenticate(next))
		}
	)

	mux.Handle("GET /assessment", session(http.HandlerFunc(app.assessmentGET)))
	mux.Handle("POST /assessment", generation(http.HandlerFunc(app.assessmentPOST)))
	mux.Handle("GET /plan", mustSession(http.HandlerFunc(app.activePlanGET)))
	mux.Handle("GET /plans/{id}", session(http.HandlerFunc(app.planGET)))

	mux.Handle("GET /coach", mustSession(http.HandlerFunc(app.coachGET)))
	mux.Handle("POST /coach/messages", generation(app.mustAuthenticate(http.HandlerFunc(app.coachMessagePOST))))

	mux.Handle("POST /api/assessments", generation(http.HandlerFunc(app.assessmentsAPIPOST)))
	mux.Handle("GET /api/plans/{id}", session(http.HandlerFunc(app.planAPIGET)))
	mux.Handle("GET /api/usage", mustSession(http.HandlerFunc(app.usageAPIGET)))
	mux.Handle("POST /api/account", session(http.HandlerFunc(app.createAccount)))
	mux.Handle("POST /api/logout", session(http.HandlerFunc(app.logout)))
	mux.Handle("POST /api/csp-violation", noAuth(http.HandlerFunc(app.cspViolation)))
	mux.Handle("GET /api/healthy", session(http.HandlerFunc(app.healthy)))

	mux.Handle("GET /{$}", session(http.HandlerFunc(app.home)))

	fileServerHandler, err := app.fileServerHandler(session(http.HandlerFunc(app.notFound)))
	if err != nil {
		return nil, fmt.Errorf("fileServerHandler: %w", err)
	}
	mux.Handle("/", noAuth(cacheForever(fileServerHandler)))

	return mux, nil
}
