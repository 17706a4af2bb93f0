package main

import (
	"net/http"
)

type healthResponse struct {
	Status string `json:"status"`
	Coach  string `json:"coach"`
}

// healthy reports liveness and whether plans can be generated or only come from templates.
func (app *application) healthy(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Coach: "offline"}
	if app.coachOnline {
		resp.Coach = "online"
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}
