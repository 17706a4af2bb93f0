package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// cspReport is the legacy report-uri payload browsers send on a Content-Security-Policy violation.
type cspReport struct {
	Body struct {
		DocumentURI       string `json:"document-uri"`
		ViolatedDirective string `json:"violated-directive"`
		BlockedURI        string `json:"blocked-uri"`
		SourceFile        string `json:"source-file"`
		LineNumber        int    `json:"line-number"`
		ScriptSample      string `json:"script-sample"`
	} `json:"csp-report"`
}

const maxCSPReportBytes = 16 << 10

func (app *application) cspViolation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCSPReportBytes))
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	var report cspReport
	if err = json.Unmarshal(body, &report); err != nil {
		app.logger.LogAttrs(ctx, slog.LevelWarn, "malformed CSP report", slog.String("reason", err.Error()))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	app.logger.LogAttrs(ctx, slog.LevelWarn, "CSP violation",
		slog.String("document_uri", report.Body.DocumentURI),
		slog.String("violated_directive", report.Body.ViolatedDirective),
		slog.String("blocked_uri", report.Body.BlockedURI),
		slog.String("source_file", report.Body.SourceFile),
		slog.Int("line_number", report.Body.LineNumber),
		slog.String("script_sample", report.Body.ScriptSample))
	w.WriteHeader(http.StatusNoContent)
}
