package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/calicoach/internal/e2etest"
	"github.com/myrjola/calicoach/internal/logging"
	"github.com/myrjola/calicoach/internal/testhelpers"
)

type planReference struct {
	SavedToAccount bool   `json:"savedToAccount"`
	PlanURL        string `json:"planUrl"`
	Source         string `json:"source"`
}

// testPlanFlow creates an account, generates a plan and reads it back.
func testPlanFlow(ctx context.Context, client *e2etest.Client) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second) //nolint:mnd // a generation round trip
	defer cancel()

	if _, err := client.CreateAccount(ctx); err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}
	var ref planReference
	status, err := client.PostJSON(ctx, "/api/assessments", testhelpers.Submission(), &ref)
	if err != nil {
		return "", fmt.Errorf("post assessment: %w", err)
	}
	if status != http.StatusOK || !ref.SavedToAccount {
		return "", fmt.Errorf("post assessment: status %d, saved %t", status, ref.SavedToAccount)
	}
	var stored struct {
		ID string `json:"id"`
	}
	if status, err = client.GetJSON(ctx, ref.PlanURL, &stored); err != nil || status != http.StatusOK {
		return "", fmt.Errorf("get plan: status %d: %w", status, err)
	}
	if _, err = client.Logout(ctx); err != nil {
		return "", fmt.Errorf("logout: %w", err)
	}
	return ref.Source, nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		client   *e2etest.Client
		err      error
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	source, err := testPlanFlow(ctx, client)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing plan flow", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful", slog.String("source", source),
		slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
