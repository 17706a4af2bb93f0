package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/e2etest"
	"github.com/myrjola/calicoach/internal/logging"
	"github.com/myrjola/calicoach/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	scenarioTimeout         = 90 * time.Second
	maxConcurrentOperations = 20
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
	defaultUsers            = 10
)

// scenario is one simulated visitor. Guests only generate a plan; accounts use their whole daily allowance.
type scenario struct {
	index   int
	account bool
}

// varySubmission spreads visitors across fitness levels and pain areas so that both template and repair paths
// are exercised.
func varySubmission(i int) assessment.Submission {
	s := testhelpers.Submission()
	s.Baseline.MaxPushups = assessment.Measured(i * 3 % 45) //nolint:mnd // spread over the level thresholds
	s.BasicInfo.Age = 14 + i%60                              //nolint:mnd // teens to seniors
	areas := assessment.PainAreas()
	s.InjuryScreen.PainAreas = []assessment.PainArea{areas[i%len(areas)]}
	return s
}

type planResponse struct {
	SavedToAccount bool   `json:"savedToAccount"`
	PlanURL        string `json:"planUrl"`
	Error          string `json:"error"`
}

func postAssessment(ctx context.Context, client *e2etest.Client, s assessment.Submission) (planResponse, int, error) {
	var resp planResponse
	status, err := client.PostJSON(ctx, "/api/assessments", s, &resp)
	if err != nil {
		return resp, status, fmt.Errorf("post assessment: %w", err)
	}
	return resp, status, nil
}

func runScenario(ctx context.Context, url string, sc scenario) error {
	client, err := e2etest.NewClient(url)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	submission := varySubmission(sc.index)

	if !sc.account {
		resp, status, postErr := postAssessment(ctx, client, submission)
		if postErr != nil {
			return postErr
		}
		if status != http.StatusOK || resp.SavedToAccount {
			return fmt.Errorf("guest plan: status %d: %s", status, resp.Error)
		}
		return nil
	}

	if _, err = client.CreateAccount(ctx); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	var usage struct {
		PlanLimit int `json:"planLimit"`
	}
	if status, usageErr := client.GetJSON(ctx, "/api/usage", &usage); usageErr != nil || status != http.StatusOK {
		return fmt.Errorf("get usage: status %d: %w", status, usageErr)
	}
	for range usage.PlanLimit {
		resp, status, postErr := postAssessment(ctx, client, submission)
		if postErr != nil {
			return postErr
		}
		if status != http.StatusOK || !resp.SavedToAccount {
			return fmt.Errorf("account plan: status %d: %s", status, resp.Error)
		}
		var stored struct {
			ID string `json:"id"`
		}
		if status, err = client.GetJSON(ctx, resp.PlanURL, &stored); err != nil || status != http.StatusOK {
			return fmt.Errorf("get plan: status %d: %w", status, err)
		}
	}
	// The allowance is spent so the next plan must be refused.
	if _, status, postErr := postAssessment(ctx, client, submission); postErr != nil ||
		status != http.StatusTooManyRequests {
		return fmt.Errorf("expected usage limit, got status %d: %w", status, postErr)
	}
	return nil
}

// RunLoadTest runs one account and one guest scenario per user concurrently.
func RunLoadTest(ctx context.Context, url string, numUsers int, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", numUsers))

	var successCount, failureCount atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	scenarios := make([]scenario, 0, 2*numUsers) //nolint:mnd // guest and account per user
	for i := range numUsers {
		scenarios = append(scenarios, scenario{index: i, account: true}, scenario{index: i, account: false})
	}
	for _, sc := range scenarios {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()
			start := time.Now()
			if err := runScenario(scenarioCtx, url, sc); err != nil {
				failureCount.Add(1)
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("index", sc.index), slog.Bool("account", sc.account), slog.Any("error", err))
				return nil
			}
			successCount.Add(1)
			logger.LogAttrs(scenarioCtx, slog.LevelDebug, "Scenario passed",
				slog.Int("index", sc.index), slog.Bool("account", sc.account),
				slog.Duration("duration", time.Since(start)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(len(scenarios)) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))
	if successRate < successRateThreshold {
		return errors.New("success rate below threshold")
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) < 2 || len(os.Args) > 3 { //nolint:mnd // hostname and optional user count
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname> [users]")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		numUsers = defaultUsers
		start    = time.Now()
		err      error
	)
	if len(os.Args) == 3 { //nolint:mnd // user count given
		if numUsers, err = strconv.Atoi(os.Args[2]); err != nil || numUsers < 1 {
			logger.LogAttrs(ctx, slog.LevelError, "users must be a positive number")
			os.Exit(1)
		}
	}
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))

	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}
	client, err := e2etest.NewClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	if err = RunLoadTest(ctx, url, numUsers, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully",
		slog.Duration("total_duration", time.Since(start)), slog.Int("users_tested", numUsers))
}
