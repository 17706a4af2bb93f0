package main

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/e2etest"
	"github.com/myrjola/calicoach/internal/plan"
	"github.com/myrjola/calicoach/internal/testhelpers"
)

const coachReply = "**Keep** your elbows tucked and slow down the lowering phase."

// fakeOpenAI answers structured requests with the template plan for testhelpers.Submission and everything else
// with coachReply.
type fakeOpenAI struct {
	calls atomic.Int32
	plan  []byte
}

func newFakeOpenAI(t *testing.T) *httptest.Server {
	t.Helper()
	profile, err := assessment.Derive(testhelpers.Submission())
	if err != nil {
		t.Fatalf("Derive: %v", err)
	}
	res, err := plan.GetTemplatePlan(profile.PlanningLevel(), plan.ConstraintsFor(profile))
	if err != nil {
		t.Fatalf("GetTemplatePlan: %v", err)
	}
	data, err := json.Marshal(res.Plan)
	if err != nil {
		t.Fatalf("marshal plan: %v", err)
	}
	server := httptest.NewServer(&fakeOpenAI{plan: data}) //nolint:exhaustruct // counter starts at zero.
	t.Cleanup(server.Close)
	return server
}

func (f *fakeOpenAI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
		http.NotFound(w, r)
		return
	}
	f.calls.Add(1)
	body, _ := io.ReadAll(r.Body)
	var req struct {
		Model          string          `json:"model"`
		ResponseFormat json.RawMessage `json:"response_format"`
	}
	_ = json.Unmarshal(body, &req)

	content := coachReply
	if len(req.ResponseFormat) > 0 {
		content = string(f.plan)
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   req.Model,
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"logprobs":      nil,
			"message":       map[string]any{"role": "assistant", "content": content, "refusal": nil},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	})
}

func Test_application_coach(t *testing.T) {
	ctx := t.Context()
	fake := newFakeOpenAI(t)
	client := startServer(t, lookupEnvWithCoach(fake.URL+"/")).Client()

	t.Run("Guest is sent home", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/coach")
		if err != nil {
			t.Fatalf("Failed to get coach: %v", err)
		}
		if doc.Url.Path != "/" {
			t.Errorf("Expected redirect to home, got %s", doc.Url.Path)
		}
	})

	if _, err := client.CreateAccount(ctx); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	t.Run("Conversation", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/coach")
		if err != nil {
			t.Fatalf("Failed to get coach: %v", err)
		}
		if doc.Find("a[href='/coach']").Length() == 0 {
			t.Error("Expected a coach link while the coach is online")
		}

		doc, err = client.SubmitForm(ctx, doc, "/coach/messages", map[string]string{
			"Your question": "How do I make pushups easier on my shoulder?",
		})
		if err != nil {
			t.Fatalf("Failed to send message: %v", err)
		}
		if got := doc.Find(".message.user").Text(); !strings.Contains(got, "easier on my shoulder") {
			t.Errorf("Expected the question in the transcript, got %q", got)
		}
		if got := doc.Find(".message.coach strong").Text(); got != "Keep" {
			t.Errorf("Expected the coach reply rendered as Markdown, got %q", got)
		}
		if got := doc.Find(".usage").Text(); !strings.Contains(got, "1 of") {
			t.Errorf("Expected one message counted, got %q", got)
		}
		if nonce, _ := doc.Find("script").Attr("nonce"); nonce == "" {
			t.Error("Expected the inline script to carry the CSP nonce")
		}
	})

	t.Run("Empty message", func(t *testing.T) {
		doc, err := client.GetDoc(ctx, "/coach")
		if err != nil {
			t.Fatalf("Failed to get coach: %v", err)
		}
		_, err = client.SubmitForm(ctx, doc, "/coach/messages", map[string]string{"Your question": "   "})
		var statusErr *e2etest.StatusError
		if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("Expected 422, got %v", err)
		}
	})

	t.Run("Plan from the coach", func(t *testing.T) {
		var resp apiPlanResponse
		status, err := client.PostJSON(ctx, "/api/assessments", testhelpers.Submission(), &resp)
		if err != nil || status != http.StatusOK {
			t.Fatalf("status %d, err %v", status, err)
		}
		if resp.Source != plan.SourceAI {
			t.Errorf("source = %s, want %s", resp.Source, plan.SourceAI)
		}
		if !resp.SavedToAccount {
			t.Error("Expected the plan to be stored for the account")
		}
	})
}

func Test_application_coach_offline(t *testing.T) {
	ctx := t.Context()
	client := startServer(t, testLookupEnv).Client()
	if _, err := client.CreateAccount(ctx); err != nil {
		t.Fatalf("Failed to create account: %v", err)
	}

	doc, err := client.GetDoc(ctx, "/coach")
	if err != nil {
		t.Fatalf("Failed to get coach: %v", err)
	}
	_, err = client.SubmitForm(ctx, doc, "/coach/messages", map[string]string{"Your question": "Anyone there?"})
	var statusErr *e2etest.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("Expected 503, got %v", err)
	}
	if !strings.Contains(statusErr.Body, "The coach is offline right now.") {
		t.Errorf("Expected the offline message, got %s", statusErr.Body)
	}
}
