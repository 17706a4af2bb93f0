package contexthelpers_test

import (
	"net/http/httptest"
	"testing"

	"github.com/myrjola/calicoach/internal/contexthelpers"
)

func TestAuthenticateContext(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if contexthelpers.IsAuthenticated(r.Context()) {
		t.Fatal("fresh request should be a guest")
	}
	if got := contexthelpers.AuthenticatedUserID(r.Context()); got != 0 {
		t.Fatalf("guest user ID = %d, want 0", got)
	}

	r = contexthelpers.AuthenticateContext(r, 42)
	if !contexthelpers.IsAuthenticated(r.Context()) {
		t.Error("expected authenticated request")
	}
	if got := contexthelpers.AuthenticatedUserID(r.Context()); got != 42 {
		t.Errorf("user ID = %d, want 42", got)
	}

	ctx := contexthelpers.WithUserID(t.Context(), 7)
	if got := contexthelpers.AuthenticatedUserID(ctx); got != 7 {
		t.Errorf("user ID = %d, want 7", got)
	}
}

func TestRequestState(t *testing.T) {
	r := httptest.NewRequest("GET", "/plans/abc", nil)
	if got := contexthelpers.CSPNonce(r.Context()); got != "" {
		t.Errorf("nonce without middleware = %q", got)
	}

	r = contexthelpers.SetCurrentPath(r, r.URL.Path)
	r = contexthelpers.SetCSPNonce(r, "n0nce")
	if got := contexthelpers.CurrentPath(r.Context()); got != "/plans/abc" {
		t.Errorf("current path = %q", got)
	}
	if got := contexthelpers.CSPNonce(r.Context()); got != "n0nce" {
		t.Errorf("nonce = %q", got)
	}
	if contexthelpers.IsAuthenticated(r.Context()) {
		t.Error("request state must not authenticate")
	}
}
