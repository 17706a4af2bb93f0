package training_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/coach"
	"github.com/myrjola/calicoach/internal/testhelpers"
	"github.com/myrjola/calicoach/internal/training"
)

type fakeCoach struct {
	profiles  []*assessment.Profile
	histories [][]coach.Message
}

func (f *fakeCoach) Reply(_ context.Context, profile *assessment.Profile, history []coach.Message, question string) (string, error) {
	f.profiles = append(f.profiles, profile)
	f.histories = append(f.histories, history)
	return "You asked: " + question, nil
}

func TestService_SendCoachMessage(t *testing.T) {
	fake := &fakeCoach{}
	svc, _ := newService(t, training.Options{Coach: fake})
	ctx := accountContext(t, svc)

	reply, err := svc.SendCoachMessage(ctx, "  How often should I train?  ")
	if err != nil {
		t.Fatalf("SendCoachMessage: %v", err)
	}
	if reply.Role != coach.RoleAssistant || reply.Content != "You asked: How often should I train?" {
		t.Errorf("reply = %+v", reply)
	}
	if fake.profiles[0] != nil {
		t.Error("coach got a profile before any assessment")
	}

	if _, err = svc.GeneratePlan(ctx, testhelpers.Submission()); err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if _, err = svc.SendCoachMessage(ctx, "Can I do dips?"); err != nil {
		t.Fatalf("SendCoachMessage: %v", err)
	}
	profile := fake.profiles[1]
	if profile == nil || !strings.Contains(strings.Join(profile.ExcludedTags(), ","), "deep_dips") {
		t.Errorf("coach was not told about the shoulder: %+v", profile)
	}
	if got := len(fake.histories[1]); got != 2 {
		t.Errorf("history has %d messages, want 2", got)
	}

	transcript, err := svc.CoachTranscript(ctx)
	if err != nil {
		t.Fatalf("CoachTranscript: %v", err)
	}
	var roles []string
	for _, m := range transcript {
		roles = append(roles, string(m.Role))
	}
	if got, want := strings.Join(roles, ","), "user,assistant,user,assistant"; got != want {
		t.Errorf("transcript roles = %s, want %s", got, want)
	}
	if transcript[0].Content != "How often should I train?" {
		t.Errorf("first message = %q", transcript[0].Content)
	}
}

func TestService_SendCoachMessage_errors(t *testing.T) {
	svc, _ := newService(t, training.Options{Coach: &fakeCoach{}})
	ctx := accountContext(t, svc)

	tests := []struct {
		name    string
		ctx     context.Context
		content string
		wantErr error
	}{
		{name: "guest", ctx: t.Context(), content: "Hi", wantErr: training.ErrAccountRequired},
		{name: "blank", ctx: ctx, content: "   ", wantErr: training.ErrInvalidMessage},
		{name: "too long", ctx: ctx, content: strings.Repeat("a", 2001), wantErr: training.ErrInvalidMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SendCoachMessage(tt.ctx, tt.content); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	offline, _ := newService(t, training.Options{Coach: coach.NewChat(nil)})
	if _, err := offline.SendCoachMessage(accountContext(t, offline), "Hi"); !errors.Is(err, coach.ErrCoachOffline) {
		t.Errorf("offline error = %v, want %v", err, coach.ErrCoachOffline)
	}
}

func TestService_SendCoachMessage_usageLimit(t *testing.T) {
	svc, _ := newService(t, training.Options{Coach: &fakeCoach{}})
	ctx := accountContext(t, svc)

	for i := range training.AllowanceFor(training.TierFree).ChatMessages {
		if _, err := svc.SendCoachMessage(ctx, "Question"); err != nil {
			t.Fatalf("message %d: %v", i+1, err)
		}
	}
	if _, err := svc.SendCoachMessage(ctx, "One more"); !errors.Is(err, training.ErrUsageLimitReached) {
		t.Errorf("error = %v, want %v", err, training.ErrUsageLimitReached)
	}
}
