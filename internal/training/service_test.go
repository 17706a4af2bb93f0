package training_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/contexthelpers"
	"github.com/myrjola/calicoach/internal/plan"
	"github.com/myrjola/calicoach/internal/sqlite"
	"github.com/myrjola/calicoach/internal/testhelpers"
	"github.com/myrjola/calicoach/internal/training"
)

func newService(t *testing.T, opts training.Options) (*training.Service, *sqlite.Database) {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("close database: %v", err)
		}
	})
	return training.NewService(db, logger, opts), db
}

func accountContext(t *testing.T, svc *training.Service) context.Context {
	t.Helper()
	id, err := svc.CreateAccount(t.Context())
	if err != nil {
		t.Fatalf("CreateAccount: %v", err)
	}
	return contexthelpers.WithUserID(t.Context(), id)
}

func ex(index int, slug string, sets, reps int) plan.Exercise {
	return plan.Exercise{
		Index: index, Slug: slug, Sets: sets, Reps: reps, RestSec: 60,
		Intensity: plan.Intensity{Kind: plan.IntensityRPE, Value: 7},
	}
}

// draft is a small plan that is valid for testhelpers.Submission.
func draft(source plan.Source, extra ...plan.Exercise) plan.Plan {
	strength := append([]plan.Exercise{ex(1, "pullup", 3, 5), ex(2, "hollow_hold", 3, 0)}, extra...)
	return plan.Plan{
		Days: []plan.Day{
			{Index: 1, Type: plan.DayPull, Name: "Pull", Blocks: []plan.Block{
				{Index: 1, Type: plan.BlockWarmup, Exercises: []plan.Exercise{ex(1, "arm_circles", 1, 0)}},
				{Index: 2, Type: plan.BlockStrength, Exercises: strength},
			}},
			{Index: 2, Type: plan.DayRest, Name: "Rest", Blocks: nil},
		},
		Source: source,
	}
}

type fakeSource struct {
	mu            sync.Mutex
	generate      func(ctx context.Context) (plan.Plan, error)
	enhance       func(ctx context.Context, template plan.Plan) (plan.Plan, error)
	enhanceCalls  int
	seenTemplates []plan.Plan
}

func (f *fakeSource) Generate(ctx context.Context, _ assessment.Profile) (plan.Plan, error) {
	return f.generate(ctx)
}

type enhancingSource struct {
	*fakeSource
}

func (f enhancingSource) EnhanceTemplate(ctx context.Context, _ assessment.Profile, template plan.Plan) (plan.Plan, error) {
	f.mu.Lock()
	f.enhanceCalls++
	f.seenTemplates = append(f.seenTemplates, template)
	f.mu.Unlock()
	return f.enhance(ctx, template)
}

func assertSafe(t *testing.T, p plan.Plan, avoid []string) {
	t.Helper()
	p.Exercises(func(_ plan.Day, _ plan.Block, e plan.Exercise) {
		for _, tag := range e.Tags {
			if slices.Contains(avoid, tag) {
				t.Errorf("%s carries forbidden tag %s", e.Slug, tag)
			}
		}
	})
}

func TestService_GeneratePlan_guest(t *testing.T) {
	svc, db := newService(t, training.Options{})

	outcome, err := svc.GeneratePlan(t.Context(), testhelpers.Submission())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if outcome.SavedToAccount || outcome.PlanID != "" {
		t.Errorf("guest plan was saved: %+v", outcome)
	}
	if outcome.Source != plan.SourceTemplate {
		t.Errorf("source = %s, want %s", outcome.Source, plan.SourceTemplate)
	}
	if outcome.Fitness.Level != assessment.LevelIntermediate {
		t.Errorf("level = %s, want intermediate", outcome.Fitness.Level)
	}
	assertSafe(t, outcome.Plan, outcome.AvoidTags)
	if got := outcome.Plan.Metadata.AvoidedMovements; !slices.Equal(got, outcome.AvoidTags) {
		t.Errorf("avoided movements = %v, want %v", got, outcome.AvoidTags)
	}

	var profiles int
	if err = db.ReadOnly.QueryRowContext(t.Context(), `SELECT COUNT(*) FROM training_profiles`).Scan(&profiles); err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if profiles != 0 {
		t.Errorf("guest submission stored %d profiles", profiles)
	}
}

func TestService_GeneratePlan_invalidSubmissions(t *testing.T) {
	svc, db := newService(t, training.Options{})
	ctx := accountContext(t, svc)

	tests := []struct {
		name    string
		mutate  func(*assessment.Submission)
		wantErr error
	}{
		{
			name:    "too young",
			mutate:  func(s *assessment.Submission) { s.BasicInfo.Age = 12 },
			wantErr: assessment.ErrIneligibleAge,
		},
		{
			name:    "out of range",
			mutate:  func(s *assessment.Submission) { s.Availability.DaysPerWeek = 9 },
			wantErr: assessment.ErrInvalidSubmission,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testhelpers.Submission()
			tt.mutate(&s)
			if _, err := svc.GeneratePlan(ctx, s); !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	var profiles int
	if err := db.ReadOnly.QueryRowContext(t.Context(), `SELECT COUNT(*) FROM training_profiles`).Scan(&profiles); err != nil {
		t.Fatalf("count profiles: %v", err)
	}
	if profiles != 0 {
		t.Errorf("rejected submissions stored %d profiles", profiles)
	}
}

func TestService_GeneratePlan_versionsProfiles(t *testing.T) {
	svc, db := newService(t, training.Options{})
	ctx := accountContext(t, svc)
	if err := svc.SetTier(ctx, training.TierPro); err != nil {
		t.Fatalf("SetTier: %v", err)
	}

	first, err := svc.GeneratePlan(ctx, testhelpers.Submission())
	if err != nil {
		t.Fatalf("first GeneratePlan: %v", err)
	}
	if !first.SavedToAccount || first.PlanID == "" {
		t.Fatalf("account plan was not saved: %+v", first)
	}

	s := testhelpers.Submission()
	s.InjuryScreen.PainAreas = []assessment.PainArea{assessment.PainKnee}
	second, err := svc.GeneratePlan(ctx, s)
	if err != nil {
		t.Fatalf("second GeneratePlan: %v", err)
	}

	rows, err := db.ReadOnly.QueryContext(t.Context(),
		`SELECT version, active FROM training_profiles ORDER BY version`)
	if err != nil {
		t.Fatalf("query profiles: %v", err)
	}
	defer rows.Close()
	var got []string
	for rows.Next() {
		var version, active int
		if err = rows.Scan(&version, &active); err != nil {
			t.Fatalf("scan: %v", err)
		}
		got = append(got, fmt.Sprintf("v%d active=%d", version, active))
	}
	if want := []string{"v1 active=0", "v2 active=1"}; !slices.Equal(got, want) {
		t.Errorf("profiles = %v, want %v", got, want)
	}

	active, err := svc.ActiveProfile(ctx)
	if err != nil {
		t.Fatalf("ActiveProfile: %v", err)
	}
	if active.Version != 2 || !slices.Equal(active.Profile.AvoidTags, second.AvoidTags) {
		t.Errorf("active profile = v%d %v, want v2 %v", active.Version, active.Profile.AvoidTags, second.AvoidTags)
	}
	if active.Profile.Submission.Baseline.MaxDips != assessment.NoEquipment() {
		t.Errorf("baseline did not round trip: %+v", active.Profile.Submission.Baseline)
	}

	current, err := svc.ActivePlan(ctx)
	if err != nil {
		t.Fatalf("ActivePlan: %v", err)
	}
	if current.ID != second.PlanID || current.ProfileID != active.ID {
		t.Errorf("current plan = %s of profile %d, want %s of profile %d",
			current.ID, current.ProfileID, second.PlanID, active.ID)
	}
	old, err := svc.Plan(ctx, first.PlanID)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !old.Superseded {
		t.Error("first plan should be superseded")
	}
	assertSafe(t, current.Plan, second.AvoidTags)
}

func TestService_Plan_notFound(t *testing.T) {
	svc, _ := newService(t, training.Options{})
	owner := accountContext(t, svc)
	other := accountContext(t, svc)

	outcome, err := svc.GeneratePlan(owner, testhelpers.Submission())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}

	tests := []struct {
		name string
		ctx  context.Context
		id   string
	}{
		{name: "other account", ctx: other, id: outcome.PlanID},
		{name: "guest", ctx: t.Context(), id: outcome.PlanID},
		{name: "malformed id", ctx: owner, id: "not-a-uuid"},
		{name: "unknown id", ctx: owner, id: "6f1c3a8e-7a52-4b8e-9d47-0a4c4f0f9b11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Plan(tt.ctx, tt.id); !errors.Is(err, training.ErrNotFound) {
				t.Errorf("error = %v, want %v", err, training.ErrNotFound)
			}
		})
	}

	if _, err = svc.ActivePlan(other); !errors.Is(err, training.ErrNotFound) {
		t.Errorf("ActivePlan error = %v, want %v", err, training.ErrNotFound)
	}
	if _, err = svc.ActiveProfile(other); !errors.Is(err, training.ErrNotFound) {
		t.Errorf("ActiveProfile error = %v, want %v", err, training.ErrNotFound)
	}
}

func TestService_GeneratePlan_sources(t *testing.T) {
	malformed := fmt.Errorf("generation failed: %w", plan.ErrMalformed)
	enhanced := func(_ context.Context, template plan.Plan) (plan.Plan, error) {
		template.Source = plan.SourceAIEnhancedTemplate
		return template, nil
	}
	failedEnhance := func(context.Context, plan.Plan) (plan.Plan, error) {
		return plan.Plan{}, malformed
	}

	tests := []struct {
		name             string
		generate         func(ctx context.Context) (plan.Plan, error)
		enhance          func(ctx context.Context, template plan.Plan) (plan.Plan, error)
		wantSource       plan.Source
		wantRepaired     bool
		wantEnhanceCalls int
	}{
		{
			name:       "valid draft",
			generate:   func(context.Context) (plan.Plan, error) { return draft(plan.SourceAI), nil },
			enhance:    enhanced,
			wantSource: plan.SourceAI,
		},
		{
			name: "draft with a forbidden exercise is repaired",
			generate: func(context.Context) (plan.Plan, error) {
				return draft(plan.SourceAI, ex(3, "dip", 3, 8)), nil
			},
			enhance:      enhanced,
			wantSource:   plan.SourceAI,
			wantRepaired: true,
		},
		{
			name:             "malformed draft falls back to an enhanced template",
			generate:         func(context.Context) (plan.Plan, error) { return plan.Plan{}, malformed },
			enhance:          enhanced,
			wantSource:       plan.SourceAIEnhancedTemplate,
			wantEnhanceCalls: 1,
		},
		{
			name: "unrecoverable draft falls back to an enhanced template",
			generate: func(context.Context) (plan.Plan, error) {
				p := draft(plan.SourceAI)
				p.Days[0].Blocks[1].Exercises[0].Sets = 0
				return p, nil
			},
			enhance:          enhanced,
			wantSource:       plan.SourceAIEnhancedTemplate,
			wantEnhanceCalls: 1,
		},
		{
			name:             "failed enhancement falls back to the template",
			generate:         func(context.Context) (plan.Plan, error) { return plan.Plan{}, malformed },
			enhance:          failedEnhance,
			wantSource:       plan.SourceTemplate,
			wantEnhanceCalls: 1,
		},
		{
			name: "transport failure skips enhancement",
			generate: func(context.Context) (plan.Plan, error) {
				return plan.Plan{}, errors.New("connection refused")
			},
			enhance:    enhanced,
			wantSource: plan.SourceTemplate,
		},
		{
			name: "timeout skips enhancement",
			generate: func(ctx context.Context) (plan.Plan, error) {
				<-ctx.Done()
				return plan.Plan{}, ctx.Err()
			},
			enhance:    enhanced,
			wantSource: plan.SourceTemplate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &fakeSource{generate: tt.generate, enhance: tt.enhance}
			svc, _ := newService(t, training.Options{
				Source:            enhancingSource{source},
				GenerationTimeout: 50 * time.Millisecond,
			})

			outcome, err := svc.GeneratePlan(t.Context(), testhelpers.Submission())
			if err != nil {
				t.Fatalf("GeneratePlan: %v", err)
			}
			if outcome.Source != tt.wantSource || outcome.Plan.Source != tt.wantSource {
				t.Errorf("source = %s (plan %s), want %s", outcome.Source, outcome.Plan.Source, tt.wantSource)
			}
			if outcome.WasRepaired != tt.wantRepaired && tt.wantSource == plan.SourceAI {
				t.Errorf("was repaired = %t, want %t (%v)", outcome.WasRepaired, tt.wantRepaired, outcome.Violations)
			}
			if source.enhanceCalls != tt.wantEnhanceCalls {
				t.Errorf("enhance calls = %d, want %d", source.enhanceCalls, tt.wantEnhanceCalls)
			}
			for _, template := range source.seenTemplates {
				assertSafe(t, template, outcome.AvoidTags)
			}
			assertSafe(t, outcome.Plan, outcome.AvoidTags)
		})
	}
}

func TestService_GeneratePlan_sourceWithoutEnhancer(t *testing.T) {
	source := &fakeSource{
		generate: func(context.Context) (plan.Plan, error) {
			return plan.Plan{}, fmt.Errorf("bad output: %w", plan.ErrMalformed)
		},
	}
	svc, _ := newService(t, training.Options{Source: source})

	outcome, err := svc.GeneratePlan(t.Context(), testhelpers.Submission())
	if err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	if outcome.Source != plan.SourceTemplate {
		t.Errorf("source = %s, want %s", outcome.Source, plan.SourceTemplate)
	}
}

func TestService_GeneratePlan_usageLimit(t *testing.T) {
	now := time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)
	svc, _ := newService(t, training.Options{Now: func() time.Time { return now }})
	ctx := accountContext(t, svc)

	free := training.AllowanceFor(training.TierFree).Plans
	for i := range free {
		if _, err := svc.GeneratePlan(ctx, testhelpers.Submission()); err != nil {
			t.Fatalf("plan %d: %v", i+1, err)
		}
	}
	if _, err := svc.GeneratePlan(ctx, testhelpers.Submission()); !errors.Is(err, training.ErrUsageLimitReached) {
		t.Fatalf("error = %v, want %v", err, training.ErrUsageLimitReached)
	}

	// Guests are not metered.
	if _, err := svc.GeneratePlan(t.Context(), testhelpers.Submission()); err != nil {
		t.Errorf("guest GeneratePlan: %v", err)
	}

	usage, err := svc.Usage(ctx)
	if err != nil {
		t.Fatalf("Usage: %v", err)
	}
	if usage.Tier != training.TierFree || usage.Plans != free {
		t.Errorf("usage = %+v", usage)
	}

	if err = svc.SetTier(ctx, training.TierPro); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	if _, err = svc.GeneratePlan(ctx, testhelpers.Submission()); err != nil {
		t.Errorf("pro GeneratePlan: %v", err)
	}

	// The allowance resets at midnight UTC.
	if err = svc.SetTier(ctx, training.TierFree); err != nil {
		t.Fatalf("SetTier: %v", err)
	}
	now = now.Add(2 * time.Hour)
	if _, err = svc.GeneratePlan(ctx, testhelpers.Submission()); err != nil {
		t.Errorf("GeneratePlan on the next day: %v", err)
	}
}

func TestService_PruneUsage(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, db := newService(t, training.Options{Now: func() time.Time { return now }})
	ctx := accountContext(t, svc)

	if _, err := svc.GeneratePlan(ctx, testhelpers.Submission()); err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}
	now = now.AddDate(0, 0, 31)
	if _, err := svc.GeneratePlan(ctx, testhelpers.Submission()); err != nil {
		t.Fatalf("GeneratePlan: %v", err)
	}

	deleted, err := svc.PruneUsage(t.Context())
	if err != nil {
		t.Fatalf("PruneUsage: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d events, want 1", deleted)
	}
	var left int
	if err = db.ReadOnly.QueryRowContext(t.Context(), `SELECT COUNT(*) FROM usage_events`).Scan(&left); err != nil {
		t.Fatalf("count usage events: %v", err)
	}
	if left != 1 {
		t.Errorf("%d usage events left, want 1", left)
	}
}

func TestService_StartMaintenance(t *testing.T) {
	svc, _ := newService(t, training.Options{})
	if err := svc.StartMaintenance(t.Context()); err != nil {
		t.Errorf("StartMaintenance: %v", err)
	}
}
