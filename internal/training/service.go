package training

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/contexthelpers"
	"github.com/myrjola/calicoach/internal/plan"
	"github.com/myrjola/calicoach/internal/sqlite"
)

// PlanSource drafts plans. Drafts are untrusted and always validated before use.
type PlanSource interface {
	Generate(ctx context.Context, profile assessment.Profile) (plan.Plan, error)
}

// TemplateEnhancer is implemented by plan sources that can personalise a template when their own draft fails.
type TemplateEnhancer interface {
	EnhanceTemplate(ctx context.Context, profile assessment.Profile, template plan.Plan) (plan.Plan, error)
}

type Options struct {
	// Source is nil when only templates are available.
	Source PlanSource
	// Coach answers chat messages. Without one the coach is offline.
	Coach Coach
	// GenerationTimeout bounds the generator attempts of one submission.
	GenerationTimeout time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

const defaultGenerationTimeout = 25 * time.Second

// Service handles the business logic from assessment to stored plan.
type Service struct {
	repo              *repository
	logger            *slog.Logger
	source            PlanSource
	coach             Coach
	generationTimeout time.Duration
	now               func() time.Time
}

// NewService creates a new training service.
func NewService(db *sqlite.Database, logger *slog.Logger, opts Options) *Service {
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = defaultGenerationTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:              newRepository(db),
		logger:            logger,
		source:            opts.Source,
		coach:             opts.Coach,
		generationTimeout: opts.GenerationTimeout,
		now:               opts.Now,
	}
}

// CreateAccount creates a free account and returns its ID.
func (s *Service) CreateAccount(ctx context.Context) (int, error) {
	id, err := s.repo.users.Create(ctx, TierFree)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "created account", slog.Int("user_id", id))
	return id, nil
}

// SetTier changes the tier of the current account.
func (s *Service) SetTier(ctx context.Context, tier Tier) error {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return ErrAccountRequired
	}
	if err := s.repo.users.SetTier(ctx, userID, tier); err != nil {
		return fmt.Errorf("set tier: %w", err)
	}
	return nil
}

// GeneratePlan derives a profile from the submission and produces a validated plan for it.
//
// Guests get the plan inline. For accounts the profile becomes the new active version, the plan replaces the
// current one and the submission counts against the daily allowance.
func (s *Service) GeneratePlan(ctx context.Context, submission assessment.Submission) (Outcome, error) {
	profile, err := assessment.Derive(submission)
	if err != nil {
		return Outcome{}, fmt.Errorf("derive profile: %w", err)
	}

	userID := contexthelpers.AuthenticatedUserID(ctx)
	var stored StoredProfile
	if userID != 0 {
		if err = s.checkAllowance(ctx, userID, UsagePlan); err != nil {
			return Outcome{}, err
		}
		if stored, err = s.repo.profiles.Create(ctx, userID, profile); err != nil {
			return Outcome{}, fmt.Errorf("create profile: %w", err)
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "created training profile",
			slog.Int("profile_id", stored.ID), slog.Int("version", stored.Version))
	}

	res, err := s.resolvePlan(ctx, profile)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		PlanID:         "",
		Plan:           res.Plan,
		Fitness:        profile.Fitness,
		AgeAdjustment:  profile.AgeAdjustment,
		AvoidTags:      profile.AvoidTags,
		Source:         res.Plan.Source,
		SavedToAccount: false,
		WasRepaired:    res.WasRepaired,
		Violations:     res.Violations,
	}
	if userID == 0 {
		return outcome, nil
	}

	outcome.PlanID = uuid.NewString()
	if err = s.repo.plans.Save(ctx, userID, StoredPlan{
		ID:          outcome.PlanID,
		ProfileID:   stored.ID,
		Plan:        res.Plan,
		WasRepaired: res.WasRepaired,
		Created:     time.Time{},
		Superseded:  false,
	}, s.now()); err != nil {
		return Outcome{}, fmt.Errorf("save plan: %w", err)
	}
	outcome.SavedToAccount = true
	s.recordUsage(ctx, userID, UsagePlan)
	return outcome, nil
}

// resolvePlan tries the generator, then a generator-enhanced template and finally the plain template.
func (s *Service) resolvePlan(ctx context.Context, profile assessment.Profile) (plan.Result, error) {
	c := plan.ConstraintsFor(profile)
	level := profile.PlanningLevel()

	if s.source != nil {
		genCtx, cancel := context.WithTimeout(ctx, s.generationTimeout)
		defer cancel()

		res, retry, err := s.tryGenerated(genCtx, c, func(ctx context.Context) (plan.Plan, error) {
			return s.source.Generate(ctx, profile)
		})
		if err == nil {
			return res, nil
		}

		enhancer, ok := s.source.(TemplateEnhancer)
		if retry && ok {
			var template plan.Result
			if template, err = plan.GetTemplatePlan(level, c); err == nil {
				res, _, err = s.tryGenerated(genCtx, c, func(ctx context.Context) (plan.Plan, error) {
					return enhancer.EnhanceTemplate(ctx, profile, template.Plan)
				})
				if err == nil {
					return res, nil
				}
			}
		}
	}

	res, err := plan.GetTemplatePlan(level, c)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "template plan failed validation",
			slog.String("level", string(level)),
			slog.Any("violations", res.Violations))
		return plan.Result{}, fmt.Errorf("template fallback: %w", err)
	}
	return res, nil
}

// tryGenerated runs one generator attempt and validates its output. retry reports whether the generator
// produced something unusable, as opposed to failing to answer at all.
func (s *Service) tryGenerated(
	ctx context.Context,
	c plan.Constraints,
	generate func(context.Context) (plan.Plan, error),
) (plan.Result, bool, error) {
	drafted, err := generate(ctx)
	if err != nil {
		malformed := errors.Is(err, plan.ErrMalformed)
		s.logger.LogAttrs(ctx, slog.LevelWarn, "plan generation failed",
			slog.Bool("malformed", malformed),
			slog.Any("error", err))
		return plan.Result{}, malformed, err
	}

	res, err := plan.ValidateAndRepair(drafted, c)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "generated plan is unrecoverable",
			slog.String("source", string(drafted.Source)),
			slog.Int("violations", len(res.Violations)),
			slog.Any("error", err))
		return plan.Result{}, true, err
	}
	if res.WasRepaired {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "repaired generated plan",
			slog.String("source", string(res.Plan.Source)),
			slog.Int("violations", len(res.Violations)))
	}
	return res, false, nil
}

// Plan returns a plan of the current account.
func (s *Service) Plan(ctx context.Context, id string) (StoredPlan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return StoredPlan{}, ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return StoredPlan{}, ErrNotFound
	}
	p, err := s.repo.plans.Get(ctx, userID, id)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("get plan %s: %w", id, err)
	}
	return p, nil
}

// ActivePlan returns the current plan of the account.
func (s *Service) ActivePlan(ctx context.Context) (StoredPlan, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return StoredPlan{}, ErrNotFound
	}
	p, err := s.repo.plans.Current(ctx, userID)
	if err != nil {
		return StoredPlan{}, fmt.Errorf("get current plan: %w", err)
	}
	return p, nil
}

// ActiveProfile returns the active profile version of the account.
func (s *Service) ActiveProfile(ctx context.Context) (StoredProfile, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return StoredProfile{}, ErrNotFound
	}
	p, err := s.repo.profiles.Active(ctx, userID)
	if err != nil {
		return StoredProfile{}, fmt.Errorf("get active profile: %w", err)
	}
	return p, nil
}
