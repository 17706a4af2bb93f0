package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/calicoach/internal/contexthelpers"
	"github.com/myrjola/calicoach/internal/errors"
)

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// checkAllowance fails with ErrUsageLimitReached when the user has used up today's allowance for kind.
func (s *Service) checkAllowance(ctx context.Context, userID int, kind UsageKind) error {
	tier, err := s.repo.users.Tier(ctx, userID)
	if err != nil {
		return fmt.Errorf("get tier: %w", err)
	}
	used, err := s.repo.usage.Count(ctx, userID, kind, startOfDay(s.now()))
	if err != nil {
		return fmt.Errorf("count usage: %w", err)
	}
	if limit := AllowanceFor(tier).limit(kind); used >= limit {
		return fmt.Errorf("%w: %d of %d %s actions used today", ErrUsageLimitReached, used, limit, kind)
	}
	return nil
}

// recordUsage counts a completed action. A failure is logged since the user already got what they asked for.
func (s *Service) recordUsage(ctx context.Context, userID int, kind UsageKind) {
	if err := s.repo.usage.Record(ctx, userID, kind, s.now()); err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to record usage",
			slog.String("kind", string(kind)), errors.SlogError(err))
	}
}

// Usage returns what the current account has used today.
func (s *Service) Usage(ctx context.Context) (Usage, error) {
	userID := contexthelpers.AuthenticatedUserID(ctx)
	if userID == 0 {
		return Usage{}, ErrAccountRequired
	}
	tier, err := s.repo.users.Tier(ctx, userID)
	if err != nil {
		return Usage{}, fmt.Errorf("get tier: %w", err)
	}
	since := startOfDay(s.now())
	plans, err := s.repo.usage.Count(ctx, userID, UsagePlan, since)
	if err != nil {
		return Usage{}, fmt.Errorf("count plans: %w", err)
	}
	chats, err := s.repo.usage.Count(ctx, userID, UsageChat, since)
	if err != nil {
		return Usage{}, fmt.Errorf("count chat messages: %w", err)
	}
	return Usage{Tier: tier, Allowance: AllowanceFor(tier), Plans: plans, ChatMessages: chats}, nil
}
