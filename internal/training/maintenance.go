package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/calicoach/internal/errors"
	"github.com/robfig/cron"
)

// usageRetention is how long usage events are kept. Allowances only look at the current day.
const usageRetention = 30 * 24 * time.Hour

// PruneUsage deletes usage events older than the retention period.
func (s *Service) PruneUsage(ctx context.Context) (int64, error) {
	n, err := s.repo.usage.Prune(ctx, s.now().Add(-usageRetention))
	if err != nil {
		return 0, fmt.Errorf("prune usage: %w", err)
	}
	return n, nil
}

// StartMaintenance schedules the daily housekeeping jobs until ctx is done.
func (s *Service) StartMaintenance(ctx context.Context) error {
	c := cron.NewWithLocation(time.UTC)
	if err := c.AddFunc("@daily", func() {
		n, err := s.PruneUsage(ctx)
		if err != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "usage pruning failed", errors.SlogError(err))
			return
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "pruned usage events", slog.Int64("deleted", n))
	}); err != nil {
		return fmt.Errorf("schedule usage pruning: %w", err)
	}
	c.Start()
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	return nil
}
