package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// startDatabaseOptimizer runs PRAGMA optimize on start and then every interval until ctx is done.
// See https://www.sqlite.org/pragma.html#pragma_optimize.
func (db *Database) startDatabaseOptimizer(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	query := "PRAGMA optimize = 0x10002;"
	for {
		start := time.Now()
		if _, err := db.ReadWrite.ExecContext(ctx, query); err != nil {
			if ctx.Err() != nil {
				return
			}
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to optimize database",
				slog.Any("error", fmt.Errorf("optimize database: %w", err)))
		} else {
			db.logger.LogAttrs(ctx, slog.LevelDebug, "optimized database",
				slog.Duration("duration", time.Since(start)))
		}
		query = "PRAGMA optimize;"

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
