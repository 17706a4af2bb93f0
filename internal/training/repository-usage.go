package training

import (
	"context"
	"fmt"
	"time"
)

type usageRepository struct {
	baseRepository
}

func (r *usageRepository) Record(ctx context.Context, userID int, kind UsageKind, at time.Time) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx,
		`INSERT INTO usage_events (user_id, kind, created) VALUES (?, ?, ?)`,
		userID, kind, formatTimestamp(at)); err != nil {
		return fmt.Errorf("insert usage event: %w", err)
	}
	return nil
}

// Count returns the events of kind recorded at or after since.
func (r *usageRepository) Count(ctx context.Context, userID int, kind UsageKind, since time.Time) (int, error) {
	var n int
	if err := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM usage_events WHERE user_id = ? AND kind = ? AND created >= ?`,
		userID, kind, formatTimestamp(since)).Scan(&n); err != nil {
		return 0, fmt.Errorf("count usage events: %w", err)
	}
	return n, nil
}

// Prune deletes events recorded before the cutoff.
func (r *usageRepository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ReadWrite.ExecContext(ctx,
		`DELETE FROM usage_events WHERE created < ?`, formatTimestamp(before))
	if err != nil {
		return 0, fmt.Errorf("delete usage events: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
