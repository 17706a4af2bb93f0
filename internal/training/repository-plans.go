package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type planRepository struct {
	baseRepository
}

const planColumns = `id, profile_id, body, was_repaired, superseded_at IS NOT NULL, created`

func scanPlan(row *sql.Row) (StoredPlan, error) {
	var (
		stored        StoredPlan
		body, created string
	)
	if err := row.Scan(&stored.ID, &stored.ProfileID, &body, &stored.WasRepaired, &stored.Superseded,
		&created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StoredPlan{}, ErrNotFound
		}
		return StoredPlan{}, fmt.Errorf("scan plan: %w", err)
	}
	if err := unmarshalColumn(body, &stored.Plan); err != nil {
		return StoredPlan{}, err
	}
	var err error
	if stored.Created, err = parseTimestamp(created); err != nil {
		return StoredPlan{}, err
	}
	return stored, nil
}

// Save stores p as the current plan of the user. Earlier plans are marked superseded in the same transaction.
func (r *planRepository) Save(ctx context.Context, userID int, p StoredPlan, now time.Time) error {
	body, err := marshalColumn(p.Plan)
	if err != nil {
		return err
	}
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err = tx.ExecContext(ctx,
			`UPDATE plans SET superseded_at = ? WHERE user_id = ? AND superseded_at IS NULL`,
			formatTimestamp(now), userID); err != nil {
			return fmt.Errorf("supersede plans: %w", err)
		}
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO plans (id, user_id, profile_id, source, body, was_repaired, created)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, userID, p.ProfileID, p.Plan.Source, body, p.WasRepaired, formatTimestamp(now)); err != nil {
			return fmt.Errorf("insert plan: %w", err)
		}
		return nil
	})
}

// Get returns the plan with id if it belongs to the user.
func (r *planRepository) Get(ctx context.Context, userID int, id string) (StoredPlan, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE id = ? AND user_id = ?`, id, userID)
	return scanPlan(row)
}

func (r *planRepository) Current(ctx context.Context, userID int) (StoredPlan, error) {
	row := r.db.ReadOnly.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM plans WHERE user_id = ? AND superseded_at IS NULL`, userID)
	return scanPlan(row)
}
