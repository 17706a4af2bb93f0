package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

type userRepository struct {
	baseRepository
}

func (r *userRepository) Create(ctx context.Context, tier Tier) (int, error) {
	var id int
	err := r.db.ReadWrite.QueryRowContext(ctx, `INSERT INTO users (tier) VALUES (?) RETURNING id`, tier).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return id, nil
}

func (r *userRepository) Tier(ctx context.Context, userID int) (Tier, error) {
	var tier Tier
	err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT tier FROM users WHERE id = ?`, userID).Scan(&tier)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query user tier: %w", err)
	}
	return tier, nil
}

func (r *userRepository) SetTier(ctx context.Context, userID int, tier Tier) error {
	res, err := r.db.ReadWrite.ExecContext(ctx, `UPDATE users SET tier = ? WHERE id = ?`, tier, userID)
	if err != nil {
		return fmt.Errorf("update user tier: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
