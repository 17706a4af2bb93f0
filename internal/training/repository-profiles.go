package training

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/myrjola/calicoach/internal/assessment"
)

type profileRepository struct {
	baseRepository
}

// Create stores profile as the next version for the user and makes it the only active one. Deactivating the
// previous versions and inserting the new one happen in a single transaction.
func (r *profileRepository) Create(ctx context.Context, userID int, profile assessment.Profile) (StoredProfile, error) {
	submission, err := marshalColumn(profile.Submission)
	if err != nil {
		return StoredProfile{}, err
	}
	fitness, err := marshalColumn(profile.Fitness)
	if err != nil {
		return StoredProfile{}, err
	}
	avoidTags, err := marshalColumn(profile.AvoidTags)
	if err != nil {
		return StoredProfile{}, err
	}
	ageAdjustment, err := marshalColumn(profile.AgeAdjustment)
	if err != nil {
		return StoredProfile{}, err
	}

	stored := StoredProfile{ID: 0, Version: 0, Active: true, Profile: profile}
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM training_profiles WHERE user_id = ?`,
			userID).Scan(&stored.Version); err != nil {
			return fmt.Errorf("query next profile version: %w", err)
		}
		if _, err = tx.ExecContext(ctx,
			`UPDATE training_profiles SET active = 0 WHERE user_id = ? AND active = 1`, userID); err != nil {
			return fmt.Errorf("deactivate profiles: %w", err)
		}
		var created string
		if err = tx.QueryRowContext(ctx, `
			INSERT INTO training_profiles
				(user_id, version, active, submission, fitness_level, fitness, avoid_tags, age_adjustment)
			VALUES (?, ?, 1, ?, ?, ?, ?, ?)
			RETURNING id, created`,
			userID, stored.Version, submission, profile.Fitness.Level, fitness, avoidTags, ageAdjustment,
		).Scan(&stored.ID, &created); err != nil {
			return fmt.Errorf("insert profile: %w", err)
		}
		stored.Created, err = parseTimestamp(created)
		return err
	})
	if err != nil {
		return StoredProfile{}, err
	}
	return stored, nil
}

func (r *profileRepository) Active(ctx context.Context, userID int) (StoredProfile, error) {
	var (
		stored                                         StoredProfile
		submission, fitness, avoidTags, ageAdjustment string
		created                                        string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, version, active, submission, fitness, avoid_tags, age_adjustment, created
		FROM training_profiles
		WHERE user_id = ? AND active = 1`, userID).Scan(
		&stored.ID, &stored.Version, &stored.Active, &submission, &fitness, &avoidTags, &ageAdjustment, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return StoredProfile{}, ErrNotFound
	}
	if err != nil {
		return StoredProfile{}, fmt.Errorf("query active profile: %w", err)
	}

	if err = errors.Join(
		unmarshalColumn(submission, &stored.Profile.Submission),
		unmarshalColumn(fitness, &stored.Profile.Fitness),
		unmarshalColumn(avoidTags, &stored.Profile.AvoidTags),
		unmarshalColumn(ageAdjustment, &stored.Profile.AgeAdjustment),
	); err != nil {
		return StoredProfile{}, err
	}
	if stored.Created, err = parseTimestamp(created); err != nil {
		return StoredProfile{}, err
	}
	return stored, nil
}
