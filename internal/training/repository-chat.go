package training

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"
)

type chatRepository struct {
	baseRepository
}

// Append stores the messages in order within one transaction.
func (r *chatRepository) Append(ctx context.Context, userID int, now time.Time, messages ...ChatMessage) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, m := range messages {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO chat_messages (user_id, role, content, created) VALUES (?, ?, ?, ?)`,
				userID, m.Role, m.Content, formatTimestamp(now)); err != nil {
				return fmt.Errorf("insert chat message: %w", err)
			}
		}
		return nil
	})
}

// Recent returns the latest limit messages of the user, oldest first.
func (r *chatRepository) Recent(ctx context.Context, userID int, limit int) ([]ChatMessage, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, role, content, created
		FROM chat_messages
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query chat messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var (
			m       ChatMessage
			created string
		)
		if err = rows.Scan(&m.ID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		if m.Created, err = parseTimestamp(created); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat messages: %w", err)
	}
	slices.Reverse(messages)
	return messages, nil
}
