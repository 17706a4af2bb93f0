package training

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/myrjola/calicoach/internal/sqlite"
)

const timestampFormat = "2006-01-02T15:04:05.000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// marshalColumn encodes v for a JSON column.
func marshalColumn(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal %T: %w", v, err)
	}
	return string(data), nil
}

func unmarshalColumn(data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal %T: %w", v, err)
	}
	return nil
}

type baseRepository struct {
	db *sqlite.Database
}

type repository struct {
	users    *userRepository
	profiles *profileRepository
	plans    *planRepository
	usage    *usageRepository
	chat     *chatRepository
}

func newRepository(db *sqlite.Database) *repository {
	base := baseRepository{db: db}
	return &repository{
		users:    &userRepository{baseRepository: base},
		profiles: &profileRepository{baseRepository: base},
		plans:    &planRepository{baseRepository: base},
		usage:    &usageRepository{baseRepository: base},
		chat:     &chatRepository{baseRepository: base},
	}
}
