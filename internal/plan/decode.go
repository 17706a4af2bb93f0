package plan

import (
	"encoding/json"
	"fmt"

	"github.com/myrjola/calicoach/internal/errors"
)

// ErrMalformed means generated output could not be read as a plan at all.
var ErrMalformed = errors.NewSentinel("malformed plan")

// Decode reads a plan produced by a generator. Metadata is dropped since it is recomputed after validation.
func Decode(data []byte, source Source) (Plan, error) {
	var p Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return Plan{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(p.Days) == 0 {
		return Plan{}, fmt.Errorf("%w: no days", ErrMalformed)
	}
	p.Metadata = Metadata{
		TotalWeeklySets:  0,
		PushSets:         0,
		PullSets:         0,
		PushPullRatio:    0,
		SkillFocus:       nil,
		AvoidedMovements: nil,
	}
	p.Source = source
	return p, nil
}
