package assessment

import (
	"github.com/myrjola/calicoach/internal/errors"
)

var (
	// ErrIneligibleAge is returned for users below MinimumAge. It is never coerced into a restriction.
	ErrIneligibleAge = errors.NewSentinel("ineligible age")
	// ErrInvalidSubmission wraps every malformed or out-of-range assessment field.
	ErrInvalidSubmission = errors.NewSentinel("invalid assessment submission")
)
