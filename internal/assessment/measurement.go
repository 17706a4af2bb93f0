package assessment

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// MeasurementKind says how a baseline value was obtained.
type MeasurementKind string

const (
	// KindMeasured is a real count or duration.
	KindMeasured MeasurementKind = "measured"
	// KindUnable means the user tried and cannot perform the movement. It counts as zero.
	KindUnable MeasurementKind = "unable"
	// KindNeverAttempted counts as zero like KindUnable.
	KindNeverAttempted MeasurementKind = "never_attempted"
	// KindNoEquipment means the movement could not be tested. It is excluded from classification.
	KindNoEquipment MeasurementKind = "no_equipment"
)

// Measurement is a baseline value that is either a number or one of the sentinels above.
type Measurement struct {
	Kind  MeasurementKind `json:"kind"`
	Value int             `json:"value,omitempty"`
}

func Measured(value int) Measurement {
	return Measurement{Kind: KindMeasured, Value: value}
}

func Unable() Measurement {
	return Measurement{Kind: KindUnable, Value: 0}
}

func NeverAttempted() Measurement {
	return Measurement{Kind: KindNeverAttempted, Value: 0}
}

func NoEquipment() Measurement {
	return Measurement{Kind: KindNoEquipment, Value: 0}
}

// Resolve returns the numeric value used by the classifier and whether the measurement can be assessed at all.
func (m Measurement) Resolve() (int, bool) {
	switch m.Kind {
	case KindMeasured:
		return m.Value, true
	case KindUnable, KindNeverAttempted:
		return 0, true
	case KindNoEquipment:
		return 0, false
	}
	return 0, false
}

// AtLeast reports whether the measurement is assessable and reaches threshold.
func (m Measurement) AtLeast(threshold int) bool {
	v, ok := m.Resolve()
	return ok && v >= threshold
}

func (m Measurement) String() string {
	if m.Kind == KindMeasured {
		return fmt.Sprintf("%d", m.Value)
	}
	return string(m.Kind)
}

// legacySentinels maps the primitive string forms older clients send.
//
//nolint:gochecknoglobals // lookup table.
var legacySentinels = map[string]MeasurementKind{
	"cannot_do":       KindUnable,
	"unable":          KindUnable,
	"no_bar":          KindNoEquipment,
	"no_equipment":    KindNoEquipment,
	"never":           KindNeverAttempted,
	"never_attempted": KindNeverAttempted,
}

// UnmarshalJSON accepts the tagged object form as well as a bare number or a legacy sentinel string.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: measurement is required", ErrInvalidSubmission)
	}

	switch data[0] {
	case '{':
		type plain Measurement
		var p plain
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("unmarshal measurement: %w", err)
		}
		if p.Kind != KindMeasured {
			p.Value = 0
		}
		*m = Measurement(p)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("unmarshal measurement sentinel: %w", err)
		}
		kind, ok := legacySentinels[s]
		if !ok {
			return fmt.Errorf("%w: unknown measurement sentinel %q", ErrInvalidSubmission, s)
		}
		*m = Measurement{Kind: kind, Value: 0}
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("%w: measurement must be an integer: %s", ErrInvalidSubmission, data)
		}
		*m = Measured(n)
	}
	return nil
}
