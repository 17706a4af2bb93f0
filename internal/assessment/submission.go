package assessment

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/myrjola/calicoach/internal/errors"
)

type Sex string

const (
	SexFemale      Sex = "female"
	SexMale        Sex = "male"
	SexOther       Sex = "other"
	SexUnspecified Sex = "unspecified"
)

type Location string

const (
	LocationHome    Location = "home"
	LocationGym     Location = "gym"
	LocationOutdoor Location = "outdoor"
)

type Goal string

const (
	GoalStrength   Goal = "strength"
	GoalSkill      Goal = "skill"
	GoalMuscle     Goal = "muscle"
	GoalEndurance  Goal = "endurance"
	GoalMobility   Goal = "mobility"
	GoalWeightLoss Goal = "weight_loss"
)

// Goals lists every goal in display order.
func Goals() []Goal {
	return []Goal{GoalStrength, GoalSkill, GoalMuscle, GoalEndurance, GoalMobility, GoalWeightLoss}
}

// Equipment the user can declare. Floor, wall and bodyweight are always assumed.
const (
	EquipmentPullupBar      = "pullup_bar"
	EquipmentDipBars        = "dip_bars"
	EquipmentRings          = "rings"
	EquipmentParallettes    = "parallettes"
	EquipmentLowBar         = "low_bar"
	EquipmentResistanceBand = "resistance_band"
)

// EquipmentOptions lists the declarable equipment in display order.
func EquipmentOptions() []string {
	return []string{
		EquipmentPullupBar, EquipmentDipBars, EquipmentRings,
		EquipmentParallettes, EquipmentLowBar, EquipmentResistanceBand,
	}
}

type BasicInfo struct {
	Age               int     `json:"age"`
	Sex               Sex     `json:"sex"`
	HeightCm          float64 `json:"heightCm"`
	WeightKg          float64 `json:"weightKg"`
	TrainingAgeMonths int     `json:"trainingAgeMonths"`
}

type Availability struct {
	DaysPerWeek    int      `json:"daysPerWeek"`
	SessionMinutes int      `json:"sessionMinutes"`
	Location       Location `json:"location"`
}

type GoalSet struct {
	Primary   Goal `json:"primary"`
	Secondary Goal `json:"secondary,omitempty"`
	Tertiary  Goal `json:"tertiary,omitempty"`
}

type InjuryScreen struct {
	HasCurrentPain bool       `json:"hasCurrentPain"`
	PainAreas      []PainArea `json:"painAreas"`
	Severity       int        `json:"severity"`
}

// Submission is one onboarding assessment as entered by the user. It intentionally has no avoid-tag field.
type Submission struct {
	BasicInfo    BasicInfo    `json:"basicInfo"`
	Availability Availability `json:"availability"`
	Equipment    []string     `json:"equipment"`
	Goals        GoalSet      `json:"goals"`
	InjuryScreen InjuryScreen `json:"injuryScreen"`
	Baseline     Baseline     `json:"baseline"`
}

const (
	maxAge            = 120
	minHeightCm       = 100
	maxHeightCm       = 250
	minWeightKg       = 25
	maxWeightKg       = 350
	maxTrainingMonths = 600
	minSessionMinutes = 15
	maxSessionMinutes = 180
	maxPainSeverity   = 10
	maxPlankSec       = 600
	maxRepCount       = 500
	maxHoldSec        = 600
)

// Validate checks ranges and enumerations. Eligibility is not checked here; see ResolveAgeAdjustment.
func (s Submission) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	b := s.BasicInfo
	check(b.Age > 0 && b.Age <= maxAge, "age %d out of range", b.Age)
	check(slices.Contains([]Sex{SexFemale, SexMale, SexOther, SexUnspecified}, b.Sex), "unknown sex %q", b.Sex)
	check(b.HeightCm >= minHeightCm && b.HeightCm <= maxHeightCm, "height %.0fcm out of range", b.HeightCm)
	check(b.WeightKg >= minWeightKg && b.WeightKg <= maxWeightKg, "weight %.0fkg out of range", b.WeightKg)
	check(b.TrainingAgeMonths >= 0 && b.TrainingAgeMonths <= maxTrainingMonths,
		"training age %d months out of range", b.TrainingAgeMonths)

	a := s.Availability
	check(a.DaysPerWeek >= 1 && a.DaysPerWeek <= 7, "days per week %d out of range", a.DaysPerWeek)
	check(a.SessionMinutes >= minSessionMinutes && a.SessionMinutes <= maxSessionMinutes,
		"session length %d minutes out of range", a.SessionMinutes)
	check(slices.Contains([]Location{LocationHome, LocationGym, LocationOutdoor}, a.Location),
		"unknown location %q", a.Location)

	for _, item := range s.Equipment {
		check(slices.Contains(EquipmentOptions(), item), "unknown equipment %q", item)
	}

	check(slices.Contains(Goals(), s.Goals.Primary), "unknown primary goal %q", s.Goals.Primary)
	check(s.Goals.Secondary == "" || slices.Contains(Goals(), s.Goals.Secondary),
		"unknown secondary goal %q", s.Goals.Secondary)
	check(s.Goals.Tertiary == "" || slices.Contains(Goals(), s.Goals.Tertiary),
		"unknown tertiary goal %q", s.Goals.Tertiary)

	check(s.InjuryScreen.Severity >= 0 && s.InjuryScreen.Severity <= maxPainSeverity,
		"pain severity %d out of range", s.InjuryScreen.Severity)

	bl := s.Baseline
	checkMeasurement := func(name string, m Measurement, limit int, allowed ...MeasurementKind) {
		check(slices.Contains(allowed, m.Kind), "%s: %q is not allowed", name, m.Kind)
		check(m.Value >= 0 && m.Value <= limit, "%s: %d out of range", name, m.Value)
	}
	checkMeasurement("maxPushups", bl.MaxPushups, maxRepCount, KindMeasured, KindUnable)
	checkMeasurement("maxPullups", bl.MaxPullups, maxRepCount, KindMeasured, KindUnable, KindNoEquipment)
	checkMeasurement("maxDips", bl.MaxDips, maxRepCount, KindMeasured, KindUnable, KindNoEquipment)
	checkMeasurement("hollowHoldSec", bl.HollowHoldSec, maxHoldSec, KindMeasured, KindNeverAttempted)
	checkMeasurement("wallHandstandHoldSec", bl.WallHandstandHoldSec, maxHoldSec,
		KindMeasured, KindUnable, KindNeverAttempted)
	check(bl.PlankHoldSec >= 0 && bl.PlankHoldSec <= maxPlankSec, "plankHoldSec: %d out of range", bl.PlankHoldSec)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSubmission, errors.Join(errs...))
	}
	return nil
}

// Profile is a submission combined with everything derived from it on the server.
type Profile struct {
	Submission    Submission         `json:"submission"`
	Fitness       FitnessComputation `json:"fitness"`
	AvoidTags     []string           `json:"avoidTags"`
	AgeAdjustment AgeAdjustment      `json:"ageAdjustment"`
}

// Derive validates the submission and runs the classifier, the avoid-tag computer and the age resolver.
func Derive(s Submission) (Profile, error) {
	if err := s.Validate(); err != nil {
		return Profile{}, err
	}
	adjustment, err := ResolveAgeAdjustment(s.BasicInfo.Age)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		Submission:    s,
		Fitness:       Classify(s.Baseline),
		AvoidTags:     ComputeAvoidTags(s.InjuryScreen.PainAreas),
		AgeAdjustment: adjustment,
	}, nil
}

// PlanningLevel is the level that sizes and selects plans for this profile.
func (p Profile) PlanningLevel() FitnessLevel {
	return p.AgeAdjustment.PlanningLevel(p.Fitness.Level)
}

// ExcludedTags is the full set of tags a plan for this profile must not contain: the injury avoid tags plus
// the tags implied by age restrictions. The result is sorted.
func (p Profile) ExcludedTags() []string {
	tags := slices.Clone(p.AvoidTags)
	if p.AgeAdjustment.Has(RestrictionNoAdvancedSkills) {
		tags = append(tags, AdvancedSkillTags()...)
	}
	if p.AgeAdjustment.Has(RestrictionLowImpact) {
		tags = append(tags, LowImpactTags()...)
	}
	slices.Sort(tags)
	return slices.Compact(tags)
}

const maxSubmissionBytes = 64 << 10

// DecodeSubmission reads a JSON submission. Avoid tags sent by the client are discarded; the boolean reports
// whether the client tried so that the caller can log it.
func DecodeSubmission(r io.Reader) (Submission, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxSubmissionBytes))
	if err != nil {
		return Submission{}, false, fmt.Errorf("read submission: %w", err)
	}

	var s Submission
	if err = json.Unmarshal(data, &s); err != nil {
		return Submission{}, false, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}

	type avoidTagFields struct {
		AvoidTags      json.RawMessage `json:"avoidTags"`
		AvoidTagsSnake json.RawMessage `json:"avoid_tags"`
	}
	var probe struct {
		avoidTagFields
		InjuryScreen avoidTagFields `json:"injuryScreen"`
	}
	if err = json.Unmarshal(data, &probe); err != nil {
		return Submission{}, false, fmt.Errorf("%w: %w", ErrInvalidSubmission, err)
	}
	supplied := false
	for _, raw := range []json.RawMessage{
		probe.AvoidTags, probe.AvoidTagsSnake, probe.InjuryScreen.AvoidTags, probe.InjuryScreen.AvoidTagsSnake,
	} {
		if len(raw) > 0 {
			supplied = true
		}
	}
	return s, supplied, nil
}
