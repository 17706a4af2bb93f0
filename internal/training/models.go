// Package training turns assessments into stored profiles and safe weekly plans and keeps the coaching
// transcript of each account.
package training

import (
	"time"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/coach"
	"github.com/myrjola/calicoach/internal/errors"
	"github.com/myrjola/calicoach/internal/plan"
)

var (
	ErrNotFound          = errors.NewSentinel("not found")
	ErrUsageLimitReached = errors.NewSentinel("usage limit reached")
	ErrAccountRequired   = errors.NewSentinel("account required")
	ErrInvalidMessage    = errors.NewSentinel("invalid message")
)

// Tier is the subscription level of an account.
type Tier string

const (
	TierFree  Tier = "free"
	TierPro   Tier = "pro"
	TierElite Tier = "elite"
)

// UsageKind is a metered action.
type UsageKind string

const (
	UsagePlan UsageKind = "plan"
	UsageChat UsageKind = "chat"
)

// Allowance is the number of metered actions an account may take per UTC day.
type Allowance struct {
	Plans        int
	ChatMessages int
}

func (a Allowance) limit(kind UsageKind) int {
	if kind == UsageChat {
		return a.ChatMessages
	}
	return a.Plans
}

// AllowanceFor returns the daily allowance of tier. Unknown tiers get the free allowance.
func AllowanceFor(tier Tier) Allowance {
	switch tier {
	case TierElite:
		return Allowance{Plans: 50, ChatMessages: 500}
	case TierPro:
		return Allowance{Plans: 10, ChatMessages: 100}
	case TierFree:
		return Allowance{Plans: 2, ChatMessages: 10}
	}
	return Allowance{Plans: 2, ChatMessages: 10}
}

// Usage is what an account has used today.
type Usage struct {
	Tier         Tier
	Allowance    Allowance
	Plans        int
	ChatMessages int
}

// StoredProfile is one version of an account's training profile.
type StoredProfile struct {
	ID      int
	Version int
	Active  bool
	Profile assessment.Profile
	Created time.Time
}

// StoredPlan is a validated plan saved to an account.
type StoredPlan struct {
	ID          string
	ProfileID   int
	Plan        plan.Plan
	WasRepaired bool
	Created     time.Time
	// Superseded is set once a newer plan replaced this one.
	Superseded bool
}

type ChatMessage struct {
	ID      int
	Role    coach.Role
	Content string
	Created time.Time
}

// Outcome is the result of one assessment submission.
type Outcome struct {
	// PlanID is empty for guests since their plan is not stored.
	PlanID         string
	Plan           plan.Plan
	Fitness        assessment.FitnessComputation
	AgeAdjustment  assessment.AgeAdjustment
	AvoidTags      []string
	Source         plan.Source
	SavedToAccount bool
	WasRepaired    bool
	Violations     []plan.Violation
}
