// Package plan models weekly calisthenics plans and validates, repairs and falls back to template plans.
package plan

import (
	"slices"
)

// DayType is the focus of a training day.
type DayType string

const (
	DayPush           DayType = "push"
	DayPull           DayType = "pull"
	DayLegs           DayType = "legs"
	DayFull           DayType = "full"
	DaySkill          DayType = "skill"
	DayRest           DayType = "rest"
	DayActiveRecovery DayType = "active_recovery"
)

// DayTypes lists every day type.
func DayTypes() []DayType {
	return []DayType{DayPush, DayPull, DayLegs, DayFull, DaySkill, DayRest, DayActiveRecovery}
}

// BlockType is the role of a block within a day.
type BlockType string

const (
	BlockWarmup       BlockType = "warmup"
	BlockSkill        BlockType = "skill"
	BlockStrength     BlockType = "strength"
	BlockConditioning BlockType = "conditioning"
	BlockCooldown     BlockType = "cooldown"
)

// BlockTypes lists every block type.
func BlockTypes() []BlockType {
	return []BlockType{BlockWarmup, BlockSkill, BlockStrength, BlockConditioning, BlockCooldown}
}

// Source records where a plan came from.
type Source string

const (
	SourceAI                 Source = "ai"
	SourceTemplate           Source = "template"
	SourceAIEnhancedTemplate Source = "ai_enhanced_template"
)

// IntensityKind is the scale an intensity target is expressed in.
type IntensityKind string

const (
	IntensityRPE        IntensityKind = "rpe"
	IntensityRIR        IntensityKind = "rir"
	IntensityPercentage IntensityKind = "percentage"
)

type Intensity struct {
	Kind  IntensityKind `json:"kind"`
	Value float64       `json:"value"`
}

// Exercise is one prescribed movement. Either Reps or HoldSec is set, depending on whether the movement is
// counted or held.
type Exercise struct {
	Index       int       `json:"index"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Sets        int       `json:"sets"`
	Reps        int       `json:"reps,omitempty"`
	HoldSec     int       `json:"holdSec,omitempty"`
	RestSec     int       `json:"restSec"`
	Intensity   Intensity `json:"intensity"`
	Tags        []string  `json:"tags"`
	Equipment   []string  `json:"equipment"`
	Progression string    `json:"progression,omitempty"`
	Regression  string    `json:"regression,omitempty"`
	Notes       string    `json:"notes,omitempty"`
}

type Block struct {
	Index     int        `json:"index"`
	Type      BlockType  `json:"type"`
	Exercises []Exercise `json:"exercises"`
}

type Day struct {
	Index  int     `json:"index"`
	Type   DayType `json:"type"`
	Name   string  `json:"name"`
	Blocks []Block `json:"blocks"`
}

// Metadata summarises a plan. It is always recomputed from the days and never trusted from the generator.
type Metadata struct {
	TotalWeeklySets  int      `json:"totalWeeklySets"`
	PushSets         int      `json:"pushSets"`
	PullSets         int      `json:"pullSets"`
	PushPullRatio    float64  `json:"pushPullRatio"`
	SkillFocus       []string `json:"skillFocus"`
	AvoidedMovements []string `json:"avoidedMovements"`
}

// Plan is a weekly training plan.
type Plan struct {
	Days     []Day    `json:"days"`
	Metadata Metadata `json:"metadata"`
	Source   Source   `json:"source"`
}

// Clone returns a deep copy so that repairs never alias the caller's plan.
func (p Plan) Clone() Plan {
	out := p
	out.Metadata.SkillFocus = slices.Clone(p.Metadata.SkillFocus)
	out.Metadata.AvoidedMovements = slices.Clone(p.Metadata.AvoidedMovements)
	out.Days = make([]Day, len(p.Days))
	for i, d := range p.Days {
		d.Blocks = slices.Clone(d.Blocks)
		for j, b := range d.Blocks {
			b.Exercises = slices.Clone(b.Exercises)
			for k, e := range b.Exercises {
				e.Tags = slices.Clone(e.Tags)
				e.Equipment = slices.Clone(e.Equipment)
				b.Exercises[k] = e
			}
			d.Blocks[j] = b
		}
		out.Days[i] = d
	}
	return out
}

// TotalSets counts the working sets of the whole week.
func (p Plan) TotalSets() int {
	total := 0
	for _, d := range p.Days {
		for _, b := range d.Blocks {
			for _, e := range b.Exercises {
				total += e.Sets
			}
		}
	}
	return total
}

// Exercises calls fn for every exercise in plan order.
func (p Plan) Exercises(fn func(d Day, b Block, e Exercise)) {
	for _, d := range p.Days {
		for _, b := range d.Blocks {
			for _, e := range b.Exercises {
				fn(d, b, e)
			}
		}
	}
}
