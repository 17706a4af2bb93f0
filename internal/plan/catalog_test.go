package plan_test

import (
	"testing"

	"github.com/myrjola/calicoach/internal/assessment"
	"github.com/myrjola/calicoach/internal/plan"
)

func TestCatalog_regressionChainsEndSafe(t *testing.T) {
	for _, slug := range plan.Slugs() {
		d, _ := plan.Lookup(slug)
		for _, ref := range []string{d.Regression, d.Progression} {
			if ref == "" {
				continue
			}
			if _, ok := plan.Lookup(ref); !ok {
				t.Errorf("%s references unknown exercise %s", slug, ref)
			}
		}

		last := d
		if chain := plan.RegressionChain(slug); len(chain) > 0 {
			last = chain[len(chain)-1]
		}
		if last.Regression != "" {
			t.Errorf("%s: regression chain loops at %s", slug, last.Slug)
		}
		if len(last.Tags) != 0 || len(last.Equipment) != 0 {
			t.Errorf("%s: chain ends in %s with tags %q and equipment %q", slug, last.Slug, last.Tags, last.Equipment)
		}
	}
}

func TestCatalog_everyAvoidTagIsUsed(t *testing.T) {
	used := map[string]bool{}
	for _, slug := range plan.Slugs() {
		d, _ := plan.Lookup(slug)
		for _, tag := range d.Tags {
			used[tag] = true
		}
	}
	for _, tag := range assessment.ComputeAvoidTags(assessment.PainAreas()) {
		if !used[tag] {
			t.Errorf("avoid tag %s does not match any catalog exercise", tag)
		}
	}
}

func TestCatalog_equipmentIsDeclarable(t *testing.T) {
	options := map[string]bool{}
	for _, item := range assessment.EquipmentOptions() {
		options[item] = true
	}
	for _, slug := range plan.Slugs() {
		d, _ := plan.Lookup(slug)
		for _, item := range d.Equipment {
			if !options[item] {
				t.Errorf("%s needs %s which users cannot declare", slug, item)
			}
		}
	}
}
