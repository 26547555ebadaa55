package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

const adultAge = 18

// HouseholdValidator is level 4: the demographic counters of a household
// must be internally coherent, and the declared head must plausibly be an
// adult. Unresolvable head refs are level 2 findings and not repeated here.
type HouseholdValidator struct{}

func (HouseholdValidator) Level() int   { return 4 }
func (HouseholdValidator) Name() string { return "household_demographics" }

func (v HouseholdValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	for _, h := range snap.Households {
		if !eligible(&h.Record) {
			continue
		}
		checked++
		v.household(snap, h)
	}
	return checked, nil
}

func (HouseholdValidator) household(snap *Snapshot, h *staging.Household) {
	counters := map[string]int{
		"male_count":         h.MaleCount,
		"female_count":       h.FemaleCount,
		"male_child_count":   h.MaleChildCount,
		"female_child_count": h.FemaleChildCount,
		"elderly_count":      h.ElderlyCount,
		"disabled_count":     h.DisabledCount,
	}
	negative := false
	for field, n := range counters {
		if n < 0 {
			h.AddError(CodeDemographics, field, fmt.Sprintf("%s must not be negative", field))
			negative = true
		}
	}
	if negative {
		return
	}

	childrenCoherent := true
	if h.MaleChildCount > h.MaleCount {
		h.AddError(CodeDemographics, "male_child_count",
			fmt.Sprintf("%d male children exceed %d males", h.MaleChildCount, h.MaleCount))
		childrenCoherent = false
	}
	if h.FemaleChildCount > h.FemaleCount {
		h.AddError(CodeDemographics, "female_child_count",
			fmt.Sprintf("%d female children exceed %d females", h.FemaleChildCount, h.FemaleCount))
		childrenCoherent = false
	}

	children := h.MaleChildCount + h.FemaleChildCount
	if h.HouseholdSize != nil {
		size := *h.HouseholdSize
		if got := h.MaleCount + h.FemaleCount; got != size {
			h.AddError(CodeDemographics, "household_size",
				fmt.Sprintf("male and female counts sum to %d, household size is %d", got, size))
		}
		if h.ElderlyCount > size {
			h.AddError(CodeDemographics, "elderly_count",
				fmt.Sprintf("%d elderly exceed household size %d", h.ElderlyCount, size))
		}
		if h.DisabledCount > size {
			h.AddError(CodeDemographics, "disabled_count",
				fmt.Sprintf("%d disabled exceed household size %d", h.DisabledCount, size))
		}
		// The no-adult inference only holds when the child counters are
		// themselves coherent.
		if childrenCoherent && size > 0 && children >= size && h.HeadPersonRef != "" {
			h.AddError(CodeDemographics, "head_person_ref",
				"every member is counted as a child, leaving no adult to head the household")
		}
	}

	if head, ok := snap.Person(h.HeadPersonRef); ok && head.BirthYear != nil {
		if age := time.Now().Year() - *head.BirthYear; age < adultAge {
			h.AddError(CodeDemographics, "head_person_ref",
				fmt.Sprintf("head of household is %d years old", age))
		}
	}
}
