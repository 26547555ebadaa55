package validation

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
)

// EvidenceValidator is level 3: tenure types that assert ownership must be
// documented, and the declared ownership shares of one unit must not add up
// past the whole.
type EvidenceValidator struct{}

func (EvidenceValidator) Level() int   { return 3 }
func (EvidenceValidator) Name() string { return "ownership_evidence" }

func (v EvidenceValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	shareByUnit := make(map[string]decimal.Decimal)
	overshared := make(map[string]bool)

	for _, r := range snap.Relations {
		if !eligible(&r.Record) {
			continue
		}
		checked++
		relType, _ := relation.ParseType(r.RelationType)
		if !relType.RequiresEvidence() {
			continue
		}
		if len(snap.EvidencesOfRelation(r.OriginalID)) == 0 {
			r.AddError(CodeMissingProof, "",
				fmt.Sprintf("%s relation carries no evidence document", relType))
		}
		if r.UnitRef != "" && r.OwnershipShare.IsPositive() {
			sum := shareByUnit[r.UnitRef].Add(r.OwnershipShare)
			shareByUnit[r.UnitRef] = sum
			if sum.GreaterThan(maxOwnershipShare) {
				overshared[r.UnitRef] = true
			}
		}
	}

	// Warn every ownership relation of an oversubscribed unit, not just the
	// one that tipped the sum; the operator resolves them together.
	for _, r := range snap.Relations {
		if !eligible(&r.Record) || !overshared[r.UnitRef] {
			continue
		}
		relType, _ := relation.ParseType(r.RelationType)
		if !relType.RequiresEvidence() || !r.OwnershipShare.IsPositive() {
			continue
		}
		r.AddWarning(CodeShareExceeded, "ownership_share",
			fmt.Sprintf("ownership shares on unit %q total %s%%", r.UnitRef, shareByUnit[r.UnitRef]))
	}
	return checked, nil
}
