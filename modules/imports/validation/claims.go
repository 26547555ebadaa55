package validation

import (
	"context"
	"fmt"
	"time"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
)

// ClaimValidator is level 6: a claim arriving from the field can only be at
// the start of its lifecycle. Review outcomes originate inside the registry
// and must never be imported.
type ClaimValidator struct{}

func (ClaimValidator) Level() int   { return 6 }
func (ClaimValidator) Name() string { return "claim_lifecycle" }

func (v ClaimValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	now := time.Now()
	for _, c := range snap.Claims {
		if !eligible(&c.Record) {
			continue
		}
		checked++
		v.claim(c, now)
	}
	return checked, nil
}

func (ClaimValidator) claim(c *staging.Claim, now time.Time) {
	if c.ClaimStatus != "" {
		status, ok := claim.ParseStatus(c.ClaimStatus)
		if ok && !status.IsImportable() {
			c.AddError(CodeIllegalStatus, "claim_status",
				fmt.Sprintf("status %q cannot be imported, surveyed claims arrive as draft or submitted", status))
		}
	}
	filed, err := staging.ParseDate(c.FiledDate)
	if err == nil && filed != nil && filed.After(now) {
		c.AddWarning(CodeFutureDate, "filed_date",
			fmt.Sprintf("filed date %s lies in the future", filed.Format("2006-01-02")))
	}
}
