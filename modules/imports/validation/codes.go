package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
)

// CodeValidator is level 8: building codes must follow the administrative
// hierarchy pattern and unit numbers must be unique within their staged
// building.
type CodeValidator struct{}

func (CodeValidator) Level() int   { return 8 }
func (CodeValidator) Name() string { return "code_patterns" }

func (v CodeValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	for _, b := range snap.Buildings {
		if !eligible(&b.Record) {
			continue
		}
		checked++
		if b.BuildingCode != "" && !building.IsValidCode(b.BuildingCode) {
			b.AddError(CodeBadPattern, "building_code",
				fmt.Sprintf("%q does not match the GG-DD-NNN-BBBB administrative pattern", b.BuildingCode))
		}
	}

	seen := make(map[string]string) // building ref + unit number -> first original id
	for _, u := range snap.Units {
		if !eligible(&u.Record) {
			continue
		}
		checked++
		if u.BuildingRef == "" || u.UnitNumber == "" {
			continue
		}
		key := u.BuildingRef + "\x00" + strings.ToLower(strings.TrimSpace(u.UnitNumber))
		if first, dup := seen[key]; dup {
			u.AddError(CodeDuplicateUnit, "unit_number",
				fmt.Sprintf("unit number %q already staged for building %q as %s", u.UnitNumber, u.BuildingRef, first))
			continue
		}
		seen[key] = u.OriginalID
	}
	return checked, nil
}
