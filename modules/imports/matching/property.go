package matching

import (
	"context"
	"strings"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// UnitCandidate is one comparable property unit. BuildingCode is the
// resolved administrative code, not the intra-package building ref.
type UnitCandidate struct {
	Ref          conflict.Ref
	BuildingCode string
	UnitNumber   string
}

// key collapses whitespace and case; a unit with either component missing
// never matches.
func (c UnitCandidate) key() string {
	code := strings.ToUpper(strings.Join(strings.Fields(c.BuildingCode), ""))
	number := strings.ToLower(strings.Join(strings.Fields(c.UnitNumber), ""))
	if code == "" || number == "" {
		return ""
	}
	return code + "|" + number
}

// PropertyMatcher pairs units that share the exact (building code, unit
// number) composite key. Units identify administratively, not fuzzily, so
// every hit is an exact-confidence conflict.
type PropertyMatcher struct{}

func (pm PropertyMatcher) Match(ctx context.Context, staged, production []UnitCandidate) ([]Match, error) {
	byKey := make(map[string][]UnitCandidate, len(production))
	for _, c := range production {
		if k := c.key(); k != "" {
			byKey[k] = append(byKey[k], c)
		}
	}

	var out []Match
	seenStaged := make(map[string][]UnitCandidate, len(staged))
	for _, c := range staged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		k := c.key()
		if k == "" {
			continue
		}
		for _, earlier := range seenStaged[k] {
			out = append(out, pm.match(earlier, c))
		}
		for _, prod := range byKey[k] {
			out = append(out, pm.match(c, prod))
		}
		seenStaged[k] = append(seenStaged[k], c)
	}
	return out, nil
}

func (PropertyMatcher) match(a, b UnitCandidate) Match {
	return Match{
		EntityType: staging.EntityUnit,
		Left:       a.Ref,
		Right:      b.Ref,
		Score:      100,
		Confidence: conflict.ConfidenceExact,
		Criteria: conflict.MatchCriteria{
			"building_code": 100,
			"unit_number":   100,
		},
	}
}
