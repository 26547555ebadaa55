package matching

import (
	"context"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

// Composite score weights. A perfect composite (identical names, matching
// birth year) reaches exactly 100; an identical national id short-circuits
// to 100 without looking at names.
const (
	weightFullName   = 45
	weightFatherName = 20
	weightFamilyName = 20
	birthYearBonus   = 15
	birthYearPenalty = 10
)

// PersonCandidate is one comparable person, staged or production. Callers
// fill the raw fields; the matcher normalizes once up front.
type PersonCandidate struct {
	Ref        conflict.Ref
	NationalID string
	FullName   string
	FatherName string
	FamilyName string
	BirthYear  *int

	normID     string
	normFull   string
	normFather string
	normFamily string
}

func (c *PersonCandidate) normalize() {
	c.normID = NormalizeID(c.NationalID)
	c.normFull = TokenSort(c.FullName)
	c.normFather = Normalize(c.FatherName)
	c.normFamily = Normalize(c.FamilyName)
}

// PersonMatcher scores every staged person against the other staged persons
// of the package and against the production register.
type PersonMatcher struct {
	high   int
	medium int
}

func NewPersonMatcher(opts configuration.MatchingOptions) *PersonMatcher {
	return &PersonMatcher{
		high:   opts.PersonHighThreshold,
		medium: opts.PersonMediumThreshold,
	}
}

// Match returns every pair scoring at or above the medium threshold. Staged
// records pair with later staged records only, so each unordered pair is
// scored once.
func (m *PersonMatcher) Match(ctx context.Context, staged, production []PersonCandidate) ([]Match, error) {
	for i := range staged {
		staged[i].normalize()
	}
	for i := range production {
		production[i].normalize()
	}

	var out []Match
	for i := range staged {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := i + 1; j < len(staged); j++ {
			if match, ok := m.pair(&staged[i], &staged[j]); ok {
				out = append(out, match)
			}
		}
		for j := range production {
			if match, ok := m.pair(&staged[i], &production[j]); ok {
				out = append(out, match)
			}
		}
	}
	return out, nil
}

func (m *PersonMatcher) pair(a, b *PersonCandidate) (Match, bool) {
	score, confidence, criteria := m.score(a, b)
	if confidence == "" {
		return Match{}, false
	}
	return Match{
		EntityType: staging.EntityPerson,
		Left:       a.Ref,
		Right:      b.Ref,
		Score:      score,
		Confidence: confidence,
		Criteria:   criteria,
	}, true
}

func (m *PersonMatcher) score(a, b *PersonCandidate) (int, conflict.Confidence, conflict.MatchCriteria) {
	if a.normID != "" && a.normID == b.normID {
		return 100, conflict.ConfidenceExact, conflict.MatchCriteria{"national_id": 100}
	}

	criteria := conflict.MatchCriteria{}
	score := 0
	if r := Ratio(a.normFull, b.normFull); r > 0 {
		criteria["full_name"] = r
		score += r * weightFullName / 100
	}
	if r := Ratio(a.normFather, b.normFather); r > 0 {
		criteria["father_name"] = r
		score += r * weightFatherName / 100
	}
	if r := Ratio(a.normFamily, b.normFamily); r > 0 {
		criteria["family_name"] = r
		score += r * weightFamilyName / 100
	}
	if a.BirthYear != nil && b.BirthYear != nil {
		if *a.BirthYear == *b.BirthYear {
			criteria["birth_year"] = 100
			score += birthYearBonus
		} else {
			criteria["birth_year"] = 0
			score -= birthYearPenalty
		}
	}
	if score < 0 {
		score = 0
	}

	switch {
	case score >= m.high:
		return score, conflict.ConfidenceHigh, criteria
	case score >= m.medium:
		return score, conflict.ConfidenceMedium, criteria
	default:
		return 0, "", nil
	}
}
