package validation

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
)

// VocabularyValidator is level 7: every coded value must exist in the
// vocabulary current at validation time. A code retired since the container
// was exported is a warning, a code never issued is an error.
type VocabularyValidator struct {
	cache *vocabulary.Cache
}

func NewVocabularyValidator(cache *vocabulary.Cache) VocabularyValidator {
	return VocabularyValidator{cache: cache}
}

func (VocabularyValidator) Level() int   { return 7 }
func (VocabularyValidator) Name() string { return "vocabulary_currency" }

func (v VocabularyValidator) Validate(ctx context.Context, snap *Snapshot) (int, error) {
	sets := map[string]vocabulary.Set{}
	for _, name := range []string{
		vocabulary.BuildingType,
		vocabulary.UnitType,
		vocabulary.OccupancyStatus,
		vocabulary.RelationType,
		vocabulary.EvidenceType,
		vocabulary.ClaimType,
		vocabulary.SurveyType,
		vocabulary.DisplacementStatus,
	} {
		set, err := v.cache.Get(ctx, name)
		if err != nil {
			return 0, errors.Wrapf(err, "load vocabulary %q", name)
		}
		sets[name] = set
	}

	checked := 0
	for _, b := range snap.Buildings {
		if !eligible(&b.Record) {
			continue
		}
		checked++
		checkCode(&b.Record, sets, vocabulary.BuildingType, "building_type", b.BuildingType)
	}
	for _, u := range snap.Units {
		if !eligible(&u.Record) {
			continue
		}
		checked++
		checkCode(&u.Record, sets, vocabulary.UnitType, "unit_type", u.UnitType)
		checkCode(&u.Record, sets, vocabulary.OccupancyStatus, "occupancy_status", u.OccupancyStatus)
	}
	for _, h := range snap.Households {
		if !eligible(&h.Record) {
			continue
		}
		checked++
		checkCode(&h.Record, sets, vocabulary.DisplacementStatus, "displacement_status", h.DisplacementStatus)
	}
	for _, r := range snap.Relations {
		if !eligible(&r.Record) {
			continue
		}
		checked++
		checkCode(&r.Record, sets, vocabulary.RelationType, "relation_type", r.RelationType)
	}
	for _, e := range snap.Evidences {
		if !eligible(&e.Record) {
			continue
		}
		checked++
		checkCode(&e.Record, sets, vocabulary.EvidenceType, "evidence_type", e.EvidenceType)
	}
	for _, c := range snap.Claims {
		if !eligible(&c.Record) {
			continue
		}
		checked++
		checkCode(&c.Record, sets, vocabulary.ClaimType, "claim_type", c.ClaimType)
	}
	for _, s := range snap.Surveys {
		if !eligible(&s.Record) {
			continue
		}
		checked++
		checkCode(&s.Record, sets, vocabulary.SurveyType, "survey_type", s.SurveyType)
	}
	return checked, nil
}

func checkCode(r *staging.Record, sets map[string]vocabulary.Set, vocab, field, value string) {
	code := strings.ToLower(strings.TrimSpace(value))
	if code == "" {
		return
	}
	set := sets[vocab]
	if !set.Contains(code) {
		r.AddError(CodeUnknownCode, field, fmt.Sprintf("%q is not a %s code", value, vocab))
		return
	}
	if !set.IsActive(code) {
		r.AddWarning(CodeInactiveCode, field, fmt.Sprintf("%s code %q has been retired", vocab, value))
	}
}
