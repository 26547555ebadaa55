package validation

import (
	"context"
	"fmt"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// ReferenceValidator is level 2: every intra-package ref must resolve to a
// staged record of the right type, and that target must itself be free of
// errors so far. Empty refs are level 1's concern and are skipped here.
type ReferenceValidator struct{}

func (ReferenceValidator) Level() int   { return 2 }
func (ReferenceValidator) Name() string { return "cross_references" }

func (v ReferenceValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	for _, u := range snap.Units {
		if !eligible(&u.Record) {
			continue
		}
		checked++
		v.check(snap, &u.Record, "building_ref", u.BuildingRef, staging.EntityBuilding)
	}
	for _, h := range snap.Households {
		if !eligible(&h.Record) {
			continue
		}
		checked++
		v.check(snap, &h.Record, "unit_ref", h.UnitRef, staging.EntityUnit)
		v.check(snap, &h.Record, "head_person_ref", h.HeadPersonRef, staging.EntityPerson)
	}
	for _, r := range snap.Relations {
		if !eligible(&r.Record) {
			continue
		}
		checked++
		v.check(snap, &r.Record, "person_ref", r.PersonRef, staging.EntityPerson)
		v.check(snap, &r.Record, "unit_ref", r.UnitRef, staging.EntityUnit)
	}
	for _, e := range snap.Evidences {
		if !eligible(&e.Record) {
			continue
		}
		checked++
		v.check(snap, &e.Record, "relation_ref", e.RelationRef, staging.EntityRelation)
		v.check(snap, &e.Record, "claim_ref", e.ClaimRef, staging.EntityClaim)
	}
	for _, c := range snap.Claims {
		if !eligible(&c.Record) {
			continue
		}
		checked++
		v.check(snap, &c.Record, "claimant_ref", c.ClaimantRef, staging.EntityPerson)
		v.check(snap, &c.Record, "unit_ref", c.UnitRef, staging.EntityUnit)
	}
	for _, s := range snap.Surveys {
		if !eligible(&s.Record) {
			continue
		}
		checked++
		v.check(snap, &s.Record, "building_ref", s.BuildingRef, staging.EntityBuilding)
	}
	return checked, nil
}

func (ReferenceValidator) check(snap *Snapshot, r *staging.Record, field, ref string, target staging.EntityType) {
	if ref == "" {
		return
	}
	var (
		envelope *staging.Record
		found    bool
	)
	switch target {
	case staging.EntityBuilding:
		if b, ok := snap.Building(ref); ok {
			envelope, found = &b.Record, true
		}
	case staging.EntityUnit:
		if u, ok := snap.Unit(ref); ok {
			envelope, found = &u.Record, true
		}
	case staging.EntityPerson:
		if p, ok := snap.Person(ref); ok {
			envelope, found = &p.Record, true
		}
	case staging.EntityRelation:
		if rel, ok := snap.Relation(ref); ok {
			envelope, found = &rel.Record, true
		}
	case staging.EntityClaim:
		if c, ok := snap.Claim(ref); ok {
			envelope, found = &c.Record, true
		}
	}
	if !found {
		r.AddError(CodeBadReference, field, fmt.Sprintf("%q does not resolve to a staged %s", ref, target))
		return
	}
	if envelope.HasErrors() || !eligible(envelope) {
		r.AddError(CodeBadReference, field, fmt.Sprintf("referenced %s %q is itself invalid", target, ref))
	}
}
