package validation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
)

// Field length ceilings mirror the registry column widths. Device exports
// occasionally concatenate free text into the wrong column; catching it here
// keeps the commit insert from failing later.
const (
	maxCodeLen = 32
	maxNameLen = 150
	maxTextLen = 2000
)

var maxOwnershipShare = decimal.NewFromInt(100)

// ConsistencyValidator is level 1: required fields, ranges, lengths,
// parseable dates and recognized closed-set values, record by record with no
// cross-entity lookups.
type ConsistencyValidator struct{}

func (ConsistencyValidator) Level() int   { return 1 }
func (ConsistencyValidator) Name() string { return "data_consistency" }

func (v ConsistencyValidator) Validate(_ context.Context, snap *Snapshot) (int, error) {
	checked := 0
	for _, b := range snap.Buildings {
		if !eligible(&b.Record) {
			continue
		}
		checked++
		v.building(b)
	}
	for _, u := range snap.Units {
		if !eligible(&u.Record) {
			continue
		}
		checked++
		v.unit(u)
	}
	for _, p := range snap.Persons {
		if !eligible(&p.Record) {
			continue
		}
		checked++
		v.person(p)
	}
	for _, h := range snap.Households {
		if !eligible(&h.Record) {
			continue
		}
		checked++
		v.household(h)
	}
	for _, r := range snap.Relations {
		if !eligible(&r.Record) {
			continue
		}
		checked++
		v.relation(r)
	}
	for _, e := range snap.Evidences {
		if !eligible(&e.Record) {
			continue
		}
		checked++
		v.evidence(e)
	}
	for _, c := range snap.Claims {
		if !eligible(&c.Record) {
			continue
		}
		checked++
		v.claim(c)
	}
	for _, s := range snap.Surveys {
		if !eligible(&s.Record) {
			continue
		}
		checked++
		v.survey(s)
	}
	return checked, nil
}

func (ConsistencyValidator) building(b *staging.Building) {
	requireField(&b.Record, "building_code", b.BuildingCode)
	checkLen(&b.Record, "building_code", b.BuildingCode, maxCodeLen)
	checkLen(&b.Record, "address", b.Address, maxTextLen)
	checkLen(&b.Record, "notes", b.Notes, maxTextLen)
	if b.FloorsCount != nil && (*b.FloorsCount < 0 || *b.FloorsCount > 200) {
		b.AddError(CodeOutOfRange, "floors_count", fmt.Sprintf("floors count %d outside 0..200", *b.FloorsCount))
	}
	// One coordinate without the other is a broken capture; bounds are the
	// spatial level's concern.
	if (b.Latitude == nil) != (b.Longitude == nil) {
		b.AddError(CodeInvalidValue, "latitude", "latitude and longitude must be recorded together")
	}
}

func (ConsistencyValidator) unit(u *staging.PropertyUnit) {
	requireField(&u.Record, "building_ref", u.BuildingRef)
	requireField(&u.Record, "unit_number", u.UnitNumber)
	checkLen(&u.Record, "unit_number", u.UnitNumber, maxCodeLen)
	checkLen(&u.Record, "notes", u.Notes, maxTextLen)
	if u.FloorNumber != nil && (*u.FloorNumber < -5 || *u.FloorNumber > 200) {
		u.AddError(CodeOutOfRange, "floor_number", fmt.Sprintf("floor number %d outside -5..200", *u.FloorNumber))
	}
	if u.AreaSqm != nil && *u.AreaSqm <= 0 {
		u.AddError(CodeOutOfRange, "area_sqm", fmt.Sprintf("area %.2f must be positive", *u.AreaSqm))
	}
}

func (ConsistencyValidator) person(p *staging.Person) {
	requireField(&p.Record, "first_name", p.FirstName)
	requireField(&p.Record, "family_name", p.FamilyName)
	checkLen(&p.Record, "first_name", p.FirstName, maxNameLen)
	checkLen(&p.Record, "father_name", p.FatherName, maxNameLen)
	checkLen(&p.Record, "grandfather_name", p.GrandfatherName, maxNameLen)
	checkLen(&p.Record, "family_name", p.FamilyName, maxNameLen)
	checkLen(&p.Record, "phone", p.Phone, maxCodeLen)
	if _, ok := person.ParseGender(p.Gender); !ok {
		p.AddWarning(CodeInvalidValue, "gender", fmt.Sprintf("unrecognized gender %q", p.Gender))
	}
	if p.BirthYear != nil {
		year := time.Now().Year()
		if *p.BirthYear < 1900 || *p.BirthYear > year {
			p.AddError(CodeOutOfRange, "birth_year", fmt.Sprintf("birth year %d outside 1900..%d", *p.BirthYear, year))
		}
	}
	if id := strings.TrimSpace(p.NationalID); id != "" && strings.ContainsFunc(id, notDigit) {
		p.AddWarning(CodeInvalidValue, "national_id", "national id contains non-digit characters")
	}
}

func (ConsistencyValidator) household(h *staging.Household) {
	requireField(&h.Record, "unit_ref", h.UnitRef)
	checkLen(&h.Record, "notes", h.Notes, maxTextLen)
	if h.HouseholdSize != nil && *h.HouseholdSize < 1 {
		h.AddError(CodeOutOfRange, "household_size", fmt.Sprintf("household size %d must be at least 1", *h.HouseholdSize))
	}
}

func (ConsistencyValidator) relation(r *staging.Relation) {
	requireField(&r.Record, "person_ref", r.PersonRef)
	requireField(&r.Record, "unit_ref", r.UnitRef)
	requireField(&r.Record, "relation_type", r.RelationType)
	if r.RelationType != "" {
		if _, ok := relation.ParseType(r.RelationType); !ok {
			r.AddWarning(CodeInvalidValue, "relation_type", fmt.Sprintf("unrecognized relation type %q", r.RelationType))
		}
	}
	if r.OwnershipShare.IsNegative() || r.OwnershipShare.GreaterThan(maxOwnershipShare) {
		r.AddError(CodeOutOfRange, "ownership_share", fmt.Sprintf("ownership share %s outside 0..100", r.OwnershipShare))
	}
	checkDate(&r.Record, "start_date", r.StartDate)
}

func (ConsistencyValidator) evidence(e *staging.Evidence) {
	requireField(&e.Record, "evidence_type", e.EvidenceType)
	if e.RelationRef == "" && e.ClaimRef == "" {
		e.AddError(CodeRequired, "relation_ref", "evidence must reference a relation or a claim")
	}
	checkLen(&e.Record, "document_number", e.DocumentNumber, maxNameLen)
	checkLen(&e.Record, "issued_by", e.IssuedBy, maxNameLen)
	checkDate(&e.Record, "issue_date", e.IssueDate)
	if e.FileName != "" && e.FileHash == "" {
		e.AddWarning(CodeInvalidValue, "file_name", fmt.Sprintf("attachment %q listed but no blob found in container", e.FileName))
	}
}

func (ConsistencyValidator) claim(c *staging.Claim) {
	requireField(&c.Record, "claimant_ref", c.ClaimantRef)
	requireField(&c.Record, "unit_ref", c.UnitRef)
	requireField(&c.Record, "claim_type", c.ClaimType)
	if c.ClaimStatus != "" {
		if _, ok := claim.ParseStatus(c.ClaimStatus); !ok {
			c.AddError(CodeInvalidValue, "claim_status", fmt.Sprintf("unrecognized claim status %q", c.ClaimStatus))
		}
	}
	checkLen(&c.Record, "description", c.Description, maxTextLen)
	checkDate(&c.Record, "filed_date", c.FiledDate)
}

func (ConsistencyValidator) survey(s *staging.Survey) {
	requireField(&s.Record, "building_ref", s.BuildingRef)
	requireField(&s.Record, "surveyor_name", s.SurveyorName)
	requireField(&s.Record, "survey_date", s.SurveyDate)
	checkLen(&s.Record, "surveyor_name", s.SurveyorName, maxNameLen)
	checkDate(&s.Record, "survey_date", s.SurveyDate)
}

func requireField(r *staging.Record, field, value string) {
	if strings.TrimSpace(value) == "" {
		r.AddError(CodeRequired, field, fmt.Sprintf("%s is required", field))
	}
}

func checkLen(r *staging.Record, field, value string, max int) {
	if len(value) > max {
		r.AddError(CodeTooLong, field, fmt.Sprintf("%s exceeds %d characters", field, max))
	}
}

func checkDate(r *staging.Record, field, raw string) {
	if _, err := staging.ParseDate(raw); err != nil {
		r.AddError(CodeInvalidDate, field, fmt.Sprintf("unparseable date %q", raw))
	}
}

func notDigit(c rune) bool {
	return c < '0' || c > '9'
}
