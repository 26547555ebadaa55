package validation_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/validation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

// fixture accumulates staged records for one package and produces snapshots.
// The stock records pass every level, tests break one thing at a time.
type fixture struct {
	packageID  uuid.UUID
	buildings  []*staging.Building
	units      []*staging.PropertyUnit
	persons    []*staging.Person
	households []*staging.Household
	relations  []*staging.Relation
	evidences  []*staging.Evidence
	claims     []*staging.Claim
	surveys    []*staging.Survey
}

func newFixture() *fixture {
	return &fixture{packageID: uuid.New()}
}

func (f *fixture) snapshot() *validation.Snapshot {
	return validation.NewSnapshot(
		f.packageID,
		f.buildings, f.units, f.persons, f.households,
		f.relations, f.evidences, f.claims, f.surveys,
	)
}

func (f *fixture) building(originalID string) *staging.Building {
	lat, lon := 36.2, 37.1
	b := &staging.Building{
		Record:           staging.NewRecord(f.packageID, originalID),
		BuildingCode:     "01-02-003-0004",
		Address:          "Al-Jalloum, Aleppo",
		NeighborhoodCode: "003",
		BuildingType:     "residential",
		Status:           "intact",
		Latitude:         &lat,
		Longitude:        &lon,
	}
	f.buildings = append(f.buildings, b)
	return b
}

func (f *fixture) unit(originalID, buildingRef, number string) *staging.PropertyUnit {
	u := &staging.PropertyUnit{
		Record:          staging.NewRecord(f.packageID, originalID),
		BuildingRef:     buildingRef,
		UnitNumber:      number,
		UnitType:        "apartment",
		OccupancyStatus: "occupied",
	}
	f.units = append(f.units, u)
	return u
}

func (f *fixture) person(originalID, first, family string) *staging.Person {
	year := 1980
	p := &staging.Person{
		Record:     staging.NewRecord(f.packageID, originalID),
		NationalID: "02030405060",
		FirstName:  first,
		FatherName: "Mahmoud",
		FamilyName: family,
		Gender:     "male",
		BirthYear:  &year,
	}
	f.persons = append(f.persons, p)
	return p
}

func (f *fixture) household(originalID, unitRef, headRef string) *staging.Household {
	size := 4
	h := &staging.Household{
		Record:             staging.NewRecord(f.packageID, originalID),
		UnitRef:            unitRef,
		HeadPersonRef:      headRef,
		HouseholdSize:      &size,
		MaleCount:          2,
		FemaleCount:        2,
		MaleChildCount:     1,
		FemaleChildCount:   1,
		DisplacementStatus: "resident",
	}
	f.households = append(f.households, h)
	return h
}

func (f *fixture) relation(originalID, personRef, unitRef, relType string, share int64) *staging.Relation {
	r := &staging.Relation{
		Record:         staging.NewRecord(f.packageID, originalID),
		PersonRef:      personRef,
		UnitRef:        unitRef,
		RelationType:   relType,
		OwnershipShare: decimal.NewFromInt(share),
		StartDate:      "2020-01-01",
	}
	f.relations = append(f.relations, r)
	return r
}

func (f *fixture) evidence(originalID, relationRef string) *staging.Evidence {
	e := &staging.Evidence{
		Record:         staging.NewRecord(f.packageID, originalID),
		RelationRef:    relationRef,
		EvidenceType:   "deed",
		DocumentNumber: "D-1001",
		IssueDate:      "2019-06-01",
	}
	f.evidences = append(f.evidences, e)
	return e
}

func (f *fixture) claim(originalID, claimantRef, unitRef string) *staging.Claim {
	c := &staging.Claim{
		Record:      staging.NewRecord(f.packageID, originalID),
		ClaimantRef: claimantRef,
		UnitRef:     unitRef,
		ClaimType:   "ownership",
		ClaimStatus: "submitted",
		FiledDate:   "2024-01-02",
	}
	f.claims = append(f.claims, c)
	return c
}

func (f *fixture) survey(originalID, buildingRef string) *staging.Survey {
	s := &staging.Survey{
		Record:       staging.NewRecord(f.packageID, originalID),
		BuildingRef:  buildingRef,
		SurveyorName: "Field Team 3",
		SurveyDate:   "2024-05-10",
		SurveyType:   "full",
	}
	f.surveys = append(f.surveys, s)
	return s
}

// complete wires one of everything, internally consistent.
func (f *fixture) complete() {
	f.building("b-1")
	f.unit("u-1", "b-1", "1A")
	f.person("p-1", "Ahmad", "Haddad")
	f.household("h-1", "u-1", "p-1")
	f.relation("r-1", "p-1", "u-1", "owner", 100)
	f.evidence("e-1", "r-1")
	f.claim("c-1", "p-1", "u-1")
	f.survey("s-1", "b-1")
}

type staticProvider map[string]vocabulary.Set

func (p staticProvider) Sets(context.Context) (map[string]vocabulary.Set, error) {
	return p, nil
}

func testCache() *vocabulary.Cache {
	return vocabulary.NewCache(staticProvider{
		vocabulary.BuildingType:       {"residential": true, "commercial": true},
		vocabulary.UnitType:           {"apartment": true, "shop": true},
		vocabulary.OccupancyStatus:    {"occupied": true, "vacant": true},
		vocabulary.RelationType:       {"owner": true, "tenant": true, "heir": true, "occupant": true, "other": true},
		vocabulary.EvidenceType:       {"deed": true, "utility_bill": true, "tax_record": false},
		vocabulary.ClaimType:          {"ownership": true, "tenancy": true},
		vocabulary.SurveyType:         {"full": true, "rapid": true},
		vocabulary.DisplacementStatus: {"resident": true, "displaced": true, "returnee": true},
	})
}

func testSpatial() configuration.SpatialOptions {
	return configuration.SpatialOptions{
		MinLatitude:  35.8,
		MaxLatitude:  36.5,
		MinLongitude: 36.9,
		MaxLongitude: 37.5,
	}
}
