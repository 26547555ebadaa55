package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/matching"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
)

func stagingPackage() importpackage.ImportPackage {
	return importpackage.Hydrate(importpackage.Hydration{
		ID:          uuid.New(),
		PackageCode: "PKG-2024-W12",
		Status:      importpackage.StatusStaging,
	})
}

func testMatcher() *matching.PersonMatcher {
	return matching.NewPersonMatcher(configuration.MatchingOptions{
		PersonHighThreshold:   85,
		PersonMediumThreshold: 60,
	})
}

func TestDetectFindsStagedAndProductionDuplicates(t *testing.T) {
	year := 1975
	staged := &stubStaged{
		persons: []*staging.Person{
			{Record: validRecord("p-1"), NationalID: "100200300", FirstName: "Omar", FamilyName: "Haddad", BirthYear: &year},
			{Record: validRecord("p-2"), NationalID: "100-200-300", FirstName: "Omar", FamilyName: "Hadad"},
			// Failed validation keeps a record out of matching entirely.
			{Record: rejectedRecord("p-3"), NationalID: "100200300", FirstName: "Omar", FamilyName: "Haddad"},
		},
	}
	production := person.Hydrate(uuid.New(), "100200300", "Omar", "", "", "Haddad",
		person.GenderMale, 1975, "", "", true, time.Now(), time.Now())

	conflicts := &stubConflicts{}
	svc := NewDetectionService(staged, conflicts, &stubPersonWriter{active: []person.Person{production}}, &stubUnitWriter{}, testMatcher())

	created, open, err := svc.Detect(context.Background(), stagingPackage())
	require.NoError(t, err)

	// p-1 x p-2, p-1 x production, p-2 x production.
	assert.Equal(t, 3, created)
	assert.Equal(t, int64(3), open)
	require.Len(t, conflicts.created, 3)
	for _, c := range conflicts.created {
		assert.Equal(t, staging.EntityPerson, c.EntityType())
		assert.Equal(t, conflict.ConfidenceExact, c.Confidence())
		assert.Equal(t, 100, c.Score())
		assert.True(t, c.AutoDetected())
		assert.Equal(t, conflict.StatusUnresolved, c.Status())
	}
}

func TestDetectSkipsAlreadyRecordedPairs(t *testing.T) {
	staged := &stubStaged{
		persons: []*staging.Person{
			{Record: validRecord("p-1"), NationalID: "100200300", FirstName: "Omar", FamilyName: "Haddad"},
			{Record: validRecord("p-2"), NationalID: "100200300", FirstName: "Omar", FamilyName: "Haddad"},
		},
	}

	left, right := conflict.Canonicalize(
		conflict.Ref{Source: conflict.SourceStaged, Key: "p-1"},
		conflict.Ref{Source: conflict.SourceStaged, Key: "p-2"},
	)
	conflicts := &stubConflicts{existing: [][2]conflict.Ref{{left, right}}}
	svc := NewDetectionService(staged, conflicts, &stubPersonWriter{}, &stubUnitWriter{}, testMatcher())

	created, _, err := svc.Detect(context.Background(), stagingPackage())
	require.NoError(t, err)

	assert.Zero(t, created)
	assert.Empty(t, conflicts.created)
}

func TestDetectFlagsExactUnitKeyCollisions(t *testing.T) {
	staged := &stubStaged{
		buildings: []*staging.Building{
			{Record: validRecord("b-1"), BuildingCode: "ALP-001"},
		},
		units: []*staging.PropertyUnit{
			{Record: validRecord("u-1"), BuildingRef: "b-1", UnitNumber: "2A"},
		},
	}
	productionUnit := unit.Key{UnitID: uuid.New(), BuildingCode: "alp-001", UnitNumber: " 2a"}

	conflicts := &stubConflicts{}
	svc := NewDetectionService(staged, conflicts, &stubPersonWriter{}, &stubUnitWriter{keys: []unit.Key{productionUnit}}, testMatcher())

	created, open, err := svc.Detect(context.Background(), stagingPackage())
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	assert.Equal(t, int64(1), open)
	require.Len(t, conflicts.created, 1)
	c := conflicts.created[0]
	assert.Equal(t, staging.EntityUnit, c.EntityType())
	assert.Equal(t, conflict.ConfidenceExact, c.Confidence())

	staged.units[0].UnitNumber = "3B"
	conflicts.created = nil
	created, _, err = svc.Detect(context.Background(), stagingPackage())
	require.NoError(t, err)
	assert.Zero(t, created)
}
