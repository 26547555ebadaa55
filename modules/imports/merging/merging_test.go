package merging_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/merging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
)

type skipCall struct {
	entityType staging.EntityType
	recordID   uuid.UUID
	masterID   *uuid.UUID
}

type stubStaging struct {
	staging.Repository
	persons []*staging.Person
	units   []*staging.PropertyUnit
	skipped []skipCall
}

func (s *stubStaging) PersonsByPackage(context.Context, uuid.UUID) ([]*staging.Person, error) {
	return s.persons, nil
}

func (s *stubStaging) UnitsByPackage(context.Context, uuid.UUID) ([]*staging.PropertyUnit, error) {
	return s.units, nil
}

func (s *stubStaging) MarkSkipped(_ context.Context, entityType staging.EntityType, recordID uuid.UUID, masterID *uuid.UUID) error {
	s.skipped = append(s.skipped, skipCall{entityType: entityType, recordID: recordID, masterID: masterID})
	return nil
}

type stubPersons struct {
	person.Repository
	byID        map[uuid.UUID]person.Person
	deactivated []uuid.UUID
}

func (s *stubPersons) GetByID(_ context.Context, id uuid.UUID) (person.Person, error) {
	return s.byID[id], nil
}

func (s *stubPersons) Update(_ context.Context, p person.Person) (person.Person, error) {
	s.byID[p.ID()] = p
	return p, nil
}

func (s *stubPersons) Deactivate(_ context.Context, id uuid.UUID) error {
	s.deactivated = append(s.deactivated, id)
	return nil
}

type stubUnits struct {
	unit.Repository
	byID    map[uuid.UUID]unit.PropertyUnit
	deleted []uuid.UUID
}

func (s *stubUnits) GetByID(_ context.Context, id uuid.UUID) (unit.PropertyUnit, error) {
	return s.byID[id], nil
}

func (s *stubUnits) Update(_ context.Context, u unit.PropertyUnit) (unit.PropertyUnit, error) {
	s.byID[u.ID()] = u
	return u, nil
}

func (s *stubUnits) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	return nil
}

type repoint struct{ from, to uuid.UUID }

type stubRelations struct {
	relation.Repository
	persons []repoint
	units   []repoint
}

func (s *stubRelations) RepointPerson(_ context.Context, from, to uuid.UUID) (int64, error) {
	s.persons = append(s.persons, repoint{from, to})
	return 2, nil
}

func (s *stubRelations) RepointUnit(_ context.Context, from, to uuid.UUID) (int64, error) {
	s.units = append(s.units, repoint{from, to})
	return 1, nil
}

type stubHouseholds struct {
	household.Repository
	heads []repoint
	units []repoint
}

func (s *stubHouseholds) RepointHead(_ context.Context, from, to uuid.UUID) (int64, error) {
	s.heads = append(s.heads, repoint{from, to})
	return 1, nil
}

func (s *stubHouseholds) RepointUnit(_ context.Context, from, to uuid.UUID) (int64, error) {
	s.units = append(s.units, repoint{from, to})
	return 1, nil
}

type stubClaims struct {
	claim.Repository
	claimants []repoint
	units     []repoint
}

func (s *stubClaims) RepointClaimant(_ context.Context, from, to uuid.UUID) (int64, error) {
	s.claimants = append(s.claimants, repoint{from, to})
	return 0, nil
}

func (s *stubClaims) RepointUnit(_ context.Context, from, to uuid.UUID) (int64, error) {
	s.units = append(s.units, repoint{from, to})
	return 0, nil
}

func TestRegistryDispatch(t *testing.T) {
	ps := merging.NewPersonStrategy(&stubStaging{}, &stubPersons{}, &stubHouseholds{}, &stubRelations{}, &stubClaims{})
	reg := merging.NewRegistry(ps)

	got, err := reg.For(staging.EntityPerson)
	require.NoError(t, err)
	assert.Same(t, ps, got)
	assert.True(t, reg.Supports(staging.EntityPerson))

	_, err = reg.For(staging.EntityBuilding)
	assert.ErrorIs(t, err, merging.ErrNoStrategy)
	assert.False(t, reg.Supports(staging.EntityBuilding))
}

func TestPersonDiscardStaged(t *testing.T) {
	packageID := uuid.New()
	staged := &staging.Person{Record: staging.NewRecord(packageID, "p-7")}
	store := &stubStaging{persons: []*staging.Person{staged}}
	s := merging.NewPersonStrategy(store, &stubPersons{}, &stubHouseholds{}, &stubRelations{}, &stubClaims{})

	master := uuid.New()
	require.NoError(t, s.DiscardStaged(context.Background(), packageID, "p-7", &master))

	require.Len(t, store.skipped, 1)
	assert.Equal(t, staging.EntityPerson, store.skipped[0].entityType)
	assert.Equal(t, staged.ID, store.skipped[0].recordID)
	require.NotNil(t, store.skipped[0].masterID)
	assert.Equal(t, master, *store.skipped[0].masterID)
}

func TestPersonDiscardStagedUnknownRecord(t *testing.T) {
	s := merging.NewPersonStrategy(&stubStaging{}, &stubPersons{}, &stubHouseholds{}, &stubRelations{}, &stubClaims{})
	err := s.DiscardStaged(context.Background(), uuid.New(), "p-404", nil)
	assert.ErrorIs(t, err, merging.ErrStagedRecordNotFound)
}

func TestPersonAbsorbProduction(t *testing.T) {
	now := time.Now()
	masterID, discardedID := uuid.New(), uuid.New()
	master := person.Hydrate(masterID, "", "Ahmad", "", "", "Haddad",
		person.GenderMale, 0, "", "", true, now, now)
	discarded := person.Hydrate(discardedID, "020304050", "Ahmed", "Mahmoud", "Khalil", "Haddad",
		person.GenderMale, 1980, "+963-21-1111", "", true, now, now)

	persons := &stubPersons{byID: map[uuid.UUID]person.Person{masterID: master, discardedID: discarded}}
	relations := &stubRelations{}
	households := &stubHouseholds{}
	claims := &stubClaims{}
	s := merging.NewPersonStrategy(&stubStaging{}, persons, households, relations, claims)

	payload, err := s.AbsorbProduction(context.Background(), masterID, discardedID)
	require.NoError(t, err)

	merged := persons.byID[masterID]
	assert.Equal(t, "020304050", merged.NationalID())
	assert.Equal(t, "Mahmoud", merged.FatherName())
	assert.Equal(t, 1980, merged.BirthYear())
	assert.Equal(t, "Ahmad", merged.FirstName(), "identity fields keep the master's spelling")

	assert.Equal(t, []repoint{{discardedID, masterID}}, relations.persons)
	assert.Equal(t, []repoint{{discardedID, masterID}}, households.heads)
	assert.Equal(t, []repoint{{discardedID, masterID}}, claims.claimants)
	assert.Equal(t, []uuid.UUID{discardedID}, persons.deactivated)

	var doc struct {
		MasterID  uuid.UUID        `json:"master_id"`
		Changes   json.RawMessage  `json:"changes"`
		Repointed map[string]int64 `json:"repointed"`
	}
	require.NoError(t, json.Unmarshal(payload, &doc))
	assert.Equal(t, masterID, doc.MasterID)
	assert.Contains(t, string(doc.Changes), "father_name")
	assert.Equal(t, int64(2), doc.Repointed["relations"])
}

func TestPersonAbsorbKeepsFilledFields(t *testing.T) {
	now := time.Now()
	masterID, discardedID := uuid.New(), uuid.New()
	master := person.Hydrate(masterID, "111", "Ahmad", "Mahmoud", "Khalil", "Haddad",
		person.GenderMale, 1980, "+963", "checked on site", true, now, now)
	discarded := person.Hydrate(discardedID, "222", "Ahmed", "Other", "Else", "Haddad",
		person.GenderFemale, 1990, "+999", "conflicting note", true, now, now)

	persons := &stubPersons{byID: map[uuid.UUID]person.Person{masterID: master, discardedID: discarded}}
	s := merging.NewPersonStrategy(&stubStaging{}, persons, &stubHouseholds{}, &stubRelations{}, &stubClaims{})

	_, err := s.AbsorbProduction(context.Background(), masterID, discardedID)
	require.NoError(t, err)

	merged := persons.byID[masterID]
	assert.Equal(t, "111", merged.NationalID())
	assert.Equal(t, "Mahmoud", merged.FatherName())
	assert.Equal(t, 1980, merged.BirthYear())
}

func TestUnitAbsorbProduction(t *testing.T) {
	now := time.Now()
	buildingID := uuid.New()
	masterID, discardedID := uuid.New(), uuid.New()
	area := 85.5
	master := unit.Hydrate(masterID, buildingID, "1A", 0, nil, "", "", "", now, now)
	discarded := unit.Hydrate(discardedID, buildingID, "1-A", 2, &area, "apartment", "occupied", "", now, now)

	units := &stubUnits{byID: map[uuid.UUID]unit.PropertyUnit{masterID: master, discardedID: discarded}}
	relations := &stubRelations{}
	households := &stubHouseholds{}
	claims := &stubClaims{}
	s := merging.NewUnitStrategy(&stubStaging{}, units, households, relations, claims)

	payload, err := s.AbsorbProduction(context.Background(), masterID, discardedID)
	require.NoError(t, err)

	merged := units.byID[masterID]
	assert.Equal(t, 2, merged.FloorNumber())
	require.NotNil(t, merged.AreaSqm())
	assert.Equal(t, area, *merged.AreaSqm())
	assert.Equal(t, "apartment", merged.UnitType())
	assert.Equal(t, "1A", merged.UnitNumber(), "unit number keeps the master's form")

	assert.Equal(t, []repoint{{discardedID, masterID}}, relations.units)
	assert.Equal(t, []repoint{{discardedID, masterID}}, households.units)
	assert.Equal(t, []repoint{{discardedID, masterID}}, claims.units)
	assert.Equal(t, []uuid.UUID{discardedID}, units.deleted)
	assert.Contains(t, string(payload), "unit_type")
}

func TestUnitDiscardStaged(t *testing.T) {
	packageID := uuid.New()
	staged := &staging.PropertyUnit{Record: staging.NewRecord(packageID, "u-3")}
	store := &stubStaging{units: []*staging.PropertyUnit{staged}}
	s := merging.NewUnitStrategy(store, &stubUnits{}, &stubHouseholds{}, &stubRelations{}, &stubClaims{})

	require.NoError(t, s.DiscardStaged(context.Background(), packageID, "u-3", nil))

	require.Len(t, store.skipped, 1)
	assert.Equal(t, staging.EntityUnit, store.skipped[0].entityType)
	assert.Nil(t, store.skipped[0].masterID)
}
