package services

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/survey"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
)

type stampCall struct {
	entityType staging.EntityType
	recordID   uuid.UUID
	entityID   uuid.UUID
}

type approvalCall struct {
	packageID  uuid.UUID
	entityType staging.EntityType
	recordID   uuid.UUID
	approved   bool
}

type stubStaged struct {
	staging.Repository
	buildings []*staging.Building
	units     []*staging.PropertyUnit
	persons   []*staging.Person
	stamps    []stampCall
	approvals []approvalCall
}

func (s *stubStaged) BuildingsByPackage(context.Context, uuid.UUID) ([]*staging.Building, error) {
	return s.buildings, nil
}

func (s *stubStaged) UnitsByPackage(context.Context, uuid.UUID) ([]*staging.PropertyUnit, error) {
	return s.units, nil
}

func (s *stubStaged) PersonsByPackage(context.Context, uuid.UUID) ([]*staging.Person, error) {
	return s.persons, nil
}

func (s *stubStaged) StampCommitted(_ context.Context, entityType staging.EntityType, recordID, entityID uuid.UUID) error {
	s.stamps = append(s.stamps, stampCall{entityType, recordID, entityID})
	return nil
}

func (s *stubStaged) SetApproval(_ context.Context, packageID uuid.UUID, entityType staging.EntityType, recordID uuid.UUID, approved bool) error {
	s.approvals = append(s.approvals, approvalCall{packageID, entityType, recordID, approved})
	return nil
}

type stubConflicts struct {
	conflict.Repository
	resolved []*conflict.Conflict
	existing [][2]conflict.Ref
	created  []*conflict.Conflict
}

func (s *stubConflicts) GetByPackage(_ context.Context, _ uuid.UUID, _ *conflict.FindParams) ([]*conflict.Conflict, error) {
	return s.resolved, nil
}

func (s *stubConflicts) ExistsPair(_ context.Context, _ uuid.UUID, left, right conflict.Ref) (bool, error) {
	for _, pair := range s.existing {
		if pair[0].Equal(left) && pair[1].Equal(right) {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubConflicts) Create(_ context.Context, c *conflict.Conflict) (*conflict.Conflict, error) {
	s.created = append(s.created, c)
	return c, nil
}

func (s *stubConflicts) CountOpen(_ context.Context, _ uuid.UUID) (int64, error) {
	return int64(len(s.created)), nil
}

type stubPackages struct {
	importpackage.Repository
	pkg     importpackage.ImportPackage
	updated []importpackage.ImportPackage
}

func (s *stubPackages) GetByID(context.Context, uuid.UUID) (importpackage.ImportPackage, error) {
	return s.pkg, nil
}

func (s *stubPackages) Update(_ context.Context, p importpackage.ImportPackage) (importpackage.ImportPackage, error) {
	s.updated = append(s.updated, p)
	return p, nil
}

type stubBuildings struct {
	building.Repository
	created []building.Building
	err     error
}

func (s *stubBuildings) Create(_ context.Context, b building.Building) (building.Building, error) {
	if s.err != nil {
		return building.Building{}, s.err
	}
	h := building.Hydrate(uuid.New(), b.BuildingCode(), b.Address(), b.NeighborhoodCode(), b.BuildingType(),
		b.Status(), b.FloorsCount(), b.Latitude(), b.Longitude(), b.FootprintWKT(), b.Notes(), time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

type stubUnitWriter struct {
	unit.Repository
	created []unit.PropertyUnit
	keys    []unit.Key
}

func (s *stubUnitWriter) GetKeys(context.Context) ([]unit.Key, error) {
	return s.keys, nil
}

func (s *stubUnitWriter) Create(_ context.Context, u unit.PropertyUnit) (unit.PropertyUnit, error) {
	h := unit.Hydrate(uuid.New(), u.BuildingID(), u.UnitNumber(), u.FloorNumber(), u.AreaSqm(),
		u.UnitType(), u.OccupancyStatus(), u.Notes(), time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

type stubPersonWriter struct {
	person.Repository
	created []person.Person
	active  []person.Person
}

func (s *stubPersonWriter) GetActive(context.Context) ([]person.Person, error) {
	return s.active, nil
}

func (s *stubPersonWriter) Create(_ context.Context, p person.Person) (person.Person, error) {
	h := person.Hydrate(uuid.New(), p.NationalID(), p.FirstName(), p.FatherName(), p.GrandfatherName(),
		p.FamilyName(), p.Gender(), p.BirthYear(), p.Phone(), p.Notes(), true, time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

type stubHouseholdWriter struct {
	household.Repository
	created []household.Household
}

func (s *stubHouseholdWriter) Create(_ context.Context, h household.Household) (household.Household, error) {
	out := household.Hydrate(uuid.New(), h.UnitID(), h.HeadPersonID(), h.Size(), h.MaleCount(), h.FemaleCount(),
		h.MaleChildCount(), h.FemaleChildCount(), h.ElderlyCount(), h.DisabledCount(), h.DisplacementStatus(),
		time.Now(), time.Now())
	s.created = append(s.created, out)
	return out, nil
}

type stubRelationWriter struct {
	relation.Repository
	created []relation.Relation
}

func (s *stubRelationWriter) Create(_ context.Context, r relation.Relation) (relation.Relation, error) {
	h := relation.Hydrate(uuid.New(), r.PersonID(), r.UnitID(), r.RelationType(), r.OwnershipShare(),
		r.StartDate(), r.Notes(), time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

type linkCall struct {
	evidenceID uuid.UUID
	claimID    uuid.UUID
}

type stubEvidenceWriter struct {
	evidence.Repository
	created []evidence.Evidence
	links   []linkCall
	linkErr error
}

func (s *stubEvidenceWriter) Create(_ context.Context, e evidence.Evidence) (evidence.Evidence, error) {
	h := evidence.Hydrate(uuid.New(), e.RelationID(), e.ClaimID(), e.EvidenceType(), e.DocumentNumber(),
		e.IssuedBy(), e.IssueDate(), e.AttachmentID(), time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

func (s *stubEvidenceWriter) LinkClaim(_ context.Context, evidenceID, claimID uuid.UUID) error {
	if s.linkErr != nil {
		return s.linkErr
	}
	s.links = append(s.links, linkCall{evidenceID, claimID})
	return nil
}

type stubClaimWriter struct {
	claim.Repository
	created []claim.Claim
}

func (s *stubClaimWriter) Create(_ context.Context, c claim.Claim) (claim.Claim, error) {
	h := claim.Hydrate(uuid.New(), c.ClaimantID(), c.UnitID(), c.ClaimType(), c.Status(), c.Description(),
		c.FiledDate(), time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

type stubSurveyWriter struct {
	survey.Repository
	created []survey.Survey
}

func (s *stubSurveyWriter) Create(_ context.Context, v survey.Survey) (survey.Survey, error) {
	h := survey.Hydrate(uuid.New(), v.BuildingID(), v.SurveyorName(), v.SurveyDate(), v.SurveyType(),
		v.PackageID(), v.Notes(), time.Now(), time.Now())
	s.created = append(s.created, h)
	return h, nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func validRecord(originalID string) staging.Record {
	rec := staging.NewRecord(uuid.New(), originalID)
	rec.Finalize()
	return rec
}

func skippedRecord(originalID string, masterID *uuid.UUID) staging.Record {
	rec := staging.NewRecord(uuid.New(), originalID)
	rec.Skip(masterID)
	return rec
}

func rejectedRecord(originalID string) staging.Record {
	rec := staging.NewRecord(uuid.New(), originalID)
	rec.AddError("E_REQUIRED", "address", "address is required")
	rec.Finalize()
	return rec
}
