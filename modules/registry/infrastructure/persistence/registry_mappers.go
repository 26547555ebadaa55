package persistence

import (
	"database/sql"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/survey"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
)

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "parse %s %q", field, raw)
	}
	return id, nil
}

func parseNullUUID(field string, raw sql.NullString) (*uuid.UUID, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	id, err := parseUUID(field, raw.String)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func nullUUIDString(id *uuid.UUID) sql.NullString {
	if id == nil || *id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func toDomainBuilding(row *models.Building) (building.Building, error) {
	id, err := parseUUID("building id", row.ID)
	if err != nil {
		return building.Building{}, err
	}
	return building.Hydrate(
		id,
		row.BuildingCode,
		row.Address,
		row.NeighborhoodCode,
		row.BuildingType,
		row.Status,
		int(row.FloorsCount.Int32),
		floatPtr(row.Latitude),
		floatPtr(row.Longitude),
		row.FootprintWKT.String,
		row.Notes,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBBuilding(b building.Building) *models.Building {
	row := &models.Building{
		BuildingCode:     b.BuildingCode(),
		Address:          b.Address(),
		NeighborhoodCode: b.NeighborhoodCode(),
		BuildingType:     b.BuildingType(),
		Status:           b.Status(),
		Latitude:         nullFloat(b.Latitude()),
		Longitude:        nullFloat(b.Longitude()),
		Notes:            b.Notes(),
		CreatedAt:        b.CreatedAt(),
		UpdatedAt:        b.UpdatedAt(),
	}
	if b.ID() != uuid.Nil {
		row.ID = b.ID().String()
	}
	if b.FloorsCount() > 0 {
		row.FloorsCount = sql.NullInt32{Int32: int32(b.FloorsCount()), Valid: true}
	}
	if b.FootprintWKT() != "" {
		row.FootprintWKT = sql.NullString{String: b.FootprintWKT(), Valid: true}
	}
	return row
}

func toDomainUnit(row *models.PropertyUnit) (unit.PropertyUnit, error) {
	id, err := parseUUID("unit id", row.ID)
	if err != nil {
		return unit.PropertyUnit{}, err
	}
	buildingID, err := parseUUID("unit building id", row.BuildingID)
	if err != nil {
		return unit.PropertyUnit{}, err
	}
	return unit.Hydrate(
		id,
		buildingID,
		row.UnitNumber,
		int(row.FloorNumber.Int32),
		floatPtr(row.AreaSqm),
		row.UnitType,
		row.OccupancyStatus,
		row.Notes,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBUnit(u unit.PropertyUnit) *models.PropertyUnit {
	row := &models.PropertyUnit{
		BuildingID:      u.BuildingID().String(),
		UnitNumber:      u.UnitNumber(),
		UnitType:        u.UnitType(),
		OccupancyStatus: u.OccupancyStatus(),
		AreaSqm:         nullFloat(u.AreaSqm()),
		Notes:           u.Notes(),
		CreatedAt:       u.CreatedAt(),
		UpdatedAt:       u.UpdatedAt(),
	}
	if u.ID() != uuid.Nil {
		row.ID = u.ID().String()
	}
	if u.FloorNumber() != 0 {
		row.FloorNumber = sql.NullInt32{Int32: int32(u.FloorNumber()), Valid: true}
	}
	return row
}

func toDomainPerson(row *models.Person) (person.Person, error) {
	id, err := parseUUID("person id", row.ID)
	if err != nil {
		return person.Person{}, err
	}
	gender, _ := person.ParseGender(row.Gender)
	return person.Hydrate(
		id,
		row.NationalID.String,
		row.FirstName,
		row.FatherName,
		row.GrandfatherName,
		row.FamilyName,
		gender,
		int(row.BirthYear.Int32),
		row.Phone,
		row.Notes,
		row.IsActive,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBPerson(p person.Person) *models.Person {
	row := &models.Person{
		FirstName:       p.FirstName(),
		FatherName:      p.FatherName(),
		GrandfatherName: p.GrandfatherName(),
		FamilyName:      p.FamilyName(),
		Gender:          string(p.Gender()),
		Phone:           p.Phone(),
		Notes:           p.Notes(),
		IsActive:        p.Active(),
		CreatedAt:       p.CreatedAt(),
		UpdatedAt:       p.UpdatedAt(),
	}
	if p.ID() != uuid.Nil {
		row.ID = p.ID().String()
	}
	if p.NationalID() != "" {
		row.NationalID = sql.NullString{String: p.NationalID(), Valid: true}
	}
	if p.BirthYear() != 0 {
		row.BirthYear = sql.NullInt32{Int32: int32(p.BirthYear()), Valid: true}
	}
	return row
}

func toDomainHousehold(row *models.Household) (household.Household, error) {
	id, err := parseUUID("household id", row.ID)
	if err != nil {
		return household.Household{}, err
	}
	unitID, err := parseUUID("household unit id", row.UnitID)
	if err != nil {
		return household.Household{}, err
	}
	headID, err := parseUUID("household head person id", row.HeadPersonID)
	if err != nil {
		return household.Household{}, err
	}
	return household.Hydrate(
		id,
		unitID,
		headID,
		row.Size,
		row.MaleCount,
		row.FemaleCount,
		row.MaleChildCount,
		row.FemaleChildCount,
		row.ElderlyCount,
		row.DisabledCount,
		row.DisplacementStatus,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBHousehold(h household.Household) *models.Household {
	row := &models.Household{
		UnitID:             h.UnitID().String(),
		HeadPersonID:       h.HeadPersonID().String(),
		Size:               h.Size(),
		MaleCount:          h.MaleCount(),
		FemaleCount:        h.FemaleCount(),
		MaleChildCount:     h.MaleChildCount(),
		FemaleChildCount:   h.FemaleChildCount(),
		ElderlyCount:       h.ElderlyCount(),
		DisabledCount:      h.DisabledCount(),
		DisplacementStatus: h.DisplacementStatus(),
		CreatedAt:          h.CreatedAt(),
		UpdatedAt:          h.UpdatedAt(),
	}
	if h.ID() != uuid.Nil {
		row.ID = h.ID().String()
	}
	return row
}

func toDomainRelation(row *models.Relation) (relation.Relation, error) {
	id, err := parseUUID("relation id", row.ID)
	if err != nil {
		return relation.Relation{}, err
	}
	personID, err := parseUUID("relation person id", row.PersonID)
	if err != nil {
		return relation.Relation{}, err
	}
	unitID, err := parseUUID("relation unit id", row.UnitID)
	if err != nil {
		return relation.Relation{}, err
	}
	share := decimal.Zero
	if row.OwnershipShare.Valid && row.OwnershipShare.String != "" {
		share, err = decimal.NewFromString(row.OwnershipShare.String)
		if err != nil {
			return relation.Relation{}, errors.Wrapf(err, "parse ownership share %q", row.OwnershipShare.String)
		}
	}
	relType, _ := relation.ParseType(row.RelationType)
	var startDate *time.Time
	if row.StartDate.Valid {
		d := row.StartDate.Time
		startDate = &d
	}
	return relation.Hydrate(
		id,
		personID,
		unitID,
		relType,
		share,
		startDate,
		row.Notes,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBRelation(r relation.Relation) *models.Relation {
	row := &models.Relation{
		PersonID:     r.PersonID().String(),
		UnitID:       r.UnitID().String(),
		RelationType: string(r.RelationType()),
		Notes:        r.Notes(),
		CreatedAt:    r.CreatedAt(),
		UpdatedAt:    r.UpdatedAt(),
	}
	if r.ID() != uuid.Nil {
		row.ID = r.ID().String()
	}
	if !r.OwnershipShare().IsZero() {
		row.OwnershipShare = sql.NullString{String: r.OwnershipShare().String(), Valid: true}
	}
	if r.StartDate() != nil {
		row.StartDate = sql.NullTime{Time: *r.StartDate(), Valid: true}
	}
	return row
}

func toDomainEvidence(row *models.Evidence) (evidence.Evidence, error) {
	id, err := parseUUID("evidence id", row.ID)
	if err != nil {
		return evidence.Evidence{}, err
	}
	relationID, err := parseNullUUID("evidence relation id", row.RelationID)
	if err != nil {
		return evidence.Evidence{}, err
	}
	claimID, err := parseNullUUID("evidence claim id", row.ClaimID)
	if err != nil {
		return evidence.Evidence{}, err
	}
	attachmentID, err := parseNullUUID("evidence attachment id", row.AttachmentID)
	if err != nil {
		return evidence.Evidence{}, err
	}
	var issueDate *time.Time
	if row.IssueDate.Valid {
		d := row.IssueDate.Time
		issueDate = &d
	}
	return evidence.Hydrate(
		id,
		relationID,
		claimID,
		row.EvidenceType,
		row.DocumentNumber,
		row.IssuedBy,
		issueDate,
		attachmentID,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBEvidence(e evidence.Evidence) *models.Evidence {
	row := &models.Evidence{
		RelationID:     nullUUIDString(e.RelationID()),
		ClaimID:        nullUUIDString(e.ClaimID()),
		EvidenceType:   e.EvidenceType(),
		DocumentNumber: e.DocumentNumber(),
		IssuedBy:       e.IssuedBy(),
		AttachmentID:   nullUUIDString(e.AttachmentID()),
		CreatedAt:      e.CreatedAt(),
		UpdatedAt:      e.UpdatedAt(),
	}
	if e.ID() != uuid.Nil {
		row.ID = e.ID().String()
	}
	if e.IssueDate() != nil {
		row.IssueDate = sql.NullTime{Time: *e.IssueDate(), Valid: true}
	}
	return row
}

func toDomainClaim(row *models.Claim) (claim.Claim, error) {
	id, err := parseUUID("claim id", row.ID)
	if err != nil {
		return claim.Claim{}, err
	}
	claimantID, err := parseUUID("claim claimant id", row.ClaimantID)
	if err != nil {
		return claim.Claim{}, err
	}
	unitID, err := parseUUID("claim unit id", row.UnitID)
	if err != nil {
		return claim.Claim{}, err
	}
	status, _ := claim.ParseStatus(row.Status)
	var filedDate *time.Time
	if row.FiledDate.Valid {
		d := row.FiledDate.Time
		filedDate = &d
	}
	return claim.Hydrate(
		id,
		claimantID,
		unitID,
		row.ClaimType,
		status,
		row.Description,
		filedDate,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBClaim(c claim.Claim) *models.Claim {
	row := &models.Claim{
		ClaimantID:  c.ClaimantID().String(),
		UnitID:      c.UnitID().String(),
		ClaimType:   c.ClaimType(),
		Status:      string(c.Status()),
		Description: c.Description(),
		CreatedAt:   c.CreatedAt(),
		UpdatedAt:   c.UpdatedAt(),
	}
	if c.ID() != uuid.Nil {
		row.ID = c.ID().String()
	}
	if c.FiledDate() != nil {
		row.FiledDate = sql.NullTime{Time: *c.FiledDate(), Valid: true}
	}
	return row
}

func toDomainSurvey(row *models.Survey) (survey.Survey, error) {
	id, err := parseUUID("survey id", row.ID)
	if err != nil {
		return survey.Survey{}, err
	}
	buildingID, err := parseUUID("survey building id", row.BuildingID)
	if err != nil {
		return survey.Survey{}, err
	}
	packageID, err := parseNullUUID("survey package id", row.PackageID)
	if err != nil {
		return survey.Survey{}, err
	}
	var surveyDate *time.Time
	if row.SurveyDate.Valid {
		d := row.SurveyDate.Time
		surveyDate = &d
	}
	return survey.Hydrate(
		id,
		buildingID,
		row.SurveyorName,
		surveyDate,
		row.SurveyType,
		packageID,
		row.Notes,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDBSurvey(s survey.Survey) *models.Survey {
	row := &models.Survey{
		BuildingID:   s.BuildingID().String(),
		SurveyorName: s.SurveyorName(),
		SurveyType:   s.SurveyType(),
		PackageID:    nullUUIDString(s.PackageID()),
		Notes:        s.Notes(),
		CreatedAt:    s.CreatedAt(),
		UpdatedAt:    s.UpdatedAt(),
	}
	if s.ID() != uuid.Nil {
		row.ID = s.ID().String()
	}
	if s.SurveyDate() != nil {
		row.SurveyDate = sql.NullTime{Time: *s.SurveyDate(), Valid: true}
	}
	return row
}

func toDomainAttachment(row *models.Attachment) (*attachment.Attachment, error) {
	id, err := parseUUID("attachment id", row.ID)
	if err != nil {
		return nil, err
	}
	return attachment.New(
		row.Hash,
		row.Path,
		row.Size,
		attachment.WithID(id),
		attachment.WithName(row.Name),
		attachment.WithMimeType(row.MimeType),
		attachment.WithCreatedAt(row.CreatedAt),
		attachment.WithUpdatedAt(row.UpdatedAt),
	), nil
}

func toDomainVocabularyCode(row *models.VocabularyCode) *vocabulary.Code {
	return vocabulary.New(
		row.Vocabulary,
		row.Code,
		vocabulary.WithLabel(row.Label),
		vocabulary.WithActive(row.IsActive),
		vocabulary.WithPosition(row.Position),
	)
}
