package persistence

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/audit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence/models"
)

func parseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrapf(err, "invalid uuid in %s", field)
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

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullUUIDString(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

// marshalFindings keeps the column a JSON array even when no findings exist.
func marshalFindings(findings []staging.Finding) ([]byte, error) {
	if findings == nil {
		findings = []staging.Finding{}
	}
	return json.Marshal(findings)
}

func unmarshalFindings(raw []byte) ([]staging.Finding, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var findings []staging.Finding
	if err := json.Unmarshal(raw, &findings); err != nil {
		return nil, errors.Wrap(err, "decode findings")
	}
	if len(findings) == 0 {
		return nil, nil
	}
	return findings, nil
}

func toDomainPackage(row *models.ImportPackage) (importpackage.ImportPackage, error) {
	id, err := parseUUID("import_packages.id", row.ID)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}
	importedBy, err := parseUUID("import_packages.imported_by", row.ImportedBy)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	counts := importpackage.RecordCounts{}
	if len(row.RecordCounts) > 0 {
		if err := json.Unmarshal(row.RecordCounts, &counts); err != nil {
			return importpackage.ImportPackage{}, errors.Wrap(err, "decode record counts")
		}
	}

	var validationReport *importpackage.ValidationReport
	if len(row.ValidationReport) > 0 {
		validationReport = &importpackage.ValidationReport{}
		if err := json.Unmarshal(row.ValidationReport, validationReport); err != nil {
			return importpackage.ImportPackage{}, errors.Wrap(err, "decode validation report")
		}
	}
	var commitReport *importpackage.CommitReport
	if len(row.CommitReport) > 0 {
		commitReport = &importpackage.CommitReport{}
		if err := json.Unmarshal(row.CommitReport, commitReport); err != nil {
			return importpackage.ImportPackage{}, errors.Wrap(err, "decode commit report")
		}
	}

	return importpackage.Hydrate(importpackage.Hydration{
		ID:               id,
		PackageCode:      row.PackageCode,
		Status:           importpackage.Status(row.Status),
		FailedStage:      importpackage.Stage(row.FailedStage.String),
		OriginalFileName: row.OriginalFileName,
		ContainerPath:    row.ContainerPath,
		ArchivePath:      row.ArchivePath.String,
		Manifest: importpackage.Manifest{
			PackageCode:   row.PackageCode,
			SchemaVersion: row.SchemaVersion.String,
			ExportedBy:    row.ExportedBy.String,
			ExportedAt:    timePtr(row.ExportedAt),
			DeviceID:      row.DeviceID.String,
		},
		ImportedBy:             importedBy,
		RecordCounts:           counts,
		HasUnresolvedConflicts: row.HasUnresolvedConflicts,
		ValidationReport:       validationReport,
		CommitReport:           commitReport,
		ErrorMessage:           row.ErrorMessage.String,
		ValidatedAt:            timePtr(row.ValidatedAt),
		ReviewedAt:             timePtr(row.ReviewedAt),
		CommittedAt:            timePtr(row.CommittedAt),
		CreatedAt:              row.CreatedAt,
		UpdatedAt:              row.UpdatedAt,
	}), nil
}

func toDBPackage(p importpackage.ImportPackage) (*models.ImportPackage, error) {
	counts, err := json.Marshal(p.RecordCounts())
	if err != nil {
		return nil, errors.Wrap(err, "encode record counts")
	}

	var validationReport []byte
	if p.ValidationReport() != nil {
		validationReport, err = json.Marshal(p.ValidationReport())
		if err != nil {
			return nil, errors.Wrap(err, "encode validation report")
		}
	}
	var commitReport []byte
	if p.CommitReport() != nil {
		commitReport, err = json.Marshal(p.CommitReport())
		if err != nil {
			return nil, errors.Wrap(err, "encode commit report")
		}
	}

	m := p.Manifest()
	return &models.ImportPackage{
		ID:                     p.ID().String(),
		PackageCode:            p.PackageCode(),
		Status:                 string(p.Status()),
		FailedStage:            nullString(string(p.FailedStage())),
		OriginalFileName:       p.OriginalFileName(),
		ContainerPath:          p.ContainerPath(),
		ArchivePath:            nullString(p.ArchivePath()),
		SchemaVersion:          nullString(m.SchemaVersion),
		ExportedBy:             nullString(m.ExportedBy),
		ExportedAt:             nullTime(m.ExportedAt),
		DeviceID:               nullString(m.DeviceID),
		ImportedBy:             p.ImportedBy().String(),
		RecordCounts:           counts,
		HasUnresolvedConflicts: p.HasUnresolvedConflicts(),
		ValidationReport:       validationReport,
		CommitReport:           commitReport,
		ErrorMessage:           nullString(p.ErrorMessage()),
		ValidatedAt:            nullTime(p.ValidatedAt()),
		ReviewedAt:             nullTime(p.ReviewedAt()),
		CommittedAt:            nullTime(p.CommittedAt()),
	}, nil
}

func toDomainEnvelope(m *models.StagingEnvelope) (staging.Record, error) {
	id, err := parseUUID("staging.id", m.ID)
	if err != nil {
		return staging.Record{}, err
	}
	packageID, err := parseUUID("staging.import_package_id", m.PackageID)
	if err != nil {
		return staging.Record{}, err
	}
	committedID, err := parseNullUUID("staging.committed_entity_id", m.CommittedEntityID)
	if err != nil {
		return staging.Record{}, err
	}
	errs, err := unmarshalFindings(m.ValidationErrors)
	if err != nil {
		return staging.Record{}, err
	}
	warnings, err := unmarshalFindings(m.ValidationWarnings)
	if err != nil {
		return staging.Record{}, err
	}
	return staging.Record{
		ID:                 id,
		PackageID:          packageID,
		OriginalID:         m.OriginalID,
		ValidationStatus:   staging.Status(m.ValidationStatus),
		ValidationErrors:   errs,
		ValidationWarnings: warnings,
		ApprovedForCommit:  m.ApprovedForCommit,
		CommittedEntityID:  committedID,
		StagedAt:           m.StagedAt,
	}, nil
}

// envelopeValues renders the envelope's insert values in the shared column
// order: id, import_package_id, original_id, validation_status,
// validation_errors, validation_warnings, approved_for_commit,
// committed_entity_id, staged_at.
func envelopeValues(r staging.Record) ([]any, error) {
	errs, err := marshalFindings(r.ValidationErrors)
	if err != nil {
		return nil, err
	}
	warnings, err := marshalFindings(r.ValidationWarnings)
	if err != nil {
		return nil, err
	}
	return []any{
		r.ID.String(),
		r.PackageID.String(),
		r.OriginalID,
		string(r.ValidationStatus),
		errs,
		warnings,
		r.ApprovedForCommit,
		nullUUIDString(r.CommittedEntityID),
		r.StagedAt,
	}, nil
}

func toDomainStagingBuilding(m *models.StagingBuilding) (*staging.Building, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.Building{
		Record:           rec,
		BuildingCode:     m.BuildingCode,
		Address:          m.Address,
		NeighborhoodCode: m.NeighborhoodCode,
		BuildingType:     m.BuildingType,
		Status:           m.BuildingStatus,
		FloorsCount:      intPtr(m.FloorsCount),
		Latitude:         floatPtr(m.Latitude),
		Longitude:        floatPtr(m.Longitude),
		FootprintWKT:     m.FootprintWKT,
		Notes:            m.Notes,
	}, nil
}

func toDomainStagingUnit(m *models.StagingUnit) (*staging.PropertyUnit, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.PropertyUnit{
		Record:          rec,
		BuildingRef:     m.BuildingRef,
		UnitNumber:      m.UnitNumber,
		FloorNumber:     intPtr(m.FloorNumber),
		AreaSqm:         floatPtr(m.AreaSqm),
		UnitType:        m.UnitType,
		OccupancyStatus: m.OccupancyStatus,
		Notes:           m.Notes,
	}, nil
}

func toDomainStagingPerson(m *models.StagingPerson) (*staging.Person, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.Person{
		Record:          rec,
		NationalID:      m.NationalID,
		FirstName:       m.FirstName,
		FatherName:      m.FatherName,
		GrandfatherName: m.GrandfatherName,
		FamilyName:      m.FamilyName,
		Gender:          m.Gender,
		BirthYear:       intPtr(m.BirthYear),
		Phone:           m.Phone,
		Notes:           m.Notes,
	}, nil
}

func toDomainStagingHousehold(m *models.StagingHousehold) (*staging.Household, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.Household{
		Record:             rec,
		UnitRef:            m.UnitRef,
		HeadPersonRef:      m.HeadPersonRef,
		HouseholdSize:      intPtr(m.HouseholdSize),
		MaleCount:          m.MaleCount,
		FemaleCount:        m.FemaleCount,
		MaleChildCount:     m.MaleChildCount,
		FemaleChildCount:   m.FemaleChildCount,
		ElderlyCount:       m.ElderlyCount,
		DisabledCount:      m.DisabledCount,
		DisplacementStatus: m.DisplacementStatus,
		Notes:              m.Notes,
	}, nil
}

func toDomainStagingRelation(m *models.StagingRelation) (*staging.Relation, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	share := decimal.Zero
	if m.OwnershipShare.Valid && m.OwnershipShare.String != "" {
		share, err = decimal.NewFromString(m.OwnershipShare.String)
		if err != nil {
			return nil, errors.Wrap(err, "invalid ownership share")
		}
	}
	return &staging.Relation{
		Record:         rec,
		PersonRef:      m.PersonRef,
		UnitRef:        m.UnitRef,
		RelationType:   m.RelationType,
		OwnershipShare: share,
		StartDate:      m.StartDate,
		Notes:          m.Notes,
	}, nil
}

func toDomainStagingEvidence(m *models.StagingEvidence) (*staging.Evidence, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.Evidence{
		Record:         rec,
		RelationRef:    m.RelationRef,
		ClaimRef:       m.ClaimRef,
		EvidenceType:   m.EvidenceType,
		DocumentNumber: m.DocumentNumber,
		IssuedBy:       m.IssuedBy,
		IssueDate:      m.IssueDate,
		FileName:       m.FileName,
		FileHash:       m.FileHash,
		FileSize:       m.FileSize,
		MimeType:       m.MimeType,
		FilePath:       m.FilePath,
		Notes:          m.Notes,
	}, nil
}

func toDomainStagingClaim(m *models.StagingClaim) (*staging.Claim, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.Claim{
		Record:      rec,
		ClaimantRef: m.ClaimantRef,
		UnitRef:     m.UnitRef,
		ClaimType:   m.ClaimType,
		ClaimStatus: m.ClaimStatus,
		Description: m.Description,
		FiledDate:   m.FiledDate,
	}, nil
}

func toDomainStagingSurvey(m *models.StagingSurvey) (*staging.Survey, error) {
	rec, err := toDomainEnvelope(&m.StagingEnvelope)
	if err != nil {
		return nil, err
	}
	return &staging.Survey{
		Record:       rec,
		BuildingRef:  m.BuildingRef,
		SurveyorName: m.SurveyorName,
		SurveyDate:   m.SurveyDate,
		SurveyType:   m.SurveyType,
		Notes:        m.Notes,
	}, nil
}

func toDomainConflict(m *models.Conflict) (*conflict.Conflict, error) {
	id, err := parseUUID("import_conflicts.id", m.ID)
	if err != nil {
		return nil, err
	}
	packageID, err := parseUUID("import_conflicts.import_package_id", m.PackageID)
	if err != nil {
		return nil, err
	}
	resolvedBy, err := parseNullUUID("import_conflicts.resolved_by", m.ResolvedBy)
	if err != nil {
		return nil, err
	}

	var criteria conflict.MatchCriteria
	if len(m.MatchedCriteria) > 0 {
		if err := json.Unmarshal(m.MatchedCriteria, &criteria); err != nil {
			return nil, errors.Wrap(err, "decode matched criteria")
		}
	}

	opts := []conflict.Option{
		conflict.WithID(id),
		conflict.WithStatus(conflict.Status(m.Status)),
		conflict.WithResolution(conflict.Resolution(m.Resolution)),
		conflict.WithAutoDetected(m.AutoDetected),
		conflict.WithCreatedAt(m.CreatedAt),
	}
	if len(m.ResolutionPayload) > 0 {
		opts = append(opts, conflict.WithResolutionPayload(m.ResolutionPayload))
	}
	if resolvedBy != nil {
		opts = append(opts, conflict.WithResolvedBy(*resolvedBy))
	}
	if t := timePtr(m.ResolvedAt); t != nil {
		opts = append(opts, conflict.WithResolvedAt(*t))
	}

	left := conflict.Ref{Source: conflict.Source(m.LeftSource), Key: m.LeftKey, Label: m.LeftLabel}
	right := conflict.Ref{Source: conflict.Source(m.RightSource), Key: m.RightKey, Label: m.RightLabel}
	return conflict.New(
		packageID,
		staging.EntityType(m.EntityType),
		left,
		right,
		m.Score,
		conflict.Confidence(m.Confidence),
		criteria,
		opts...,
	), nil
}

func toDBConflict(c *conflict.Conflict) (*models.Conflict, error) {
	criteria, err := json.Marshal(c.MatchedCriteria())
	if err != nil {
		return nil, errors.Wrap(err, "encode matched criteria")
	}
	return &models.Conflict{
		ID:                c.ID().String(),
		PackageID:         c.PackageID().String(),
		EntityType:        string(c.EntityType()),
		LeftSource:        string(c.Left().Source),
		LeftKey:           c.Left().Key,
		LeftLabel:         c.Left().Label,
		RightSource:       string(c.Right().Source),
		RightKey:          c.Right().Key,
		RightLabel:        c.Right().Label,
		Score:             c.Score(),
		Confidence:        string(c.Confidence()),
		MatchedCriteria:   criteria,
		Status:            string(c.Status()),
		Resolution:        string(c.Resolution()),
		ResolutionPayload: c.ResolutionPayload(),
		AutoDetected:      c.AutoDetected(),
		ResolvedBy:        nullUUIDString(c.ResolvedBy()),
		ResolvedAt:        nullTime(c.ResolvedAt()),
		CreatedAt:         c.CreatedAt(),
	}, nil
}

func toDomainAuditEntry(m *models.AuditEntry) (*audit.Entry, error) {
	packageID, err := parseUUID("import_audit_log.import_package_id", m.PackageID)
	if err != nil {
		return nil, err
	}
	actorID, err := parseUUID("import_audit_log.actor_id", m.ActorID)
	if err != nil {
		return nil, err
	}
	return &audit.Entry{
		ID:        m.ID,
		PackageID: packageID,
		ActorID:   actorID,
		Action:    m.Action,
		Payload:   m.Payload,
		CreatedAt: m.CreatedAt,
	}, nil
}
