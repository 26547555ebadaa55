package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/container"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

// UnpackService reads a survey container and stages its rows for
// validation. Unpacking the same package again first purges whatever a
// previous attempt staged, so a retry never duplicates rows.
type UnpackService struct {
	staged  staging.Repository
	storage attachment.Storage
	log     logrus.FieldLogger
}

// NewUnpackService wires the unpacker. storage is the staging-area store
// that holds extracted attachment blobs until commit promotes them.
func NewUnpackService(staged staging.Repository, storage attachment.Storage, log logrus.FieldLogger) *UnpackService {
	return &UnpackService{
		staged:  staged,
		storage: storage,
		log:     log,
	}
}

// Unpack opens the package's container, verifies the manifest, stages every
// entity table and extracts attachment blobs. Structural container errors
// abort with nothing staged; the caller fails the package.
func (s *UnpackService) Unpack(ctx context.Context, pkg importpackage.ImportPackage) (importpackage.RecordCounts, error) {
	reader, err := container.Open(pkg.ContainerPath())
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	manifest, err := reader.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	if manifest.PackageCode != pkg.PackageCode() {
		return nil, &container.StructuralError{
			Table:  container.TableManifest,
			Reason: fmt.Sprintf("package code %q does not match ingested code %q", manifest.PackageCode, pkg.PackageCode()),
		}
	}

	// A partially staged earlier attempt must not leak into this one.
	if err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.staged.DeleteByPackage(txCtx, pkg.ID())
	}); err != nil {
		return nil, errors.Wrap(err, "purge previous staging rows")
	}

	buildings, err := s.stageBuildings(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	units, err := s.stageUnits(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	persons, err := s.stagePersons(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	households, err := s.stageHouseholds(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	relations, err := s.stageRelations(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	evidences, err := s.stageEvidences(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	claims, err := s.stageClaims(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}
	surveys, err := s.stageSurveys(ctx, reader, pkg.ID())
	if err != nil {
		return nil, err
	}

	// Blobs are stamped onto the in-memory evidence rows before insert so
	// the staged row already carries its file metadata.
	if err := s.extractAttachments(ctx, reader, pkg.ID(), evidences); err != nil {
		return nil, err
	}

	inserts := []func(context.Context) error{
		func(c context.Context) error { return s.staged.InsertBuildings(c, buildings) },
		func(c context.Context) error { return s.staged.InsertUnits(c, units) },
		func(c context.Context) error { return s.staged.InsertPersons(c, persons) },
		func(c context.Context) error { return s.staged.InsertHouseholds(c, households) },
		func(c context.Context) error { return s.staged.InsertRelations(c, relations) },
		func(c context.Context) error { return s.staged.InsertEvidences(c, evidences) },
		func(c context.Context) error { return s.staged.InsertClaims(c, claims) },
		func(c context.Context) error { return s.staged.InsertSurveys(c, surveys) },
	}
	for _, insert := range inserts {
		if err := composables.InTx(ctx, insert); err != nil {
			return nil, err
		}
	}

	counts := importpackage.RecordCounts{
		staging.EntityBuilding:  len(buildings),
		staging.EntityUnit:      len(units),
		staging.EntityPerson:    len(persons),
		staging.EntityHousehold: len(households),
		staging.EntityRelation:  len(relations),
		staging.EntityEvidence:  len(evidences),
		staging.EntityClaim:     len(claims),
		staging.EntitySurvey:    len(surveys),
	}
	s.log.WithFields(logrus.Fields{
		"package": pkg.PackageCode(),
		"records": counts.Total(),
	}).Info("unpack: container staged")
	return counts, nil
}

func (s *UnpackService) stageBuildings(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Building, error) {
	rows, err := r.Buildings(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Building, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.Building{
			Record:           staging.NewRecord(packageID, row.OriginalID),
			BuildingCode:     text(row.BuildingCode),
			Address:          text(row.Address),
			NeighborhoodCode: text(row.NeighborhoodCode),
			BuildingType:     text(row.BuildingType),
			Status:           text(row.Status),
			FloorsCount:      intPtr(row.FloorsCount),
			Latitude:         floatPtr(row.Latitude),
			Longitude:        floatPtr(row.Longitude),
			FootprintWKT:     text(row.FootprintWKT),
			Notes:            text(row.Notes),
		})
	}
	return out, nil
}

func (s *UnpackService) stageUnits(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.PropertyUnit, error) {
	rows, err := r.Units(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.PropertyUnit, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.PropertyUnit{
			Record:          staging.NewRecord(packageID, row.OriginalID),
			BuildingRef:     text(row.BuildingRef),
			UnitNumber:      text(row.UnitNumber),
			FloorNumber:     intPtr(row.FloorNumber),
			AreaSqm:         floatPtr(row.AreaSqm),
			UnitType:        text(row.UnitType),
			OccupancyStatus: text(row.OccupancyStatus),
			Notes:           text(row.Notes),
		})
	}
	return out, nil
}

func (s *UnpackService) stagePersons(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Person, error) {
	rows, err := r.Persons(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Person, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.Person{
			Record:          staging.NewRecord(packageID, row.OriginalID),
			NationalID:      text(row.NationalID),
			FirstName:       text(row.FirstName),
			FatherName:      text(row.FatherName),
			GrandfatherName: text(row.GrandfatherName),
			FamilyName:      text(row.FamilyName),
			Gender:          text(row.Gender),
			BirthYear:       intPtr(row.BirthYear),
			Phone:           text(row.Phone),
			Notes:           text(row.Notes),
		})
	}
	return out, nil
}

func (s *UnpackService) stageHouseholds(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Household, error) {
	rows, err := r.Households(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Household, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.Household{
			Record:             staging.NewRecord(packageID, row.OriginalID),
			UnitRef:            text(row.UnitRef),
			HeadPersonRef:      text(row.HeadPersonRef),
			HouseholdSize:      intPtr(row.HouseholdSize),
			MaleCount:          count(row.MaleCount),
			FemaleCount:        count(row.FemaleCount),
			MaleChildCount:     count(row.MaleChildCount),
			FemaleChildCount:   count(row.FemaleChildCount),
			ElderlyCount:       count(row.ElderlyCount),
			DisabledCount:      count(row.DisabledCount),
			DisplacementStatus: text(row.DisplacementStatus),
			Notes:              text(row.Notes),
		})
	}
	return out, nil
}

func (s *UnpackService) stageRelations(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Relation, error) {
	rows, err := r.Relations(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Relation, 0, len(rows))
	for _, row := range rows {
		share := decimal.Decimal{}
		if row.OwnershipShare.Valid {
			share = decimal.NewFromFloat(row.OwnershipShare.Float64)
		}
		out = append(out, &staging.Relation{
			Record:         staging.NewRecord(packageID, row.OriginalID),
			PersonRef:      text(row.PersonRef),
			UnitRef:        text(row.UnitRef),
			RelationType:   text(row.RelationType),
			OwnershipShare: share,
			StartDate:      text(row.StartDate),
			Notes:          text(row.Notes),
		})
	}
	return out, nil
}

func (s *UnpackService) stageEvidences(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Evidence, error) {
	rows, err := r.Evidences(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Evidence, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.Evidence{
			Record:         staging.NewRecord(packageID, row.OriginalID),
			RelationRef:    text(row.RelationRef),
			ClaimRef:       text(row.ClaimRef),
			EvidenceType:   text(row.EvidenceType),
			DocumentNumber: text(row.DocumentNumber),
			IssuedBy:       text(row.IssuedBy),
			IssueDate:      text(row.IssueDate),
			FileName:       text(row.FileName),
			Notes:          text(row.Notes),
		})
	}
	return out, nil
}

func (s *UnpackService) stageClaims(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Claim, error) {
	rows, err := r.Claims(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Claim, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.Claim{
			Record:      staging.NewRecord(packageID, row.OriginalID),
			ClaimantRef: text(row.ClaimantRef),
			UnitRef:     text(row.UnitRef),
			ClaimType:   text(row.ClaimType),
			ClaimStatus: text(row.ClaimStatus),
			Description: text(row.Description),
			FiledDate:   text(row.FiledDate),
		})
	}
	return out, nil
}

func (s *UnpackService) stageSurveys(ctx context.Context, r *container.Reader, packageID uuid.UUID) ([]*staging.Survey, error) {
	rows, err := r.Surveys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*staging.Survey, 0, len(rows))
	for _, row := range rows {
		out = append(out, &staging.Survey{
			Record:       staging.NewRecord(packageID, row.OriginalID),
			BuildingRef:  text(row.BuildingRef),
			SurveyorName: text(row.SurveyorName),
			SurveyDate:   text(row.SurveyDate),
			SurveyType:   text(row.SurveyType),
			Notes:        text(row.Notes),
		})
	}
	return out, nil
}

// extractAttachments writes each blob into the package's staging area and
// stamps hash, size, mime type and storage path onto the owning evidence.
// A blob pointing at no staged evidence is logged and dropped; it cannot
// carry a finding because there is no record to attach one to.
func (s *UnpackService) extractAttachments(ctx context.Context, r *container.Reader, packageID uuid.UUID, evidences []*staging.Evidence) error {
	byRef := make(map[string]*staging.Evidence, len(evidences))
	for _, ev := range evidences {
		byRef[ev.OriginalID] = ev
	}

	return r.ForEachAttachment(ctx, func(row container.AttachmentRow) error {
		ref := strings.TrimSpace(row.EvidenceRef.String)
		ev, ok := byRef[ref]
		if !ok {
			s.log.WithFields(logrus.Fields{
				"package":      packageID,
				"evidence_ref": ref,
			}).Warn("unpack: attachment blob references no staged evidence, dropped")
			return nil
		}

		sum := sha256.Sum256(row.Content)
		hash := hex.EncodeToString(sum[:])
		key := fmt.Sprintf("%s/%s", packageID, hash)
		size, err := s.storage.Save(ctx, key, bytes.NewReader(row.Content))
		if err != nil {
			return errors.Wrapf(err, "store attachment blob for evidence %q", ref)
		}

		if name := text(row.FileName); name != "" {
			ev.FileName = name
		}
		ev.FileHash = hash
		ev.FileSize = size
		ev.MimeType = mimetype.Detect(row.Content).String()
		ev.FilePath = key
		return nil
	})
}

func text(v sql.NullString) string {
	return strings.TrimSpace(v.String)
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// count treats an absent demographic counter as zero; the container exports
// them as nullable but validation reasons over plain integers.
func count(v sql.NullInt64) int {
	return int(v.Int64)
}
