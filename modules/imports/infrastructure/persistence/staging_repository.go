package persistence

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var ErrStagingRecordNotFound = errors.New("staging record not found")

// envelopeColumns is the shared column prefix of every staging table; insert
// builders and scans keep this exact order.
const envelopeColumns = `id, import_package_id, original_id, validation_status, validation_errors,
        validation_warnings, approved_for_commit, committed_entity_id, staged_at`

var stagingTables = map[staging.EntityType]string{
	staging.EntityBuilding:  "staging_buildings",
	staging.EntityUnit:      "staging_property_units",
	staging.EntityPerson:    "staging_persons",
	staging.EntityHousehold: "staging_households",
	staging.EntityRelation:  "staging_relations",
	staging.EntityEvidence:  "staging_evidences",
	staging.EntityClaim:     "staging_claims",
	staging.EntitySurvey:    "staging_surveys",
}

func stagingTable(t staging.EntityType) (string, error) {
	table, ok := stagingTables[t]
	if !ok {
		return "", errors.Errorf("unknown staging entity type %q", t)
	}
	return table, nil
}

type PgStagingRepository struct{}

func NewStagingRepository() staging.Repository {
	return &PgStagingRepository{}
}

func envelopeTargets(m *models.StagingEnvelope) []any {
	return []any{
		&m.ID,
		&m.PackageID,
		&m.OriginalID,
		&m.ValidationStatus,
		&m.ValidationErrors,
		&m.ValidationWarnings,
		&m.ApprovedForCommit,
		&m.CommittedEntityID,
		&m.StagedAt,
	}
}

func (g *PgStagingRepository) insertBatch(ctx context.Context, table string, columns string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES", table, columns)
	q, args := repo.BatchInsertQueryN(prefix, rows)
	if _, err := tx.Exec(ctx, q, args...); err != nil {
		return errors.Wrapf(err, "failed to bulk insert into %s", table)
	}
	return nil
}

func (g *PgStagingRepository) InsertBuildings(ctx context.Context, rows []*staging.Building) error {
	values := make([][]any, 0, len(rows))
	for _, b := range rows {
		env, err := envelopeValues(b.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			b.BuildingCode,
			b.Address,
			b.NeighborhoodCode,
			b.BuildingType,
			b.Status,
			nullInt(b.FloorsCount),
			nullFloat(b.Latitude),
			nullFloat(b.Longitude),
			b.FootprintWKT,
			b.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_buildings", envelopeColumns+`,
        building_code, address, neighborhood_code, building_type, building_status,
        floors_count, latitude, longitude, footprint_wkt, notes`, values)
}

func (g *PgStagingRepository) InsertUnits(ctx context.Context, rows []*staging.PropertyUnit) error {
	values := make([][]any, 0, len(rows))
	for _, u := range rows {
		env, err := envelopeValues(u.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			u.BuildingRef,
			u.UnitNumber,
			nullInt(u.FloorNumber),
			nullFloat(u.AreaSqm),
			u.UnitType,
			u.OccupancyStatus,
			u.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_property_units", envelopeColumns+`,
        building_ref, unit_number, floor_number, area_sqm, unit_type, occupancy_status, notes`, values)
}

func (g *PgStagingRepository) InsertPersons(ctx context.Context, rows []*staging.Person) error {
	values := make([][]any, 0, len(rows))
	for _, p := range rows {
		env, err := envelopeValues(p.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			p.NationalID,
			p.FirstName,
			p.FatherName,
			p.GrandfatherName,
			p.FamilyName,
			p.Gender,
			nullInt(p.BirthYear),
			p.Phone,
			p.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_persons", envelopeColumns+`,
        national_id, first_name, father_name, grandfather_name, family_name, gender,
        birth_year, phone, notes`, values)
}

func (g *PgStagingRepository) InsertHouseholds(ctx context.Context, rows []*staging.Household) error {
	values := make([][]any, 0, len(rows))
	for _, h := range rows {
		env, err := envelopeValues(h.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			h.UnitRef,
			h.HeadPersonRef,
			nullInt(h.HouseholdSize),
			h.MaleCount,
			h.FemaleCount,
			h.MaleChildCount,
			h.FemaleChildCount,
			h.ElderlyCount,
			h.DisabledCount,
			h.DisplacementStatus,
			h.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_households", envelopeColumns+`,
        unit_ref, head_person_ref, household_size, male_count, female_count,
        male_child_count, female_child_count, elderly_count, disabled_count,
        displacement_status, notes`, values)
}

func (g *PgStagingRepository) InsertRelations(ctx context.Context, rows []*staging.Relation) error {
	values := make([][]any, 0, len(rows))
	for _, r := range rows {
		env, err := envelopeValues(r.Record)
		if err != nil {
			return err
		}
		var share any
		if !r.OwnershipShare.IsZero() {
			share = r.OwnershipShare
		}
		values = append(values, append(env,
			r.PersonRef,
			r.UnitRef,
			r.RelationType,
			share,
			r.StartDate,
			r.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_relations", envelopeColumns+`,
        person_ref, unit_ref, relation_type, ownership_share, start_date, notes`, values)
}

func (g *PgStagingRepository) InsertEvidences(ctx context.Context, rows []*staging.Evidence) error {
	values := make([][]any, 0, len(rows))
	for _, e := range rows {
		env, err := envelopeValues(e.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			e.RelationRef,
			e.ClaimRef,
			e.EvidenceType,
			e.DocumentNumber,
			e.IssuedBy,
			e.IssueDate,
			e.FileName,
			e.FileHash,
			e.FileSize,
			e.MimeType,
			e.FilePath,
			e.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_evidences", envelopeColumns+`,
        relation_ref, claim_ref, evidence_type, document_number, issued_by, issue_date,
        file_name, file_hash, file_size, mime_type, file_path, notes`, values)
}

func (g *PgStagingRepository) InsertClaims(ctx context.Context, rows []*staging.Claim) error {
	values := make([][]any, 0, len(rows))
	for _, c := range rows {
		env, err := envelopeValues(c.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			c.ClaimantRef,
			c.UnitRef,
			c.ClaimType,
			c.ClaimStatus,
			c.Description,
			c.FiledDate,
		))
	}
	return g.insertBatch(ctx, "staging_claims", envelopeColumns+`,
        claimant_ref, unit_ref, claim_type, claim_status, description, filed_date`, values)
}

func (g *PgStagingRepository) InsertSurveys(ctx context.Context, rows []*staging.Survey) error {
	values := make([][]any, 0, len(rows))
	for _, s := range rows {
		env, err := envelopeValues(s.Record)
		if err != nil {
			return err
		}
		values = append(values, append(env,
			s.BuildingRef,
			s.SurveyorName,
			s.SurveyDate,
			s.SurveyType,
			s.Notes,
		))
	}
	return g.insertBatch(ctx, "staging_surveys", envelopeColumns+`,
        building_ref, surveyor_name, survey_date, survey_type, notes`, values)
}

func (g *PgStagingRepository) BuildingsByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Building, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        building_code, address, neighborhood_code, building_type, building_status,
        floors_count, latitude, longitude, footprint_wkt, notes
        FROM staging_buildings WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged buildings")
	}
	defer rows.Close()

	var out []*staging.Building
	for rows.Next() {
		var row models.StagingBuilding
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.BuildingCode,
			&row.Address,
			&row.NeighborhoodCode,
			&row.BuildingType,
			&row.BuildingStatus,
			&row.FloorsCount,
			&row.Latitude,
			&row.Longitude,
			&row.FootprintWKT,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged building")
		}
		b, err := toDomainStagingBuilding(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) UnitsByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.PropertyUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        building_ref, unit_number, floor_number, area_sqm, unit_type, occupancy_status, notes
        FROM staging_property_units WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged units")
	}
	defer rows.Close()

	var out []*staging.PropertyUnit
	for rows.Next() {
		var row models.StagingUnit
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.BuildingRef,
			&row.UnitNumber,
			&row.FloorNumber,
			&row.AreaSqm,
			&row.UnitType,
			&row.OccupancyStatus,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged unit")
		}
		u, err := toDomainStagingUnit(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) PersonsByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        national_id, first_name, father_name, grandfather_name, family_name, gender,
        birth_year, phone, notes
        FROM staging_persons WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged persons")
	}
	defer rows.Close()

	var out []*staging.Person
	for rows.Next() {
		var row models.StagingPerson
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.NationalID,
			&row.FirstName,
			&row.FatherName,
			&row.GrandfatherName,
			&row.FamilyName,
			&row.Gender,
			&row.BirthYear,
			&row.Phone,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged person")
		}
		p, err := toDomainStagingPerson(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) HouseholdsByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Household, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        unit_ref, head_person_ref, household_size, male_count, female_count,
        male_child_count, female_child_count, elderly_count, disabled_count,
        displacement_status, notes
        FROM staging_households WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged households")
	}
	defer rows.Close()

	var out []*staging.Household
	for rows.Next() {
		var row models.StagingHousehold
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.UnitRef,
			&row.HeadPersonRef,
			&row.HouseholdSize,
			&row.MaleCount,
			&row.FemaleCount,
			&row.MaleChildCount,
			&row.FemaleChildCount,
			&row.ElderlyCount,
			&row.DisabledCount,
			&row.DisplacementStatus,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged household")
		}
		h, err := toDomainStagingHousehold(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) RelationsByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Relation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        person_ref, unit_ref, relation_type, ownership_share::text, start_date, notes
        FROM staging_relations WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged relations")
	}
	defer rows.Close()

	var out []*staging.Relation
	for rows.Next() {
		var row models.StagingRelation
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.PersonRef,
			&row.UnitRef,
			&row.RelationType,
			&row.OwnershipShare,
			&row.StartDate,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged relation")
		}
		r, err := toDomainStagingRelation(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) EvidencesByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Evidence, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        relation_ref, claim_ref, evidence_type, document_number, issued_by, issue_date,
        file_name, file_hash, file_size, mime_type, file_path, notes
        FROM staging_evidences WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged evidences")
	}
	defer rows.Close()

	var out []*staging.Evidence
	for rows.Next() {
		var row models.StagingEvidence
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.RelationRef,
			&row.ClaimRef,
			&row.EvidenceType,
			&row.DocumentNumber,
			&row.IssuedBy,
			&row.IssueDate,
			&row.FileName,
			&row.FileHash,
			&row.FileSize,
			&row.MimeType,
			&row.FilePath,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged evidence")
		}
		e, err := toDomainStagingEvidence(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) ClaimsByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Claim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        claimant_ref, unit_ref, claim_type, claim_status, description, filed_date
        FROM staging_claims WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged claims")
	}
	defer rows.Close()

	var out []*staging.Claim
	for rows.Next() {
		var row models.StagingClaim
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.ClaimantRef,
			&row.UnitRef,
			&row.ClaimType,
			&row.ClaimStatus,
			&row.Description,
			&row.FiledDate,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged claim")
		}
		c, err := toDomainStagingClaim(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) SurveysByPackage(ctx context.Context, packageID uuid.UUID) ([]*staging.Survey, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, `SELECT `+envelopeColumns+`,
        building_ref, surveyor_name, survey_date, survey_type, notes
        FROM staging_surveys WHERE import_package_id = $1 ORDER BY original_id`, packageID.String())
	if err != nil {
		return nil, errors.Wrap(err, "failed to query staged surveys")
	}
	defer rows.Close()

	var out []*staging.Survey
	for rows.Next() {
		var row models.StagingSurvey
		targets := append(envelopeTargets(&row.StagingEnvelope),
			&row.BuildingRef,
			&row.SurveyorName,
			&row.SurveyDate,
			&row.SurveyType,
			&row.Notes,
		)
		if err := rows.Scan(targets...); err != nil {
			return nil, errors.Wrap(err, "failed to scan staged survey")
		}
		s, err := toDomainStagingSurvey(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (g *PgStagingRepository) UpdateEnvelopes(ctx context.Context, entityType staging.EntityType, records []*staging.Record) error {
	if len(records) == 0 {
		return nil
	}
	table, err := stagingTable(entityType)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	q := fmt.Sprintf(`UPDATE %s SET validation_status = $2, validation_errors = $3,
        validation_warnings = $4, approved_for_commit = $5, committed_entity_id = $6
        WHERE id = $1`, table)
	for _, rec := range records {
		errs, err := marshalFindings(rec.ValidationErrors)
		if err != nil {
			return err
		}
		warnings, err := marshalFindings(rec.ValidationWarnings)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, q,
			rec.ID.String(),
			string(rec.ValidationStatus),
			errs,
			warnings,
			rec.ApprovedForCommit,
			nullUUIDString(rec.CommittedEntityID),
		); err != nil {
			return errors.Wrapf(err, "failed to update envelope in %s", table)
		}
	}
	return nil
}

func (g *PgStagingRepository) SetApproval(ctx context.Context, packageID uuid.UUID, entityType staging.EntityType, recordID uuid.UUID, approved bool) error {
	table, err := stagingTable(entityType)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	q := fmt.Sprintf(`UPDATE %s SET approved_for_commit = $3 WHERE id = $1 AND import_package_id = $2`, table)
	tag, err := tx.Exec(ctx, q, recordID.String(), packageID.String(), approved)
	if err != nil {
		return errors.Wrapf(err, "failed to set approval in %s", table)
	}
	if tag.RowsAffected() == 0 {
		return ErrStagingRecordNotFound
	}
	return nil
}

func (g *PgStagingRepository) MarkSkipped(ctx context.Context, entityType staging.EntityType, recordID uuid.UUID, masterID *uuid.UUID) error {
	table, err := stagingTable(entityType)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	q := fmt.Sprintf(`UPDATE %s SET validation_status = $2, approved_for_commit = FALSE,
        committed_entity_id = $3 WHERE id = $1`, table)
	tag, err := tx.Exec(ctx, q, recordID.String(), string(staging.StatusSkipped), nullUUIDString(masterID))
	if err != nil {
		return errors.Wrapf(err, "failed to mark record skipped in %s", table)
	}
	if tag.RowsAffected() == 0 {
		return ErrStagingRecordNotFound
	}
	return nil
}

func (g *PgStagingRepository) StampCommitted(ctx context.Context, entityType staging.EntityType, recordID, entityID uuid.UUID) error {
	table, err := stagingTable(entityType)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	q := fmt.Sprintf(`UPDATE %s SET committed_entity_id = $2 WHERE id = $1`, table)
	tag, err := tx.Exec(ctx, q, recordID.String(), entityID.String())
	if err != nil {
		return errors.Wrapf(err, "failed to stamp committed id in %s", table)
	}
	if tag.RowsAffected() == 0 {
		return ErrStagingRecordNotFound
	}
	return nil
}

func (g *PgStagingRepository) SummaryByPackage(ctx context.Context, packageID uuid.UUID) (staging.Summary, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	summary := staging.Summary{}
	for _, entityType := range staging.CommitOrder() {
		table := stagingTables[entityType]
		q := fmt.Sprintf(`SELECT validation_status, COUNT(*) FROM %s
            WHERE import_package_id = $1 GROUP BY validation_status`, table)
		rows, err := tx.Query(ctx, q, packageID.String())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to summarize %s", table)
		}

		counts := staging.StatusCounts{}
		for rows.Next() {
			var status string
			var count int
			if err := rows.Scan(&status, &count); err != nil {
				rows.Close()
				return nil, errors.Wrapf(err, "failed to scan summary of %s", table)
			}
			counts[staging.Status(status)] = count
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, errors.Wrapf(err, "failed to summarize %s", table)
		}
		if len(counts) > 0 {
			summary[entityType] = counts
		}
	}
	return summary, nil
}

func (g *PgStagingRepository) FindingsByPackage(ctx context.Context, packageID uuid.UUID, entityType staging.EntityType) ([]*staging.Record, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	types := staging.CommitOrder()
	if entityType != "" {
		if _, err := stagingTable(entityType); err != nil {
			return nil, err
		}
		types = []staging.EntityType{entityType}
	}

	var out []*staging.Record
	for _, t := range types {
		table := stagingTables[t]
		q := `SELECT ` + envelopeColumns + fmt.Sprintf(` FROM %s
            WHERE import_package_id = $1
              AND (jsonb_array_length(validation_errors) > 0 OR jsonb_array_length(validation_warnings) > 0)
            ORDER BY original_id`, table)
		rows, err := tx.Query(ctx, q, packageID.String())
		if err != nil {
			return nil, errors.Wrapf(err, "failed to query findings in %s", table)
		}
		for rows.Next() {
			var row models.StagingEnvelope
			if err := rows.Scan(envelopeTargets(&row)...); err != nil {
				rows.Close()
				return nil, errors.Wrapf(err, "failed to scan findings in %s", table)
			}
			rec, err := toDomainEnvelope(&row)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, &rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, errors.Wrapf(err, "failed to query findings in %s", table)
		}
	}
	return out, nil
}

func (g *PgStagingRepository) DeleteByPackage(ctx context.Context, packageID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	// Reverse dependency order keeps this valid even with future FKs between
	// staging tables.
	order := staging.CommitOrder()
	for i := len(order) - 1; i >= 0; i-- {
		table := stagingTables[order[i]]
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE import_package_id = $1`, table), packageID.String()); err != nil {
			return errors.Wrapf(err, "failed to purge %s", table)
		}
	}
	return nil
}

var _ staging.Repository = (*PgStagingRepository)(nil)
