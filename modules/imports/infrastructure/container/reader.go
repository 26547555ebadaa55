package container

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// Container table names. Relations live under their legacy export name.
const (
	TableManifest    = "manifest"
	TableBuildings   = "buildings"
	TableUnits       = "property_units"
	TablePersons     = "persons"
	TableHouseholds  = "households"
	TableRelations   = "person_property_relations"
	TableEvidences   = "evidences"
	TableClaims      = "claims"
	TableSurveys     = "surveys"
	TableAttachments = "attachments"
)

// RequiredTables maps entity types to the container tables that must exist.
// The attachments table is optional.
func RequiredTables() map[staging.EntityType]string {
	return map[staging.EntityType]string{
		staging.EntityBuilding:  TableBuildings,
		staging.EntityUnit:      TableUnits,
		staging.EntityPerson:    TablePersons,
		staging.EntityHousehold: TableHouseholds,
		staging.EntityRelation:  TableRelations,
		staging.EntityEvidence:  TableEvidences,
		staging.EntityClaim:     TableClaims,
		staging.EntitySurvey:    TableSurveys,
	}
}

// StructuralError marks the container itself as malformed: the import stage
// must abort and fail the package rather than stage partial data.
type StructuralError struct {
	Table  string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("container table %q: %s", e.Table, e.Reason)
	}
	return "container: " + e.Reason
}

func structural(table, format string, args ...any) error {
	return &StructuralError{Table: table, Reason: fmt.Sprintf(format, args...)}
}

// IsStructural reports whether err originates from container malformation as
// opposed to an operational failure.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// Reader opens a survey container read-only. It never mutates the file.
type Reader struct {
	db *sqlx.DB
}

func Open(path string) (*Reader, error) {
	db, err := sqlx.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", path))
	if err != nil {
		return nil, errors.Wrap(err, "open container")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, structural("", "unreadable file: %v", err)
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error {
	return r.db.Close()
}

func (r *Reader) hasTable(ctx context.Context, name string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name)
	if err != nil {
		return false, errors.Wrapf(err, "inspect container schema for %q", name)
	}
	return count > 0, nil
}

// Manifest reads the key/value manifest table. A missing table or a missing
// package code is structural.
func (r *Reader) Manifest(ctx context.Context) (importpackage.Manifest, error) {
	ok, err := r.hasTable(ctx, TableManifest)
	if err != nil {
		return importpackage.Manifest{}, err
	}
	if !ok {
		return importpackage.Manifest{}, structural(TableManifest, "required table is missing")
	}

	var rows []ManifestRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT key, value FROM manifest`); err != nil {
		return importpackage.Manifest{}, errors.Wrap(err, "read manifest")
	}

	m := importpackage.Manifest{}
	for _, row := range rows {
		switch row.Key {
		case "package_code":
			m.PackageCode = row.Value
		case "schema_version":
			m.SchemaVersion = row.Value
		case "exported_by":
			m.ExportedBy = row.Value
		case "exported_at":
			// A garbled export timestamp is provenance noise, not fatal.
			if t, err := staging.ParseDate(row.Value); err == nil {
				m.ExportedAt = t
			}
		case "device_id":
			m.DeviceID = row.Value
		}
	}
	if m.PackageCode == "" {
		return importpackage.Manifest{}, structural(TableManifest, "package_code entry is missing")
	}
	return m, nil
}

// requireTable fails structurally when a required entity table is absent and
// verifies its original ids are present and unique.
func (r *Reader) requireTable(ctx context.Context, table string) error {
	ok, err := r.hasTable(ctx, table)
	if err != nil {
		return err
	}
	if !ok {
		return structural(table, "required table is missing")
	}

	var blank int
	err = r.db.GetContext(ctx, &blank, fmt.Sprintf(
		`SELECT COUNT(*) FROM %s WHERE original_id IS NULL OR TRIM(original_id) = ''`, table))
	if err != nil {
		return errors.Wrapf(err, "check %s original ids", table)
	}
	if blank > 0 {
		return structural(table, "%d rows without an original id", blank)
	}

	var dup sql.NullString
	err = r.db.GetContext(ctx, &dup, fmt.Sprintf(
		`SELECT original_id FROM %s GROUP BY original_id HAVING COUNT(*) > 1 LIMIT 1`, table))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil
	case err != nil:
		return errors.Wrapf(err, "check %s duplicates", table)
	}
	return structural(table, "duplicate original id %q", dup.String)
}

func (r *Reader) Buildings(ctx context.Context) ([]BuildingRow, error) {
	if err := r.requireTable(ctx, TableBuildings); err != nil {
		return nil, err
	}
	var rows []BuildingRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, building_code, address, neighborhood_code, building_type,
		       status, floors_count, latitude, longitude, footprint_wkt, notes
		FROM buildings`)
	if err != nil {
		return nil, errors.Wrap(err, "read buildings")
	}
	return rows, nil
}

func (r *Reader) Units(ctx context.Context) ([]PropertyUnitRow, error) {
	if err := r.requireTable(ctx, TableUnits); err != nil {
		return nil, err
	}
	var rows []PropertyUnitRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, building_ref, unit_number, floor_number, area_sqm,
		       unit_type, occupancy_status, notes
		FROM property_units`)
	if err != nil {
		return nil, errors.Wrap(err, "read property units")
	}
	return rows, nil
}

func (r *Reader) Persons(ctx context.Context) ([]PersonRow, error) {
	if err := r.requireTable(ctx, TablePersons); err != nil {
		return nil, err
	}
	var rows []PersonRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, national_id, first_name, father_name, grandfather_name,
		       family_name, gender, birth_year, phone, notes
		FROM persons`)
	if err != nil {
		return nil, errors.Wrap(err, "read persons")
	}
	return rows, nil
}

func (r *Reader) Households(ctx context.Context) ([]HouseholdRow, error) {
	if err := r.requireTable(ctx, TableHouseholds); err != nil {
		return nil, err
	}
	var rows []HouseholdRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, unit_ref, head_person_ref, household_size, male_count,
		       female_count, male_child_count, female_child_count, elderly_count,
		       disabled_count, displacement_status, notes
		FROM households`)
	if err != nil {
		return nil, errors.Wrap(err, "read households")
	}
	return rows, nil
}

func (r *Reader) Relations(ctx context.Context) ([]RelationRow, error) {
	if err := r.requireTable(ctx, TableRelations); err != nil {
		return nil, err
	}
	var rows []RelationRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, person_ref, unit_ref, relation_type, ownership_share,
		       start_date, notes
		FROM person_property_relations`)
	if err != nil {
		return nil, errors.Wrap(err, "read relations")
	}
	return rows, nil
}

func (r *Reader) Evidences(ctx context.Context) ([]EvidenceRow, error) {
	if err := r.requireTable(ctx, TableEvidences); err != nil {
		return nil, err
	}
	var rows []EvidenceRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, relation_ref, claim_ref, evidence_type, document_number,
		       issued_by, issue_date, file_name, notes
		FROM evidences`)
	if err != nil {
		return nil, errors.Wrap(err, "read evidences")
	}
	return rows, nil
}

func (r *Reader) Claims(ctx context.Context) ([]ClaimRow, error) {
	if err := r.requireTable(ctx, TableClaims); err != nil {
		return nil, err
	}
	var rows []ClaimRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, claimant_ref, unit_ref, claim_type, claim_status,
		       description, filed_date
		FROM claims`)
	if err != nil {
		return nil, errors.Wrap(err, "read claims")
	}
	return rows, nil
}

func (r *Reader) Surveys(ctx context.Context) ([]SurveyRow, error) {
	if err := r.requireTable(ctx, TableSurveys); err != nil {
		return nil, err
	}
	var rows []SurveyRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT original_id, building_ref, surveyor_name, survey_date, survey_type, notes
		FROM surveys`)
	if err != nil {
		return nil, errors.Wrap(err, "read surveys")
	}
	return rows, nil
}

// ForEachAttachment streams the optional attachments table one blob at a
// time. A container without the table yields zero calls.
func (r *Reader) ForEachAttachment(ctx context.Context, fn func(AttachmentRow) error) error {
	ok, err := r.hasTable(ctx, TableAttachments)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	rows, err := r.db.QueryxContext(ctx, `SELECT evidence_ref, file_name, content FROM attachments`)
	if err != nil {
		return errors.Wrap(err, "read attachments")
	}
	defer rows.Close()

	for rows.Next() {
		var row AttachmentRow
		if err := rows.StructScan(&row); err != nil {
			return errors.Wrap(err, "scan attachment")
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}
