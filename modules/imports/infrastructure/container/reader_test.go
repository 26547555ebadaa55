package container_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/container"
)

// writeFixture builds a minimal but complete container on disk.
func writeFixture(t *testing.T, statements []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "survey.db")
	db, err := sqlx.Open("sqlite", "file:"+path)
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("fixture statement %q: %v", stmt, err)
		}
	}
	return path
}

func baseStatements() []string {
	return []string{
		`CREATE TABLE manifest (key TEXT, value TEXT)`,
		`INSERT INTO manifest VALUES
			('package_code', 'PKG-2026-0042'),
			('schema_version', '1'),
			('exported_by', 'surveyor-12'),
			('exported_at', '2026-02-11 08:30:00'),
			('device_id', 'tablet-03')`,
		`CREATE TABLE buildings (original_id TEXT, building_code TEXT, address TEXT,
			neighborhood_code TEXT, building_type TEXT, status TEXT, floors_count INTEGER,
			latitude REAL, longitude REAL, footprint_wkt TEXT, notes TEXT)`,
		`INSERT INTO buildings (original_id, building_code, address, latitude, longitude)
			VALUES ('b-1', '01-02-003-0045', 'Al-Jamiliya 12', 36.2, 37.15)`,
		`CREATE TABLE property_units (original_id TEXT, building_ref TEXT, unit_number TEXT,
			floor_number INTEGER, area_sqm REAL, unit_type TEXT, occupancy_status TEXT, notes TEXT)`,
		`INSERT INTO property_units (original_id, building_ref, unit_number) VALUES ('u-1', 'b-1', '3A')`,
		`CREATE TABLE persons (original_id TEXT, national_id TEXT, first_name TEXT,
			father_name TEXT, grandfather_name TEXT, family_name TEXT, gender TEXT,
			birth_year INTEGER, phone TEXT, notes TEXT)`,
		`INSERT INTO persons (original_id, first_name, family_name, birth_year)
			VALUES ('p-1', 'Ahmad', 'Halabi', 1981)`,
		`CREATE TABLE households (original_id TEXT, unit_ref TEXT, head_person_ref TEXT,
			household_size INTEGER, male_count INTEGER, female_count INTEGER,
			male_child_count INTEGER, female_child_count INTEGER, elderly_count INTEGER,
			disabled_count INTEGER, displacement_status TEXT, notes TEXT)`,
		`CREATE TABLE person_property_relations (original_id TEXT, person_ref TEXT,
			unit_ref TEXT, relation_type TEXT, ownership_share REAL, start_date TEXT, notes TEXT)`,
		`CREATE TABLE evidences (original_id TEXT, relation_ref TEXT, claim_ref TEXT,
			evidence_type TEXT, document_number TEXT, issued_by TEXT, issue_date TEXT,
			file_name TEXT, notes TEXT)`,
		`CREATE TABLE claims (original_id TEXT, claimant_ref TEXT, unit_ref TEXT,
			claim_type TEXT, claim_status TEXT, description TEXT, filed_date TEXT)`,
		`CREATE TABLE surveys (original_id TEXT, building_ref TEXT, surveyor_name TEXT,
			survey_date TEXT, survey_type TEXT, notes TEXT)`,
	}
}

func TestReaderReadsCompleteContainer(t *testing.T) {
	path := writeFixture(t, baseStatements())
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	ctx := context.Background()

	manifest, err := r.Manifest(ctx)
	if err != nil {
		t.Fatalf("Manifest: %v", err)
	}
	if manifest.PackageCode != "PKG-2026-0042" {
		t.Errorf("package code = %q", manifest.PackageCode)
	}
	if manifest.DeviceID != "tablet-03" {
		t.Errorf("device id = %q", manifest.DeviceID)
	}
	if manifest.ExportedAt == nil {
		t.Error("exported_at not parsed")
	}

	buildings, err := r.Buildings(ctx)
	if err != nil {
		t.Fatalf("Buildings: %v", err)
	}
	if len(buildings) != 1 || buildings[0].OriginalID != "b-1" {
		t.Fatalf("buildings = %+v", buildings)
	}
	if !buildings[0].Latitude.Valid || buildings[0].Latitude.Float64 != 36.2 {
		t.Errorf("latitude = %+v", buildings[0].Latitude)
	}
	if buildings[0].FloorsCount.Valid {
		t.Error("absent floors_count should scan as null")
	}

	units, err := r.Units(ctx)
	if err != nil {
		t.Fatalf("Units: %v", err)
	}
	if len(units) != 1 || units[0].BuildingRef.String != "b-1" {
		t.Fatalf("units = %+v", units)
	}

	households, err := r.Households(ctx)
	if err != nil {
		t.Fatalf("Households: %v", err)
	}
	if len(households) != 0 {
		t.Errorf("empty table should read as zero rows, got %d", len(households))
	}
}

func TestReaderMissingManifestIsStructural(t *testing.T) {
	stmts := baseStatements()[2:] // drop manifest creation and fill
	path := writeFixture(t, stmts)
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	_, err = r.Manifest(context.Background())
	if !container.IsStructural(err) {
		t.Fatalf("err = %v, want structural", err)
	}
}

func TestReaderMissingRequiredTableIsStructural(t *testing.T) {
	stmts := make([]string, 0, len(baseStatements()))
	for _, s := range baseStatements() {
		if strings.HasPrefix(s, "CREATE TABLE claims") {
			continue
		}
		stmts = append(stmts, s)
	}
	path := writeFixture(t, stmts)
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	_, err = r.Claims(context.Background())
	if !container.IsStructural(err) {
		t.Fatalf("err = %v, want structural", err)
	}
}

func TestReaderDuplicateOriginalIDsAreStructural(t *testing.T) {
	stmts := append(baseStatements(),
		`INSERT INTO persons (original_id, first_name) VALUES ('p-1', 'Duplicate')`)
	path := writeFixture(t, stmts)
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	_, err = r.Persons(context.Background())
	if !container.IsStructural(err) {
		t.Fatalf("err = %v, want structural", err)
	}
}

func TestReaderBlankOriginalIDIsStructural(t *testing.T) {
	stmts := append(baseStatements(),
		`INSERT INTO surveys (original_id, building_ref) VALUES ('  ', 'b-1')`)
	path := writeFixture(t, stmts)
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	_, err = r.Surveys(context.Background())
	if !container.IsStructural(err) {
		t.Fatalf("err = %v, want structural", err)
	}
}

func TestReaderAttachmentsAreOptional(t *testing.T) {
	path := writeFixture(t, baseStatements())
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	calls := 0
	err = r.ForEachAttachment(context.Background(), func(container.AttachmentRow) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachAttachment: %v", err)
	}
	if calls != 0 {
		t.Errorf("missing attachments table should yield zero rows, got %d", calls)
	}
}

func TestReaderStreamsAttachments(t *testing.T) {
	stmts := append(baseStatements(),
		`CREATE TABLE attachments (evidence_ref TEXT, file_name TEXT, content BLOB)`,
		`INSERT INTO attachments VALUES ('e-1', 'deed.pdf', X'255044462D312E34')`,
	)
	path := writeFixture(t, stmts)
	r, err := container.Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	var got []container.AttachmentRow
	err = r.ForEachAttachment(context.Background(), func(row container.AttachmentRow) error {
		got = append(got, row)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachAttachment: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("attachments = %d, want 1", len(got))
	}
	if got[0].EvidenceRef.String != "e-1" || got[0].FileName.String != "deed.pdf" {
		t.Errorf("row = %+v", got[0])
	}
	if string(got[0].Content[:4]) != "%PDF" {
		t.Errorf("content prefix = %q", got[0].Content[:4])
	}
}
