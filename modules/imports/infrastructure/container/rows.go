package container

import "database/sql"

// Row structs mirror the container tables one to one. Every nullable column
// scans through sql.Null*; dates stay raw text so malformed values survive
// into staging where validation can flag them.

type ManifestRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

type BuildingRow struct {
	OriginalID       string          `db:"original_id"`
	BuildingCode     sql.NullString  `db:"building_code"`
	Address          sql.NullString  `db:"address"`
	NeighborhoodCode sql.NullString  `db:"neighborhood_code"`
	BuildingType     sql.NullString  `db:"building_type"`
	Status           sql.NullString  `db:"status"`
	FloorsCount      sql.NullInt64   `db:"floors_count"`
	Latitude         sql.NullFloat64 `db:"latitude"`
	Longitude        sql.NullFloat64 `db:"longitude"`
	FootprintWKT     sql.NullString  `db:"footprint_wkt"`
	Notes            sql.NullString  `db:"notes"`
}

type PropertyUnitRow struct {
	OriginalID      string          `db:"original_id"`
	BuildingRef     sql.NullString  `db:"building_ref"`
	UnitNumber      sql.NullString  `db:"unit_number"`
	FloorNumber     sql.NullInt64   `db:"floor_number"`
	AreaSqm         sql.NullFloat64 `db:"area_sqm"`
	UnitType        sql.NullString  `db:"unit_type"`
	OccupancyStatus sql.NullString  `db:"occupancy_status"`
	Notes           sql.NullString  `db:"notes"`
}

type PersonRow struct {
	OriginalID      string         `db:"original_id"`
	NationalID      sql.NullString `db:"national_id"`
	FirstName       sql.NullString `db:"first_name"`
	FatherName      sql.NullString `db:"father_name"`
	GrandfatherName sql.NullString `db:"grandfather_name"`
	FamilyName      sql.NullString `db:"family_name"`
	Gender          sql.NullString `db:"gender"`
	BirthYear       sql.NullInt64  `db:"birth_year"`
	Phone           sql.NullString `db:"phone"`
	Notes           sql.NullString `db:"notes"`
}

type HouseholdRow struct {
	OriginalID         string         `db:"original_id"`
	UnitRef            sql.NullString `db:"unit_ref"`
	HeadPersonRef      sql.NullString `db:"head_person_ref"`
	HouseholdSize      sql.NullInt64  `db:"household_size"`
	MaleCount          sql.NullInt64  `db:"male_count"`
	FemaleCount        sql.NullInt64  `db:"female_count"`
	MaleChildCount     sql.NullInt64  `db:"male_child_count"`
	FemaleChildCount   sql.NullInt64  `db:"female_child_count"`
	ElderlyCount       sql.NullInt64  `db:"elderly_count"`
	DisabledCount      sql.NullInt64  `db:"disabled_count"`
	DisplacementStatus sql.NullString `db:"displacement_status"`
	Notes              sql.NullString `db:"notes"`
}

type RelationRow struct {
	OriginalID     string          `db:"original_id"`
	PersonRef      sql.NullString  `db:"person_ref"`
	UnitRef        sql.NullString  `db:"unit_ref"`
	RelationType   sql.NullString  `db:"relation_type"`
	OwnershipShare sql.NullFloat64 `db:"ownership_share"`
	StartDate      sql.NullString  `db:"start_date"`
	Notes          sql.NullString  `db:"notes"`
}

type EvidenceRow struct {
	OriginalID     string         `db:"original_id"`
	RelationRef    sql.NullString `db:"relation_ref"`
	ClaimRef       sql.NullString `db:"claim_ref"`
	EvidenceType   sql.NullString `db:"evidence_type"`
	DocumentNumber sql.NullString `db:"document_number"`
	IssuedBy       sql.NullString `db:"issued_by"`
	IssueDate      sql.NullString `db:"issue_date"`
	FileName       sql.NullString `db:"file_name"`
	Notes          sql.NullString `db:"notes"`
}

type ClaimRow struct {
	OriginalID  string         `db:"original_id"`
	ClaimantRef sql.NullString `db:"claimant_ref"`
	UnitRef     sql.NullString `db:"unit_ref"`
	ClaimType   sql.NullString `db:"claim_type"`
	ClaimStatus sql.NullString `db:"claim_status"`
	Description sql.NullString `db:"description"`
	FiledDate   sql.NullString `db:"filed_date"`
}

type SurveyRow struct {
	OriginalID   string         `db:"original_id"`
	BuildingRef  sql.NullString `db:"building_ref"`
	SurveyorName sql.NullString `db:"surveyor_name"`
	SurveyDate   sql.NullString `db:"survey_date"`
	SurveyType   sql.NullString `db:"survey_type"`
	Notes        sql.NullString `db:"notes"`
}

type AttachmentRow struct {
	EvidenceRef sql.NullString `db:"evidence_ref"`
	FileName    sql.NullString `db:"file_name"`
	Content     []byte         `db:"content"`
}
