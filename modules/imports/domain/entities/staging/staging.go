package staging

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntityType tags one of the eight record kinds a survey container carries.
// CommitOrder lists them in dependency order; committing in that order
// guarantees every foreign key target exists before its referrer.
type EntityType string

const (
	EntityBuilding  EntityType = "building"
	EntityUnit      EntityType = "property_unit"
	EntityPerson    EntityType = "person"
	EntityHousehold EntityType = "household"
	EntityRelation  EntityType = "relation"
	EntityEvidence  EntityType = "evidence"
	EntityClaim     EntityType = "claim"
	EntitySurvey    EntityType = "survey"
)

func CommitOrder() []EntityType {
	return []EntityType{
		EntityBuilding,
		EntityUnit,
		EntityPerson,
		EntityHousehold,
		EntityRelation,
		EntityEvidence,
		EntityClaim,
		EntitySurvey,
	}
}

// Status is the validation lifecycle of a staged record. Every record starts
// Pending; after a validation pass none remains Pending. Skipped records are
// merge casualties and never commit.
type Status string

const (
	StatusPending Status = "pending"
	StatusValid   Status = "valid"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Finding is a single validation observation on a record.
type Finding struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Record is the envelope shared by all staged entity types: identity inside
// the package, validation outcome and commit bookkeeping. Entity payloads
// embed it.
type Record struct {
	ID                 uuid.UUID
	PackageID          uuid.UUID
	OriginalID         string
	ValidationStatus   Status
	ValidationErrors   []Finding
	ValidationWarnings []Finding
	ApprovedForCommit  bool
	CommittedEntityID  *uuid.UUID
	StagedAt           time.Time
}

// NewRecord seeds the envelope for a freshly unpacked row.
func NewRecord(packageID uuid.UUID, originalID string) Record {
	return Record{
		ID:               uuid.New(),
		PackageID:        packageID,
		OriginalID:       originalID,
		ValidationStatus: StatusPending,
		StagedAt:         time.Now(),
	}
}

func (r *Record) AddError(code, field, message string) {
	r.ValidationErrors = append(r.ValidationErrors, Finding{Code: code, Field: field, Message: message})
}

func (r *Record) AddWarning(code, field, message string) {
	r.ValidationWarnings = append(r.ValidationWarnings, Finding{Code: code, Field: field, Message: message})
}

func (r *Record) HasErrors() bool   { return len(r.ValidationErrors) > 0 }
func (r *Record) HasWarnings() bool { return len(r.ValidationWarnings) > 0 }

// Finalize settles the terminal validation status from the accumulated
// findings and auto-approves records that may commit. Skipped records keep
// their status; approval of committable records can still be revoked per
// record before commit.
func (r *Record) Finalize() {
	if r.ValidationStatus == StatusSkipped {
		return
	}
	switch {
	case r.HasErrors():
		r.ValidationStatus = StatusError
		r.ApprovedForCommit = false
	case r.HasWarnings():
		r.ValidationStatus = StatusWarning
		r.ApprovedForCommit = true
	default:
		r.ValidationStatus = StatusValid
		r.ApprovedForCommit = true
	}
}

// Skip marks the record as discarded by a merge resolution. When the
// surviving counterpart is a production row its id is recorded so commit can
// translate references to the discarded record.
func (r *Record) Skip(masterID *uuid.UUID) {
	r.ValidationStatus = StatusSkipped
	r.ApprovedForCommit = false
	r.CommittedEntityID = masterID
}

// Committable reports whether the commit engine may pick the record up:
// validated without errors, approved, not yet committed.
func (r *Record) Committable() bool {
	if r.ValidationStatus != StatusValid && r.ValidationStatus != StatusWarning {
		return false
	}
	return r.ApprovedForCommit && r.CommittedEntityID == nil
}

// Building mirrors the container's buildings table. Code values are staged
// verbatim; enum mapping happens at commit.
type Building struct {
	Record
	BuildingCode     string
	Address          string
	NeighborhoodCode string
	BuildingType     string
	Status           string
	FloorsCount      *int
	Latitude         *float64
	Longitude        *float64
	FootprintWKT     string
	Notes            string
}

type PropertyUnit struct {
	Record
	BuildingRef     string
	UnitNumber      string
	FloorNumber     *int
	AreaSqm         *float64
	UnitType        string
	OccupancyStatus string
	Notes           string
}

type Person struct {
	Record
	NationalID      string
	FirstName       string
	FatherName      string
	GrandfatherName string
	FamilyName      string
	Gender          string
	BirthYear       *int
	Phone           string
	Notes           string
}

// FullName joins the present name parts for conflict display labels.
func (p *Person) FullName() string {
	parts := make([]string, 0, 4)
	for _, part := range []string{p.FirstName, p.FatherName, p.GrandfatherName, p.FamilyName} {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return strings.Join(parts, " ")
}

type Household struct {
	Record
	UnitRef            string
	HeadPersonRef      string
	HouseholdSize      *int
	MaleCount          int
	FemaleCount        int
	MaleChildCount     int
	FemaleChildCount   int
	ElderlyCount       int
	DisabledCount      int
	DisplacementStatus string
	Notes              string
}

type Relation struct {
	Record
	PersonRef      string
	UnitRef        string
	RelationType   string
	OwnershipShare decimal.Decimal
	StartDate      string
	Notes          string
}

// Evidence carries both the container columns and the file metadata stamped
// by the unpacker when the container ships an attachment blob for it.
type Evidence struct {
	Record
	RelationRef    string
	ClaimRef       string
	EvidenceType   string
	DocumentNumber string
	IssuedBy       string
	IssueDate      string
	FileName       string
	FileHash       string
	FileSize       int64
	MimeType       string
	FilePath       string
	Notes          string
}

type Claim struct {
	Record
	ClaimantRef string
	UnitRef     string
	ClaimType   string
	ClaimStatus string
	Description string
	FiledDate   string
}

type Survey struct {
	Record
	BuildingRef  string
	SurveyorName string
	SurveyDate   string
	SurveyType   string
	Notes        string
}

// dateLayouts are the formats device exports write. Dates are staged as raw
// text; validation flags unparseable values, commit parses the survivors.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate returns nil for an empty value and an error for text that
// matches no known layout.
func ParseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errors.Errorf("unparseable date %q", raw)
}
