package models

import (
	"database/sql"
	"time"
)

type ImportPackage struct {
	ID                     string
	PackageCode            string
	Status                 string
	FailedStage            sql.NullString
	OriginalFileName       string
	ContainerPath          string
	ArchivePath            sql.NullString
	SchemaVersion          sql.NullString
	ExportedBy             sql.NullString
	ExportedAt             sql.NullTime
	DeviceID               sql.NullString
	ImportedBy             string
	RecordCounts           []byte
	HasUnresolvedConflicts bool
	ValidationReport       []byte
	CommitReport           []byte
	ErrorMessage           sql.NullString
	ValidatedAt            sql.NullTime
	ReviewedAt             sql.NullTime
	CommittedAt            sql.NullTime
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// StagingEnvelope carries the columns shared by all eight staging tables.
// Text payload columns are NOT NULL DEFAULT '' since the unpacker normalizes
// container NULLs; only numeric and date-typed payload columns stay nullable.
type StagingEnvelope struct {
	ID                 string
	PackageID          string
	OriginalID         string
	ValidationStatus   string
	ValidationErrors   []byte
	ValidationWarnings []byte
	ApprovedForCommit  bool
	CommittedEntityID  sql.NullString
	StagedAt           time.Time
}

type StagingBuilding struct {
	StagingEnvelope
	BuildingCode     string
	Address          string
	NeighborhoodCode string
	BuildingType     string
	BuildingStatus   string
	FloorsCount      sql.NullInt64
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	FootprintWKT     string
	Notes            string
}

type StagingUnit struct {
	StagingEnvelope
	BuildingRef     string
	UnitNumber      string
	FloorNumber     sql.NullInt64
	AreaSqm         sql.NullFloat64
	UnitType        string
	OccupancyStatus string
	Notes           string
}

type StagingPerson struct {
	StagingEnvelope
	NationalID      string
	FirstName       string
	FatherName      string
	GrandfatherName string
	FamilyName      string
	Gender          string
	BirthYear       sql.NullInt64
	Phone           string
	Notes           string
}

type StagingHousehold struct {
	StagingEnvelope
	UnitRef            string
	HeadPersonRef      string
	HouseholdSize      sql.NullInt64
	MaleCount          int
	FemaleCount        int
	MaleChildCount     int
	FemaleChildCount   int
	ElderlyCount       int
	DisabledCount      int
	DisplacementStatus string
	Notes              string
}

type StagingRelation struct {
	StagingEnvelope
	PersonRef      string
	UnitRef        string
	RelationType   string
	OwnershipShare sql.NullString
	StartDate      string
	Notes          string
}

type StagingEvidence struct {
	StagingEnvelope
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

type StagingClaim struct {
	StagingEnvelope
	ClaimantRef string
	UnitRef     string
	ClaimType   string
	ClaimStatus string
	Description string
	FiledDate   string
}

type StagingSurvey struct {
	StagingEnvelope
	BuildingRef  string
	SurveyorName string
	SurveyDate   string
	SurveyType   string
	Notes        string
}

type Conflict struct {
	ID                string
	PackageID         string
	EntityType        string
	LeftSource        string
	LeftKey           string
	LeftLabel         string
	RightSource       string
	RightKey          string
	RightLabel        string
	Score             int
	Confidence        string
	MatchedCriteria   []byte
	Status            string
	Resolution        string
	ResolutionPayload []byte
	AutoDetected      bool
	ResolvedBy        sql.NullString
	ResolvedAt        sql.NullTime
	CreatedAt         time.Time
}

type AuditEntry struct {
	ID        int64
	PackageID string
	ActorID   string
	Action    string
	Payload   []byte
	CreatedAt time.Time
}
