package models

import (
	"database/sql"
	"time"
)

type Building struct {
	ID               string
	BuildingCode     string
	Address          string
	NeighborhoodCode string
	BuildingType     string
	Status           string
	FloorsCount      sql.NullInt32
	Latitude         sql.NullFloat64
	Longitude        sql.NullFloat64
	FootprintWKT     sql.NullString
	Notes            string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type PropertyUnit struct {
	ID              string
	BuildingID      string
	UnitNumber      string
	FloorNumber     sql.NullInt32
	AreaSqm         sql.NullFloat64
	UnitType        string
	OccupancyStatus string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Person struct {
	ID              string
	NationalID      sql.NullString
	FirstName       string
	FatherName      string
	GrandfatherName string
	FamilyName      string
	Gender          string
	BirthYear       sql.NullInt32
	Phone           string
	Notes           string
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Household struct {
	ID                 string
	UnitID             string
	HeadPersonID       string
	Size               int
	MaleCount          int
	FemaleCount        int
	MaleChildCount     int
	FemaleChildCount   int
	ElderlyCount       int
	DisabledCount      int
	DisplacementStatus string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Relation struct {
	ID             string
	PersonID       string
	UnitID         string
	RelationType   string
	OwnershipShare sql.NullString
	StartDate      sql.NullTime
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Evidence struct {
	ID             string
	RelationID     sql.NullString
	ClaimID        sql.NullString
	EvidenceType   string
	DocumentNumber string
	IssuedBy       string
	IssueDate      sql.NullTime
	AttachmentID   sql.NullString
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Claim struct {
	ID          string
	ClaimantID  string
	UnitID      string
	ClaimType   string
	Status      string
	Description string
	FiledDate   sql.NullTime
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Survey struct {
	ID           string
	BuildingID   string
	SurveyorName string
	SurveyDate   sql.NullTime
	SurveyType   string
	PackageID    sql.NullString
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Attachment struct {
	ID        string
	Hash      string
	Path      string
	Name      string
	Size      int64
	MimeType  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type VocabularyCode struct {
	Vocabulary string
	Code       string
	Label      string
	IsActive   bool
	Position   int
}
