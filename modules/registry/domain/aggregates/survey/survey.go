package survey

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Survey records a single field visit to a building. Surveys imported from
// offline packages keep the package id as provenance.
type Survey struct {
	id           uuid.UUID
	buildingID   uuid.UUID
	surveyorName string
	surveyDate   *time.Time
	surveyType   string
	packageID    *uuid.UUID
	notes        string
	createdAt    time.Time
	updatedAt    time.Time
}

func New(buildingID uuid.UUID, surveyorName, surveyType string) Survey {
	return Survey{
		buildingID:   buildingID,
		surveyorName: strings.TrimSpace(surveyorName),
		surveyType:   strings.TrimSpace(surveyType),
	}
}

func Hydrate(
	id uuid.UUID,
	buildingID uuid.UUID,
	surveyorName string,
	surveyDate *time.Time,
	surveyType string,
	packageID *uuid.UUID,
	notes string,
	createdAt time.Time,
	updatedAt time.Time,
) Survey {
	return Survey{
		id:           id,
		buildingID:   buildingID,
		surveyorName: strings.TrimSpace(surveyorName),
		surveyDate:   surveyDate,
		surveyType:   strings.TrimSpace(surveyType),
		packageID:    packageID,
		notes:        notes,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

func (s Survey) ID() uuid.UUID          { return s.id }
func (s Survey) BuildingID() uuid.UUID  { return s.buildingID }
func (s Survey) SurveyorName() string   { return s.surveyorName }
func (s Survey) SurveyDate() *time.Time { return s.surveyDate }
func (s Survey) SurveyType() string     { return s.surveyType }
func (s Survey) PackageID() *uuid.UUID  { return s.packageID }
func (s Survey) Notes() string          { return s.notes }
func (s Survey) CreatedAt() time.Time   { return s.createdAt }
func (s Survey) UpdatedAt() time.Time   { return s.updatedAt }
func (s Survey) IsZero() bool           { return s.id == uuid.Nil && s.buildingID == uuid.Nil }

func (s Survey) WithSurveyDate(d *time.Time) Survey {
	s.surveyDate = d
	return s
}

func (s Survey) WithPackageID(id *uuid.UUID) Survey {
	s.packageID = id
	return s
}

func (s Survey) WithNotes(notes string) Survey {
	s.notes = notes
	return s
}
