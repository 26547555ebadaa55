package unit

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyUnit is one addressable unit inside a building. Unit numbers are
// unique within their building.
type PropertyUnit struct {
	id              uuid.UUID
	buildingID      uuid.UUID
	unitNumber      string
	floorNumber     int
	areaSqm         *float64
	unitType        string
	occupancyStatus string
	notes           string
	createdAt       time.Time
	updatedAt       time.Time
}

func New(buildingID uuid.UUID, unitNumber string) PropertyUnit {
	return PropertyUnit{
		buildingID: buildingID,
		unitNumber: strings.TrimSpace(unitNumber),
	}
}

func Hydrate(
	id uuid.UUID,
	buildingID uuid.UUID,
	unitNumber string,
	floorNumber int,
	areaSqm *float64,
	unitType string,
	occupancyStatus string,
	notes string,
	createdAt time.Time,
	updatedAt time.Time,
) PropertyUnit {
	return PropertyUnit{
		id:              id,
		buildingID:      buildingID,
		unitNumber:      strings.TrimSpace(unitNumber),
		floorNumber:     floorNumber,
		areaSqm:         areaSqm,
		unitType:        unitType,
		occupancyStatus: occupancyStatus,
		notes:           notes,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (u PropertyUnit) ID() uuid.UUID           { return u.id }
func (u PropertyUnit) BuildingID() uuid.UUID   { return u.buildingID }
func (u PropertyUnit) UnitNumber() string      { return u.unitNumber }
func (u PropertyUnit) FloorNumber() int        { return u.floorNumber }
func (u PropertyUnit) AreaSqm() *float64       { return u.areaSqm }
func (u PropertyUnit) UnitType() string        { return u.unitType }
func (u PropertyUnit) OccupancyStatus() string { return u.occupancyStatus }
func (u PropertyUnit) Notes() string           { return u.notes }
func (u PropertyUnit) CreatedAt() time.Time    { return u.createdAt }
func (u PropertyUnit) UpdatedAt() time.Time    { return u.updatedAt }
func (u PropertyUnit) IsZero() bool            { return u.id == uuid.Nil && u.unitNumber == "" }

func (u PropertyUnit) WithFloorNumber(n int) PropertyUnit {
	u.floorNumber = n
	return u
}

func (u PropertyUnit) WithAreaSqm(area *float64) PropertyUnit {
	u.areaSqm = area
	return u
}

func (u PropertyUnit) WithUnitType(t string) PropertyUnit {
	u.unitType = t
	return u
}

func (u PropertyUnit) WithOccupancyStatus(s string) PropertyUnit {
	u.occupancyStatus = s
	return u
}

func (u PropertyUnit) WithNotes(notes string) PropertyUnit {
	u.notes = notes
	return u
}
