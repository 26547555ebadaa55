package building

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// codePattern is the fixed-width administrative hierarchy code:
// governorate(2)-district(2)-neighborhood(3)-building(4).
var codePattern = regexp.MustCompile(`^\d{2}-\d{2}-\d{3}-\d{4}$`)

func IsValidCode(code string) bool {
	return codePattern.MatchString(strings.TrimSpace(code))
}

type Building struct {
	id               uuid.UUID
	buildingCode     string
	address          string
	neighborhoodCode string
	buildingType     string
	status           string
	floorsCount      int
	latitude         *float64
	longitude        *float64
	footprintWKT     string
	notes            string
	createdAt        time.Time
	updatedAt        time.Time
}

func New(buildingCode, address string) Building {
	return Building{
		buildingCode: strings.TrimSpace(buildingCode),
		address:      strings.TrimSpace(address),
	}
}

func Hydrate(
	id uuid.UUID,
	buildingCode string,
	address string,
	neighborhoodCode string,
	buildingType string,
	status string,
	floorsCount int,
	latitude *float64,
	longitude *float64,
	footprintWKT string,
	notes string,
	createdAt time.Time,
	updatedAt time.Time,
) Building {
	return Building{
		id:               id,
		buildingCode:     strings.TrimSpace(buildingCode),
		address:          strings.TrimSpace(address),
		neighborhoodCode: neighborhoodCode,
		buildingType:     buildingType,
		status:           status,
		floorsCount:      floorsCount,
		latitude:         latitude,
		longitude:        longitude,
		footprintWKT:     footprintWKT,
		notes:            notes,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (b Building) ID() uuid.UUID            { return b.id }
func (b Building) BuildingCode() string     { return b.buildingCode }
func (b Building) Address() string          { return b.address }
func (b Building) NeighborhoodCode() string { return b.neighborhoodCode }
func (b Building) BuildingType() string     { return b.buildingType }
func (b Building) Status() string           { return b.status }
func (b Building) FloorsCount() int         { return b.floorsCount }
func (b Building) Latitude() *float64       { return b.latitude }
func (b Building) Longitude() *float64      { return b.longitude }
func (b Building) FootprintWKT() string     { return b.footprintWKT }
func (b Building) Notes() string            { return b.notes }
func (b Building) CreatedAt() time.Time     { return b.createdAt }
func (b Building) UpdatedAt() time.Time     { return b.updatedAt }
func (b Building) IsZero() bool             { return b.id == uuid.Nil && b.buildingCode == "" }

func (b Building) WithNeighborhoodCode(code string) Building {
	b.neighborhoodCode = code
	return b
}

func (b Building) WithBuildingType(t string) Building {
	b.buildingType = t
	return b
}

func (b Building) WithStatus(status string) Building {
	b.status = status
	return b
}

func (b Building) WithFloorsCount(n int) Building {
	b.floorsCount = n
	return b
}

func (b Building) WithCoordinates(lat, lon *float64) Building {
	b.latitude = lat
	b.longitude = lon
	return b
}

func (b Building) WithFootprintWKT(wkt string) Building {
	b.footprintWKT = wkt
	return b
}

func (b Building) WithNotes(notes string) Building {
	b.notes = notes
	return b
}
