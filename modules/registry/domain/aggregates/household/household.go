package household

import (
	"time"

	"github.com/google/uuid"
)

// Household records who occupies a property unit. Demographic counters are
// captured by surveyors and must sum to the household size.
type Household struct {
	id                 uuid.UUID
	unitID             uuid.UUID
	headPersonID       uuid.UUID
	size               int
	maleCount          int
	femaleCount        int
	maleChildCount     int
	femaleChildCount   int
	elderlyCount       int
	disabledCount      int
	displacementStatus string
	createdAt          time.Time
	updatedAt          time.Time
}

func New(unitID, headPersonID uuid.UUID, size int) Household {
	return Household{
		unitID:       unitID,
		headPersonID: headPersonID,
		size:         size,
	}
}

func Hydrate(
	id uuid.UUID,
	unitID uuid.UUID,
	headPersonID uuid.UUID,
	size int,
	maleCount int,
	femaleCount int,
	maleChildCount int,
	femaleChildCount int,
	elderlyCount int,
	disabledCount int,
	displacementStatus string,
	createdAt time.Time,
	updatedAt time.Time,
) Household {
	return Household{
		id:                 id,
		unitID:             unitID,
		headPersonID:       headPersonID,
		size:               size,
		maleCount:          maleCount,
		femaleCount:        femaleCount,
		maleChildCount:     maleChildCount,
		femaleChildCount:   femaleChildCount,
		elderlyCount:       elderlyCount,
		disabledCount:      disabledCount,
		displacementStatus: displacementStatus,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (h Household) ID() uuid.UUID              { return h.id }
func (h Household) UnitID() uuid.UUID          { return h.unitID }
func (h Household) HeadPersonID() uuid.UUID    { return h.headPersonID }
func (h Household) Size() int                  { return h.size }
func (h Household) MaleCount() int             { return h.maleCount }
func (h Household) FemaleCount() int           { return h.femaleCount }
func (h Household) MaleChildCount() int        { return h.maleChildCount }
func (h Household) FemaleChildCount() int      { return h.femaleChildCount }
func (h Household) ElderlyCount() int          { return h.elderlyCount }
func (h Household) DisabledCount() int         { return h.disabledCount }
func (h Household) DisplacementStatus() string { return h.displacementStatus }
func (h Household) CreatedAt() time.Time       { return h.createdAt }
func (h Household) UpdatedAt() time.Time       { return h.updatedAt }
func (h Household) IsZero() bool               { return h.id == uuid.Nil && h.unitID == uuid.Nil }

func (h Household) WithDemographics(male, female, maleChild, femaleChild, elderly, disabled int) Household {
	h.maleCount = male
	h.femaleCount = female
	h.maleChildCount = maleChild
	h.femaleChildCount = femaleChild
	h.elderlyCount = elderly
	h.disabledCount = disabled
	return h
}

func (h Household) WithDisplacementStatus(status string) Household {
	h.displacementStatus = status
	return h
}
