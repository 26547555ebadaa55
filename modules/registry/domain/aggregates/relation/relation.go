package relation

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Type string

const (
	TypeOwner    Type = "owner"
	TypeTenant   Type = "tenant"
	TypeHeir     Type = "heir"
	TypeOccupant Type = "occupant"
	TypeOther    Type = "other"
)

// ParseType maps a raw container value onto the closed relation type set,
// falling back to TypeOther for unrecognized legacy values.
func ParseType(raw string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "owner", "ownership":
		return TypeOwner, true
	case "tenant", "rent", "rental":
		return TypeTenant, true
	case "heir", "inheritance":
		return TypeHeir, true
	case "occupant", "occupancy":
		return TypeOccupant, true
	case "other":
		return TypeOther, true
	default:
		return TypeOther, false
	}
}

// RequiresEvidence reports whether tenure claims of this type must be backed
// by at least one evidence document.
func (t Type) RequiresEvidence() bool {
	return t == TypeOwner || t == TypeHeir
}

// Relation links a person to a property unit with a tenure right.
type Relation struct {
	id             uuid.UUID
	personID       uuid.UUID
	unitID         uuid.UUID
	relationType   Type
	ownershipShare decimal.Decimal
	startDate      *time.Time
	notes          string
	createdAt      time.Time
	updatedAt      time.Time
}

func New(personID, unitID uuid.UUID, relationType Type) Relation {
	return Relation{
		personID:     personID,
		unitID:       unitID,
		relationType: relationType,
	}
}

func Hydrate(
	id uuid.UUID,
	personID uuid.UUID,
	unitID uuid.UUID,
	relationType Type,
	ownershipShare decimal.Decimal,
	startDate *time.Time,
	notes string,
	createdAt time.Time,
	updatedAt time.Time,
) Relation {
	return Relation{
		id:             id,
		personID:       personID,
		unitID:         unitID,
		relationType:   relationType,
		ownershipShare: ownershipShare,
		startDate:      startDate,
		notes:          notes,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (r Relation) ID() uuid.UUID                   { return r.id }
func (r Relation) PersonID() uuid.UUID             { return r.personID }
func (r Relation) UnitID() uuid.UUID               { return r.unitID }
func (r Relation) RelationType() Type              { return r.relationType }
func (r Relation) OwnershipShare() decimal.Decimal { return r.ownershipShare }
func (r Relation) StartDate() *time.Time           { return r.startDate }
func (r Relation) Notes() string                   { return r.notes }
func (r Relation) CreatedAt() time.Time            { return r.createdAt }
func (r Relation) UpdatedAt() time.Time            { return r.updatedAt }
func (r Relation) IsZero() bool                    { return r.id == uuid.Nil && r.personID == uuid.Nil }

func (r Relation) WithOwnershipShare(share decimal.Decimal) Relation {
	r.ownershipShare = share
	return r
}

func (r Relation) WithStartDate(d *time.Time) Relation {
	r.startDate = d
	return r
}

func (r Relation) WithNotes(notes string) Relation {
	r.notes = notes
	return r
}
