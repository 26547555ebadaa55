package claim

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
)

// ParseStatus maps a raw container value onto the claim lifecycle. The
// second return reports whether the value was recognized.
func ParseStatus(raw string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "draft":
		return StatusDraft, true
	case "submitted":
		return StatusSubmitted, true
	case "under_review", "underreview":
		return StatusUnderReview, true
	case "accepted":
		return StatusAccepted, true
	case "rejected":
		return StatusRejected, true
	default:
		return StatusDraft, false
	}
}

// IsImportable reports whether a freshly surveyed claim may legally carry
// this status. Review outcomes only ever originate inside the registry.
func (s Status) IsImportable() bool {
	return s == StatusDraft || s == StatusSubmitted
}

type Claim struct {
	id          uuid.UUID
	claimantID  uuid.UUID
	unitID      uuid.UUID
	claimType   string
	status      Status
	description string
	filedDate   *time.Time
	createdAt   time.Time
	updatedAt   time.Time
}

func New(claimantID, unitID uuid.UUID, claimType string) Claim {
	return Claim{
		claimantID: claimantID,
		unitID:     unitID,
		claimType:  strings.TrimSpace(claimType),
		status:     StatusDraft,
	}
}

func Hydrate(
	id uuid.UUID,
	claimantID uuid.UUID,
	unitID uuid.UUID,
	claimType string,
	status Status,
	description string,
	filedDate *time.Time,
	createdAt time.Time,
	updatedAt time.Time,
) Claim {
	return Claim{
		id:          id,
		claimantID:  claimantID,
		unitID:      unitID,
		claimType:   strings.TrimSpace(claimType),
		status:      status,
		description: description,
		filedDate:   filedDate,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (c Claim) ID() uuid.UUID         { return c.id }
func (c Claim) ClaimantID() uuid.UUID { return c.claimantID }
func (c Claim) UnitID() uuid.UUID     { return c.unitID }
func (c Claim) ClaimType() string     { return c.claimType }
func (c Claim) Status() Status        { return c.status }
func (c Claim) Description() string   { return c.description }
func (c Claim) FiledDate() *time.Time { return c.filedDate }
func (c Claim) CreatedAt() time.Time  { return c.createdAt }
func (c Claim) UpdatedAt() time.Time  { return c.updatedAt }
func (c Claim) IsZero() bool          { return c.id == uuid.Nil && c.claimantID == uuid.Nil }

func (c Claim) WithStatus(s Status) Claim {
	c.status = s
	return c
}

func (c Claim) WithDescription(d string) Claim {
	c.description = d
	return c
}

func (c Claim) WithFiledDate(d *time.Time) Claim {
	c.filedDate = d
	return c
}
