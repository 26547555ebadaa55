package evidence

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Evidence is a supporting document for a tenure relation or a claim.
// Validation requires at least one of the two links; a claim link is
// backfilled after insert once the claim row exists.
type Evidence struct {
	id             uuid.UUID
	relationID     *uuid.UUID
	claimID        *uuid.UUID
	evidenceType   string
	documentNumber string
	issuedBy       string
	issueDate      *time.Time
	attachmentID   *uuid.UUID
	createdAt      time.Time
	updatedAt      time.Time
}

func New(evidenceType string) Evidence {
	return Evidence{
		evidenceType: strings.TrimSpace(evidenceType),
	}
}

func Hydrate(
	id uuid.UUID,
	relationID *uuid.UUID,
	claimID *uuid.UUID,
	evidenceType string,
	documentNumber string,
	issuedBy string,
	issueDate *time.Time,
	attachmentID *uuid.UUID,
	createdAt time.Time,
	updatedAt time.Time,
) Evidence {
	return Evidence{
		id:             id,
		relationID:     relationID,
		claimID:        claimID,
		evidenceType:   strings.TrimSpace(evidenceType),
		documentNumber: documentNumber,
		issuedBy:       issuedBy,
		issueDate:      issueDate,
		attachmentID:   attachmentID,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

func (e Evidence) ID() uuid.UUID            { return e.id }
func (e Evidence) RelationID() *uuid.UUID   { return e.relationID }
func (e Evidence) ClaimID() *uuid.UUID      { return e.claimID }
func (e Evidence) EvidenceType() string     { return e.evidenceType }
func (e Evidence) DocumentNumber() string   { return e.documentNumber }
func (e Evidence) IssuedBy() string         { return e.issuedBy }
func (e Evidence) IssueDate() *time.Time    { return e.issueDate }
func (e Evidence) AttachmentID() *uuid.UUID { return e.attachmentID }
func (e Evidence) CreatedAt() time.Time     { return e.createdAt }
func (e Evidence) UpdatedAt() time.Time     { return e.updatedAt }
func (e Evidence) IsZero() bool             { return e.id == uuid.Nil && e.evidenceType == "" }

func (e Evidence) WithRelationID(id *uuid.UUID) Evidence {
	e.relationID = id
	return e
}

func (e Evidence) WithClaimID(id *uuid.UUID) Evidence {
	e.claimID = id
	return e
}

func (e Evidence) WithDocument(number, issuedBy string, issueDate *time.Time) Evidence {
	e.documentNumber = number
	e.issuedBy = issuedBy
	e.issueDate = issueDate
	return e
}

func (e Evidence) WithAttachmentID(id *uuid.UUID) Evidence {
	e.attachmentID = id
	return e
}
