package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/evidence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrEvidenceNotFound = errors.New("evidence not found")
)

const (
	evidenceFindQuery = `
        SELECT
            e.id,
            e.relation_id,
            e.claim_id,
            e.evidence_type,
            e.document_number,
            e.issued_by,
            e.issue_date,
            e.attachment_id,
            e.created_at,
            e.updated_at
        FROM evidences e`

	evidenceCountByAttachmentQuery = `SELECT COUNT(*) FROM evidences WHERE attachment_id = $1`

	evidenceLinkClaimQuery = `UPDATE evidences SET claim_id = $2, updated_at = now() WHERE id = $1`
)

type PgEvidenceRepository struct{}

func NewEvidenceRepository() evidence.Repository {
	return &PgEvidenceRepository{}
}

func (g *PgEvidenceRepository) GetByID(ctx context.Context, id uuid.UUID) (evidence.Evidence, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return evidence.Evidence{}, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Evidence
	err = tx.QueryRow(ctx, evidenceFindQuery+" WHERE e.id = $1", id.String()).Scan(
		&row.ID,
		&row.RelationID,
		&row.ClaimID,
		&row.EvidenceType,
		&row.DocumentNumber,
		&row.IssuedBy,
		&row.IssueDate,
		&row.AttachmentID,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return evidence.Evidence{}, ErrEvidenceNotFound
		}
		return evidence.Evidence{}, errors.Wrap(err, "failed to query evidence")
	}
	return toDomainEvidence(&row)
}

func (g *PgEvidenceRepository) Create(ctx context.Context, e evidence.Evidence) (evidence.Evidence, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return evidence.Evidence{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBEvidence(e)

	fields := []string{
		"relation_id",
		"claim_id",
		"evidence_type",
		"document_number",
		"issued_by",
		"issue_date",
		"attachment_id",
	}
	values := []interface{}{
		row.RelationID,
		row.ClaimID,
		row.EvidenceType,
		row.DocumentNumber,
		row.IssuedBy,
		row.IssueDate,
		row.AttachmentID,
	}

	q := repo.Insert("evidences", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return evidence.Evidence{}, errors.Wrap(err, "failed to insert evidence")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgEvidenceRepository) LinkClaim(ctx context.Context, evidenceID, claimID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, evidenceLinkClaimQuery, evidenceID.String(), claimID.String())
	if err != nil {
		return errors.Wrap(err, "failed to link evidence to claim")
	}
	if tag.RowsAffected() == 0 {
		return errors.Wrapf(ErrEvidenceNotFound, "evidence %s", evidenceID)
	}
	return nil
}

func (g *PgEvidenceRepository) CountByAttachment(ctx context.Context, attachmentID uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	var count int64
	if err := tx.QueryRow(ctx, evidenceCountByAttachmentQuery, attachmentID.String()).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count evidences by attachment")
	}
	return count, nil
}
