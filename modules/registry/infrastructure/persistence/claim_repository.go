package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/claim"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrClaimNotFound = errors.New("claim not found")
)

const (
	claimFindQuery = `
        SELECT
            c.id,
            c.claimant_id,
            c.unit_id,
            c.claim_type,
            c.status,
            c.description,
            c.filed_date,
            c.created_at,
            c.updated_at
        FROM claims c`

	claimRepointClaimantQuery = `UPDATE claims SET claimant_id = $2, updated_at = NOW() WHERE claimant_id = $1`

	claimRepointUnitQuery = `UPDATE claims SET unit_id = $2, updated_at = NOW() WHERE unit_id = $1`
)

type PgClaimRepository struct{}

func NewClaimRepository() claim.Repository {
	return &PgClaimRepository{}
}

func (g *PgClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (claim.Claim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return claim.Claim{}, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Claim
	err = tx.QueryRow(ctx, claimFindQuery+" WHERE c.id = $1", id.String()).Scan(
		&row.ID,
		&row.ClaimantID,
		&row.UnitID,
		&row.ClaimType,
		&row.Status,
		&row.Description,
		&row.FiledDate,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return claim.Claim{}, ErrClaimNotFound
		}
		return claim.Claim{}, errors.Wrap(err, "failed to query claim")
	}
	return toDomainClaim(&row)
}

func (g *PgClaimRepository) Create(ctx context.Context, c claim.Claim) (claim.Claim, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return claim.Claim{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBClaim(c)

	fields := []string{
		"claimant_id",
		"unit_id",
		"claim_type",
		"status",
		"description",
		"filed_date",
	}
	values := []interface{}{
		row.ClaimantID,
		row.UnitID,
		row.ClaimType,
		row.Status,
		row.Description,
		row.FiledDate,
	}

	q := repo.Insert("claims", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return claim.Claim{}, errors.Wrap(err, "failed to insert claim")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgClaimRepository) RepointClaimant(ctx context.Context, oldPersonID, newPersonID uuid.UUID) (int64, error) {
	return g.repoint(ctx, claimRepointClaimantQuery, oldPersonID, newPersonID)
}

func (g *PgClaimRepository) RepointUnit(ctx context.Context, oldUnitID, newUnitID uuid.UUID) (int64, error) {
	return g.repoint(ctx, claimRepointUnitQuery, oldUnitID, newUnitID)
}

func (g *PgClaimRepository) repoint(ctx context.Context, query string, from, to uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, query, from.String(), to.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to repoint claims")
	}
	return tag.RowsAffected(), nil
}
