package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/relation"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrRelationNotFound = errors.New("relation not found")
)

const (
	relationFindQuery = `
        SELECT
            r.id,
            r.person_id,
            r.unit_id,
            r.relation_type,
            r.ownership_share::text,
            r.start_date,
            r.notes,
            r.created_at,
            r.updated_at
        FROM relations r`

	relationRepointPersonQuery = `UPDATE relations SET person_id = $2, updated_at = NOW() WHERE person_id = $1`

	relationRepointUnitQuery = `UPDATE relations SET unit_id = $2, updated_at = NOW() WHERE unit_id = $1`
)

type PgRelationRepository struct{}

func NewRelationRepository() relation.Repository {
	return &PgRelationRepository{}
}

func (g *PgRelationRepository) GetByID(ctx context.Context, id uuid.UUID) (relation.Relation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return relation.Relation{}, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Relation
	err = tx.QueryRow(ctx, relationFindQuery+" WHERE r.id = $1", id.String()).Scan(
		&row.ID,
		&row.PersonID,
		&row.UnitID,
		&row.RelationType,
		&row.OwnershipShare,
		&row.StartDate,
		&row.Notes,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return relation.Relation{}, ErrRelationNotFound
		}
		return relation.Relation{}, errors.Wrap(err, "failed to query relation")
	}
	return toDomainRelation(&row)
}

func (g *PgRelationRepository) Create(ctx context.Context, r relation.Relation) (relation.Relation, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return relation.Relation{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBRelation(r)

	fields := []string{
		"person_id",
		"unit_id",
		"relation_type",
		"ownership_share",
		"start_date",
		"notes",
	}
	values := []interface{}{
		row.PersonID,
		row.UnitID,
		row.RelationType,
		row.OwnershipShare,
		row.StartDate,
		row.Notes,
	}

	q := repo.Insert("relations", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return relation.Relation{}, errors.Wrap(err, "failed to insert relation")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgRelationRepository) RepointPerson(ctx context.Context, from, to uuid.UUID) (int64, error) {
	return g.repoint(ctx, relationRepointPersonQuery, from, to)
}

func (g *PgRelationRepository) RepointUnit(ctx context.Context, from, to uuid.UUID) (int64, error) {
	return g.repoint(ctx, relationRepointUnitQuery, from, to)
}

func (g *PgRelationRepository) repoint(ctx context.Context, query string, from, to uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, query, from.String(), to.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to repoint relations")
	}
	return tag.RowsAffected(), nil
}
