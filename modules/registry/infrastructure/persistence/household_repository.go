package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/household"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrHouseholdNotFound = errors.New("household not found")
)

const (
	householdFindQuery = `
        SELECT
            h.id,
            h.unit_id,
            h.head_person_id,
            h.household_size,
            h.male_count,
            h.female_count,
            h.male_child_count,
            h.female_child_count,
            h.elderly_count,
            h.disabled_count,
            h.displacement_status,
            h.created_at,
            h.updated_at
        FROM households h`

	householdRepointHeadQuery = `UPDATE households SET head_person_id = $2, updated_at = NOW() WHERE head_person_id = $1`

	householdRepointUnitQuery = `UPDATE households SET unit_id = $2, updated_at = NOW() WHERE unit_id = $1`
)

type PgHouseholdRepository struct{}

func NewHouseholdRepository() household.Repository {
	return &PgHouseholdRepository{}
}

func (g *PgHouseholdRepository) GetByID(ctx context.Context, id uuid.UUID) (household.Household, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return household.Household{}, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Household
	err = tx.QueryRow(ctx, householdFindQuery+" WHERE h.id = $1", id.String()).Scan(
		&row.ID,
		&row.UnitID,
		&row.HeadPersonID,
		&row.Size,
		&row.MaleCount,
		&row.FemaleCount,
		&row.MaleChildCount,
		&row.FemaleChildCount,
		&row.ElderlyCount,
		&row.DisabledCount,
		&row.DisplacementStatus,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return household.Household{}, ErrHouseholdNotFound
		}
		return household.Household{}, errors.Wrap(err, "failed to query household")
	}
	return toDomainHousehold(&row)
}

func (g *PgHouseholdRepository) Create(ctx context.Context, h household.Household) (household.Household, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return household.Household{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBHousehold(h)

	fields := []string{
		"unit_id",
		"head_person_id",
		"household_size",
		"male_count",
		"female_count",
		"male_child_count",
		"female_child_count",
		"elderly_count",
		"disabled_count",
		"displacement_status",
	}
	values := []interface{}{
		row.UnitID,
		row.HeadPersonID,
		row.Size,
		row.MaleCount,
		row.FemaleCount,
		row.MaleChildCount,
		row.FemaleChildCount,
		row.ElderlyCount,
		row.DisabledCount,
		row.DisplacementStatus,
	}

	q := repo.Insert("households", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return household.Household{}, errors.Wrap(err, "failed to insert household")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgHouseholdRepository) RepointHead(ctx context.Context, from, to uuid.UUID) (int64, error) {
	return g.repoint(ctx, householdRepointHeadQuery, from, to)
}

func (g *PgHouseholdRepository) RepointUnit(ctx context.Context, from, to uuid.UUID) (int64, error) {
	return g.repoint(ctx, householdRepointUnitQuery, from, to)
}

func (g *PgHouseholdRepository) repoint(ctx context.Context, query string, from, to uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, query, from.String(), to.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to repoint households")
	}
	return tag.RowsAffected(), nil
}
