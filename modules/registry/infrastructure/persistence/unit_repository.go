package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/unit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrUnitNotFound = errors.New("property unit not found")
)

const (
	unitFindQuery = `
        SELECT
            pu.id,
            pu.building_id,
            pu.unit_number,
            pu.floor_number,
            pu.area_sqm,
            pu.unit_type,
            pu.occupancy_status,
            pu.notes,
            pu.created_at,
            pu.updated_at
        FROM property_units pu`

	unitKeysQuery = `
        SELECT pu.id, b.building_code, pu.unit_number
        FROM property_units pu
        JOIN buildings b ON b.id = pu.building_id`

	unitRepointBuildingQuery = `UPDATE property_units SET building_id = $2, updated_at = NOW() WHERE building_id = $1`

	unitDeleteQuery = `DELETE FROM property_units WHERE id = $1`
)

type PgUnitRepository struct{}

func NewUnitRepository() unit.Repository {
	return &PgUnitRepository{}
}

func (g *PgUnitRepository) GetByID(ctx context.Context, id uuid.UUID) (unit.PropertyUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return unit.PropertyUnit{}, errors.Wrap(err, "failed to get transaction")
	}

	var row models.PropertyUnit
	err = tx.QueryRow(ctx, unitFindQuery+" WHERE pu.id = $1", id.String()).Scan(
		&row.ID,
		&row.BuildingID,
		&row.UnitNumber,
		&row.FloorNumber,
		&row.AreaSqm,
		&row.UnitType,
		&row.OccupancyStatus,
		&row.Notes,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return unit.PropertyUnit{}, ErrUnitNotFound
		}
		return unit.PropertyUnit{}, errors.Wrap(err, "failed to query property unit")
	}
	return toDomainUnit(&row)
}

func (g *PgUnitRepository) GetKeys(ctx context.Context) ([]unit.Key, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, unitKeysQuery)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query unit keys")
	}
	defer rows.Close()

	var keys []unit.Key
	for rows.Next() {
		var (
			idStr        string
			buildingCode string
			unitNumber   string
		)
		if err := rows.Scan(&idStr, &buildingCode, &unitNumber); err != nil {
			return nil, errors.Wrap(err, "failed to scan unit key row")
		}
		id, err := parseUUID("unit id", idStr)
		if err != nil {
			return nil, err
		}
		keys = append(keys, unit.Key{UnitID: id, BuildingCode: buildingCode, UnitNumber: unitNumber})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return keys, nil
}

func (g *PgUnitRepository) Create(ctx context.Context, u unit.PropertyUnit) (unit.PropertyUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return unit.PropertyUnit{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBUnit(u)

	fields := []string{
		"building_id",
		"unit_number",
		"floor_number",
		"area_sqm",
		"unit_type",
		"occupancy_status",
		"notes",
	}
	values := []interface{}{
		row.BuildingID,
		row.UnitNumber,
		row.FloorNumber,
		row.AreaSqm,
		row.UnitType,
		row.OccupancyStatus,
		row.Notes,
	}

	q := repo.Insert("property_units", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return unit.PropertyUnit{}, errors.Wrapf(err, "failed to insert unit %s", row.UnitNumber)
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgUnitRepository) Update(ctx context.Context, u unit.PropertyUnit) (unit.PropertyUnit, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return unit.PropertyUnit{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBUnit(u)

	fields := []string{
		"building_id",
		"unit_number",
		"floor_number",
		"area_sqm",
		"unit_type",
		"occupancy_status",
		"notes",
		"updated_at",
	}
	values := []interface{}{
		row.BuildingID,
		row.UnitNumber,
		row.FloorNumber,
		row.AreaSqm,
		row.UnitType,
		row.OccupancyStatus,
		row.Notes,
		time.Now(),
		row.ID,
	}

	query := repo.Update("property_units", fields, "id = $9")
	if _, err := tx.Exec(ctx, query, values...); err != nil {
		return unit.PropertyUnit{}, errors.Wrapf(err, "failed to update unit %s", row.ID)
	}
	return g.GetByID(ctx, u.ID())
}

func (g *PgUnitRepository) RepointBuilding(ctx context.Context, from, to uuid.UUID) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, unitRepointBuildingQuery, from.String(), to.String())
	if err != nil {
		return 0, errors.Wrap(err, "failed to repoint units to surviving building")
	}
	return tag.RowsAffected(), nil
}

func (g *PgUnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, unitDeleteQuery, id.String()); err != nil {
		return errors.Wrapf(err, "failed to delete unit %s", id)
	}
	return nil
}
