package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/building"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrBuildingNotFound = errors.New("building not found")
)

const (
	buildingFindQuery = `
        SELECT
            b.id,
            b.building_code,
            b.address,
            b.neighborhood_code,
            b.building_type,
            b.status,
            b.floors_count,
            b.latitude,
            b.longitude,
            b.footprint_wkt,
            b.notes,
            b.created_at,
            b.updated_at
        FROM buildings b`

	buildingExistsQuery = `SELECT 1 FROM buildings b`
)

type PgBuildingRepository struct{}

func NewBuildingRepository() building.Repository {
	return &PgBuildingRepository{}
}

func (g *PgBuildingRepository) GetByID(ctx context.Context, id uuid.UUID) (building.Building, error) {
	return g.queryOne(ctx, buildingFindQuery+" WHERE b.id = $1", id.String())
}

func (g *PgBuildingRepository) GetByCode(ctx context.Context, code string) (building.Building, error) {
	return g.queryOne(ctx, buildingFindQuery+" WHERE b.building_code = $1", code)
}

func (g *PgBuildingRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to get transaction")
	}

	query := repo.Exists(repo.Join(buildingExistsQuery, "WHERE b.building_code = $1"))

	exists := false
	if err := tx.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, errors.Wrap(err, "checking building code existence failed")
	}
	return exists, nil
}

func (g *PgBuildingRepository) Create(ctx context.Context, b building.Building) (building.Building, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return building.Building{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBBuilding(b)

	fields := []string{
		"building_code",
		"address",
		"neighborhood_code",
		"building_type",
		"status",
		"floors_count",
		"latitude",
		"longitude",
		"footprint_wkt",
		"notes",
	}
	values := []interface{}{
		row.BuildingCode,
		row.Address,
		row.NeighborhoodCode,
		row.BuildingType,
		row.Status,
		row.FloorsCount,
		row.Latitude,
		row.Longitude,
		row.FootprintWKT,
		row.Notes,
	}

	q := repo.Insert("buildings", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return building.Building{}, errors.Wrapf(err, "failed to insert building %s", row.BuildingCode)
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgBuildingRepository) queryOne(ctx context.Context, query string, args ...interface{}) (building.Building, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return building.Building{}, errors.Wrap(err, "failed to get transaction")
	}

	var row models.Building
	err = tx.QueryRow(ctx, query, args...).Scan(
		&row.ID,
		&row.BuildingCode,
		&row.Address,
		&row.NeighborhoodCode,
		&row.BuildingType,
		&row.Status,
		&row.FloorsCount,
		&row.Latitude,
		&row.Longitude,
		&row.FootprintWKT,
		&row.Notes,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return building.Building{}, ErrBuildingNotFound
		}
		return building.Building{}, errors.Wrap(err, "failed to query building")
	}
	return toDomainBuilding(&row)
}
