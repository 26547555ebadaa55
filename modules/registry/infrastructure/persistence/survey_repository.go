package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/survey"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrSurveyNotFound = errors.New("survey not found")
)

const (
	surveyFindQuery = `
        SELECT
            s.id,
            s.building_id,
            s.surveyor_name,
            s.survey_date,
            s.survey_type,
            s.package_id,
            s.notes,
            s.created_at,
            s.updated_at
        FROM surveys s`
)

type PgSurveyRepository struct{}

func NewSurveyRepository() survey.Repository {
	return &PgSurveyRepository{}
}

func (g *PgSurveyRepository) GetByID(ctx context.Context, id uuid.UUID) (survey.Survey, error) {
	surveys, err := g.querySurveys(ctx, surveyFindQuery+" WHERE s.id = $1", id.String())
	if err != nil {
		return survey.Survey{}, err
	}
	if len(surveys) == 0 {
		return survey.Survey{}, ErrSurveyNotFound
	}
	return surveys[0], nil
}

func (g *PgSurveyRepository) GetByPackageID(ctx context.Context, packageID uuid.UUID) ([]survey.Survey, error) {
	return g.querySurveys(ctx, surveyFindQuery+" WHERE s.package_id = $1 ORDER BY s.created_at", packageID.String())
}

func (g *PgSurveyRepository) Create(ctx context.Context, s survey.Survey) (survey.Survey, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return survey.Survey{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBSurvey(s)

	fields := []string{
		"building_id",
		"surveyor_name",
		"survey_date",
		"survey_type",
		"package_id",
		"notes",
	}
	values := []interface{}{
		row.BuildingID,
		row.SurveyorName,
		row.SurveyDate,
		row.SurveyType,
		row.PackageID,
		row.Notes,
	}

	q := repo.Insert("surveys", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return survey.Survey{}, errors.Wrap(err, "failed to insert survey")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgSurveyRepository) querySurveys(ctx context.Context, query string, args ...interface{}) ([]survey.Survey, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query surveys")
	}
	defer rows.Close()

	var out []survey.Survey
	for rows.Next() {
		var row models.Survey
		if err := rows.Scan(
			&row.ID,
			&row.BuildingID,
			&row.SurveyorName,
			&row.SurveyDate,
			&row.SurveyType,
			&row.PackageID,
			&row.Notes,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan survey row")
		}
		s, err := toDomainSurvey(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
