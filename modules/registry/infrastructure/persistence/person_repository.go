package persistence

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/aggregates/person"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/repo"
)

var (
	ErrPersonNotFound = errors.New("person not found")
)

const (
	personFindQuery = `
        SELECT
            p.id,
            p.national_id,
            p.first_name,
            p.father_name,
            p.grandfather_name,
            p.family_name,
            p.gender,
            p.birth_year,
            p.phone,
            p.notes,
            p.is_active,
            p.created_at,
            p.updated_at
        FROM persons p`

	personDeactivateQuery = `UPDATE persons SET is_active = false, updated_at = NOW() WHERE id = $1`
)

type PgPersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PgPersonRepository{}
}

func (g *PgPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	persons, err := g.queryPersons(ctx, personFindQuery+" WHERE p.id = $1", id.String())
	if err != nil {
		return person.Person{}, err
	}
	if len(persons) == 0 {
		return person.Person{}, ErrPersonNotFound
	}
	return persons[0], nil
}

func (g *PgPersonRepository) GetActive(ctx context.Context) ([]person.Person, error) {
	return g.queryPersons(ctx, personFindQuery+" WHERE p.is_active ORDER BY p.created_at")
}

func (g *PgPersonRepository) Create(ctx context.Context, p person.Person) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBPerson(p)

	fields := []string{
		"national_id",
		"first_name",
		"father_name",
		"grandfather_name",
		"family_name",
		"gender",
		"birth_year",
		"phone",
		"notes",
		"is_active",
	}
	values := []interface{}{
		row.NationalID,
		row.FirstName,
		row.FatherName,
		row.GrandfatherName,
		row.FamilyName,
		row.Gender,
		row.BirthYear,
		row.Phone,
		row.Notes,
		row.IsActive,
	}

	q := repo.Insert("persons", fields, "id")
	var id string
	if err := tx.QueryRow(ctx, q, values...).Scan(&id); err != nil {
		return person.Person{}, errors.Wrap(err, "failed to insert person")
	}
	return g.GetByID(ctx, uuid.MustParse(id))
}

func (g *PgPersonRepository) Update(ctx context.Context, p person.Person) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, errors.Wrap(err, "failed to get transaction")
	}

	row := toDBPerson(p)

	fields := []string{
		"national_id",
		"first_name",
		"father_name",
		"grandfather_name",
		"family_name",
		"gender",
		"birth_year",
		"phone",
		"notes",
		"is_active",
		"updated_at",
	}
	values := []interface{}{
		row.NationalID,
		row.FirstName,
		row.FatherName,
		row.GrandfatherName,
		row.FamilyName,
		row.Gender,
		row.BirthYear,
		row.Phone,
		row.Notes,
		row.IsActive,
		time.Now(),
		row.ID,
	}

	query := repo.Update("persons", fields, "id = $12")
	if _, err := tx.Exec(ctx, query, values...); err != nil {
		return person.Person{}, errors.Wrapf(err, "failed to update person %s", row.ID)
	}
	return g.GetByID(ctx, p.ID())
}

func (g *PgPersonRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, personDeactivateQuery, id.String()); err != nil {
		return errors.Wrapf(err, "failed to deactivate person %s", id)
	}
	return nil
}

func (g *PgPersonRepository) queryPersons(ctx context.Context, query string, args ...interface{}) ([]person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query persons")
	}
	defer rows.Close()

	var out []person.Person
	for rows.Next() {
		var row models.Person
		if err := rows.Scan(
			&row.ID,
			&row.NationalID,
			&row.FirstName,
			&row.FatherName,
			&row.GrandfatherName,
			&row.FamilyName,
			&row.Gender,
			&row.BirthYear,
			&row.Phone,
			&row.Notes,
			&row.IsActive,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan person row")
		}
		p, err := toDomainPerson(&row)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
