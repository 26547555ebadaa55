package persistence

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/vocabulary"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/infrastructure/persistence/models"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

const (
	vocabularyFindQuery = `
        SELECT
            v.vocabulary,
            v.code,
            v.label,
            v.is_active,
            v.position
        FROM vocabulary_codes v`

	vocabularyUpsertQuery = `
        INSERT INTO vocabulary_codes (vocabulary, code, label, is_active, position)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (vocabulary, code)
        DO UPDATE SET label = EXCLUDED.label, is_active = EXCLUDED.is_active, position = EXCLUDED.position`

	vocabularyDeactivateQuery = `UPDATE vocabulary_codes SET is_active = false WHERE vocabulary = $1 AND code = $2`
)

type PgVocabularyRepository struct{}

func NewVocabularyRepository() vocabulary.Repository {
	return &PgVocabularyRepository{}
}

func (g *PgVocabularyRepository) GetAll(ctx context.Context) ([]*vocabulary.Code, error) {
	return g.queryCodes(ctx, vocabularyFindQuery+" ORDER BY v.vocabulary, v.position, v.code")
}

func (g *PgVocabularyRepository) GetByVocabulary(ctx context.Context, name string) ([]*vocabulary.Code, error) {
	return g.queryCodes(ctx, vocabularyFindQuery+" WHERE v.vocabulary = $1 ORDER BY v.position, v.code", name)
}

func (g *PgVocabularyRepository) Upsert(ctx context.Context, codes ...*vocabulary.Code) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	for _, c := range codes {
		_, err := tx.Exec(ctx, vocabularyUpsertQuery, c.Vocabulary(), c.Code(), c.Label(), c.Active(), c.Position())
		if err != nil {
			return errors.Wrapf(err, "failed to upsert vocabulary code %s/%s", c.Vocabulary(), c.Code())
		}
	}
	return nil
}

func (g *PgVocabularyRepository) Deactivate(ctx context.Context, name, code string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction")
	}

	if _, err := tx.Exec(ctx, vocabularyDeactivateQuery, name, code); err != nil {
		return errors.Wrapf(err, "failed to deactivate vocabulary code %s/%s", name, code)
	}
	return nil
}

func (g *PgVocabularyRepository) Sets(ctx context.Context) (map[string]vocabulary.Set, error) {
	codes, err := g.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	sets := make(map[string]vocabulary.Set)
	for _, c := range codes {
		set, ok := sets[c.Vocabulary()]
		if !ok {
			set = vocabulary.Set{}
			sets[c.Vocabulary()] = set
		}
		set[c.Code()] = c.Active()
	}
	return sets, nil
}

func (g *PgVocabularyRepository) queryCodes(ctx context.Context, query string, args ...interface{}) ([]*vocabulary.Code, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query vocabulary codes")
	}
	defer rows.Close()

	var out []*vocabulary.Code
	for rows.Next() {
		var row models.VocabularyCode
		if err := rows.Scan(
			&row.Vocabulary,
			&row.Code,
			&row.Label,
			&row.IsActive,
			&row.Position,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vocabulary code row")
		}
		out = append(out, toDomainVocabularyCode(&row))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "row iteration error")
	}
	return out, nil
}
