package application

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// MigrationManager collects the embedded schema of every registered module
// and applies them in registration order. Each module tracks its own goose
// version table so module version sequences never collide. The fs must be
// rooted at the directory holding the .sql files.
type MigrationManager interface {
	RegisterSchema(module string, fsys fs.FS)
	Run(ctx context.Context) error
}

type moduleSchema struct {
	module string
	fsys   fs.FS
}

type migrationManager struct {
	pool    *pgxpool.Pool
	schemas []moduleSchema
}

func NewMigrationManager(pool *pgxpool.Pool) MigrationManager {
	return &migrationManager{pool: pool}
}

func (m *migrationManager) RegisterSchema(module string, fsys fs.FS) {
	m.schemas = append(m.schemas, moduleSchema{module: module, fsys: fsys})
}

func (m *migrationManager) Run(ctx context.Context) error {
	if len(m.schemas) == 0 {
		return nil
	}

	db := stdlib.OpenDBFromPool(m.pool)
	defer func() {
		_ = db.Close()
	}()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	for _, s := range m.schemas {
		goose.SetBaseFS(s.fsys)
		goose.SetTableName(fmt.Sprintf("goose_db_version_%s", s.module))
		if err := goose.UpContext(ctx, db, "."); err != nil {
			return fmt.Errorf("failed to migrate module %s: %w", s.module, err)
		}
	}
	goose.SetBaseFS(nil)
	goose.SetTableName("goose_db_version")

	return nil
}
