package itf

import (
	"context"
	"testing"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TestContext provides a fluent API for building test environments: a fresh
// database, registered modules, and a context carrying the pool, a
// transaction rolled back on cleanup, and an actor id.
type TestContext struct {
	ctx     context.Context
	pool    *pgxpool.Pool
	tx      pgx.Tx
	app     application.Application
	actorID uuid.UUID
	modules []application.Module
	dbName  string
	noTx    bool
}

func NewTestContext() *TestContext {
	return &TestContext{
		ctx:     context.Background(),
		actorID: uuid.New(),
		modules: []application.Module{},
	}
}

func (tc *TestContext) WithModules(modules ...application.Module) *TestContext {
	tc.modules = append(tc.modules, modules...)
	return tc
}

func (tc *TestContext) WithActor(actorID uuid.UUID) *TestContext {
	tc.actorID = actorID
	return tc
}

func (tc *TestContext) WithDBName(tb testing.TB, name string) *TestContext {
	tb.Helper()
	if tc.dbName == "" {
		tc.dbName = name
	}
	return tc
}

// WithoutTx builds a context that runs services directly against the pool.
// Needed by tests exercising code that opens its own transactions.
func (tc *TestContext) WithoutTx() *TestContext {
	tc.noTx = true
	return tc
}

// Build creates the test context with all dependencies
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	if tc.dbName == "" {
		tc.dbName = tb.Name()
	}

	CreateDB(tc.dbName)
	tc.pool = NewPool(DbOpts(tc.dbName))

	app, err := SetupApplication(tc.ctx, tc.pool, tc.modules...)
	if err != nil {
		tb.Fatal(err)
	}
	tc.app = app

	if !tc.noTx {
		tx, err := tc.pool.Begin(tc.ctx)
		if err != nil {
			tb.Fatal(err)
		}
		tc.tx = tx
	}

	tc.ctx = tc.buildContext()

	tb.Cleanup(func() {
		if tc.tx != nil {
			if err := tc.tx.Rollback(context.Background()); err != nil && err != pgx.ErrTxClosed {
				tb.Logf("Warning: failed to rollback transaction: %v", err)
			}
		}
		tc.pool.Close()
	})

	return &TestEnvironment{
		Ctx:     tc.ctx,
		Pool:    tc.pool,
		Tx:      tc.tx,
		App:     tc.app,
		ActorID: tc.actorID,
	}
}

func (tc *TestContext) buildContext() context.Context {
	ctx := tc.ctx
	ctx = composables.WithPool(ctx, tc.pool)
	if tc.tx != nil {
		ctx = composables.WithTx(ctx, tc.tx)
	}
	ctx = composables.WithActor(ctx, tc.actorID)
	return ctx
}

// TestEnvironment contains all test dependencies
type TestEnvironment struct {
	Ctx     context.Context
	Pool    *pgxpool.Pool
	Tx      pgx.Tx
	App     application.Application
	ActorID uuid.UUID
}

// Service retrieves a service from the application
func (te *TestEnvironment) Service(service interface{}) interface{} {
	return te.App.Service(service)
}

// GetService is a generic helper that retrieves and casts a service
func GetService[T any](te *TestEnvironment) *T {
	var zero T
	service := te.App.Service(zero)
	if service == nil {
		return nil
	}
	return service.(*T)
}

// WithTx returns a new context with the test transaction
func (te *TestEnvironment) WithTx(ctx context.Context) context.Context {
	return composables.WithTx(ctx, te.Tx)
}
