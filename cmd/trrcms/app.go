package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/services"
	registryservices "github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/eventbus"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// openApplication connects the pool, registers the modules and returns a
// context carrying the pool for composables consumers. The cleanup func
// closes the pool and the log file.
func openApplication(ctx context.Context) (application.Application, context.Context, func(), error) {
	conf := configuration.Use()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, withCode(exitDB, fmt.Errorf("db connect failed: %w", err))
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, nil, nil, withCode(exitDB, fmt.Errorf("db ping failed: %w", err))
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, nil, nil, withCode(exitDB, fmt.Errorf("register modules: %w", err))
	}

	cleanup := func() {
		pool.Close()
		conf.Unload()
	}
	return app, composables.WithPool(ctx, pool), cleanup, nil
}

func packageService(app application.Application) *services.PackageService {
	return app.Service(services.PackageService{}).(*services.PackageService)
}

func mergeService(app application.Application) *services.MergeService {
	return app.Service(services.MergeService{}).(*services.MergeService)
}

func exportService(app application.Application) *services.ReportExportService {
	return app.Service(services.ReportExportService{}).(*services.ReportExportService)
}

func vocabularyService(app application.Application) *registryservices.VocabularyService {
	return app.Service(registryservices.VocabularyService{}).(*registryservices.VocabularyService)
}

// resolvePackage accepts a package id or a package code.
func resolvePackage(ctx context.Context, svc *services.PackageService, arg string) (importpackage.ImportPackage, error) {
	arg = strings.TrimSpace(arg)
	if id, err := uuid.Parse(arg); err == nil {
		pkg, err := svc.GetByID(ctx, id)
		if err != nil {
			return importpackage.ImportPackage{}, classify(err)
		}
		return pkg, nil
	}
	pkg, err := svc.GetByCode(ctx, arg)
	if err != nil {
		return importpackage.ImportPackage{}, classify(err)
	}
	return pkg, nil
}

func parseEntityType(s string) (staging.EntityType, error) {
	t := staging.EntityType(strings.TrimSpace(s))
	for _, known := range staging.CommitOrder() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown entity type: %q", s)
}

// classify folds service and repository failures onto the exit code ladder.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return err
	}
	if errors.Is(err, persistence.ErrPackageNotFound) ||
		errors.Is(err, persistence.ErrConflictNotFound) ||
		errors.Is(err, persistence.ErrStagingRecordNotFound) {
		return withCode(exitNotFound, err)
	}
	if errors.Is(err, persistence.ErrPackageCodeTaken) {
		return withCode(exitValidation, err)
	}
	var be *serrors.BaseError
	if errors.As(err, &be) {
		return withCode(exitValidation, err)
	}
	var ve serrors.ValidationErrors
	if errors.As(err, &ve) {
		return withCode(exitValidation, err)
	}
	return withCode(exitPipeline, err)
}
