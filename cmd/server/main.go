package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/internal/server"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/services"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/application"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/configuration"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/eventbus"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	connectCtx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	pool, err := pgxpool.New(connectCtx, conf.Database.Opts)
	cancel()
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		log.Fatalf("failed to load modules: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = composables.WithPool(ctx, pool)

	if err := app.Migrations().Run(ctx); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Debug trail of everything the pipeline publishes. The audit handler
	// persists these events; this subscriber only surfaces them in logs.
	app.EventPublisher().Subscribe(func(event any) {
		logger.WithField("event", fmt.Sprintf("%T", event)).Debug("pipeline event")
	})

	group, groupCtx := errgroup.WithContext(ctx)

	if conf.Pipeline.WorkerEnabled {
		worker, err := services.NewPipelineWorker(
			pool,
			persistence.NewPackageRepository(),
			app.Service(services.PackageService{}).(*services.PackageService),
			services.WorkerOptions{
				PollInterval: conf.Pipeline.PollInterval,
				BatchSize:    conf.Pipeline.WorkerBatchSize,
				Logger:       logger.WithField("component", "pipeline-worker"),
			},
		)
		if err != nil {
			log.Fatalf("failed to build pipeline worker: %v", err)
		}
		group.Go(func() error {
			return worker.Run(groupCtx)
		})
	} else {
		logger.Info("pipeline worker disabled")
	}

	if conf.Ops.Enabled {
		ops := server.NewOps(server.OpsOptions{
			Logger:  logger,
			Pool:    pool,
			Address: conf.Ops.Address,
		})
		group.Go(ops.Start)
		group.Go(func() error {
			<-groupCtx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return ops.Shutdown(shutdownCtx)
		})
	}

	// Keeps the daemon alive until a signal even with worker and ops
	// listener disabled.
	group.Go(func() error {
		<-groupCtx.Done()
		return groupCtx.Err()
	})

	logger.WithField("worker", conf.Pipeline.WorkerEnabled).Info("import pipeline daemon started")
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.WithError(err).Error("daemon stopped")
		pool.Close()
		conf.Unload()
		os.Exit(1)
	}

	logger.Info("daemon stopped")
	pool.Close()
	conf.Unload()
}
