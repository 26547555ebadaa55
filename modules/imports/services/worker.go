package services

import (
	"context"
	"hash/fnv"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

// SystemActorID attributes pipeline stages run by the background worker
// rather than an operator.
var SystemActorID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type WorkerOptions struct {
	PollInterval time.Duration
	BatchSize    int
	ActorID      uuid.UUID
	Logger       *logrus.Entry
}

func (o *WorkerOptions) setDefaults() {
	if o.PollInterval == 0 {
		o.PollInterval = 5 * time.Second
	}
	if o.BatchSize == 0 {
		o.BatchSize = 4
	}
	if o.ActorID == uuid.Nil {
		o.ActorID = SystemActorID
	}
	if o.Logger == nil {
		nop := logrus.New()
		nop.SetOutput(io.Discard)
		o.Logger = logrus.NewEntry(nop)
	}
}

// PipelineWorker polls for packages with an automatic next stage (Pending
// packages get validated, Staging packages get detection) and advances each
// by exactly one stage per pick-up. Review and commit are human actions and
// are never triggered here; Failed packages wait for an explicit re-run.
type PipelineWorker struct {
	pool     *pgxpool.Pool
	packages importpackage.Repository
	service  *PackageService
	opts     WorkerOptions
	m        *pipelineMetrics
}

func NewPipelineWorker(pool *pgxpool.Pool, packages importpackage.Repository, service *PackageService, opts WorkerOptions) (*PipelineWorker, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	if packages == nil {
		return nil, errors.New("package repository is required")
	}
	if service == nil {
		return nil, errors.New("package service is required")
	}
	opts.setDefaults()
	return &PipelineWorker{
		pool:     pool,
		packages: packages,
		service:  service,
		opts:     opts,
		m:        getMetrics(),
	}, nil
}

// Run polls until the context is cancelled. Tick failures are logged and the
// loop keeps going; only cancellation stops it.
func (w *PipelineWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := w.processOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.opts.Logger.WithError(err).Warn("pipeline: worker tick failed")
		}
	}
}

func (w *PipelineWorker) processOnce(ctx context.Context) error {
	w.m.cyclesTotal.Inc()

	runnable, err := w.packages.List(ctx, &importpackage.FindParams{
		Statuses: []importpackage.Status{importpackage.StatusPending, importpackage.StatusStaging},
		Limit:    w.opts.BatchSize,
		SortAsc:  true,
	})
	if err != nil {
		return errors.Wrap(err, "list runnable packages")
	}

	for _, pkg := range runnable {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.advance(ctx, pkg); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			w.opts.Logger.WithField("package", pkg.ID()).WithError(err).Warn("pipeline: package pick-up failed")
		}
	}
	return nil
}

// advance runs one stage for one package under a per-package advisory lock,
// so concurrent workers never double-process the same package.
func (w *PipelineWorker) advance(ctx context.Context, pkg importpackage.ImportPackage) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Release()

	key := packageLockKey(pkg.ID())
	var locked bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1::bigint)`, key).Scan(&locked); err != nil {
		return errors.Wrap(err, "acquire package lock")
	}
	if !locked {
		w.m.lockBusy.Inc()
		return nil
	}
	defer func() {
		var unlocked bool
		_ = conn.QueryRow(context.Background(), `SELECT pg_advisory_unlock($1::bigint)`, key).Scan(&unlocked)
	}()

	ctx = composables.WithActor(ctx, w.opts.ActorID)

	// Re-read under the lock; another worker may already have advanced it.
	current, err := w.service.GetByID(ctx, pkg.ID())
	if err != nil {
		return err
	}

	var stage string
	start := time.Now()
	switch current.Status() {
	case importpackage.StatusPending:
		stage = "validate"
		_, err = w.service.RunValidation(ctx, current.ID())
	case importpackage.StatusStaging:
		stage = "detect"
		_, err = w.service.DetectDuplicates(ctx, current.ID())
	default:
		return nil
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	w.m.stagesTotal.WithLabelValues(stage, result).Inc()
	w.m.stageLatency.WithLabelValues(stage, result).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		// The failure is recorded on the package; the worker moves on and
		// never retries by itself.
		w.opts.Logger.WithFields(logrus.Fields{
			"package": pkg.ID(),
			"stage":   stage,
		}).WithError(err).Warn("pipeline: stage failed")
		return nil
	}

	w.opts.Logger.WithFields(logrus.Fields{
		"package": pkg.ID(),
		"stage":   stage,
	}).Info("pipeline: stage advanced")
	return nil
}

func packageLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("imports:pipeline:" + id.String()))
	return int64(h.Sum64())
}
