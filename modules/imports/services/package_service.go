package services

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/archive"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/container"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/infrastructure/persistence"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/eventbus"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
)

// ErrApprovalLocked rejects approval flips once a package has entered or
// finished its commit.
var ErrApprovalLocked = serrors.NewError(
	"APPROVAL_LOCKED",
	"record approval can only change before commit",
	"",
)

// ErrPackageNotTerminal rejects cleanup of a package still in flight.
var ErrPackageNotTerminal = serrors.NewError(
	"PACKAGE_NOT_TERMINAL",
	"only terminal packages can be cleaned up",
	"",
)

// PackageServiceOptions wires the coordinator's collaborators.
type PackageServiceOptions struct {
	Packages      importpackage.Repository
	Staged        staging.Repository
	Conflicts     conflict.Repository
	Unpacker      *UnpackService
	Validator     *ValidationService
	Detector      *DetectionService
	Committer     *CommitService
	Archive       *archive.Store
	Blobs         attachment.Storage
	ContainersDir string
	Publisher     eventbus.EventBus
	Log           logrus.FieldLogger
}

// PackageService owns the package state machine and drives the pipeline
// stages. Every mutating operation requires an actor in context, persists
// the transition and publishes an event.
type PackageService struct {
	packages      importpackage.Repository
	staged        staging.Repository
	conflicts     conflict.Repository
	unpacker      *UnpackService
	validator     *ValidationService
	detector      *DetectionService
	committer     *CommitService
	archive       *archive.Store
	blobs         attachment.Storage
	containersDir string
	publisher     eventbus.EventBus
	log           logrus.FieldLogger
}

func NewPackageService(opts PackageServiceOptions) *PackageService {
	return &PackageService{
		packages:      opts.Packages,
		staged:        opts.Staged,
		conflicts:     opts.Conflicts,
		unpacker:      opts.Unpacker,
		validator:     opts.Validator,
		detector:      opts.Detector,
		committer:     opts.Committer,
		archive:       opts.Archive,
		blobs:         opts.Blobs,
		containersDir: opts.ContainersDir,
		publisher:     opts.Publisher,
		log:           opts.Log,
	}
}

// Ingest copies a container into managed storage and registers it as a
// Pending package. Ingesting a code that is already known returns the
// existing package untouched.
func (s *PackageService) Ingest(ctx context.Context, dto *importpackage.IngestDTO) (importpackage.ImportPackage, error) {
	if errs, ok := dto.Ok(); !ok {
		return importpackage.ImportPackage{}, errs
	}
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	manifest, err := readManifest(ctx, dto.FilePath)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	existing, err := s.packages.GetByCode(ctx, manifest.PackageCode)
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"package": existing.ID(),
			"code":    existing.PackageCode(),
		}).Info("ingest: package code already known, returning existing")
		return existing, nil
	}
	if !errors.Is(err, persistence.ErrPackageNotFound) {
		return importpackage.ImportPackage{}, err
	}

	if err := os.MkdirAll(s.containersDir, 0o755); err != nil {
		return importpackage.ImportPackage{}, errors.Wrap(err, "create containers directory")
	}
	dest := filepath.Join(s.containersDir, manifest.PackageCode+containerExt(dto.OriginalFileName))
	if err := copyContainer(dto.FilePath, dest); err != nil {
		return importpackage.ImportPackage{}, errors.Wrap(err, "copy container into managed storage")
	}

	created, err := s.packages.Create(ctx, importpackage.New(manifest, dto.OriginalFileName, dest, actor))
	if err != nil {
		_ = os.Remove(dest)
		if errors.Is(err, persistence.ErrPackageCodeTaken) {
			// Lost a race against a concurrent ingest of the same code.
			return s.packages.GetByCode(ctx, manifest.PackageCode)
		}
		return importpackage.ImportPackage{}, err
	}

	ev, err := importpackage.NewCreatedEvent(ctx, created)
	if err != nil {
		return created, err
	}
	s.publisher.Publish(ev)

	s.log.WithFields(logrus.Fields{
		"package": created.ID(),
		"code":    created.PackageCode(),
		"file":    created.OriginalFileName(),
	}).Info("ingest: package registered")
	return created, nil
}

// RunValidation unpacks the container and runs the validation pipeline. The
// package enters Validating first so a crash mid-stage is visible; stage
// errors move it to Failed at the validate stage, re-runnable.
func (s *PackageService) RunValidation(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	next, err := pkg.StartValidation()
	if err != nil {
		return pkg, err
	}
	if next, err = s.packages.Update(ctx, next); err != nil {
		return pkg, err
	}

	counts, err := s.unpacker.Unpack(ctx, next)
	if err != nil {
		return s.fail(ctx, next, importpackage.StageValidate, err)
	}
	report, err := s.validator.Run(ctx, next.ID())
	if err != nil {
		return s.fail(ctx, next, importpackage.StageValidate, err)
	}

	done, err := next.CompleteValidation(counts, report)
	if err != nil {
		return next, err
	}
	if done, err = s.packages.Update(ctx, done); err != nil {
		return next, err
	}

	ev, err := importpackage.NewValidationCompletedEvent(ctx, done)
	if err != nil {
		return done, err
	}
	s.publisher.Publish(ev)

	s.log.WithFields(logrus.Fields{
		"package":  done.ID(),
		"records":  counts.Total(),
		"errors":   report.TotalErrors(),
		"warnings": report.TotalWarnings(),
	}).Info("validation: pass finished")
	return done, nil
}

// DetectDuplicates scans for candidate duplicate pairs and moves the package
// into ReviewingConflicts. The scan, the created conflicts and the status
// transition share one transaction.
func (s *PackageService) DetectDuplicates(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}
	// Reject a wrong status before scanning anything.
	if _, err := pkg.CompleteDetection(0); err != nil {
		return pkg, err
	}

	type detectionResult struct {
		pkg     importpackage.ImportPackage
		created int
		open    int64
	}
	res, err := composables.InTxResult(ctx, func(txCtx context.Context) (detectionResult, error) {
		created, open, err := s.detector.Detect(txCtx, pkg)
		if err != nil {
			return detectionResult{}, err
		}
		next, err := pkg.CompleteDetection(int(open))
		if err != nil {
			return detectionResult{}, err
		}
		if next, err = s.packages.Update(txCtx, next); err != nil {
			return detectionResult{}, err
		}
		return detectionResult{pkg: next, created: created, open: open}, nil
	})
	if err != nil {
		if errors.Is(err, importpackage.ErrInvalidStatusTransition) {
			return pkg, err
		}
		return s.fail(ctx, pkg, importpackage.StageDetect, err)
	}

	ev, err := importpackage.NewDetectionCompletedEvent(ctx, res.pkg, int(res.open))
	if err != nil {
		return res.pkg, err
	}
	s.publisher.Publish(ev)

	s.log.WithFields(logrus.Fields{
		"package": res.pkg.ID(),
		"created": res.created,
		"open":    res.open,
	}).Info("detection: scan finished")
	return res.pkg, nil
}

// CompleteReview confirms every conflict is resolved and arms the commit.
// The open count is re-checked against the store inside the transaction, so
// a stale unresolved flag can never let an unreviewed package through.
func (s *PackageService) CompleteReview(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}

	updated, err := composables.InTxResult(ctx, func(txCtx context.Context) (importpackage.ImportPackage, error) {
		pkg, err := s.packages.GetByID(txCtx, id)
		if err != nil {
			return importpackage.ImportPackage{}, err
		}
		open, err := s.conflicts.CountOpen(txCtx, id)
		if err != nil {
			return pkg, err
		}
		next, err := pkg.WithUnresolvedConflicts(open > 0).CompleteReview()
		if err != nil {
			return pkg, err
		}
		return s.packages.Update(txCtx, next)
	})
	if err != nil {
		return updated, err
	}

	ev, err := importpackage.NewReviewCompletedEvent(ctx, updated)
	if err != nil {
		return updated, err
	}
	s.publisher.Publish(ev)

	s.log.WithField("package", updated.ID()).Info("review: completed, package ready to commit")
	return updated, nil
}

// Commit runs the commit engine. On full success the container is archived;
// a partial outcome leaves the package retryable via another Commit call.
func (s *PackageService) Commit(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	next, err := pkg.StartCommit()
	if err != nil {
		return pkg, err
	}
	// Committing is durable before the first batch opens, so a crashed run
	// is distinguishable from one that never started and can be Reset.
	if next, err = s.packages.Update(ctx, next); err != nil {
		return pkg, err
	}

	report, err := s.committer.Commit(ctx, next)
	if err != nil {
		return s.fail(ctx, next, importpackage.StageCommit, err)
	}

	done, err := next.FinishCommit(report)
	if err != nil {
		return next, err
	}
	if report.Outcome == importpackage.OutcomeCompleted {
		path, archiveErr := s.archive.Archive(done.ContainerPath(), done.PackageCode(), time.Now())
		if archiveErr != nil {
			// The commit stands either way; the container just stays in
			// managed storage.
			s.log.WithField("package", done.ID()).WithError(archiveErr).Warn("commit: container archive failed")
		} else {
			done = done.WithArchivePath(path)
		}
	}
	if done, err = s.packages.Update(ctx, done); err != nil {
		return next, err
	}

	ev, err := importpackage.NewCommittedEvent(ctx, done)
	if err != nil {
		return done, err
	}
	s.publisher.Publish(ev)

	s.log.WithFields(logrus.Fields{
		"package": done.ID(),
		"outcome": report.Outcome,
	}).Info("commit: finished")
	return done, nil
}

// Reset returns a commit-stage failure, or a package stuck in Committing
// after a crash, to ReadyToCommit.
func (s *PackageService) Reset(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	next, err := pkg.Reset()
	if err != nil {
		return pkg, err
	}
	if next, err = s.packages.Update(ctx, next); err != nil {
		return pkg, err
	}

	ev, err := importpackage.NewResetEvent(ctx, next)
	if err != nil {
		return next, err
	}
	s.publisher.Publish(ev)

	s.log.WithField("package", next.ID()).Info("package reset to ready_to_commit")
	return next, nil
}

// Abandon closes a package that will never be committed. Staged data stays
// until Cleanup.
func (s *PackageService) Abandon(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}

	next, err := pkg.Abandon()
	if err != nil {
		return pkg, err
	}
	if next, err = s.packages.Update(ctx, next); err != nil {
		return pkg, err
	}

	ev, err := importpackage.NewAbandonedEvent(ctx, next)
	if err != nil {
		return next, err
	}
	s.publisher.Publish(ev)

	s.log.WithField("package", next.ID()).Info("package abandoned")
	return next, nil
}

// Cleanup purges a terminal package's staging rows, conflicts and staged
// blobs. The package row, its reports and the archive are kept.
func (s *PackageService) Cleanup(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	if _, err := composables.UseActor(ctx); err != nil {
		return importpackage.ImportPackage{}, err
	}
	pkg, err := s.packages.GetByID(ctx, id)
	if err != nil {
		return importpackage.ImportPackage{}, err
	}
	if !pkg.Status().IsTerminal() {
		return pkg, errors.Wrapf(ErrPackageNotTerminal, "package %s is %s", pkg.PackageCode(), pkg.Status())
	}

	// Blob keys disappear with the staging rows, so collect them first.
	evidences, err := s.staged.EvidencesByPackage(ctx, pkg.ID())
	if err != nil {
		return pkg, errors.Wrap(err, "collect staged blobs")
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if err := s.conflicts.DeleteByPackage(txCtx, pkg.ID()); err != nil {
			return errors.Wrap(err, "purge conflicts")
		}
		if err := s.staged.DeleteByPackage(txCtx, pkg.ID()); err != nil {
			return errors.Wrap(err, "purge staging rows")
		}
		return nil
	})
	if err != nil {
		return pkg, err
	}

	for _, evRow := range evidences {
		if evRow.FilePath == "" {
			continue
		}
		if err := s.blobs.Remove(ctx, evRow.FilePath); err != nil {
			s.log.WithFields(logrus.Fields{
				"package": pkg.ID(),
				"blob":    evRow.FilePath,
			}).WithError(err).Warn("cleanup: staged blob not removed")
		}
	}

	ev, err := importpackage.NewCleanedUpEvent(ctx, pkg)
	if err != nil {
		return pkg, err
	}
	s.publisher.Publish(ev)

	s.log.WithField("package", pkg.ID()).Info("package staging data cleaned up")
	return pkg, nil
}

// SetApproval flips one staged record's commit approval. Allowed only while
// the package sits between validation and commit (retry included).
func (s *PackageService) SetApproval(ctx context.Context, packageID uuid.UUID, entityType staging.EntityType, recordID uuid.UUID, approved bool) error {
	if _, err := composables.UseActor(ctx); err != nil {
		return err
	}
	pkg, err := s.packages.GetByID(ctx, packageID)
	if err != nil {
		return err
	}
	switch pkg.Status() {
	case importpackage.StatusStaging,
		importpackage.StatusReviewingConflicts,
		importpackage.StatusReadyToCommit,
		importpackage.StatusPartiallyCompleted:
	default:
		return errors.Wrapf(ErrApprovalLocked, "package %s is %s", pkg.PackageCode(), pkg.Status())
	}
	return s.staged.SetApproval(ctx, packageID, entityType, recordID, approved)
}

func (s *PackageService) GetByID(ctx context.Context, id uuid.UUID) (importpackage.ImportPackage, error) {
	return s.packages.GetByID(ctx, id)
}

func (s *PackageService) GetByCode(ctx context.Context, code string) (importpackage.ImportPackage, error) {
	return s.packages.GetByCode(ctx, code)
}

func (s *PackageService) List(ctx context.Context, params *importpackage.FindParams) ([]importpackage.ImportPackage, error) {
	return s.packages.List(ctx, params)
}

func (s *PackageService) Count(ctx context.Context, params *importpackage.FindParams) (int64, error) {
	return s.packages.Count(ctx, params)
}

// StagingSummary returns the package's per-type, per-status record counts.
func (s *PackageService) StagingSummary(ctx context.Context, id uuid.UUID) (staging.Summary, error) {
	if _, err := s.packages.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.staged.SummaryByPackage(ctx, id)
}

// Findings lists the package's records that carry validation errors or
// warnings, optionally narrowed to one entity type.
func (s *PackageService) Findings(ctx context.Context, id uuid.UUID, entityType staging.EntityType) ([]*staging.Record, error) {
	if _, err := s.packages.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.staged.FindingsByPackage(ctx, id, entityType)
}

// fail records a stage failure on the package and passes the cause through.
func (s *PackageService) fail(ctx context.Context, pkg importpackage.ImportPackage, stage importpackage.Stage, cause error) (importpackage.ImportPackage, error) {
	failed, err := pkg.Fail(stage, cause.Error())
	if err != nil {
		s.log.WithField("package", pkg.ID()).WithError(err).Error("pipeline: could not record stage failure")
		return pkg, cause
	}
	if failed, err = s.packages.Update(ctx, failed); err != nil {
		s.log.WithField("package", pkg.ID()).WithError(err).Error("pipeline: could not persist stage failure")
		return pkg, cause
	}
	s.log.WithFields(logrus.Fields{
		"package": failed.ID(),
		"stage":   stage,
	}).WithError(cause).Error("pipeline: stage failed")
	return failed, cause
}

// readManifest opens the container only long enough to read its provenance
// block.
func readManifest(ctx context.Context, path string) (importpackage.Manifest, error) {
	reader, err := container.Open(path)
	if err != nil {
		return importpackage.Manifest{}, err
	}
	defer reader.Close()
	return reader.Manifest(ctx)
}

func containerExt(fileName string) string {
	if ext := filepath.Ext(fileName); ext != "" {
		return ext
	}
	return ".sqlite"
}

func copyContainer(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return err
	}
	return out.Close()
}
