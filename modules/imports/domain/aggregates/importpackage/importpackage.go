package importpackage

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
)

// Status is the durable pipeline position of a package. Transitions never
// skip a stage; the table in canTransition is the single source of truth.
type Status string

const (
	StatusPending            Status = "pending"
	StatusValidating         Status = "validating"
	StatusStaging            Status = "staging"
	StatusReviewingConflicts Status = "reviewing_conflicts"
	StatusReadyToCommit      Status = "ready_to_commit"
	StatusCommitting         Status = "committing"
	StatusCompleted          Status = "completed"
	StatusPartiallyCompleted Status = "partially_completed"
	StatusFailed             Status = "failed"
	StatusAbandoned          Status = "abandoned"
)

// IsTerminal reports whether the package has reached an outcome. Failed and
// PartiallyCompleted packages can still leave via explicit reset or commit
// retry, but count as terminal for abandoning and cleanup.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusPartiallyCompleted, StatusFailed, StatusAbandoned:
		return true
	}
	return false
}

// Stage names the pipeline step recorded on failure and in audit events.
type Stage string

const (
	StageIngest   Stage = "ingest"
	StageValidate Stage = "validate"
	StageDetect   Stage = "detect"
	StageCommit   Stage = "commit"
)

// ErrInvalidStatusTransition is wrapped with the offending from/to pair by
// every rejected transition.
var ErrInvalidStatusTransition = serrors.NewError(
	"INVALID_STATUS_TRANSITION",
	"package status transition not allowed",
	"",
)

func invalidTransition(from, to Status) error {
	return errors.Wrapf(ErrInvalidStatusTransition, "%s -> %s", from, to)
}

// ErrUnresolvedConflicts rejects review completion while open conflicts
// remain.
var ErrUnresolvedConflicts = serrors.NewError(
	"UNRESOLVED_CONFLICTS",
	"package still has unresolved conflicts",
	"",
)

// Manifest is the provenance block read from the container's manifest table.
type Manifest struct {
	PackageCode   string
	SchemaVersion string
	ExportedBy    string
	ExportedAt    *time.Time
	DeviceID      string
}

// RecordCounts tallies staged rows per entity type, as counted at unpack.
type RecordCounts map[staging.EntityType]int

func (c RecordCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ImportPackage tracks one survey container through the pipeline. The
// aggregate owns the status machine; services persist every transition.
type ImportPackage struct {
	id                     uuid.UUID
	packageCode            string
	status                 Status
	failedStage            Stage
	originalFileName       string
	containerPath          string
	archivePath            string
	manifest               Manifest
	importedBy             uuid.UUID
	recordCounts           RecordCounts
	hasUnresolvedConflicts bool
	validationReport       *ValidationReport
	commitReport           *CommitReport
	errorMessage           string
	validatedAt            *time.Time
	reviewedAt             *time.Time
	committedAt            *time.Time
	createdAt              time.Time
	updatedAt              time.Time
}

func New(manifest Manifest, originalFileName, containerPath string, importedBy uuid.UUID) ImportPackage {
	return ImportPackage{
		packageCode:      manifest.PackageCode,
		status:           StatusPending,
		originalFileName: originalFileName,
		containerPath:    containerPath,
		manifest:         manifest,
		importedBy:       importedBy,
		recordCounts:     RecordCounts{},
	}
}

// Hydration carries every persisted field; positional arguments are too
// error prone at this width.
type Hydration struct {
	ID                     uuid.UUID
	PackageCode            string
	Status                 Status
	FailedStage            Stage
	OriginalFileName       string
	ContainerPath          string
	ArchivePath            string
	Manifest               Manifest
	ImportedBy             uuid.UUID
	RecordCounts           RecordCounts
	HasUnresolvedConflicts bool
	ValidationReport       *ValidationReport
	CommitReport           *CommitReport
	ErrorMessage           string
	ValidatedAt            *time.Time
	ReviewedAt             *time.Time
	CommittedAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func Hydrate(h Hydration) ImportPackage {
	counts := h.RecordCounts
	if counts == nil {
		counts = RecordCounts{}
	}
	return ImportPackage{
		id:                     h.ID,
		packageCode:            h.PackageCode,
		status:                 h.Status,
		failedStage:            h.FailedStage,
		originalFileName:       h.OriginalFileName,
		containerPath:          h.ContainerPath,
		archivePath:            h.ArchivePath,
		manifest:               h.Manifest,
		importedBy:             h.ImportedBy,
		recordCounts:           counts,
		hasUnresolvedConflicts: h.HasUnresolvedConflicts,
		validationReport:       h.ValidationReport,
		commitReport:           h.CommitReport,
		errorMessage:           h.ErrorMessage,
		validatedAt:            h.ValidatedAt,
		reviewedAt:             h.ReviewedAt,
		committedAt:            h.CommittedAt,
		createdAt:              h.CreatedAt,
		updatedAt:              h.UpdatedAt,
	}
}

func (p ImportPackage) ID() uuid.UUID                { return p.id }
func (p ImportPackage) PackageCode() string          { return p.packageCode }
func (p ImportPackage) Status() Status               { return p.status }
func (p ImportPackage) FailedStage() Stage           { return p.failedStage }
func (p ImportPackage) OriginalFileName() string     { return p.originalFileName }
func (p ImportPackage) ContainerPath() string        { return p.containerPath }
func (p ImportPackage) ArchivePath() string          { return p.archivePath }
func (p ImportPackage) Manifest() Manifest           { return p.manifest }
func (p ImportPackage) ImportedBy() uuid.UUID        { return p.importedBy }
func (p ImportPackage) HasUnresolvedConflicts() bool { return p.hasUnresolvedConflicts }
func (p ImportPackage) ErrorMessage() string         { return p.errorMessage }
func (p ImportPackage) ValidatedAt() *time.Time      { return p.validatedAt }
func (p ImportPackage) ReviewedAt() *time.Time       { return p.reviewedAt }
func (p ImportPackage) CommittedAt() *time.Time      { return p.committedAt }
func (p ImportPackage) CreatedAt() time.Time         { return p.createdAt }
func (p ImportPackage) UpdatedAt() time.Time         { return p.updatedAt }
func (p ImportPackage) IsZero() bool                 { return p.id == uuid.Nil && p.packageCode == "" }

func (p ImportPackage) RecordCounts() RecordCounts {
	out := make(RecordCounts, len(p.recordCounts))
	for t, n := range p.recordCounts {
		out[t] = n
	}
	return out
}

func (p ImportPackage) ValidationReport() *ValidationReport { return p.validationReport }
func (p ImportPackage) CommitReport() *CommitReport         { return p.commitReport }

// canTransition is the full transition table of the machine. Stage guards on
// Failed escapes are checked by the transition methods, not here.
func canTransition(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusValidating || to == StatusAbandoned
	case StatusValidating:
		return to == StatusStaging || to == StatusFailed || to == StatusAbandoned
	case StatusStaging:
		return to == StatusReviewingConflicts || to == StatusFailed || to == StatusAbandoned
	case StatusReviewingConflicts:
		return to == StatusReadyToCommit || to == StatusAbandoned
	case StatusReadyToCommit:
		return to == StatusCommitting || to == StatusAbandoned
	case StatusCommitting:
		return to == StatusCompleted || to == StatusPartiallyCompleted ||
			to == StatusFailed || to == StatusReadyToCommit || to == StatusAbandoned
	case StatusPartiallyCompleted:
		return to == StatusCommitting
	case StatusFailed:
		return to == StatusValidating || to == StatusReviewingConflicts || to == StatusReadyToCommit
	}
	return false
}

func (p ImportPackage) transition(to Status) (ImportPackage, error) {
	if !canTransition(p.status, to) {
		return p, invalidTransition(p.status, to)
	}
	p.status = to
	return p, nil
}

// StartValidation enters the validation stage from Pending or from a failed
// validation; the previous failure state is cleared.
func (p ImportPackage) StartValidation() (ImportPackage, error) {
	if p.status == StatusFailed && p.failedStage != StageValidate {
		return p, invalidTransition(p.status, StatusValidating)
	}
	next, err := p.transition(StatusValidating)
	if err != nil {
		return p, err
	}
	next.errorMessage = ""
	next.failedStage = ""
	return next, nil
}

// CompleteValidation records the unpack counts and the validation report and
// moves the package to Staging.
func (p ImportPackage) CompleteValidation(counts RecordCounts, report ValidationReport) (ImportPackage, error) {
	next, err := p.transition(StatusStaging)
	if err != nil {
		return p, err
	}
	next.recordCounts = counts
	next.validationReport = &report
	now := time.Now()
	next.validatedAt = &now
	return next, nil
}

// CompleteDetection moves to ReviewingConflicts, also legal directly from a
// failed detection re-run.
func (p ImportPackage) CompleteDetection(openConflicts int) (ImportPackage, error) {
	if p.status == StatusFailed && p.failedStage != StageDetect {
		return p, invalidTransition(p.status, StatusReviewingConflicts)
	}
	next, err := p.transition(StatusReviewingConflicts)
	if err != nil {
		return p, err
	}
	next.hasUnresolvedConflicts = openConflicts > 0
	next.errorMessage = ""
	next.failedStage = ""
	return next, nil
}

// CompleteReview confirms every conflict is settled and arms the commit.
func (p ImportPackage) CompleteReview() (ImportPackage, error) {
	if p.status == StatusReviewingConflicts && p.hasUnresolvedConflicts {
		return p, errors.Wrapf(ErrUnresolvedConflicts, "package %s", p.packageCode)
	}
	next, err := p.transition(StatusReadyToCommit)
	if err != nil {
		return p, err
	}
	now := time.Now()
	next.reviewedAt = &now
	return next, nil
}

// StartCommit enters the commit stage, either the first attempt or a retry
// after partial completion.
func (p ImportPackage) StartCommit() (ImportPackage, error) {
	next, err := p.transition(StatusCommitting)
	if err != nil {
		return p, err
	}
	next.errorMessage = ""
	next.failedStage = ""
	return next, nil
}

// FinishCommit stores the commit report and settles the outcome status.
func (p ImportPackage) FinishCommit(report CommitReport) (ImportPackage, error) {
	to, ok := report.Outcome.Status()
	if !ok {
		return p, errors.Errorf("commit report carries unknown outcome %q", report.Outcome)
	}
	next, err := p.transition(to)
	if err != nil {
		return p, err
	}
	next.commitReport = &report
	if to == StatusCompleted {
		now := time.Now()
		next.committedAt = &now
	}
	if to == StatusFailed {
		next.failedStage = StageCommit
		next.errorMessage = report.ErrorSummary()
	}
	return next, nil
}

// Fail records a stage failure. Legal from any working status; a re-run of
// an already failed stage that fails again refreshes the recorded failure.
func (p ImportPackage) Fail(stage Stage, message string) (ImportPackage, error) {
	if p.status != StatusFailed {
		next, err := p.transition(StatusFailed)
		if err != nil {
			return p, err
		}
		p = next
	}
	p.failedStage = stage
	p.errorMessage = message
	return p, nil
}

// Reset returns a commit-stage failure, or a package stuck in Committing, to
// ReadyToCommit. Only error state is cleared; staging data, resolutions and
// reports survive.
func (p ImportPackage) Reset() (ImportPackage, error) {
	if p.status == StatusFailed && p.failedStage != StageCommit {
		return p, invalidTransition(p.status, StatusReadyToCommit)
	}
	next, err := p.transition(StatusReadyToCommit)
	if err != nil {
		return p, err
	}
	next.errorMessage = ""
	next.failedStage = ""
	return next, nil
}

// Abandon closes a package that will never be committed.
func (p ImportPackage) Abandon() (ImportPackage, error) {
	if p.status.IsTerminal() {
		return p, invalidTransition(p.status, StatusAbandoned)
	}
	return p.transition(StatusAbandoned)
}

// WithArchivePath records where the committed container was archived.
func (p ImportPackage) WithArchivePath(path string) ImportPackage {
	p.archivePath = path
	return p
}

// WithUnresolvedConflicts is flipped by conflict resolution as open
// conflicts drain.
func (p ImportPackage) WithUnresolvedConflicts(open bool) ImportPackage {
	p.hasUnresolvedConflicts = open
	return p
}
