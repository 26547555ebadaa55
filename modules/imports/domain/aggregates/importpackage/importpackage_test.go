package importpackage_test

import (
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

func newPending() importpackage.ImportPackage {
	return importpackage.New(
		importpackage.Manifest{
			PackageCode:   "PKG-2026-0001",
			SchemaVersion: "1",
			DeviceID:      "tablet-07",
		},
		"survey.db",
		"/data/containers/PKG-2026-0001.db",
		uuid.New(),
	)
}

func TestPipelineHappyPath(t *testing.T) {
	p := newPending()
	if p.Status() != importpackage.StatusPending {
		t.Fatalf("new package status = %v, want pending", p.Status())
	}

	p, err := p.StartValidation()
	if err != nil {
		t.Fatalf("StartValidation: %v", err)
	}
	if p.Status() != importpackage.StatusValidating {
		t.Fatalf("status = %v, want validating", p.Status())
	}

	counts := importpackage.RecordCounts{staging.EntityBuilding: 2, staging.EntityPerson: 5}
	p, err = p.CompleteValidation(counts, importpackage.ValidationReport{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("CompleteValidation: %v", err)
	}
	if p.Status() != importpackage.StatusStaging {
		t.Fatalf("status = %v, want staging", p.Status())
	}
	if p.RecordCounts().Total() != 7 {
		t.Errorf("record counts total = %d, want 7", p.RecordCounts().Total())
	}
	if p.ValidatedAt() == nil {
		t.Error("validatedAt not stamped")
	}

	p, err = p.CompleteDetection(0)
	if err != nil {
		t.Fatalf("CompleteDetection: %v", err)
	}
	if p.Status() != importpackage.StatusReviewingConflicts {
		t.Fatalf("status = %v, want reviewing_conflicts", p.Status())
	}
	if p.HasUnresolvedConflicts() {
		t.Error("no open conflicts, flag should be clear")
	}

	p, err = p.CompleteReview()
	if err != nil {
		t.Fatalf("CompleteReview: %v", err)
	}

	p, err = p.StartCommit()
	if err != nil {
		t.Fatalf("StartCommit: %v", err)
	}

	p, err = p.FinishCommit(importpackage.CommitReport{
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
		Outcome:    importpackage.OutcomeCompleted,
	})
	if err != nil {
		t.Fatalf("FinishCommit: %v", err)
	}
	if p.Status() != importpackage.StatusCompleted {
		t.Fatalf("status = %v, want completed", p.Status())
	}
	if p.CommittedAt() == nil {
		t.Error("committedAt not stamped")
	}
	if !p.Status().IsTerminal() {
		t.Error("completed should be terminal")
	}
}

func TestTransitionsNeverSkipStages(t *testing.T) {
	p := newPending()

	if _, err := p.StartCommit(); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
		t.Errorf("pending -> committing: err = %v, want ErrInvalidStatusTransition", err)
	}
	if _, err := p.CompleteReview(); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
		t.Errorf("pending -> ready_to_commit: err = %v, want ErrInvalidStatusTransition", err)
	}
	if _, err := p.CompleteDetection(0); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
		t.Errorf("pending -> reviewing_conflicts: err = %v, want ErrInvalidStatusTransition", err)
	}
	if _, err := p.CompleteValidation(nil, importpackage.ValidationReport{}); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
		t.Errorf("pending -> staging: err = %v, want ErrInvalidStatusTransition", err)
	}
}

func TestReviewBlockedByOpenConflicts(t *testing.T) {
	p := importpackage.Hydrate(importpackage.Hydration{
		ID:                     uuid.New(),
		PackageCode:            "PKG-2026-0002",
		Status:                 importpackage.StatusReviewingConflicts,
		HasUnresolvedConflicts: true,
	})

	if _, err := p.CompleteReview(); !errors.Is(err, importpackage.ErrUnresolvedConflicts) {
		t.Fatalf("err = %v, want ErrUnresolvedConflicts", err)
	}

	p = p.WithUnresolvedConflicts(false)
	p, err := p.CompleteReview()
	if err != nil {
		t.Fatalf("CompleteReview after resolving: %v", err)
	}
	if p.Status() != importpackage.StatusReadyToCommit {
		t.Errorf("status = %v, want ready_to_commit", p.Status())
	}
	if p.ReviewedAt() == nil {
		t.Error("reviewedAt not stamped")
	}
}

func TestFailedStageGuardsRerunPaths(t *testing.T) {
	p := importpackage.Hydrate(importpackage.Hydration{
		ID:          uuid.New(),
		PackageCode: "PKG-2026-0003",
		Status:      importpackage.StatusFailed,
		FailedStage: importpackage.StageValidate,
	})

	// Wrong escape for a validation failure.
	if _, err := p.Reset(); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
		t.Errorf("reset of validate failure: err = %v, want ErrInvalidStatusTransition", err)
	}
	if _, err := p.CompleteDetection(0); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
		t.Errorf("detect completion of validate failure: err = %v, want ErrInvalidStatusTransition", err)
	}

	p, err := p.StartValidation()
	if err != nil {
		t.Fatalf("StartValidation re-run: %v", err)
	}
	if p.Status() != importpackage.StatusValidating {
		t.Fatalf("status = %v, want validating", p.Status())
	}
	if p.ErrorMessage() != "" || p.FailedStage() != "" {
		t.Error("re-run should clear the recorded failure")
	}
}

func TestResetClearsOnlyErrorState(t *testing.T) {
	report := &importpackage.CommitReport{Outcome: importpackage.OutcomeFailed}
	p := importpackage.Hydrate(importpackage.Hydration{
		ID:           uuid.New(),
		PackageCode:  "PKG-2026-0004",
		Status:       importpackage.StatusFailed,
		FailedStage:  importpackage.StageCommit,
		ErrorMessage: "commit failures: person: 2 failed",
		CommitReport: report,
		RecordCounts: importpackage.RecordCounts{staging.EntityPerson: 4},
	})

	p, err := p.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if p.Status() != importpackage.StatusReadyToCommit {
		t.Fatalf("status = %v, want ready_to_commit", p.Status())
	}
	if p.ErrorMessage() != "" || p.FailedStage() != "" {
		t.Error("error state should be cleared")
	}
	if p.CommitReport() == nil {
		t.Error("the failed attempt's report must survive a reset")
	}
	if p.RecordCounts()[staging.EntityPerson] != 4 {
		t.Error("record counts must survive a reset")
	}
}

func TestStaleCommittingCanReset(t *testing.T) {
	p := importpackage.Hydrate(importpackage.Hydration{
		ID:          uuid.New(),
		PackageCode: "PKG-2026-0005",
		Status:      importpackage.StatusCommitting,
	})

	p, err := p.Reset()
	if err != nil {
		t.Fatalf("Reset of stale committing package: %v", err)
	}
	if p.Status() != importpackage.StatusReadyToCommit {
		t.Errorf("status = %v, want ready_to_commit", p.Status())
	}
}

func TestPartialCompletionAllowsCommitRetry(t *testing.T) {
	p := importpackage.Hydrate(importpackage.Hydration{
		ID:          uuid.New(),
		PackageCode: "PKG-2026-0006",
		Status:      importpackage.StatusCommitting,
	})

	p, err := p.FinishCommit(importpackage.CommitReport{
		Outcome: importpackage.OutcomePartiallyCompleted,
		Batches: []importpackage.BatchReport{
			{EntityType: staging.EntityBuilding, Committed: 2},
			{EntityType: staging.EntityPerson, Failed: 1, Errors: []importpackage.CommitError{
				{OriginalID: "p-17", Message: "unresolvable reference"},
			}},
		},
	})
	if err != nil {
		t.Fatalf("FinishCommit: %v", err)
	}
	if p.Status() != importpackage.StatusPartiallyCompleted {
		t.Fatalf("status = %v, want partially_completed", p.Status())
	}

	p, err = p.StartCommit()
	if err != nil {
		t.Fatalf("commit retry: %v", err)
	}
	if p.Status() != importpackage.StatusCommitting {
		t.Errorf("status = %v, want committing", p.Status())
	}
}

func TestAbandonOnlyFromNonTerminal(t *testing.T) {
	runnable := []importpackage.Status{
		importpackage.StatusPending,
		importpackage.StatusValidating,
		importpackage.StatusStaging,
		importpackage.StatusReviewingConflicts,
		importpackage.StatusReadyToCommit,
		importpackage.StatusCommitting,
	}
	for _, s := range runnable {
		p := importpackage.Hydrate(importpackage.Hydration{ID: uuid.New(), Status: s})
		p, err := p.Abandon()
		if err != nil {
			t.Errorf("Abandon from %v: %v", s, err)
			continue
		}
		if p.Status() != importpackage.StatusAbandoned {
			t.Errorf("Abandon from %v: status = %v", s, p.Status())
		}
	}

	terminal := []importpackage.Status{
		importpackage.StatusCompleted,
		importpackage.StatusPartiallyCompleted,
		importpackage.StatusFailed,
		importpackage.StatusAbandoned,
	}
	for _, s := range terminal {
		p := importpackage.Hydrate(importpackage.Hydration{ID: uuid.New(), Status: s})
		if _, err := p.Abandon(); !errors.Is(err, importpackage.ErrInvalidStatusTransition) {
			t.Errorf("Abandon from %v: err = %v, want ErrInvalidStatusTransition", s, err)
		}
	}
}

func TestFailRefreshesExistingFailure(t *testing.T) {
	p := importpackage.Hydrate(importpackage.Hydration{
		ID:          uuid.New(),
		Status:      importpackage.StatusFailed,
		FailedStage: importpackage.StageDetect,
	})

	p, err := p.Fail(importpackage.StageDetect, "matcher timeout")
	if err != nil {
		t.Fatalf("Fail on failed package: %v", err)
	}
	if p.Status() != importpackage.StatusFailed {
		t.Fatalf("status = %v, want failed", p.Status())
	}
	if p.ErrorMessage() != "matcher timeout" {
		t.Errorf("error message = %q", p.ErrorMessage())
	}
}

func TestCommitReportErrorSummary(t *testing.T) {
	report := importpackage.CommitReport{
		Outcome: importpackage.OutcomeFailed,
		Batches: []importpackage.BatchReport{
			{EntityType: staging.EntityBuilding, Committed: 3},
			{EntityType: staging.EntityPerson, Failed: 2},
			{EntityType: staging.EntityRelation, Failed: 1},
		},
	}
	want := "commit failures: person: 2 failed, relation: 1 failed"
	if got := report.ErrorSummary(); got != want {
		t.Errorf("ErrorSummary() = %q, want %q", got, want)
	}
	if report.TotalCommitted() != 3 || report.TotalFailed() != 3 {
		t.Errorf("totals = (%d, %d), want (3, 3)", report.TotalCommitted(), report.TotalFailed())
	}
}

func TestValidationReportCrashSentinel(t *testing.T) {
	report := importpackage.ValidationReport{
		Levels: []importpackage.LevelReport{
			{Level: 1, Name: "consistency", Checked: 10, Errors: 2},
			{Level: 2, Name: "references", Checked: 10, Errors: importpackage.CrashedErrorCount, Crashed: true},
		},
	}
	if !report.HasCrashedLevel() {
		t.Error("crashed level not reported")
	}
	if report.TotalErrors() != 2 {
		t.Errorf("TotalErrors() = %d, want 2 (sentinel not counted)", report.TotalErrors())
	}
}
