package importpackage

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// CrashedErrorCount is the sentinel error count a level reports when its
// validator panicked. The pipeline continues past a crashed level.
const CrashedErrorCount = -1

// LevelReport summarizes one validator's pass over the package.
type LevelReport struct {
	Level      int    `json:"level"`
	Name       string `json:"name"`
	Checked    int    `json:"checked"`
	Errors     int    `json:"errors"`
	Warnings   int    `json:"warnings"`
	Crashed    bool   `json:"crashed,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// ValidationReport is persisted on the package after every validation pass.
type ValidationReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Levels     []LevelReport `json:"levels"`
}

func (r ValidationReport) TotalErrors() int {
	total := 0
	for _, l := range r.Levels {
		if l.Errors > 0 {
			total += l.Errors
		}
	}
	return total
}

func (r ValidationReport) TotalWarnings() int {
	total := 0
	for _, l := range r.Levels {
		total += l.Warnings
	}
	return total
}

func (r ValidationReport) HasCrashedLevel() bool {
	for _, l := range r.Levels {
		if l.Crashed {
			return true
		}
	}
	return false
}

// Outcome is the commit engine's verdict, mapped onto the package status by
// FinishCommit.
type Outcome string

const (
	OutcomeCompleted          Outcome = "completed"
	OutcomePartiallyCompleted Outcome = "partially_completed"
	OutcomeFailed             Outcome = "failed"
)

func (o Outcome) Status() (Status, bool) {
	switch o {
	case OutcomeCompleted:
		return StatusCompleted, true
	case OutcomePartiallyCompleted:
		return StatusPartiallyCompleted, true
	case OutcomeFailed:
		return StatusFailed, true
	}
	return "", false
}

// CommitError pins a per-record commit failure to its staged original id.
type CommitError struct {
	OriginalID string `json:"original_id"`
	Message    string `json:"message"`
}

// BatchReport covers one entity type's batch, in dependency order.
type BatchReport struct {
	EntityType staging.EntityType `json:"entity_type"`
	Committed  int                `json:"committed"`
	Skipped    int                `json:"skipped"`
	Failed     int                `json:"failed"`
	Errors     []CommitError      `json:"errors,omitempty"`
}

// CommitReport is persisted on the package after every commit attempt.
type CommitReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Outcome    Outcome       `json:"outcome"`
	Batches    []BatchReport `json:"batches"`
}

func (r CommitReport) TotalCommitted() int {
	total := 0
	for _, b := range r.Batches {
		total += b.Committed
	}
	return total
}

func (r CommitReport) TotalFailed() int {
	total := 0
	for _, b := range r.Batches {
		total += b.Failed
	}
	return total
}

// ErrorSummary flattens batch errors into one message for the package's
// error column.
func (r CommitReport) ErrorSummary() string {
	parts := make([]string, 0, 4)
	for _, b := range r.Batches {
		if b.Failed == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %d failed", b.EntityType, b.Failed))
	}
	if len(parts) == 0 {
		return ""
	}
	return "commit failures: " + strings.Join(parts, ", ")
}
