package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/registry/domain/entities/attachment"
	"github.com/google/uuid"
)

func writeJSONLine(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return withCode(exitPipeline, fmt.Errorf("json encode: %w", err))
	}
	return nil
}

type validationSummary struct {
	Errors   int  `json:"errors"`
	Warnings int  `json:"warnings"`
	Crashed  bool `json:"crashed,omitempty"`
}

type commitSummary struct {
	Outcome   string `json:"outcome"`
	Committed int    `json:"committed"`
	Failed    int    `json:"failed,omitempty"`
}

// packageView is the JSON shape every package-returning command prints.
type packageView struct {
	ID                     uuid.UUID                  `json:"id"`
	PackageCode            string                     `json:"package_code"`
	Status                 string                     `json:"status"`
	FailedStage            string                     `json:"failed_stage,omitempty"`
	OriginalFileName       string                     `json:"original_file_name,omitempty"`
	RecordCounts           importpackage.RecordCounts `json:"record_counts,omitempty"`
	HasUnresolvedConflicts bool                       `json:"has_unresolved_conflicts"`
	Validation             *validationSummary         `json:"validation,omitempty"`
	Commit                 *commitSummary             `json:"commit,omitempty"`
	Error                  string                     `json:"error,omitempty"`
	ValidatedAt            *time.Time                 `json:"validated_at,omitempty"`
	ReviewedAt             *time.Time                 `json:"reviewed_at,omitempty"`
	CommittedAt            *time.Time                 `json:"committed_at,omitempty"`
	CreatedAt              time.Time                  `json:"created_at"`
	UpdatedAt              time.Time                  `json:"updated_at"`
}

func packageLine(p importpackage.ImportPackage) packageView {
	v := packageView{
		ID:                     p.ID(),
		PackageCode:            p.PackageCode(),
		Status:                 string(p.Status()),
		FailedStage:            string(p.FailedStage()),
		OriginalFileName:       p.OriginalFileName(),
		RecordCounts:           p.RecordCounts(),
		HasUnresolvedConflicts: p.HasUnresolvedConflicts(),
		Error:                  p.ErrorMessage(),
		ValidatedAt:            p.ValidatedAt(),
		ReviewedAt:             p.ReviewedAt(),
		CommittedAt:            p.CommittedAt(),
		CreatedAt:              p.CreatedAt(),
		UpdatedAt:              p.UpdatedAt(),
	}
	if r := p.ValidationReport(); r != nil {
		v.Validation = &validationSummary{
			Errors:   r.TotalErrors(),
			Warnings: r.TotalWarnings(),
			Crashed:  r.HasCrashedLevel(),
		}
	}
	if r := p.CommitReport(); r != nil {
		v.Commit = &commitSummary{
			Outcome:   string(r.Outcome),
			Committed: r.TotalCommitted(),
			Failed:    r.TotalFailed(),
		}
	}
	return v
}

type conflictView struct {
	ID              uuid.UUID              `json:"id"`
	PackageID       uuid.UUID              `json:"package_id"`
	EntityType      staging.EntityType     `json:"entity_type"`
	Left            conflict.Ref           `json:"left"`
	Right           conflict.Ref           `json:"right"`
	Score           int                    `json:"score"`
	Confidence      string                 `json:"confidence"`
	MatchedCriteria conflict.MatchCriteria `json:"matched_criteria,omitempty"`
	Status          string                 `json:"status"`
	Resolution      string                 `json:"resolution"`
	AutoDetected    bool                   `json:"auto_detected"`
	ResolvedBy      *uuid.UUID             `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
}

func conflictLine(c *conflict.Conflict) conflictView {
	return conflictView{
		ID:              c.ID(),
		PackageID:       c.PackageID(),
		EntityType:      c.EntityType(),
		Left:            c.Left(),
		Right:           c.Right(),
		Score:           c.Score(),
		Confidence:      string(c.Confidence()),
		MatchedCriteria: c.MatchedCriteria(),
		Status:          string(c.Status()),
		Resolution:      string(c.Resolution()),
		AutoDetected:    c.AutoDetected(),
		ResolvedBy:      c.ResolvedBy(),
		ResolvedAt:      c.ResolvedAt(),
		CreatedAt:       c.CreatedAt(),
	}
}

type attachmentView struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type"`
}

func attachmentLine(a *attachment.Attachment) attachmentView {
	return attachmentView{
		ID:       a.ID(),
		Name:     a.Name(),
		Path:     a.Path(),
		Size:     a.Size(),
		MimeType: a.MimeType(),
	}
}
