package handlers

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/aggregates/importpackage"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/audit"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/eventbus"
)

// Audit actions, one per pipeline event.
const (
	ActionPackageCreated      = "package.created"
	ActionValidationCompleted = "package.validation_completed"
	ActionDetectionCompleted  = "package.detection_completed"
	ActionReviewCompleted     = "package.review_completed"
	ActionPackageCommitted    = "package.committed"
	ActionPackageReset        = "package.reset"
	ActionPackageAbandoned    = "package.abandoned"
	ActionPackageCleanedUp    = "package.cleaned_up"
	ActionConflictResolved    = "conflict.resolved"
)

// AuditHandler turns pipeline events into append-only audit entries. Audit
// writes never fail the publishing operation; a lost entry is logged and
// dropped.
type AuditHandler struct {
	pool    *pgxpool.Pool
	entries audit.Repository
	log     logrus.FieldLogger
}

// RegisterAuditHandler subscribes the audit trail to every package and
// conflict event on the bus.
func RegisterAuditHandler(bus eventbus.EventBus, pool *pgxpool.Pool, entries audit.Repository, log logrus.FieldLogger) *AuditHandler {
	h := &AuditHandler{pool: pool, entries: entries, log: log}
	bus.Subscribe(h.onPackageCreated)
	bus.Subscribe(h.onValidationCompleted)
	bus.Subscribe(h.onDetectionCompleted)
	bus.Subscribe(h.onReviewCompleted)
	bus.Subscribe(h.onPackageCommitted)
	bus.Subscribe(h.onPackageReset)
	bus.Subscribe(h.onPackageAbandoned)
	bus.Subscribe(h.onPackageCleanedUp)
	bus.Subscribe(h.onConflictResolved)
	return h
}

func (h *AuditHandler) onPackageCreated(ev *importpackage.CreatedEvent) {
	h.record(ev.Package.ID(), ev.ActorID, ActionPackageCreated, map[string]any{
		"package_code": ev.Package.PackageCode(),
		"file":         ev.Package.OriginalFileName(),
	})
}

func (h *AuditHandler) onValidationCompleted(ev *importpackage.ValidationCompletedEvent) {
	payload := map[string]any{
		"records": ev.Package.RecordCounts().Total(),
	}
	if report := ev.Package.ValidationReport(); report != nil {
		payload["errors"] = report.TotalErrors()
		payload["warnings"] = report.TotalWarnings()
	}
	h.record(ev.Package.ID(), ev.ActorID, ActionValidationCompleted, payload)
}

func (h *AuditHandler) onDetectionCompleted(ev *importpackage.DetectionCompletedEvent) {
	h.record(ev.Package.ID(), ev.ActorID, ActionDetectionCompleted, map[string]any{
		"open_conflicts": ev.OpenConflicts,
	})
}

func (h *AuditHandler) onReviewCompleted(ev *importpackage.ReviewCompletedEvent) {
	h.record(ev.Package.ID(), ev.ActorID, ActionReviewCompleted, nil)
}

func (h *AuditHandler) onPackageCommitted(ev *importpackage.CommittedEvent) {
	payload := map[string]any{
		"status": string(ev.Package.Status()),
	}
	if report := ev.Package.CommitReport(); report != nil {
		payload["outcome"] = string(report.Outcome)
		payload["committed"] = report.TotalCommitted()
		payload["failed"] = report.TotalFailed()
	}
	h.record(ev.Package.ID(), ev.ActorID, ActionPackageCommitted, payload)
}

func (h *AuditHandler) onPackageReset(ev *importpackage.ResetEvent) {
	h.record(ev.Package.ID(), ev.ActorID, ActionPackageReset, nil)
}

func (h *AuditHandler) onPackageAbandoned(ev *importpackage.AbandonedEvent) {
	h.record(ev.Package.ID(), ev.ActorID, ActionPackageAbandoned, nil)
}

func (h *AuditHandler) onPackageCleanedUp(ev *importpackage.CleanedUpEvent) {
	h.record(ev.Package.ID(), ev.ActorID, ActionPackageCleanedUp, nil)
}

func (h *AuditHandler) onConflictResolved(ev *conflict.ResolvedEvent) {
	c := ev.Conflict
	h.record(c.PackageID(), ev.ActorID, ActionConflictResolved, map[string]any{
		"conflict_id": c.ID().String(),
		"entity_type": string(c.EntityType()),
		"resolution":  string(c.Resolution()),
	})
}

func (h *AuditHandler) record(packageID, actorID uuid.UUID, action string, payload map[string]any) {
	var raw json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			h.log.WithField("action", action).WithError(err).Warn("audit: payload not encodable")
		} else {
			raw = encoded
		}
	}

	ctx := composables.WithPool(context.Background(), h.pool)
	entry := &audit.Entry{
		PackageID: packageID,
		ActorID:   actorID,
		Action:    action,
		Payload:   raw,
	}
	if err := h.entries.Insert(ctx, entry); err != nil {
		h.log.WithFields(logrus.Fields{
			"package": packageID,
			"action":  action,
		}).WithError(err).Warn("audit: entry not persisted")
	}
}
