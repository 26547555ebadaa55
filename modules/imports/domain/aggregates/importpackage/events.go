package importpackage

import (
	"context"

	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/composables"
)

// Pipeline events carry the package after the transition and the actor who
// drove it. The audit subscriber persists one row per event.

type CreatedEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

type ValidationCompletedEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

type DetectionCompletedEvent struct {
	Package       ImportPackage
	ActorID       uuid.UUID
	OpenConflicts int
}

type ReviewCompletedEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

type CommittedEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

type ResetEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

type AbandonedEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

type CleanedUpEvent struct {
	Package ImportPackage
	ActorID uuid.UUID
}

func NewCreatedEvent(ctx context.Context, p ImportPackage) (*CreatedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &CreatedEvent{Package: p, ActorID: actor}, nil
}

func NewValidationCompletedEvent(ctx context.Context, p ImportPackage) (*ValidationCompletedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &ValidationCompletedEvent{Package: p, ActorID: actor}, nil
}

func NewDetectionCompletedEvent(ctx context.Context, p ImportPackage, open int) (*DetectionCompletedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &DetectionCompletedEvent{Package: p, ActorID: actor, OpenConflicts: open}, nil
}

func NewReviewCompletedEvent(ctx context.Context, p ImportPackage) (*ReviewCompletedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &ReviewCompletedEvent{Package: p, ActorID: actor}, nil
}

func NewCommittedEvent(ctx context.Context, p ImportPackage) (*CommittedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &CommittedEvent{Package: p, ActorID: actor}, nil
}

func NewResetEvent(ctx context.Context, p ImportPackage) (*ResetEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &ResetEvent{Package: p, ActorID: actor}, nil
}

func NewAbandonedEvent(ctx context.Context, p ImportPackage) (*AbandonedEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &AbandonedEvent{Package: p, ActorID: actor}, nil
}

func NewCleanedUpEvent(ctx context.Context, p ImportPackage) (*CleanedUpEvent, error) {
	actor, err := composables.UseActor(ctx)
	if err != nil {
		return nil, err
	}
	return &CleanedUpEvent{Package: p, ActorID: actor}, nil
}
