package conflict

import (
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/serrors"
)

// ErrAlreadyResolved rejects the second resolution of a conflict; the row
// mutates exactly once.
var ErrAlreadyResolved = serrors.NewError(
	"CONFLICT_ALREADY_RESOLVED",
	"conflict has already been resolved",
	"",
)

type Status string

const (
	StatusUnresolved Status = "unresolved"
	StatusResolved   Status = "resolved"
)

type Resolution string

const (
	ResolutionNone         Resolution = "none"
	ResolutionMerged       Resolution = "merged"
	ResolutionKeptDistinct Resolution = "kept_distinct"
)

type Confidence string

const (
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
	ConfidenceExact  Confidence = "exact"
)

// Source tells which store a conflict side lives in.
type Source string

const (
	SourceStaged     Source = "staged"
	SourceProduction Source = "production"
)

// Ref identifies one side of a conflict: a staged record by its original id
// or a production row by uuid, plus a display label for review screens.
type Ref struct {
	Source Source `json:"source"`
	Key    string `json:"key"`
	Label  string `json:"label,omitempty"`
}

// canonicalKey ignores the label so relabeled re-detections still match.
func (r Ref) canonicalKey() string {
	return string(r.Source) + ":" + r.Key
}

func (r Ref) Equal(o Ref) bool {
	return r.Source == o.Source && r.Key == o.Key
}

// Canonicalize orders a pair lexicographically smallest first so the same
// two records always produce the same stored orientation.
func Canonicalize(a, b Ref) (Ref, Ref) {
	if b.canonicalKey() < a.canonicalKey() {
		return b, a
	}
	return a, b
}

// MatchCriteria records the per-field scores behind a match.
type MatchCriteria map[string]int

// Conflict is a detected candidate duplicate pair within one package's
// scope. Detection creates it unresolved; resolution mutates it exactly
// once.
type Conflict struct {
	id                uuid.UUID
	packageID         uuid.UUID
	entityType        staging.EntityType
	left              Ref
	right             Ref
	score             int
	confidence        Confidence
	matchedCriteria   MatchCriteria
	status            Status
	resolution        Resolution
	resolutionPayload json.RawMessage
	autoDetected      bool
	resolvedBy        *uuid.UUID
	resolvedAt        *time.Time
	createdAt         time.Time
}

type Option func(*Conflict)

func WithID(id uuid.UUID) Option {
	return func(c *Conflict) {
		c.id = id
	}
}

func WithStatus(status Status) Option {
	return func(c *Conflict) {
		c.status = status
	}
}

func WithResolution(resolution Resolution) Option {
	return func(c *Conflict) {
		c.resolution = resolution
	}
}

func WithResolutionPayload(payload json.RawMessage) Option {
	return func(c *Conflict) {
		c.resolutionPayload = payload
	}
}

func WithAutoDetected(auto bool) Option {
	return func(c *Conflict) {
		c.autoDetected = auto
	}
}

func WithResolvedBy(actorID uuid.UUID) Option {
	return func(c *Conflict) {
		c.resolvedBy = &actorID
	}
}

func WithResolvedAt(t time.Time) Option {
	return func(c *Conflict) {
		c.resolvedAt = &t
	}
}

func WithCreatedAt(t time.Time) Option {
	return func(c *Conflict) {
		c.createdAt = t
	}
}

// New builds an unresolved conflict with the pair canonicalized.
func New(
	packageID uuid.UUID,
	entityType staging.EntityType,
	a, b Ref,
	score int,
	confidence Confidence,
	criteria MatchCriteria,
	opts ...Option,
) *Conflict {
	left, right := Canonicalize(a, b)
	c := &Conflict{
		id:              uuid.New(),
		packageID:       packageID,
		entityType:      entityType,
		left:            left,
		right:           right,
		score:           score,
		confidence:      confidence,
		matchedCriteria: criteria,
		status:          StatusUnresolved,
		resolution:      ResolutionNone,
		autoDetected:    true,
		createdAt:       time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conflict) ID() uuid.UUID                      { return c.id }
func (c *Conflict) PackageID() uuid.UUID               { return c.packageID }
func (c *Conflict) EntityType() staging.EntityType     { return c.entityType }
func (c *Conflict) Left() Ref                          { return c.left }
func (c *Conflict) Right() Ref                         { return c.right }
func (c *Conflict) Score() int                         { return c.score }
func (c *Conflict) Confidence() Confidence             { return c.confidence }
func (c *Conflict) MatchedCriteria() MatchCriteria     { return c.matchedCriteria }
func (c *Conflict) Status() Status                     { return c.status }
func (c *Conflict) Resolution() Resolution             { return c.resolution }
func (c *Conflict) ResolutionPayload() json.RawMessage { return c.resolutionPayload }
func (c *Conflict) AutoDetected() bool                 { return c.autoDetected }
func (c *Conflict) ResolvedBy() *uuid.UUID             { return c.resolvedBy }
func (c *Conflict) ResolvedAt() *time.Time             { return c.resolvedAt }
func (c *Conflict) CreatedAt() time.Time               { return c.createdAt }

// Side returns the ref matching the given source and key, reporting whether
// either side matched.
func (c *Conflict) Side(ref Ref) (Ref, bool) {
	if c.left.Equal(ref) {
		return c.left, true
	}
	if c.right.Equal(ref) {
		return c.right, true
	}
	return Ref{}, false
}

// Other returns the counterpart of the given side.
func (c *Conflict) Other(ref Ref) (Ref, bool) {
	if c.left.Equal(ref) {
		return c.right, true
	}
	if c.right.Equal(ref) {
		return c.left, true
	}
	return Ref{}, false
}

// Resolve settles the conflict. A second call fails and leaves the row
// untouched.
func (c *Conflict) Resolve(resolution Resolution, payload json.RawMessage, actorID uuid.UUID) error {
	if c.status == StatusResolved {
		return errors.Wrapf(ErrAlreadyResolved, "conflict %s", c.id)
	}
	if resolution != ResolutionMerged && resolution != ResolutionKeptDistinct {
		return errors.Errorf("resolution %q is not a terminal resolution", resolution)
	}
	now := time.Now()
	c.status = StatusResolved
	c.resolution = resolution
	c.resolutionPayload = payload
	c.resolvedBy = &actorID
	c.resolvedAt = &now
	return nil
}
