package vocabulary

import (
	"context"
	"strings"
)

// Vocabulary names used across the registry. Coded fields on staged and
// committed records must carry a code from the matching list.
const (
	BuildingType       = "building_type"
	UnitType           = "unit_type"
	OccupancyStatus    = "occupancy_status"
	RelationType       = "relation_type"
	EvidenceType       = "evidence_type"
	ClaimType          = "claim_type"
	SurveyType         = "survey_type"
	DisplacementStatus = "displacement_status"
)

// Code is one entry of a controlled list, keyed by (vocabulary, code).
type Code struct {
	vocabulary string
	code       string
	label      string
	active     bool
	position   int
}

type Option func(*Code)

func WithLabel(label string) Option {
	return func(c *Code) {
		c.label = label
	}
}

func WithActive(active bool) Option {
	return func(c *Code) {
		c.active = active
	}
}

func WithPosition(position int) Option {
	return func(c *Code) {
		c.position = position
	}
}

func New(vocabulary, code string, opts ...Option) *Code {
	c := &Code{
		vocabulary: strings.TrimSpace(vocabulary),
		code:       strings.TrimSpace(code),
		active:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Code) Vocabulary() string {
	return c.vocabulary
}

func (c *Code) Code() string {
	return c.code
}

func (c *Code) Label() string {
	return c.label
}

func (c *Code) Active() bool {
	return c.active
}

func (c *Code) Position() int {
	return c.position
}

// Set maps a code to its active flag. A missing key means the code is not
// part of the vocabulary at all.
type Set map[string]bool

func (s Set) Contains(code string) bool {
	_, ok := s[code]
	return ok
}

func (s Set) IsActive(code string) bool {
	return s[code]
}

// Provider supplies the full code sets of every vocabulary, inactive codes
// included.
type Provider interface {
	Sets(ctx context.Context) (map[string]Set, error)
}

type Repository interface {
	GetAll(ctx context.Context) ([]*Code, error)
	GetByVocabulary(ctx context.Context, vocabulary string) ([]*Code, error)
	Upsert(ctx context.Context, codes ...*Code) error
	Deactivate(ctx context.Context, vocabulary, code string) error
	Sets(ctx context.Context) (map[string]Set, error)
}
