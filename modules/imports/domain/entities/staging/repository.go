package staging

import (
	"context"

	"github.com/google/uuid"
)

// StatusCounts is the per-status breakdown of one entity type's staged rows.
type StatusCounts map[Status]int

// Summary maps entity types to their status breakdown for one package.
type Summary map[EntityType]StatusCounts

// Repository persists staged records. Inserts are bulk, one call per entity
// type; envelope updates address only the shared validation and commit
// columns and work across all eight tables.
type Repository interface {
	InsertBuildings(ctx context.Context, rows []*Building) error
	InsertUnits(ctx context.Context, rows []*PropertyUnit) error
	InsertPersons(ctx context.Context, rows []*Person) error
	InsertHouseholds(ctx context.Context, rows []*Household) error
	InsertRelations(ctx context.Context, rows []*Relation) error
	InsertEvidences(ctx context.Context, rows []*Evidence) error
	InsertClaims(ctx context.Context, rows []*Claim) error
	InsertSurveys(ctx context.Context, rows []*Survey) error

	BuildingsByPackage(ctx context.Context, packageID uuid.UUID) ([]*Building, error)
	UnitsByPackage(ctx context.Context, packageID uuid.UUID) ([]*PropertyUnit, error)
	PersonsByPackage(ctx context.Context, packageID uuid.UUID) ([]*Person, error)
	HouseholdsByPackage(ctx context.Context, packageID uuid.UUID) ([]*Household, error)
	RelationsByPackage(ctx context.Context, packageID uuid.UUID) ([]*Relation, error)
	EvidencesByPackage(ctx context.Context, packageID uuid.UUID) ([]*Evidence, error)
	ClaimsByPackage(ctx context.Context, packageID uuid.UUID) ([]*Claim, error)
	SurveysByPackage(ctx context.Context, packageID uuid.UUID) ([]*Survey, error)

	// UpdateEnvelopes rewrites the validation and commit columns of the given
	// records in their entity type's table.
	UpdateEnvelopes(ctx context.Context, entityType EntityType, records []*Record) error
	// SetApproval flips a single record's commit approval, scoped to its
	// package.
	SetApproval(ctx context.Context, packageID uuid.UUID, entityType EntityType, recordID uuid.UUID, approved bool) error
	// MarkSkipped discards a record from commit; masterID, when set, records
	// the production row that absorbed it.
	MarkSkipped(ctx context.Context, entityType EntityType, recordID uuid.UUID, masterID *uuid.UUID) error
	// StampCommitted records the production id a staged record became.
	StampCommitted(ctx context.Context, entityType EntityType, recordID, entityID uuid.UUID) error

	// SummaryByPackage counts the package's rows per entity type and status.
	SummaryByPackage(ctx context.Context, packageID uuid.UUID) (Summary, error)
	// FindingsByPackage returns envelopes of records that carry errors or
	// warnings, optionally narrowed to one entity type.
	FindingsByPackage(ctx context.Context, packageID uuid.UUID, entityType EntityType) ([]*Record, error)
	// DeleteByPackage purges every staged row of the package, all tables.
	DeleteByPackage(ctx context.Context, packageID uuid.UUID) error
}
