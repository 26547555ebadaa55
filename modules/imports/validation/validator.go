package validation

import "context"

// Finding codes, grouped by the level that raises them. Codes are stable
// identifiers for operator tooling; messages are free text.
const (
	CodeRequired      = "FIELD_REQUIRED"
	CodeInvalidValue  = "INVALID_VALUE"
	CodeOutOfRange    = "OUT_OF_RANGE"
	CodeInvalidDate   = "INVALID_DATE"
	CodeTooLong       = "VALUE_TOO_LONG"
	CodeBadReference  = "UNRESOLVED_REFERENCE"
	CodeMissingProof  = "MISSING_EVIDENCE"
	CodeShareExceeded = "OWNERSHIP_SHARE_EXCEEDED"
	CodeDemographics  = "DEMOGRAPHIC_MISMATCH"
	CodeOutOfBounds   = "OUT_OF_BOUNDS"
	CodeBadGeometry   = "INVALID_GEOMETRY"
	CodeIllegalStatus = "ILLEGAL_CLAIM_STATUS"
	CodeFutureDate    = "FUTURE_DATE"
	CodeUnknownCode   = "UNKNOWN_CODE"
	CodeInactiveCode  = "INACTIVE_CODE"
	CodeBadPattern    = "INVALID_CODE_PATTERN"
	CodeDuplicateUnit = "DUPLICATE_UNIT_NUMBER"
)

// Validator is one pass over a package snapshot. Validators append findings
// to the snapshot's records and report how many they looked at; they never
// persist anything themselves.
type Validator interface {
	// Level orders validators; the pipeline runs strictly ascending.
	Level() int
	Name() string
	Validate(ctx context.Context, snap *Snapshot) (checked int, err error)
}
