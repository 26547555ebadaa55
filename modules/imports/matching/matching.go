package matching

import (
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/conflict"
	"github.com/Ameerovich/TRRCMS-Backend-sub000/modules/imports/domain/entities/staging"
)

// Match is one suspected duplicate pair a matcher surfaced. Detection turns
// matches into conflicts; matchers themselves never touch storage.
type Match struct {
	EntityType staging.EntityType
	Left       conflict.Ref
	Right      conflict.Ref
	Score      int
	Confidence conflict.Confidence
	Criteria   conflict.MatchCriteria
}
