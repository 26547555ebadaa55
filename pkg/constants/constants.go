package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	PoolKey   ContextKey = "pool"
	TxKey     ContextKey = "tx"
	LoggerKey ContextKey = "logger"
	ActorKey  ContextKey = "actor"
)

// Validate is the shared validator instance. DTOs carry `validate` tags and
// call Validate.Struct at the service boundary.
var Validate = validator.New(validator.WithRequiredStructEnabled())
