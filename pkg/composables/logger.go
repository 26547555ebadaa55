package composables

import (
	"context"

	"github.com/Ameerovich/TRRCMS-Backend-sub000/pkg/constants"
	"github.com/sirupsen/logrus"
)

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the contextual logger, falling back to the standard one
// so callers never need a nil check.
func UseLogger(ctx context.Context) *logrus.Entry {
	v := ctx.Value(constants.LoggerKey)
	if v == nil {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return v.(*logrus.Entry)
}
