package logging

import (
	"context"

	"go.uber.org/zap"
)

type loggerKey struct{}

// GetLogger returns the logger attached to ctx, falling back to the
// process-wide logger when none was attached.
func GetLogger(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.L()
}

// WithLogger attaches logger to ctx so deployment operations carry the
// fields of the command that started them.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}
