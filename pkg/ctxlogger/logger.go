package ctxlogger

import (
	"context"

	"github.com/IsaacDSC/kvcache/pkg/logs"
)

type loggerKey struct{}

func WithLogger(ctx context.Context, logger *logs.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger returns the logger carried by ctx, or the default logger.
func GetLogger(ctx context.Context) *logs.Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*logs.Logger); ok && logger != nil {
		return logger
	}

	return logs.Default()
}
