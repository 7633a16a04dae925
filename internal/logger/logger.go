// Package logger builds the process logger.
package logger

import (
	"context"
	"fmt"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON production logger at level. The debug level switches to
// the human-readable development encoder.
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if lvl == zapcore.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// WithRequest adds the request id set by chi's RequestID middleware, if any.
func WithRequest(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id := middleware.GetReqID(ctx); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
