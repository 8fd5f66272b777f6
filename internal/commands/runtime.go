package commands

import (
	"context"
	"time"

	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// DefaultCommandTimeout bounds a stage that does not set its own timeout.
// Stages that walk the whole export pass WithTimeout.
const DefaultCommandTimeout = 30 * time.Second

// EnsureLogger falls back to the no-op logger so stage handlers can be built
// before logging is configured.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}

// stageContext derives the context one stage runs under. A nil parent means
// Background and a non-positive timeout leaves the parent deadline in charge.
// The returned cancel must always be called.
func stageContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}
