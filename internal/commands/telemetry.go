package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-wpmigrate/internal/logging"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// TelemetryStatus is the outcome of one stage run.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

const (
	eventStageStarted   = "stage.started"
	eventStageCompleted = "stage.completed"
	eventStageFailed    = "stage.failed"
	eventStageCanceled  = "stage.canceled"
)

// TelemetryInfo is handed to a Telemetry callback once a stage returns.
// Fields holds the command, operation and message fields already attached
// to Logger.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry replaces the handler's outcome log line.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry logs the stage outcome with its elapsed time: completed
// runs at Info, failed and canceled runs at Error.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	logger = EnsureLogger(logger)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		entry := logging.WithFields(logger, info.Fields)
		args := []any{"elapsed", info.Duration.String()}
		logOutcome(entry, info.Status, info.Error, args...)
	}
}

func logOutcome(logger interfaces.Logger, status TelemetryStatus, err error, args ...any) {
	switch status {
	case TelemetryStatusSuccess:
		logger.Info(eventStageCompleted, args...)
	case TelemetryStatusContextError:
		logger.Error(eventStageCanceled, append(args, "error", err)...)
	default:
		logger.Error(eventStageFailed, append(args, "error", err)...)
	}
}
