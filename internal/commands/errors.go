package commands

import (
	"context"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	stageInvalidCode   = "STAGE_MESSAGE_INVALID"
	stageCanceledCode  = "STAGE_CANCELED"
	stageTimeoutCode   = "STAGE_TIMEOUT"
	stageContextCode   = "STAGE_CONTEXT_ERROR"
	stageFailedCode    = "STAGE_FAILED"
	defaultStageLabel  = "migration stage"
)

func stageLabel(operation string) string {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return defaultStageLabel
	}
	return operation
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func wrapValidationError(operation string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, stageLabel(operation)+": invalid message").
		WithTextCode(stageInvalidCode)
}

func wrapContextError(operation string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	label := stageLabel(operation)
	switch {
	case errors.Is(err, context.Canceled):
		return goerrors.Wrap(err, goerrors.CategoryCommand, label+": canceled").
			WithTextCode(stageCanceledCode)
	case errors.Is(err, context.DeadlineExceeded):
		return goerrors.Wrap(err, goerrors.CategoryCommand, label+": timed out").
			WithTextCode(stageTimeoutCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, label+": context error").
			WithTextCode(stageContextCode)
	}
}

func wrapExecuteError(operation string, err error) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryCommand, stageLabel(operation)+": failed").
		WithTextCode(stageFailedCode)
}
