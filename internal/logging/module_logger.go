package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

const (
	rootModule    = "wpmigrate"
	assetsModule  = "wpmigrate.assets"
	importModule  = "wpmigrate.import"
	excerptModule = "wpmigrate.excerpts"
	authorModule  = "wpmigrate.author"
	reportModule  = "wpmigrate.report"
	extractModule = "wpmigrate.extract"
	storeModule   = "wpmigrate.store"
)

const (
	fieldPostID   = "post_id"
	fieldDocument = "document_id"
	fieldURL      = "url"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// AssetsLogger returns the logger namespace reserved for the asset uploader.
func AssetsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, assetsModule)
}

// ImportLogger returns the logger namespace reserved for the document importer.
func ImportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, importModule)
}

// ExcerptLogger returns the logger namespace reserved for excerpt repair.
func ExcerptLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, excerptModule)
}

// AuthorLogger returns the logger namespace reserved for author assignment.
func AuthorLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, authorModule)
}

// ReportLogger returns the logger namespace reserved for reconciliation reports.
func ReportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, reportModule)
}

// ExtractLogger returns the logger namespace reserved for export extraction.
func ExtractLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, extractModule)
}

// StoreLogger returns the logger namespace reserved for document store clients.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// WithItemContext enriches the logger with the legacy post id, target
// document id and media URL of the item being processed. Empty values are ignored.
func WithItemContext(logger interfaces.Logger, postID, documentID, url string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(postID); trimmed != "" {
		fields[fieldPostID] = trimmed
	}
	if trimmed := strings.TrimSpace(documentID); trimmed != "" {
		fields[fieldDocument] = trimmed
	}
	if trimmed := strings.TrimSpace(url); trimmed != "" {
		fields[fieldURL] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
