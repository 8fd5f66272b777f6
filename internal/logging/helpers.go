package logging

import (
	"maps"

	"github.com/goliatone/go-wpmigrate/internal/batch"
	"github.com/goliatone/go-wpmigrate/pkg/interfaces"
)

// WithFields returns a logger carrying fields when logger implements
// FieldsLogger; other loggers are returned unchanged. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

// SummaryFields renders a stage summary as completion log fields. The
// succeeded count is logged under succeededKey (for example "imported_count")
// and extra entries are merged last.
func SummaryFields(s batch.Summary, succeededKey string, extra map[string]any) map[string]any {
	if succeededKey == "" {
		succeededKey = "succeeded_count"
	}
	fields := map[string]any{
		"total_count":   s.Total,
		succeededKey:    s.Succeeded,
		"skipped_count": s.Skipped,
		"error_count":   s.Failed(),
	}
	maps.Copy(fields, extra)
	return fields
}
