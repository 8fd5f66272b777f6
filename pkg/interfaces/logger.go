package interfaces

import "context"

// Logger is the leveled logger every migration stage writes to. Messages are
// dotted event names ("assets.upload.failed") and args are key/value pairs.
// go-logger's glog loggers satisfy it through the gologger provider.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out a logger per module name such as
// "wpmigrate.import" or "wpmigrate.commands.migration".
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger binds fields like post_id or url to every later entry.
// Loggers without it drop the fields and keep logging.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
