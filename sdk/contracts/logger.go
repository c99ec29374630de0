package contracts

import "time"

// LogLevel represents the severity level for logging.
type LogLevel int

const (
	// InfoLevel indicates informational messages about engine progress.
	InfoLevel LogLevel = iota
	// DebugLevel indicates messages useful for troubleshooting.
	DebugLevel
	// WarnLevel indicates potentially harmful situations worth monitoring.
	WarnLevel
	// ErrorLevel indicates serious issues that need attention.
	ErrorLevel
	// FatalLevel indicates errors that will abort the application.
	FatalLevel
)

// Field builds one structured log field. Each method returns a new Field
// carrying the given key/value pair.
type Field interface {
	Bool(key string, val bool) Field
	Int(key string, val int) Field
	Float64(key string, val float64) Field
	String(key string, val string) Field
	Time(key string, val time.Time) Field
	Error(key string, val error) Field
	Uint8(key string, val uint8) Field
}

// Logger provides leveled, structured logging for the engine.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	Fatal(msg string, fields ...Field)

	// Field returns a fresh field builder.
	Field() Field

	// SetLevel drops messages below the given level.
	SetLevel(level LogLevel)
}
