// Package logging decouples cashflow components from the concrete logging
// framework. Components depend on Logger and receive it by constructor
// injection; the binary wires a logrus-backed implementation.
package logging

// Logger is the structured logger used across the application.
type Logger interface {
	// Debug logs a debug-level message with optional fields
	Debug(msg string, fields ...Field)

	// Info logs an info-level message with optional fields
	Info(msg string, fields ...Field)

	// Warn logs a warning-level message with optional fields
	Warn(msg string, fields ...Field)

	// Error logs an error-level message with optional fields
	Error(msg string, fields ...Field)

	// WithError returns a derived logger carrying err
	WithError(err error) Logger

	// WithField returns a derived logger carrying one extra field
	WithField(key string, value interface{}) Logger

	// WithFields returns a derived logger carrying extra fields
	WithFields(fields ...Field) Logger

	// Fatal logs at fatal level and exits the program
	Fatal(msg string, fields ...Field)

	// Fatalf logs a formatted fatal message and exits the program
	Fatalf(msg string, args ...interface{})
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F is shorthand for building a Field inline.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
