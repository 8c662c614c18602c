// Package logging defines the small structured-logging interface every
// subsystem here accepts, and a standard-library-backed implementation of
// it. Free-text logging stays on the standard library; structured
// observability is Prometheus metrics and OpenTelemetry spans instead (see
// package observability).
package logging

import "log"

// Logger is the structured-logging seam accepted by every subsystem.
// A nil Logger is valid everywhere it's accepted: callers check for nil
// before logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

// StdLogger implements Logger over the standard library log package.
type StdLogger struct{}

func (StdLogger) Debug(msg string, keysAndValues ...any) {
	log.Printf("[DEBUG] %s %v", msg, keysAndValues)
}

func (StdLogger) Info(msg string, keysAndValues ...any) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}

func (StdLogger) Warn(msg string, keysAndValues ...any) {
	log.Printf("[WARN] %s %v", msg, keysAndValues)
}

func (StdLogger) Error(msg string, keysAndValues ...any) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}
