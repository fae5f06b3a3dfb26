// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured
// logging with configurable levels and formats, helpers for carrying a logger
// and request ID through a context, and a process-wide guard that performs
// diagnostics setup exactly once no matter how many goroutines ask for it.
package logger
