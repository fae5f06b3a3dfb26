package logger

import (
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
)

// TestLogEnvVar enables diagnostic output during test runs when set to any value.
const TestLogEnvVar = "TEST_LOG"

// Diagnostics performs logging setup exactly once. The first caller of Init
// builds the logger; concurrent callers wait for it to finish and every later
// caller receives the same logger without doing any work.
type Diagnostics struct {
	once        sync.Once
	initialized atomic.Bool
	logger      atomic.Pointer[slog.Logger]
}

// Init sets up logging from cfg on the first call and reports whether this
// call was the one that did it.
func (d *Diagnostics) Init(cfg LoggerConfig) (*slog.Logger, bool) {
	performed := false
	d.once.Do(func() {
		logger, err := Setup(cfg)
		if err != nil {
			logger = slog.Default()
		}
		d.logger.Store(logger)
		d.initialized.Store(true)
		performed = true
	})
	return d.logger.Load(), performed
}

// Initialized reports whether Init has completed.
func (d *Diagnostics) Initialized() bool {
	return d.initialized.Load()
}

var process Diagnostics

// InitDiagnostics initializes process-wide logging once and returns the
// shared logger. Lifetime is the lifetime of the process.
func InitDiagnostics(cfg LoggerConfig) *slog.Logger {
	logger, _ := process.Init(cfg)
	return logger
}

// TestConfigFromEnv returns the logging config used by test binaries: debug
// text output on stdout when TEST_LOG is set, otherwise output is discarded.
func TestConfigFromEnv() LoggerConfig {
	if _, ok := os.LookupEnv(TestLogEnvVar); ok {
		return LoggerConfig{Level: "debug", Format: "text", Output: os.Stdout}
	}
	return LoggerConfig{Level: "error", Format: "text", Output: io.Discard}
}
