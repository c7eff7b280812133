// Package build aggregates the per-subsystem loggers every other package
// in this module registers itself with: each package owns a short tag,
// gets a btclog.Logger through UseLogger, and the root backend fans
// actual output out based on configured per-subsystem levels.
package build

import (
	"os"

	"github.com/btcsuite/btclog"
)

// SubLoggers is the global registry every package's log.go adds its
// logger to, keyed by its short subsystem tag (e.g. "PXL", "CHK").
var SubLoggers = make(map[string]btclog.Logger)

// backend is the single btclog.Backend all subsystem loggers write
// through, so log level and output destination are configured once at
// process start.
var backend = btclog.NewBackend(os.Stdout)

// NewSubLogger creates a logger for the given subsystem tag, registers
// it in SubLoggers, and returns it. Passing a non-nil reportFn lets the
// caller override the tag lookup for tests.
func NewSubLogger(tag string, reportFn func() btclog.Logger) btclog.Logger {
	if reportFn != nil {
		logger := reportFn()
		SubLoggers[tag] = logger
		return logger
	}

	logger := backend.Logger(tag)
	SubLoggers[tag] = logger
	return logger
}

// SetLogLevels sets the logging level of every registered subsystem to
// the given level string (e.g. "debug", "info", "warn").
func SetLogLevels(levelStr string) {
	level, ok := btclog.LevelFromString(levelStr)
	if !ok {
		return
	}

	for _, logger := range SubLoggers {
		logger.SetLevel(level)
	}
}
