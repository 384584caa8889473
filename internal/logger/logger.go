// Package logger implements an interface behind which a third party,
// levelled logger can sit. This abstraction lets packages such as the
// runner and the forgefile loader take a Logger without depending on
// zap directly (a *Zap also satisfies the executor's own, smaller
// Logger interface), and lets tests substitute a no-op implementation.
//
// forge's logging needs are still basic: INFO level by default, DEBUG
// behind --verbose, always to stderr so stdout stays free for task
// output and machine-readable command results.
package logger

import "go.uber.org/zap"

// Logger is the interface behind which a debug/info logger can sit. It
// also satisfies internal/executor.Logger, so an *Zap can be handed
// straight to executor.WithLogger.
type Logger interface {
	// Sync flushes the logs to stderr.
	Sync() error
	// Debug outputs a debug level log line.
	Debug(format string, args ...any)
	// Info outputs an info level log line.
	Info(format string, args ...any)
	// Error outputs an error level log line.
	Error(format string, args ...any)
}

// Zap is a Logger backed by go.uber.org/zap.
type Zap struct {
	inner *zap.SugaredLogger
}

// NewZap builds and returns a Zap logger. When verbose is false, debug
// level lines are suppressed.
func NewZap(verbose bool) (*Zap, error) {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.OutputPaths = []string{"stderr"}
	built, err := cfg.Build(zap.IncreaseLevel(level))
	if err != nil {
		return nil, err
	}

	return &Zap{inner: built.Sugar()}, nil
}

// Sync flushes the logs.
func (z *Zap) Sync() error {
	return z.inner.Sync()
}

// Debug outputs a debug level log line, a newline is automatically
// added.
func (z *Zap) Debug(format string, args ...any) {
	z.inner.Debugf(format, args...)
}

// Info outputs an info level log line.
func (z *Zap) Info(format string, args ...any) {
	z.inner.Infof(format, args...)
}

// Error outputs an error level log line.
func (z *Zap) Error(format string, args ...any) {
	z.inner.Errorf(format, args...)
}

// Noop discards every log line; it is used by tests.
type Noop struct{}

func (Noop) Sync() error          { return nil }
func (Noop) Debug(string, ...any) {}
func (Noop) Info(string, ...any)  {}
func (Noop) Error(string, ...any) {}
