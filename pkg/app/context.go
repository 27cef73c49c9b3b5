package app

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Context holds application-wide configuration and state
type Context struct {
	context.Context

	// Output preferences
	OutputFormat string
	Verbose      bool
	Quiet        bool

	// Common timeouts
	DefaultTimeout time.Duration

	// Out receives command results, Logger receives diagnostics
	Out    io.Writer
	Logger *slog.Logger
}

// NewContext creates a new application context that writes results to
// stdout and discards diagnostics
func NewContext() *Context {
	return &Context{
		Context:        context.Background(),
		OutputFormat:   "table",
		DefaultTimeout: 30 * time.Second,
		Out:            os.Stdout,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// NewLogger returns a text logger writing to w. Verbose enables debug
// records; quiet keeps only errors.
func NewLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelWarn
	switch {
	case quiet:
		level = slog.LevelError
	case verbose:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithTimeout creates a context with timeout
func (c *Context) WithTimeout(timeout time.Duration) (*Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	newCtx := *c
	newCtx.Context = ctx
	return &newCtx, cancel
}

// WithDefaultTimeout bounds the context by DefaultTimeout. A zero or
// negative DefaultTimeout leaves the context unbounded.
func (c *Context) WithDefaultTimeout() (*Context, context.CancelFunc) {
	if c.DefaultTimeout <= 0 {
		return c, func() {}
	}
	return c.WithTimeout(c.DefaultTimeout)
}

// Log records a debug message, shown with --verbose
func (c *Context) Log(message string, args ...any) {
	c.Logger.DebugContext(c, message, args...)
}

// Warn records a warning, shown unless --quiet
func (c *Context) Warn(message string, args ...any) {
	c.Logger.WarnContext(c, message, args...)
}

// Error records an error message
func (c *Context) Error(message string, args ...any) {
	c.Logger.ErrorContext(c, message, args...)
}
