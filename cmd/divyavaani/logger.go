package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// Logger writes command progress to the terminal. Messages go to standard
// error so command output on standard out stays pipeable.
type Logger struct {
	log *slog.Logger
}

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewLogger creates a logger writing to w. Debug enables the debug level.
func NewLogger(w io.Writer, debug bool) *Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return &Logger{
		log: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Print logs a message at info level
func (l *Logger) Print(ctx context.Context, args ...any) {
	l.log.InfoContext(ctx, fmt.Sprint(args...))
}

// Printf logs a formatted message at info level
func (l *Logger) Printf(ctx context.Context, format string, args ...any) {
	l.log.InfoContext(ctx, fmt.Sprintf(format, args...))
}

// Debug logs a message at debug level
func (l *Logger) Debug(ctx context.Context, args ...any) {
	l.log.DebugContext(ctx, fmt.Sprint(args...))
}

// Debugf logs a formatted message at debug level
func (l *Logger) Debugf(ctx context.Context, format string, args ...any) {
	l.log.DebugContext(ctx, fmt.Sprintf(format, args...))
}
