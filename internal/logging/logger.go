// Package logging is the structured logger every server component takes
// through its constructor. SlogLogger is the only production implementation;
// Nop is for tests and optional dependencies.
package logging

import "context"

// Logger logs a message with alternating key/value args:
//
//	log.Warn(ctx, "tag link failed", "achievement_id", id, "tag", slug)
//
// Components scope their logger once with With("module", name).
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that adds args to every record.
	With(args ...any) Logger
}
