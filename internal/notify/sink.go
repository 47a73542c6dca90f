package notify

import (
	"context"
	"log/slog"
)

// SlogSink writes notifications to the structured log. It backs the one-shot
// CLI check command, where no delivery channel is connected.
type SlogSink struct{}

// Notify logs the event. It never fails.
func (SlogSink) Notify(_ context.Context, e Event) error {
	slog.Info("notification",
		slog.String("type", e.Type),
		slog.String("title", e.Title),
		slog.String("body", e.Body),
		slog.Bool("has_image", e.Image != ""))
	return nil
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Event) error

// Notify calls f.
func (f SinkFunc) Notify(ctx context.Context, e Event) error {
	return f(ctx, e)
}
