package server

import (
	"context"
	"log/slog"
	"time"

	"devconnect/internal/notifications"
)

const publishTimeout = 2 * time.Second

// publishPostEvent is best-effort: failures are logged and never reach the client.
func (s *Server) publishPostEvent(ctx context.Context, eventType string, payload map[string]any) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := s.notifier.PublishPostEvent(ctx, notifications.Event{Type: eventType, Payload: payload})
	if err != nil {
		slog.WarnContext(ctx, "failed to publish post event",
			slog.String("type", eventType),
			slog.Any("error", err),
		)
	}
}
