// internal/notify/notifier.go
package notify

import (
	"context"
	"log/slog"
)

// Notifier sends a push notification to a single device. Delivery is
// fire-and-forget: implementations log failures and never return them.
type Notifier interface {
	Notify(ctx context.Context, deviceToken, title, body string, data map[string]string)
}

// LogNotifier writes notifications to the structured log instead of a push
// provider. Used when no provider credentials are configured; the session
// engine only depends on the Notifier boundary.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a new LogNotifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs the would-be delivery.
func (n *LogNotifier) Notify(ctx context.Context, deviceToken, title, body string, data map[string]string) {
	n.logger.Info("Push notification dispatched",
		"device_token", deviceToken,
		"title", title,
		"body", body,
		"data", data,
	)
}
