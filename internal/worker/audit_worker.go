package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/storefront-auth/internal/events"
)

// StartAuditWorker subscribes a structured audit log to every auth event.
// This is also where a mailer would hook in for otp_requested.
func StartAuditWorker(dispatcher events.Dispatcher, logger *zap.Logger) {
	if dispatcher == nil || logger == nil {
		return
	}

	audit := logger.Named("audit")
	dispatcher.SubscribeAll(func(_ context.Context, event events.Event) error {
		audit.Info("auth event",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.String("user_id", event.UserID),
			zap.String("email", event.Email),
			zap.String("role", string(event.Role)),
			zap.Time("at", event.Timestamp),
			zap.Any("payload", event.Payload),
		)
		return nil
	})
}
