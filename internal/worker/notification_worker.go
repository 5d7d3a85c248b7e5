package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the dispatcher.
func StartNotificationWorker(notifications *service.NotificationService, logger *zap.Logger) {
	if notifications == nil {
		return
	}
	notifications.RegisterHandlers()
	logger.Info("notification handlers registered", zap.Bool("webhook", notifications.WebhookEnabled()))
}
