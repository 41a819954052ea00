package worker

import (
	"github.com/spec-kit/appointment-parser/internal/service"
)

// StartNotificationWorker registers webhook notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
