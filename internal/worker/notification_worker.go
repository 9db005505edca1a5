package worker

// HandlerRegistrar subscribes event handlers on a dispatcher.
type HandlerRegistrar interface {
	RegisterHandlers()
}

// StartNotificationWorker registers run notification handlers.
func StartNotificationWorker(notifier HandlerRegistrar) {
	if notifier == nil {
		return
	}
	notifier.RegisterHandlers()
}
