package constants

// NSQ topics and channels
const (
	// Notification delivery jobs
	TopicNotificationDispatch   = "notification.dispatch"
	ChannelNotificationDelivery = "delivery"
)
