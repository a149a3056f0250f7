package model

// NotificationCategory 通知类别枚举
type NotificationCategory string

const (
	NotificationCategoryJourneyStart   NotificationCategory = "journey_start"
	NotificationCategoryJourneyArrival NotificationCategory = "journey_arrival"
	NotificationCategoryJourneyCancel  NotificationCategory = "journey_cancel"
	NotificationCategoryJourneyAlert   NotificationCategory = "journey_alert"
)

// NotificationMessage 短信投递任务消息。MessageID 用于消费侧幂等检查。
type NotificationMessage struct {
	MessageID   string               `json:"message_id"`
	JourneyID   int64                `json:"journey_id"`
	Category    NotificationCategory `json:"category"`
	Phone       string               `json:"phone"`
	Body        string               `json:"body"`
	ScheduledAt string               `json:"scheduled_at"`
}
