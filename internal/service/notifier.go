package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"SafeTrip/internal/model"
	"SafeTrip/pkg/logger"
	"SafeTrip/pkg/metrics"
)

// Dispatcher 外部短信通道契约。实现方（MQ 投递、测试替身）
// 只负责把一条通知消息送出去，at-most-once，不做重试。
type Dispatcher interface {
	Send(ctx context.Context, msg model.NotificationMessage) error
}

// NotifierService 编排各生命周期事件的人类可读文案并交给 Dispatcher。
// 投递失败仅记录日志，绝不阻塞或回滚触发它的状态迁移。
type NotifierService struct {
	dispatcher Dispatcher
}

var (
	notifierService *NotifierService
	notifierOnce    sync.Once
)

func NewNotifier(d Dispatcher) *NotifierService {
	return &NotifierService{dispatcher: d}
}

// SetDefaultNotifier 设置进程级 Notifier（server 启动时注入 MQ dispatcher）
func SetDefaultNotifier(n *NotifierService) {
	notifierOnce.Do(func() {
		notifierService = n
	})
}

func Notifier() *NotifierService {
	if notifierService == nil {
		panic("notifier not initialized, call SetDefaultNotifier first")
	}
	return notifierService
}

// NotifyStart 行程开始，仅通知监护人
func (n *NotifierService) NotifyStart(ctx context.Context, j model.Journey, now time.Time) {
	body := fmt.Sprintf(
		"SafeTrip: a journey to %q has started. Estimated duration: %d min. Start position: %s. Time: %s",
		j.Destination, j.EstimatedMinutes, mapsLink(j.StartLocation), formatTime(now),
	)
	n.dispatch(ctx, j, model.NotificationCategoryJourneyStart, j.Guardian.Phone, body, now)
}

// NotifyArrival 安全到达，仅通知监护人
func (n *NotifierService) NotifyArrival(ctx context.Context, j model.Journey, elapsedMinutes int, now time.Time) {
	body := fmt.Sprintf(
		"SafeTrip: journey to %q completed safely in %d min. Time: %s",
		j.Destination, elapsedMinutes, formatTime(now),
	)
	n.dispatch(ctx, j, model.NotificationCategoryJourneyArrival, j.Guardian.Phone, body, now)
}

// NotifyCancellation 行程取消，仅通知监护人
func (n *NotifierService) NotifyCancellation(ctx context.Context, j model.Journey, now time.Time) {
	body := fmt.Sprintf(
		"SafeTrip: journey to %q was cancelled. Time: %s",
		j.Destination, formatTime(now),
	)
	n.dispatch(ctx, j, model.NotificationCategoryJourneyCancel, j.Guardian.Phone, body, now)
}

// NotifyAlert 触发警报：监护人 + 全部紧急联系人
func (n *NotifierService) NotifyAlert(
	ctx context.Context,
	j model.Journey,
	contacts []model.Contact,
	elapsedMinutes int,
	reason model.AlertReason,
	now time.Time,
) {
	body := fmt.Sprintf(
		"SafeTrip ALERT! No safety confirmation on the journey to %q (reason: %s). Elapsed %d of %d min. Last position: %s. Time: %s. Please make contact immediately.",
		j.Destination, reason, elapsedMinutes, j.EstimatedMinutes, mapsLink(lastKnownLocation(j)), formatTime(now),
	)

	sent := map[string]bool{}
	recipients := append([]model.Contact{j.Guardian}, contacts...)
	for _, c := range recipients {
		if c.Phone == "" || sent[c.Phone] {
			continue
		}
		sent[c.Phone] = true
		n.dispatch(ctx, j, model.NotificationCategoryJourneyAlert, c.Phone, body, now)
	}
}

func (n *NotifierService) dispatch(
	ctx context.Context,
	j model.Journey,
	category model.NotificationCategory,
	phone, body string,
	now time.Time,
) {
	msg := model.NotificationMessage{
		MessageID:   uuid.NewString(),
		JourneyID:   j.ID,
		Category:    category,
		Phone:       phone,
		Body:        body,
		ScheduledAt: now.Format(time.RFC3339),
	}

	if err := n.dispatcher.Send(ctx, msg); err != nil {
		// best-effort：投递失败不能影响状态机
		logger.Logger.Warn("Notification delivery failed",
			zap.Int64("journey_id", j.ID),
			zap.String("category", string(category)),
			zap.String("message_id", msg.MessageID),
			zap.Error(err),
		)
		metrics.RecordNotificationFailed(ctx, string(category))
		return
	}

	metrics.RecordNotificationSent(ctx, string(category))
}

// mapsLink 由最近位置生成地图链接，无位置时返回占位说明
func mapsLink(loc *model.Location) string {
	if loc == nil {
		return "position unavailable"
	}
	return fmt.Sprintf("https://maps.google.com/?q=%.6f,%.6f", loc.Lat, loc.Lng)
}

func lastKnownLocation(j model.Journey) *model.Location {
	if j.LastLocation != nil {
		return j.LastLocation
	}
	return j.StartLocation
}

func formatTime(t time.Time) string {
	return t.Format("2006-01-02 15:04")
}
