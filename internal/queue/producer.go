package queue

import (
	"context"

	"go.uber.org/zap"

	"SafeTrip/internal/model"
	"SafeTrip/pkg/logger"
	"SafeTrip/storage/mq"
)

// SMSDispatcher 把通知消息投递到 RabbitMQ，由 worker 消费后发短信。
// 实现 service.Dispatcher 接口。
type SMSDispatcher struct{}

func NewSMSDispatcher() *SMSDispatcher {
	return &SMSDispatcher{}
}

func (d *SMSDispatcher) Send(ctx context.Context, msg model.NotificationMessage) error {
	if err := mq.PublishMessage(mq.NotifyExchange, mq.NotifySMSQueue, msg); err != nil {
		logger.Logger.Error("Failed to publish notification",
			zap.String("message_id", msg.MessageID),
			zap.Int64("journey_id", msg.JourneyID),
			zap.String("category", string(msg.Category)),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published notification",
		zap.String("message_id", msg.MessageID),
		zap.Int64("journey_id", msg.JourneyID),
		zap.String("category", string(msg.Category)),
	)

	return nil
}
