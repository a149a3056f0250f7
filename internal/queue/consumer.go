package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"SafeTrip/config"
	"SafeTrip/internal/cache"
	"SafeTrip/internal/model"
	"SafeTrip/pkg/errors"
	"SafeTrip/pkg/logger"
	"SafeTrip/pkg/metrics"
	"SafeTrip/pkg/sms"
	"SafeTrip/storage/mq"
)

// StartSMSNotificationConsumer 启动短信通知消费者。
// 消费 notify.sms 队列，每条消息对应一个收件人。
func StartSMSNotificationConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.NotificationMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			// 坏消息没有重投价值，直接跳过
			return &errors.SkipMessageError{Reason: fmt.Sprintf("malformed notification message: %v", err)}
		}

		// 【幂等性检查】使用 SETNX 原子性地检查并标记消息正在处理
		processing, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// 检查失败时继续处理，宁可重复不可丢警报
		} else if !processing {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("Message %s already processed", msg.MessageID)}
		}

		logger.Logger.Info("Processing notification",
			zap.String("message_id", msg.MessageID),
			zap.Int64("journey_id", msg.JourneyID),
			zap.String("category", string(msg.Category)),
		)

		// 自由文本通过单参数模板下发
		param, err := json.Marshal(map[string]string{"content": msg.Body})
		if err != nil {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("failed to marshal template param: %v", err)}
		}

		start := time.Now()
		_, sendErr := sms.SendSingle(ctx, msg.Phone, config.Cfg.SMSSignName, config.Cfg.SMSTemplateCode, string(param))
		metrics.RecordSMSSent(ctx, config.Cfg.SMSProvider, sendStatus(sendErr), time.Since(start).Seconds())

		if sendErr != nil {
			// 发送失败，取消标记让消息可以重投
			if err := cache.UnmarkMessageProcessing(ctx, msg.MessageID); err != nil {
				logger.Logger.Warn("Failed to unmark message processing",
					zap.String("message_id", msg.MessageID),
					zap.Error(err),
				)
			}
			return fmt.Errorf("failed to send notification SMS: %w", sendErr)
		}

		if err := cache.MarkMessageProcessed(ctx, msg.MessageID, 48*time.Hour); err != nil {
			logger.Logger.Warn("Failed to mark message as processed",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.NotifySMSQueue,
		ConsumerTag:   "sms_notification_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

func sendStatus(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// StartAllConsumers 启动所有消费者（worker 启动时调用）
func StartAllConsumers(ctx context.Context) {
	var wg sync.WaitGroup

	consumers := []struct {
		name     string
		consumer func(context.Context) error
	}{
		{"sms_notification", StartSMSNotificationConsumer},
	}

	for _, c := range consumers {
		wg.Add(1)
		go func(name string, consumer func(context.Context) error) {
			defer wg.Done()

			logger.Logger.Info("Starting consumer",
				zap.String("consumer_name", name),
			)

			if err := consumer(ctx); err != nil {
				logger.Logger.Error("Consumer exited with error",
					zap.String("consumer_name", name),
					zap.Error(err),
				)
			}
		}(c.name, c.consumer)
	}

	wg.Wait()
}
