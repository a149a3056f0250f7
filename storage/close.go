package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"SafeTrip/pkg/logger"
	"SafeTrip/storage/mq"
	"SafeTrip/storage/redis"
)

// Close 优雅关闭所有存储连接
// 关闭顺序：MQ -> Redis
// 先停止收发消息，再关闭缓存连接，确保投递标记写入完成
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	} else {
		logger.Logger.Info("Message queue closed successfully")
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	} else {
		logger.Logger.Info("Redis connection closed successfully")
	}

	logger.Logger.Info("All storage connections closed")
}
