package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeTrip/pkg/response"
	"SafeTrip/storage/redis"
)

// Healthz 健康检查：探活 Redis，MQ 投递失败本就降级为日志
func Healthz(ctx context.Context, c *app.RequestContext) {
	if err := redis.Client().Ping(ctx).Err(); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, map[string]string{"status": "ok"})
}
