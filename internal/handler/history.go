package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeTrip/internal/service"
	"SafeTrip/pkg/response"
)

// GetJourneyHistory 查询行程历史，最新在前
func GetJourneyHistory(ctx context.Context, c *app.RequestContext) {
	entries := service.History().Load(ctx)
	stats := service.History().Stats(ctx)

	response.SuccessWithMeta(ctx, c, entries, map[string]interface{}{
		"total":     stats.Total,
		"arrived":   stats.Arrived,
		"alerts":    stats.Alerts,
		"cancelled": stats.Cancelled,
	})
}

// ClearJourneyHistory 清空行程历史
func ClearJourneyHistory(ctx context.Context, c *app.RequestContext) {
	if err := service.History().Clear(ctx); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}
