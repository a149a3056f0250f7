package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeTrip/internal/model"
	"SafeTrip/internal/service"
	"SafeTrip/pkg/response"
)

// StartJourney 开始受监护行程
func StartJourney(ctx context.Context, c *app.RequestContext) {
	var req model.StartJourneyRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	journey, err := service.Journey().Start(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, journey)
}

// GetJourneyStatus 当前行程状态快照，供 UI 轮询
func GetJourneyStatus(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, service.Journey().Status(ctx))
}

// CheckIn 平安确认
func CheckIn(ctx context.Context, c *app.RequestContext) {
	journey, err := service.Journey().CheckIn(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, journey)
}

// ConfirmArrival 确认安全到达，行程结束
func ConfirmArrival(ctx context.Context, c *app.RequestContext) {
	entry, err := service.Journey().ConfirmArrival(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, entry)
}

// CancelJourney 取消当前行程
func CancelJourney(ctx context.Context, c *app.RequestContext) {
	entry, err := service.Journey().Cancel(ctx)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, entry)
}

// TriggerAlert 手动触发警报（SOS）
func TriggerAlert(ctx context.Context, c *app.RequestContext) {
	var req model.ForceAlertRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	entry, err := service.Journey().ForceAlert(ctx, model.AlertReason(req.Reason))
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	if entry == nil {
		// 没有活跃行程的 SOS 是空操作，不报错
		response.NoContent(ctx, c)
		return
	}
	response.Success(ctx, c, entry)
}

// ExtendJourney 延长预计时长
func ExtendJourney(ctx context.Context, c *app.RequestContext) {
	var req model.ExtendJourneyRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	journey, err := service.Journey().Extend(ctx, req.AdditionalMinutes)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, journey)
}

// UpdateLocation 上报当前位置
func UpdateLocation(ctx context.Context, c *app.RequestContext) {
	var req model.UpdateLocationRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Journey().UpdateLocation(ctx, req.Location); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}
