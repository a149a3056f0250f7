package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeTrip/internal/model"
	"SafeTrip/internal/service"
	"SafeTrip/pkg/response"
)

// GetSettings 查询打卡节奏设置
func GetSettings(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, service.Settings().Get(ctx))
}

// UpdateSettings 更新打卡节奏设置，对之后开始的行程生效
func UpdateSettings(ctx context.Context, c *app.RequestContext) {
	var req model.CadenceSettings
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	if err := service.Settings().Update(ctx, req); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, req)
}
