package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"SafeTrip/internal/model"
	"SafeTrip/internal/service"
	"SafeTrip/pkg/response"
)

// ListContacts 查询全部紧急联系人
func ListContacts(ctx context.Context, c *app.RequestContext) {
	response.Success(ctx, c, service.Contacts().List(ctx))
}

// CreateContact 新增紧急联系人
func CreateContact(ctx context.Context, c *app.RequestContext) {
	var req model.CreateContactRequest
	if err := c.Bind(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	contact, err := service.Contacts().Add(ctx, req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.Success(ctx, c, contact)
}

// DeleteContact 按手机号删除紧急联系人
func DeleteContact(ctx context.Context, c *app.RequestContext) {
	phone := c.Param("phone")

	if err := service.Contacts().Remove(ctx, phone); err != nil {
		response.Error(ctx, c, err)
		return
	}
	response.NoContent(ctx, c)
}
