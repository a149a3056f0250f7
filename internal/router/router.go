package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"SafeTrip/internal/handler"
	"SafeTrip/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())

	h.GET("/healthz", handler.Healthz)

	v1 := h.Group("/v1")

	// 行程监护：单人单行程，全部操作针对当前行程
	journeys := v1.Group("/journeys")
	{
		journeys.POST("", handler.StartJourney)
		journeys.GET("/current", handler.GetJourneyStatus)
		journeys.POST("/current/check-in", handler.CheckIn)
		journeys.POST("/current/arrive", handler.ConfirmArrival)
		journeys.POST("/current/cancel", handler.CancelJourney)
		journeys.POST("/current/alert", handler.TriggerAlert)
		journeys.POST("/current/extend", handler.ExtendJourney)
		journeys.POST("/current/location", handler.UpdateLocation)
	}

	// 行程历史
	history := v1.Group("/history")
	{
		history.GET("", handler.GetJourneyHistory)
		history.DELETE("", handler.ClearJourneyHistory)
	}

	// 紧急联系人
	contacts := v1.Group("/contacts")
	{
		contacts.GET("", handler.ListContacts)
		contacts.POST("", handler.CreateContact)
		contacts.DELETE("/:phone", handler.DeleteContact)
	}

	// 打卡节奏设置
	settings := v1.Group("/settings")
	{
		settings.GET("", handler.GetSettings)
		settings.PUT("", handler.UpdateSettings)
	}
}
