package middleware

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"SafeTrip/config"
	"SafeTrip/pkg/errors"
	"SafeTrip/pkg/logger"
	"SafeTrip/pkg/response"
)

// RecoverConfig recover 中间件配置
type RecoverConfig struct {
	// 堆栈追踪级别（full, simple, none）
	StackTraceLevel string
	// 生产环境是否返回详细错误
	ExposeDetailsInProduction bool
	// 是否在 span 中记录异常（OpenTelemetry）
	RecordInSpan bool
	// 是否是生产环境
	IsProduction bool
}

func NewRecoverConfig() RecoverConfig {
	return RecoverConfig{
		StackTraceLevel:           "simple",
		ExposeDetailsInProduction: false,
		RecordInSpan:              true,
		IsProduction:              config.Cfg.IsProduction(),
	}
}

// RecoverMiddleware 创建 recover 中间件
func RecoverMiddleware() app.HandlerFunc {
	return RecoverMiddlewareWithConfig(NewRecoverConfig())
}

// RecoverMiddlewareWithConfig 带配置的 recover 中间件
func RecoverMiddlewareWithConfig(cfg RecoverConfig) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		defer func() {
			if err := recover(); err != nil {
				handlePanic(ctx, c, err, cfg)
			}
		}()

		c.Next(ctx)
	}
}

func handlePanic(ctx context.Context, c *app.RequestContext, err interface{}, cfg RecoverConfig) {
	stack := getStackTrace(cfg.StackTraceLevel)

	logger.Logger.Error("Panic recovered",
		zap.Any("panic", err),
		zap.String("method", string(c.Method())),
		zap.String("path", string(c.Path())),
		zap.String("client_ip", c.ClientIP()),
		zap.ByteString("stack", stack),
	)

	if cfg.RecordInSpan {
		if span := trace.SpanFromContext(ctx); span.IsRecording() {
			span.SetStatus(codes.Error, fmt.Sprintf("panic: %v", err))
			span.RecordError(fmt.Errorf("panic: %v", err))
		}
	}

	writeErrorResponse(ctx, c, err, stack, cfg)
}

func writeErrorResponse(ctx context.Context, c *app.RequestContext, err interface{}, stack []byte, cfg RecoverConfig) {
	var errDef errors.Definition
	if cfg.IsProduction && !cfg.ExposeDetailsInProduction {
		// 生产环境返回友好提示
		errDef = errors.Definition{
			Code:    "INTERNAL_SERVER_ERROR",
			Message: "服务器内部错误，请稍后重试",
		}
		response.Error(ctx, c, errDef)
		return
	}

	errDef = errors.Definition{
		Code:    "INTERNAL_SERVER_ERROR",
		Message: fmt.Sprintf("Internal error: %v", err),
	}
	response.ErrorWithDetails(ctx, c, errDef, map[string]interface{}{
		"panic":     fmt.Sprintf("%v", err),
		"stack":     string(stack),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// getStackTrace 获取堆栈追踪
func getStackTrace(level string) []byte {
	var buf bytes.Buffer

	switch level {
	case "full":
		buf.Write(debug.Stack())
	case "simple":
		buf.WriteString("goroutine panic:\n")
		skip := 3 // 跳过 runtime 和 recover 相关的函数
		for i := skip; ; i++ {
			pc, file, line, ok := runtime.Caller(i)
			if !ok {
				break
			}
			fn := runtime.FuncForPC(pc)
			if fn == nil {
				continue
			}
			buf.WriteString(fmt.Sprintf("  %s:%d\n    %s\n", file, line, fn.Name()))
		}
	}

	return buf.Bytes()
}
