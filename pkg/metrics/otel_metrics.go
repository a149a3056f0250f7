package metrics

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelMetrics OpenTelemetry 指标集合
type OTelMetrics struct {
	// 行程生命周期指标
	JourneyStartedTotal   metric.Int64Counter
	JourneyCompletedTotal metric.Int64Counter
	JourneyAlertTotal     metric.Int64Counter

	// 通知投递指标
	NotificationSentTotal   metric.Int64Counter
	NotificationFailedTotal metric.Int64Counter

	// 短信发送指标（worker 侧）
	SMSSentTotal    metric.Int64Counter
	SMSSendDuration metric.Float64Histogram
}

var (
	// 全局指标实例。未调用 InitMetrics 时全部记录函数为空操作，
	// 纯单测场景不需要任何 OTel 管线。
	metrics *OTelMetrics

	meter = otel.Meter("safetrip")
)

// InitMetrics 初始化 OpenTelemetry 指标
func InitMetrics() error {
	m := &OTelMetrics{}
	var err error

	m.JourneyStartedTotal, err = meter.Int64Counter(
		"journey_started_total",
		metric.WithDescription("Total number of journeys started"),
		metric.WithUnit("{journey}"),
	)
	if err != nil {
		return err
	}

	m.JourneyCompletedTotal, err = meter.Int64Counter(
		"journey_completed_total",
		metric.WithDescription("Total number of journeys finished without alert"),
		metric.WithUnit("{journey}"),
	)
	if err != nil {
		return err
	}

	m.JourneyAlertTotal, err = meter.Int64Counter(
		"journey_alert_total",
		metric.WithDescription("Total number of journey alerts triggered"),
		metric.WithUnit("{alert}"),
	)
	if err != nil {
		return err
	}

	m.NotificationSentTotal, err = meter.Int64Counter(
		"notification_sent_total",
		metric.WithDescription("Total number of notifications handed to the dispatcher"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	m.NotificationFailedTotal, err = meter.Int64Counter(
		"notification_failed_total",
		metric.WithDescription("Total number of notification dispatch failures"),
		metric.WithUnit("{notification}"),
	)
	if err != nil {
		return err
	}

	m.SMSSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS sent"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return err
	}

	m.SMSSendDuration, err = meter.Float64Histogram(
		"sms_send_duration_seconds",
		metric.WithDescription("Time spent sending SMS in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	metrics = m
	return nil
}

// RecordJourneyStarted 记录行程开始
func RecordJourneyStarted(ctx context.Context) {
	if metrics == nil {
		return
	}
	metrics.JourneyStartedTotal.Add(ctx, 1)
}

// RecordJourneyCompleted 记录行程无警报结束（arrived / cancelled）
func RecordJourneyCompleted(ctx context.Context, finalStatus string) {
	if metrics == nil {
		return
	}
	metrics.JourneyCompletedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("final_status", finalStatus)),
	)
}

// RecordJourneyAlert 记录警报触发
func RecordJourneyAlert(ctx context.Context, reason string) {
	if metrics == nil {
		return
	}
	metrics.JourneyAlertTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("reason", reason)),
	)
}

// RecordNotificationSent 记录通知投递成功
func RecordNotificationSent(ctx context.Context, category string) {
	if metrics == nil {
		return
	}
	metrics.NotificationSentTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordNotificationFailed 记录通知投递失败
func RecordNotificationFailed(ctx context.Context, category string) {
	if metrics == nil {
		return
	}
	metrics.NotificationFailedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("category", category)),
	)
}

// RecordSMSSent 记录一次短信发送结果及耗时
func RecordSMSSent(ctx context.Context, provider, status string, durationSeconds float64) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("status", status),
	)
	metrics.SMSSentTotal.Add(ctx, 1, attrs)
	metrics.SMSSendDuration.Record(ctx, durationSeconds, attrs)
}
