package xredisotel

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricOperationDuration = "rediskit.client.operation.duration"
	metricSentBytes         = "rediskit.client.sent.bytes"
	metricRetrievedBytes    = "rediskit.client.retrieved.bytes"
)

// =============================================================================
// Hook 指标
// =============================================================================

// hookMetrics 持有 Hook 的指标 instrument。
type hookMetrics struct {
	duration  metric.Float64Histogram
	sent      metric.Int64Histogram
	retrieved metric.Int64Histogram
}

func newHookMetrics(meter metric.Meter) (*hookMetrics, error) {
	duration, err := meter.Float64Histogram(
		metricOperationDuration,
		metric.WithDescription("redis client operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("xredisotel: create duration histogram failed: %w", err)
	}

	sent, err := meter.Int64Histogram(
		metricSentBytes,
		metric.WithDescription("bytes of values sent in write commands"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("xredisotel: create sent histogram failed: %w", err)
	}

	retrieved, err := meter.Int64Histogram(
		metricRetrievedBytes,
		metric.WithDescription("bytes of values returned by read commands"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, fmt.Errorf("xredisotel: create retrieved histogram failed: %w", err)
	}

	return &hookMetrics{
		duration:  duration,
		sent:      sent,
		retrieved: retrieved,
	}, nil
}

// record 记录一次操作的指标。sized 为 false 时只记录耗时。
//
// 使用不可取消的 context 记录指标，确保请求 context 已取消/超时的
// 失败场景仍然可观测。
func (m *hookMetrics) record(ctx context.Context, operation string, elapsed time.Duration, sent, retrieved int, sized bool, err error) {
	metricsCtx := context.WithoutCancel(ctx)
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", statusLabel(err)),
	)

	m.duration.Record(metricsCtx, elapsed.Seconds(), attrs)
	if sized {
		m.sent.Record(metricsCtx, int64(sent), attrs)
		m.retrieved.Record(metricsCtx, int64(retrieved), attrs)
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
