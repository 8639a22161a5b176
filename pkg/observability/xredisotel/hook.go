package xredisotel

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// =============================================================================
// 工厂函数
// =============================================================================

// NewHook 创建埋点 Hook。
// conn 描述客户端的连接目标，用于填充对端属性。
func NewHook(conn ConnInfo, opts ...Option) (*TracingHook, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if !options.Policy.Valid() {
		return nil, ErrInvalidPolicy
	}

	tracerProvider := options.TracerProvider
	if tracerProvider == nil {
		tracerProvider = otel.GetTracerProvider()
	}
	meterProvider := options.MeterProvider
	if meterProvider == nil {
		meterProvider = otel.GetMeterProvider()
	}

	metrics, err := newHookMetrics(meterProvider.Meter(options.InstrumentationName))
	if err != nil {
		return nil, err
	}

	return &TracingHook{
		conn:    conn,
		opts:    options,
		tracer:  tracerProvider.Tracer(options.InstrumentationName),
		metrics: metrics,
	}, nil
}

// InstrumentTracing 为已有的 *redis.Client 安装埋点 Hook。
// 连接信息从客户端配置解析，命令执行语义不受影响。
func InstrumentTracing(rdb *redis.Client, opts ...Option) error {
	if rdb == nil {
		return ErrNilClient
	}

	hook, err := NewHook(connInfoFromOptions(rdb.Options()), opts...)
	if err != nil {
		return err
	}
	rdb.AddHook(hook)
	return nil
}

// =============================================================================
// TracingHook 实现
// =============================================================================

// TracingHook 实现 redis.Hook，在命令执行前后提取追踪属性。
// 配置在构造后只读，多 goroutine 并发使用无需加锁。
type TracingHook struct {
	conn    ConnInfo
	opts    *Options
	tracer  trace.Tracer
	metrics *hookMetrics
}

var _ redis.Hook = (*TracingHook)(nil)

// DialHook 透传连接建立，不为拨号产生 span。
func (h *TracingHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

// ProcessHook 为单条命令埋点。
// span 名称是大写操作名，kind 为 client。
func (h *TracingHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		if !h.shouldTrace(ctx) {
			return next(ctx, cmd)
		}

		batch := Batch{commandFromCmder(cmd)}
		ctx, span := h.startSpan(ctx, batch, nil)

		start := time.Now()
		err := next(ctx, cmd)
		h.finish(ctx, span, batch, replyValue(cmd), err, start)
		return err
	}
}

// ProcessPipelineHook 为命令批次埋点。
// span 名称固定为 "PIPELINED"；事务 Pipeline 的 MULTI/EXEC 框架被剥掉，
// 中间命令以排队形态进入同一套属性与大小计算。
func (h *TracingHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		if len(cmds) == 0 || !h.shouldTrace(ctx) {
			return next(ctx, cmds)
		}

		batch, replyCmds := batchFromCmders(cmds)
		extra := []attribute.KeyValue{attribute.Int(attrPipelineLength, len(batch))}
		ctx, span := h.startSpan(ctx, batch, extra)

		start := time.Now()
		err := next(ctx, cmds)
		h.finish(ctx, span, batch, pipelineReply(replyCmds), err, start)
		return err
	}
}

// shouldTrace 判断本次调用是否埋点。
// TraceRootSpans 关闭时，只有存在合法的上游 span 上下文才埋点。
func (h *TracingHook) shouldTrace(ctx context.Context) bool {
	if h.opts.TraceRootSpans {
		return true
	}
	return trace.SpanContextFromContext(ctx).IsValid()
}

func (h *TracingHook) startSpan(ctx context.Context, batch Batch, extra []attribute.KeyValue) (context.Context, trace.Span) {
	attrs := BuildAttributes(batch, h.conn, h.opts)
	attrs = append(attrs, extra...)
	return h.tracer.Start(ctx, spanName(batch),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// finish 在命令执行后补充结果属性、记录指标并结束 span。
//
// redis.Nil（键不存在）是正常的协议回复，不算错误；
// 其余错误记入 span 并置为 error 状态。
func (h *TracingHook) finish(ctx context.Context, span trace.Span, batch Batch, reply any, err error, start time.Time) {
	var sent, retrieved int
	if h.opts.RecordValueSize {
		sent = SentSize(batch, h.opts.SentOps)
		retrieved = RetrievedSize(reply, batch, h.opts.RetrievedOps)
		span.SetAttributes(attribute.Int(attrRetrievedBytes, retrieved))
	}

	opErr := err
	if errors.Is(opErr, redis.Nil) {
		opErr = nil
	}
	if opErr != nil {
		span.RecordError(opErr)
		span.SetStatus(codes.Error, opErr.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()

	h.metrics.record(ctx, spanName(batch), time.Since(start), sent, retrieved, h.opts.RecordValueSize, opErr)
}
