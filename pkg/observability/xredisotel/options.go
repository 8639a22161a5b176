package xredisotel

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// defaultInstrumentationName OTel instrumentation 名称。
const defaultInstrumentationName = "github.com/omeyang/rediskit/xredisotel"

// defaultMaxStatementLength 语句属性的最大字符数。
const defaultMaxStatementLength = 500

// =============================================================================
// 配置选项
// =============================================================================

// Options 定义埋点行为的配置。
//
// 设计决策: tracer/meter 通过选项显式注入而非解析进程级单例，
// 默认值才回退到 otel 全局 Provider。测试可以注入独立的 Provider，
// 不依赖隐藏的全局状态。
type Options struct {
	// Policy 语句渲染策略。默认为 PolicyObfuscate：
	// 保留操作名与参数个数，参数值不落入 span。
	Policy RenderPolicy

	// RecordValueSize 是否统计发送/返回值的字节大小。
	// 默认关闭。
	RecordValueSize bool

	// PeerService 下游服务标签，非空时写入 peer.service 属性。
	PeerService string

	// TraceRootSpans 在没有活跃上游 trace 上下文时是否仍然埋点。
	// 默认为 true。设置为 false 时，根位置的命令直接透传不产生 span。
	TraceRootSpans bool

	// SentOps 发送方向统计的操作集合：最后一个参数视为被写入的值。
	// 默认为 {SET}。
	SentOps OpSet

	// RetrievedOps 返回方向统计的操作集合。
	// 默认为 {GET, MGET}。
	RetrievedOps OpSet

	// MaxStatementLength 语句属性的最大字符数，默认为 500。
	MaxStatementLength int

	// StaticAttributes 附加的静态属性，逐条并入 span 属性集。
	// 与既有 key 冲突时后写入者生效。
	StaticAttributes map[string]string

	// TracerProvider 为空时使用 otel.GetTracerProvider()。
	TracerProvider trace.TracerProvider

	// MeterProvider 为空时使用 otel.GetMeterProvider()。
	MeterProvider metric.MeterProvider

	// InstrumentationName OTel instrumentation 名称。
	InstrumentationName string
}

// Option 定义配置埋点的函数类型。
type Option func(*Options)

// defaultOptions 返回默认配置。
func defaultOptions() *Options {
	return &Options{
		Policy:              PolicyObfuscate,
		TraceRootSpans:      true,
		SentOps:             NewOpSet("SET"),
		RetrievedOps:        NewOpSet("GET", "MGET"),
		MaxStatementLength:  defaultMaxStatementLength,
		InstrumentationName: defaultInstrumentationName,
	}
}

// WithRenderPolicy 设置语句渲染策略。
func WithRenderPolicy(policy RenderPolicy) Option {
	return func(o *Options) {
		o.Policy = policy
	}
}

// WithValueSizeRecording 设置是否统计值大小。
func WithValueSizeRecording(enabled bool) Option {
	return func(o *Options) {
		o.RecordValueSize = enabled
	}
}

// WithPeerService 设置 peer.service 标签。
func WithPeerService(service string) Option {
	return func(o *Options) {
		o.PeerService = service
	}
}

// WithTraceRootSpans 设置是否为根位置的命令埋点。
func WithTraceRootSpans(enabled bool) Option {
	return func(o *Options) {
		o.TraceRootSpans = enabled
	}
}

// WithSentOps 设置发送方向统计的操作集合。
func WithSentOps(ops ...string) Option {
	return func(o *Options) {
		o.SentOps = NewOpSet(ops...)
	}
}

// WithRetrievedOps 设置返回方向统计的操作集合。
func WithRetrievedOps(ops ...string) Option {
	return func(o *Options) {
		o.RetrievedOps = NewOpSet(ops...)
	}
}

// WithMaxStatementLength 设置语句属性的最大字符数。
func WithMaxStatementLength(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxStatementLength = n
		}
	}
}

// WithStaticAttributes 设置附加静态属性。
// 多次调用会合并，相同 key 后设置者覆盖先设置者。
func WithStaticAttributes(attrs map[string]string) Option {
	return func(o *Options) {
		if o.StaticAttributes == nil {
			o.StaticAttributes = make(map[string]string, len(attrs))
		}
		for k, v := range attrs {
			o.StaticAttributes[k] = v
		}
	}
}

// WithTracerProvider 设置 TracerProvider。
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *Options) {
		if provider != nil {
			o.TracerProvider = provider
		}
	}
}

// WithMeterProvider 设置 MeterProvider。
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(o *Options) {
		if provider != nil {
			o.MeterProvider = provider
		}
	}
}

// WithInstrumentationName 设置 OTel instrumentation 名称。
func WithInstrumentationName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.InstrumentationName = name
		}
	}
}
