package main

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"golang.org/x/sync/errgroup"

	"github.com/omeyang/rediskit/pkg/observability/xredisotel"
)

// runParams run 命令的执行参数。
type runParams struct {
	addr       string
	endpoint   string
	timeout    time.Duration
	iterations int
	workers    int
	traceOpts  []xredisotel.Option
}

// cmdRun 连接 Redis，安装埋点 Hook，生成三种形态的示例流量。
func cmdRun(ctx context.Context, params runParams) error {
	logger := newLogger()

	provider, shutdown, err := setupTracerProvider(ctx, params.endpoint)
	if err != nil {
		return fmt.Errorf("初始化 trace 上报失败: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("trace 上报关闭失败", "error", err)
		}
	}()

	client := redis.NewClient(&redis.Options{Addr: params.addr})
	defer func() { _ = client.Close() }()

	// 带重试的连通性检查，容忍 Redis 尚未就绪
	retrier := retry.New(
		retry.Attempts(5),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
	)
	err = retrier.Do(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, params.timeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	})
	if err != nil {
		return fmt.Errorf("无法连接到 Redis %s: %w", params.addr, err)
	}

	opts := append([]xredisotel.Option{xredisotel.WithTracerProvider(provider)}, params.traceOpts...)
	if err := xredisotel.InstrumentTracing(client, opts...); err != nil {
		return fmt.Errorf("安装埋点失败: %w", err)
	}

	logger.Info("开始生成示例流量",
		"addr", params.addr,
		"workers", params.workers,
		"iterations", params.iterations,
	)

	g, gctx := errgroup.WithContext(ctx)
	for worker := range params.workers {
		g.Go(func() error {
			return runWorker(gctx, client, worker, params.iterations, params.timeout)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("流量生成失败: %w", err)
	}

	logger.Info("示例流量生成完成")
	return nil
}

// runWorker 单个 worker 的流量循环：单命令、Pipeline、TxPipeline 各一轮。
func runWorker(ctx context.Context, client *redis.Client, worker, iterations int, timeout time.Duration) error {
	for i := range iterations {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := fmt.Sprintf("redistracectl:w%d:i%d", worker, i)

		opCtx, cancel := context.WithTimeout(ctx, timeout)
		err := func() error {
			if err := client.Set(opCtx, key, fmt.Sprintf("value-%d", i), time.Minute).Err(); err != nil {
				return err
			}
			if err := client.Get(opCtx, key).Err(); err != nil {
				return err
			}

			_, err := client.Pipelined(opCtx, func(p redis.Pipeliner) error {
				p.Incr(opCtx, key+":count")
				p.Get(opCtx, key+":count")
				return nil
			})
			if err != nil {
				return err
			}

			_, err = client.TxPipelined(opCtx, func(p redis.Pipeliner) error {
				p.Set(opCtx, key+":tx", i, time.Minute)
				p.Get(opCtx, key+":tx")
				return nil
			})
			return err
		}()
		cancel()
		if err != nil {
			return fmt.Errorf("worker %d 第 %d 轮失败: %w", worker, i, err)
		}
	}
	return nil
}

// setupTracerProvider 创建 OTLP HTTP 上报的 TracerProvider。
// 返回的 shutdown 函数负责 flush 并释放资源。
func setupTracerProvider(ctx context.Context, endpoint string) (*sdktrace.TracerProvider, func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName("redistracectl"),
		semconv.ServiceVersion(Version),
	))
	if err != nil {
		return nil, nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	return provider, provider.Shutdown, nil
}
