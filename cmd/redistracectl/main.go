// redistracectl 是 rediskit 埋点能力的演示与验证工具。
//
// 用法:
//
//	redistracectl [全局选项] <命令>
//
// 全局选项:
//
//	-a, --addr       Redis 地址 (默认: 127.0.0.1:6379)
//	-c, --config     埋点配置文件路径 (YAML/JSON，可选)
//	-e, --endpoint   OTLP HTTP 上报端点 (默认: 127.0.0.1:4318)
//	-t, --timeout    单次操作超时时间 (默认: 5s)
//
// 命令:
//
//	run            生成示例流量并上报 trace
//	  -n, --iterations   每个 worker 的迭代次数 (默认: 10)
//	  -w, --workers      并发 worker 数量 (默认: 4)
//	check          加载并打印配置，验证配置文件合法性
//	help           显示帮助信息
//
// 退出码:
//
//	0: 执行成功
//	1: 执行失败（连接失败、上报失败等）
//	2: 参数错误（配置非法、未知命令等）
//
// 示例:
//
//	redistracectl run                             # 默认本机 Redis + OTLP
//	redistracectl -c trace.yaml run -w 8 -n 100   # 按配置文件埋点
//	redistracectl -c trace.yaml check             # 仅校验配置
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"
)

// defaultTimeout 默认单次操作超时时间。
const defaultTimeout = 5 * time.Second

// 版本信息（可通过 -ldflags 注入，例如:
//
//	go build -ldflags "-X main.Version=1.0.0 -X main.GitCommit=$(git rev-parse --short HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// ）。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

// createApp 创建 CLI 应用。
func createApp() *cli.Command {
	return &cli.Command{
		Name:    "redistracectl",
		Usage:   "rediskit 埋点演示与验证工具",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "Redis 地址",
				Value:   "127.0.0.1:6379",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "埋点配置文件路径 (YAML/JSON)",
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Aliases: []string{"e"},
				Usage:   "OTLP HTTP 上报端点",
				Value:   "127.0.0.1:4318",
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "单次操作超时时间",
				Value:   defaultTimeout,
			},
		},
		Commands:       createCommands(),
		DefaultCommand: "help",
		Authors: []any{
			"rediskit Team",
		},
		// 设计决策: 禁止 urfave/cli 直接调用 os.Exit，
		// 由 run() 统一处理退出码映射，确保与文档退出码契约一致。
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run() int {
	app := createApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	setupSignalHandler(ctx, cancel)

	if err := app.Run(ctx, os.Args); err != nil {
		var usageErr *usageError
		if errors.As(err, &usageErr) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usageErr)
			return 2
		}
		if _, ok := err.(cli.ExitCoder); ok {
			// ExitErrHandler 已输出错误详情
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}

	return 0
}

// setupSignalHandler 设置信号处理，SIGINT/SIGTERM 触发优雅退出。
func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()
}

// usageError 表示参数错误，退出码为 2。
type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }
