package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/omeyang/rediskit/pkg/config/xtraceconf"
	"github.com/omeyang/rediskit/pkg/observability/xredisotel"
)

// 创建所有子命令。
func createCommands() []*cli.Command {
	return []*cli.Command{
		createRunCommand(),
		createCheckCommand(),
	}
}

// createRunCommand 创建 run 子命令（生成示例流量并上报 trace）。
func createRunCommand() *cli.Command {
	return &cli.Command{
		Name:    "run",
		Aliases: []string{"r"},
		Usage:   "生成示例流量并上报 trace",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "iterations",
				Aliases: []string{"n"},
				Usage:   "每个 worker 的迭代次数",
				Value:   10,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "并发 worker 数量",
				Value:   4,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts, err := loadTraceOptions(cmd.String("config"))
			if err != nil {
				return err
			}
			return cmdRun(ctx, runParams{
				addr:       cmd.String("addr"),
				endpoint:   cmd.String("endpoint"),
				timeout:    cmd.Duration("timeout"),
				iterations: cmd.Int("iterations"),
				workers:    cmd.Int("workers"),
				traceOpts:  opts,
			})
		},
	}
}

// createCheckCommand 创建 check 子命令（仅校验配置文件）。
func createCheckCommand() *cli.Command {
	return &cli.Command{
		Name:    "check",
		Aliases: []string{"k"},
		Usage:   "加载并打印配置，验证配置文件合法性",
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := cmd.String("config")
			if path == "" {
				return &usageError{msg: "check 命令需要 --config 指定配置文件"}
			}
			cfg, err := xtraceconf.Load(path)
			if err != nil {
				return &usageError{msg: fmt.Sprintf("配置非法: %v", err)}
			}
			fmt.Printf("policy: %s\n", cfg.Policy())
			fmt.Printf("record_value_size: %v\n", cfg.RecordValueSize)
			fmt.Printf("trace_root_spans: %v\n", cfg.TraceRootSpans)
			fmt.Printf("peer_service: %q\n", cfg.PeerService)
			fmt.Printf("sent_ops: %v\n", cfg.SentOps)
			fmt.Printf("retrieved_ops: %v\n", cfg.RetrievedOps)
			fmt.Printf("max_statement_length: %d\n", cfg.MaxStatementLength)
			return nil
		},
	}
}

// loadTraceOptions 从配置文件加载埋点选项。路径为空时使用默认选项。
func loadTraceOptions(path string) ([]xredisotel.Option, error) {
	if path == "" {
		return nil, nil
	}
	cfg, err := xtraceconf.Load(path)
	if err != nil {
		return nil, &usageError{msg: fmt.Sprintf("配置加载失败: %v", err)}
	}
	return cfg.Options(), nil
}

// newLogger 创建结构化日志器，输出到 stderr。
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
