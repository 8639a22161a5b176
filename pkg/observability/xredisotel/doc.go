// Package xredisotel 为 go-redis 提供基于 OpenTelemetry 的链路追踪与指标埋点。
//
// # 设计理念
//
// xredisotel 不改变命令的执行语义，只在执行前后提取结构化的追踪属性：
//   - 三种批次形态（单命令、Pipeline、事务排队）归一为统一表示
//   - 语句渲染支持脱敏策略（omit/obfuscate/raw），AUTH 命令强制整批脱敏
//   - 发送值与返回值的字节大小按协议表示法递归计算
//
// # 核心组件
//
//   - Normalize / Batch / Command：批次形态归一化（见 command.go）
//   - RenderStatement：可读、可脱敏的语句渲染（见 statement.go）
//   - ByteSize / SentSize / RetrievedSize：值大小计算（见 size.go）
//   - BuildAttributes：组装 span 属性集（见 attrs.go）
//   - TracingHook：实现 redis.Hook 的埋点入口（见 hook.go）
//
// # 快速开始
//
// 使用 InstrumentTracing 为已有的 *redis.Client 安装埋点：
//
//	rdb := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	if err := xredisotel.InstrumentTracing(rdb); err != nil {
//	    // ...
//	}
//
// 详细使用示例参考 example_test.go。
//
// # 并发模型
//
// 所有计算函数都是纯函数：无共享可变状态、无阻塞 I/O，
// 多 goroutine 并发执行独立批次无需加锁。配置在 Hook 生命周期内只读。
package xredisotel
