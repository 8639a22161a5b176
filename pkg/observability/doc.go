// Package observability 提供可观测性相关的子包。
//
// 子包列表：
//   - xredisotel: go-redis 客户端的 OpenTelemetry 埋点 Hook
//
// 设计原则：
//   - 遵循 OpenTelemetry 语义规范
//   - 语句渲染默认脱敏，凭据类命令无条件脱敏
//   - 埋点配置在单个批次处理期间只读
package observability
