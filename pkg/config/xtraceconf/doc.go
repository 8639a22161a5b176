// Package xtraceconf 提供 Redis 埋点的文件化配置：加载、校验与热更新。
//
// # 设计理念
//
// xredisotel 的选项通过代码注入；xtraceconf 把同一组开关映射到
// YAML/JSON 配置文件，适合由运维侧统一下发：
//   - omit_statement / obfuscate_statement 折算为语句渲染策略
//   - record_value_size、peer_service、trace_root_spans 直接透传
//   - sent_ops / retrieved_ops 控制大小统计的操作集合
//
// # 快速开始
//
//	cfg, err := xtraceconf.Load("/etc/app/redistrace.yaml")
//	if err != nil {
//	    // ...
//	}
//	err = xredisotel.InstrumentTracing(rdb, cfg.Options()...)
//
// # 热更新
//
// Watch 监控配置文件变更并重新加载。埋点配置在单个批次处理期间只读，
// 但允许在批次之间整体换新：收到回调后用新配置重建 Hook 即可。
package xtraceconf
