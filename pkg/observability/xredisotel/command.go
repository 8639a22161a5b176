package xredisotel

import (
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// =============================================================================
// 命令与批次模型
// =============================================================================

// Command 表示一条 Redis 命令：首元素是操作名，其余是参数。
// 参数类型为 string、[]byte、整数、浮点数或嵌套序列。
// Command 是只读输入，渲染与大小计算都不会原地修改它。
type Command []any

// Batch 表示一次提交的命令批次，共有三种结构形态：
//   - 单命令（Singleton）：恰好包含一条 Command
//   - 流水线（Pipelined）：包含 N≥1 条 Command
//   - 事务排队（Queued）：每个条目是包了一层的单条 Command，
//     即 Batch{Command{[]any{...}}, ...}，对应逐条排队提交的事务命令
//
// 三种形态只靠嵌套深度区分，没有显式标签。所有组件在读取操作名之前
// 必须先经过 Normalize，否则排队形态的条目在操作名位置暴露的是一个序列。
type Batch []Command

// Normalize 将批次条目归一化为裸 Command。
//
// 规则：条目本身是序列，且首元素也是序列时，返回该首元素（剥掉排队包装）；
// 否则原样返回。对三种已识别形态是全函数，没有错误分支，且幂等：
// Normalize(Normalize(e)) == Normalize(e)。
func Normalize(entry Command) Command {
	if len(entry) == 0 {
		return entry
	}
	switch first := entry[0].(type) {
	case Command:
		return first
	case []any:
		return Command(first)
	}
	return entry
}

// operationName 返回命令的操作名原文（未大写化）。
// 操作名 token 可能以 string 或 []byte 出现，其余类型按默认格式化处理。
func operationName(cmd Command) string {
	if len(cmd) == 0 {
		return ""
	}
	switch op := cmd[0].(type) {
	case string:
		return op
	case []byte:
		return string(op)
	default:
		return fmt.Sprint(op)
	}
}

// spanName 返回批次对应的 span 名称。
// 单命令批次使用大写操作名，多命令批次使用固定字面量 "PIPELINED"。
func spanName(batch Batch) string {
	if len(batch) == 1 {
		return strings.ToUpper(operationName(Normalize(batch[0])))
	}
	return spanNamePipelined
}

// containsAuth 判断批次中是否存在 AUTH 命令（任意位置、任意形态）。
//
// 设计决策: 先整体扫描再决定输出，而不是在渲染循环中途 return。
// 语句渲染与发送大小计算共享同一条"一处 AUTH、整批脱敏"的规则，
// 把判定收敛到一个函数避免两处各写一半。
func containsAuth(batch Batch) bool {
	for _, entry := range batch {
		if strings.EqualFold(operationName(Normalize(entry)), opAuth) {
			return true
		}
	}
	return false
}

// commandFromCmder 将 go-redis 命令转换为 Command 表示。
// Args 返回的切片只读使用，不做拷贝也不修改。
func commandFromCmder(cmd redis.Cmder) Command {
	return Command(cmd.Args())
}

// batchFromCmders 将 Pipeline 的命令列表转换为批次表示。
//
// 事务 Pipeline 的命令序列以 MULTI 开头、EXEC 结尾（取决于 go-redis
// 版本是否在 Hook 层暴露包装命令）。检测到该框架时剥掉首尾，
// 并把中间命令包装成排队形态，使同一套大小/语句计算同时覆盖两种批次。
// 返回的第二个值是与批次条目位置对齐的命令列表，用于收集回复。
func batchFromCmders(cmds []redis.Cmder) (Batch, []redis.Cmder) {
	if isTxPipeline(cmds) {
		inner := cmds[1 : len(cmds)-1]
		batch := make(Batch, 0, len(inner))
		for _, cmd := range inner {
			batch = append(batch, Command{[]any(cmd.Args())})
		}
		return batch, inner
	}

	batch := make(Batch, 0, len(cmds))
	for _, cmd := range cmds {
		batch = append(batch, commandFromCmder(cmd))
	}
	return batch, cmds
}

// isTxPipeline 判断命令列表是否带有 MULTI/EXEC 事务框架。
func isTxPipeline(cmds []redis.Cmder) bool {
	if len(cmds) < 2 {
		return false
	}
	return strings.EqualFold(cmds[0].Name(), "multi") &&
		strings.EqualFold(cmds[len(cmds)-1].Name(), "exec")
}
