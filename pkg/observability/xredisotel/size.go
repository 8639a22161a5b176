package xredisotel

import (
	"strconv"
	"strings"
)

// =============================================================================
// 操作集合
// =============================================================================

// OpSet 表示参与大小统计的操作名集合。
// 发送方向：集合内操作的最后一个参数视为"被写入的值"（如 SET）。
// 返回方向：集合内操作的回复计入返回字节数（如 GET、MGET）。
type OpSet map[string]struct{}

// NewOpSet 构造操作集合。操作名统一大写存储，匹配不区分大小写。
func NewOpSet(ops ...string) OpSet {
	set := make(OpSet, len(ops))
	for _, op := range ops {
		set[strings.ToUpper(op)] = struct{}{}
	}
	return set
}

// Contains 判断操作名是否在集合中。
func (s OpSet) Contains(op string) bool {
	_, ok := s[strings.ToUpper(op)]
	return ok
}

// Ops 返回集合内的操作名列表，顺序不保证。
func (s OpSet) Ops() []string {
	ops := make([]string, 0, len(s))
	for op := range s {
		ops = append(ops, op)
	}
	return ops
}

// =============================================================================
// 字节大小计算
// =============================================================================

// ByteSize 按结构递归计算值的字节大小，是全函数，任何输入都不会失败。
//
// 规则：
//   - 错误值计 0：命令级失败以数据形式嵌在回复里，不计入大小
//   - 字符串/字节串按原始字节长度计（多字节字符按编码后长度，非字符数）
//   - 序列对元素求和
//   - 整数按十进制位数计，浮点数按默认字符串表示的长度计。
//     这是对协议/显示表示的刻意近似，与真实二进制宽度无关，
//     保持该口径以维持既有指标的连续性
//   - nil 与未识别类型计 0
func ByteSize(v any) int {
	switch x := v.(type) {
	case nil:
		return 0
	case error:
		return 0
	case string:
		return len(x)
	case []byte:
		return len(x)
	case Command:
		return sliceSize(x)
	case []any:
		return sliceSize(x)
	case []string:
		total := 0
		for _, s := range x {
			total += len(s)
		}
		return total
	case Batch:
		total := 0
		for _, cmd := range x {
			total += sliceSize(cmd)
		}
		return total
	case int:
		return len(strconv.FormatInt(int64(x), 10))
	case int8:
		return len(strconv.FormatInt(int64(x), 10))
	case int16:
		return len(strconv.FormatInt(int64(x), 10))
	case int32:
		return len(strconv.FormatInt(int64(x), 10))
	case int64:
		return len(strconv.FormatInt(x, 10))
	case uint:
		return len(strconv.FormatUint(uint64(x), 10))
	case uint8:
		return len(strconv.FormatUint(uint64(x), 10))
	case uint16:
		return len(strconv.FormatUint(uint64(x), 10))
	case uint32:
		return len(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return len(strconv.FormatUint(x, 10))
	case float32:
		return len(strconv.FormatFloat(float64(x), 'g', -1, 32))
	case float64:
		return len(strconv.FormatFloat(x, 'g', -1, 64))
	default:
		return 0
	}
}

func sliceSize(seq []any) int {
	total := 0
	for _, elem := range seq {
		total += ByteSize(elem)
	}
	return total
}

// =============================================================================
// 发送/返回方向的大小统计
// =============================================================================

// SentSize 统计批次中写入值的总字节数。
//
// 批次任意位置出现 AUTH 时整批返回 0（与语句渲染同一条脱敏规则，
// 此处独立应用）。集合内操作取最后一个参数计 ByteSize，
// 集合外操作计 0 但不中断遍历。
func SentSize(batch Batch, tracked OpSet) int {
	if containsAuth(batch) {
		return 0
	}

	total := 0
	for _, entry := range batch {
		cmd := Normalize(entry)
		if !tracked.Contains(operationName(cmd)) || len(cmd) < 2 {
			continue
		}
		total += ByteSize(cmd[len(cmd)-1])
	}
	return total
}

// RetrievedSize 统计回复中返回值的总字节数。
//
// 单命令批次：操作在集合内时返回 ByteSize(reply)，否则 0。
// 多命令批次：按位置把第 i 条回复与归一化后的第 i 条命令配对，
// 递归归约为单命令子问题后求和。流水线与事务排队两种形态
// 的嵌套深度不同，但经 Normalize 归约后走的是同一条路径。
func RetrievedSize(reply any, batch Batch, tracked OpSet) int {
	if len(batch) == 0 {
		return 0
	}

	if len(batch) == 1 {
		cmd := Normalize(batch[0])
		if !tracked.Contains(operationName(cmd)) {
			return 0
		}
		return ByteSize(reply)
	}

	replies := replySequence(reply)
	total := 0
	for i, entry := range batch {
		var r any
		if i < len(replies) {
			r = replies[i]
		}
		total += RetrievedSize(r, Batch{Normalize(entry)}, tracked)
	}
	return total
}

// replySequence 把多命令批次的回复视为位置对齐的序列。
// 回复不是序列时返回 nil，各位置按缺失（0 字节）处理。
func replySequence(reply any) []any {
	switch r := reply.(type) {
	case []any:
		return r
	case []string:
		seq := make([]any, len(r))
		for i, s := range r {
			seq[i] = s
		}
		return seq
	default:
		return nil
	}
}
