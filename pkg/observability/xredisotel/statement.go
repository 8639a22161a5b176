package xredisotel

import (
	"fmt"
	"strings"
)

// =============================================================================
// 渲染策略
// =============================================================================

// RenderPolicy 表示语句渲染策略，在 Hook 配置期固定，批次处理期间只读。
type RenderPolicy string

const (
	// PolicyOmit 完全不渲染语句，span 上不出现语句属性。
	PolicyOmit RenderPolicy = "omit"

	// PolicyObfuscate 保留操作名，所有参数替换为 ? 占位符。
	PolicyObfuscate RenderPolicy = "obfuscate"

	// PolicyRaw 原样渲染参数。只应在确认语句不含敏感数据时使用。
	PolicyRaw RenderPolicy = "raw"
)

// Valid 判断渲染策略是否为已识别的取值。
func (p RenderPolicy) Valid() bool {
	switch p {
	case PolicyOmit, PolicyObfuscate, PolicyRaw:
		return true
	}
	return false
}

// opAuth 认证命令的操作名。无论渲染策略如何，批次中出现 AUTH 即整批脱敏。
const opAuth = "AUTH"

// authRedacted 含 AUTH 批次的固定渲染结果。
const authRedacted = "AUTH ?"

// =============================================================================
// 语句渲染
// =============================================================================

// RenderStatement 把批次渲染为一条换行分隔的可读语句。
//
// 规则：
//   - 批次任意位置出现 AUTH 命令时，整批渲染为固定的 "AUTH ?"。
//     这是凭据脱敏规则：一条认证命令抑制全批渲染，而非逐条处理。
//   - 其余命令渲染为大写操作名 + 参数，空格连接；
//     PolicyObfuscate 下每个参数替换为一个 ? 占位符。
//   - 空批次渲染为空字符串；PolicyOmit 同样返回空字符串，
//     调用方（BuildAttributes）在 omit 时根本不会写入语句属性。
//
// 渲染产生新字符串，不修改输入命令。长度截断与编码安全化由调用方
// 在拿到完整渲染结果之后执行，本函数不做预截断。
func RenderStatement(batch Batch, policy RenderPolicy) string {
	if policy == PolicyOmit || len(batch) == 0 {
		return ""
	}
	if containsAuth(batch) {
		return authRedacted
	}

	lines := make([]string, 0, len(batch))
	for _, entry := range batch {
		lines = append(lines, renderCommand(Normalize(entry), policy))
	}
	return strings.Join(lines, "\n")
}

// renderCommand 渲染单条命令为一行。
func renderCommand(cmd Command, policy RenderPolicy) string {
	if len(cmd) == 0 {
		return ""
	}

	parts := make([]string, 0, len(cmd))
	parts = append(parts, strings.ToUpper(operationName(cmd)))
	for _, arg := range cmd[1:] {
		if policy == PolicyObfuscate {
			parts = append(parts, "?")
			continue
		}
		parts = append(parts, renderArg(arg))
	}
	return strings.Join(parts, " ")
}

// renderArg 渲染单个参数。
func renderArg(arg any) string {
	switch v := arg.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
