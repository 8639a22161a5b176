package xredisotel

import "errors"

// =============================================================================
// Hook 相关错误
// =============================================================================

var (
	// ErrNilClient 表示传入的客户端为 nil。
	ErrNilClient = errors.New("xredisotel: nil client")

	// ErrInvalidPolicy 表示语句渲染策略不在 omit/obfuscate/raw 之内。
	// 这是一个配置错误，应该在开发阶段修复，不应被静默忽略。
	ErrInvalidPolicy = errors.New("xredisotel: invalid render policy")
)
