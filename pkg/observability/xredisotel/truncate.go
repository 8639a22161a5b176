package xredisotel

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// 字符串安全变换
// =============================================================================

// Truncate 截取最多 max 个字符的前缀。
// 按字符（rune）计数而非字节，不会把多字节字符从中间切断。
// max <= 0 时返回空字符串。
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		// 字节数不超过 max 则字符数必然不超过
		return s
	}

	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}

// SafeEncode 保证输出是合法的 UTF-8。
// Redis 的 key/value 可以是任意二进制，渲染结果可能混入非法字节序列，
// 而属性传输层要求字符串编码合法。非法字节替换为 U+FFFD。
func SafeEncode(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, string(utf8.RuneError))
}
