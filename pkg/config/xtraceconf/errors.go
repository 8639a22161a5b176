package xtraceconf

import "errors"

// 配置加载和解析相关错误。
var (
	// ErrEmptyPath 表示配置文件路径为空。
	ErrEmptyPath = errors.New("xtraceconf: empty config path")

	// ErrUnsupportedFormat 表示不支持的配置格式。
	ErrUnsupportedFormat = errors.New("xtraceconf: unsupported config format")

	// ErrLoadFailed 表示配置加载失败。
	ErrLoadFailed = errors.New("xtraceconf: failed to load config")

	// ErrParseFailed 表示配置解析失败。
	ErrParseFailed = errors.New("xtraceconf: failed to parse config")

	// ErrUnmarshalFailed 表示配置反序列化失败。
	ErrUnmarshalFailed = errors.New("xtraceconf: failed to unmarshal config")

	// ErrNilCallback 表示监视回调为 nil。
	ErrNilCallback = errors.New("xtraceconf: nil watch callback")

	// ErrInvalidDebounce 表示防抖时间无效。
	ErrInvalidDebounce = errors.New("xtraceconf: debounce must be positive")
)
