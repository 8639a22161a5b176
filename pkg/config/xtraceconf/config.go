package xtraceconf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/omeyang/rediskit/pkg/observability/xredisotel"
)

// =============================================================================
// 格式
// =============================================================================

// Format 表示配置文件格式。
type Format string

const (
	// FormatYAML YAML 格式。
	FormatYAML Format = "yaml"
	// FormatJSON JSON 格式。
	FormatJSON Format = "json"
)

// detectFormat 根据文件扩展名检测格式。
func detectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// =============================================================================
// 配置结构
// =============================================================================

// Config 描述 Redis 埋点的文件化配置。
// 字段与 xredisotel 的选项一一对应，零值之外的默认值见 defaultConfig。
type Config struct {
	// OmitStatement 完全不渲染语句。优先级高于 ObfuscateStatement。
	OmitStatement bool `koanf:"omit_statement"`

	// ObfuscateStatement 渲染语句但脱敏参数。默认为 true。
	// 两个开关都关闭时按原样渲染（raw）。
	ObfuscateStatement bool `koanf:"obfuscate_statement"`

	// RecordValueSize 是否统计发送/返回值的字节大小。
	RecordValueSize bool `koanf:"record_value_size"`

	// PeerService 下游服务标签，非空时写入 peer.service。
	PeerService string `koanf:"peer_service"`

	// TraceRootSpans 无上游 trace 上下文时是否仍然埋点。默认为 true。
	TraceRootSpans bool `koanf:"trace_root_spans"`

	// SentOps 发送方向统计的操作集合。默认为 ["SET"]。
	SentOps []string `koanf:"sent_ops"`

	// RetrievedOps 返回方向统计的操作集合。默认为 ["GET", "MGET"]。
	RetrievedOps []string `koanf:"retrieved_ops"`

	// MaxStatementLength 语句属性最大字符数。默认为 500。
	MaxStatementLength int `koanf:"max_statement_length"`

	// Attributes 附加到每个 span 的静态属性。
	Attributes map[string]string `koanf:"attributes"`
}

// defaultConfig 返回默认配置，与 xredisotel 的默认选项一致。
func defaultConfig() Config {
	return Config{
		ObfuscateStatement: true,
		TraceRootSpans:     true,
		SentOps:            []string{"SET"},
		RetrievedOps:       []string{"GET", "MGET"},
		MaxStatementLength: 500,
	}
}

// =============================================================================
// 加载
// =============================================================================

// Load 从文件加载配置。根据扩展名自动检测格式（.yaml/.yml 或 .json）。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, ErrEmptyPath
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	return LoadBytes(data, format)
}

// LoadBytes 从字节数据加载配置，需要显式指定格式。
// 空数据返回默认配置，与读取空文件的行为一致。
func LoadBytes(data []byte, format Format) (*Config, error) {
	var parser koanf.Parser
	switch format {
	case FormatYAML:
		parser = yaml.Parser()
	case FormatJSON:
		parser = json.Parser()
	default:
		return nil, ErrUnsupportedFormat
	}

	cfg := defaultConfig()
	if len(data) == 0 {
		return &cfg, nil
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	// 反序列化到带默认值的结构体上，缺失的键保留默认值
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnmarshalFailed, err)
	}
	return &cfg, nil
}

// =============================================================================
// 选项映射
// =============================================================================

// Policy 把两个语句开关折算为渲染策略。
// omit 优先于 obfuscate，两者都关闭时按原样渲染。
func (c *Config) Policy() xredisotel.RenderPolicy {
	switch {
	case c.OmitStatement:
		return xredisotel.PolicyOmit
	case c.ObfuscateStatement:
		return xredisotel.PolicyObfuscate
	default:
		return xredisotel.PolicyRaw
	}
}

// Options 把配置转换为 xredisotel 的选项序列。
func (c *Config) Options() []xredisotel.Option {
	opts := []xredisotel.Option{
		xredisotel.WithRenderPolicy(c.Policy()),
		xredisotel.WithValueSizeRecording(c.RecordValueSize),
		xredisotel.WithTraceRootSpans(c.TraceRootSpans),
		xredisotel.WithMaxStatementLength(c.MaxStatementLength),
	}
	if c.PeerService != "" {
		opts = append(opts, xredisotel.WithPeerService(c.PeerService))
	}
	if len(c.SentOps) > 0 {
		opts = append(opts, xredisotel.WithSentOps(c.SentOps...))
	}
	if len(c.RetrievedOps) > 0 {
		opts = append(opts, xredisotel.WithRetrievedOps(c.RetrievedOps...))
	}
	if len(c.Attributes) > 0 {
		opts = append(opts, xredisotel.WithStaticAttributes(c.Attributes))
	}
	return opts
}
