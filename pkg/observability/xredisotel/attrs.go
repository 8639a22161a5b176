package xredisotel

import (
	"net"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// =============================================================================
// 属性键（OTel 数据库客户端语义约定）
// =============================================================================

const (
	attrDBSystem       = "db.system"
	attrDBStatement    = "db.statement"
	attrDBIndex        = "db.redis.database_index"
	attrNetPeerName    = "net.peer.name"
	attrNetPeerPort    = "net.peer.port"
	attrPeerService    = "peer.service"
	attrSentBytes      = "db.redis.sent.bytes"
	attrRetrievedBytes = "db.redis.retrieved.bytes"
	attrPipelineLength = "db.redis.pipeline_length"
	dbSystemRedis      = "redis"
	spanNamePipelined  = "PIPELINED"
)

// =============================================================================
// 连接信息
// =============================================================================

// ConnInfo 描述客户端连接目标，来源于 redis.Options。
type ConnInfo struct {
	// Host 对端主机名或地址。
	Host string
	// Port 对端端口。
	Port int
	// DB 数据库索引。0 视为默认库，不写入属性。
	DB int
}

// connInfoFromOptions 从 go-redis 配置解析连接信息。
// Addr 不含端口或端口非法时只保留主机部分。
func connInfoFromOptions(opt *redis.Options) ConnInfo {
	info := ConnInfo{DB: opt.DB}

	host, portText, err := net.SplitHostPort(opt.Addr)
	if err != nil {
		info.Host = opt.Addr
		return info
	}
	info.Host = host
	if port, err := strconv.Atoi(portText); err == nil {
		info.Port = port
	}
	return info
}

// =============================================================================
// 属性组装
// =============================================================================

// BuildAttributes 组装批次对应的 span 属性集。
//
// 给定相同输入产出相同属性，无副作用：
//   - 恒定写入：db.system、对端主机与端口
//   - 条件写入：非零数据库索引、peer.service、配置的静态属性
//   - Policy 非 omit 时渲染语句，完整渲染结果先截断到配置的字符数上限、
//     再做编码安全化，然后写入 db.statement
//   - 开启大小统计时按发送操作集合写入 db.redis.sent.bytes
func BuildAttributes(batch Batch, conn ConnInfo, opts *Options) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 8+len(opts.StaticAttributes))
	attrs = append(attrs,
		attribute.String(attrDBSystem, dbSystemRedis),
		attribute.String(attrNetPeerName, conn.Host),
		attribute.Int(attrNetPeerPort, conn.Port),
	)

	if conn.DB != 0 {
		attrs = append(attrs, attribute.Int(attrDBIndex, conn.DB))
	}
	if opts.PeerService != "" {
		attrs = append(attrs, attribute.String(attrPeerService, opts.PeerService))
	}

	// map 遍历顺序随机，排序保证属性序列确定，重复 key 由后写入者生效
	if len(opts.StaticAttributes) > 0 {
		keys := make([]string, 0, len(opts.StaticAttributes))
		for k := range opts.StaticAttributes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, attribute.String(k, opts.StaticAttributes[k]))
		}
	}

	if opts.Policy != PolicyOmit {
		statement := RenderStatement(batch, opts.Policy)
		statement = SafeEncode(Truncate(statement, opts.MaxStatementLength))
		attrs = append(attrs, attribute.String(attrDBStatement, statement))
	}

	if opts.RecordValueSize {
		attrs = append(attrs, attribute.Int(attrSentBytes, SentSize(batch, opts.SentOps)))
	}

	return attrs
}
