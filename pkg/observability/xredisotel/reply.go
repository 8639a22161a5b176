package xredisotel

import (
	"github.com/redis/go-redis/v9"
)

// =============================================================================
// 回复值提取
// =============================================================================

// replyValue 把 go-redis 命令的执行结果转成大小计算用的回复值。
//
// 命令级失败（包括 redis.Nil 的键不存在）以 error 值原样返回，
// ByteSize 对 error 计 0，与"错误以数据表示、不计大小"的口径一致。
// 未覆盖的命令类型返回 nil（计 0），宁可少计不误计。
func replyValue(cmd redis.Cmder) any {
	if err := cmd.Err(); err != nil {
		return err
	}

	switch c := cmd.(type) {
	case *redis.Cmd:
		return c.Val()
	case *redis.StringCmd:
		return c.Val()
	case *redis.StatusCmd:
		return c.Val()
	case *redis.IntCmd:
		return c.Val()
	case *redis.FloatCmd:
		return c.Val()
	case *redis.BoolCmd:
		if c.Val() {
			return 1
		}
		return 0
	case *redis.SliceCmd:
		return c.Val()
	case *redis.StringSliceCmd:
		return c.Val()
	case *redis.IntSliceCmd:
		vals := c.Val()
		seq := make([]any, len(vals))
		for i, v := range vals {
			seq[i] = v
		}
		return seq
	case *redis.FloatSliceCmd:
		vals := c.Val()
		seq := make([]any, len(vals))
		for i, v := range vals {
			seq[i] = v
		}
		return seq
	default:
		return nil
	}
}

// pipelineReply 收集与批次位置对齐的回复序列。
func pipelineReply(cmds []redis.Cmder) []any {
	reply := make([]any, len(cmds))
	for i, cmd := range cmds {
		reply[i] = replyValue(cmd)
	}
	return reply
}
