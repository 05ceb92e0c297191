package logger

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSlowThreshold = SlowThreshold / 2

// 这些命令的值是令牌签名或锁持有者，只输出命令与键
var keyOnlyCommands = map[string]struct{}{
	"set": {}, "setnx": {}, "eval": {}, "evalsha": {},
}

// RedisLoggerHook 记录出错与慢的命令
type RedisLoggerHook struct{}

func NewRedisLogger() *RedisLoggerHook {
	return &RedisLoggerHook{}
}

func (s *RedisLoggerHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		start := time.Now()
		conn, err := next(ctx, network, addr)
		if err != nil {
			log.ErrorContext(ctx, "Redis Dial Error", "addr", addr, "latency", time.Since(start), "err", err)
		}
		return conn, err
	}
}

func (s *RedisLoggerHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		reported := err
		if ignorableRedisError(cmd, err) {
			reported = nil
		}
		report(ctx, "Redis", time.Since(start), reported,
			log.String("command", cmd.Name()),
			log.String("args", redisArgs(cmd)))
		return err
	}
}

func (s *RedisLoggerHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		names := make([]string, len(cmds))
		for i, cmd := range cmds {
			names[i] = cmd.Name()
		}
		report(ctx, "Redis Pipeline", time.Since(start), err,
			log.String("commands", strings.Join(names, ",")))
		return err
	}
}

func report(ctx context.Context, prefix string, elapsed time.Duration, err error, attrs ...any) {
	attrs = append(attrs, log.Duration("latency", elapsed))
	switch {
	case err != nil:
		log.ErrorContext(ctx, prefix+" Error", append(attrs, log.Any("err", err))...)
	case elapsed > redisSlowThreshold:
		log.WarnContext(ctx, prefix+" Slow", attrs...)
	}
}

// ignorableRedisError 键不存在与旧版服务端不支持 CLIENT SETINFO 都不算错误
func ignorableRedisError(cmd redis.Cmder, err error) bool {
	if err == nil || errors.Is(err, redis.Nil) {
		return true
	}
	return cmd.Name() == "client" && strings.Contains(err.Error(), "setinfo")
}

func redisArgs(cmd redis.Cmder) string {
	name := cmd.Name()
	if name == "auth" || name == "hello" {
		return "[PROTECTED]"
	}
	args := cmd.Args()
	if _, ok := keyOnlyCommands[name]; ok && len(args) > 2 {
		args = args[:2]
	}
	return truncate(fmt.Sprint(args))
}
