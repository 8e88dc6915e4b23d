package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss 表示键不存在或已过期
var ErrMiss = errors.New("cache: miss")

// Store 读缓存后端协议：get / 带TTL的set / delete / 原子自增。
// 具体后端（Redis或进程内内存）都通过该接口注入，便于测试时确定性重置。
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
}
