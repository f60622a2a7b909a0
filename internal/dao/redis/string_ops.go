// Package redis 提供 Redis 缓存操作的封装
// 本文件包含 String 类型的基础操作
package redis

import (
	"context"
	"errors"
	"time"

	"heartlink_server/pkg/errorx"

	"github.com/redis/go-redis/v9"
)

// redisCache AsyncCacheService 的 Redis 实现
type redisCache struct {
	client   *redis.Client
	taskChan chan func()
}

// NewRedisCache 创建缓存服务实例并启动后台 Worker Pool
func NewRedisCache(client *redis.Client, workerNum, bufferSize int) AsyncCacheService {
	c := &redisCache{
		client:   client,
		taskChan: make(chan func(), bufferSize),
	}
	for i := 0; i < workerNum; i++ {
		go c.startWorker()
	}
	return c
}

// GetOrError 获取键对应的值（键不存在视为错误）
// 键不存在时返回 CodeNotFound 错误
func (c *redisCache) GetOrError(ctx context.Context, key string) (string, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errorx.Wrapf(err, errorx.CodeNotFound, "redis key %s not found", key)
		}
		return "", errorx.Wrapf(err, errorx.CodeCacheError, "redis get key %s", key)
	}
	return value, nil
}

// Set 设置键值对并指定过期时间
func (c *redisCache) Set(ctx context.Context, key string, value string, timeout time.Duration) error {
	if err := c.client.Set(ctx, key, value, timeout).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis set key %s", key)
	}
	return nil
}

// Del 删除一个或多个键
func (c *redisCache) Del(ctx context.Context, keys ...string) error {
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis del keys %v", keys)
	}
	return nil
}
