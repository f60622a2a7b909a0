// Package redis 提供 Redis 缓存操作的封装
// 本文件包含 Set（集合）类型的操作，用于在线用户名册的镜像
package redis

import (
	"context"

	"heartlink_server/pkg/errorx"
)

// SAdd 向集合添加一个或多个成员
// 集合特性：成员唯一，重复添加不会报错但不会增加成员
func (c *redisCache) SAdd(ctx context.Context, key string, members ...interface{}) error {
	if err := c.client.SAdd(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis sadd key %s", key)
	}
	return nil
}

// SRem 从集合移除一个或多个成员
func (c *redisCache) SRem(ctx context.Context, key string, members ...interface{}) error {
	if err := c.client.SRem(ctx, key, members...).Err(); err != nil {
		return errorx.Wrapf(err, errorx.CodeCacheError, "redis srem key %s", key)
	}
	return nil
}

// SMembers 获取集合中的所有成员
func (c *redisCache) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := c.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "redis smembers key %s", key)
	}
	return members, nil
}
