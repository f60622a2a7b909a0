// Package redis 提供 Redis 缓存操作的封装
// 本文件定义缓存服务接口，Service 层通过接口依赖缓存，便于注入与测试
package redis

import (
	"context"
	"time"
)

// AsyncCacheService 缓存服务接口
// 同步读写 + 异步任务提交，具体实现见 redisCache
type AsyncCacheService interface {
	// GetOrError 获取键对应的值，键不存在返回 CodeNotFound 错误
	GetOrError(ctx context.Context, key string) (string, error)
	// Set 设置键值对并指定过期时间
	Set(ctx context.Context, key string, value string, timeout time.Duration) error
	// Del 删除一个或多个键
	Del(ctx context.Context, keys ...string) error
	// SAdd 向集合添加成员
	SAdd(ctx context.Context, key string, members ...interface{}) error
	// SRem 从集合移除成员
	SRem(ctx context.Context, key string, members ...interface{}) error
	// SMembers 获取集合所有成员
	SMembers(ctx context.Context, key string) ([]string, error)
	// SubmitTask 提交异步缓存任务，队列满时降级为同步执行
	SubmitTask(action func())
}
