// Package redis 提供 Redis 缓存操作的封装
// 本文件包含异步缓存任务的 Worker Pool
package redis

import (
	"go.uber.org/zap"
)

// SubmitTask 提交异步缓存任务（通用入口）
// 使用示例:
//
//	cache.SubmitTask(func() {
//	    _ = cache.Del(context.Background(), "unread_count_"+username)
//	})
func (c *redisCache) SubmitTask(action func()) {
	select {
	case c.taskChan <- action:
		// 成功放入
	default:
		// 降级：同步执行
		zap.L().Warn("Redis cache task channel full, executing synchronously")
		action()
	}
}

// startWorker 启动单个 Worker 消费循环
func (c *redisCache) startWorker() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("Redis Worker panic", zap.Any("recover", r))
			go c.startWorker() // 重启
		}
	}()

	for task := range c.taskChan {
		if task != nil {
			task()
		}
	}
}
