// Package service 定义业务层接口和聚合结构
// 本文件提供 Service 聚合的构造入口（依赖注入）
package service

import (
	"heartlink_server/internal/dao/mysql/repository"
	myredis "heartlink_server/internal/dao/redis"
	"heartlink_server/internal/service/thread"
)

// Services 聚合所有 Service 实例
// 作为依赖注入的入口，Handler 层通过此结构访问业务层
type Services struct {
	Thread ThreadService
}

// NewServices 创建并注入所有 Service 实例
// repos: 数据访问层聚合
// cache: 缓存服务，可为 nil（测试或无 Redis 环境时跳过缓存）
func NewServices(repos *repository.Repositories, cache myredis.AsyncCacheService) *Services {
	return &Services{
		Thread: thread.NewService(repos.Message, cache),
	}
}
