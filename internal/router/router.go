// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"heartlink_server/internal/handler"
	"heartlink_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
// 持有 Handler 聚合实例，按模块分文件注册路由
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
// 所有业务路由都在 JWT 认证组下，身份由中间件写入上下文
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	authed := r.Group("/", middleware.JWTAuth())
	{
		rt.RegisterMessageRoutes(authed)   // 消息路由
		rt.RegisterWebSocketRoutes(authed) // WebSocket 路由
	}
}
