// Package router 提供 HTTP 路由注册
// 本文件定义 WebSocket 相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes 注册 WebSocket 相关路由（需要认证）
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	// WebSocket 连接入口
	// 浏览器的 WebSocket API 无法自定义请求头，token 改由查询参数携带
	// 请求示例: ws://host:port/wss?other_user=alice&token=xxx
	rg.GET("/wss", rt.handlers.Ws.Connect)
}
