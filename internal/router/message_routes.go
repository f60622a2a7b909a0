// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
// 包括消息列表、消息记录、删除与未读数查询
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	messageGroup := rg.Group("/message")
	{
		messageGroup.GET("/getMessageList", rt.handlers.Message.GetMessageList)     // 按容器分页获取消息列表
		messageGroup.GET("/getMessageThread", rt.handlers.Message.GetMessageThread) // 获取双人消息记录（标记已读）
		messageGroup.POST("/deleteMessage", rt.handlers.Message.DeleteMessage)      // 删除自己一侧的消息
		messageGroup.GET("/getUnreadCount", rt.handlers.Message.GetUnreadCount)     // 获取未读消息数
	}
}
