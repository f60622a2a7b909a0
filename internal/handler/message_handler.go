// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
// 当前用户身份一律取自 JWT 中间件写入的上下文，不信任请求参数
package handler

import (
	"heartlink_server/internal/dto/request"
	"heartlink_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	threadSvc service.ThreadService
}

// NewMessageHandler 创建消息处理器
func NewMessageHandler(threadSvc service.ThreadService) *MessageHandler {
	return &MessageHandler{threadSvc: threadSvc}
}

// GetMessageList 按容器分页获取消息列表
// GET /message/getMessageList?container=Inbox&page=1&pageSize=10
// container 可选 Inbox/Outbox/Unread，缺省为 Unread
func (h *MessageHandler) GetMessageList(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	data, err := h.threadSvc.GetMessagesForUser(username, req.Container, req.Page, req.PageSize)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessageThread 获取与指定用户的完整消息记录
// GET /message/getMessageThread?other_username=xxx
// 副作用：对方发来的未读消息会被标记为已读
func (h *MessageHandler) GetMessageThread(c *gin.Context) {
	var req request.GetMessageThreadRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	data, err := h.threadSvc.GetMessageThread(username, req.OtherUsername)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage 删除消息（只删自己一侧）
// POST /message/deleteMessage
// 双方都删除后消息物理删除，不可恢复
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	var req request.DeleteMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	username := c.GetString("username")
	if err := h.threadSvc.DeleteMessage(username, req.MessageId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// GetUnreadCount 获取当前用户的未读消息数
// GET /message/getUnreadCount
func (h *MessageHandler) GetUnreadCount(c *gin.Context) {
	username := c.GetString("username")
	count, err := h.threadSvc.GetUnreadCount(username)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"unread_count": count})
}
