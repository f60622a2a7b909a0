// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接相关的 API 请求
package handler

import (
	"net/http"

	"heartlink_server/internal/service/chat"
	"heartlink_server/pkg/errorx"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 接入处理器
type WsHandler struct {
	gateway *chat.Gateway
}

// NewWsHandler 创建 WebSocket 处理器
func NewWsHandler(gateway *chat.Gateway) *WsHandler {
	return &WsHandler{gateway: gateway}
}

// Connect WebSocket 连接入口（升级 HTTP 连接为 WebSocket）
// GET /wss?other_user=xxx&token=xxx
// 查询参数: other_user - 要建立会话的对方用户名
// 功能:
//   - 将 HTTP 连接升级为 WebSocket 连接
//   - 加入双人会话房间并推送完整消息记录
//   - 开始监听消息收发
func (h *WsHandler) Connect(c *gin.Context) {
	otherUser := c.Query("other_user")
	if otherUser == "" {
		zap.L().Error("other_user获取失败")
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeInvalidParam,
			"msg":  "other_user获取失败",
		})
		return
	}
	username := c.GetString("username")
	if err := h.gateway.Connect(c.Writer, c.Request, username, otherUser); err != nil {
		// 升级失败时响应尚未接管，仍可按普通 HTTP 错误返回
		HandleError(c, err)
	}
}
