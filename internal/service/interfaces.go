// Package service 定义业务层接口和聚合结构
// Handler 与 Gateway 通过接口依赖业务逻辑，便于注入与测试
package service

import (
	"heartlink_server/internal/dto/respond"
)

// ThreadService 消息会话业务接口
type ThreadService interface {
	// GetMessagesForUser 按容器分页查询消息（Inbox/Outbox/Unread）
	GetMessagesForUser(username, container string, page, pageSize int) (*respond.PagedMessagesRespond, error)
	// GetMessageThread 获取双人完整消息记录（升序）
	// 副作用：发给 currentUsername 的未读消息会被标记已读并在返回前提交
	GetMessageThread(currentUsername, otherUsername string) ([]respond.MessageRespond, error)
	// DeleteMessage 删除 username 一侧的消息
	// 若对方一侧已删除，则整条消息物理删除
	DeleteMessage(username string, messageId int64) error
	// GetUnreadCount 获取未读消息数（带缓存）
	GetUnreadCount(username string) (int64, error)
	// InvalidateUnreadCount 使未读数缓存失效（新消息送达时调用）
	InvalidateUnreadCount(username string)
}
