package request

// GetMessageListRequest 分页获取消息列表请求
// 使用位置:
//   - internal/handler/message_handler.go: GetMessageList
type GetMessageListRequest struct {
	Container string `json:"container" form:"container" binding:"omitempty,oneof=Inbox Outbox Unread"`
	Page      int    `json:"page" form:"page" binding:"omitempty,min=1"`
	PageSize  int    `json:"pageSize" form:"pageSize" binding:"omitempty,min=1"`
}
