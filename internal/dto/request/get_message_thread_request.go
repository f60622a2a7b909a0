package request

// GetMessageThreadRequest 获取双人消息记录请求
// 使用位置:
//   - internal/handler/message_handler.go: GetMessageThread
type GetMessageThreadRequest struct {
	OtherUsername string `json:"other_username" form:"other_username" binding:"required"`
}
