package request

// ChatEventRequest 聊天事件 (WebSocket 入站)
// SenderUsername 和 ConnId 由服务端在读协程里用连接身份覆写，
// 客户端传入的同名字段不可信、会被忽略
// 使用位置:
//   - internal/service/chat/client.go: Read
//   - internal/service/chat/gateway.go: HandleEvent
type ChatEventRequest struct {
	Type              string `json:"type" binding:"required"` // 目前仅 "send_message"
	RecipientUsername string `json:"recipient_username"`
	Content           string `json:"content"`
	SenderUsername    string `json:"sender_username"`
	ConnId            string `json:"conn_id"`
}

// 入站事件类型
const (
	EventSendMessage = "send_message"
)
