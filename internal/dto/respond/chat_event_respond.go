package respond

// ChatEventRespond 聊天事件 (WebSocket 出站)
// 按 Type 区分负载字段，未用到的字段在 JSON 中省略
// 使用位置:
//   - internal/service/chat/gateway.go
type ChatEventRespond struct {
	Type     string           `json:"type"`
	Message  *MessageRespond  `json:"message,omitempty"`  // new_message
	Messages []MessageRespond `json:"messages,omitempty"` // message_thread
	Username string           `json:"username,omitempty"` // user_online / user_offline / new_message_received
	Users    []string         `json:"users,omitempty"`    // online_users
	Msg      string           `json:"msg,omitempty"`      // error
	Code     int              `json:"code,omitempty"`     // error
}

// 出站事件类型
const (
	EventMessageThread      = "message_thread"
	EventNewMessage         = "new_message"
	EventNewMessageReceived = "new_message_received"
	EventUserOnline         = "user_online"
	EventUserOffline        = "user_offline"
	EventOnlineUsers        = "online_users"
	EventError              = "error"
)
