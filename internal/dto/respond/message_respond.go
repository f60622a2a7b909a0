package respond

import (
	"strconv"

	"heartlink_server/internal/model"
)

// MessageRespond 消息响应
// Id 序列化为字符串，避免 JavaScript 的 int64 精度丢失
// 使用位置:
//   - internal/service/thread/service.go
//   - internal/service/chat/gateway.go
type MessageRespond struct {
	Id                string `json:"id"`
	SenderUsername    string `json:"sender_username"`
	SenderNickname    string `json:"sender_nickname"`
	SenderAvatar      string `json:"sender_avatar"`
	RecipientUsername string `json:"recipient_username"`
	RecipientNickname string `json:"recipient_nickname"`
	RecipientAvatar   string `json:"recipient_avatar"`
	Content           string `json:"content"`
	SentAt            string `json:"sent_at"`
	ReadAt            string `json:"read_at"` // 未读为空字符串
}

// NewMessageRespond 由实体模型构造响应
func NewMessageRespond(m *model.Message) MessageRespond {
	rsp := MessageRespond{
		Id:                strconv.FormatInt(m.Id, 10),
		SenderUsername:    m.SenderUsername,
		SenderNickname:    m.SenderNickname,
		SenderAvatar:      m.SenderAvatar,
		RecipientUsername: m.RecipientUsername,
		RecipientNickname: m.RecipientNickname,
		RecipientAvatar:   m.RecipientAvatar,
		Content:           m.Content,
		SentAt:            m.SentAt.Format("2006-01-02 15:04:05"),
	}
	if m.ReadAt.Valid {
		rsp.ReadAt = m.ReadAt.Time.Format("2006-01-02 15:04:05")
	}
	return rsp
}
