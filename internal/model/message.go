// Package model 定义数据库实体模型
// 本文件定义私信消息模型
package model

import (
	"database/sql"
	"time"
)

// Message 私信消息模型
// 对应数据库 message 表
// 发送者昵称/头像冗余存储，避免每次查询消息时都要关联用户表
//
// 注意：这里刻意不使用 gorm.Model，消息的删除语义由
// SenderDeleted/RecipientDeleted 两个标志承载：
// 单方删除只隐藏自己一侧，双方都删除后整行物理删除（purge），不可恢复
type Message struct {
	// Id 消息唯一标识，雪花算法生成的 int64
	Id int64 `gorm:"column:id;primaryKey;type:bigint;comment:消息雪花ID"`

	// SenderUsername 发送者用户名（上游认证层保证可信）
	SenderUsername string `gorm:"column:sender_username;index;type:varchar(32);not null;comment:发送者用户名"`

	// SenderNickname 发送者昵称，冗余存储
	SenderNickname string `gorm:"column:sender_nickname;type:varchar(32);not null;comment:发送者昵称"`

	// SenderAvatar 发送者头像 URL，可为空
	SenderAvatar string `gorm:"column:sender_avatar;type:varchar(255);comment:发送者头像"`

	// RecipientUsername 接收者用户名
	RecipientUsername string `gorm:"column:recipient_username;index;type:varchar(32);not null;comment:接收者用户名"`

	// RecipientNickname 接收者昵称，冗余存储
	RecipientNickname string `gorm:"column:recipient_nickname;type:varchar(32);not null;comment:接收者昵称"`

	// RecipientAvatar 接收者头像 URL，可为空
	RecipientAvatar string `gorm:"column:recipient_avatar;type:varchar(255);comment:接收者头像"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// SentAt 发送时间，创建时写入后不再变更
	SentAt time.Time `gorm:"column:sent_at;index;not null;comment:发送时间"`

	// ReadAt 已读时间
	// 为 NULL 表示未读；只会被接收者的读取动作设置一次
	ReadAt sql.NullTime `gorm:"column:read_at;comment:已读时间"`

	// SenderDeleted 发送者侧删除标志
	// 为 true 时该消息对发送者的发件箱不可见
	SenderDeleted bool `gorm:"column:sender_deleted;not null;default:false;comment:发送者已删除"`

	// RecipientDeleted 接收者侧删除标志
	// 为 true 时该消息对接收者的收件箱不可见
	RecipientDeleted bool `gorm:"column:recipient_deleted;not null;default:false;comment:接收者已删除"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
