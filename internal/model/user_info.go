// Package model 定义数据库实体模型
// 本文件定义用户基础信息模型
// 用户资料的增删改查由独立的资料服务负责，本服务只读取昵称/头像用于消息冗余
package model

import (
	"gorm.io/gorm"
)

// UserInfo 用户基础信息模型
type UserInfo struct {
	gorm.Model

	// Username 用户名，全局唯一，由认证层签发的身份标识
	Username string `gorm:"column:username;uniqueIndex;type:varchar(32);not null;comment:用户名"`

	// Nickname 展示昵称
	Nickname string `gorm:"column:nickname;type:varchar(32);not null;comment:昵称"`

	// Avatar 主照片 URL，可为空
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`
}

// TableName 指定表名
func (UserInfo) TableName() string {
	return "user_info"
}
