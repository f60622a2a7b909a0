// Package repository 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的文件中
package repository

import (
	"time"

	"heartlink_server/internal/model"

	"gorm.io/gorm"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
// 本服务只读取用户昵称/头像，资料维护由独立服务负责
type UserRepository interface {
	// FindByUsername 根据用户名查找用户
	FindByUsername(username string) (*model.UserInfo, error)
	// Create 创建新用户（仅测试与初始化数据使用）
	Create(user *model.UserInfo) error
}

// MessageRepository 消息数据访问接口（读侧）
// 写操作统一走 NewStore 创建的工作单元，SaveAll 是唯一的落库边界
type MessageRepository interface {
	// GetMessage 根据 ID 查找消息，已 purge 的消息不可达
	GetMessage(id int64) (*model.Message, error)
	// FindThread 查找两个用户之间的完整双向消息记录，按发送时间升序
	// 过滤掉 currentUsername 一侧已软删除的消息
	FindThread(currentUsername, otherUsername string) ([]model.Message, error)
	// FindForUser 按容器谓词分页查找消息，按发送时间降序（同时间按插入顺序稳定）
	// 返回当前页消息和总条数
	FindForUser(username, container string, page, pageSize int) ([]model.Message, int64, error)
	// CountUnread 统计用户未读消息数
	CountUnread(username string) (int64, error)
	// NewStore 创建一个消息写入工作单元
	NewStore() MessageStore
}

// MessageStore 消息写入工作单元
// Add/Delete/MarkRead/UpdateDeleteFlags 只做暂存，SaveAll 之前对外不可见
// SaveAll 在单个事务中原子提交所有暂存操作，返回是否有行受影响
type MessageStore interface {
	// AddMessage 暂存一条新消息
	AddMessage(message *model.Message)
	// DeleteMessage 暂存物理删除
	// 调用方必须已确认双侧删除标志均为 true，否则残留孤儿行
	DeleteMessage(message *model.Message)
	// MarkRead 暂存批量已读时间戳
	MarkRead(ids []int64, readAt time.Time)
	// UpdateDeleteFlags 暂存单侧删除标志更新
	UpdateDeleteFlags(message *model.Message)
	// SaveAll 原子提交所有暂存变更
	SaveAll() (bool, error)
}

// ==================== Repository 聚合 ====================

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db      *gorm.DB
	User    UserRepository
	Message MessageRepository
}

// NewRepositories 创建所有 Repository 实例
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:      db,
		User:    NewUserRepository(db),
		Message: NewMessageRepository(db),
	}
}
