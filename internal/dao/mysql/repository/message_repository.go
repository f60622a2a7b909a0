package repository

import (
	"time"

	"heartlink_server/internal/model"
	"heartlink_server/pkg/enum/message/container_enum"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建消息 Repository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

// GetMessage 根据 ID 查找消息
// 双删后的消息已被物理删除，此处自然返回 CodeNotFound
func (r *messageRepository) GetMessage(id int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("id = ?", id).First(&message).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询消息 id=%d", id)
	}
	return &message, nil
}

// FindThread 按两个用户名查找双向消息记录（升序）
// 只过滤 currentUsername 一侧的软删除标志：
// 我发出的看 sender_deleted，我收到的看 recipient_deleted
func (r *messageRepository) FindThread(currentUsername, otherUsername string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where(
		"(recipient_username = ? AND sender_username = ? AND recipient_deleted = false)"+
			" OR (recipient_username = ? AND sender_username = ? AND sender_deleted = false)",
		currentUsername, otherUsername, otherUsername, currentUsername,
	).Order("sent_at ASC, id ASC").Find(&messages).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "查询消息记录 user1=%s user2=%s", currentUsername, otherUsername)
	}
	return messages, nil
}

// containerQuery 按容器返回对应的过滤谓词
func (r *messageRepository) containerQuery(username, container string) *gorm.DB {
	switch container {
	case container_enum.Inbox:
		return r.db.Model(&model.Message{}).
			Where("recipient_username = ? AND recipient_deleted = false", username)
	case container_enum.Outbox:
		return r.db.Model(&model.Message{}).
			Where("sender_username = ? AND sender_deleted = false", username)
	default: // Unread
		return r.db.Model(&model.Message{}).
			Where("recipient_username = ? AND recipient_deleted = false AND read_at IS NULL", username)
	}
}

// FindForUser 按容器谓词分页查找消息
// 排序：sent_at 降序；同一时刻按 id 升序，保持插入顺序稳定
// 超出总页数的页码返回空列表而不是错误
func (r *messageRepository) FindForUser(username, container string, page, pageSize int) ([]model.Message, int64, error) {
	query := r.containerQuery(username, container)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBErrorf(err, "统计消息 user=%s container=%s", username, container)
	}

	var messages []model.Message
	offset := (page - 1) * pageSize
	err := query.Order("sent_at DESC, id ASC").
		Limit(pageSize).Offset(offset).
		Find(&messages).Error
	if err != nil {
		return nil, 0, wrapDBErrorf(err, "查询消息 user=%s container=%s", username, container)
	}
	return messages, total, nil
}

// CountUnread 统计用户未读消息数
func (r *messageRepository) CountUnread(username string) (int64, error) {
	var total int64
	err := r.containerQuery(username, container_enum.Unread).Count(&total).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "统计未读消息 user=%s", username)
	}
	return total, nil
}

// NewStore 创建消息写入工作单元
func (r *messageRepository) NewStore() MessageStore {
	return &messageStore{db: r.db}
}

// ==================== 工作单元实现 ====================

// messageStore 基于 GORM 事务的工作单元
// 每个逻辑操作创建一个实例，不跨 goroutine 共享
type messageStore struct {
	db      *gorm.DB
	pending []func(tx *gorm.DB) (int64, error)
}

// AddMessage 暂存一条新消息
func (s *messageStore) AddMessage(message *model.Message) {
	s.pending = append(s.pending, func(tx *gorm.DB) (int64, error) {
		res := tx.Create(message)
		return res.RowsAffected, res.Error
	})
}

// DeleteMessage 暂存物理删除
// 按主键删除，重试时行已不存在也不报错，保证 purge 幂等
func (s *messageStore) DeleteMessage(message *model.Message) {
	id := message.Id
	s.pending = append(s.pending, func(tx *gorm.DB) (int64, error) {
		res := tx.Where("id = ?", id).Delete(&model.Message{})
		return res.RowsAffected, res.Error
	})
}

// MarkRead 暂存批量已读时间戳
// 只更新 read_at 仍为空的行，已读时间至多设置一次
func (s *messageStore) MarkRead(ids []int64, readAt time.Time) {
	if len(ids) == 0 {
		return
	}
	batch := make([]int64, len(ids))
	copy(batch, ids)
	s.pending = append(s.pending, func(tx *gorm.DB) (int64, error) {
		res := tx.Model(&model.Message{}).
			Where("id IN ? AND read_at IS NULL", batch).
			Update("read_at", readAt)
		return res.RowsAffected, res.Error
	})
}

// UpdateDeleteFlags 暂存单侧删除标志更新
func (s *messageStore) UpdateDeleteFlags(message *model.Message) {
	id := message.Id
	senderDeleted := message.SenderDeleted
	recipientDeleted := message.RecipientDeleted
	s.pending = append(s.pending, func(tx *gorm.DB) (int64, error) {
		res := tx.Model(&model.Message{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"sender_deleted":    senderDeleted,
				"recipient_deleted": recipientDeleted,
			})
		return res.RowsAffected, res.Error
	})
}

// SaveAll 在单个事务中提交所有暂存变更
// 要么全部生效，要么全部回滚；提交前的所有暂存对外不可见
func (s *messageStore) SaveAll() (bool, error) {
	if len(s.pending) == 0 {
		return false, nil
	}
	var affected int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, op := range s.pending {
			rows, err := op(tx)
			if err != nil {
				return err
			}
			affected += rows
		}
		return nil
	})
	s.pending = nil
	if err != nil {
		return false, wrapDBError(err, "提交消息变更")
	}
	return affected > 0, nil
}
