// Package thread 实现消息会话的业务逻辑
// 负责分页收发件箱查询、双人消息记录的读取与已读标记、单侧删除与双删清理
package thread

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"go.uber.org/zap"

	"heartlink_server/internal/dao/mysql/repository"
	myredis "heartlink_server/internal/dao/redis"
	"heartlink_server/internal/dto/respond"
	"heartlink_server/pkg/constants"
	"heartlink_server/pkg/enum/message/container_enum"
	"heartlink_server/pkg/errorx"
)

// Service 消息会话业务逻辑实现
type Service struct {
	messageRepo repository.MessageRepository
	cache       myredis.AsyncCacheService // 可为 nil，缓存全部降级为直查
}

// NewService 构造函数
func NewService(messageRepo repository.MessageRepository, cache myredis.AsyncCacheService) *Service {
	return &Service{messageRepo: messageRepo, cache: cache}
}

// normalizePaging 规范分页参数
func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = constants.DEFAULT_PAGE_SIZE
	}
	if pageSize > constants.MAX_PAGE_SIZE {
		pageSize = constants.MAX_PAGE_SIZE
	}
	return page, pageSize
}

// GetMessagesForUser 按容器分页查询消息
// container 为空或未知时按 Unread 处理（与收件箱一致但只取未读）
func (s *Service) GetMessagesForUser(username, container string, page, pageSize int) (*respond.PagedMessagesRespond, error) {
	page, pageSize = normalizePaging(page, pageSize)
	if container != container_enum.Inbox && container != container_enum.Outbox {
		container = container_enum.Unread
	}

	messages, total, err := s.messageRepo.FindForUser(username, container, page, pageSize)
	if err != nil {
		zap.L().Error("find messages for user error", zap.String("username", username), zap.Error(err))
		return nil, err
	}

	items := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		items = append(items, respond.NewMessageRespond(&messages[i]))
	}
	return respond.NewPagedMessagesRespond(items, page, pageSize, total), nil
}

// GetMessageThread 获取双人完整消息记录（升序）
// 副作用：所有发给 currentUsername 且未读的消息被打上当前时间的已读戳，
// 并在返回前一次性提交——要么全部标记成功，要么全部不标记
// 注意参数顺序：只有第一个参数（调用者）收到的消息会被标记已读
func (s *Service) GetMessageThread(currentUsername, otherUsername string) ([]respond.MessageRespond, error) {
	messages, err := s.messageRepo.FindThread(currentUsername, otherUsername)
	if err != nil {
		zap.L().Error("find thread error", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	var unreadIds []int64
	for i := range messages {
		if !messages[i].ReadAt.Valid && messages[i].RecipientUsername == currentUsername {
			unreadIds = append(unreadIds, messages[i].Id)
		}
	}

	if len(unreadIds) > 0 {
		store := s.messageRepo.NewStore()
		store.MarkRead(unreadIds, now)
		if _, err := store.SaveAll(); err != nil {
			zap.L().Error("mark thread read error", zap.Error(err))
			return nil, err
		}
		// 提交成功后同步内存中的副本，返回的记录要带上刚打的已读戳
		for i := range messages {
			if !messages[i].ReadAt.Valid && messages[i].RecipientUsername == currentUsername {
				messages[i].ReadAt = sql.NullTime{Time: now, Valid: true}
			}
		}
		s.invalidateUnreadCount(currentUsername)
	}

	rspList := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		rspList = append(rspList, respond.NewMessageRespond(&messages[i]))
	}
	return rspList, nil
}

// DeleteMessage 删除 username 一侧的消息
// 状态机：双侧可见 -> 单侧删除 -> 双侧都删时整行物理删除（purge），不可逆
func (s *Service) DeleteMessage(username string, messageId int64) error {
	message, err := s.messageRepo.GetMessage(messageId)
	if err != nil {
		return err
	}

	if message.SenderUsername != username && message.RecipientUsername != username {
		return errorx.New(errorx.CodeInvalidOperation, "不能删除他人的消息")
	}

	if message.SenderUsername == username {
		message.SenderDeleted = true
	}
	if message.RecipientUsername == username {
		message.RecipientDeleted = true
	}

	store := s.messageRepo.NewStore()
	if message.SenderDeleted && message.RecipientDeleted {
		// 双方都已删除，物理清除；按主键删除天然幂等
		store.DeleteMessage(message)
	} else {
		store.UpdateDeleteFlags(message)
	}
	if _, err := store.SaveAll(); err != nil {
		zap.L().Error("delete message error", zap.Int64("id", messageId), zap.Error(err))
		return err
	}

	// 接收侧删除可能影响未读数
	if message.RecipientUsername == username {
		s.invalidateUnreadCount(username)
	}
	return nil
}

// GetUnreadCount 获取未读消息数
// 优先读缓存，未命中则回源数据库并异步回填
func (s *Service) GetUnreadCount(username string) (int64, error) {
	cacheKey := constants.UNREAD_COUNT_KEY + username
	if s.cache != nil {
		if cached, err := s.cache.GetOrError(context.Background(), cacheKey); err == nil {
			if count, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return count, nil
			}
		}
	}

	count, err := s.messageRepo.CountUnread(username)
	if err != nil {
		zap.L().Error("count unread error", zap.String("username", username), zap.Error(err))
		return 0, err
	}

	if s.cache != nil {
		s.cache.SubmitTask(func() {
			if err := s.cache.Set(context.Background(), cacheKey,
				strconv.FormatInt(count, 10), time.Duration(constants.REDIS_TIMEOUT)*time.Minute); err != nil {
				zap.L().Error("set unread count cache error", zap.Error(err))
			}
		})
	}
	return count, nil
}

// InvalidateUnreadCount 使未读数缓存失效
// 新消息送达时由 Gateway 调用
func (s *Service) InvalidateUnreadCount(username string) {
	s.invalidateUnreadCount(username)
}

func (s *Service) invalidateUnreadCount(username string) {
	if s.cache == nil {
		return
	}
	key := constants.UNREAD_COUNT_KEY + username
	s.cache.SubmitTask(func() {
		if err := s.cache.Del(context.Background(), key); err != nil {
			zap.L().Error("del unread count cache error", zap.Error(err))
		}
	})
}
