// Package chat 实现实时私信的核心服务层
// gateway.go
// 核心职责：在线状态与投递网关
// 管理 WebSocket 会话的接入/退出、在线广播、消息的实时投递与落库
// 事件经 Broker 单协程消费，同一接收者的事件投递顺序与发布顺序一致
package chat

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"heartlink_server/internal/dao/mysql/repository"
	"heartlink_server/internal/dao/redis"
	"heartlink_server/internal/dto/request"
	"heartlink_server/internal/dto/respond"
	"heartlink_server/internal/model"
	"heartlink_server/internal/service"
	"heartlink_server/pkg/constants"
	"heartlink_server/pkg/errorx"
	"heartlink_server/pkg/util/snowflake"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway 在线状态与投递网关
// 实现 EventHandler 接口，由 Broker 的消费循环回调 HandleEvent
type Gateway struct {
	registry    *ConnRegistry
	presence    *PresenceTracker
	threadSvc   service.ThreadService
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	broker      EventBroker
	cache       redis.AsyncCacheService // 可为 nil，此时跳过在线名单镜像
	clients     sync.Map                // 连接ID -> *UserConn
}

// NewGateway 创建网关
// Broker 依赖网关作为事件处理方，存在环形依赖，需在创建后用 SetBroker 注入
func NewGateway(threadSvc service.ThreadService, repos *repository.Repositories, cache redis.AsyncCacheService) *Gateway {
	return &Gateway{
		registry:    NewConnRegistry(),
		presence:    NewPresenceTracker(),
		threadSvc:   threadSvc,
		userRepo:    repos.User,
		messageRepo: repos.Message,
		cache:       cache,
	}
}

// SetBroker 注入事件代理
func (g *Gateway) SetBroker(broker EventBroker) {
	g.broker = broker
}

// Publish 将入站事件交给代理
func (g *Gateway) Publish(ctx context.Context, msg []byte) error {
	if g.broker == nil {
		return errorx.New(errorx.CodeServerBusy, "事件代理未初始化")
	}
	return g.broker.Publish(ctx, msg)
}

// Connect 接入一条新的 WebSocket 会话
// username 来自认证中间件，otherUsername 是要聊天的对方
// 接入即加入确定性命名的双人房间，并把完整会话记录推给本连接（读取即已读）
func (g *Gateway) Connect(w http.ResponseWriter, r *http.Request, username, otherUsername string) error {
	if username == otherUsername {
		return errorx.New(errorx.CodeInvalidOperation, "不能与自己建立会话")
	}
	if _, err := g.userRepo.FindByUsername(otherUsername); err != nil {
		return errorx.Wrap(err, errorx.CodeNotFound, "对方用户不存在")
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		zap.L().Error("websocket upgrade error", zap.Error(err))
		return errorx.Wrap(err, errorx.CodeServerBusy, "连接升级失败")
	}

	connId := uuid.New().String()
	groupName := GroupName(username, otherUsername)
	g.registry.AddConnection(groupName, &Connection{
		Id:       connId,
		Username: username,
	})

	client := &UserConn{
		Conn:     wsConn,
		ConnId:   connId,
		Username: username,
		SendBack: make(chan []byte, constants.CHANNEL_SIZE),
	}
	g.clients.Store(connId, client)

	// 首条连接上线才广播，多标签页不重复通知
	if g.presence.UserConnected(username, connId) {
		g.broadcast(respond.ChatEventRespond{
			Type:     respond.EventUserOnline,
			Username: username,
		})
		g.mirrorOnline(username, true)
	}

	g.sendEvent(connId, respond.ChatEventRespond{
		Type:  respond.EventOnlineUsers,
		Users: g.presence.GetOnlineUsers(),
	})

	// 推送完整会话记录；发给本人的未读消息在这里被标记已读
	thread, err := g.threadSvc.GetMessageThread(username, otherUsername)
	if err != nil {
		zap.L().Error("load message thread error",
			zap.String("username", username),
			zap.String("other", otherUsername),
			zap.Error(err))
		g.sendError(connId, err)
	} else {
		g.sendEvent(connId, respond.ChatEventRespond{
			Type:     respond.EventMessageThread,
			Messages: thread,
		})
	}

	// SendBack 有缓冲，前面入队的事件会按序由写协程送出
	// 读协程最后启动，保证断开清理时注册表与在线状态都已就绪
	go client.Write()
	go client.Read(g)

	zap.L().Info("ws connected",
		zap.String("conn_id", connId),
		zap.String("username", username),
		zap.String("group", groupName))
	return nil
}

// Disconnect 清理一条会话
// 由读协程的 defer 调用，对未知连接是 no-op，重复调用安全
func (g *Gateway) Disconnect(client *UserConn) {
	conn := g.registry.RemoveConnection(client.ConnId)
	if conn == nil {
		return
	}
	g.clients.Delete(client.ConnId)
	client.closeSend()
	_ = client.Conn.Close()

	// 末条连接断开才广播离线
	if g.presence.UserDisconnected(client.Username, client.ConnId) {
		g.broadcast(respond.ChatEventRespond{
			Type:     respond.EventUserOffline,
			Username: client.Username,
		})
		g.mirrorOnline(client.Username, false)
	}
	zap.L().Info("ws disconnected",
		zap.String("conn_id", client.ConnId),
		zap.String("username", client.Username))
}

// HandleEvent 分发入站事件，由 Broker 的单协程消费循环回调
func (g *Gateway) HandleEvent(req request.ChatEventRequest) {
	switch req.Type {
	case request.EventSendMessage:
		g.handleSendMessage(req)
	default:
		zap.L().Warn("unknown chat event type", zap.String("type", req.Type))
		g.sendError(req.ConnId, errorx.Newf(errorx.CodeInvalidParam, "未知事件类型: %s", req.Type))
	}
}

// handleSendMessage 处理发消息事件
// 接收者正在本会话房间内时，消息创建即已读；否则只发未读提醒并使未读数缓存失效
func (g *Gateway) handleSendMessage(req request.ChatEventRequest) {
	if req.RecipientUsername == req.SenderUsername {
		g.sendError(req.ConnId, errorx.New(errorx.CodeInvalidOperation, "不能给自己发消息"))
		return
	}
	if req.Content == "" {
		g.sendError(req.ConnId, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空"))
		return
	}

	sender, err := g.userRepo.FindByUsername(req.SenderUsername)
	if err != nil {
		g.sendError(req.ConnId, errorx.Wrap(err, errorx.CodeNotFound, "发送者不存在"))
		return
	}
	recipient, err := g.userRepo.FindByUsername(req.RecipientUsername)
	if err != nil {
		g.sendError(req.ConnId, errorx.Wrap(err, errorx.CodeNotFound, "接收者不存在"))
		return
	}

	message := &model.Message{
		Id:                snowflake.GenerateID(),
		SenderUsername:    sender.Username,
		SenderNickname:    sender.Nickname,
		SenderAvatar:      sender.Avatar,
		RecipientUsername: recipient.Username,
		RecipientNickname: recipient.Nickname,
		RecipientAvatar:   recipient.Avatar,
		Content:           req.Content,
		SentAt:            time.Now(),
	}

	groupName := GroupName(sender.Username, recipient.Username)
	group, inRoom := g.registry.GetMessageGroup(groupName)
	recipientInRoom := inRoom && group.HasUser(recipient.Username)
	if recipientInRoom {
		message.ReadAt = sql.NullTime{Time: time.Now(), Valid: true}
	}

	store := g.messageRepo.NewStore()
	store.AddMessage(message)
	if _, err := store.SaveAll(); err != nil {
		zap.L().Error("save message error", zap.Error(err))
		g.sendError(req.ConnId, errorx.Wrap(err, errorx.CodeDBError, "消息保存失败"))
		return
	}

	rsp := respond.NewMessageRespond(message)
	data, err := json.Marshal(respond.ChatEventRespond{
		Type:    respond.EventNewMessage,
		Message: &rsp,
	})
	if err != nil {
		zap.L().Error(err.Error())
		return
	}

	// 房间成员快照收到完整消息
	delivered := make(map[string]bool)
	if group != nil {
		for _, conn := range group.Connections {
			g.send(conn.Id, data)
			delivered[conn.Id] = true
		}
	}
	// 发送者当前连接可能在别的房间里，补发一份回显
	if !delivered[req.ConnId] {
		g.send(req.ConnId, data)
		delivered[req.ConnId] = true
	}

	// 接收者不在房间的连接只收未读提醒，不泄露消息内容
	if !recipientInRoom {
		notice, err := json.Marshal(respond.ChatEventRespond{
			Type:     respond.EventNewMessageReceived,
			Username: sender.Username,
		})
		if err != nil {
			zap.L().Error(err.Error())
			return
		}
		for _, connId := range g.presence.GetConnIdsForUser(recipient.Username) {
			if !delivered[connId] {
				g.send(connId, notice)
			}
		}
		g.threadSvc.InvalidateUnreadCount(recipient.Username)
	}
}

// send 向指定连接投递数据
// 通道满或连接正在关闭时丢弃并记日志，避免阻塞代理的单协程消费循环
func (g *Gateway) send(connId string, data []byte) {
	value, ok := g.clients.Load(connId)
	if !ok {
		return
	}
	client := value.(*UserConn)
	if !client.enqueue(data) {
		zap.L().Warn("send channel full or closing, drop event",
			zap.String("conn_id", connId),
			zap.String("username", client.Username))
	}
}

// sendEvent 序列化事件并投递给指定连接
func (g *Gateway) sendEvent(connId string, event respond.ChatEventRespond) {
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	g.send(connId, data)
}

// sendError 向触发事件的连接回送错误，不影响其他连接
func (g *Gateway) sendError(connId string, err error) {
	if connId == "" {
		return
	}
	g.sendEvent(connId, respond.ChatEventRespond{
		Type: respond.EventError,
		Code: errorx.GetCode(err),
		Msg:  err.Error(),
	})
}

// broadcast 向所有活跃连接广播事件
func (g *Gateway) broadcast(event respond.ChatEventRespond) {
	data, err := json.Marshal(event)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	g.clients.Range(func(key, value interface{}) bool {
		g.send(key.(string), data)
		return true
	})
}

// mirrorOnline 把在线名单异步镜像到 redis 集合，供其他服务查询
// 以内存注册表为准，redis 只是镜像，写失败不影响功能
func (g *Gateway) mirrorOnline(username string, online bool) {
	if g.cache == nil {
		return
	}
	g.cache.SubmitTask(func() {
		ctx, cancel := context.WithTimeout(context.Background(), constants.REDIS_TIMEOUT*time.Minute)
		defer cancel()
		var err error
		if online {
			err = g.cache.SAdd(ctx, constants.ONLINE_USERS_KEY, username)
		} else {
			err = g.cache.SRem(ctx, constants.ONLINE_USERS_KEY, username)
		}
		if err != nil {
			zap.L().Error("mirror online roster error", zap.Error(err))
		}
	})
}

// Close 关闭网关，断开所有连接
func (g *Gateway) Close() {
	g.clients.Range(func(key, value interface{}) bool {
		client := value.(*UserConn)
		client.closeSend()
		_ = client.Conn.Close()
		return true
	})
	g.registry.Close()
	if g.broker != nil {
		g.broker.Close()
	}
}
