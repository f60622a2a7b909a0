// Package chat 实现实时私信的核心服务层
// client.go
// 核心职责：WebSocket 连接的读写协程
// 读协程：收前端事件 -> 盖上连接身份 -> 投递给 Broker
// 写协程：从 SendBack 通道取事件 -> 推给前端，单协程消费保证送达顺序
package chat

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"heartlink_server/internal/dto/request"
)

// UserConn 表示一个 WebSocket 客户端连接
type UserConn struct {
	Conn     *websocket.Conn
	ConnId   string // 连接唯一标识 (uuid)
	Username string // 上游认证层交来的可信身份
	SendBack chan []byte

	mu     sync.Mutex // 保护 closed 与 SendBack 的关闭
	closed bool
}

// Read 从 WebSocket 读取事件并通过 Broker 发布
// 连接断开（包括异常断开）时由 defer 兜底完成注册表清理
func (c *UserConn) Read(g *Gateway) {
	defer g.Disconnect(c)
	for {
		_, jsonMessage, err := c.Conn.ReadMessage()
		if err != nil {
			zap.L().Info("ws read closed", zap.String("conn_id", c.ConnId), zap.Error(err))
			return
		}

		var req request.ChatEventRequest
		if err := json.Unmarshal(jsonMessage, &req); err != nil {
			zap.L().Error("unmarshal inbound event error", zap.Error(err))
			continue
		}
		// 身份以连接为准，客户端自报的字段一律覆写
		req.SenderUsername = c.Username
		req.ConnId = c.ConnId

		data, err := json.Marshal(req)
		if err != nil {
			zap.L().Error(err.Error())
			continue
		}
		if err := g.Publish(context.Background(), data); err != nil {
			zap.L().Error("publish chat event error", zap.Error(err))
		}
	}
}

// Write 从 SendBack 通道读取事件并发送给 WebSocket
func (c *UserConn) Write() {
	for message := range c.SendBack {
		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			zap.L().Error(err.Error())
			return
		}
	}
}

// enqueue 尝试向发送通道入队一条事件
// 通道已关闭或已满时返回 false；入队与关闭由同一把锁串行化，
// 不会向已关闭的通道发送
func (c *UserConn) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.SendBack <- data:
		return true
	default:
		return false
	}
}

// closeSend 关闭发送通道，可安全重复调用
func (c *UserConn) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.SendBack)
}
