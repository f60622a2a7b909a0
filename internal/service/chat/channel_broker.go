// Package chat 实现实时私信的核心服务层
// channel_broker.go
// 核心职责：单机模式下的事件代理实现
// 不依赖外部消息队列，入站事件经进程内通道串行分发，适合小规模或开发环境
package chat

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"heartlink_server/internal/dto/request"
	"heartlink_server/pkg/constants"
)

// ChannelBroker 基于进程内通道的事件代理
type ChannelBroker struct {
	// Transmit 事件转发通道
	Transmit chan []byte
	handler  EventHandler
}

// NewChannelBroker 创建 ChannelBroker 实例
func NewChannelBroker(handler EventHandler) *ChannelBroker {
	return &ChannelBroker{
		Transmit: make(chan []byte, constants.CHANNEL_SIZE),
		handler:  handler,
	}
}

// Publish 发布事件到通道
// 通道满时阻塞，由读协程的背压传导给客户端
func (b *ChannelBroker) Publish(ctx context.Context, msg []byte) error {
	select {
	case b.Transmit <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start 启动事件消费主循环
// 单协程消费，保证事件按发布顺序进入 Gateway 分发
func (b *ChannelBroker) Start() {
	for data := range b.Transmit {
		var req request.ChatEventRequest
		if err := json.Unmarshal(data, &req); err != nil {
			zap.L().Error("unmarshal chat event error", zap.Error(err))
			continue // 反序列化失败则跳过该事件
		}
		b.handler.HandleEvent(req)
	}
}

// Close 关闭事件通道
func (b *ChannelBroker) Close() {
	close(b.Transmit)
}
