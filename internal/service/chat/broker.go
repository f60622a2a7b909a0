// Package chat 实现实时私信的核心服务层
// broker.go
// 核心职责：定义事件代理接口
// 抽象入站事件的发布与消费，支持 Kafka 和 Channel 两种实现
package chat

import (
	"context"

	"heartlink_server/internal/dto/request"
)

// EventHandler 入站聊天事件的处理方
// 由 Gateway 实现；代理的消费循环是单协程，保证事件按发布顺序分发
type EventHandler interface {
	HandleEvent(req request.ChatEventRequest)
}

// EventBroker 定义事件代理接口
// 支持多种实现：KafkaBroker (分布式), ChannelBroker (单机)
type EventBroker interface {
	// Publish 发布事件到消息队列/通道
	Publish(ctx context.Context, msg []byte) error
	// Start 启动事件消费循环（阻塞，应在独立协程运行）
	Start()
	// Close 关闭代理资源
	Close()
}
