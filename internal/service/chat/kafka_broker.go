// Package chat 实现实时私信的核心服务层
// kafka_broker.go
// 核心职责：分布式模式下的事件代理实现
// 入站事件先进 Kafka，本机消费者读回后再分发，多实例部署时各实例
// 只会把事件推给落在本机的连接
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	myconfig "heartlink_server/internal/config"
	"heartlink_server/internal/dto/request"
)

// KafkaBroker 基于 Kafka 的事件代理
type KafkaBroker struct {
	client  *KafkaClient
	handler EventHandler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewKafkaBroker 创建 KafkaBroker 实例
func NewKafkaBroker(client *KafkaClient, handler EventHandler) *KafkaBroker {
	ctx, cancel := context.WithCancel(context.Background())
	return &KafkaBroker{
		client:  client,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Publish 发布事件到 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, msg []byte) error {
	key := []byte(strconv.Itoa(myconfig.GetConfig().KafkaConfig.Partition))
	return b.client.SendMessage(ctx, key, msg)
}

// Start 启动 Kafka 消费主循环
// 单协程消费，保证事件按队列顺序进入 Gateway 分发
func (b *KafkaBroker) Start() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error(fmt.Sprintf("kafka broker panic: %v", r))
		}
	}()

	for {
		kafkaMessage, err := b.client.Consumer.ReadMessage(b.ctx)
		if err != nil {
			if b.ctx.Err() != nil {
				return // 已关闭
			}
			zap.L().Error(err.Error())
			continue // 读取失败，重试
		}

		var req request.ChatEventRequest
		if err := json.Unmarshal(kafkaMessage.Value, &req); err != nil {
			zap.L().Error("unmarshal chat event error", zap.Error(err))
			continue
		}
		b.handler.HandleEvent(req)
	}
}

// Close 停止消费并释放 Kafka 资源
func (b *KafkaBroker) Close() {
	b.cancel()
	b.client.KafkaClose()
}
