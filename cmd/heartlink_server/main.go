package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"heartlink_server/internal/config"
	dao "heartlink_server/internal/dao/mysql"
	myredis "heartlink_server/internal/dao/redis"
	"heartlink_server/internal/handler"
	"heartlink_server/internal/https_server"
	"heartlink_server/internal/infrastructure/logger"
	"heartlink_server/internal/service"
	"heartlink_server/internal/service/chat"
	"heartlink_server/pkg/util/jwt"
	"heartlink_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花算法节点（消息 ID 生成）
	snowflake.Init()
	zap.L().Info("雪花节点初始化成功")

	// 4. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 5. 初始化 Redis
	myredis.Init()
	zap.L().Info("Redis 初始化成功")

	// 6. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 7. 初始化参数校验翻译器
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("翻译器初始化失败", zap.Error(err))
	}

	// 8. 初始化 Service 层 (依赖注入)
	cache := myredis.GetCacheService()
	svc := service.NewServices(repos, cache)
	zap.L().Info("Service 层初始化成功")

	// 9. 初始化聊天网关与事件代理
	// channel 模式走进程内通道；kafka 模式走消息队列，支持多实例部署
	gateway := chat.NewGateway(svc.Thread, repos, cache)
	var broker chat.EventBroker
	if conf.KafkaConfig.MessageMode == "kafka" {
		kafkaClient := chat.NewKafkaClient()
		kafkaClient.KafkaInit()
		broker = chat.NewKafkaBroker(kafkaClient, gateway)
	} else {
		broker = chat.NewChannelBroker(gateway)
	}
	gateway.SetBroker(broker)
	go broker.Start()
	zap.L().Info("聊天网关初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 10. 初始化 HTTP 服务器
	handlers := handler.NewHandlers(svc, gateway)
	engine := https_server.Init(handlers)

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()
	zap.L().Info("HTTP 服务器启动成功",
		zap.String("host", conf.MainConfig.Host),
		zap.Int("port", conf.MainConfig.Port))

	// 设置信号监听，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")
	gateway.Close()
	zap.L().Info("服务器已关闭")
}
