package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/database"
	"github.com/qs3c/ad_reward_server/internal/pkg/email"
	"github.com/qs3c/ad_reward_server/internal/pkg/logger"
	"github.com/qs3c/ad_reward_server/internal/pkg/pubsub"
	"github.com/qs3c/ad_reward_server/internal/pkg/queue"
	"github.com/qs3c/ad_reward_server/internal/repository"
	"github.com/qs3c/ad_reward_server/internal/worker"
)

func main() {
	// 加载配置
	cfg, err := config.Load("config.yaml")
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log)

	// 初始化数据库
	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect database: %v", err)
	}
	logrus.Info("Database connected")

	// 初始化 Redis
	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		logrus.Fatalf("Failed to connect redis: %v", err)
	}
	logrus.Info("Redis connected")

	mailer := email.NewService(&cfg.Email)
	if !mailer.Enabled() {
		logrus.Warn("SMTP not configured, withdrawal emails disabled")
	}

	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotifyQueue)
	processor := worker.NewProcessor(repository.NewUserRepository(db), mailer, pubsub.NewPublisher(rdb))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logrus.Infof("Worker started, max workers: %d", cfg.Queue.MaxWorkers)
	worker.Run(ctx, notifyQueue, processor, cfg.Queue.MaxWorkers)
	logrus.Info("Worker shutdown complete")
}
