package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/api"
	"github.com/qs3c/ad_reward_server/internal/api/handler"
	"github.com/qs3c/ad_reward_server/internal/api/middleware"
	"github.com/qs3c/ad_reward_server/internal/database"
	"github.com/qs3c/ad_reward_server/internal/pkg/cron"
	"github.com/qs3c/ad_reward_server/internal/pkg/keylock"
	"github.com/qs3c/ad_reward_server/internal/pkg/logger"
	"github.com/qs3c/ad_reward_server/internal/pkg/oss"
	"github.com/qs3c/ad_reward_server/internal/pkg/pubsub"
	"github.com/qs3c/ad_reward_server/internal/pkg/queue"
	"github.com/qs3c/ad_reward_server/internal/pkg/ws"
	"github.com/qs3c/ad_reward_server/internal/repository"
	"github.com/qs3c/ad_reward_server/internal/service"
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

	// 初始化 OSS（可选）
	var avatars service.AvatarStore
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			logrus.WithError(err).Warn("Failed to init OSS client, avatar upload disabled")
		} else {
			avatars = ossClient
			logrus.Info("OSS client initialized")
		}
	}

	notifyQueue := queue.NewQueue(rdb, cfg.Queue.NotifyQueue)
	publisher := pubsub.NewPublisher(rdb)
	wsHub := ws.NewHub()
	locks := keylock.New()

	// 初始化 Repository
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	userTaskRepo := repository.NewUserTaskRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	// 初始化 Service
	settingService := service.NewSettingService(settingRepo, cfg)
	if n, err := settingService.SeedDefaults(); err != nil {
		logrus.WithError(err).Warn("Failed to seed default settings")
	} else if n > 0 {
		logrus.WithField("count", n).Info("Default settings seeded")
	}

	authService := service.NewAuthService(userRepo, settingService, cfg)
	userService := service.NewUserService(userRepo, avatars, cfg)
	rewardService := service.NewRewardService(db, userRepo, taskRepo, userTaskRepo, settingService, locks, publisher)
	taskService := service.NewTaskService(db, taskRepo, userTaskRepo, userRepo, settingService, locks, publisher)
	withdrawalService := service.NewWithdrawalService(db, withdrawalRepo, userRepo, settingService, locks, notifyQueue)

	// 初始化 Handler
	websocketHandler := handler.NewWebSocketHandler(wsHub, cfg.JWT.Secret)
	watchAdLimiter := middleware.NewRateLimiter(cfg.RateLimit.WatchAdPerSecond, cfg.RateLimit.Burst)

	router := api.NewRouter(
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewRewardHandler(rewardService),
		handler.NewTaskHandler(taskService),
		handler.NewWithdrawalHandler(withdrawalService),
		handler.NewAdminHandler(settingService, taskService, userService, withdrawalService),
		websocketHandler,
		watchAdLimiter,
		cfg,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 订阅奖励事件并推送给在线用户
	go func() {
		subscriber := pubsub.NewSubscriber(rdb)
		if err := subscriber.Subscribe(ctx, websocketHandler.Forward); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("Reward event subscription stopped")
		}
	}()

	// 每日观看窗口重置
	cronService := cron.NewService(rewardService, time.Hour)
	cronService.Start()
	defer cronService.Stop()

	limiterStop := make(chan struct{})
	watchAdLimiter.StartCleanup(10*time.Minute, limiterStop)
	defer close(limiterStop)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.Infof("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")
	wsHub.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown failed")
		os.Exit(1)
	}
	logrus.Info("Server stopped")
}
