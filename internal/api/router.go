package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/api/handler"
	"github.com/qs3c/ad_reward_server/internal/api/middleware"
	"github.com/qs3c/ad_reward_server/internal/pkg/metrics"
)

type Router struct {
	authHandler       *handler.AuthHandler
	userHandler       *handler.UserHandler
	rewardHandler     *handler.RewardHandler
	taskHandler       *handler.TaskHandler
	withdrawalHandler *handler.WithdrawalHandler
	adminHandler      *handler.AdminHandler
	websocketHandler  *handler.WebSocketHandler
	watchAdLimiter    *middleware.RateLimiter
	cfg               *config.Config
}

func NewRouter(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	rewardHandler *handler.RewardHandler,
	taskHandler *handler.TaskHandler,
	withdrawalHandler *handler.WithdrawalHandler,
	adminHandler *handler.AdminHandler,
	websocketHandler *handler.WebSocketHandler,
	watchAdLimiter *middleware.RateLimiter,
	cfg *config.Config,
) *Router {
	return &Router{
		authHandler:       authHandler,
		userHandler:       userHandler,
		rewardHandler:     rewardHandler,
		taskHandler:       taskHandler,
		withdrawalHandler: withdrawalHandler,
		adminHandler:      adminHandler,
		websocketHandler:  websocketHandler,
		watchAdLimiter:    watchAdLimiter,
		cfg:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logrus.StandardLogger()))
	engine.Use(middleware.Metrics())
	engine.Use(middleware.CORS(r.cfg.CORS))

	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := engine.Group("/api")
	{
		// WebSocket，token 通过 query 传递
		api.GET("/ws", r.websocketHandler.Handle)

		// 公开接口 - 认证
		auth := api.Group("/auth")
		{
			auth.POST("/register", r.authHandler.Register)
			auth.POST("/login", r.authHandler.Login)
		}

		// 需要认证的接口
		authenticated := api.Group("")
		authenticated.Use(middleware.Auth(r.cfg.JWT.Secret))
		{
			user := authenticated.Group("/user")
			{
				user.GET("/profile", r.userHandler.GetProfile)
				user.PUT("/profile", r.userHandler.UpdateProfile)
				user.POST("/avatar", r.userHandler.UploadAvatar)
			}

			mobile := authenticated.Group("/mobile")
			{
				mobile.POST("/watch-ad", middleware.RateLimit(r.watchAdLimiter), r.rewardHandler.WatchAd)
				mobile.GET("/progress", r.rewardHandler.GetProgress)
			}

			tasks := authenticated.Group("/tasks")
			{
				tasks.GET("", r.taskHandler.List)
				tasks.POST("/start", r.taskHandler.Start)
				tasks.POST("/complete", r.taskHandler.Complete)
			}

			withdrawals := authenticated.Group("/withdrawals")
			{
				withdrawals.POST("", r.withdrawalHandler.Submit)
				withdrawals.GET("", r.withdrawalHandler.List)
			}
		}

		// 管理端
		admin := api.Group("/admin")
		admin.Use(middleware.Auth(r.cfg.JWT.Secret), middleware.AdminOnly())
		{
			admin.GET("/withdrawals", r.adminHandler.ListWithdrawals)
			admin.PUT("/withdrawals", r.adminHandler.ProcessWithdrawal)

			admin.GET("/settings", r.adminHandler.ListSettings)
			admin.PUT("/settings", r.adminHandler.UpdateSettings)

			admin.GET("/tasks", r.adminHandler.ListTasks)
			admin.POST("/tasks", r.adminHandler.CreateTask)
			admin.PUT("/tasks/:id", r.adminHandler.UpdateTask)

			admin.PUT("/users/:id/daily-limit", r.adminHandler.SetDailyLimit)
			admin.PUT("/users/:id/status", r.adminHandler.SetUserStatus)
		}
	}

	return engine
}
