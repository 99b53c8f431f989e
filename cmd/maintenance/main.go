package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/database"
	"github.com/qs3c/ad_reward_server/internal/pkg/keylock"
	"github.com/qs3c/ad_reward_server/internal/pkg/logger"
	"github.com/qs3c/ad_reward_server/internal/repository"
	"github.com/qs3c/ad_reward_server/internal/service"
)

var (
	dryRun       = flag.Bool("dry-run", true, "Dry run mode, only report what would change")
	seedSettings = flag.Bool("seed-settings", false, "Insert missing default system settings")
	resetDaily   = flag.Bool("reset-daily", false, "Reset today's ad counters for every user")
	promoteAdmin = flag.String("promote-admin", "", "Grant the admin role to the user with this email")
)

func main() {
	flag.Parse()

	// 加载配置
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	logger.Setup(cfg.Log)

	logrus.Infof("Starting maintenance task, dry-run=%v", *dryRun)

	db, err := database.NewMySQL(&cfg.Database)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	settingService := service.NewSettingService(settingRepo, cfg)

	// 1. 补齐默认设置
	if *seedSettings {
		if *dryRun {
			missing := 0
			for _, s := range service.DefaultSettings(cfg) {
				if _, err := settingRepo.GetByKey(s.Key); errors.Is(err, gorm.ErrRecordNotFound) {
					logrus.Infof("[DRY-RUN] Would seed setting %s = %s", s.Key, s.Value)
					missing++
				}
			}
			logrus.Infof("[DRY-RUN] %d settings missing", missing)
		} else {
			n, err := settingService.SeedDefaults()
			if err != nil {
				logrus.Fatalf("Failed to seed settings: %v", err)
			}
			logrus.Infof("Seeded %d settings", n)
		}
	}

	// 2. 强制重置观看次数
	if *resetDaily {
		if *dryRun {
			var count int64
			db.Table("users").Where("watched_ads > 0").Count(&count)
			logrus.Infof("[DRY-RUN] Would reset ad counters for %d users", count)
		} else {
			rewardService := service.NewRewardService(db, userRepo,
				repository.NewTaskRepository(db), repository.NewUserTaskRepository(db),
				settingService, keylock.New(), nil)
			n, err := rewardService.ResetAllWindows(context.Background())
			if err != nil {
				logrus.Fatalf("Failed to reset daily counters: %v", err)
			}
			logrus.Infof("Reset ad counters for %d users", n)
		}
	}

	// 3. 提升管理员
	if email := strings.TrimSpace(*promoteAdmin); email != "" {
		if *dryRun {
			user, err := userRepo.GetByEmail(email)
			if err != nil {
				logrus.Fatalf("User %s not found: %v", email, err)
			}
			logrus.Infof("[DRY-RUN] Would promote user %d (%s), current role %s", user.ID, user.Email, user.Role)
		} else {
			userService := service.NewUserService(userRepo, nil, cfg)
			user, err := userService.PromoteAdmin(email)
			if err != nil {
				logrus.Fatalf("Failed to promote %s: %v", email, err)
			}
			logrus.Infof("User %d (%s) is now %s", user.ID, user.Email, user.Role)
		}
	}

	if *dryRun {
		logrus.Info("This was a dry run. Use -dry-run=false to apply changes.")
	}
	logrus.Info("Maintenance complete")
}
