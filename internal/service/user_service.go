package service

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/qs3c/ad_reward_server/config"
	"github.com/qs3c/ad_reward_server/internal/model"
	"github.com/qs3c/ad_reward_server/internal/model/dto"
	"github.com/qs3c/ad_reward_server/internal/repository"
)

var (
	ErrAvatarStoreUnavailable = errors.New("OSS 客户端未配置")
	ErrInvalidDailyLimit      = errors.New("每日上限不能为负数")
	ErrInvalidUserStatus      = errors.New("无效的账号状态")
)

// AvatarStore 头像存储
type AvatarStore interface {
	UploadAvatar(userID int64, data []byte, ext string) (string, error)
	DeleteByURL(url string) error
}

type UserService struct {
	userRepo *repository.UserRepository
	avatars  AvatarStore
	cfg      *config.Config
	now      func() time.Time
}

func NewUserService(userRepo *repository.UserRepository, avatars AvatarStore, cfg *config.Config) *UserService {
	return &UserService{
		userRepo: userRepo,
		avatars:  avatars,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GetProfile 获取用户详情，已过期的观看窗口按 0 展示
func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	info := buildUserInfo(user)
	if watchWindowExpired(user, s.now()) {
		info.WatchedAds = 0
	}
	return info, nil
}

// UpdateProfile 更新用户信息
func (s *UserService) UpdateProfile(userID int64, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	// 检查用户名是否已被占用
	if req.Username != nil && *req.Username != user.Username {
		exists, err := s.userRepo.ExistsByUsername(*req.Username)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrUsernameExists
		}
		user.Username = *req.Username
		fields["username"] = user.Username
	}

	if req.Bio != nil {
		user.Bio = *req.Bio
		fields["bio"] = user.Bio
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(userID, fields); err != nil {
			return nil, err
		}
	}

	return buildUserInfo(user), nil
}

// UpdateAvatar 更新用户头像 URL
func (s *UserService) UpdateAvatar(userID int64, avatarURL string) error {
	return s.userRepo.UpdateFields(userID, map[string]interface{}{
		"avatar_url": avatarURL,
	})
}

// UploadAvatar 上传用户头像到 OSS，成功后删除旧头像
func (s *UserService) UploadAvatar(userID int64, file io.Reader, filename string) (string, error) {
	if s.avatars == nil {
		return "", ErrAvatarStoreUnavailable
	}

	user, err := s.getUser(userID)
	if err != nil {
		return "", err
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}

	avatarURL, err := s.avatars.UploadAvatar(userID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.UpdateAvatar(userID, avatarURL); err != nil {
		return "", err
	}

	if user.AvatarURL != "" && user.AvatarURL != avatarURL {
		if err := s.avatars.DeleteByURL(user.AvatarURL); err != nil {
			logrus.WithError(err).WithField("user_id", userID).Warn("delete old avatar failed")
		}
	}

	return avatarURL, nil
}

// SetDailyLimit 管理员覆盖单个用户的每日上限
func (s *UserService) SetDailyLimit(userID int64, limit int) (*dto.UserInfo, error) {
	if limit < 0 {
		return nil, ErrInvalidDailyLimit
	}

	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetDailyLimit(userID, limit); err != nil {
		return nil, err
	}
	user.DailyLimit = limit

	logrus.WithFields(logrus.Fields{
		"user_id":     userID,
		"daily_limit": limit,
	}).Info("daily limit overridden")

	return buildUserInfo(user), nil
}

// SetStatus 停用或恢复账号
func (s *UserService) SetStatus(userID int64, status string) (*dto.UserInfo, error) {
	if status != model.UserStatusActive && status != model.UserStatusSuspended {
		return nil, ErrInvalidUserStatus
	}

	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.SetStatus(userID, status); err != nil {
		return nil, err
	}
	user.Status = status

	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"status":  status,
	}).Info("user status changed")

	return buildUserInfo(user), nil
}

// PromoteAdmin 按邮箱把用户设为管理员
func (s *UserService) PromoteAdmin(email string) (*model.User, error) {
	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.IsAdmin() {
		return user, nil
	}

	if err := s.userRepo.SetRole(user.ID, model.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = model.RoleAdmin
	return user, nil
}

func (s *UserService) getUser(userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// watchWindowExpired 观看窗口是否已到重置时间
func watchWindowExpired(user *model.User, now time.Time) bool {
	return user.WatchResetAt == nil || !now.Before(*user.WatchResetAt)
}
