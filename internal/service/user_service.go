package service

import (
	"context"
	"errors"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// UserService 处理用户档案与角色管理
type UserService struct {
	UserRepo UserStore
}

func NewUserService(userRepo UserStore) *UserService {
	return &UserService{UserRepo: userRepo}
}

type ProfileUpdateRequest struct {
	DisplayName string `json:"displayName" binding:"required"`
}

type RoleUpdateRequest struct {
	Role model.UserRole `json:"role" binding:"required"`
}

// ListUsers 管理员查看全部用户，按注册时间倒序
func (s *UserService) ListUsers(ctx context.Context) ([]model.UserProfile, error) {
	users, err := s.UserRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.UserProfile{}
	}
	return users, nil
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	return s.UserRepo.FindByID(ctx, uid)
}

func (s *UserService) UpdateProfile(ctx context.Context, uid string, req ProfileUpdateRequest) (*model.UserProfile, error) {
	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		return nil, util.NewValidationError("displayName", "required")
	}
	user, err := s.UserRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.DisplayName = &name
	if err := s.UserRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateRole 只接受 student / admin
func (s *UserService) UpdateRole(ctx context.Context, uid string, role model.UserRole) (*model.UserProfile, error) {
	if !role.Valid() {
		return nil, util.NewValidationError("role", "must be student or admin")
	}
	user, err := s.UserRepo.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	user.Role = role
	if err := s.UserRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Info("user role updated", zap.String("uid", uid), zap.String("role", string(role)))
	return user, nil
}

// EnsureAdmin 按配置创建默认管理员，邮箱已存在时不做修改
func (s *UserService) EnsureAdmin(ctx context.Context, cfg config.AdminSeedConfig) (*model.UserProfile, bool, error) {
	email := normalizeEmail(cfg.Email)
	if email == "" || len(cfg.Password) < util.MinPasswordLength {
		return nil, false, util.NewValidationError("admin", "email and a password of at least 6 characters are required")
	}

	existing, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}
	admin := &model.UserProfile{
		Email:    email,
		Role:     model.Admin,
		Password: string(hashedPassword),
		Provider: "password",
		Subscription: &model.Subscription{
			Plan:      model.PlanFree,
			Status:    model.SubscriptionActive,
			StartDate: time.Now(),
		},
	}
	if cfg.DisplayName != "" {
		name := cfg.DisplayName
		admin.DisplayName = &name
	}
	if err := s.UserRepo.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
