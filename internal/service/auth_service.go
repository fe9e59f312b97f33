package service

import (
	"context"
	"errors"
	"faaqs_backend/internal/config"
	"faaqs_backend/internal/model"
	"faaqs_backend/internal/util"
	"faaqs_backend/pkg/logger"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	UserRepo UserStore
	Tokens   TokenStore
	Mailer   Mailer
	Cfg      *config.Config

	mu    sync.RWMutex
	retry config.RetryPolicy
	sleep sleepFunc
}

func NewAuthService(userRepo UserStore, tokens TokenStore, mailer Mailer, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Tokens:   tokens,
		Mailer:   mailer,
		Cfg:      cfg,
		retry:    cfg.Auth.ProfileRetry,
		sleep:    sleepContext,
	}
}

type SignupRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	DisplayName     string `json:"displayName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SSORequest struct {
	IDToken string `json:"idToken" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type PasswordResetConfirmRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// SetRetryPolicy 配置热更新时调用
func (s *AuthService) SetRetryPolicy(p config.RetryPolicy) {
	s.mu.Lock()
	s.retry = p
	s.mu.Unlock()
}

func (s *AuthService) retryPolicy() config.RetryPolicy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retry
}

func validatePassword(password, confirm string) error {
	if len(password) < util.MinPasswordLength {
		return util.NewValidationError("password", fmt.Sprintf("must be at least %d characters", util.MinPasswordLength))
	}
	if password != confirm {
		return util.NewValidationError("confirmPassword", "passwords do not match")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup 新用户一律为 student，无订阅
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*util.AuthSession, error) {
	email := normalizeEmail(req.Email)
	if email == "" {
		return nil, util.NewValidationError("email", "required")
	}
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.UserProfile{
		Email:    email,
		Role:     model.Student,
		Password: string(hashedPassword),
		Provider: "password",
	}
	if name := strings.TrimSpace(req.DisplayName); name != "" {
		user.DisplayName = &name
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.Log.Info("user signed up", zap.String("uid", user.UID))
	return s.openSession(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*util.AuthSession, error) {
	user, err := s.UserRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, err
	}
	if user.Password == "" {
		return nil, util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, util.ErrInvalidCredentials
	}
	return s.openSession(ctx, user)
}

// SSO 校验外部身份令牌，首次登录时建档
func (s *AuthService) SSO(ctx context.Context, req SSORequest) (*util.AuthSession, error) {
	if s.Cfg.Auth.SSOSecret == "" {
		return nil, util.ErrInvalidToken
	}
	claims, err := util.ParseSSOToken(req.IDToken, s.Cfg.Auth.SSOSecret, s.Cfg.Auth.SSOIssuer)
	if err != nil {
		return nil, util.ErrInvalidToken
	}
	email := normalizeEmail(claims.Email)

	user, err := s.UserRepo.FindByEmail(ctx, email)
	if err == nil {
		return s.openSession(ctx, user)
	}
	if !errors.Is(err, util.ErrNotFound) {
		return nil, err
	}

	user = &model.UserProfile{
		Email:    email,
		Role:     model.Student,
		Provider: "sso",
	}
	if claims.DisplayName != "" {
		name := claims.DisplayName
		user.DisplayName = &name
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.Log.Info("user created from sso", zap.String("uid", user.UID), zap.String("subject", claims.Subject))
	return s.openSession(ctx, user)
}

// openSession 签发令牌后重新读取档案。读取失败不影响登录，Profile 为空。
func (s *AuthService) openSession(ctx context.Context, user *model.UserProfile) (*util.AuthSession, error) {
	token, err := util.GenerateJWT(user, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, err
	}

	profile, err := s.FetchProfile(ctx, user.UID)
	if err != nil {
		logger.Log.Warn("profile fetch after sign-in failed", zap.String("uid", user.UID), zap.Error(err))
		profile = nil
	}
	return &util.AuthSession{Token: token, Claims: claims, Profile: profile}, nil
}

// FetchProfile 按重试策略读取用户档案
func (s *AuthService) FetchProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	return withRetry(ctx, s.retryPolicy(), s.sleep, func(ctx context.Context) (*model.UserProfile, error) {
		return s.UserRepo.FindByID(ctx, uid)
	})
}

// Authenticate 中间件调用：校验令牌、黑名单并加载档案
func (s *AuthService) Authenticate(ctx context.Context, token string) (*util.AuthSession, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil || claims.Purpose != util.TokenPurposeSession {
		return nil, util.ErrInvalidToken
	}
	revoked, err := s.Tokens.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, util.ErrInvalidToken
	}

	profile, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrInvalidToken
		}
		return nil, err
	}
	return &util.AuthSession{Token: token, Claims: claims, Profile: profile}, nil
}

// Logout 令牌加入黑名单直到自然过期
func (s *AuthService) Logout(ctx context.Context, session *util.AuthSession) error {
	if session == nil || session.Claims == nil {
		return nil
	}
	ttl := time.Until(session.Claims.ExpiresAt.Time)
	if err := s.Tokens.Revoke(ctx, session.Claims.ID, ttl); err != nil {
		return err
	}
	logger.Log.Info("user signed out", zap.String("uid", session.UserID()))
	return nil
}

// RequestPasswordReset 邮箱不存在时同样返回成功，不泄露注册情况
func (s *AuthService) RequestPasswordReset(ctx context.Context, req PasswordResetRequest) error {
	user, err := s.UserRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil
		}
		return err
	}

	token, err := util.GenerateResetToken(user, s.Cfg.JWT.Secret, s.Cfg.Auth.ResetTokenTTL)
	if err != nil {
		return err
	}
	link := s.Cfg.Auth.ResetURLPrefix + token
	text := fmt.Sprintf("Pour réinitialiser votre mot de passe, ouvrez ce lien : %s", link)
	html := fmt.Sprintf(`<p>Pour réinitialiser votre mot de passe, <a href="%s">cliquez ici</a>.</p>`, link)

	if err := s.Mailer.Send(ctx, user.Email, "Réinitialisation du mot de passe", text, html); err != nil {
		return util.Unavailable("send reset email", err)
	}
	return nil
}

// ConfirmPasswordReset 令牌只能使用一次
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req PasswordResetConfirmRequest) error {
	claims, err := util.ParseJWT(req.Token, s.Cfg.JWT.Secret)
	if err != nil || claims.Purpose != util.TokenPurposeReset {
		return util.ErrInvalidToken
	}
	if revoked, err := s.Tokens.IsRevoked(ctx, claims.ID); err != nil {
		return err
	} else if revoked {
		return util.ErrInvalidToken
	}
	if err := validatePassword(req.Password, req.ConfirmPassword); err != nil {
		return err
	}

	user, err := s.UserRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return util.ErrInvalidToken
		}
		return err
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPassword)
	if err := s.UserRepo.Update(ctx, user); err != nil {
		return err
	}
	return s.Tokens.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
