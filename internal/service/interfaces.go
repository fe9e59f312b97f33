package service

import (
	"context"
	"faaqs_backend/internal/model"
	"time"
)

// 服务层只依赖这些接口，gorm 仓库与 memstore 都满足它们

type UserStore interface {
	Create(ctx context.Context, user *model.UserProfile) error
	FindByID(ctx context.Context, uid string) (*model.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	Update(ctx context.Context, user *model.UserProfile) error
	List(ctx context.Context) ([]model.UserProfile, error)
}

type QuizStore interface {
	Create(ctx context.Context, quiz *model.Quiz) error
	Update(ctx context.Context, quiz *model.Quiz) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*model.Quiz, error)
	ListPublished(ctx context.Context, programmeID string) ([]model.Quiz, error)
	ListAll(ctx context.Context) ([]model.Quiz, error)
}

type ProgressStore interface {
	Append(ctx context.Context, progress *model.UserProgress) error
	ListByUser(ctx context.Context, userID, programmeID string) ([]model.UserProgress, error)
}

type PostStore interface {
	Create(ctx context.Context, post *model.CommunityPost) error
	FindByID(ctx context.Context, id string) (*model.CommunityPost, error)
	UpdateFields(ctx context.Context, post *model.CommunityPost, fields ...string) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter model.PostFilter) ([]model.CommunityPost, error)
}

type ProgrammeStore interface {
	Create(ctx context.Context, p *model.Programme) error
	Count(ctx context.Context) (int64, error)
	ListPublished(ctx context.Context) ([]model.Programme, error)
	FindBySlug(ctx context.Context, slug string) (*model.Programme, error)
}

type FileStore interface {
	Create(ctx context.Context, f *model.UploadedFile) error
	List(ctx context.Context, programmeID string) ([]model.UploadedFile, error)
}

// TokenStore 已注销令牌的黑名单
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, plainText, html string) error
}
